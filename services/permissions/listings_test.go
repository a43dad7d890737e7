package permissions

import (
	"testing"
)

// Two zones with two programs each, two schedules per program:
// zone 1 > programs 10, 11; zone 2 > programs 20, 21
// program 10 > schedules 100, 101; program 20 > schedules 200, 201
func listingIndex() parentIndex {
	return parentIndex{
		programZone:     map[uint]uint{10: 1, 11: 1, 20: 2, 21: 2},
		scheduleProgram: map[uint]uint{100: 10, 101: 10, 200: 20, 201: 20},
	}
}

func idsEqual(got, want []uint) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestVisibleZoneIDs(t *testing.T) {
	ix := listingIndex()

	tests := []struct {
		name   string
		grants grantSet
		want   []uint
	}{
		{
			name:   "no grants no zones",
			grants: grantSetOf(nil, nil, nil),
			want:   []uint{},
		},
		{
			name:   "direct zone grant",
			grants: grantSetOf([]uint{2}, nil, nil),
			want:   []uint{2},
		},
		{
			name:   "program grant surfaces its zone",
			grants: grantSetOf(nil, []uint{10}, nil),
			want:   []uint{1},
		},
		{
			name:   "schedule grant surfaces its program's zone",
			grants: grantSetOf(nil, nil, []uint{200}),
			want:   []uint{2},
		},
		{
			name:   "union over all three grant levels without duplicates",
			grants: grantSetOf([]uint{1}, []uint{11}, []uint{201}),
			want:   []uint{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibleZoneIDs(tt.grants, ix)
			if !idsEqual(got, tt.want) {
				t.Errorf("visibleZoneIDs = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVisibleProgramIDs(t *testing.T) {
	ix := listingIndex()

	tests := []struct {
		name   string
		zoneID uint
		grants grantSet
		want   []uint
	}{
		{
			name:   "direct program grant within the zone",
			zoneID: 1,
			grants: grantSetOf(nil, []uint{10}, nil),
			want:   []uint{10},
		},
		{
			name:   "program grant of another zone stays invisible",
			zoneID: 2,
			grants: grantSetOf(nil, []uint{10}, nil),
			want:   []uint{},
		},
		{
			name:   "schedule grant surfaces its program in the zone",
			zoneID: 2,
			grants: grantSetOf(nil, nil, []uint{201}),
			want:   []uint{20},
		},
		{
			name:   "sibling programs of a granted schedule stay invisible",
			zoneID: 1,
			grants: grantSetOf(nil, nil, []uint{100}),
			want:   []uint{10},
		},
		{
			name:   "program and schedule grants union in one zone",
			zoneID: 1,
			grants: grantSetOf(nil, []uint{11}, []uint{101}),
			want:   []uint{10, 11},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibleProgramIDs(tt.zoneID, tt.grants, ix)
			if !idsEqual(got, tt.want) {
				t.Errorf("visibleProgramIDs(%d) = %v, want %v", tt.zoneID, got, tt.want)
			}
		})
	}
}

func TestVisibleScheduleIDs(t *testing.T) {
	ix := listingIndex()

	tests := []struct {
		name      string
		programID uint
		grants    grantSet
		want      []uint
	}{
		{
			name:      "only directly granted schedules of the program",
			programID: 10,
			grants:    grantSetOf(nil, nil, []uint{100, 200}),
			want:      []uint{100},
		},
		{
			name:      "grants on other programs never leak in",
			programID: 20,
			grants:    grantSetOf([]uint{1}, []uint{10}, []uint{101}),
			want:      []uint{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := visibleScheduleIDs(tt.programID, tt.grants, ix)
			if !idsEqual(got, tt.want) {
				t.Errorf("visibleScheduleIDs(%d) = %v, want %v", tt.programID, got, tt.want)
			}
		})
	}
}

// An editable path must stay fully visible: for every grant the listings at
// each shallower level contain the granted entity's ancestors.
func TestListingsCoverEditablePath(t *testing.T) {
	ix := listingIndex()
	grants := grantSetOf(nil, nil, []uint{101})

	zones := visibleZoneIDs(grants, ix)
	if !idsEqual(zones, []uint{1}) {
		t.Fatalf("zone listing %v does not cover the granted schedule's zone", zones)
	}
	programs := visibleProgramIDs(1, grants, ix)
	if !idsEqual(programs, []uint{10}) {
		t.Fatalf("program listing %v does not cover the granted schedule's program", programs)
	}
	schedules := visibleScheduleIDs(10, grants, ix)
	if !idsEqual(schedules, []uint{101}) {
		t.Fatalf("schedule listing %v does not cover the granted schedule", schedules)
	}
}
