package permissions

import (
	"testing"

	"schoolrecords_go/models"
)

func grantSetOf(zones, programs, schedules []uint) grantSet {
	profile := &models.UserProfile{}
	for _, id := range zones {
		profile.ZonePermissions = append(profile.ZonePermissions, models.Zone{BaseModel: models.BaseModel{ID: id}})
	}
	for _, id := range programs {
		profile.ProgramPermissions = append(profile.ProgramPermissions, models.Program{BaseModel: models.BaseModel{ID: id}})
	}
	for _, id := range schedules {
		profile.SchedulePermissions = append(profile.SchedulePermissions, models.Schedule{BaseModel: models.BaseModel{ID: id}})
	}
	return newGrantSet(profile)
}

// The canonical three-level path: zone 1 > program 10 > schedule 100.
var fullPath = []pathStep{
	{LevelZone, 1},
	{LevelProgram, 10},
	{LevelSchedule, 100},
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		superuser bool
		grants    grantSet
		steps     []pathStep
		expected  bool
	}{
		{
			name:     "no grants no permission",
			grants:   grantSetOf(nil, nil, nil),
			steps:    fullPath,
			expected: false,
		},
		{
			name:      "superuser always permitted",
			superuser: true,
			grants:    grantSetOf(nil, nil, nil),
			steps:     fullPath,
			expected:  true,
		},
		{
			name:      "superuser permitted on empty path",
			superuser: true,
			grants:    grantSetOf(nil, nil, nil),
			steps:     nil,
			expected:  true,
		},
		{
			name:     "zone grant covers full path",
			grants:   grantSetOf([]uint{1}, nil, nil),
			steps:    fullPath,
			expected: true,
		},
		{
			name:     "program grant covers deeper path",
			grants:   grantSetOf(nil, []uint{10}, nil),
			steps:    fullPath,
			expected: true,
		},
		{
			name:     "schedule grant applies at its own level",
			grants:   grantSetOf(nil, nil, []uint{100}),
			steps:    fullPath,
			expected: true,
		},
		{
			name:     "schedule grant does not reach shallower path",
			grants:   grantSetOf(nil, nil, []uint{100}),
			steps:    fullPath[:2],
			expected: false,
		},
		{
			name:     "program grant does not cover zone-only path",
			grants:   grantSetOf(nil, []uint{10}, nil),
			steps:    fullPath[:1],
			expected: false,
		},
		{
			name:     "sibling grant does not leak",
			grants:   grantSetOf(nil, []uint{11}, []uint{101}),
			steps:    fullPath,
			expected: false,
		},
		{
			name:     "empty path without superuser",
			grants:   grantSetOf([]uint{1}, nil, nil),
			steps:    nil,
			expected: false,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := evaluate(tc.superuser, tc.grants, tc.steps)
			if got != tc.expected {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

// Once a shallower prefix grants edit permission every longer prefix of the
// same path must as well.
func TestEvaluateMonotonicDownward(t *testing.T) {
	grantsPerLevel := []grantSet{
		grantSetOf([]uint{1}, nil, nil),
		grantSetOf(nil, []uint{10}, nil),
		grantSetOf(nil, nil, []uint{100}),
	}

	for level, grants := range grantsPerLevel {
		granted := false
		for depth := 1; depth <= len(fullPath); depth++ {
			got := evaluate(false, grants, fullPath[:depth])
			if granted && !got {
				t.Fatalf("grant at level %d: permission lost at depth %d", level, depth)
			}
			if got {
				granted = true
			}
		}
		if !granted {
			t.Fatalf("grant at level %d never took effect", level)
		}
	}
}

func TestFlatAccessorsComplete(t *testing.T) {
	profile := &models.UserProfile{
		SessionPermission: true,
		SchoolPermission:  false,
		StudentPermission: true,
		PartnerPermission: false,
	}

	expected := map[string]bool{
		KindSession: true,
		KindSchool:  false,
		KindStudent: true,
		KindPartner: false,
	}

	if len(flatAccessors) != len(expected) {
		t.Fatalf("expected %d flat permission kinds, got %d", len(expected), len(flatAccessors))
	}
	for kind, want := range expected {
		accessor, ok := flatAccessors[kind]
		if !ok {
			t.Fatalf("missing accessor for %q", kind)
		}
		if accessor(profile) != want {
			t.Fatalf("accessor %q: expected %v", kind, want)
		}
	}
}
