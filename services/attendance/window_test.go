package attendance

import (
	"reflect"
	"testing"
	"time"

	"schoolrecords_go/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monWedSchedule() *models.Schedule {
	return &models.Schedule{
		MeetingDays: models.Weekdays{"Mon", "Wed"},
		Session: models.Session{
			Name:      "spring-2024",
			StartDate: date(2024, time.February, 1),
			EndDate:   date(2024, time.April, 30),
		},
	}
}

func TestEvaluate(t *testing.T) {
	canceled := []time.Time{date(2024, time.February, 5)}

	tests := []struct {
		name string
		day  time.Time
		want bool
	}{
		{"meeting weekday inside range", date(2024, time.February, 7), true}, // Wednesday
		{"canceled date", date(2024, time.February, 5), false},               // Monday, canceled
		{"non-meeting weekday", date(2024, time.February, 8), false},         // Thursday
		{"before session start", date(2024, time.January, 29), false},        // Monday
		{"after session end", date(2024, time.May, 1), false},                // Wednesday
		{"session start boundary", date(2024, time.April, 29), true},         // Monday, last week
		{"first meeting day of range", date(2024, time.February, 5).AddDate(0, 0, 2), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Evaluate(monWedSchedule(), canceled, tt.day)
			if w.Valid != tt.want {
				t.Errorf("Evaluate(%s).Valid = %v, want %v", tt.day.Format("2006-01-02"), w.Valid, tt.want)
			}
		})
	}
}

func TestEvaluateClockIrrelevant(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	day := time.Date(2024, time.February, 7, 23, 30, 0, 0, loc)
	if w := Evaluate(monWedSchedule(), nil, day); !w.Valid {
		t.Errorf("Evaluate with clock component = invalid, want valid")
	}
}

func TestDisabledWeekdays(t *testing.T) {
	tests := []struct {
		name    string
		meeting models.Weekdays
		want    []int
	}{
		{"mon and wed", models.Weekdays{"Mon", "Wed"}, []int{0, 2, 4, 5, 6}},
		{"every day", models.Weekdays{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}, []int{}},
		{"no days", models.Weekdays{}, []int{0, 1, 2, 3, 4, 5, 6}},
		{"weekend only", models.Weekdays{"Sat", "Sun"}, []int{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DisabledWeekdays(tt.meeting)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DisabledWeekdays(%v) = %v, want %v", tt.meeting, got, tt.want)
			}
		})
	}
}

func TestEnrollmentCovers(t *testing.T) {
	start := date(2024, time.February, 10)
	end := date(2024, time.March, 10)

	tests := []struct {
		name       string
		start, end *time.Time
		day        time.Time
		want       bool
	}{
		{"no bounds", nil, nil, date(2024, time.February, 1), true},
		{"inside both bounds", &start, &end, date(2024, time.February, 20), true},
		{"on start bound", &start, &end, start, true},
		{"on end bound", &start, &end, end, true},
		{"before start", &start, nil, date(2024, time.February, 9), false},
		{"after end", nil, &end, date(2024, time.March, 11), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &models.Enrollment{StartDate: tt.start, EndDate: tt.end}
			if got := enrollmentCovers(e, tt.day); got != tt.want {
				t.Errorf("enrollmentCovers = %v, want %v", got, tt.want)
			}
		})
	}
}
