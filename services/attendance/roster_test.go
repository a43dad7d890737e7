package attendance

import (
	"testing"
	"time"

	"schoolrecords_go/models"
)

func rosterEnrollments() []models.Enrollment {
	later := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	return []models.Enrollment{
		{BaseModel: models.BaseModel{ID: 11}, ScheduleID: 7, StudentID: 1},
		{BaseModel: models.BaseModel{ID: 12}, ScheduleID: 7, StudentID: 2},
		// joins the schedule after the date under test
		{BaseModel: models.BaseModel{ID: 13}, ScheduleID: 7, StudentID: 3, StartDate: &later},
	}
}

func TestMissingRosterRows(t *testing.T) {
	date := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	enrollments := rosterEnrollments()

	t.Run("first materialization creates unset rows for covered enrollments", func(t *testing.T) {
		missing := missingRosterRows(enrollments, nil, date)
		if len(missing) != 2 {
			t.Fatalf("missing rows = %d, want 2", len(missing))
		}
		for _, row := range missing {
			if row.Status != models.AttendanceUnset {
				t.Errorf("enrollment %d created with status %q, want unset", row.EnrollmentID, row.Status)
			}
			if !row.Date.Equal(date) {
				t.Errorf("enrollment %d created for %v, want %v", row.EnrollmentID, row.Date, date)
			}
			if row.EnrollmentID == 13 {
				t.Error("enrollment outside its sub-range was added to the roster")
			}
		}
	})

	t.Run("repeated materialization adds nothing and preserves recorded status", func(t *testing.T) {
		existing := []models.Attendance{
			{BaseModel: models.BaseModel{ID: 1}, EnrollmentID: 11, Date: date, Status: models.AttendancePresent, Comment: "late"},
			{BaseModel: models.BaseModel{ID: 2}, EnrollmentID: 12, Date: date, Status: models.AttendanceUnset},
		}
		missing := missingRosterRows(enrollments, existing, date)
		if len(missing) != 0 {
			t.Fatalf("second pass proposed %d new rows, want 0", len(missing))
		}
		// the recorded rows are never part of the diff, so their status
		// cannot be overwritten by another view of the same day
		if existing[0].Status != models.AttendancePresent || existing[0].Comment != "late" {
			t.Errorf("existing row changed: %+v", existing[0])
		}
	})

	t.Run("new enrollment on an already materialized day fills the gap only", func(t *testing.T) {
		existing := []models.Attendance{
			{BaseModel: models.BaseModel{ID: 1}, EnrollmentID: 11, Date: date, Status: models.AttendanceAbsent},
		}
		missing := missingRosterRows(enrollments, existing, date)
		if len(missing) != 1 || missing[0].EnrollmentID != 12 {
			t.Fatalf("missing = %+v, want exactly enrollment 12", missing)
		}
	})

	t.Run("clock on the requested date is irrelevant", func(t *testing.T) {
		bangkok := time.FixedZone("UTC+7", 7*3600)
		lateEvening := time.Date(2026, 2, 4, 23, 30, 0, 0, bangkok)
		existing := []models.Attendance{
			{EnrollmentID: 11, Date: date},
			{EnrollmentID: 12, Date: date},
		}
		if missing := missingRosterRows(enrollments, existing, lateEvening); len(missing) != 0 {
			t.Errorf("timezone clock produced %d duplicate rows", len(missing))
		}
	})
}
