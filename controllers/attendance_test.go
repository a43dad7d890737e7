package controllers

import (
	"testing"
	"time"

	"schoolrecords_go/models"
	"schoolrecords_go/services/attendance"
)

func attendanceFixture() (*models.Schedule, attendance.Window, []models.Attendance) {
	schedule := &models.Schedule{
		BaseModel:   models.BaseModel{ID: 7},
		MeetingDays: models.Weekdays{"Mon", "Wed"},
	}
	window := attendance.Window{
		Valid:            true,
		DisabledWeekdays: []int{0, 2, 4, 5, 6},
		StartDate:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	}
	roster := []models.Attendance{
		{BaseModel: models.BaseModel{ID: 1}, EnrollmentID: 11, Status: models.AttendancePresent},
		{BaseModel: models.BaseModel{ID: 2}, EnrollmentID: 12, Status: models.AttendanceUnset},
	}
	return schedule, window, roster
}

func TestAttendanceListing(t *testing.T) {
	schedule, window, roster := attendanceFixture()
	date := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)
	invalid := window
	invalid.Valid = false

	tests := []struct {
		name        string
		window      attendance.Window
		canEdit     bool
		roster      []models.Attendance
		wantRows    int
		wantCanEdit bool
		wantValid   bool
	}{
		{
			name:        "editable valid day carries the roster",
			window:      window,
			canEdit:     true,
			roster:      roster,
			wantRows:    2,
			wantCanEdit: true,
			wantValid:   true,
		},
		{
			name:        "no edit permission yields an empty listing, not an error",
			window:      window,
			canEdit:     false,
			wantRows:    0,
			wantCanEdit: false,
			wantValid:   true,
		},
		{
			name:        "invalid date yields an empty listing with the window intact",
			window:      invalid,
			canEdit:     true,
			wantRows:    0,
			wantCanEdit: true,
			wantValid:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := attendanceListing(schedule, date, tt.window, tt.canEdit, tt.roster)

			rows, ok := body["attendance"].([]models.Attendance)
			if !ok {
				t.Fatalf("attendance is %T, want []models.Attendance", body["attendance"])
			}
			if len(rows) != tt.wantRows {
				t.Errorf("attendance rows = %d, want %d", len(rows), tt.wantRows)
			}
			if got := body["can_edit"].(bool); got != tt.wantCanEdit {
				t.Errorf("can_edit = %v, want %v", got, tt.wantCanEdit)
			}
			if got := body["date_valid"].(bool); got != tt.wantValid {
				t.Errorf("date_valid = %v, want %v", got, tt.wantValid)
			}
			got := body["window"].(attendance.Window)
			if len(got.DisabledWeekdays) != len(tt.window.DisabledWeekdays) {
				t.Errorf("window lost its disabled weekdays: %v", got.DisabledWeekdays)
			}
			if body["date"].(string) != "2026-02-04" {
				t.Errorf("date = %v, want 2026-02-04", body["date"])
			}
		})
	}
}
