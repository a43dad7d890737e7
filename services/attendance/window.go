package attendance

import (
	"errors"
	"time"

	"schoolrecords_go/models"
)

// ErrInvalidDate marks an attendance operation on a date outside the
// schedule's legal attendance window. Like a permission rejection it is a
// normal outcome, but the two must stay distinguishable for the caller.
var ErrInvalidDate = errors.New("date is not a valid attendance day")

// Window is the validity verdict for one (schedule, date) pair plus the
// date-picker hint. DisabledWeekdays indexes into the Sun-first week
// ordering (models.WeekNames); it is advisory only and the server never
// trusts it in place of re-validation.
type Window struct {
	Valid            bool        `json:"valid"`
	DisabledWeekdays []int       `json:"disabled_weekdays"`
	StartDate        time.Time   `json:"start_date"`
	EndDate          time.Time   `json:"end_date"`
	CanceledDates    []time.Time `json:"canceled_dates"`
}

// dateOnly strips the clock so DATE columns and parsed request dates
// compare equal regardless of location.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Evaluate decides whether date is a legal attendance-taking day for the
// schedule. A date is valid iff it is not canceled, falls inside the
// session's inclusive start/end range, and its weekday name is one of the
// schedule's meeting days. The schedule must have its Session loaded.
func Evaluate(schedule *models.Schedule, canceled []time.Time, date time.Time) Window {
	day := dateOnly(date)
	start := dateOnly(schedule.Session.StartDate)
	end := dateOnly(schedule.Session.EndDate)

	valid := true
	for _, c := range canceled {
		if dateOnly(c).Equal(day) {
			valid = false
			break
		}
	}
	if day.Before(start) || day.After(end) {
		valid = false
	}
	if !schedule.MeetingDays.Contains(models.WeekNames[day.Weekday()]) {
		valid = false
	}

	return Window{
		Valid:            valid,
		DisabledWeekdays: DisabledWeekdays(schedule.MeetingDays),
		StartDate:        start,
		EndDate:          end,
		CanceledDates:    canceled,
	}
}

// DisabledWeekdays returns the indices of the week ordering whose names are
// not meeting days, for date-picker configuration.
func DisabledWeekdays(meeting models.Weekdays) []int {
	disabled := make([]int, 0, len(models.WeekNames))
	for idx, name := range models.WeekNames {
		if !meeting.Contains(name) {
			disabled = append(disabled, idx)
		}
	}
	return disabled
}

// missingRosterRows returns the unset rows to create so that every
// enrollment covering the date has exactly one attendance row. Enrollments
// that already have a row are skipped whatever their recorded status, which
// is what makes the roster materialization idempotent.
func missingRosterRows(enrollments []models.Enrollment, existing []models.Attendance, date time.Time) []models.Attendance {
	day := dateOnly(date)
	have := make(map[uint]struct{}, len(existing))
	for _, row := range existing {
		have[row.EnrollmentID] = struct{}{}
	}

	var missing []models.Attendance
	for i := range enrollments {
		if !enrollmentCovers(&enrollments[i], day) {
			continue
		}
		if _, ok := have[enrollments[i].ID]; ok {
			continue
		}
		missing = append(missing, models.Attendance{
			EnrollmentID: enrollments[i].ID,
			Date:         day,
			Status:       models.AttendanceUnset,
		})
	}
	return missing
}

// enrollmentCovers reports whether the enrollment's optional start/end
// sub-range covers the date. Nil bounds are unbounded.
func enrollmentCovers(enrollment *models.Enrollment, date time.Time) bool {
	day := dateOnly(date)
	if enrollment.StartDate != nil && day.Before(dateOnly(*enrollment.StartDate)) {
		return false
	}
	if enrollment.EndDate != nil && day.After(dateOnly(*enrollment.EndDate)) {
		return false
	}
	return true
}
