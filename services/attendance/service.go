package attendance

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"schoolrecords_go/models"
)

// Service loads attendance windows and keeps the per-date roster in sync
// with the schedule's enrollments.
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// WindowFor evaluates the attendance window for a schedule on a date,
// loading the schedule's canceled dates. The schedule must have its
// Session loaded.
func (s *Service) WindowFor(schedule *models.Schedule, date time.Time) (Window, error) {
	var rows []models.CanceledDate
	if err := s.db.Where("schedule_id = ?", schedule.ID).Order("date").Find(&rows).Error; err != nil {
		return Window{}, fmt.Errorf("failed to load canceled dates: %w", err)
	}
	canceled := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		canceled = append(canceled, row.Date)
	}
	return Evaluate(schedule, canceled, date), nil
}

// EnsureRoster guarantees one attendance row per covered enrollment for the
// date and returns the full roster. Existing rows keep their recorded
// status; missing rows are created unset. The operation is idempotent, so
// repeated loads of the same day never duplicate rows.
func (s *Service) EnsureRoster(schedule *models.Schedule, date time.Time) ([]models.Attendance, error) {
	var enrollments []models.Enrollment
	if err := s.db.Where("schedule_id = ?", schedule.ID).Find(&enrollments).Error; err != nil {
		return nil, fmt.Errorf("failed to load enrollments: %w", err)
	}

	day := dateOnly(date)
	var existing []models.Attendance
	err := s.db.Joins("JOIN enrollments ON enrollments.id = attendances.enrollment_id").
		Where("enrollments.schedule_id = ? AND attendances.date = ?", schedule.ID, day).
		Find(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load existing roster: %w", err)
	}

	// FirstOrCreate backed by the (enrollment_id, date) unique index keeps
	// concurrent first views from duplicating rows
	for _, record := range missingRosterRows(enrollments, existing, day) {
		err := s.db.Where("enrollment_id = ? AND date = ?", record.EnrollmentID, day).
			FirstOrCreate(&record).Error
		if err != nil {
			return nil, fmt.Errorf("failed to ensure attendance row: %w", err)
		}
	}

	var roster []models.Attendance
	err = s.db.Preload("Enrollment").Preload("Enrollment.Student").Preload("Partner").
		Joins("JOIN enrollments ON enrollments.id = attendances.enrollment_id").
		Where("enrollments.schedule_id = ? AND attendances.date = ?", schedule.ID, day).
		Order("attendances.id").
		Find(&roster).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	return roster, nil
}

// Entry is one submitted attendance record.
type Entry struct {
	AttendanceID uint   `json:"attendance_id"`
	Status       string `json:"status"`
	Comment      string `json:"comment"`
	PartnerID    *uint  `json:"partner_id"`
}

// Submit writes a batch of attendance entries for a schedule's date. The
// caller has already validated the window; entries referencing rows outside
// the schedule or the date are rejected so one submission cannot touch a
// different day's roster.
func (s *Service) Submit(schedule *models.Schedule, date time.Time, entries []Entry) error {
	day := dateOnly(date)
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, entry := range entries {
			if !models.IsValidAttendanceStatus(entry.Status) {
				return fmt.Errorf("invalid attendance status %q", entry.Status)
			}
			var record models.Attendance
			err := tx.Joins("JOIN enrollments ON enrollments.id = attendances.enrollment_id").
				Where("attendances.id = ? AND enrollments.schedule_id = ? AND attendances.date = ?",
					entry.AttendanceID, schedule.ID, day).
				First(&record).Error
			if err != nil {
				return fmt.Errorf("attendance row %d not in roster: %w", entry.AttendanceID, err)
			}
			updates := map[string]interface{}{
				"status":     entry.Status,
				"comment":    entry.Comment,
				"partner_id": entry.PartnerID,
			}
			if err := tx.Model(&record).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update attendance row %d: %w", entry.AttendanceID, err)
			}
		}
		return nil
	})
}
