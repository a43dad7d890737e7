package controllers

import (
	"fmt"
	"time"

	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/attendance"
	"schoolrecords_go/services/permissions"
	"schoolrecords_go/storage"
	"schoolrecords_go/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

type AttendanceController struct{}

// GetAttendance returns the attendance window and roster for a schedule's
// date. Viewing a valid day with edit permission materializes the roster,
// one row per enrolled student, so first view and later edits see the same
// records. Without edit permission, or on a day outside the window, the
// listing is empty rather than an error; only submission distinguishes the
// two rejections.
func (ac *AttendanceController) GetAttendance(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	date, err := utils.ParseDate(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must use the YYYY-MM-DD format",
		})
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}

	svc := attendance.NewService(database.DB)
	window, err := svc.WindowFor(res.Schedule, date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to evaluate attendance window",
		})
	}

	if !res.CanEdit || !window.Valid {
		return c.JSON(attendanceListing(res.Schedule, date, window, res.CanEdit, nil))
	}

	roster, err := svc.EnsureRoster(res.Schedule, date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load attendance roster",
		})
	}

	return c.JSON(attendanceListing(res.Schedule, date, window, true, roster))
}

// attendanceListing shapes the GET response. The window and edit flag are
// always present so clients can render the date picker; the roster is empty
// unless the caller may edit and the date is valid.
func attendanceListing(schedule *models.Schedule, date time.Time, window attendance.Window, canEdit bool, roster []models.Attendance) fiber.Map {
	if roster == nil {
		roster = []models.Attendance{}
	}
	return fiber.Map{
		"schedule":   schedule,
		"date":       date.Format("2006-01-02"),
		"window":     window,
		"can_edit":   canEdit,
		"date_valid": window.Valid,
		"attendance": roster,
	}
}

// SubmitAttendance records a batch of attendance entries for a date. The
// window is re-validated on write; a stale client cannot submit onto a day
// that has since been canceled.
func (ac *AttendanceController) SubmitAttendance(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	date, err := utils.ParseDate(c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must use the YYYY-MM-DD format",
		})
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}
	if !res.CanEdit {
		return forbidden(c)
	}

	var req struct {
		Entries []attendance.Entry `json:"entries"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Entries) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No attendance entries provided",
		})
	}

	svc := attendance.NewService(database.DB)
	window, err := svc.WindowFor(res.Schedule, date)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to evaluate attendance window",
		})
	}
	if !window.Valid {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Attendance cannot be taken on this date",
			"window": window,
		})
	}

	if err := svc.Submit(res.Schedule, date, req.Entries); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	middleware.LogActivity(c, "UPDATE", "attendances", res.Schedule.ID, fiber.Map{
		"date":    date.Format("2006-01-02"),
		"entries": len(req.Entries),
	})

	return c.JSON(fiber.Map{
		"message": "Attendance recorded successfully",
	})
}

// ExportAttendance builds an xlsx sheet of the schedule's full attendance
// history, uploads it to S3 and returns the download URL.
func (ac *AttendanceController) ExportAttendance(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}
	if !res.CanEdit {
		return forbidden(c)
	}

	var rows []models.Attendance
	err = database.DB.Preload("Enrollment.Student").Preload("Partner").
		Joins("JOIN enrollments ON enrollments.id = attendances.enrollment_id").
		Where("enrollments.schedule_id = ?", res.Schedule.ID).
		Order("attendances.date, attendances.id").
		Find(&rows).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load attendance history",
		})
	}

	content, err := buildAttendanceWorkbook(res, rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to build attendance export",
		})
	}

	storageService, err := storage.NewStorageService()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to initialize storage",
		})
	}
	url, err := storageService.UploadBytes(content, "exports/attendance", "xlsx")
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to upload attendance export",
		})
	}

	middleware.LogActivity(c, "CREATE", "attendance_exports", res.Schedule.ID, fiber.Map{
		"rows": len(rows),
		"url":  url,
	})

	return c.JSON(fiber.Map{
		"message": "Attendance exported successfully",
		"url":     url,
		"rows":    len(rows),
	})
}

func buildAttendanceWorkbook(res *permissions.Resolution, rows []models.Attendance) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Attendance"
	f.SetSheetName("Sheet1", sheet)

	headers := []string{"Date", "Student ID", "Last Name", "First Name", "Status", "Comment", "Partner"}
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		partner := ""
		if row.Partner != nil {
			partner = row.Partner.Name
		}
		values := []interface{}{
			row.Date.Format("2006-01-02"),
			row.Enrollment.Student.LocalID,
			row.Enrollment.Student.LastName,
			row.Enrollment.Student.FirstName,
			row.Status,
			row.Comment,
			partner,
		}
		for j, v := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	title := fmt.Sprintf("%s / %s / %s", res.Zone.Name, res.Program.Name, res.Schedule.Session.Name)
	if err := f.SetDocProps(&excelize.DocProperties{Title: title}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
