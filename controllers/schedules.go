package controllers

import (
	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/attendance"
	"schoolrecords_go/services/permissions"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ScheduleController struct{}

// GetSchedules returns the schedules of a program visible to the current user
func (sc *ScheduleController) GetSchedules(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}

	schedules, err := resolver.VisibleSchedules(res)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch schedules",
		})
	}

	return c.JSON(fiber.Map{
		"program":   res.Program,
		"schedules": schedules,
		"can_edit":  res.CanEdit,
		"total":     len(schedules),
	})
}

// GetSchedule returns one schedule, addressed by its session name inside
// the program, with its meeting-day picker hint.
func (sc *ScheduleController) GetSchedule(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}

	return c.JSON(fiber.Map{
		"schedule":          res.Schedule,
		"can_edit":          res.CanEdit,
		"disabled_weekdays": attendance.DisabledWeekdays(res.Schedule.MeetingDays),
	})
}

type scheduleRequest struct {
	SessionID   uint            `json:"session_id"`
	TeacherID   uint            `json:"teacher_id"`
	Address     string          `json:"address"`
	MeetingDays models.Weekdays `json:"meeting_days"`
}

// CreateSchedule creates a schedule inside a program for a given session
func (sc *ScheduleController) CreateSchedule(c *fiber.Ctx) error {
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

	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.SessionID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session ID is required",
		})
	}
	if !req.MeetingDays.IsValid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid meeting days",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, req.SessionID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var existing models.Schedule
	if err := database.DB.Where("program_id = ? AND session_id = ?", res.Program.ID, req.SessionID).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Schedule for this session already exists in the program",
		})
	}

	schedule := models.Schedule{
		ProgramID:   res.Program.ID,
		SessionID:   req.SessionID,
		TeacherID:   req.TeacherID,
		Address:     req.Address,
		MeetingDays: req.MeetingDays,
	}
	if err := database.DB.Create(&schedule).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create schedule",
		})
	}

	database.DB.Preload("Session").First(&schedule, schedule.ID)

	middleware.LogActivity(c, "CREATE", "schedules", schedule.ID, schedule)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":  "Schedule created successfully",
		"schedule": schedule,
	})
}

// UpdateSchedule updates a schedule's meeting days, address or teacher
func (sc *ScheduleController) UpdateSchedule(c *fiber.Ctx) error {
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

	var req scheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.TeacherID != 0 {
		updates["teacher_id"] = req.TeacherID
	}
	if req.Address != "" {
		updates["address"] = req.Address
	}
	if req.MeetingDays != nil {
		if !req.MeetingDays.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid meeting days",
			})
		}
		updates["meeting_days"] = req.MeetingDays
	}

	if len(updates) > 0 {
		if err := database.DB.Model(res.Schedule).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update schedule",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "schedules", res.Schedule.ID, req)

	return c.JSON(fiber.Map{
		"message":  "Schedule updated successfully",
		"schedule": res.Schedule,
	})
}

// DeleteSchedule deletes a schedule with its enrollments and attendance
func (sc *ScheduleController) DeleteSchedule(c *fiber.Ctx) error {
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

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		return deleteSchedulesCascade(tx, []uint{res.Schedule.ID})
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete schedule",
		})
	}

	middleware.LogActivity(c, "DELETE", "schedules", res.Schedule.ID, res.Schedule)

	return c.JSON(fiber.Map{
		"message": "Schedule deleted successfully",
	})
}
