package controllers

import (
	"strconv"
	"time"

	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"
	"schoolrecords_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type EnrollmentController struct{}

// GetEnrollments lists a schedule's enrollments. Students are part of the
// editable detail of a schedule, so the list is empty without edit
// permission rather than an error.
func (ec *EnrollmentController) GetEnrollments(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}

	enrollments, err := resolver.Enrollments(res)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch enrollments",
		})
	}

	return c.JSON(fiber.Map{
		"schedule":    res.Schedule,
		"enrollments": enrollments,
		"can_edit":    res.CanEdit,
		"total":       len(enrollments),
	})
}

type enrollmentRequest struct {
	StudentID uint    `json:"student_id"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

func (req *enrollmentRequest) dates() (*time.Time, *time.Time, error) {
	var start, end *time.Time
	if req.StartDate != nil && *req.StartDate != "" {
		t, err := utils.ParseDate(*req.StartDate)
		if err != nil {
			return nil, nil, err
		}
		start = &t
	}
	if req.EndDate != nil && *req.EndDate != "" {
		t, err := utils.ParseDate(*req.EndDate)
		if err != nil {
			return nil, nil, err
		}
		end = &t
	}
	return start, end, nil
}

// CreateEnrollment enrolls a student into a schedule, optionally on a
// sub-range of the session.
func (ec *EnrollmentController) CreateEnrollment(c *fiber.Ctx) error {
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

	var req enrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.StudentID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student ID is required",
		})
	}

	start, end, err := req.dates()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Dates must use the YYYY-MM-DD format",
		})
	}
	if start != nil && end != nil && end.Before(*start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End date must not precede start date",
		})
	}

	var student models.Student
	if err := database.DB.First(&student, req.StudentID).Error; err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Student not found",
		})
	}

	var existing models.Enrollment
	if err := database.DB.Where("schedule_id = ? AND student_id = ?", res.Schedule.ID, req.StudentID).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Student is already enrolled in this schedule",
		})
	}

	enrollment := models.Enrollment{
		ScheduleID: res.Schedule.ID,
		StudentID:  req.StudentID,
		StartDate:  start,
		EndDate:    end,
	}
	if err := database.DB.Create(&enrollment).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create enrollment",
		})
	}

	database.DB.Preload("Student").First(&enrollment, enrollment.ID)

	middleware.LogActivity(c, "CREATE", "enrollments", enrollment.ID, enrollment)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":    "Student enrolled successfully",
		"enrollment": enrollment,
	})
}

// UpdateEnrollment changes an enrollment's active sub-range
func (ec *EnrollmentController) UpdateEnrollment(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	path := hierarchyPath(c)
	path.StudentID = uint(studentID)

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, path)
	if err != nil {
		return resolveError(c, err)
	}
	if !res.CanEdit {
		return forbidden(c)
	}

	var req enrollmentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	start, end, err := req.dates()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Dates must use the YYYY-MM-DD format",
		})
	}
	if start != nil && end != nil && end.Before(*start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End date must not precede start date",
		})
	}

	updates := map[string]interface{}{
		"start_date": start,
		"end_date":   end,
	}
	if err := database.DB.Model(res.Enrollment).Updates(updates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update enrollment",
		})
	}

	middleware.LogActivity(c, "UPDATE", "enrollments", res.Enrollment.ID, req)

	return c.JSON(fiber.Map{
		"message":    "Enrollment updated successfully",
		"enrollment": res.Enrollment,
	})
}

// DeleteEnrollment removes a student from a schedule along with the
// student's attendance rows.
func (ec *EnrollmentController) DeleteEnrollment(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	studentID, err := strconv.ParseUint(c.Params("student_id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid student ID",
		})
	}

	path := hierarchyPath(c)
	path.StudentID = uint(studentID)

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, path)
	if err != nil {
		return resolveError(c, err)
	}
	if !res.CanEdit {
		return forbidden(c)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("enrollment_id = ?", res.Enrollment.ID).
			Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		return tx.Delete(res.Enrollment).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete enrollment",
		})
	}

	middleware.LogActivity(c, "DELETE", "enrollments", res.Enrollment.ID, res.Enrollment)

	return c.JSON(fiber.Map{
		"message": "Enrollment deleted successfully",
	})
}
