package controllers

import (
	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"
	"schoolrecords_go/utils"

	"github.com/gofiber/fiber/v2"
)

type CanceledDateController struct{}

// GetCanceledDates lists a schedule's canceled dates. Like enrollments,
// the list is empty without edit permission.
func (cc *CanceledDateController) GetCanceledDates(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}

	canceled, err := resolver.CanceledDates(res)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch canceled dates",
		})
	}

	return c.JSON(fiber.Map{
		"schedule":       res.Schedule,
		"canceled_dates": canceled,
		"can_edit":       res.CanEdit,
		"total":          len(canceled),
	})
}

// CreateCanceledDate marks a date as not meeting
func (cc *CanceledDateController) CreateCanceledDate(c *fiber.Ctx) error {
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

	var req struct {
		Date    string `json:"date"`
		Comment string `json:"comment"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Date must use the YYYY-MM-DD format",
		})
	}

	var existing models.CanceledDate
	if err := database.DB.Where("schedule_id = ? AND date = ?", res.Schedule.ID, date).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Date is already canceled",
		})
	}

	canceled := models.CanceledDate{
		ScheduleID: res.Schedule.ID,
		Date:       date,
		Comment:    req.Comment,
	}
	if err := database.DB.Create(&canceled).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create canceled date",
		})
	}

	middleware.LogActivity(c, "CREATE", "canceled_dates", canceled.ID, canceled)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Date canceled successfully",
		"canceled_date": canceled,
	})
}

// DeleteCanceledDate restores a previously canceled date
func (cc *CanceledDateController) DeleteCanceledDate(c *fiber.Ctx) error {
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

	path := hierarchyPath(c)
	path.CanceledOn = &date

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, path)
	if err != nil {
		return resolveError(c, err)
	}
	if !res.CanEdit {
		return forbidden(c)
	}

	if err := database.DB.Delete(res.CanceledDate).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete canceled date",
		})
	}

	middleware.LogActivity(c, "DELETE", "canceled_dates", res.CanceledDate.ID, res.CanceledDate)

	return c.JSON(fiber.Map{
		"message": "Canceled date removed successfully",
	})
}
