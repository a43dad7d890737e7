package controllers

import (
	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ZoneController struct{}

// GetZones returns the zones visible to the current user. A zone is visible
// if the user holds a grant on it, or on anything beneath it.
func (zc *ZoneController) GetZones(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	zones, canEdit, err := resolver.VisibleZones(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch zones",
		})
	}

	return c.JSON(fiber.Map{
		"zones":    zones,
		"can_edit": canEdit,
		"total":    len(zones),
	})
}

// GetZone returns a single zone by name
func (zc *ZoneController) GetZone(c *fiber.Ctx) error {
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
		"zone":     res.Zone,
		"can_edit": res.CanEdit,
	})
}

// CreateZone creates a new zone. Only superusers can create at the top
// level; there is no shallower grant to inherit from.
func (zc *ZoneController) CreateZone(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	if !user.IsSuperuser {
		return forbidden(c)
	}

	var zone models.Zone
	if err := c.BodyParser(&zone); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if zone.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Zone name is required",
		})
	}

	var existing models.Zone
	if err := database.DB.Where("name = ?", zone.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Zone with this name already exists",
		})
	}

	if err := database.DB.Create(&zone).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create zone",
		})
	}

	middleware.LogActivity(c, "CREATE", "zones", zone.ID, zone)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Zone created successfully",
		"zone":    zone,
	})
}

// UpdateZone updates a zone's fields
func (zc *ZoneController) UpdateZone(c *fiber.Ctx) error {
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

	var updateData models.Zone
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if updateData.Name != "" && updateData.Name != res.Zone.Name {
		var existing models.Zone
		if err := database.DB.Where("name = ? AND id != ?", updateData.Name, res.Zone.ID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Zone with this name already exists",
			})
		}
	}

	if err := database.DB.Model(res.Zone).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update zone",
		})
	}

	middleware.LogActivity(c, "UPDATE", "zones", res.Zone.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Zone updated successfully",
		"zone":    res.Zone,
	})
}

// DeleteZone deletes a zone and everything beneath it
func (zc *ZoneController) DeleteZone(c *fiber.Ctx) error {
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
		var programIDs []uint
		if err := tx.Model(&models.Program{}).Where("zone_id = ?", res.Zone.ID).
			Pluck("id", &programIDs).Error; err != nil {
			return err
		}
		if len(programIDs) > 0 {
			if err := deleteProgramsCascade(tx, programIDs); err != nil {
				return err
			}
		}
		return tx.Delete(res.Zone).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete zone",
		})
	}

	middleware.LogActivity(c, "DELETE", "zones", res.Zone.ID, res.Zone)

	return c.JSON(fiber.Map{
		"message": "Zone deleted successfully",
	})
}

// deleteProgramsCascade removes programs and their schedules, enrollments,
// canceled dates and attendance rows inside the caller's transaction.
func deleteProgramsCascade(tx *gorm.DB, programIDs []uint) error {
	var scheduleIDs []uint
	if err := tx.Model(&models.Schedule{}).Where("program_id IN ?", programIDs).
		Pluck("id", &scheduleIDs).Error; err != nil {
		return err
	}
	if len(scheduleIDs) > 0 {
		if err := deleteSchedulesCascade(tx, scheduleIDs); err != nil {
			return err
		}
	}
	return tx.Where("id IN ?", programIDs).Delete(&models.Program{}).Error
}

func deleteSchedulesCascade(tx *gorm.DB, scheduleIDs []uint) error {
	var enrollmentIDs []uint
	if err := tx.Model(&models.Enrollment{}).Where("schedule_id IN ?", scheduleIDs).
		Pluck("id", &enrollmentIDs).Error; err != nil {
		return err
	}
	if len(enrollmentIDs) > 0 {
		if err := tx.Where("enrollment_id IN ?", enrollmentIDs).
			Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", enrollmentIDs).
			Delete(&models.Enrollment{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("schedule_id IN ?", scheduleIDs).
		Delete(&models.CanceledDate{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", scheduleIDs).Delete(&models.Schedule{}).Error
}
