package controllers

import (
	"strconv"

	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"

	"github.com/gofiber/fiber/v2"
)

type PartnerController struct{}

// GetPartners returns all partner organizations
func (pc *PartnerController) GetPartners(c *fiber.Ctx) error {
	var partners []models.Partner
	if err := database.DB.Order("name").Find(&partners).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch partners",
		})
	}
	return c.JSON(fiber.Map{
		"partners": partners,
		"total":    len(partners),
	})
}

// GetPartner returns a specific partner by ID
func (pc *PartnerController) GetPartner(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid partner ID",
		})
	}

	var partner models.Partner
	if err := database.DB.First(&partner, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Partner not found",
		})
	}
	return c.JSON(fiber.Map{
		"partner": partner,
	})
}

// CreatePartner creates a new partner
func (pc *PartnerController) CreatePartner(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindPartner); err != nil {
		return err
	}

	var partner models.Partner
	if err := c.BodyParser(&partner); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if partner.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Partner name is required",
		})
	}

	var existing models.Partner
	if err := database.DB.Where("name = ?", partner.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Partner with this name already exists",
		})
	}

	if err := database.DB.Create(&partner).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create partner",
		})
	}

	middleware.LogActivity(c, "CREATE", "partners", partner.ID, partner)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Partner created successfully",
		"partner": partner,
	})
}

// UpdatePartner updates an existing partner
func (pc *PartnerController) UpdatePartner(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindPartner); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid partner ID",
		})
	}

	var partner models.Partner
	if err := database.DB.First(&partner, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Partner not found",
		})
	}

	var updateData models.Partner
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if updateData.Name != "" && updateData.Name != partner.Name {
		var existing models.Partner
		if err := database.DB.Where("name = ? AND id != ?", updateData.Name, partner.ID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Partner with this name already exists",
			})
		}
	}

	if err := database.DB.Model(&partner).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update partner",
		})
	}

	middleware.LogActivity(c, "UPDATE", "partners", partner.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Partner updated successfully",
		"partner": partner,
	})
}

// DeletePartner deletes a partner not referenced by attendance records
func (pc *PartnerController) DeletePartner(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindPartner); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid partner ID",
		})
	}

	var partner models.Partner
	if err := database.DB.First(&partner, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Partner not found",
		})
	}

	var usage int64
	database.DB.Model(&models.Attendance{}).Where("partner_id = ?", partner.ID).Count(&usage)
	if usage > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Partner is referenced by attendance records",
		})
	}

	if err := database.DB.Delete(&partner).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete partner",
		})
	}

	middleware.LogActivity(c, "DELETE", "partners", partner.ID, partner)

	return c.JSON(fiber.Map{
		"message": "Partner deleted successfully",
	})
}
