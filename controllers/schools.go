package controllers

import (
	"strconv"

	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"

	"github.com/gofiber/fiber/v2"
)

type SchoolController struct{}

// GetSchools returns all schools with pagination
func (sc *SchoolController) GetSchools(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var schools []models.School
	var total int64

	query := database.DB.Model(&models.School{})

	if districtID := c.Query("district_id"); districtID != "" {
		query = query.Where("district_id = ?", districtID)
	}
	if name := c.Query("name"); name != "" {
		query = query.Where("name LIKE ?", "%"+name+"%")
	}

	query.Count(&total)

	if err := query.Order("district_id, school_code").
		Offset(offset).Limit(limit).Find(&schools).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch schools",
		})
	}

	return c.JSON(fiber.Map{
		"schools": schools,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetSchool returns a specific school by ID
func (sc *SchoolController) GetSchool(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid school ID",
		})
	}

	var school models.School
	if err := database.DB.First(&school, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "School not found",
		})
	}
	return c.JSON(fiber.Map{
		"school": school,
	})
}

// CreateSchool creates a new school
func (sc *SchoolController) CreateSchool(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindSchool); err != nil {
		return err
	}

	var school models.School
	if err := c.BodyParser(&school); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if school.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "School name is required",
		})
	}
	if school.SchoolCode == 0 || school.DistrictID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "School code and district ID are required",
		})
	}

	var existing models.School
	if err := database.DB.Where("district_id = ? AND school_code = ?",
		school.DistrictID, school.SchoolCode).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "School with this code already exists in the district",
		})
	}

	if err := database.DB.Create(&school).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create school",
		})
	}

	middleware.LogActivity(c, "CREATE", "schools", school.ID, school)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "School created successfully",
		"school":  school,
	})
}

// UpdateSchool updates an existing school
func (sc *SchoolController) UpdateSchool(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindSchool); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid school ID",
		})
	}

	var school models.School
	if err := database.DB.First(&school, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "School not found",
		})
	}

	var updateData models.School
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if updateData.SchoolCode != 0 || updateData.DistrictID != 0 {
		code := school.SchoolCode
		district := school.DistrictID
		if updateData.SchoolCode != 0 {
			code = updateData.SchoolCode
		}
		if updateData.DistrictID != 0 {
			district = updateData.DistrictID
		}
		var existing models.School
		if err := database.DB.Where("district_id = ? AND school_code = ? AND id != ?",
			district, code, school.ID).First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "School with this code already exists in the district",
			})
		}
	}

	if err := database.DB.Model(&school).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update school",
		})
	}

	middleware.LogActivity(c, "UPDATE", "schools", school.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "School updated successfully",
		"school":  school,
	})
}

// DeleteSchool deletes a school without students
func (sc *SchoolController) DeleteSchool(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindSchool); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid school ID",
		})
	}

	var school models.School
	if err := database.DB.First(&school, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "School not found",
		})
	}

	var studentCount int64
	database.DB.Model(&models.Student{}).Where("school_id = ?", school.ID).Count(&studentCount)
	if studentCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "School has enrolled students",
		})
	}

	if err := database.DB.Delete(&school).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete school",
		})
	}

	middleware.LogActivity(c, "DELETE", "schools", school.ID, school)

	return c.JSON(fiber.Map{
		"message": "School deleted successfully",
	})
}
