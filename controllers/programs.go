package controllers

import (
	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ProgramController struct{}

// GetPrograms returns the programs of a zone visible to the current user
func (pc *ProgramController) GetPrograms(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	res, err := resolver.Resolve(user, hierarchyPath(c))
	if err != nil {
		return resolveError(c, err)
	}

	programs, err := resolver.VisiblePrograms(res)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch programs",
		})
	}

	return c.JSON(fiber.Map{
		"zone":     res.Zone,
		"programs": programs,
		"can_edit": res.CanEdit,
		"total":    len(programs),
	})
}

// GetProgram returns a single program by its scoped name
func (pc *ProgramController) GetProgram(c *fiber.Ctx) error {
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
		"program":  res.Program,
		"can_edit": res.CanEdit,
	})
}

// CreateProgram creates a program inside a zone. Edit permission at the
// zone level or above is required.
func (pc *ProgramController) CreateProgram(c *fiber.Ctx) error {
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

	var program models.Program
	if err := c.BodyParser(&program); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if program.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Program name is required",
		})
	}
	program.ZoneID = res.Zone.ID

	var existing models.Program
	if err := database.DB.Where("zone_id = ? AND name = ?", res.Zone.ID, program.Name).
		First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Program with this name already exists in the zone",
		})
	}

	if err := database.DB.Create(&program).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create program",
		})
	}

	middleware.LogActivity(c, "CREATE", "programs", program.ID, program)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Program created successfully",
		"program": program,
	})
}

// UpdateProgram updates a program's fields
func (pc *ProgramController) UpdateProgram(c *fiber.Ctx) error {
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

	var updateData models.Program
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	// A program cannot move to another zone through this endpoint
	updateData.ZoneID = 0

	if updateData.Name != "" && updateData.Name != res.Program.Name {
		var existing models.Program
		if err := database.DB.Where("zone_id = ? AND name = ? AND id != ?",
			res.Zone.ID, updateData.Name, res.Program.ID).First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Program with this name already exists in the zone",
			})
		}
	}

	if err := database.DB.Model(res.Program).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update program",
		})
	}

	middleware.LogActivity(c, "UPDATE", "programs", res.Program.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Program updated successfully",
		"program": res.Program,
	})
}

// DeleteProgram deletes a program and its schedules
func (pc *ProgramController) DeleteProgram(c *fiber.Ctx) error {
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
		return deleteProgramsCascade(tx, []uint{res.Program.ID})
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete program",
		})
	}

	middleware.LogActivity(c, "DELETE", "programs", res.Program.ID, res.Program)

	return c.JSON(fiber.Map{
		"message": "Program deleted successfully",
	})
}
