package controllers

import (
	"strconv"

	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"

	"github.com/gofiber/fiber/v2"
)

type UserController struct{}

// GetUsers returns all users with pagination
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var users []models.User
	var total int64

	query := database.DB.Model(&models.User{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if username := c.Query("username"); username != "" {
		query = query.Where("username LIKE ?", "%"+username+"%")
	}

	query.Count(&total)

	if err := query.Order("username").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetGrantable returns what the current user is allowed to grant to others
func (uc *UserController) GetGrantable(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	resolver := permissions.NewResolver(database.DB)
	scope, err := resolver.Grantable(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute grantable permissions",
		})
	}

	return c.JSON(fiber.Map{
		"grantable": scope,
	})
}

// GetUserPermissions returns a target user's permission profile alongside
// what the current user could change in it.
func (uc *UserController) GetUserPermissions(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var target models.User
	if err := database.DB.First(&target, uint(targetID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	profile, err := permissions.ProfileFor(database.DB, &target)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load permission profile",
		})
	}

	resolver := permissions.NewResolver(database.DB)
	scope, err := resolver.Grantable(user)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to compute grantable permissions",
		})
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":           target.ID,
			"username":     target.Username,
			"is_superuser": target.IsSuperuser,
		},
		"profile":   profile,
		"grantable": scope,
	})
}

// UpdateUserPermissions rewrites a target user's permissions within the
// current user's grant scope.
func (uc *UserController) UpdateUserPermissions(c *fiber.Ctx) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}

	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var req permissions.GrantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	resolver := permissions.NewResolver(database.DB)
	profile, err := resolver.ApplyGrants(user, uint(targetID), req)
	if err != nil {
		return resolveError(c, err)
	}

	middleware.LogActivity(c, "UPDATE", "user_permissions", uint(targetID), req)

	return c.JSON(fiber.Map{
		"message": "Permissions updated successfully",
		"profile": profile,
	})
}

// UpdateUserStatus activates or suspends an account (superusers only)
func (uc *UserController) UpdateUserStatus(c *fiber.Ctx) error {
	targetID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid user ID",
		})
	}

	var target models.User
	if err := database.DB.First(&target, uint(targetID)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	var req struct {
		Status string `json:"status" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Status != "active" && req.Status != "inactive" && req.Status != "suspended" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid status. Must be: active, inactive, or suspended",
		})
	}

	if err := database.DB.Model(&target).Update("status", req.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update user status",
		})
	}

	middleware.LogActivity(c, "UPDATE", "users", target.ID, fiber.Map{
		"action":     "status_change",
		"new_status": req.Status,
	})

	return c.JSON(fiber.Map{
		"message": "User status updated successfully",
		"status":  req.Status,
	})
}
