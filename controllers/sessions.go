package controllers

import (
	"strconv"

	"schoolrecords_go/database"
	"schoolrecords_go/middleware"
	"schoolrecords_go/models"
	"schoolrecords_go/services/permissions"
	"schoolrecords_go/utils"

	"github.com/gofiber/fiber/v2"
)

type SessionController struct{}

// requireFlat rejects the request unless the user holds the named flat
// permission. Superusers pass implicitly.
func requireFlat(c *fiber.Ctx, kind string) error {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		return err
	}
	resolver := permissions.NewResolver(database.DB)
	ok, err := resolver.HasFlatPermission(user, kind)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to check permissions",
		})
	}
	if !ok {
		return forbidden(c)
	}
	return nil
}

// GetSessions returns all sessions
func (sc *SessionController) GetSessions(c *fiber.Ctx) error {
	var sessions []models.Session
	if err := database.DB.Order("start_date DESC").Find(&sessions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch sessions",
		})
	}
	return c.JSON(fiber.Map{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

// GetSession returns a specific session by ID
func (sc *SessionController) GetSession(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}
	return c.JSON(fiber.Map{
		"session": session,
	})
}

type sessionRequest struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// CreateSession creates a new session
func (sc *SessionController) CreateSession(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindSession); err != nil {
		return err
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Session name is required",
		})
	}
	start, err := utils.ParseDate(req.StartDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Start date must use the YYYY-MM-DD format",
		})
	}
	end, err := utils.ParseDate(req.EndDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End date must use the YYYY-MM-DD format",
		})
	}
	if end.Before(start) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "End date must not precede start date",
		})
	}

	var existing models.Session
	if err := database.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session with this name already exists",
		})
	}

	session := models.Session{
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
	}
	if err := database.DB.Create(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create session",
		})
	}

	middleware.LogActivity(c, "CREATE", "sessions", session.ID, session)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Session created successfully",
		"session": session,
	})
}

// UpdateSession updates an existing session
func (sc *SessionController) UpdateSession(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindSession); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var req sessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	updates := map[string]interface{}{}
	if req.Name != "" && req.Name != session.Name {
		var existing models.Session
		if err := database.DB.Where("name = ? AND id != ?", req.Name, session.ID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Session with this name already exists",
			})
		}
		updates["name"] = req.Name
	}
	if req.StartDate != "" {
		start, err := utils.ParseDate(req.StartDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Start date must use the YYYY-MM-DD format",
			})
		}
		updates["start_date"] = start
	}
	if req.EndDate != "" {
		end, err := utils.ParseDate(req.EndDate)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "End date must use the YYYY-MM-DD format",
			})
		}
		updates["end_date"] = end
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&session).Updates(updates).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to update session",
			})
		}
	}

	middleware.LogActivity(c, "UPDATE", "sessions", session.ID, req)

	return c.JSON(fiber.Map{
		"message": "Session updated successfully",
		"session": session,
	})
}

// DeleteSession deletes a session without schedules
func (sc *SessionController) DeleteSession(c *fiber.Ctx) error {
	if err := requireFlat(c, permissions.KindSession); err != nil {
		return err
	}

	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid session ID",
		})
	}

	var session models.Session
	if err := database.DB.First(&session, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Session not found",
		})
	}

	var scheduleCount int64
	database.DB.Model(&models.Schedule{}).Where("session_id = ?", session.ID).Count(&scheduleCount)
	if scheduleCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Session is in use by existing schedules",
		})
	}

	if err := database.DB.Delete(&session).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete session",
		})
	}

	middleware.LogActivity(c, "DELETE", "sessions", session.ID, session)

	return c.JSON(fiber.Map{
		"message": "Session deleted successfully",
	})
}
