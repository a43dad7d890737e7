package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"schoolrecords_go/database"
	"schoolrecords_go/models"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// LoggerMiddleware logs every request with timing information.
func LoggerMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		logrus.WithFields(logrus.Fields{
			"method":     c.Method(),
			"path":       c.Path(),
			"status":     c.Response().StatusCode(),
			"duration":   time.Since(start).String(),
			"ip":         c.IP(),
			"user_agent": c.Get("User-Agent"),
		}).Info("HTTP Request")

		return err
	}
}

// LogActivity records a user action. Logs are cached in Redis first and
// flushed to the database in batches; if Redis is unavailable the log is
// written directly.
func LogActivity(c *fiber.Ctx, action, resource string, resourceID uint, details interface{}) {
	// Unauthenticated requests are logged as user 0 (system)
	var userID uint
	if user, err := GetCurrentUser(c); err == nil {
		userID = user.ID
	}

	entry := models.ActivityLog{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		IPAddress:  c.IP(),
		UserAgent:  c.Get("User-Agent"),
	}
	entry.CreatedAt = time.Now()
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			entry.Details = b
		}
	}

	go func(entry models.ActivityLog) {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithField("panic", r).Error("panic recovered while recording activity")
			}
		}()

		if err := cacheActivityLog(entry); err != nil {
			logrus.WithError(err).Warn("Failed to cache activity log, saving directly to database")
			if database.DB == nil {
				return
			}
			if dbErr := database.DB.Create(&entry).Error; dbErr != nil {
				logrus.WithError(dbErr).Error("Failed to save activity log to database")
			}
		}
	}(entry)
}

// cacheActivityLog buffers an entry in Redis with a 24-hour TTL. The sorted
// set doubles as the flush queue, scored by enqueue time.
func cacheActivityLog(entry models.ActivityLog) error {
	client := database.GetRedisClient()
	if client == nil {
		return fmt.Errorf("redis client is nil")
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal log: %v", err)
	}

	// Timestamped key keeps concurrent writes from colliding
	ctx := context.Background()
	key := fmt.Sprintf("log:%d:%s:%d", entry.UserID, entry.Action, time.Now().UnixNano())

	if err := client.Set(ctx, key, payload, 24*time.Hour).Err(); err != nil {
		return fmt.Errorf("failed to cache log: %v", err)
	}
	if err := client.ZAdd(ctx, "logs:queue", &redis.Z{
		Score:  float64(time.Now().Unix()),
		Member: key,
	}).Err(); err != nil {
		logrus.WithError(err).Error("Failed to enqueue cached log")
	}
	return nil
}

// LogActivityMiddleware automatically logs CRUD operations
func LogActivityMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Skip logging for GET requests and auth endpoints
		if c.Method() == "GET" || strings.Contains(c.Path(), "/auth/") {
			return c.Next()
		}

		err := c.Next()

		var action string
		switch c.Method() {
		case "POST":
			action = "CREATE"
		case "PUT", "PATCH":
			action = "UPDATE"
		case "DELETE":
			action = "DELETE"
		default:
			return err
		}

		// Extract resource from path, assumes /api/resource format
		pathParts := strings.Split(strings.Trim(c.Path(), "/"), "/")
		var resource string
		if len(pathParts) >= 2 {
			resource = pathParts[1]
		}

		var resourceID uint
		if id := c.Params("id"); id != "" {
			if parsed, parseErr := strconv.ParseUint(id, 10, 32); parseErr == nil {
				resourceID = uint(parsed)
			}
		}

		// Log only if request was successful
		if c.Response().StatusCode() < 400 {
			LogActivity(c, action, resource, resourceID, nil)
		}

		return err
	}
}
