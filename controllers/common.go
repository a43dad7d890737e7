package controllers

import (
	"errors"
	"net/url"

	"schoolrecords_go/services/permissions"

	"github.com/gofiber/fiber/v2"
)

// pathParam returns a named route parameter with percent-encoding undone,
// so zone and program names containing spaces resolve correctly.
func pathParam(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// hierarchyPath builds the resolver path from however many of the nested
// route parameters are present.
func hierarchyPath(c *fiber.Ctx) permissions.Path {
	return permissions.Path{
		ZoneName:    pathParam(c, "zone_name"),
		ProgramName: pathParam(c, "program_name"),
		SessionName: pathParam(c, "session_name"),
	}
}

// resolveError translates resolver failures into HTTP responses. Unknown
// selectors are 404, everything else is a server fault.
func resolveError(c *fiber.Ctx, err error) error {
	if errors.Is(err, permissions.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to resolve path",
	})
}

// forbidden is the uniform edit-permission rejection.
func forbidden(c *fiber.Ctx) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error": "You do not have permission to modify this resource",
	})
}
