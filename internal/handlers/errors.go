package handlers

import (
	"errors"

	groupSelectionController "portal/internal/controllers/groupSelection"
	reportsController "portal/internal/controllers/reports"
	"portal/internal/selection"

	"github.com/gofiber/fiber/v2"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, groupSelectionController.ErrInvalidRequest),
		errors.Is(err, reportsController.ErrInvalidRequest),
		errors.Is(err, selection.ErrInvalidEffectiveDate):
		return fiber.StatusBadRequest
	case errors.Is(err, selection.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, selection.ErrAmbiguousMarket):
		return fiber.StatusConflict
	case errors.Is(err, selection.ErrNoEligibleRole),
		errors.Is(err, selection.ErrNoMatchingAssignment),
		errors.Is(err, selection.ErrInvariantViolated):
		return fiber.StatusUnprocessableEntity
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		message = "internal server error"
	}
	return c.Status(status).JSON(fiber.Map{"message": "error", "error": message})
}
