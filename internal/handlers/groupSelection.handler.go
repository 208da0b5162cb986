package handlers

import (
	"portal/internal/app"
	groupSelectionController "portal/internal/controllers/groupSelection"
	"portal/internal/logger"
	"portal/internal/selection"
	"portal/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type GroupSelectionHandler struct {
	Handler
	controller *groupSelectionController.GroupSelectionController
}

func NewGroupSelectionHandler(app app.App, router fiber.Router) *GroupSelectionHandler {
	log := logger.New("handlers").File("groupSelection_handler")
	return &GroupSelectionHandler{
		controller: app.GroupSelectionController,
		Handler: Handler{
			log:    log,
			router: router,
		},
	}
}

func (h *GroupSelectionHandler) Register() {
	groupSelection := h.router.Group("/group-selection")
	groupSelection.Post("/evaluate", h.evaluate)
	groupSelection.Get("/eligibility/:personID", h.eligibility)
}

type resultResponse struct {
	selection.Result
	EffectiveOn        string   `json:"effectiveOn"`
	EffectiveOnOptions []string `json:"effectiveOnOptions"`
}

// Dates go out as MM/DD/YYYY so a chosen option can be posted back unchanged.
func newResultResponse(result selection.Result) resultResponse {
	options := make([]string, 0, len(result.EffectiveOnOptions))
	for _, option := range result.EffectiveOnOptions {
		options = append(options, utils.FormatUS(option))
	}
	return resultResponse{
		Result:             result,
		EffectiveOn:        utils.FormatUS(result.EffectiveOn),
		EffectiveOnOptions: options,
	}
}

func (h *GroupSelectionHandler) evaluate(c *fiber.Ctx) error {
	log := h.log.Function("evaluate")

	var req selection.Request
	if err := c.BodyParser(&req); err != nil {
		log.Er("failed to parse evaluate request", err)
		return c.Status(fiber.StatusBadRequest).
			JSON(fiber.Map{"message": "error", "error": "failed to parse evaluate request"})
	}

	result, err := h.controller.Evaluate(c.UserContext(), req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "success", "selection": newResultResponse(result)})
}

func (h *GroupSelectionHandler) eligibility(c *fiber.Ctx) error {
	eligibility, err := h.controller.Eligibility(c.UserContext(), c.Params("personID"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(fiber.Map{"message": "success", "eligibility": eligibility})
}
