package handlers

import (
	"context"
	"strings"
	"time"

	"portal/internal/app"
	reportsController "portal/internal/controllers/reports"
	"portal/internal/logger"
	"portal/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type ReportsHandler struct {
	Handler
	controller *reportsController.ReportsController
}

func NewReportsHandler(app app.App, router fiber.Router) *ReportsHandler {
	log := logger.New("handlers").File("reports_handler")
	return &ReportsHandler{
		controller: app.ReportsController,
		Handler: Handler{
			log:    log,
			router: router,
		},
	}
}

func (h *ReportsHandler) Register() {
	reports := h.router.Group("/reports")
	reports.Get("/shop-monthly-enrollments", h.monthly(h.controller.ShopMonthlyEnrollments))
	reports.Get("/shop-monthly-terminations", h.monthly(h.controller.ShopMonthlyTerminations))
}

type monthlyReport func(ctx context.Context, feins []string, effectiveOn time.Time) (reportsController.MonthlyReport, error)

// monthly serves a report as JSON, or as CSV with ?format=csv.
func (h *ReportsHandler) monthly(report monthlyReport) fiber.Handler {
	return func(c *fiber.Ctx) error {
		log := h.log.Function("monthly")

		effectiveOn, err := utils.ParseISODate(c.Query("effective_on"))
		if err != nil {
			log.Warn("invalid effective date", "effectiveOn", c.Query("effective_on"))
			return c.Status(fiber.StatusBadRequest).
				JSON(fiber.Map{"message": "error", "error": err.Error()})
		}

		var feins []string
		for _, fein := range strings.Split(c.Query("feins"), ",") {
			if fein = strings.TrimSpace(fein); fein != "" {
				feins = append(feins, fein)
			}
		}

		result, err := report(c.UserContext(), feins, effectiveOn)
		if err != nil {
			return errorResponse(c, err)
		}

		if c.Query("format") == "csv" {
			rows := make([][]string, 0, len(result.EnrollmentIDs))
			for _, id := range result.EnrollmentIDs {
				rows = append(rows, []string{id, utils.FormatUS(result.EffectiveOn)})
			}
			c.Set(fiber.HeaderContentType, "text/csv")
			return utils.WriteCSV(c.Response().BodyWriter(), []string{"enrollment_id", "effective_on"}, rows)
		}

		return c.JSON(fiber.Map{"message": "success", "report": result})
	}
}
