package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/retailadmin/internal/services"
)

// ReportHandler serves sales reports.
type ReportHandler struct {
	reports *services.ReportService
	now     func() time.Time
}

// NewReportHandler constructs ReportHandler.
func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports, now: time.Now}
}

// Summary reports sales for ?range=today|last_7_days|last_30_days|this_month,
// or for ?range=custom&start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *ReportHandler) Summary(c *fiber.Ctx) error {
	r, err := services.ResolveRange(c.Query("range"), c.Query("start"), c.Query("end"), h.now())
	if err != nil {
		return err
	}

	report, err := h.reports.Summary(c.UserContext(), r)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "data": report})
}

// RegisterReportRoutes attaches report routes to fiber app.
func (h *ReportHandler) RegisterReportRoutes(router fiber.Router) {
	router.Get("/summary", h.Summary)
}
