package arqueo

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"atm-reconciler/core/logger"
)

// Handler exposes the reconciliation trigger over HTTP for workflow engines.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the reconciliation routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/reconcile", h.HandleReconcile)
	app.Get("/healthz", h.HandleHealth)
}

// HandleReconcile runs a full reconciliation batch and returns its result.
// Config and persistence failures are server errors; per-record failures are
// reported inside the result, not as an error status.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	l.Info("Reconciliation triggered over HTTP")

	result, err := h.service.Run(c.Context())
	if err != nil {
		l.Error("Reconciliation run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(result)
}

// HandleHealth reports process liveness.
func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
