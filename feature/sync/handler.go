package sync

import (
	"cryptogram-sync/core/logger"
	"cryptogram-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// TriggerResponse is the body returned by POST /sync/:trigger.
type TriggerResponse struct {
	reconcile.Result
	// Error is the first failure of the cycle, if any.
	Error string `json:"error,omitempty"`
	// Shared is true when the cycle result was delivered to more than one request.
	Shared bool `json:"shared"`
}

// Handler handles HTTP requests for sync cycles.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Get("/status", h.HandleStatus)
	group.Post("/:trigger", h.HandleTrigger)
}

// HandleTrigger runs a reconciliation cycle.
// @Summary Trigger Sync
// @Description Runs a reconciliation cycle for the trigger (app_launch, user_login, game_completion, manual, background). With wait=false the cycle runs in the background and 202 is returned.
// @Tags sync
// @Accept json
// @Produce json
// @Param trigger path string true "Trigger"
// @Param wait query boolean false "Wait for the cycle to finish (default true)"
// @Success 200 {object} TriggerResponse "Cycle succeeded, had nothing to sync, or was skipped"
// @Success 202 {object} map[string]string "Cycle accepted"
// @Success 207 {object} TriggerResponse "Partial sync"
// @Failure 400 {object} map[string]string "Unknown trigger"
// @Failure 401 {object} TriggerResponse "Authentication required"
// @Failure 502 {object} TriggerResponse "Sync failed"
// @Failure 503 {object} TriggerResponse "Cycle cancelled"
// @Router /sync/{trigger} [post]
func (h *Handler) HandleTrigger(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	trigger, err := reconcile.ParseTrigger(c.Params("trigger"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if c.Query("wait") == "false" {
		h.service.TriggerAsync(c.UserContext(), trigger)
		l.Info("Sync cycle accepted", zap.String("trigger", string(trigger)))
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted", "trigger": string(trigger)})
	}

	res, shared := h.service.Trigger(c.UserContext(), trigger)
	body := TriggerResponse{Result: res, Shared: shared}
	if res.Err != nil {
		body.Error = res.Err.Error()
	}

	status := statusFor(res.Outcome)
	if status >= fiber.StatusBadRequest {
		l.Warn("Sync cycle did not succeed",
			zap.String("cycle_id", res.CycleID),
			zap.String("outcome", string(res.Outcome)),
			zap.String("message", res.Message))
	}
	return c.Status(status).JSON(body)
}

// HandleStatus reports the sync bookkeeping.
// @Summary Sync Status
// @Description Returns the owner, the persisted sync timestamps, the launch count and the last cycle result.
// @Tags sync
// @Produce json
// @Success 200 {object} Status "Sync status"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	status, err := h.service.Status(c.UserContext())
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to load sync status", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(status)
}

func statusFor(outcome reconcile.Outcome) int {
	switch outcome {
	case reconcile.OutcomeSucceeded, reconcile.OutcomeNothingToSync, reconcile.OutcomeSkipped:
		return fiber.StatusOK
	case reconcile.OutcomePartial:
		return fiber.StatusMultiStatus
	case reconcile.OutcomeUnauthenticated:
		return fiber.StatusUnauthorized
	case reconcile.OutcomeCancelled:
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusBadGateway
	}
}
