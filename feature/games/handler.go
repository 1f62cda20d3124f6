package games

import (
	"cryptogram-sync/core/gameid"
	"cryptogram-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IDInfo describes a decoded game identifier.
type IDInfo struct {
	Input      string `json:"input"`
	UUID       string `json:"uuid"`
	Kind       string `json:"kind"`
	Difficulty string `json:"difficulty,omitempty"`
	Date       string `json:"date,omitempty"`
	// Encoded is the identifier re-encoded from the decoded parts.
	Encoded string `json:"encoded"`
}

// DescribeID decodes raw into an IDInfo.
func DescribeID(raw string) (IDInfo, error) {
	id, v, err := gameid.Decode(raw)
	if err != nil {
		return IDInfo{}, err
	}
	return IDInfo{
		Input:      raw,
		UUID:       id.String(),
		Kind:       v.Kind.String(),
		Difficulty: v.Difficulty,
		Date:       v.Date,
		Encoded:    gameid.Encode(id, v),
	}, nil
}

// Handler handles HTTP requests for local games.
type Handler struct {
	store   *Store
	ownerID string
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *Store, ownerID string, logger *zap.Logger) *Handler {
	return &Handler{store: store, ownerID: ownerID, logger: logger}
}

// RegisterRoutes registers the games routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/games")
	group.Get("/summary", h.HandleSummary)
	group.Get("/ids/:id", h.HandleDecodeID)
}

// HandleDecodeID decodes a game identifier.
// @Summary Decode Game ID
// @Description Decodes a plain, hardcore, daily or bare game identifier into its UUID and variant.
// @Tags games
// @Produce json
// @Param id path string true "Game identifier"
// @Success 200 {object} IDInfo "Decoded identifier"
// @Failure 400 {object} map[string]string "Invalid identifier"
// @Router /games/ids/{id} [get]
func (h *Handler) HandleDecodeID(c *fiber.Ctx) error {
	info, err := DescribeID(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(info)
}

// HandleSummary returns the local summary sent with full sync requests.
// @Summary Local Games Summary
// @Description Returns the local games summary of the configured owner, as sent to the sync server.
// @Tags games
// @Produce json
// @Success 200 {object} reconcile.LocalGamesSummary "Summary"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /games/summary [get]
func (h *Handler) HandleSummary(c *fiber.Ctx) error {
	summary, err := BuildSummary(c.UserContext(), h.store, h.ownerID)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Failed to build summary", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summary)
}
