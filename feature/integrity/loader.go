package integrity

import (
	"cryptogram-sync/core/storage"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	handler *Handler
}

// NewFeature creates the integrity feature. client is nil when the diagnostics archive is disabled.
func NewFeature(client storage.Client, storageCfg storage.Config, db *gorm.DB, ownerID string, logger *zap.Logger) *Feature {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := NewService(client, storageCfg, db, ownerID, logger)
	return &Feature{handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
