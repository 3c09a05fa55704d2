package arqueo

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"atm-reconciler/core/config"
	"atm-reconciler/feature/arqueo/archive"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the arqueo reconciliation feature.
func NewFeature(cfg *config.Config, db *gorm.DB, archiver *archive.Archiver, logger *zap.Logger) *Feature {
	svc := NewService(cfg, db, archiver, logger)
	h := NewHandler(svc)
	return &Feature{service: svc, handler: h}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "arqueo"
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
