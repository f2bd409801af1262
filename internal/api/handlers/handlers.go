package handlers

import (
	"lumosguard/internal/domain/services"
	"lumosguard/internal/infrastructure/cache"
	"lumosguard/internal/infrastructure/database/repository"
	"lumosguard/pkg/logger"
)

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Messages *MessagesHandler
}

// Dependencies holds dependencies for handlers
type Dependencies struct {
	Engine      *services.AnalysisEngine
	Cache       *cache.RedisCache
	Assessments *repository.AssessmentRepository
	Scorer      ScorerStatus
	Logger      *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Cache, deps.Assessments, deps.Scorer, deps.Logger),
		Messages: NewMessagesHandler(deps.Engine, deps.Assessments, deps.Logger),
	}
}
