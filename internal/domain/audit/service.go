package audit

import (
	"context"
	"encoding/json"
	"time"

	"pet-census/internal/platform/logger"

	"github.com/google/uuid"
)

// Recorder es el contrato que consumen los servicios que mutan entidades.
// Record es fire-and-forget: nunca devuelve error, la mutación no puede
// fallar porque falló la bitácora.
type Recorder interface {
	Record(ctx context.Context, action Action, entityType, entityID, actorID string, before, after any)
}

type Service struct {
	repo Repository
	log  logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

func (s *Service) Record(ctx context.Context, action Action, entityType, entityID, actorID string, before, after any) {
	e := Entry{
		ID:         uuid.NewString(),
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Before:     snapshot(before),
		After:      snapshot(after),
		CreatedAt:  s.now(),
	}

	if err := s.repo.Append(ctx, e); err != nil && s.log != nil {
		s.log.Error("audit append failed", map[string]any{
			"action": action,
			"entity": entityType,
			"id":     entityID,
			"err":    err.Error(),
		})
	}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	return s.repo.List(ctx, filter)
}

func snapshot(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}
