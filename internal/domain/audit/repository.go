package audit

import "context"

type ListFilter struct {
	EntityType string
	EntityID   string
	ActorID    string
	Limit      int
}

type Repository interface {
	Append(ctx context.Context, e Entry) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
}
