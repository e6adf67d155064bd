package audit

import (
	"encoding/json"
	"time"
)

// Action es la operación registrada en la bitácora.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Entry es un registro append-only de la bitácora de auditoría.
// Before/After guardan snapshots JSON de la entidad mutada.
type Entry struct {
	ID         string
	Action     Action
	EntityType string
	EntityID   string
	ActorID    string

	Before json.RawMessage
	After  json.RawMessage

	CreatedAt time.Time
}
