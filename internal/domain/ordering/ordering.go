package ordering

import (
	"errors"
	"strings"
)

var (
	ErrDuplicateOrder = errors.New("duplicate target order")
	ErrInvalidOrder   = errors.New("order must be >= 1")
	ErrEmptyChange    = errors.New("no order changes given")
)

// Change reasigna el orden de un registro dentro de su scope
// (los animales de un formulario, las preguntas de una ciudad).
type Change struct {
	ID       string `json:"id"`
	NewOrder int    `json:"new_order"`
}

// Validate rechaza lotes con ids repetidos, órdenes repetidos u órdenes < 1.
// Los repositorios asumen un lote ya validado y lo aplican de forma atómica:
// o todos los registros reciben su nuevo orden, o ninguno.
func Validate(changes []Change) error {
	if len(changes) == 0 {
		return ErrEmptyChange
	}

	seenIDs := make(map[string]struct{}, len(changes))
	seenOrders := make(map[int]struct{}, len(changes))

	for _, ch := range changes {
		id := strings.TrimSpace(ch.ID)
		if id == "" {
			return errors.New("change missing record id")
		}
		if _, dup := seenIDs[id]; dup {
			return ErrDuplicateOrder
		}
		seenIDs[id] = struct{}{}

		if ch.NewOrder < 1 {
			return ErrInvalidOrder
		}
		if _, dup := seenOrders[ch.NewOrder]; dup {
			return ErrDuplicateOrder
		}
		seenOrders[ch.NewOrder] = struct{}{}
	}

	return nil
}
