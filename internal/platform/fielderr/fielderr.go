package fielderr

import (
	"fmt"
	"strings"
)

// Reglas de validación con las que se etiqueta cada falla.
const (
	RuleRequired   = "required"
	RuleOutOfRange = "out_of_range"
	RuleConflict   = "conflict"
	RuleInvalid    = "invalid"
)

// Error es una falla de validación sobre un campo concreto.
type Error struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Msg   string `json:"msg"`
}

func (e Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Field, e.Msg, e.Rule)
}

// List acumula fallas de validación. Los servicios validan todo el input
// y devuelven la lista completa, sin cortar en la primera falla.
type List []Error

func (l List) Error() string {
	parts := make([]string, 0, len(l))
	for _, e := range l {
		parts = append(parts, e.Error())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (l List) Has(field string) bool {
	for _, e := range l {
		if e.Field == field {
			return true
		}
	}
	return false
}

// OrNil devuelve nil si no hubo fallas, para poder retornar directamente
// el resultado de una función de validación.
func (l List) OrNil() error {
	if len(l) == 0 {
		return nil
	}
	return l
}
