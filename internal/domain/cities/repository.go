package cities

import (
	"context"
	"errors"

	"pet-census/internal/domain/ordering"
)

// ErrNotFound lo devuelven los adapters cuando la ciudad o la pregunta
// no existe; también cubre preguntas fuera del scope pedido.
var ErrNotFound = errors.New("not found")

type Repository interface {
	CreateCity(ctx context.Context, c City) error
	GetCity(ctx context.Context, id string) (City, error)
	GetCityByNameYear(ctx context.Context, name string, year int) (City, error)
	ListCities(ctx context.Context) ([]City, error)
	UpdateCity(ctx context.Context, c City) error

	// DeleteCity elimina la ciudad y sus preguntas en la misma unidad atómica.
	DeleteCity(ctx context.Context, id string) error

	CreateQuestion(ctx context.Context, q Question) error
	GetQuestion(ctx context.Context, id string) (Question, error)
	UpdateQuestion(ctx context.Context, q Question) error
	DeleteQuestion(ctx context.Context, id string) error

	// ListQuestionsByCity devuelve las preguntas ordenadas por question_order asc.
	ListQuestionsByCity(ctx context.Context, cityID string) ([]Question, error)

	// NextQuestionOrder devuelve max(orden)+1 dentro de la ciudad, 1 si no hay.
	NextQuestionOrder(ctx context.Context, cityID string) (int, error)

	// ReorderQuestions aplica el lote completo o nada. Un id inexistente o
	// fuera de la ciudad aborta el lote sin efecto parcial.
	ReorderQuestions(ctx context.Context, cityID string, changes []ordering.Change) error
}
