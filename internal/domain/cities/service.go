package cities

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-census/internal/domain/audit"
	"pet-census/internal/domain/ordering"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCityExists   = errors.New("city already exists for that year")
)

type Service struct {
	repo Repository
	rec  audit.Recorder // puede ser nil (auditoría deshabilitada)
	now  func() time.Time
}

func NewService(repo Repository, rec audit.Recorder) *Service {
	return &Service{
		repo: repo,
		rec:  rec,
		now:  time.Now,
	}
}

type CityInput struct {
	Name   string
	Year   int
	Region string
}

func (s *Service) CreateCity(ctx context.Context, actorID string, in CityInput) (City, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return City{}, ErrInvalidInput
	}
	if in.Year < 2000 || in.Year > 2100 {
		return City{}, ErrInvalidInput
	}

	if _, err := s.repo.GetCityByNameYear(ctx, name, in.Year); err == nil {
		return City{}, ErrCityExists
	}

	now := s.now()
	c := City{
		ID:        uuid.NewString(),
		Name:      name,
		Year:      in.Year,
		Region:    strings.TrimSpace(in.Region),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateCity(ctx, c); err != nil {
		return City{}, err
	}
	s.record(ctx, audit.ActionCreate, "city", c.ID, actorID, nil, c)
	return c, nil
}

func (s *Service) GetCity(ctx context.Context, id string) (City, error) {
	return s.repo.GetCity(ctx, id)
}

func (s *Service) ListCities(ctx context.Context) ([]City, error) {
	return s.repo.ListCities(ctx)
}

type UpdateCityInput struct {
	Name   *string
	Year   *int
	Region *string
}

func (s *Service) UpdateCity(ctx context.Context, id, actorID string, in UpdateCityInput) (City, error) {
	c, err := s.repo.GetCity(ctx, id)
	if err != nil {
		return City{}, err
	}
	before := c

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return City{}, ErrInvalidInput
		}
		c.Name = name
	}
	if in.Year != nil {
		if *in.Year < 2000 || *in.Year > 2100 {
			return City{}, ErrInvalidInput
		}
		c.Year = *in.Year
	}
	if in.Region != nil {
		c.Region = strings.TrimSpace(*in.Region)
	}

	// respetar unicidad (name, year) si cambió alguno de los dos
	if c.Name != before.Name || c.Year != before.Year {
		if other, err := s.repo.GetCityByNameYear(ctx, c.Name, c.Year); err == nil && other.ID != c.ID {
			return City{}, ErrCityExists
		}
	}

	c.UpdatedAt = s.now()
	if err := s.repo.UpdateCity(ctx, c); err != nil {
		return City{}, err
	}
	s.record(ctx, audit.ActionUpdate, "city", c.ID, actorID, before, c)
	return c, nil
}

func (s *Service) DeleteCity(ctx context.Context, id, actorID string) error {
	c, err := s.repo.GetCity(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCity(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, "city", id, actorID, c, nil)
	return nil
}

type QuestionInput struct {
	Text     string
	Required bool
}

func (s *Service) CreateQuestion(ctx context.Context, cityID, actorID string, in QuestionInput) (Question, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return Question{}, ErrInvalidInput
	}
	if _, err := s.repo.GetCity(ctx, cityID); err != nil {
		return Question{}, err
	}

	order, err := s.repo.NextQuestionOrder(ctx, cityID)
	if err != nil {
		return Question{}, err
	}

	now := s.now()
	q := Question{
		ID:            uuid.NewString(),
		CityID:        cityID,
		Text:          text,
		QuestionOrder: order,
		Required:      in.Required,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repo.CreateQuestion(ctx, q); err != nil {
		return Question{}, err
	}
	s.record(ctx, audit.ActionCreate, "question", q.ID, actorID, nil, q)
	return q, nil
}

func (s *Service) GetQuestion(ctx context.Context, cityID, id string) (Question, error) {
	q, err := s.repo.GetQuestion(ctx, id)
	if err != nil {
		return Question{}, err
	}
	// no filtrar fuera de scope: misma respuesta que inexistente
	if q.CityID != cityID {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (s *Service) ListQuestions(ctx context.Context, cityID string) ([]Question, error) {
	return s.repo.ListQuestionsByCity(ctx, cityID)
}

// ListRequired devuelve solo las preguntas obligatorias de la ciudad.
// Lo consume el validador de completitud vía el módulo responses.
func (s *Service) ListRequired(ctx context.Context, cityID string) ([]Question, error) {
	all, err := s.repo.ListQuestionsByCity(ctx, cityID)
	if err != nil {
		return nil, err
	}
	out := make([]Question, 0, len(all))
	for _, q := range all {
		if q.Required {
			out = append(out, q)
		}
	}
	return out, nil
}

type UpdateQuestionInput struct {
	Text     *string
	Required *bool
}

func (s *Service) UpdateQuestion(ctx context.Context, cityID, id, actorID string, in UpdateQuestionInput) (Question, error) {
	q, err := s.GetQuestion(ctx, cityID, id)
	if err != nil {
		return Question{}, err
	}
	before := q

	if in.Text != nil {
		text := strings.TrimSpace(*in.Text)
		if text == "" {
			return Question{}, ErrInvalidInput
		}
		q.Text = text
	}
	if in.Required != nil {
		q.Required = *in.Required
	}

	q.UpdatedAt = s.now()
	if err := s.repo.UpdateQuestion(ctx, q); err != nil {
		return Question{}, err
	}
	s.record(ctx, audit.ActionUpdate, "question", q.ID, actorID, before, q)
	return q, nil
}

func (s *Service) DeleteQuestion(ctx context.Context, cityID, id, actorID string) error {
	q, err := s.GetQuestion(ctx, cityID, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteQuestion(ctx, id); err != nil {
		return err
	}
	s.record(ctx, audit.ActionDelete, "question", id, actorID, q, nil)
	return nil
}

// ReorderQuestions renumera las preguntas de la ciudad de forma atómica.
func (s *Service) ReorderQuestions(ctx context.Context, cityID, actorID string, changes []ordering.Change) error {
	if err := ordering.Validate(changes); err != nil {
		return err
	}
	if _, err := s.repo.GetCity(ctx, cityID); err != nil {
		return err
	}
	if err := s.repo.ReorderQuestions(ctx, cityID, changes); err != nil {
		return err
	}
	s.record(ctx, audit.ActionUpdate, "city_questions", cityID, actorID, nil, changes)
	return nil
}

func (s *Service) record(ctx context.Context, action audit.Action, entity, id, actorID string, before, after any) {
	if s.rec == nil {
		return
	}
	s.rec.Record(ctx, action, entity, id, actorID, before, after)
}
