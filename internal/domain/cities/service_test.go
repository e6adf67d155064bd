package cities

import (
	"context"
	"errors"
	"sort"
	"testing"

	"pet-census/internal/domain/ordering"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	cities    map[string]City
	questions map[string]Question
}

func newTestRepo() *testRepo {
	return &testRepo{
		cities:    map[string]City{},
		questions: map[string]Question{},
	}
}

func (r *testRepo) CreateCity(ctx context.Context, c City) error {
	r.cities[c.ID] = c
	return nil
}

func (r *testRepo) GetCity(ctx context.Context, id string) (City, error) {
	c, ok := r.cities[id]
	if !ok {
		return City{}, errRepoNotFound
	}
	return c, nil
}

func (r *testRepo) GetCityByNameYear(ctx context.Context, name string, year int) (City, error) {
	for _, c := range r.cities {
		if c.Name == name && c.Year == year {
			return c, nil
		}
	}
	return City{}, errRepoNotFound
}

func (r *testRepo) ListCities(ctx context.Context) ([]City, error) {
	out := make([]City, 0, len(r.cities))
	for _, c := range r.cities {
		out = append(out, c)
	}
	return out, nil
}

func (r *testRepo) UpdateCity(ctx context.Context, c City) error {
	if _, ok := r.cities[c.ID]; !ok {
		return errRepoNotFound
	}
	r.cities[c.ID] = c
	return nil
}

func (r *testRepo) DeleteCity(ctx context.Context, id string) error {
	if _, ok := r.cities[id]; !ok {
		return errRepoNotFound
	}
	delete(r.cities, id)
	for qid, q := range r.questions {
		if q.CityID == id {
			delete(r.questions, qid)
		}
	}
	return nil
}

func (r *testRepo) CreateQuestion(ctx context.Context, q Question) error {
	r.questions[q.ID] = q
	return nil
}

func (r *testRepo) GetQuestion(ctx context.Context, id string) (Question, error) {
	q, ok := r.questions[id]
	if !ok {
		return Question{}, errRepoNotFound
	}
	return q, nil
}

func (r *testRepo) UpdateQuestion(ctx context.Context, q Question) error {
	if _, ok := r.questions[q.ID]; !ok {
		return errRepoNotFound
	}
	r.questions[q.ID] = q
	return nil
}

func (r *testRepo) DeleteQuestion(ctx context.Context, id string) error {
	if _, ok := r.questions[id]; !ok {
		return errRepoNotFound
	}
	delete(r.questions, id)
	return nil
}

func (r *testRepo) ListQuestionsByCity(ctx context.Context, cityID string) ([]Question, error) {
	out := make([]Question, 0)
	for _, q := range r.questions {
		if q.CityID == cityID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].QuestionOrder < out[j].QuestionOrder
	})
	return out, nil
}

func (r *testRepo) NextQuestionOrder(ctx context.Context, cityID string) (int, error) {
	max := 0
	for _, q := range r.questions {
		if q.CityID == cityID && q.QuestionOrder > max {
			max = q.QuestionOrder
		}
	}
	return max + 1, nil
}

func (r *testRepo) ReorderQuestions(ctx context.Context, cityID string, changes []ordering.Change) error {
	// verificar todo antes de tocar nada: sin efecto parcial
	for _, ch := range changes {
		q, ok := r.questions[ch.ID]
		if !ok || q.CityID != cityID {
			return errRepoNotFound
		}
	}
	for _, ch := range changes {
		q := r.questions[ch.ID]
		q.QuestionOrder = ch.NewOrder
		r.questions[ch.ID] = q
	}
	return nil
}

// -------------------------
// Tests
// -------------------------

func TestService_CreateCity_UniqueNameYear(t *testing.T) {
	svc := NewService(newTestRepo(), nil)

	in := CityInput{Name: "Valparaíso", Year: 2026}
	if _, err := svc.CreateCity(context.Background(), "admin-1", in); err != nil {
		t.Fatalf("CreateCity error: %v", err)
	}
	if _, err := svc.CreateCity(context.Background(), "admin-1", in); err != ErrCityExists {
		t.Fatalf("expected ErrCityExists, got %v", err)
	}

	// mismo nombre, otro año: permitido
	if _, err := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Valparaíso", Year: 2027}); err != nil {
		t.Fatalf("expected distinct year allowed, got %v", err)
	}
}

func TestService_CreateQuestion_AssignsDenseOrder(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	c, err := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Temuco", Year: 2026})
	if err != nil {
		t.Fatalf("CreateCity error: %v", err)
	}

	for i := 1; i <= 3; i++ {
		q, err := svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "pregunta"})
		if err != nil {
			t.Fatalf("CreateQuestion #%d error: %v", i, err)
		}
		if q.QuestionOrder != i {
			t.Fatalf("expected order %d, got %d", i, q.QuestionOrder)
		}
	}
}

func TestService_ReorderQuestions_RejectsDuplicateTarget(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	c, _ := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Osorno", Year: 2026})
	q1, _ := svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "a"})
	q2, _ := svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "b"})

	err := svc.ReorderQuestions(context.Background(), c.ID, "admin-1", []ordering.Change{
		{ID: q1.ID, NewOrder: 1},
		{ID: q2.ID, NewOrder: 1},
	})
	if err != ordering.ErrDuplicateOrder {
		t.Fatalf("expected ErrDuplicateOrder, got %v", err)
	}
}

func TestService_ReorderQuestions_SwapAtomic(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	c, _ := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Arica", Year: 2026})
	q1, _ := svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "a"})
	q2, _ := svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "b"})

	if err := svc.ReorderQuestions(context.Background(), c.ID, "admin-1", []ordering.Change{
		{ID: q1.ID, NewOrder: 2},
		{ID: q2.ID, NewOrder: 1},
	}); err != nil {
		t.Fatalf("ReorderQuestions error: %v", err)
	}

	got, _ := svc.ListQuestions(context.Background(), c.ID)
	if got[0].ID != q2.ID || got[1].ID != q1.ID {
		t.Fatalf("expected swapped order, got %#v", got)
	}

	// un id inexistente aborta el lote completo
	err := svc.ReorderQuestions(context.Background(), c.ID, "admin-1", []ordering.Change{
		{ID: q1.ID, NewOrder: 1},
		{ID: "missing", NewOrder: 2},
	})
	if err == nil {
		t.Fatalf("expected error for missing id")
	}

	got, _ = svc.ListQuestions(context.Background(), c.ID)
	if got[0].ID != q2.ID || got[1].ID != q1.ID {
		t.Fatalf("expected no partial effect after failed reorder, got %#v", got)
	}
}

func TestService_ListRequired_FiltersRequiredOnly(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	c, _ := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Iquique", Year: 2026})
	svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "a", Required: true})
	svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "b"})
	svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "c", Required: true})

	req, err := svc.ListRequired(context.Background(), c.ID)
	if err != nil {
		t.Fatalf("ListRequired error: %v", err)
	}
	if len(req) != 2 {
		t.Fatalf("expected 2 required questions, got %d", len(req))
	}
}

func TestService_GetQuestion_OutOfScopeIsNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	a, _ := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Calama", Year: 2026})
	b, _ := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Ancud", Year: 2026})
	q, _ := svc.CreateQuestion(context.Background(), a.ID, "admin-1", QuestionInput{Text: "a"})

	if _, err := svc.GetQuestion(context.Background(), a.ID, q.ID); err != nil {
		t.Fatalf("GetQuestion error: %v", err)
	}
	// pedir la pregunta bajo otra ciudad responde igual que inexistente
	if _, err := svc.GetQuestion(context.Background(), b.ID, q.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_DeleteCity_CascadesQuestions(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil)

	c, _ := svc.CreateCity(context.Background(), "admin-1", CityInput{Name: "Talca", Year: 2026})
	svc.CreateQuestion(context.Background(), c.ID, "admin-1", QuestionInput{Text: "a"})

	if err := svc.DeleteCity(context.Background(), c.ID, "admin-1"); err != nil {
		t.Fatalf("DeleteCity error: %v", err)
	}
	if len(repo.questions) != 0 {
		t.Fatalf("expected questions cascaded, got %d", len(repo.questions))
	}
}
