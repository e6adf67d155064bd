package litters

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-census/internal/domain/animals"
	"pet-census/internal/platform/fielderr"
)

// testRepo es un repositorio en memoria solo para tests, con la
// unicidad por form_id que garantiza el adapter real.
type testRepo struct {
	byForm map[string]Litter
}

func newTestRepo() *testRepo {
	return &testRepo{byForm: map[string]Litter{}}
}

func (r *testRepo) Create(_ context.Context, l Litter) error {
	if _, ok := r.byForm[l.FormID]; ok {
		return errors.New("duplicate form_id")
	}
	r.byForm[l.FormID] = l
	return nil
}

func (r *testRepo) Update(_ context.Context, l Litter) error {
	if _, ok := r.byForm[l.FormID]; !ok {
		return ErrNotFound
	}
	r.byForm[l.FormID] = l
	return nil
}

func (r *testRepo) GetByForm(_ context.Context, formID string) (Litter, error) {
	l, ok := r.byForm[formID]
	if !ok {
		return Litter{}, ErrNotFound
	}
	return l, nil
}

func (r *testRepo) DeleteByForm(_ context.Context, formID string) error {
	if _, ok := r.byForm[formID]; !ok {
		return ErrNotFound
	}
	delete(r.byForm, formID)
	return nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestUpsertTwiceKeepsOneRow(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	first, err := svc.UpsertByForm(ctx, "form-1", "u-1", UpsertInput{
		Species: animals.SpeciesDog,
		Born:    5,
		Kept:    2,
	})
	if err != nil {
		t.Fatalf("UpsertByForm: %v", err)
	}

	second, err := svc.UpsertByForm(ctx, "form-1", "u-1", UpsertInput{
		Species: animals.SpeciesDog,
		Born:    5,
		Kept:    1,
		Sold:    3,
	})
	if err != nil {
		t.Fatalf("UpsertByForm (2do): %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("el segundo upsert creó otra fila: %s vs %s", second.ID, first.ID)
	}
	if len(repo.byForm) != 1 {
		t.Fatalf("quedaron %d filas, quería 1", len(repo.byForm))
	}
	if second.Sold != 3 || second.Kept != 1 {
		t.Fatalf("el upsert no pisó los conteos: %+v", second)
	}
}

func TestUpsertRejectsNegativeCounts(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.UpsertByForm(context.Background(), "form-1", "u-1", UpsertInput{
		Born: -1,
		Died: -2,
	})
	var errs fielderr.List
	if !errors.As(err, &errs) {
		t.Fatalf("err = %v, quería fielderr.List", err)
	}
	// Junta todas las fallas, no solo la primera.
	if !errs.Has("born") || !errs.Has("died") {
		t.Fatalf("faltan campos en la lista: %v", errs)
	}
}

func TestUpsertRejectsDispositionsOverBorn(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.UpsertByForm(ctx, "form-1", "u-1", UpsertInput{
		Born:      4,
		Died:      2,
		GivenAway: 2,
		Sold:      1,
	})
	var errs fielderr.List
	if !errors.As(err, &errs) || !errs.Has("born") {
		t.Fatalf("err = %v, quería conflicto en born", err)
	}

	_, err = svc.UpsertByForm(ctx, "form-1", "u-1", UpsertInput{
		Born:     3,
		Survived: 4,
	})
	if !errors.As(err, &errs) || !errs.Has("survived") {
		t.Fatalf("err = %v, quería falla en survived", err)
	}

	// El total exactamente igual a born sí pasa.
	if _, err := svc.UpsertByForm(ctx, "form-1", "u-1", UpsertInput{
		Born: 4, Died: 1, GivenAway: 1, Sold: 1, Kept: 1,
	}); err != nil {
		t.Fatalf("UpsertByForm con destinos = born falló: %v", err)
	}
}

// failingRepo simula una falla del store en la lectura por formulario.
type failingRepo struct {
	*testRepo
	getErr error
}

func (r *failingRepo) GetByForm(_ context.Context, _ string) (Litter, error) {
	return Litter{}, r.getErr
}

func TestUpsertPropagatesStoreFailure(t *testing.T) {
	repo := &failingRepo{testRepo: newTestRepo(), getErr: errors.New("store caído")}
	svc := NewService(repo, nil)

	_, err := svc.UpsertByForm(context.Background(), "form-1", "u-1", UpsertInput{Born: 2})
	if !errors.Is(err, repo.getErr) {
		t.Fatalf("err = %v, quería la falla del store", err)
	}
	// Una falla del store no es "no existe": no debe disparar un create.
	if len(repo.byForm) != 0 {
		t.Fatalf("se creó una fila pese a la falla del store: %d", len(repo.byForm))
	}
}

func TestDeleteByForm(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	if _, err := svc.UpsertByForm(ctx, "form-1", "u-1", UpsertInput{Born: 2}); err != nil {
		t.Fatalf("UpsertByForm: %v", err)
	}

	if err := svc.DeleteByForm(ctx, "form-1", "u-1"); err != nil {
		t.Fatalf("DeleteByForm: %v", err)
	}
	if len(repo.byForm) != 0 {
		t.Fatal("la fila no se borró")
	}

	if err := svc.DeleteByForm(ctx, "form-1", "u-1"); err == nil {
		t.Fatal("DeleteByForm sin fila debía fallar")
	}
}
