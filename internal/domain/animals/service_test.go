package animals

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"pet-census/internal/domain/ordering"
	"pet-census/internal/platform/fielderr"
)

// testRepo es un repositorio en memoria solo para tests.
type testRepo struct {
	items map[string]Animal
}

func newTestRepo() *testRepo {
	return &testRepo{items: map[string]Animal{}}
}

func (r *testRepo) Create(_ context.Context, a Animal) error {
	r.items[a.ID] = a
	return nil
}

func (r *testRepo) CreateBatch(_ context.Context, batch []Animal) error {
	for _, a := range batch {
		r.items[a.ID] = a
	}
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Animal, error) {
	a, ok := r.items[id]
	if !ok {
		return Animal{}, errors.New("not found")
	}
	return a, nil
}

func (r *testRepo) Update(_ context.Context, a Animal) error {
	if _, ok := r.items[a.ID]; !ok {
		return errors.New("not found")
	}
	r.items[a.ID] = a
	return nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return errors.New("not found")
	}
	delete(r.items, id)
	return nil
}

func (r *testRepo) ListByForm(_ context.Context, formID string, kind Kind) ([]Animal, error) {
	var out []Animal
	for _, a := range r.items {
		if a.FormID == formID && a.Kind == kind {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegistrationOrder < out[j].RegistrationOrder
	})
	return out, nil
}

func (r *testRepo) NextOrder(_ context.Context, formID string, kind Kind) (int, error) {
	max := 0
	for _, a := range r.items {
		if a.FormID == formID && a.Kind == kind && a.RegistrationOrder > max {
			max = a.RegistrationOrder
		}
	}
	return max + 1, nil
}

func (r *testRepo) Reorder(_ context.Context, formID string, kind Kind, changes []ordering.Change) error {
	// Verificar todo el lote antes de tocar nada: el contrato es atómico.
	for _, c := range changes {
		a, ok := r.items[c.ID]
		if !ok || a.FormID != formID || a.Kind != kind {
			return errors.New("not found")
		}
	}
	for _, c := range changes {
		a := r.items[c.ID]
		a.RegistrationOrder = c.NewOrder
		r.items[c.ID] = a
	}
	return nil
}

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }
	return svc, repo
}

func intPtr(n int) *int { return &n }

func validInput() CreateInput {
	return CreateInput{Species: SpeciesDog, AgeYears: intPtr(3)}
}

func TestCreateAssignsDenseOrder(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	for want := 1; want <= 3; want++ {
		a, err := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())
		if err != nil {
			t.Fatalf("Create: %v", err)
		}
		if a.RegistrationOrder != want {
			t.Fatalf("RegistrationOrder = %d, quería %d", a.RegistrationOrder, want)
		}
	}

	// El orden es por (form, kind): previous arranca en 1 aparte.
	a, err := svc.Create(ctx, "form-1", KindPrevious, "u-1", validInput())
	if err != nil {
		t.Fatalf("Create previous: %v", err)
	}
	if a.RegistrationOrder != 1 {
		t.Fatalf("RegistrationOrder previous = %d, quería 1", a.RegistrationOrder)
	}
}

func TestCreateAgeMonthsRoundTrip(t *testing.T) {
	svc, _ := newTestService()

	a, err := svc.Create(context.Background(), "form-1", KindCurrent, "u-1", CreateInput{
		Species:   SpeciesCat,
		AgeMonths: intPtr(6),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.AgeMonths == nil || *a.AgeMonths != 6 {
		t.Fatalf("AgeMonths = %v, quería 6", a.AgeMonths)
	}
	if a.AgeYears != nil {
		t.Fatalf("AgeYears = %v, quería nil", a.AgeYears)
	}
}

func TestCreateAgeValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cases := []struct {
		name   string
		months *int
		years  *int
		field  string
	}{
		{"sin edad", nil, nil, "age"},
		{"ambas edades", intPtr(3), intPtr(2), "age"},
		{"meses negativos", intPtr(-1), nil, "age_months"},
		{"meses fuera de rango", intPtr(12), nil, "age_months"},
		{"años en cero", nil, intPtr(0), "age_years"},
		{"años fuera de rango", nil, intPtr(31), "age_years"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "form-1", KindCurrent, "u-1", CreateInput{
				Species:   SpeciesDog,
				AgeMonths: tc.months,
				AgeYears:  tc.years,
			})
			var errs fielderr.List
			if !errors.As(err, &errs) {
				t.Fatalf("err = %v, quería fielderr.List", err)
			}
			if !errs.Has(tc.field) {
				t.Fatalf("la lista no marca %q: %v", tc.field, errs)
			}
		})
	}

	// Los bordes del rango sí pasan.
	for _, in := range []CreateInput{
		{Species: SpeciesDog, AgeMonths: intPtr(0)},
		{Species: SpeciesDog, AgeMonths: intPtr(11)},
		{Species: SpeciesDog, AgeYears: intPtr(1)},
		{Species: SpeciesDog, AgeYears: intPtr(30)},
	} {
		if _, err := svc.Create(ctx, "form-1", KindCurrent, "u-1", in); err != nil {
			t.Fatalf("Create con edad de borde falló: %v", err)
		}
	}
}

func TestCreateRequiresSpecies(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Create(context.Background(), "form-1", KindCurrent, "u-1", CreateInput{
		AgeYears: intPtr(2),
	})
	var errs fielderr.List
	if !errors.As(err, &errs) || !errs.Has("species") {
		t.Fatalf("err = %v, quería falla en species", err)
	}
}

func TestBulkCreateConsecutiveOrders(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	first, err := svc.BulkCreate(ctx, "form-1", KindCurrent, "u-1",
		[]CreateInput{validInput(), validInput(), validInput()})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	for i, a := range first {
		if a.RegistrationOrder != i+1 {
			t.Fatalf("lote 1: orden[%d] = %d, quería %d", i, a.RegistrationOrder, i+1)
		}
	}

	second, err := svc.BulkCreate(ctx, "form-1", KindCurrent, "u-1",
		[]CreateInput{validInput(), validInput()})
	if err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}
	for i, a := range second {
		if a.RegistrationOrder != i+4 {
			t.Fatalf("lote 2: orden[%d] = %d, quería %d", i, a.RegistrationOrder, i+4)
		}
	}
}

func TestBulkCreateRejectsWholeBatch(t *testing.T) {
	svc, repo := newTestService()

	// Un solo item inválido tira el lote entero: nada queda insertado.
	_, err := svc.BulkCreate(context.Background(), "form-1", KindCurrent, "u-1",
		[]CreateInput{validInput(), {Species: SpeciesDog}})
	var errs fielderr.List
	if !errors.As(err, &errs) {
		t.Fatalf("err = %v, quería fielderr.List", err)
	}
	if len(repo.items) != 0 {
		t.Fatalf("quedaron %d animales insertados tras lote inválido", len(repo.items))
	}
}

func TestReorderSwap(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a1, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())
	a2, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())

	err := svc.Reorder(ctx, "form-1", KindCurrent, "u-1", []ordering.Change{
		{ID: a1.ID, NewOrder: 2},
		{ID: a2.ID, NewOrder: 1},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	items, _ := svc.ListByForm(ctx, "form-1", KindCurrent)
	if items[0].ID != a2.ID || items[1].ID != a1.ID {
		t.Fatalf("el swap no se aplicó: %v", items)
	}
}

func TestReorderRejectsDuplicates(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a1, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())
	a2, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())

	err := svc.Reorder(ctx, "form-1", KindCurrent, "u-1", []ordering.Change{
		{ID: a1.ID, NewOrder: 1},
		{ID: a2.ID, NewOrder: 1},
	})
	if !errors.Is(err, ordering.ErrDuplicateOrder) {
		t.Fatalf("err = %v, quería ErrDuplicateOrder", err)
	}
}

func TestReorderUnknownIDNoPartialEffect(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a1, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())
	a2, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())

	err := svc.Reorder(ctx, "form-1", KindCurrent, "u-1", []ordering.Change{
		{ID: a1.ID, NewOrder: 2},
		{ID: "no-existe", NewOrder: 1},
	})
	if err == nil {
		t.Fatal("Reorder con id inexistente debía fallar")
	}

	items, _ := svc.ListByForm(ctx, "form-1", KindCurrent)
	if items[0].ID != a1.ID || items[1].ID != a2.ID {
		t.Fatalf("hubo efecto parcial tras lote fallido: %v", items)
	}
}

func TestUpdateSwitchesAgeForm(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", CreateInput{
		Species:  SpeciesDog,
		AgeYears: intPtr(5),
	})

	// Mandar solo meses limpia años.
	updated, err := svc.Update(ctx, a.ID, "u-1", UpdateInput{AgeMonths: intPtr(8)})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.AgeMonths == nil || *updated.AgeMonths != 8 || updated.AgeYears != nil {
		t.Fatalf("edad = meses %v / años %v, quería meses 8 y años nil", updated.AgeMonths, updated.AgeYears)
	}

	// Mandar ambos es conflicto.
	_, err = svc.Update(ctx, a.ID, "u-1", UpdateInput{AgeMonths: intPtr(2), AgeYears: intPtr(1)})
	var errs fielderr.List
	if !errors.As(err, &errs) || !errs.Has("age") {
		t.Fatalf("err = %v, quería conflicto en age", err)
	}
}

func TestToggleMinimized(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a, _ := svc.Create(ctx, "form-1", KindCurrent, "u-1", validInput())
	if a.CardMinimized {
		t.Fatal("la tarjeta debía arrancar expandida")
	}

	on, err := svc.ToggleMinimized(ctx, a.ID, "u-1")
	if err != nil {
		t.Fatalf("ToggleMinimized: %v", err)
	}
	if !on.CardMinimized {
		t.Fatal("el primer toggle debía minimizar")
	}

	off, _ := svc.ToggleMinimized(ctx, a.ID, "u-1")
	if off.CardMinimized {
		t.Fatal("el segundo toggle debía expandir")
	}
}

func TestExtraValueMustBeOneScalar(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	str := "casa"
	num := 2.0
	in := validInput()
	in.Extra = map[string]ExtraValue{"vivienda": {Str: &str, Num: &num}}

	_, err := svc.Create(ctx, "form-1", KindCurrent, "u-1", in)
	var errs fielderr.List
	if !errors.As(err, &errs) || !errs.Has("extra.vivienda") {
		t.Fatalf("err = %v, quería falla en extra.vivienda", err)
	}

	in.Extra = map[string]ExtraValue{"vivienda": {Str: &str}}
	if _, err := svc.Create(ctx, "form-1", KindCurrent, "u-1", in); err != nil {
		t.Fatalf("Create con extra válido falló: %v", err)
	}
}
