package memory

import (
	"context"
	"errors"
	"testing"

	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/ordering"
)

func TestAnimalReorderSwap(t *testing.T) {
	ctx := context.Background()
	repo := NewAnimalRepo()

	if err := repo.Create(ctx, animals.Animal{ID: "a-1", FormID: "form-1", Kind: animals.KindCurrent, RegistrationOrder: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, animals.Animal{ID: "a-2", FormID: "form-1", Kind: animals.KindCurrent, RegistrationOrder: 2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Reorder(ctx, "form-1", animals.KindCurrent, []ordering.Change{
		{ID: "a-1", NewOrder: 2},
		{ID: "a-2", NewOrder: 1},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}

	a, _ := repo.GetByID(ctx, "a-1")
	if a.RegistrationOrder != 2 {
		t.Fatalf("a-1 quedó con orden %d, esperaba 2", a.RegistrationOrder)
	}
}

func TestAnimalReorderRejectsCollisionOutsideBatch(t *testing.T) {
	ctx := context.Background()
	repo := NewAnimalRepo()

	if err := repo.Create(ctx, animals.Animal{ID: "a-1", FormID: "form-1", Kind: animals.KindCurrent, RegistrationOrder: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Create(ctx, animals.Animal{ID: "a-2", FormID: "form-1", Kind: animals.KindCurrent, RegistrationOrder: 2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	// a-2 no viene en el lote y ya ocupa el orden 2: el lote debe rebotar.
	err := repo.Reorder(ctx, "form-1", animals.KindCurrent, []ordering.Change{
		{ID: "a-1", NewOrder: 2},
	})
	if !errors.Is(err, ordering.ErrDuplicateOrder) {
		t.Fatalf("esperaba ErrDuplicateOrder, vino %v", err)
	}

	// Todo o nada: a-1 conserva su orden original.
	a, _ := repo.GetByID(ctx, "a-1")
	if a.RegistrationOrder != 1 {
		t.Fatalf("a-1 quedó con orden %d tras un lote rechazado", a.RegistrationOrder)
	}
}

func TestAnimalReorderIgnoresOtherKind(t *testing.T) {
	ctx := context.Background()
	repo := NewAnimalRepo()

	if err := repo.Create(ctx, animals.Animal{ID: "a-1", FormID: "form-1", Kind: animals.KindCurrent, RegistrationOrder: 1}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	// Mismo formulario pero lista previous: no compite por el orden.
	if err := repo.Create(ctx, animals.Animal{ID: "p-1", FormID: "form-1", Kind: animals.KindPrevious, RegistrationOrder: 2}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.Reorder(ctx, "form-1", animals.KindCurrent, []ordering.Change{
		{ID: "a-1", NewOrder: 2},
	})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
}
