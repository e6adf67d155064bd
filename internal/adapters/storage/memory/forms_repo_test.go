package memory

import (
	"context"
	"testing"

	"pet-census/internal/domain/absences"
	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/forms"
	"pet-census/internal/domain/litters"
	"pet-census/internal/domain/responses"
)

func TestFormDeleteCascades(t *testing.T) {
	ctx := context.Background()

	animalRepo := NewAnimalRepo()
	litterRepo := NewLitterRepo()
	absenceRepo := NewAbsenceRepo()
	responseRepo := NewResponseRepo()
	formRepo := NewFormRepo(animalRepo, litterRepo, absenceRepo, responseRepo)

	if err := formRepo.Create(ctx, forms.Form{ID: "form-1", CityID: "city-1", OwnerUserID: "u-1"}); err != nil {
		t.Fatalf("Create form: %v", err)
	}

	if err := animalRepo.Create(ctx, animals.Animal{ID: "a-1", FormID: "form-1", Kind: animals.KindCurrent, RegistrationOrder: 1}); err != nil {
		t.Fatalf("Create animal: %v", err)
	}
	if err := animalRepo.Create(ctx, animals.Animal{ID: "a-2", FormID: "form-1", Kind: animals.KindPrevious, RegistrationOrder: 1}); err != nil {
		t.Fatalf("Create animal: %v", err)
	}
	if err := litterRepo.Create(ctx, litters.Litter{ID: "l-1", FormID: "form-1"}); err != nil {
		t.Fatalf("Create litter: %v", err)
	}
	if err := absenceRepo.Create(ctx, absences.Record{ID: "ab-1", FormID: "form-1"}); err != nil {
		t.Fatalf("Create absence: %v", err)
	}
	if err := responseRepo.Create(ctx, responses.Response{ID: "r-1", FormID: "form-1", QuestionID: "q-1"}); err != nil {
		t.Fatalf("Create response: %v", err)
	}

	// Un formulario ajeno no debe verse afectado.
	if err := formRepo.Create(ctx, forms.Form{ID: "form-2", CityID: "city-1", OwnerUserID: "u-1"}); err != nil {
		t.Fatalf("Create form: %v", err)
	}
	if err := animalRepo.Create(ctx, animals.Animal{ID: "a-3", FormID: "form-2", Kind: animals.KindCurrent, RegistrationOrder: 1}); err != nil {
		t.Fatalf("Create animal: %v", err)
	}

	if err := formRepo.Delete(ctx, "form-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := formRepo.GetByID(ctx, "form-1"); err == nil {
		t.Fatal("el formulario seguía existiendo tras el delete")
	}
	if _, err := animalRepo.GetByID(ctx, "a-1"); err == nil {
		t.Fatal("quedó un animal huérfano (current)")
	}
	if _, err := animalRepo.GetByID(ctx, "a-2"); err == nil {
		t.Fatal("quedó un animal huérfano (previous)")
	}
	if _, err := litterRepo.GetByForm(ctx, "form-1"); err == nil {
		t.Fatal("quedó una camada huérfana")
	}
	if _, err := absenceRepo.GetByForm(ctx, "form-1"); err == nil {
		t.Fatal("quedó un registro de ausencia huérfano")
	}
	if items, _ := responseRepo.ListByForm(ctx, "form-1"); len(items) != 0 {
		t.Fatalf("quedaron %d respuestas huérfanas", len(items))
	}

	// El formulario vecino conserva sus hijos.
	if _, err := animalRepo.GetByID(ctx, "a-3"); err != nil {
		t.Fatalf("el cascade tocó un formulario ajeno: %v", err)
	}
}
