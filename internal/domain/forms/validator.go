package forms

import (
	"context"
	"strings"
)

// UnansweredQuestion es una pregunta obligatoria de la ciudad que el
// formulario aún no responde.
type UnansweredQuestion struct {
	ID   string
	Text string
}

// ResponseSource lo implementa el módulo responses (vía adapter en el
// router) y evita el ciclo de imports forms <-> responses.
type ResponseSource interface {
	ListRequiredUnanswered(ctx context.Context, formID, cityID string) ([]UnansweredQuestion, error)
}

// ValidationResult es el checklist completo de completitud.
type ValidationResult struct {
	IsValid       bool     `json:"is_valid"`
	MissingFields []string `json:"missing_fields"`
}

// ValidateCompletion computa si el formulario puede salir de draft.
// Junta TODOS los faltantes (no corta en el primero) para que el caller
// pueda mostrar el checklist entero. Solo lectura, no muta estado.
func (s *Service) ValidateCompletion(ctx context.Context, id string) (ValidationResult, error) {
	f, err := s.GetByID(ctx, id)
	if err != nil {
		return ValidationResult{}, err
	}
	return s.validate(ctx, f)
}

func (s *Service) validate(ctx context.Context, f Form) (ValidationResult, error) {
	missing := make([]string, 0)

	// paso 1
	if strings.TrimSpace(f.InterviewerName) == "" {
		missing = append(missing, "interviewerName")
	}
	if f.InterviewDate == nil {
		missing = append(missing, "interviewDate")
	}
	if f.InterviewStatus == "" {
		missing = append(missing, "interviewStatus")
	}

	// paso 2
	if strings.TrimSpace(f.EducationLevel) == "" {
		missing = append(missing, "educationLevel")
	}
	if strings.TrimSpace(f.HousingType) == "" {
		missing = append(missing, "housingType")
	}

	// paso 3
	if f.HasDogsCats == nil {
		missing = append(missing, "hasDogsCats")
	}

	// preguntas obligatorias de la ciudad, evaluadas al momento de validar
	// (el flag required vive en la pregunta, no se cachea en la respuesta)
	if s.responses != nil {
		unanswered, err := s.responses.ListRequiredUnanswered(ctx, f.ID, f.CityID)
		if err != nil {
			return ValidationResult{}, err
		}
		for _, q := range unanswered {
			missing = append(missing, "question:"+q.ID)
		}
	}

	return ValidationResult{
		IsValid:       len(missing) == 0,
		MissingFields: missing,
	}, nil
}
