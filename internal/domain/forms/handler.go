package forms

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-census/internal/domain/cities"
	"pet-census/internal/middleware"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// Las rutas se registran planas (sin Route/Mount) porque los módulos
// hijos (animals, litters, ...) también cuelgan de /forms/{formID}.
func RegisterRoutes(r chi.Router, svc *Service, citiesSvc *cities.Service) {
	r.Post("/forms", createFormHandler(svc, citiesSvc))
	r.Get("/forms", listFormsHandler(svc))
	r.Get("/forms/{formID}", getFormHandler(svc))
	r.Patch("/forms/{formID}", updateFormHandler(svc))
	r.Delete("/forms/{formID}", deleteFormHandler(svc))

	r.Post("/forms/{formID}/step", advanceStepHandler(svc))
	r.Post("/forms/{formID}/complete", completeFormHandler(svc))
	r.Post("/forms/{formID}/submit", submitFormHandler(svc))
	r.Get("/forms/{formID}/validate", validateFormHandler(svc))
}

type createFormRequest struct {
	CityID   string `json:"city_id"`
	FormDate string `json:"form_date"` // YYYY-MM-DD opcional
}

type updateFormRequest struct {
	FormDate        *string          `json:"form_date"` // YYYY-MM-DD
	InterviewerName *string          `json:"interviewer_name"`
	InterviewDate   *string          `json:"interview_date"` // YYYY-MM-DD
	InterviewStatus *InterviewStatus `json:"interview_status"`

	Address        *string `json:"address"`
	Neighborhood   *string `json:"neighborhood"`
	HouseholdSize  *int    `json:"household_size"`
	EducationLevel *string `json:"education_level"`
	HousingType    *string `json:"housing_type"`
	IncomeLevel    *string `json:"income_level"`

	HasDogsCats *bool `json:"has_dogs_cats"`

	StraysInArea     *bool    `json:"strays_in_area"`
	StrayDogsSeen    *int     `json:"stray_dogs_seen"`
	StrayCatsSeen    *int     `json:"stray_cats_seen"`
	FeedsStrays      *bool    `json:"feeds_strays"`
	VetVisitsPerYear *int     `json:"vet_visits_per_year"`
	VetAnnualCost    *float64 `json:"vet_annual_cost"`
}

type advanceStepRequest struct {
	Step int `json:"step"`
}

type formResponse struct {
	ID          string     `json:"id"`
	CityID      string     `json:"city_id"`
	OwnerUserID string     `json:"owner_user_id"`
	Status      Status     `json:"status"`
	CurrentStep int        `json:"current_step"`
	FormDate    time.Time  `json:"form_date"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`

	InterviewerName string          `json:"interviewer_name,omitempty"`
	InterviewDate   *time.Time      `json:"interview_date,omitempty"`
	InterviewStatus InterviewStatus `json:"interview_status,omitempty"`

	Address        string `json:"address,omitempty"`
	Neighborhood   string `json:"neighborhood,omitempty"`
	HouseholdSize  *int   `json:"household_size,omitempty"`
	EducationLevel string `json:"education_level,omitempty"`
	HousingType    string `json:"housing_type,omitempty"`
	IncomeLevel    string `json:"income_level,omitempty"`

	HasDogsCats *bool `json:"has_dogs_cats"`

	StraysInArea     *bool    `json:"strays_in_area,omitempty"`
	StrayDogsSeen    *int     `json:"stray_dogs_seen,omitempty"`
	StrayCatsSeen    *int     `json:"stray_cats_seen,omitempty"`
	FeedsStrays      *bool    `json:"feeds_strays,omitempty"`
	VetVisitsPerYear *int     `json:"vet_visits_per_year,omitempty"`
	VetAnnualCost    *float64 `json:"vet_annual_cost,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// createFormHandler godoc
// @Summary Crear formulario de censo
// @Description Crea un formulario en draft, paso 1, para la ciudad indicada.
// @Tags forms
// @Accept json
// @Produce json
// @Param payload body createFormRequest true "Ciudad y fecha del formulario"
// @Success 201 {object} formResponse
// @Failure 400 {string} string "invalid json / form_date inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "city not found"
// @Router /forms [post]
func createFormHandler(svc *Service, citiesSvc *cities.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createFormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if _, err := citiesSvc.GetCity(r.Context(), req.CityID); err != nil {
			http.Error(w, "city not found", http.StatusNotFound)
			return
		}

		var formDate time.Time
		if req.FormDate != "" {
			t, err := time.Parse("2006-01-02", req.FormDate)
			if err != nil {
				http.Error(w, "form_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			formDate = t
		}

		f, err := svc.Create(r.Context(), claims.UserID, req.CityID, formDate)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusCreated, toFormResponse(f))
	}
}

func listFormsHandler(svc *Service) http.HandlerFunc {
	// Owner ve los suyos; admin/auditor pueden filtrar por ciudad.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var (
			items []Form
			err   error
		)
		cityID := r.URL.Query().Get("city_id")
		if cityID != "" && (claims.Role == auth.RoleAdmin || claims.Role == auth.RoleAuditor) {
			items, err = svc.ListByCity(r.Context(), cityID)
		} else {
			items, err = svc.ListByOwner(r.Context(), claims.UserID)
		}
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]formResponse, 0, len(items))
		for _, f := range items {
			out = append(out, toFormResponse(f))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getFormHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadForm(w, r, svc)
		if !ok {
			return
		}
		if !CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusOK, toFormResponse(f))
	}
}

// updateFormHandler godoc
// @Summary Editar campos del formulario
// @Description Patch por punteros: solo los campos presentes se tocan. No aplica gating de pasos.
// @Tags forms
// @Accept json
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param payload body updateFormRequest true "Campos a modificar"
// @Success 200 {object} formResponse
// @Failure 400 {string} string "invalid json / valores inválidos"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "form not found"
// @Failure 409 {string} string "form already submitted"
// @Router /forms/{formID} [patch]
func updateFormHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadForm(w, r, svc)
		if !ok {
			return
		}
		if !CanMutate(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req updateFormRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		in := UpdateInput{
			InterviewerName:  req.InterviewerName,
			InterviewStatus:  req.InterviewStatus,
			Address:          req.Address,
			Neighborhood:     req.Neighborhood,
			HouseholdSize:    req.HouseholdSize,
			EducationLevel:   req.EducationLevel,
			HousingType:      req.HousingType,
			IncomeLevel:      req.IncomeLevel,
			HasDogsCats:      req.HasDogsCats,
			StraysInArea:     req.StraysInArea,
			StrayDogsSeen:    req.StrayDogsSeen,
			StrayCatsSeen:    req.StrayCatsSeen,
			FeedsStrays:      req.FeedsStrays,
			VetVisitsPerYear: req.VetVisitsPerYear,
			VetAnnualCost:    req.VetAnnualCost,
		}

		if req.FormDate != nil {
			t, err := time.Parse("2006-01-02", *req.FormDate)
			if err != nil {
				http.Error(w, "form_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.FormDate = &t
		}
		if req.InterviewDate != nil {
			t, err := time.Parse("2006-01-02", *req.InterviewDate)
			if err != nil {
				http.Error(w, "interview_date must be YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			in.InterviewDate = &t
		}

		updated, err := svc.Update(r.Context(), f.ID, claims.UserID, in)
		if err != nil {
			writeFormError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFormResponse(updated))
	}
}

func deleteFormHandler(svc *Service) http.HandlerFunc {
	// El delete cascadea animales, camada, ausencia y respuestas.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadForm(w, r, svc)
		if !ok {
			return
		}
		if !CanMutate(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		if err := svc.Delete(r.Context(), f.ID, claims.UserID); err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// advanceStepHandler godoc
// @Summary Avanzar de paso
// @Description Mueve el puntero de paso (1-8). Los pasos 4-6 exigen has_dogs_cats=true; el 7 exige que no sea true.
// @Tags forms
// @Accept json
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param payload body advanceStepRequest true "Paso destino"
// @Success 200 {object} formResponse
// @Failure 400 {string} string "step out of range"
// @Failure 409 {string} string "illegal step transition / form already submitted"
// @Router /forms/{formID}/step [post]
func advanceStepHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadForm(w, r, svc)
		if !ok {
			return
		}
		if !CanMutate(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req advanceStepRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.AdvanceStep(r.Context(), f.ID, claims.UserID, req.Step)
		if err != nil {
			writeFormError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFormResponse(updated))
	}
}

func completeFormHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadForm(w, r, svc)
		if !ok {
			return
		}
		if !CanMutate(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		updated, err := svc.Complete(r.Context(), f.ID, claims.UserID)
		if err != nil {
			writeFormError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFormResponse(updated))
	}
}

// submitFormHandler godoc
// @Summary Enviar formulario
// @Description Cierra definitivamente un formulario completado; fija submitted_at.
// @Tags forms
// @Produce json
// @Param formID path string true "ID del formulario"
// @Success 200 {object} formResponse
// @Failure 409 {string} string "form not completed"
// @Router /forms/{formID}/submit [post]
func submitFormHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadForm(w, r, svc)
		if !ok {
			return
		}
		if !CanMutate(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		updated, err := svc.Submit(r.Context(), f.ID, claims.UserID)
		if err != nil {
			writeFormError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toFormResponse(updated))
	}
}

// validateFormHandler godoc
// @Summary Checklist de completitud
// @Description Devuelve todos los campos y preguntas obligatorias faltantes, sin cortar en el primero.
// @Tags forms
// @Produce json
// @Param formID path string true "ID del formulario"
// @Success 200 {object} ValidationResult
// @Router /forms/{formID}/validate [get]
func validateFormHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadForm(w, r, svc)
		if !ok {
			return
		}
		if !CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		result, err := svc.ValidateCompletion(r.Context(), f.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

// loadForm resuelve claims + formulario o escribe el error HTTP.
func loadForm(w http.ResponseWriter, r *http.Request, svc *Service) (auth.Claims, Form, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, Form{}, false
	}

	f, err := svc.GetByID(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return auth.Claims{}, Form{}, false
	}
	return claims, f, true
}

func writeFormError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidStep), errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrIllegalTransition),
		errors.Is(err, ErrIncompleteForm),
		errors.Is(err, ErrNotCompleted),
		errors.Is(err, ErrFormSubmitted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toFormResponse(f Form) formResponse {
	return formResponse{
		ID:               f.ID,
		CityID:           f.CityID,
		OwnerUserID:      f.OwnerUserID,
		Status:           f.Status,
		CurrentStep:      f.CurrentStep,
		FormDate:         f.FormDate,
		SubmittedAt:      f.SubmittedAt,
		InterviewerName:  f.InterviewerName,
		InterviewDate:    f.InterviewDate,
		InterviewStatus:  f.InterviewStatus,
		Address:          f.Address,
		Neighborhood:     f.Neighborhood,
		HouseholdSize:    f.HouseholdSize,
		EducationLevel:   f.EducationLevel,
		HousingType:      f.HousingType,
		IncomeLevel:      f.IncomeLevel,
		HasDogsCats:      f.HasDogsCats,
		StraysInArea:     f.StraysInArea,
		StrayDogsSeen:    f.StrayDogsSeen,
		StrayCatsSeen:    f.StrayCatsSeen,
		FeedsStrays:      f.FeedsStrays,
		VetVisitsPerYear: f.VetVisitsPerYear,
		VetAnnualCost:    f.VetAnnualCost,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en users/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
