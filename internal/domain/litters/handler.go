package litters

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/forms"
	"pet-census/internal/middleware"
	"pet-census/internal/platform/fielderr"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// La camada cuelga de /forms/{formID} y se registra plana junto con las
// rutas del módulo forms.
func RegisterRoutes(r chi.Router, svc *Service, formsSvc *forms.Service) {
	r.Get("/forms/{formID}/litter", getLitterHandler(svc, formsSvc))
	r.Put("/forms/{formID}/litter", upsertLitterHandler(svc, formsSvc))
	r.Delete("/forms/{formID}/litter", deleteLitterHandler(svc, formsSvc))
}

type litterPayload struct {
	Species animals.Species `json:"species"`

	Born      int `json:"born"`
	Survived  int `json:"survived"`
	Died      int `json:"died"`
	GivenAway int `json:"given_away"`
	Sold      int `json:"sold"`
	Kept      int `json:"kept"`

	Vaccinated       *bool  `json:"vaccinated"`
	VaccinationNotes string `json:"vaccination_notes"`

	CastrationPlan       string `json:"castration_plan"`
	CastrationPlanReason string `json:"castration_plan_reason"`
}

type litterResponse struct {
	ID     string `json:"id"`
	FormID string `json:"form_id"`

	Species animals.Species `json:"species,omitempty"`

	Born      int `json:"born"`
	Survived  int `json:"survived"`
	Died      int `json:"died"`
	GivenAway int `json:"given_away"`
	Sold      int `json:"sold"`
	Kept      int `json:"kept"`

	Vaccinated       *bool  `json:"vaccinated,omitempty"`
	VaccinationNotes string `json:"vaccination_notes,omitempty"`

	CastrationPlan       string `json:"castration_plan,omitempty"`
	CastrationPlanReason string `json:"castration_plan_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func getLitterHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadParentForm(w, r, formsSvc)
		if !ok {
			return
		}
		if !forms.CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		l, err := svc.GetByForm(r.Context(), f.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "litter not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toLitterResponse(l))
	}
}

// upsertLitterHandler godoc
// @Summary Guardar registro de camada
// @Description Crea o pisa el registro de camada del formulario; a lo sumo uno por formulario.
// @Tags litters
// @Accept json
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param payload body litterPayload true "Datos de la camada"
// @Success 200 {object} litterResponse
// @Failure 400 {object} fielderr.List "conteos inválidos"
// @Failure 409 {string} string "form already submitted"
// @Router /forms/{formID}/litter [put]
func upsertLitterHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		var req litterPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		l, err := svc.UpsertByForm(r.Context(), f.ID, claims.UserID, UpsertInput{
			Species:              req.Species,
			Born:                 req.Born,
			Survived:             req.Survived,
			Died:                 req.Died,
			GivenAway:            req.GivenAway,
			Sold:                 req.Sold,
			Kept:                 req.Kept,
			Vaccinated:           req.Vaccinated,
			VaccinationNotes:     req.VaccinationNotes,
			CastrationPlan:       req.CastrationPlan,
			CastrationPlanReason: req.CastrationPlanReason,
		})
		if err != nil {
			writeLitterError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLitterResponse(l))
	}
}

func deleteLitterHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		if err := svc.DeleteByForm(r.Context(), f.ID, claims.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "litter not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func loadParentForm(w http.ResponseWriter, r *http.Request, formsSvc *forms.Service) (auth.Claims, forms.Form, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, forms.Form{}, false
	}

	f, err := formsSvc.GetByID(r.Context(), chi.URLParam(r, "formID"))
	if err != nil {
		http.Error(w, "form not found", http.StatusNotFound)
		return auth.Claims{}, forms.Form{}, false
	}
	return claims, f, true
}

func mutableParentForm(w http.ResponseWriter, r *http.Request, formsSvc *forms.Service) (auth.Claims, forms.Form, bool) {
	claims, f, ok := loadParentForm(w, r, formsSvc)
	if !ok {
		return auth.Claims{}, forms.Form{}, false
	}
	if !forms.CanMutate(claims, f) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, forms.Form{}, false
	}
	if f.Status == forms.StatusSubmitted {
		http.Error(w, "form already submitted", http.StatusConflict)
		return auth.Claims{}, forms.Form{}, false
	}
	return claims, f, true
}

func writeLitterError(w http.ResponseWriter, err error) {
	var fieldErrs fielderr.List
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, fieldErrs)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toLitterResponse(l Litter) litterResponse {
	return litterResponse{
		ID:                   l.ID,
		FormID:               l.FormID,
		Species:              l.Species,
		Born:                 l.Born,
		Survived:             l.Survived,
		Died:                 l.Died,
		GivenAway:            l.GivenAway,
		Sold:                 l.Sold,
		Kept:                 l.Kept,
		Vaccinated:           l.Vaccinated,
		VaccinationNotes:     l.VaccinationNotes,
		CastrationPlan:       l.CastrationPlan,
		CastrationPlanReason: l.CastrationPlanReason,
		CreatedAt:            l.CreatedAt,
		UpdatedAt:            l.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en users/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
