package absences

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-census/internal/domain/forms"
	"pet-census/internal/middleware"
	"pet-census/internal/platform/fielderr"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// El registro de ausencia cuelga de /forms/{formID} y se registra plano
// junto con las rutas del módulo forms.
func RegisterRoutes(r chi.Router, svc *Service, formsSvc *forms.Service) {
	r.Get("/forms/{formID}/absence", getAbsenceHandler(svc, formsSvc))
	r.Put("/forms/{formID}/absence", upsertAbsenceHandler(svc, formsSvc))
	r.Delete("/forms/{formID}/absence", deleteAbsenceHandler(svc, formsSvc))
}

type absencePayload struct {
	WouldAcquire       WouldAcquire `json:"would_acquire"`
	WouldAcquireDetail string       `json:"would_acquire_detail"`

	CastrationDecision string `json:"castration_decision"`
	CastrationReason   string `json:"castration_reason"`

	Reasons      []Reason `json:"reasons"`
	ReasonsOther string   `json:"reasons_other"`
}

type absenceResponse struct {
	ID     string `json:"id"`
	FormID string `json:"form_id"`

	WouldAcquire       WouldAcquire `json:"would_acquire,omitempty"`
	WouldAcquireDetail string       `json:"would_acquire_detail,omitempty"`

	CastrationDecision string `json:"castration_decision,omitempty"`
	CastrationReason   string `json:"castration_reason,omitempty"`

	Reasons      []Reason `json:"reasons,omitempty"`
	ReasonsOther string   `json:"reasons_other,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func getAbsenceHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadParentForm(w, r, formsSvc)
		if !ok {
			return
		}
		if !forms.CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		rec, err := svc.GetByForm(r.Context(), f.ID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "absence record not found", http.StatusNotFound)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toAbsenceResponse(rec))
	}
}

// upsertAbsenceHandler godoc
// @Summary Guardar registro de ausencia
// @Description Crea o pisa el registro de ausencia del formulario; a lo sumo uno por formulario.
// @Tags absences
// @Accept json
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param payload body absencePayload true "Datos de la ausencia"
// @Success 200 {object} absenceResponse
// @Failure 400 {object} fielderr.List "valores inválidos"
// @Failure 409 {string} string "form already submitted"
// @Router /forms/{formID}/absence [put]
func upsertAbsenceHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		var req absencePayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		rec, err := svc.UpsertByForm(r.Context(), f.ID, claims.UserID, UpsertInput{
			WouldAcquire:       req.WouldAcquire,
			WouldAcquireDetail: req.WouldAcquireDetail,
			CastrationDecision: req.CastrationDecision,
			CastrationReason:   req.CastrationReason,
			Reasons:            req.Reasons,
			ReasonsOther:       req.ReasonsOther,
		})
		if err != nil {
			writeAbsenceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAbsenceResponse(rec))
	}
}

func deleteAbsenceHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		if err := svc.DeleteByForm(r.Context(), f.ID, claims.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "absence record not found", http.StatusNotFound)
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

func writeAbsenceError(w http.ResponseWriter, err error) {
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

func toAbsenceResponse(rec Record) absenceResponse {
	return absenceResponse{
		ID:                 rec.ID,
		FormID:             rec.FormID,
		WouldAcquire:       rec.WouldAcquire,
		WouldAcquireDetail: rec.WouldAcquireDetail,
		CastrationDecision: rec.CastrationDecision,
		CastrationReason:   rec.CastrationReason,
		Reasons:            rec.Reasons,
		ReasonsOther:       rec.ReasonsOther,
		CreatedAt:          rec.CreatedAt,
		UpdatedAt:          rec.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en users/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
