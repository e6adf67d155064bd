package responses

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-census/internal/domain/forms"
	"pet-census/internal/middleware"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// Las respuestas cuelgan de /forms/{formID} y se registran planas junto
// con las rutas del módulo forms.
func RegisterRoutes(r chi.Router, svc *Service, formsSvc *forms.Service) {
	r.Get("/forms/{formID}/responses", listResponsesHandler(svc, formsSvc))
	r.Put("/forms/{formID}/responses/{questionID}", upsertResponseHandler(svc, formsSvc))
	r.Delete("/forms/{formID}/responses/{questionID}", deleteResponseHandler(svc, formsSvc))
}

type upsertResponseRequest struct {
	Text string `json:"text"`
}

type responseResponse struct {
	ID         string    `json:"id"`
	FormID     string    `json:"form_id"`
	QuestionID string    `json:"question_id"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func listResponsesHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadParentForm(w, r, formsSvc)
		if !ok {
			return
		}
		if !forms.CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.ListByForm(r.Context(), f.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]responseResponse, 0, len(items))
		for _, resp := range items {
			out = append(out, toResponseResponse(resp))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// upsertResponseHandler godoc
// @Summary Responder una pregunta de la ciudad
// @Description Crea o pisa la respuesta del par (formulario, pregunta); una sola fila viva por par.
// @Tags responses
// @Accept json
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param questionID path string true "ID de la pregunta"
// @Param payload body upsertResponseRequest true "Texto de la respuesta"
// @Success 200 {object} responseResponse
// @Failure 409 {string} string "form already submitted"
// @Router /forms/{formID}/responses/{questionID} [put]
func upsertResponseHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		var req upsertResponseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		resp, err := svc.Upsert(r.Context(), f.ID, chi.URLParam(r, "questionID"), claims.UserID, req.Text)
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, toResponseResponse(resp))
	}
}

func deleteResponseHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), f.ID, chi.URLParam(r, "questionID"), claims.UserID); err != nil {
			if errors.Is(err, ErrNotFound) {
				http.Error(w, "response not found", http.StatusNotFound)
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

func toResponseResponse(r Response) responseResponse {
	return responseResponse{
		ID:         r.ID,
		FormID:     r.FormID,
		QuestionID: r.QuestionID,
		Text:       r.Text,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en users/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
