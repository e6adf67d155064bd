package cities

import (
	"encoding/json"
	"net/http"
	"time"

	"pet-census/internal/domain/ordering"
	"pet-census/internal/middleware"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cities", func(cr chi.Router) {
		cr.Get("/", listCitiesHandler(svc))
		cr.Post("/", createCityHandler(svc))

		cr.Route("/{cityID}", func(ir chi.Router) {
			ir.Get("/", getCityHandler(svc))
			ir.Patch("/", updateCityHandler(svc))
			ir.Delete("/", deleteCityHandler(svc))

			ir.Get("/questions", listQuestionsHandler(svc))
			ir.Post("/questions", createQuestionHandler(svc))
			ir.Post("/questions/reorder", reorderQuestionsHandler(svc))
			ir.Patch("/questions/{questionID}", updateQuestionHandler(svc))
			ir.Delete("/questions/{questionID}", deleteQuestionHandler(svc))
		})
	})
}

type cityRequest struct {
	Name   string `json:"name"`
	Year   int    `json:"year"`
	Region string `json:"region"`
}

type updateCityRequest struct {
	Name   *string `json:"name"`
	Year   *int    `json:"year"`
	Region *string `json:"region"`
}

type cityResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Year      int       `json:"year"`
	Region    string    `json:"region,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type questionRequest struct {
	Text     string `json:"text"`
	Required bool   `json:"required"`
}

type updateQuestionRequest struct {
	Text     *string `json:"text"`
	Required *bool   `json:"required"`
}

type reorderRequest struct {
	Orders []ordering.Change `json:"orders"`
}

type questionResponse struct {
	ID            string    `json:"id"`
	CityID        string    `json:"city_id"`
	Text          string    `json:"text"`
	QuestionOrder int       `json:"question_order"`
	Required      bool      `json:"required"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// requireAdmin centraliza el chequeo de rol + scope de ciudad.
// cityID vacío = operación global (crear/listar ciudades).
func requireAdmin(w http.ResponseWriter, r *http.Request, cityID string) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	if claims.Role != auth.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	if cityID != "" && !claims.CanManageCity(cityID) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return auth.Claims{}, false
	}
	return claims, true
}

// createCityHandler godoc
// @Summary Crear ciudad
// @Tags cities
// @Accept json
// @Produce json
// @Param payload body cityRequest true "Nombre, año y región; (name, year) es único"
// @Success 201 {object} cityResponse
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "city already exists for that year"
// @Router /cities [post]
func createCityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAdmin(w, r, "")
		if !ok {
			return
		}

		var req cityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.CreateCity(r.Context(), claims.UserID, CityInput{
			Name:   req.Name,
			Year:   req.Year,
			Region: req.Region,
		})
		if err != nil {
			switch err {
			case ErrCityExists:
				http.Error(w, err.Error(), http.StatusConflict)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toCityResponse(c))
	}
}

func listCitiesHandler(svc *Service) http.HandlerFunc {
	// lectura abierta a cualquier usuario autenticado (elige ciudad al crear formulario)
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListCities(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]cityResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCityResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getCityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := svc.GetCity(r.Context(), chi.URLParam(r, "cityID"))
		if err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "city not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		writeJSON(w, http.StatusOK, toCityResponse(c))
	}
}

func updateCityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cityID := chi.URLParam(r, "cityID")
		claims, ok := requireAdmin(w, r, cityID)
		if !ok {
			return
		}

		var req updateCityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		c, err := svc.UpdateCity(r.Context(), cityID, claims.UserID, UpdateCityInput{
			Name:   req.Name,
			Year:   req.Year,
			Region: req.Region,
		})
		if err != nil {
			switch err {
			case ErrCityExists:
				http.Error(w, err.Error(), http.StatusConflict)
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "city not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toCityResponse(c))
	}
}

func deleteCityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cityID := chi.URLParam(r, "cityID")
		claims, ok := requireAdmin(w, r, cityID)
		if !ok {
			return
		}

		if err := svc.DeleteCity(r.Context(), cityID, claims.UserID); err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "city not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func createQuestionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cityID := chi.URLParam(r, "cityID")
		claims, ok := requireAdmin(w, r, cityID)
		if !ok {
			return
		}

		var req questionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		q, err := svc.CreateQuestion(r.Context(), cityID, claims.UserID, QuestionInput{
			Text:     req.Text,
			Required: req.Required,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "city not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, toQuestionResponse(q))
	}
}

func listQuestionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := middleware.GetClaims(r.Context()); !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.ListQuestions(r.Context(), chi.URLParam(r, "cityID"))
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]questionResponse, 0, len(items))
		for _, q := range items {
			out = append(out, toQuestionResponse(q))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// reorderQuestionsHandler godoc
// @Summary Reordenar preguntas de una ciudad
// @Description Aplica todas las reasignaciones de orden como unidad atómica; órdenes duplicados se rechazan.
// @Tags cities
// @Accept json
// @Param cityID path string true "ID de la ciudad"
// @Param payload body reorderRequest true "Lote de (id, new_order)"
// @Success 204
// @Failure 400 {string} string "lote inválido / orden duplicado"
// @Failure 404 {string} string "city not found"
// @Router /cities/{cityID}/questions/reorder [post]
func reorderQuestionsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cityID := chi.URLParam(r, "cityID")
		claims, ok := requireAdmin(w, r, cityID)
		if !ok {
			return
		}

		var req reorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.ReorderQuestions(r.Context(), cityID, claims.UserID, req.Orders); err != nil {
			switch err {
			case ordering.ErrDuplicateOrder, ordering.ErrInvalidOrder, ordering.ErrEmptyChange:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func updateQuestionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cityID := chi.URLParam(r, "cityID")
		claims, ok := requireAdmin(w, r, cityID)
		if !ok {
			return
		}

		var req updateQuestionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		q, err := svc.UpdateQuestion(r.Context(), cityID, chi.URLParam(r, "questionID"), claims.UserID, UpdateQuestionInput{
			Text:     req.Text,
			Required: req.Required,
		})
		if err != nil {
			switch err {
			case ErrInvalidInput:
				http.Error(w, err.Error(), http.StatusBadRequest)
			case ErrNotFound:
				http.Error(w, "question not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusOK, toQuestionResponse(q))
	}
}

func deleteQuestionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cityID := chi.URLParam(r, "cityID")
		claims, ok := requireAdmin(w, r, cityID)
		if !ok {
			return
		}

		if err := svc.DeleteQuestion(r.Context(), cityID, chi.URLParam(r, "questionID"), claims.UserID); err != nil {
			switch err {
			case ErrNotFound:
				http.Error(w, "question not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func toCityResponse(c City) cityResponse {
	return cityResponse{
		ID:        c.ID,
		Name:      c.Name,
		Year:      c.Year,
		Region:    c.Region,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toQuestionResponse(q Question) questionResponse {
	return questionResponse{
		ID:            q.ID,
		CityID:        q.CityID,
		Text:          q.Text,
		QuestionOrder: q.QuestionOrder,
		Required:      q.Required,
		CreatedAt:     q.CreatedAt,
		UpdatedAt:     q.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en users/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
