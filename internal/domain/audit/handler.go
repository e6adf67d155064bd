package audit

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"pet-census/internal/middleware"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/audit", listAuditHandler(svc))
}

type entryResponse struct {
	ID         string          `json:"id"`
	Action     Action          `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   string          `json:"entity_id"`
	ActorID    string          `json:"actor_id"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// listAuditHandler godoc
// @Summary Listar bitácora de auditoría
// @Description Solo rol auditor (o admin). Filtros opcionales por entidad y actor.
// @Tags audit
// @Produce json
// @Param entity_type query string false "Tipo de entidad (form, animal, ...)"
// @Param entity_id query string false "ID de la entidad"
// @Param actor_id query string false "ID del actor"
// @Param limit query int false "Máximo de registros (default 100)"
// @Success 200 {array} entryResponse
// @Failure 403 {string} string "forbidden"
// @Router /audit [get]
func listAuditHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || (claims.Role != auth.RoleAuditor && claims.Role != auth.RoleAdmin) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		items, err := svc.List(r.Context(), ListFilter{
			EntityType: r.URL.Query().Get("entity_type"),
			EntityID:   r.URL.Query().Get("entity_id"),
			ActorID:    r.URL.Query().Get("actor_id"),
			Limit:      limit,
		})
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]entryResponse, 0, len(items))
		for _, e := range items {
			out = append(out, entryResponse{
				ID:         e.ID,
				Action:     e.Action,
				EntityType: e.EntityType,
				EntityID:   e.EntityID,
				ActorID:    e.ActorID,
				Before:     e.Before,
				After:      e.After,
				CreatedAt:  e.CreatedAt,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
