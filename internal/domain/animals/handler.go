package animals

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-census/internal/domain/forms"
	"pet-census/internal/domain/ordering"
	"pet-census/internal/middleware"
	"pet-census/internal/platform/fielderr"
	"pet-census/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// Las ruta de animales cuelgan de /forms/{formID} y se registran planas
// junto con las del módulo forms.
func RegisterRoutes(r chi.Router, svc *Service, formsSvc *forms.Service) {
	r.Get("/forms/{formID}/animals", listAnimalsHandler(svc, formsSvc))
	r.Post("/forms/{formID}/animals", createAnimalHandler(svc, formsSvc))
	r.Post("/forms/{formID}/animals/bulk", bulkCreateAnimalsHandler(svc, formsSvc))
	r.Post("/forms/{formID}/animals/reorder", reorderAnimalsHandler(svc, formsSvc))

	r.Get("/forms/{formID}/animals/{animalID}", getAnimalHandler(svc, formsSvc))
	r.Patch("/forms/{formID}/animals/{animalID}", updateAnimalHandler(svc, formsSvc))
	r.Post("/forms/{formID}/animals/{animalID}/minimize", toggleMinimizedHandler(svc, formsSvc))
	r.Delete("/forms/{formID}/animals/{animalID}", deleteAnimalHandler(svc, formsSvc))
}

type animalPayload struct {
	Species Species `json:"species"`
	Sex     Sex     `json:"sex"`
	Breed   string  `json:"breed"`

	AgeMonths *int `json:"age_months"`
	AgeYears  *int `json:"age_years"`

	Castration       CastrationStatus `json:"castration_status"`
	CastrationReason string           `json:"castration_reason"`

	Vaccination       VaccinationStatus `json:"vaccination_status"`
	VaccinationReason string            `json:"vaccination_reason"`

	Acquisition     Acquisition `json:"acquisition"`
	AcquisitionTime string      `json:"acquisition_time"`

	HasMicrochip    *bool  `json:"has_microchip"`
	MicrochipNumber string `json:"microchip_number"`
	Description     string `json:"description"`
	Name            string `json:"name"`

	CardMinimized bool                  `json:"card_minimized"`
	Extra         map[string]ExtraValue `json:"extra"`
}

type updateAnimalRequest struct {
	Species *Species `json:"species"`
	Sex     *Sex     `json:"sex"`
	Breed   *string  `json:"breed"`

	AgeMonths *int `json:"age_months"`
	AgeYears  *int `json:"age_years"`

	Castration       *CastrationStatus `json:"castration_status"`
	CastrationReason *string           `json:"castration_reason"`

	Vaccination       *VaccinationStatus `json:"vaccination_status"`
	VaccinationReason *string            `json:"vaccination_reason"`

	Acquisition     *Acquisition `json:"acquisition"`
	AcquisitionTime *string      `json:"acquisition_time"`

	HasMicrochip    *bool   `json:"has_microchip"`
	MicrochipNumber *string `json:"microchip_number"`
	Description     *string `json:"description"`
	Name            *string `json:"name"`

	Extra map[string]ExtraValue `json:"extra"`
}

type reorderRequest struct {
	Changes []ordering.Change `json:"changes"`
}

type animalResponse struct {
	ID      string  `json:"id"`
	FormID  string  `json:"form_id"`
	Kind    Kind    `json:"kind"`
	Species Species `json:"species"`
	Sex     Sex     `json:"sex,omitempty"`
	Breed   string  `json:"breed,omitempty"`

	AgeMonths *int `json:"age_months,omitempty"`
	AgeYears  *int `json:"age_years,omitempty"`

	Castration       CastrationStatus `json:"castration_status,omitempty"`
	CastrationReason string           `json:"castration_reason,omitempty"`

	Vaccination       VaccinationStatus `json:"vaccination_status,omitempty"`
	VaccinationReason string            `json:"vaccination_reason,omitempty"`

	Acquisition     Acquisition `json:"acquisition,omitempty"`
	AcquisitionTime string      `json:"acquisition_time,omitempty"`

	HasMicrochip    *bool  `json:"has_microchip,omitempty"`
	MicrochipNumber string `json:"microchip_number,omitempty"`
	Description     string `json:"description,omitempty"`
	Name            string `json:"name,omitempty"`

	RegistrationOrder int                   `json:"registration_order"`
	CardMinimized     bool                  `json:"card_minimized"`
	Extra             map[string]ExtraValue `json:"extra,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// listAnimalsHandler godoc
// @Summary Listar animales de un formulario
// @Description Devuelve los animales del kind pedido (?kind=current|previous) ordenados por registration_order.
// @Tags animals
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param kind query string true "current o previous"
// @Success 200 {array} animalResponse
// @Failure 400 {string} string "kind inválido"
// @Router /forms/{formID}/animals [get]
func listAnimalsHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadParentForm(w, r, formsSvc)
		if !ok {
			return
		}
		if !forms.CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		kind := Kind(r.URL.Query().Get("kind"))
		items, err := svc.ListByForm(r.Context(), f.ID, kind)
		if err != nil {
			writeAnimalError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// createAnimalHandler godoc
// @Summary Registrar un animal
// @Description Crea un animal del kind pedido; el registration_order se asigna denso al final de la lista.
// @Tags animals
// @Accept json
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param kind query string true "current o previous"
// @Param payload body animalPayload true "Datos del animal"
// @Success 201 {object} animalResponse
// @Failure 400 {object} fielderr.List "validación de campos"
// @Failure 409 {string} string "form already submitted"
// @Router /forms/{formID}/animals [post]
func createAnimalHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		var req animalPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		kind := Kind(r.URL.Query().Get("kind"))
		a, err := svc.Create(r.Context(), f.ID, kind, claims.UserID, toCreateInput(req))
		if err != nil {
			writeAnimalError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAnimalResponse(a))
	}
}

// bulkCreateAnimalsHandler godoc
// @Summary Registrar varios animales de una vez
// @Description Valida el lote completo antes de insertar; los órdenes salen consecutivos desde el final de la lista. Todo o nada.
// @Tags animals
// @Accept json
// @Produce json
// @Param formID path string true "ID del formulario"
// @Param kind query string true "current o previous"
// @Param payload body []animalPayload true "Animales a crear"
// @Success 201 {array} animalResponse
// @Failure 400 {object} fielderr.List "validación de campos"
// @Router /forms/{formID}/animals/bulk [post]
func bulkCreateAnimalsHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		var req []animalPayload
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		items := make([]CreateInput, 0, len(req))
		for _, p := range req {
			items = append(items, toCreateInput(p))
		}

		kind := Kind(r.URL.Query().Get("kind"))
		created, err := svc.BulkCreate(r.Context(), f.ID, kind, claims.UserID, items)
		if err != nil {
			writeAnimalError(w, err)
			return
		}

		out := make([]animalResponse, 0, len(created))
		for _, a := range created {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// reorderAnimalsHandler godoc
// @Summary Reordenar animales
// @Description Aplica el lote de cambios de orden de forma atómica; ids duplicados u órdenes repetidos rechazan el lote entero.
// @Tags animals
// @Accept json
// @Param formID path string true "ID del formulario"
// @Param kind query string true "current o previous"
// @Param payload body reorderRequest true "Cambios de orden"
// @Success 204
// @Failure 400 {string} string "lote inválido"
// @Router /forms/{formID}/animals/reorder [post]
func reorderAnimalsHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		var req reorderRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		kind := Kind(r.URL.Query().Get("kind"))
		if err := svc.Reorder(r.Context(), f.ID, kind, claims.UserID, req.Changes); err != nil {
			writeAnimalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func getAnimalHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := loadParentForm(w, r, formsSvc)
		if !ok {
			return
		}
		if !forms.CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, ok := loadAnimal(w, r, svc, f.ID)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		a, ok := loadAnimal(w, r, svc, f.ID)
		if !ok {
			return
		}

		var req updateAnimalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		updated, err := svc.Update(r.Context(), a.ID, claims.UserID, UpdateInput{
			Species:           req.Species,
			Sex:               req.Sex,
			Breed:             req.Breed,
			AgeMonths:         req.AgeMonths,
			AgeYears:          req.AgeYears,
			Castration:        req.Castration,
			CastrationReason:  req.CastrationReason,
			Vaccination:       req.Vaccination,
			VaccinationReason: req.VaccinationReason,
			Acquisition:       req.Acquisition,
			AcquisitionTime:   req.AcquisitionTime,
			HasMicrochip:      req.HasMicrochip,
			MicrochipNumber:   req.MicrochipNumber,
			Description:       req.Description,
			Name:              req.Name,
			Extra:             req.Extra,
		})
		if err != nil {
			writeAnimalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func toggleMinimizedHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	// Estado de UI; igual exige el formulario mutable para no tocar enviados.
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		a, ok := loadAnimal(w, r, svc, f.ID)
		if !ok {
			return
		}

		updated, err := svc.ToggleMinimized(r.Context(), a.ID, claims.UserID)
		if err != nil {
			writeAnimalError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func deleteAnimalHandler(svc *Service, formsSvc *forms.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, f, ok := mutableParentForm(w, r, formsSvc)
		if !ok {
			return
		}

		a, ok := loadAnimal(w, r, svc, f.ID)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), a.ID, claims.UserID); err != nil {
			writeAnimalError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// loadParentForm resuelve claims + formulario padre o escribe el error HTTP.
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

// mutableParentForm agrega a loadParentForm el chequeo de permisos de
// escritura y el rechazo de formularios ya enviados.
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

// loadAnimal carga el animal y verifica que pertenezca al formulario de la URL.
func loadAnimal(w http.ResponseWriter, r *http.Request, svc *Service, formID string) (Animal, bool) {
	a, err := svc.GetByID(r.Context(), chi.URLParam(r, "animalID"))
	if err != nil || a.FormID != formID {
		http.Error(w, "animal not found", http.StatusNotFound)
		return Animal{}, false
	}
	return a, true
}

func writeAnimalError(w http.ResponseWriter, err error) {
	var fieldErrs fielderr.List
	switch {
	case errors.As(err, &fieldErrs):
		writeJSON(w, http.StatusBadRequest, fieldErrs)
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ordering.ErrDuplicateOrder),
		errors.Is(err, ordering.ErrInvalidOrder),
		errors.Is(err, ordering.ErrEmptyChange):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toCreateInput(p animalPayload) CreateInput {
	return CreateInput{
		Species:           p.Species,
		Sex:               p.Sex,
		Breed:             p.Breed,
		AgeMonths:         p.AgeMonths,
		AgeYears:          p.AgeYears,
		Castration:        p.Castration,
		CastrationReason:  p.CastrationReason,
		Vaccination:       p.Vaccination,
		VaccinationReason: p.VaccinationReason,
		Acquisition:       p.Acquisition,
		AcquisitionTime:   p.AcquisitionTime,
		HasMicrochip:      p.HasMicrochip,
		MicrochipNumber:   p.MicrochipNumber,
		Description:       p.Description,
		Name:              p.Name,
		CardMinimized:     p.CardMinimized,
		Extra:             p.Extra,
	}
}

func toAnimalResponse(a Animal) animalResponse {
	return animalResponse{
		ID:                a.ID,
		FormID:            a.FormID,
		Kind:              a.Kind,
		Species:           a.Species,
		Sex:               a.Sex,
		Breed:             a.Breed,
		AgeMonths:         a.AgeMonths,
		AgeYears:          a.AgeYears,
		Castration:        a.Castration,
		CastrationReason:  a.CastrationReason,
		Vaccination:       a.Vaccination,
		VaccinationReason: a.VaccinationReason,
		Acquisition:       a.Acquisition,
		AcquisitionTime:   a.AcquisitionTime,
		HasMicrochip:      a.HasMicrochip,
		MicrochipNumber:   a.MicrochipNumber,
		Description:       a.Description,
		Name:              a.Name,
		RegistrationOrder: a.RegistrationOrder,
		CardMinimized:     a.CardMinimized,
		Extra:             a.Extra,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
}

// writeJSON duplicado a propósito por módulo (ver nota en users/handler.go).
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
