package router

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"pet-census/internal/domain/absences"
	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/forms"
	"pet-census/internal/domain/litters"
	"pet-census/internal/domain/responses"
	"pet-census/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// fullFormView es el read model que consumen exportación y reportes:
// el formulario con todos sus hijos en una sola respuesta. Se arma acá
// para que los módulos hijos no se conozcan entre sí.
type fullFormView struct {
	Form            formView       `json:"form"`
	CurrentAnimals  []animalView   `json:"current_animals"`
	PreviousAnimals []animalView   `json:"previous_animals"`
	Litter          *litterView    `json:"litter,omitempty"`
	Absence         *absenceView   `json:"absence,omitempty"`
	Responses       []responseView `json:"responses"`
}

type formView struct {
	ID          string       `json:"id"`
	CityID      string       `json:"city_id"`
	OwnerUserID string       `json:"owner_user_id"`
	Status      forms.Status `json:"status"`
	CurrentStep int          `json:"current_step"`
	FormDate    time.Time    `json:"form_date"`
	SubmittedAt *time.Time   `json:"submitted_at,omitempty"`

	InterviewerName string                `json:"interviewer_name,omitempty"`
	InterviewDate   *time.Time            `json:"interview_date,omitempty"`
	InterviewStatus forms.InterviewStatus `json:"interview_status,omitempty"`

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
}

type animalView struct {
	ID      string          `json:"id"`
	Species animals.Species `json:"species"`
	Sex     animals.Sex     `json:"sex,omitempty"`
	Breed   string          `json:"breed,omitempty"`

	AgeMonths *int `json:"age_months,omitempty"`
	AgeYears  *int `json:"age_years,omitempty"`

	Castration       animals.CastrationStatus `json:"castration_status,omitempty"`
	CastrationReason string                   `json:"castration_reason,omitempty"`

	Vaccination       animals.VaccinationStatus `json:"vaccination_status,omitempty"`
	VaccinationReason string                    `json:"vaccination_reason,omitempty"`

	Acquisition     animals.Acquisition `json:"acquisition,omitempty"`
	AcquisitionTime string              `json:"acquisition_time,omitempty"`

	HasMicrochip    *bool  `json:"has_microchip,omitempty"`
	MicrochipNumber string `json:"microchip_number,omitempty"`
	Description     string `json:"description,omitempty"`
	Name            string `json:"name,omitempty"`

	RegistrationOrder int                           `json:"registration_order"`
	CardMinimized     bool                          `json:"card_minimized"`
	Extra             map[string]animals.ExtraValue `json:"extra,omitempty"`
}

type litterView struct {
	Species   animals.Species `json:"species,omitempty"`
	Born      int             `json:"born"`
	Survived  int             `json:"survived"`
	Died      int             `json:"died"`
	GivenAway int             `json:"given_away"`
	Sold      int             `json:"sold"`
	Kept      int             `json:"kept"`

	Vaccinated       *bool  `json:"vaccinated,omitempty"`
	VaccinationNotes string `json:"vaccination_notes,omitempty"`

	CastrationPlan       string `json:"castration_plan,omitempty"`
	CastrationPlanReason string `json:"castration_plan_reason,omitempty"`
}

type absenceView struct {
	WouldAcquire       absences.WouldAcquire `json:"would_acquire,omitempty"`
	WouldAcquireDetail string                `json:"would_acquire_detail,omitempty"`

	CastrationDecision string `json:"castration_decision,omitempty"`
	CastrationReason   string `json:"castration_reason,omitempty"`

	Reasons      []absences.Reason `json:"reasons,omitempty"`
	ReasonsOther string            `json:"reasons_other,omitempty"`
}

type responseView struct {
	QuestionID string `json:"question_id"`
	Text       string `json:"text"`
}

func fullFormHandler(
	formsSvc *forms.Service,
	animalsSvc *animals.Service,
	littersSvc *litters.Service,
	absencesSvc *absences.Service,
	responsesSvc *responses.Service,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := middleware.GetClaims(ctx)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f, err := formsSvc.GetByID(ctx, chi.URLParam(r, "formID"))
		if err != nil {
			http.Error(w, "form not found", http.StatusNotFound)
			return
		}
		if !forms.CanRead(claims, f) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		view := fullFormView{Form: toFormView(f)}

		current, err := animalsSvc.ListByForm(ctx, f.ID, animals.KindCurrent)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		previous, err := animalsSvc.ListByForm(ctx, f.ID, animals.KindPrevious)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		view.CurrentAnimals = toAnimalViews(current)
		view.PreviousAnimals = toAnimalViews(previous)

		// camada y ausencia son 0..1: ausentes no es error
		if l, err := littersSvc.GetByForm(ctx, f.ID); err == nil {
			lv := toLitterView(l)
			view.Litter = &lv
		} else if !errors.Is(err, litters.ErrNotFound) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if rec, err := absencesSvc.GetByForm(ctx, f.ID); err == nil {
			av := toAbsenceView(rec)
			view.Absence = &av
		} else if !errors.Is(err, absences.ErrNotFound) {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		answers, err := responsesSvc.ListByForm(ctx, f.ID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		view.Responses = make([]responseView, 0, len(answers))
		for _, a := range answers {
			view.Responses = append(view.Responses, responseView{QuestionID: a.QuestionID, Text: a.Text})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(view)
	}
}

func toFormView(f forms.Form) formView {
	return formView{
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
	}
}

func toAnimalViews(items []animals.Animal) []animalView {
	out := make([]animalView, 0, len(items))
	for _, a := range items {
		out = append(out, animalView{
			ID:                a.ID,
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
		})
	}
	return out
}

func toLitterView(l litters.Litter) litterView {
	return litterView{
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
	}
}

func toAbsenceView(rec absences.Record) absenceView {
	return absenceView{
		WouldAcquire:       rec.WouldAcquire,
		WouldAcquireDetail: rec.WouldAcquireDetail,
		CastrationDecision: rec.CastrationDecision,
		CastrationReason:   rec.CastrationReason,
		Reasons:            rec.Reasons,
		ReasonsOther:       rec.ReasonsOther,
	}
}
