package absences

import "time"

// WouldAcquire es la actitud del hogar frente a adquirir un animal en
// el futuro.
type WouldAcquire string

const (
	WouldAcquireYes   WouldAcquire = "yes"
	WouldAcquireNo    WouldAcquire = "no"
	WouldAcquireMaybe WouldAcquire = "maybe"
)

func ValidWouldAcquire(w WouldAcquire) bool {
	return w == WouldAcquireYes || w == WouldAcquireNo || w == WouldAcquireMaybe
}

// Reason es un motivo (multi-select) por el que el hogar no tiene
// animales.
type Reason string

const (
	ReasonNoTime     Reason = "no_time"
	ReasonNoSpace    Reason = "no_space"
	ReasonCost       Reason = "cost"
	ReasonAllergy    Reason = "allergy"
	ReasonDislike    Reason = "dislike"
	ReasonPastLoss   Reason = "past_loss"
	ReasonLandlord   Reason = "landlord_restriction"
	ReasonOther      Reason = "other"
)

func ValidReason(r Reason) bool {
	switch r {
	case ReasonNoTime, ReasonNoSpace, ReasonCost, ReasonAllergy,
		ReasonDislike, ReasonPastLoss, ReasonLandlord, ReasonOther:
		return true
	}
	return false
}

// Record captura la situación de un hogar sin animales: si adquiriría
// uno, qué haría con la castración y por qué no tiene. A lo sumo un
// registro por formulario; la escritura es upsert por form_id.
type Record struct {
	ID     string
	FormID string

	WouldAcquire       WouldAcquire
	WouldAcquireDetail string

	CastrationDecision string
	CastrationReason   string

	Reasons      []Reason
	ReasonsOther string

	CreatedAt time.Time
	UpdatedAt time.Time
}
