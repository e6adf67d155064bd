package animals

import "time"

// ExtraValue admite solo escalares (string, número o booleano).
// El mapa Extra reemplaza al blob JSON abierto: las claves son libres
// pero el valor queda restringido a variantes verificables.
type ExtraValue struct {
	Str  *string  `json:"str,omitempty"`
	Num  *float64 `json:"num,omitempty"`
	Bool *bool    `json:"bool,omitempty"`
}

// Animal es una mascota (actual o previa) de un hogar censado, una fila
// por animal. La edad se expresa como meses [0,11] o años [1,30], nunca
// ambas ni ninguna. RegistrationOrder es denso por (form, kind).
type Animal struct {
	ID     string
	FormID string
	Kind   Kind

	Species Species
	Sex     Sex
	Breed   string

	AgeMonths *int
	AgeYears  *int

	Castration       CastrationStatus
	CastrationReason string

	Vaccination       VaccinationStatus
	VaccinationReason string

	Acquisition     Acquisition
	AcquisitionTime string // texto libre: "hace 2 años", "2024", ...

	HasMicrochip     *bool
	MicrochipNumber  string
	Description      string
	Name             string

	RegistrationOrder int
	CardMinimized     bool

	Extra map[string]ExtraValue

	CreatedAt time.Time
	UpdatedAt time.Time
}
