package animals

// Kind distingue animales actuales de animales que el hogar ya no tiene.
// @Enum current, previous
type Kind string

const (
	KindCurrent  Kind = "current"
	KindPrevious Kind = "previous"
)

func ValidKind(k Kind) bool {
	return k == KindCurrent || k == KindPrevious
}

// Species define las especies censadas.
// @Enum dog, cat
type Species string

const (
	SpeciesDog Species = "dog"
	SpeciesCat Species = "cat"
)

func ValidSpecies(s Species) bool {
	return s == SpeciesDog || s == SpeciesCat
}

// Sex define el sexo del animal.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// CastrationStatus indica si el animal está esterilizado.
type CastrationStatus string

const (
	CastrationDone    CastrationStatus = "castrated"
	CastrationNotDone CastrationStatus = "not_castrated"
	CastrationUnknown CastrationStatus = "unknown"
)

// VaccinationStatus resume el estado de vacunación.
type VaccinationStatus string

const (
	VaccinationComplete   VaccinationStatus = "complete"
	VaccinationRabiesOnly VaccinationStatus = "rabies_only"
	VaccinationNone       VaccinationStatus = "none"
	VaccinationUnknown    VaccinationStatus = "unknown"
)

// Acquisition define cómo llegó el animal al hogar.
type Acquisition string

const (
	AcquisitionBought     Acquisition = "bought"
	AcquisitionAdopted    Acquisition = "adopted"
	AcquisitionGift       Acquisition = "gift"
	AcquisitionFound      Acquisition = "found"
	AcquisitionBornAtHome Acquisition = "born_at_home"
)
