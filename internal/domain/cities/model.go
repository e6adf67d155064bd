package cities

import "time"

// City define una ciudad censada en un año de encuesta.
// La dupla (name, year) es única: el mismo municipio puede censarse
// en varios años como ciudades distintas.
type City struct {
	ID     string
	Name   string
	Year   int
	Region string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Question es una pregunta de texto libre definida por la ciudad.
// QuestionOrder es denso por ciudad (1..n); Required la exige el
// validador de completitud del formulario.
type Question struct {
	ID     string
	CityID string

	Text          string
	QuestionOrder int
	Required      bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
