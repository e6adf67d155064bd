package responses

import "time"

// Response es la respuesta de texto libre de un formulario a una
// pregunta definida por su ciudad. Hay exactamente una fila viva por
// par (form_id, question_id); la escritura es upsert.
type Response struct {
	ID         string
	FormID     string
	QuestionID string

	Text string

	CreatedAt time.Time
	UpdatedAt time.Time
}
