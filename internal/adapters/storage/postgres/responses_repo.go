package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-census/internal/domain/responses"
)

type ResponsesRepo struct {
	db *sql.DB
}

func NewResponsesRepo(db *sql.DB) *ResponsesRepo {
	return &ResponsesRepo{db: db}
}

func (r *ResponsesRepo) Create(ctx context.Context, resp responses.Response) error {
	// (form_id, question_id) tiene índice único compuesto.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO question_responses (
			id, form_id, question_id, text, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6)
	`,
		resp.ID, resp.FormID, resp.QuestionID, resp.Text,
		resp.CreatedAt, resp.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *ResponsesRepo) Update(ctx context.Context, resp responses.Response) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE question_responses
		SET text = $3, updated_at = $4
		WHERE form_id = $1 AND question_id = $2
	`, resp.FormID, resp.QuestionID, resp.Text, resp.UpdatedAt)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return responses.ErrNotFound
	}
	return nil
}

func (r *ResponsesRepo) GetByFormQuestion(ctx context.Context, formID, questionID string) (responses.Response, error) {
	formID = strings.TrimSpace(formID)
	questionID = strings.TrimSpace(questionID)
	if formID == "" || questionID == "" {
		return responses.Response{}, responses.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, form_id, question_id, text, created_at, updated_at
		FROM question_responses
		WHERE form_id = $1 AND question_id = $2
	`, formID, questionID)

	var resp responses.Response
	if err := row.Scan(
		&resp.ID, &resp.FormID, &resp.QuestionID, &resp.Text,
		&resp.CreatedAt, &resp.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return responses.Response{}, responses.ErrNotFound
		}
		return responses.Response{}, err
	}
	return resp, nil
}

func (r *ResponsesRepo) DeleteByFormQuestion(ctx context.Context, formID, questionID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM question_responses
		WHERE form_id = $1 AND question_id = $2
	`, formID, questionID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return responses.ErrNotFound
	}
	return nil
}

func (r *ResponsesRepo) ListByForm(ctx context.Context, formID string) ([]responses.Response, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, form_id, question_id, text, created_at, updated_at
		FROM question_responses
		WHERE form_id = $1
		ORDER BY created_at ASC
	`, formID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]responses.Response, 0)
	for rows.Next() {
		var resp responses.Response
		if err := rows.Scan(
			&resp.ID, &resp.FormID, &resp.QuestionID, &resp.Text,
			&resp.CreatedAt, &resp.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (r *ResponsesRepo) DeleteByForm(ctx context.Context, formID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM question_responses WHERE form_id = $1`, formID)
	return err
}
