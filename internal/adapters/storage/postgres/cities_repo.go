package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-census/internal/domain/cities"
	"pet-census/internal/domain/ordering"
)

type CitiesRepo struct {
	db *sql.DB
}

func NewCitiesRepo(db *sql.DB) *CitiesRepo {
	return &CitiesRepo{db: db}
}

func (r *CitiesRepo) CreateCity(ctx context.Context, c cities.City) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cities (id, name, year, region, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, c.ID, c.Name, c.Year, c.Region, c.CreatedAt, c.UpdatedAt)
	return mapConflict(err)
}

func (r *CitiesRepo) GetCity(ctx context.Context, id string) (cities.City, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cities.City{}, cities.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, year, region, created_at, updated_at
		FROM cities
		WHERE id = $1
	`, id)
	return scanCity(row)
}

func (r *CitiesRepo) GetCityByNameYear(ctx context.Context, name string, year int) (cities.City, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, year, region, created_at, updated_at
		FROM cities
		WHERE name = $1 AND year = $2
	`, name, year)
	return scanCity(row)
}

func (r *CitiesRepo) ListCities(ctx context.Context) ([]cities.City, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, year, region, created_at, updated_at
		FROM cities
		ORDER BY year ASC, name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cities.City, 0)
	for rows.Next() {
		c, err := scanCity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CitiesRepo) UpdateCity(ctx context.Context, c cities.City) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE cities
		SET name = $2, year = $3, region = $4, updated_at = $5
		WHERE id = $1
	`, c.ID, c.Name, c.Year, c.Region, c.UpdatedAt)
	if err != nil {
		return mapConflict(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cities.ErrNotFound
	}
	return nil
}

// DeleteCity borra la ciudad y sus preguntas en una sola transacción.
func (r *CitiesRepo) DeleteCity(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE city_id = $1`, id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM cities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cities.ErrNotFound
	}
	return tx.Commit()
}

func (r *CitiesRepo) CreateQuestion(ctx context.Context, q cities.Question) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO questions (id, city_id, text, question_order, required, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, q.ID, q.CityID, q.Text, q.QuestionOrder, q.Required, q.CreatedAt, q.UpdatedAt)
	return mapConflict(err)
}

func (r *CitiesRepo) GetQuestion(ctx context.Context, id string) (cities.Question, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cities.Question{}, cities.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT id, city_id, text, question_order, required, created_at, updated_at
		FROM questions
		WHERE id = $1
	`, id)
	return scanQuestion(row)
}

func (r *CitiesRepo) UpdateQuestion(ctx context.Context, q cities.Question) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE questions
		SET text = $2, question_order = $3, required = $4, updated_at = $5
		WHERE id = $1
	`, q.ID, q.Text, q.QuestionOrder, q.Required, q.UpdatedAt)
	if err != nil {
		return mapConflict(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cities.ErrNotFound
	}
	return nil
}

func (r *CitiesRepo) DeleteQuestion(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return cities.ErrNotFound
	}
	return nil
}

func (r *CitiesRepo) ListQuestionsByCity(ctx context.Context, cityID string) ([]cities.Question, error) {
	cityID = strings.TrimSpace(cityID)
	if cityID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, city_id, text, question_order, required, created_at, updated_at
		FROM questions
		WHERE city_id = $1
		ORDER BY question_order ASC
	`, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cities.Question, 0)
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *CitiesRepo) NextQuestionOrder(ctx context.Context, cityID string) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(question_order), 0) + 1
		FROM questions
		WHERE city_id = $1
	`, cityID).Scan(&next)
	return next, err
}

// ReorderQuestions aplica el lote completo dentro de una transacción.
func (r *CitiesRepo) ReorderQuestions(ctx context.Context, cityID string, changes []ordering.Change) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `SET CONSTRAINTS ALL DEFERRED`); err != nil {
		return err
	}

	for _, c := range changes {
		res, err := tx.ExecContext(ctx, `
			UPDATE questions
			SET question_order = $3
			WHERE id = $1 AND city_id = $2
		`, c.ID, cityID, c.NewOrder)
		if err != nil {
			return mapConflict(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return cities.ErrNotFound
		}
	}
	return tx.Commit()
}

func scanCity(row rowScanner) (cities.City, error) {
	var c cities.City
	if err := row.Scan(&c.ID, &c.Name, &c.Year, &c.Region, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return cities.City{}, cities.ErrNotFound
		}
		return cities.City{}, err
	}
	return c, nil
}

func scanQuestion(row rowScanner) (cities.Question, error) {
	var q cities.Question
	if err := row.Scan(&q.ID, &q.CityID, &q.Text, &q.QuestionOrder, &q.Required, &q.CreatedAt, &q.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return cities.Question{}, cities.ErrNotFound
		}
		return cities.Question{}, err
	}
	return q, nil
}
