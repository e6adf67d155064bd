package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/litters"
)

type LittersRepo struct {
	db *sql.DB
}

func NewLittersRepo(db *sql.DB) *LittersRepo {
	return &LittersRepo{db: db}
}

const litterColumns = `
	id, form_id, species,
	born, survived, died, given_away, sold, kept,
	vaccinated, vaccination_notes,
	castration_plan, castration_plan_reason,
	created_at, updated_at
`

func (r *LittersRepo) Create(ctx context.Context, l litters.Litter) error {
	// form_id tiene índice único: el segundo insert del mismo formulario
	// sale como ErrConflict.
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO litters (`+litterColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		l.ID, l.FormID, string(l.Species),
		l.Born, l.Survived, l.Died, l.GivenAway, l.Sold, l.Kept,
		l.Vaccinated, l.VaccinationNotes,
		l.CastrationPlan, l.CastrationPlanReason,
		l.CreatedAt, l.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *LittersRepo) Update(ctx context.Context, l litters.Litter) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE litters
		SET
			species = $2,
			born = $3,
			survived = $4,
			died = $5,
			given_away = $6,
			sold = $7,
			kept = $8,
			vaccinated = $9,
			vaccination_notes = $10,
			castration_plan = $11,
			castration_plan_reason = $12,
			updated_at = $13
		WHERE form_id = $1
	`,
		l.FormID, string(l.Species),
		l.Born, l.Survived, l.Died, l.GivenAway, l.Sold, l.Kept,
		l.Vaccinated, l.VaccinationNotes,
		l.CastrationPlan, l.CastrationPlanReason,
		l.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return litters.ErrNotFound
	}
	return nil
}

func (r *LittersRepo) GetByForm(ctx context.Context, formID string) (litters.Litter, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return litters.Litter{}, litters.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+litterColumns+`
		FROM litters
		WHERE form_id = $1
	`, formID)

	var l litters.Litter
	var species string
	if err := row.Scan(
		&l.ID, &l.FormID, &species,
		&l.Born, &l.Survived, &l.Died, &l.GivenAway, &l.Sold, &l.Kept,
		&l.Vaccinated, &l.VaccinationNotes,
		&l.CastrationPlan, &l.CastrationPlanReason,
		&l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return litters.Litter{}, litters.ErrNotFound
		}
		return litters.Litter{}, err
	}
	l.Species = animals.Species(species)
	return l, nil
}

func (r *LittersRepo) DeleteByForm(ctx context.Context, formID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM litters WHERE form_id = $1`, formID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return litters.ErrNotFound
	}
	return nil
}
