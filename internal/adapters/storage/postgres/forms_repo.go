package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-census/internal/domain/forms"
)

type FormsRepo struct {
	db *sql.DB
}

func NewFormsRepo(db *sql.DB) *FormsRepo {
	return &FormsRepo{db: db}
}

const formColumns = `
	id, city_id, owner_user_id,
	status, current_step, form_date, submitted_at,
	interviewer_name, interview_date, interview_status,
	address, neighborhood, household_size,
	education_level, housing_type, income_level,
	has_dogs_cats,
	strays_in_area, stray_dogs_seen, stray_cats_seen, feeds_strays,
	vet_visits_per_year, vet_annual_cost,
	created_at, updated_at
`

func (r *FormsRepo) Create(ctx context.Context, f forms.Form) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO forms (`+formColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
	`,
		f.ID, f.CityID, f.OwnerUserID,
		string(f.Status), f.CurrentStep, f.FormDate, f.SubmittedAt,
		f.InterviewerName, f.InterviewDate, string(f.InterviewStatus),
		f.Address, f.Neighborhood, f.HouseholdSize,
		f.EducationLevel, f.HousingType, f.IncomeLevel,
		f.HasDogsCats,
		f.StraysInArea, f.StrayDogsSeen, f.StrayCatsSeen, f.FeedsStrays,
		f.VetVisitsPerYear, f.VetAnnualCost,
		f.CreatedAt, f.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *FormsRepo) GetByID(ctx context.Context, id string) (forms.Form, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return forms.Form{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+formColumns+`
		FROM forms
		WHERE id = $1
	`, id)

	return scanForm(row)
}

func (r *FormsRepo) Update(ctx context.Context, f forms.Form) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE forms
		SET
			status = $2,
			current_step = $3,
			form_date = $4,
			submitted_at = $5,
			interviewer_name = $6,
			interview_date = $7,
			interview_status = $8,
			address = $9,
			neighborhood = $10,
			household_size = $11,
			education_level = $12,
			housing_type = $13,
			income_level = $14,
			has_dogs_cats = $15,
			strays_in_area = $16,
			stray_dogs_seen = $17,
			stray_cats_seen = $18,
			feeds_strays = $19,
			vet_visits_per_year = $20,
			vet_annual_cost = $21,
			updated_at = $22
		WHERE id = $1
	`,
		f.ID,
		string(f.Status), f.CurrentStep, f.FormDate, f.SubmittedAt,
		f.InterviewerName, f.InterviewDate, string(f.InterviewStatus),
		f.Address, f.Neighborhood, f.HouseholdSize,
		f.EducationLevel, f.HousingType, f.IncomeLevel,
		f.HasDogsCats,
		f.StraysInArea, f.StrayDogsSeen, f.StrayCatsSeen, f.FeedsStrays,
		f.VetVisitsPerYear, f.VetAnnualCost,
		f.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete borra el formulario y todos sus hijos en una sola transacción.
// El cascade es explícito tabla por tabla, no una FK ON DELETE CASCADE:
// mantiene el invariante "sin hijos huérfanos" visible y testeable.
func (r *FormsRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"animals", "litters", "absence_records", "question_responses"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE form_id = $1`, id); err != nil {
			return err
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM forms WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}

func (r *FormsRepo) ListByOwner(ctx context.Context, ownerUserID string) ([]forms.Form, error) {
	return r.list(ctx, `owner_user_id`, ownerUserID)
}

func (r *FormsRepo) ListByCity(ctx context.Context, cityID string) ([]forms.Form, error) {
	return r.list(ctx, `city_id`, cityID)
}

func (r *FormsRepo) list(ctx context.Context, column, value string) ([]forms.Form, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+formColumns+`
		FROM forms
		WHERE `+column+` = $1
		ORDER BY created_at ASC
	`, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]forms.Form, 0)
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanForm(row rowScanner) (forms.Form, error) {
	var f forms.Form
	var status, interviewStatus string
	if err := row.Scan(
		&f.ID, &f.CityID, &f.OwnerUserID,
		&status, &f.CurrentStep, &f.FormDate, &f.SubmittedAt,
		&f.InterviewerName, &f.InterviewDate, &interviewStatus,
		&f.Address, &f.Neighborhood, &f.HouseholdSize,
		&f.EducationLevel, &f.HousingType, &f.IncomeLevel,
		&f.HasDogsCats,
		&f.StraysInArea, &f.StrayDogsSeen, &f.StrayCatsSeen, &f.FeedsStrays,
		&f.VetVisitsPerYear, &f.VetAnnualCost,
		&f.CreatedAt, &f.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return forms.Form{}, ErrNotFound
		}
		return forms.Form{}, err
	}
	f.Status = forms.Status(status)
	f.InterviewStatus = forms.InterviewStatus(interviewStatus)
	return f, nil
}
