package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"pet-census/internal/domain/animals"
	"pet-census/internal/domain/ordering"
)

type AnimalsRepo struct {
	db *sql.DB
}

func NewAnimalsRepo(db *sql.DB) *AnimalsRepo {
	return &AnimalsRepo{db: db}
}

const animalColumns = `
	id, form_id, kind,
	species, sex, breed,
	age_months, age_years,
	castration_status, castration_reason,
	vaccination_status, vaccination_reason,
	acquisition, acquisition_time,
	has_microchip, microchip_number,
	description, name,
	registration_order, card_minimized, extra,
	created_at, updated_at
`

const animalInsert = `
	INSERT INTO animals (` + animalColumns + `)
	VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23)
`

func animalArgs(a animals.Animal, extra []byte) []any {
	return []any{
		a.ID, a.FormID, string(a.Kind),
		string(a.Species), string(a.Sex), a.Breed,
		a.AgeMonths, a.AgeYears,
		string(a.Castration), a.CastrationReason,
		string(a.Vaccination), a.VaccinationReason,
		string(a.Acquisition), a.AcquisitionTime,
		a.HasMicrochip, a.MicrochipNumber,
		a.Description, a.Name,
		a.RegistrationOrder, a.CardMinimized, extra,
		a.CreatedAt, a.UpdatedAt,
	}
}

func marshalExtra(a animals.Animal) ([]byte, error) {
	if len(a.Extra) == 0 {
		return nil, nil
	}
	return json.Marshal(a.Extra)
}

func (r *AnimalsRepo) Create(ctx context.Context, a animals.Animal) error {
	extra, err := marshalExtra(a)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, animalInsert, animalArgs(a, extra)...)
	return mapConflict(err)
}

// CreateBatch inserta el lote dentro de una transacción: todo o nada.
func (r *AnimalsRepo) CreateBatch(ctx context.Context, batch []animals.Animal) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, a := range batch {
		extra, err := marshalExtra(a)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, animalInsert, animalArgs(a, extra)...); err != nil {
			return mapConflict(err)
		}
	}
	return tx.Commit()
}

func (r *AnimalsRepo) GetByID(ctx context.Context, id string) (animals.Animal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return animals.Animal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE id = $1
	`, id)

	return scanAnimal(row)
}

func (r *AnimalsRepo) Update(ctx context.Context, a animals.Animal) error {
	extra, err := marshalExtra(a)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE animals
		SET
			species = $2,
			sex = $3,
			breed = $4,
			age_months = $5,
			age_years = $6,
			castration_status = $7,
			castration_reason = $8,
			vaccination_status = $9,
			vaccination_reason = $10,
			acquisition = $11,
			acquisition_time = $12,
			has_microchip = $13,
			microchip_number = $14,
			description = $15,
			name = $16,
			card_minimized = $17,
			extra = $18,
			updated_at = $19
		WHERE id = $1
	`,
		a.ID,
		string(a.Species), string(a.Sex), a.Breed,
		a.AgeMonths, a.AgeYears,
		string(a.Castration), a.CastrationReason,
		string(a.Vaccination), a.VaccinationReason,
		string(a.Acquisition), a.AcquisitionTime,
		a.HasMicrochip, a.MicrochipNumber,
		a.Description, a.Name,
		a.CardMinimized, extra,
		a.UpdatedAt,
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

func (r *AnimalsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM animals WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *AnimalsRepo) ListByForm(ctx context.Context, formID string, kind animals.Kind) ([]animals.Animal, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+animalColumns+`
		FROM animals
		WHERE form_id = $1 AND kind = $2
		ORDER BY registration_order ASC
	`, formID, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]animals.Animal, 0)
	for rows.Next() {
		a, err := scanAnimal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AnimalsRepo) NextOrder(ctx context.Context, formID string, kind animals.Kind) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(registration_order), 0) + 1
		FROM animals
		WHERE form_id = $1 AND kind = $2
	`, formID, string(kind)).Scan(&next)
	return next, err
}

// Reorder aplica el lote completo dentro de una transacción. El índice
// único (form_id, kind, registration_order) es DEFERRABLE para que los
// swaps no choquen a mitad del lote.
func (r *AnimalsRepo) Reorder(ctx context.Context, formID string, kind animals.Kind, changes []ordering.Change) error {
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
			UPDATE animals
			SET registration_order = $3
			WHERE id = $1 AND form_id = $2 AND kind = $4
		`, c.ID, formID, c.NewOrder, string(kind))
		if err != nil {
			return mapConflict(err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return ErrNotFound
		}
	}
	return tx.Commit()
}

func scanAnimal(row rowScanner) (animals.Animal, error) {
	var a animals.Animal
	var kind, species, sex, castration, vaccination, acquisition string
	var extra []byte
	if err := row.Scan(
		&a.ID, &a.FormID, &kind,
		&species, &sex, &a.Breed,
		&a.AgeMonths, &a.AgeYears,
		&castration, &a.CastrationReason,
		&vaccination, &a.VaccinationReason,
		&acquisition, &a.AcquisitionTime,
		&a.HasMicrochip, &a.MicrochipNumber,
		&a.Description, &a.Name,
		&a.RegistrationOrder, &a.CardMinimized, &extra,
		&a.CreatedAt, &a.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return animals.Animal{}, ErrNotFound
		}
		return animals.Animal{}, err
	}

	a.Kind = animals.Kind(kind)
	a.Species = animals.Species(species)
	a.Sex = animals.Sex(sex)
	a.Castration = animals.CastrationStatus(castration)
	a.Vaccination = animals.VaccinationStatus(vaccination)
	a.Acquisition = animals.Acquisition(acquisition)

	if len(extra) > 0 {
		if err := json.Unmarshal(extra, &a.Extra); err != nil {
			return animals.Animal{}, err
		}
	}
	return a, nil
}
