package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"pet-census/internal/domain/absences"
)

type AbsencesRepo struct {
	db *sql.DB
}

func NewAbsencesRepo(db *sql.DB) *AbsencesRepo {
	return &AbsencesRepo{db: db}
}

func (r *AbsencesRepo) Create(ctx context.Context, rec absences.Record) error {
	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return err
	}

	// form_id tiene índice único: el segundo insert del mismo formulario
	// sale como ErrConflict.
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO absence_records (
			id, form_id,
			would_acquire, would_acquire_detail,
			castration_decision, castration_reason,
			reasons, reasons_other,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`,
		rec.ID, rec.FormID,
		string(rec.WouldAcquire), rec.WouldAcquireDetail,
		rec.CastrationDecision, rec.CastrationReason,
		reasons, rec.ReasonsOther,
		rec.CreatedAt, rec.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *AbsencesRepo) Update(ctx context.Context, rec absences.Record) error {
	reasons, err := json.Marshal(rec.Reasons)
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE absence_records
		SET
			would_acquire = $2,
			would_acquire_detail = $3,
			castration_decision = $4,
			castration_reason = $5,
			reasons = $6,
			reasons_other = $7,
			updated_at = $8
		WHERE form_id = $1
	`,
		rec.FormID,
		string(rec.WouldAcquire), rec.WouldAcquireDetail,
		rec.CastrationDecision, rec.CastrationReason,
		reasons, rec.ReasonsOther,
		rec.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return absences.ErrNotFound
	}
	return nil
}

func (r *AbsencesRepo) GetByForm(ctx context.Context, formID string) (absences.Record, error) {
	formID = strings.TrimSpace(formID)
	if formID == "" {
		return absences.Record{}, absences.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, form_id,
			would_acquire, would_acquire_detail,
			castration_decision, castration_reason,
			reasons, reasons_other,
			created_at, updated_at
		FROM absence_records
		WHERE form_id = $1
	`, formID)

	var rec absences.Record
	var wouldAcquire string
	var reasons []byte
	if err := row.Scan(
		&rec.ID, &rec.FormID,
		&wouldAcquire, &rec.WouldAcquireDetail,
		&rec.CastrationDecision, &rec.CastrationReason,
		&reasons, &rec.ReasonsOther,
		&rec.CreatedAt, &rec.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return absences.Record{}, absences.ErrNotFound
		}
		return absences.Record{}, err
	}

	rec.WouldAcquire = absences.WouldAcquire(wouldAcquire)
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &rec.Reasons); err != nil {
			return absences.Record{}, err
		}
	}
	return rec, nil
}

func (r *AbsencesRepo) DeleteByForm(ctx context.Context, formID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM absence_records WHERE form_id = $1`, formID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return absences.ErrNotFound
	}
	return nil
}
