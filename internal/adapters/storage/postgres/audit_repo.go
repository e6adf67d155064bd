package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"pet-census/internal/domain/audit"
)

type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

func (r *AuditRepo) Append(ctx context.Context, e audit.Entry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_entries (
			id, action, entity_type, entity_id, actor_id,
			before_snapshot, after_snapshot,
			created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		e.ID, string(e.Action), e.EntityType, e.EntityID, e.ActorID,
		[]byte(e.Before), []byte(e.After),
		e.CreatedAt,
	)
	return err
}

func (r *AuditRepo) List(ctx context.Context, filter audit.ListFilter) ([]audit.Entry, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, action, entity_type, entity_id, actor_id,
			before_snapshot, after_snapshot,
			created_at
		FROM audit_entries
		WHERE 1=1
	`)

	args := []any{}
	argN := 1

	if filter.EntityType != "" {
		sb.WriteString(fmt.Sprintf(" AND entity_type = $%d", argN))
		args = append(args, filter.EntityType)
		argN++
	}
	if filter.EntityID != "" {
		sb.WriteString(fmt.Sprintf(" AND entity_id = $%d", argN))
		args = append(args, filter.EntityID)
		argN++
	}
	if filter.ActorID != "" {
		sb.WriteString(fmt.Sprintf(" AND actor_id = $%d", argN))
		args = append(args, filter.ActorID)
		argN++
	}

	sb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]audit.Entry, 0)
	for rows.Next() {
		var e audit.Entry
		var action string
		var before, after []byte
		if err := rows.Scan(
			&e.ID, &action, &e.EntityType, &e.EntityID, &e.ActorID,
			&before, &after,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		e.Action = audit.Action(action)
		e.Before = before
		e.After = after
		out = append(out, e)
	}
	return out, rows.Err()
}
