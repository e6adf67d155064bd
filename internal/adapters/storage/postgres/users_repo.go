package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-census/internal/domain/users"

	"github.com/lib/pq"
)

type UsersRepo struct {
	db *sql.DB
}

func NewUsersRepo(db *sql.DB) *UsersRepo {
	return &UsersRepo{db: db}
}

func (r *UsersRepo) Create(ctx context.Context, u users.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (
			id, email, password_hash,
			full_name, role, city_ids,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		u.ID, u.Email, u.PasswordHash,
		u.FullName, string(u.Role), pq.Array(u.CityIDs),
		u.CreatedAt, u.UpdatedAt,
	)
	return mapConflict(err)
}

func (r *UsersRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET
			email = $2,
			password_hash = $3,
			full_name = $4,
			role = $5,
			city_ids = $6,
			updated_at = $7
		WHERE id = $1
	`,
		u.ID, u.Email, u.PasswordHash,
		u.FullName, string(u.Role), pq.Array(u.CityIDs),
		u.UpdatedAt,
	)
	if err != nil {
		return mapConflict(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return users.User{}, ErrNotFound
	}
	return r.get(ctx, `id = $1`, id)
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (users.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return users.User{}, ErrNotFound
	}
	return r.get(ctx, `email = $1`, email)
}

func (r *UsersRepo) get(ctx context.Context, where, arg string) (users.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, email, password_hash,
			full_name, role, city_ids,
			created_at, updated_at
		FROM users
		WHERE `+where, arg)

	return scanUser(row)
}

func (r *UsersRepo) List(ctx context.Context) ([]users.User, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, email, password_hash,
			full_name, role, city_ids,
			created_at, updated_at
		FROM users
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row rowScanner) (users.User, error) {
	var u users.User
	var role string
	var cityIDs pq.StringArray
	if err := row.Scan(
		&u.ID, &u.Email, &u.PasswordHash,
		&u.FullName, &role, &cityIDs,
		&u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return users.User{}, ErrNotFound
		}
		return users.User{}, err
	}
	u.Role = users.Role(role)
	u.CityIDs = cityIDs
	return u, nil
}
