package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"meetcrm/internal/model"
	"meetcrm/internal/util"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, login, name, email, password_hash, role, created_at`

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	query := `
        INSERT INTO users (id, login, name, email, password_hash, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING created_at
    `
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return r.db.QueryRow(ctx, query,
		u.ID, u.Login, u.Name, u.Email, u.PasswordHash, u.Role,
	).Scan(&u.CreatedAt)
}

// GetByLogin returns a user by login.
func (r *UserRepository) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE login = $1`, userColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, login))
}

// GetByID returns a user by id.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// List returns all users ordered by creation time.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users ORDER BY created_at`, userColumns)
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Search matches login, name or email case-insensitively.
func (r *UserRepository) Search(ctx context.Context, term string) ([]model.User, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM users
        WHERE login ILIKE $1 OR name ILIKE $1 OR email ILIKE $1
        ORDER BY login
    `, userColumns)

	rows, err := r.db.Query(ctx, query, util.LikePattern(term))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Login, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update sets the fields that are non-nil, keeping the rest.
func (r *UserRepository) Update(ctx context.Context, id uuid.UUID, login, name, email, passwordHash *string, role *model.Role) (*model.User, error) {
	query := fmt.Sprintf(`
        UPDATE users SET
            login = COALESCE($2, login),
            name = COALESCE($3, name),
            email = COALESCE($4, email),
            password_hash = COALESCE($5, password_hash),
            role = COALESCE($6, role)
        WHERE id = $1
        RETURNING %s
    `, userColumns)
	return r.scanOne(r.db.QueryRow(ctx, query, id, login, name, email, passwordHash, role))
}

// Delete removes a user.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *UserRepository) scanOne(row interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
