package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	models "github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `u.id, u.email, u.password, u.name, u.is_admin, u.created_at, u.updated_at`

func scanUser(row rowScanner, extra ...any) (*models.User, error) {
	user := &models.User{}
	dest := append([]any{&user.ID, &user.Email, &user.Password, &user.Name, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt}, extra...)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users(email, password, name, is_admin, created_at, updated_at)
		VALUES($1, $2, $3, $4, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, user.Email, user.Password, user.Name, user.IsAdmin).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if _, dup := uniqueViolationOn(err); dup {
		return ErrDuplicateEntry
	}

	return err
}

// GetUserByEmail matches case-insensitively; accounts created before emails were normalized may be mixed case.
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + `
		FROM users u
		WHERE LOWER(u.email) = LOWER($1)`

	user, err := scanUser(r.DB.QueryRowContext(dbCtx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	return user, nil
}

// GetUserById loads the profile view: the password hash is cleared and the order count is filled in.
func (r *userRepository) GetUserById(ctx context.Context, id uuid.UUID) (*models.User, error) {
	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + `,
		(SELECT COUNT(*) FROM orders o WHERE o.user_id = u.id) AS order_count
		FROM users u
		WHERE u.id = $1`

	var orderCount int

	user, err := scanUser(r.DB.QueryRowContext(dbCtx, query, id), &orderCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying user by id: %w", err)
	}

	user.Password = ""
	user.OrderCount = orderCount

	return user, nil
}
