package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db, mock
}

func TestUserRepository(t *testing.T) {
	db, mock := newMockDB(t)
	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	userColumns := []string{"id", "email", "password", "name", "is_admin", "created_at", "updated_at"}

	t.Run("CreateUser_Success", func(t *testing.T) {
		// Arrange
		user := &models.User{Email: "test@example.com", Password: "hashed", Name: "Test User"}
		now := time.Now()
		newID := uuid.New()

		mock.ExpectQuery(`INSERT INTO users\(email, password, name, is_admin`).
			WithArgs(user.Email, user.Password, user.Name, false).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(newID.String(), now, now))

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, newID, user.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateUser_DuplicateEmail", func(t *testing.T) {
		// Arrange
		user := &models.User{Email: "dup@example.com", Password: "hashed", Name: "Dup"}

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		assert.ErrorIs(t, err, repository.ErrDuplicateEntry)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByEmail_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`SELECT u.id, u.email, u.password, u.name, u.is_admin, u.created_at, u.updated_at\s+FROM users u\s+WHERE LOWER\(u.email\) = LOWER\(\$1\)`).
			WithArgs("admin@example.com").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow(id.String(), "admin@example.com", "hashed", "Admin", true, now, now))

		// Act
		user, err := repo.GetUserByEmail(ctx, "admin@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.True(t, user.IsAdmin)
		assert.Equal(t, "hashed", user.Password)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByEmail_NotFound", func(t *testing.T) {
		mock.ExpectQuery(`FROM users u\s+WHERE LOWER\(u.email\) = LOWER\(\$1\)`).
			WithArgs("missing@example.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetUserByEmail(ctx, "missing@example.com")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserById_ProfileWithOrderCount", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(`\(SELECT COUNT\(\*\) FROM orders o WHERE o.user_id = u.id\) AS order_count\s+FROM users u\s+WHERE u.id = \$1`).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(append(userColumns, "order_count")).
				AddRow(id.String(), "jane@example.com", "hashed", "Jane", false, now, now, 3))

		// Act
		user, err := repo.GetUserById(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 3, user.OrderCount)
		assert.False(t, user.IsAdmin)
		assert.Empty(t, user.Password)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserById_DatabaseError", func(t *testing.T) {
		id := uuid.New()
		dbErr := errors.New("connection refused")

		mock.ExpectQuery(`FROM users u\s+WHERE u.id = \$1`).
			WithArgs(id).
			WillReturnError(dbErr)

		user, err := repo.GetUserById(ctx, id)

		assert.Nil(t, user)
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
