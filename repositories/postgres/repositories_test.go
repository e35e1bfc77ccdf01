package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upb/petclinic/models"
	"github.com/upb/petclinic/repositories"
	"go.uber.org/zap"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return NewDBFromConn(sqlDB, zap.NewNop()), mock
}

var userCols = []string{"id", "email", "name", "password_hash", "enabled", "created_at", "updated_at", "roles"}

func TestUserRepository_GetByEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("found with roles", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		id := uuid.New()
		now := time.Now().UTC()

		mock.ExpectQuery("FROM users u").
			WithArgs("admin@test.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(id.String(), "admin@test.com", "Admin", "$2a$10$hash", true, now, now, "{ROLE_ADMIN,ROLE_USER}"))

		user, err := repo.GetByEmail(ctx, "admin@test.com")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "admin@test.com", user.Email)
		assert.Equal(t, "$2a$10$hash", user.PasswordHash)
		assert.True(t, user.Enabled)
		assert.Equal(t, []string{"ROLE_ADMIN", "ROLE_USER"}, user.Roles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("user without roles", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		now := time.Now().UTC()

		mock.ExpectQuery("FROM users u").
			WithArgs("norole@test.com").
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(uuid.New().String(), "norole@test.com", "", "h", false, now, now, "{}"))

		user, err := repo.GetByEmail(ctx, "norole@test.com")
		require.NoError(t, err)
		assert.Empty(t, user.Roles)
		assert.False(t, user.Enabled)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectQuery("FROM users u").
			WithArgs("ghost@test.com").
			WillReturnError(sql.ErrNoRows)

		user, err := repo.GetByEmail(ctx, "ghost@test.com")
		assert.Nil(t, user)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})

	t.Run("query error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectQuery("FROM users u").WillReturnError(errors.New("connection reset"))

		_, err := repo.GetByEmail(ctx, "a@test.com")
		require.Error(t, err)
		assert.NotErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	id := uuid.New()

	mock.ExpectQuery("WHERE u.id = \\$1").
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()
	user := models.NewUser("new@test.com", "New", "$2a$10$hash", models.RoleUser)

	t.Run("inserts user and roles atomically", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, "new@test.com", "New", "$2a$10$hash", true, sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO user_roles").
			WithArgs(user.ID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})
		mock.ExpectRollback()

		err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, repositories.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("role insert failure rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnError(errors.New("boom"))
		mock.ExpectRollback()

		assert.Error(t, repo.Create(ctx, user))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("joins an enclosing transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		tm := NewTransactionManager(db, zap.NewNop())

		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec("INSERT INTO user_roles").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := tm.InTransaction(ctx, func(ctx context.Context, _ repositories.Transaction) error {
			return repo.Create(ctx, user)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db, zap.NewNop())
	now := time.Now().UTC()

	mock.ExpectQuery("ORDER BY u.email").
		WithArgs(10, 0).
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow(uuid.New().String(), "a@test.com", "A", "h", true, now, now, "{ROLE_ADMIN}").
			AddRow(uuid.New().String(), "b@test.com", "B", "h", true, now, now, "{ROLE_USER}"))

	users, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []string{"ROLE_ADMIN"}, users[0].Roles)
	assert.Equal(t, "b@test.com", users[1].Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SetEnabled(t *testing.T) {
	id := uuid.New()

	t.Run("updated", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		mock.ExpectExec("UPDATE users SET enabled").
			WithArgs(id, false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.SetEnabled(context.Background(), id, false))
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewUserRepository(db, zap.NewNop())
		mock.ExpectExec("UPDATE users SET enabled").
			WithArgs(id, true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.SetEnabled(context.Background(), id, true)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

var petCols = []string{"id", "name", "species", "birth_date", "owner_email", "created_at", "updated_at"}

func TestPetRepository(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("get by id without birth date", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPetRepository(db, zap.NewNop())
		id := uuid.New()

		mock.ExpectQuery("FROM pets").
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(petCols).
				AddRow(id.String(), "Rex", "dog", nil, "owner@test.com", now, now))

		pet, err := repo.GetByID(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Rex", pet.Name)
		assert.Nil(t, pet.BirthDate)
	})

	t.Run("list", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPetRepository(db, zap.NewNop())
		birth := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery("FROM pets").
			WithArgs(50, 0).
			WillReturnRows(sqlmock.NewRows(petCols).
				AddRow(uuid.New().String(), "Luna", "cat", birth, "a@test.com", now, now))

		pets, err := repo.List(ctx, 50, 0)
		require.NoError(t, err)
		require.Len(t, pets, 1)
		require.NotNil(t, pets[0].BirthDate)
		assert.True(t, birth.Equal(*pets[0].BirthDate))
	})

	t.Run("create", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPetRepository(db, zap.NewNop())
		pet := models.NewPet("Rex", "dog", "owner@test.com", nil)

		mock.ExpectExec("INSERT INTO pets").
			WithArgs(pet.ID, "Rex", "dog", nil, "owner@test.com", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		require.NoError(t, repo.Create(ctx, pet))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("delete missing", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPetRepository(db, zap.NewNop())
		id := uuid.New()

		mock.ExpectExec("DELETE FROM pets").
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(ctx, id), repositories.ErrNotFound)
	})
}

func TestNotificationRepository_GetByRecipient(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewNotificationRepository(db, zap.NewNop())
	now := time.Now().UTC()

	mock.ExpectQuery("FROM notifications").
		WithArgs("user@test.com", 20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "recipient_email", "subject", "body", "status", "created_at"}).
			AddRow(uuid.New().String(), "user@test.com", "Reminder", "Checkup", "pending", now))

	out, err := repo.GetByRecipient(context.Background(), "user@test.com", 20, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, models.NotificationPending, out[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDB_HealthCheck(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer sqlDB.Close()
	db := NewDBFromConn(sqlDB, zap.NewNop())

	mock.ExpectPing()
	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	assert.NoError(t, db.HealthCheck(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
