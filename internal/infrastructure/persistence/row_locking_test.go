package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/shared"
)

// The SQLite suite cannot observe locking clauses or row-count based version
// checks, so these tests run the repositories against a mocked Postgres
// connection and assert the SQL itself.

func newMockPostgresDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func lockTestStudent(t *testing.T, tenantID uuid.UUID) *enrollment.Student {
	t.Helper()

	student, err := enrollment.NewStudent(
		tenantID,
		"Asha Verma",
		"9876501234",
		uuid.New(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(50000),
		decimal.Zero,
	)
	require.NoError(t, err)
	return student
}

func TestStudentRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	gormDB, mock, mockDB := newMockPostgresDB(t)
	defer mockDB.Close()

	repo := NewGormStudentRepository(gormDB)

	tenantID := uuid.New()
	studentID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "phone", "total_fee", "fee_paid", "fee_due", "is_active"}).
		AddRow(studentID, tenantID, 1, "Asha Verma", "9876501234", "50000", "10000", "40000", true)
	mock.ExpectQuery(`SELECT \* FROM "students" WHERE tenant_id = .+ AND id = .+ FOR UPDATE`).
		WillReturnRows(rows)

	student, err := repo.FindByIDForUpdate(context.Background(), tenantID, studentID)

	require.NoError(t, err)
	assert.Equal(t, studentID, student.ID)
	assert.Equal(t, "40000", student.FeeDue.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLeadRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	gormDB, mock, mockDB := newMockPostgresDB(t)
	defer mockDB.Close()

	repo := NewGormLeadRepository(gormDB)

	tenantID := uuid.New()
	leadID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "name", "phone", "status"}).
		AddRow(leadID, tenantID, 1, "Rahul Nair", "9876512345", "NEW")
	mock.ExpectQuery(`SELECT \* FROM "leads" WHERE tenant_id = .+ AND id = .+ FOR UPDATE`).
		WillReturnRows(rows)

	lead, err := repo.FindByIDForUpdate(context.Background(), tenantID, leadID)

	require.NoError(t, err)
	assert.Equal(t, leadID, lead.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepository_Save_VersionCheck(t *testing.T) {
	t.Run("advances the version by one even when several fields changed", func(t *testing.T) {
		gormDB, mock, mockDB := newMockPostgresDB(t)
		defer mockDB.Close()

		repo := NewGormStudentRepository(gormDB)
		student := lockTestStudent(t, uuid.New())
		require.NoError(t, student.ApplyPaymentDelta(decimal.NewFromInt(10000)))
		require.NoError(t, student.UpdateTotalFee(decimal.NewFromInt(60000)))
		require.Equal(t, 1, student.Version)

		mock.ExpectExec(`UPDATE "students" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Save(context.Background(), student)

		assert.NoError(t, err)
		assert.Equal(t, 2, student.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns conflict when another transaction won", func(t *testing.T) {
		gormDB, mock, mockDB := newMockPostgresDB(t)
		defer mockDB.Close()

		repo := NewGormStudentRepository(gormDB)
		student := lockTestStudent(t, uuid.New())
		student.Version = 2

		mock.ExpectExec(`UPDATE "students" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Save(context.Background(), student)

		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "OPTIMISTIC_LOCK_ERROR", domainErr.Code)
		assert.Equal(t, 2, student.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
