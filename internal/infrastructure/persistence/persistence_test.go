package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database with all tables migrated.
// Row locking degrades to plain reads on SQLite; the locking behavior itself
// only exists on PostgreSQL.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.TenantModel{},
		&models.BatchModel{},
		&models.StudentModel{},
		&models.PaymentModel{},
		&models.LeadModel{},
	)
	require.NoError(t, err)

	return db
}

// seedStudent inserts a student with the given ledger values and returns it.
func seedStudent(t *testing.T, db *gorm.DB, tenantID uuid.UUID, totalFee, feePaid int64) *enrollment.Student {
	t.Helper()

	student, err := enrollment.NewStudent(
		tenantID,
		"Priya Sharma",
		"98765"+uuid.NewString()[:5],
		uuid.New(),
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC),
		decimal.NewFromInt(totalFee),
		decimal.NewFromInt(feePaid),
	)
	require.NoError(t, err)
	student.ClearDomainEvents()

	repo := NewGormStudentRepository(db)
	require.NoError(t, repo.Create(context.Background(), student))
	return student
}
