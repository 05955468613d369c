package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/crm"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedLead(t *testing.T, db *gorm.DB, tenantID uuid.UUID) *crm.Lead {
	t.Helper()

	lead, err := crm.NewLead(tenantID, "Rahul Verma", "9123456780", "walk-in", "Full Stack Development")
	require.NoError(t, err)
	lead.ClearDomainEvents()

	repo := NewGormLeadRepository(db)
	require.NoError(t, repo.Create(context.Background(), lead))
	return lead
}

func TestGormLeadRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeadRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	lead := seedLead(t, db, tenantID)

	found, err := repo.FindByIDForTenant(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rahul Verma", found.Name)
	assert.Equal(t, crm.LeadStatusNew, found.Status)

	_, err = repo.FindByIDForTenant(ctx, uuid.New(), lead.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormLeadRepository_SaveConversion(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeadRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	lead := seedLead(t, db, tenantID)

	require.NoError(t, lead.Convert(uuid.New()))
	require.NoError(t, repo.Save(ctx, lead))

	found, err := repo.FindByIDForTenant(ctx, tenantID, lead.ID)
	require.NoError(t, err)
	assert.Equal(t, crm.LeadStatusConverted, found.Status)
	assert.NotNil(t, found.ConvertedAt)
}

func TestGormLeadRepository_FindAllForTenant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeadRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	lead := seedLead(t, db, tenantID)
	dropped := seedLead(t, db, tenantID)
	require.NoError(t, dropped.UpdateStatus(crm.LeadStatusDropped))
	require.NoError(t, repo.Save(ctx, dropped))
	seedLead(t, db, uuid.New()) // other tenant

	t.Run("lists tenant leads", func(t *testing.T) {
		leads, err := repo.FindAllForTenant(ctx, tenantID, crm.LeadFilter{})
		require.NoError(t, err)
		assert.Len(t, leads, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := crm.LeadStatusNew
		leads, err := repo.FindAllForTenant(ctx, tenantID, crm.LeadFilter{Status: &status})
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, lead.ID, leads[0].ID)
	})

	t.Run("counts by status", func(t *testing.T) {
		status := crm.LeadStatusDropped
		count, err := repo.CountForTenant(ctx, tenantID, crm.LeadFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestGormLeadRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormLeadRepository(db)
	ctx := context.Background()
	tenantID := uuid.New()

	lead := seedLead(t, db, tenantID)

	require.NoError(t, repo.Delete(ctx, tenantID, lead.ID))
	assert.ErrorIs(t, repo.Delete(ctx, tenantID, lead.ID), shared.ErrNotFound)
}
