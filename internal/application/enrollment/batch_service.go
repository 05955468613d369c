package enrollment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/enrollment"
	"go.uber.org/zap"
)

// BatchService manages course batches
type BatchService struct {
	batchRepo enrollment.BatchRepository
	logger    *zap.Logger
}

// NewBatchService creates a new BatchService
func NewBatchService(batchRepo enrollment.BatchRepository, logger *zap.Logger) *BatchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchService{batchRepo: batchRepo, logger: logger}
}

// CreateBatch creates a new batch
func (s *BatchService) CreateBatch(ctx context.Context, req CreateBatchRequest) (*enrollment.Batch, error) {
	batch, err := enrollment.NewBatch(req.TenantID, req.Name, req.StartDate, req.Fee, req.Capacity)
	if err != nil {
		return nil, err
	}
	if req.EndDate != nil {
		if err := batch.SetEndDate(*req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.TrainerID != nil {
		batch.AssignTrainer(*req.TrainerID)
	}

	if err := s.batchRepo.Create(ctx, batch); err != nil {
		return nil, fmt.Errorf("failed to create batch: %w", err)
	}
	return batch, nil
}

// GetBatch returns a single batch
func (s *BatchService) GetBatch(ctx context.Context, tenantID, batchID uuid.UUID) (*enrollment.Batch, error) {
	return s.batchRepo.FindByIDForTenant(ctx, tenantID, batchID)
}

// ListBatches lists batches for a tenant
func (s *BatchService) ListBatches(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]enrollment.Batch, error) {
	return s.batchRepo.FindAllForTenant(ctx, tenantID, activeOnly)
}

// CloseBatch marks a batch inactive
func (s *BatchService) CloseBatch(ctx context.Context, tenantID, batchID uuid.UUID) error {
	batch, err := s.batchRepo.FindByIDForTenant(ctx, tenantID, batchID)
	if err != nil {
		return err
	}
	batch.Close()
	return s.batchRepo.Save(ctx, batch)
}
