package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/institute/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// ObjectStorage defines the interface for object storage operations.
// This interface is implemented by the infrastructure layer (S3 or stub).
type ObjectStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// GetObject fetches an object's raw bytes and content type
	GetObject(ctx context.Context, storageKey string) ([]byte, string, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// UpdateSettingsRequest carries the organization settings to apply
type UpdateSettingsRequest struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
	GSTIN   string
}

const logoUploadExpiry = 15 * time.Minute

// TenantService manages the per-tenant organization settings that feed the
// invoice letterhead.
type TenantService struct {
	tenantRepo identity.TenantRepository
	storage    ObjectStorage
	logger     *zap.Logger
}

// NewTenantService creates a new TenantService
func NewTenantService(tenantRepo identity.TenantRepository, storage ObjectStorage, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		tenantRepo: tenantRepo,
		storage:    storage,
		logger:     logger,
	}
}

// GetSettings returns the organization settings of a tenant
func (s *TenantService) GetSettings(ctx context.Context, tenantID uuid.UUID) (*identity.Tenant, error) {
	return s.tenantRepo.FindByID(ctx, tenantID)
}

// UpdateSettings applies organization settings
func (s *TenantService) UpdateSettings(ctx context.Context, tenantID uuid.UUID, req UpdateSettingsRequest) (*identity.Tenant, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := tenant.UpdateSettings(req.Name, req.Address, req.Phone, req.Email, req.Website, req.GSTIN); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, fmt.Errorf("failed to save tenant settings: %w", err)
	}

	return tenant, nil
}

// PrepareLogoUpload stamps a new logo key on the tenant and returns a
// presigned URL the client uploads the image to.
func (s *TenantService) PrepareLogoUpload(ctx context.Context, tenantID uuid.UUID, contentType string) (string, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("tenants/%s/logo/%s", tenantID, uuid.New())
	uploadURL, _, err := s.storage.GenerateUploadURL(ctx, key, contentType, logoUploadExpiry)
	if err != nil {
		return "", fmt.Errorf("failed to generate logo upload URL: %w", err)
	}

	tenant.SetLogoKey(key)
	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return "", fmt.Errorf("failed to save tenant logo key: %w", err)
	}

	return uploadURL, nil
}
