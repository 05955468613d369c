package enrollment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/institute/backend/internal/application/finance"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Mock Repositories for Student Service
// =============================================================================

// MockStudentRepositoryForEnrollment is a mock implementation for enrollment tests
type MockStudentRepositoryForEnrollment struct {
	mock.Mock
}

func (m *MockStudentRepositoryForEnrollment) FindByID(ctx context.Context, id uuid.UUID) (*enrollment.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepositoryForEnrollment) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepositoryForEnrollment) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepositoryForEnrollment) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*enrollment.Student, error) {
	args := m.Called(ctx, tenantID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepositoryForEnrollment) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter enrollment.StudentFilter) ([]enrollment.Student, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]enrollment.Student), args.Error(1)
}

func (m *MockStudentRepositoryForEnrollment) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter enrollment.StudentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepositoryForEnrollment) Create(ctx context.Context, student *enrollment.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepositoryForEnrollment) Save(ctx context.Context, student *enrollment.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepositoryForEnrollment) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockPaymentRepositoryForEnrollment is a mock implementation for enrollment tests
type MockPaymentRepositoryForEnrollment struct {
	mock.Mock
}

func (m *MockPaymentRepositoryForEnrollment) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepositoryForEnrollment) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepositoryForEnrollment) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, studentID)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepositoryForEnrollment) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepositoryForEnrollment) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepositoryForEnrollment) Create(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepositoryForEnrollment) Save(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepositoryForEnrollment) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockBatchRepository is a mock implementation of enrollment.BatchRepository
type MockBatchRepository struct {
	mock.Mock
}

func (m *MockBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*enrollment.Batch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Batch, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Batch), args.Error(1)
}

func (m *MockBatchRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, activeOnly bool) ([]enrollment.Batch, error) {
	args := m.Called(ctx, tenantID, activeOnly)
	return args.Get(0).([]enrollment.Batch), args.Error(1)
}

func (m *MockBatchRepository) Create(ctx context.Context, batch *enrollment.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) Save(ctx context.Context, batch *enrollment.Batch) error {
	args := m.Called(ctx, batch)
	return args.Error(0)
}

func (m *MockBatchRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// =============================================================================
// Helpers
// =============================================================================

func newTestBatch(t *testing.T, tenantID uuid.UUID) *enrollment.Batch {
	t.Helper()
	batch, err := enrollment.NewBatch(tenantID, "FSD-2024-July",
		time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(50000), 30)
	assert.NoError(t, err)
	return batch
}

func newTestStudentService(studentRepo *MockStudentRepositoryForEnrollment, paymentRepo *MockPaymentRepositoryForEnrollment, batchRepo *MockBatchRepository) *StudentService {
	scope := appfinance.NewNoOpTransactionScope(studentRepo, paymentRepo)
	return NewStudentService(scope, studentRepo, batchRepo, nil, nil)
}

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

// =============================================================================
// EnrollStudent
// =============================================================================

func TestEnrollStudent_WithInitialPayment(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	service := newTestStudentService(studentRepo, paymentRepo, batchRepo)

	tenantID := uuid.New()
	batch := newTestBatch(t, tenantID)

	batchRepo.On("FindByIDForTenant", mock.Anything, tenantID, batch.ID).Return(batch, nil)
	studentRepo.On("FindByPhone", mock.Anything, tenantID, "9876543210").Return(nil, shared.ErrNotFound)
	studentRepo.On("Create", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)

	result, err := service.EnrollStudent(context.Background(), EnrollStudentRequest{
		TenantID:       tenantID,
		Name:           "Priya Sharma",
		Phone:          "9876543210",
		BatchID:        batch.ID,
		EnrollmentDate: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		TotalFee:       decimal.NewFromInt(50000),
		InitialPayment: decimal.NewFromInt(10000),
		PaymentMethod:  finance.PaymentMethodCash,
	})

	assert.NoError(t, err)
	assert.True(t, result.Student.FeePaid.Equal(decimal.NewFromInt(10000)))
	assert.True(t, result.Student.FeeDue.Equal(decimal.NewFromInt(40000)))
	assert.NotNil(t, result.Payment)
	assert.True(t, result.Payment.Amount.Equal(decimal.NewFromInt(10000)))
	studentRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestEnrollStudent_WithoutPayment(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	service := newTestStudentService(studentRepo, paymentRepo, batchRepo)

	tenantID := uuid.New()
	batch := newTestBatch(t, tenantID)

	batchRepo.On("FindByIDForTenant", mock.Anything, tenantID, batch.ID).Return(batch, nil)
	studentRepo.On("FindByPhone", mock.Anything, tenantID, "9876543210").Return(nil, shared.ErrNotFound)
	studentRepo.On("Create", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)

	result, err := service.EnrollStudent(context.Background(), EnrollStudentRequest{
		TenantID:       tenantID,
		Name:           "Priya Sharma",
		Phone:          "9876543210",
		BatchID:        batch.ID,
		EnrollmentDate: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		TotalFee:       decimal.NewFromInt(50000),
	})

	assert.NoError(t, err)
	assert.Nil(t, result.Payment)
	assert.True(t, result.Student.FeePaid.IsZero())
	assert.True(t, result.Student.FeeDue.Equal(decimal.NewFromInt(50000)))
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnrollStudent_EnrolledEventCarriesEmail(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	publisher := &capturingPublisher{}
	scope := appfinance.NewNoOpTransactionScope(studentRepo, paymentRepo)
	service := NewStudentService(scope, studentRepo, batchRepo, publisher, nil)

	tenantID := uuid.New()
	batch := newTestBatch(t, tenantID)

	batchRepo.On("FindByIDForTenant", mock.Anything, tenantID, batch.ID).Return(batch, nil)
	studentRepo.On("FindByPhone", mock.Anything, tenantID, "9876543210").Return(nil, shared.ErrNotFound)
	studentRepo.On("Create", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)

	_, err := service.EnrollStudent(context.Background(), EnrollStudentRequest{
		TenantID:       tenantID,
		Name:           "Priya Sharma",
		Phone:          "9876543210",
		Email:          "priya@example.com",
		BatchID:        batch.ID,
		EnrollmentDate: time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC),
		TotalFee:       decimal.NewFromInt(50000),
	})
	require.NoError(t, err)

	require.Len(t, publisher.events, 1)
	evt, ok := publisher.events[0].(*enrollment.StudentEnrolledEvent)
	require.True(t, ok)
	assert.Equal(t, "priya@example.com", evt.StudentEmail)
	assert.Equal(t, "Priya Sharma", evt.StudentName)
}

func TestEnrollStudent_DuplicatePhone(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	service := newTestStudentService(studentRepo, paymentRepo, batchRepo)

	tenantID := uuid.New()
	batch := newTestBatch(t, tenantID)
	existing, err := enrollment.NewStudent(tenantID, "Someone Else", "9876543210", batch.ID,
		time.Now(), decimal.NewFromInt(30000), decimal.Zero)
	assert.NoError(t, err)

	batchRepo.On("FindByIDForTenant", mock.Anything, tenantID, batch.ID).Return(batch, nil)
	studentRepo.On("FindByPhone", mock.Anything, tenantID, "9876543210").Return(existing, nil)

	result, err := service.EnrollStudent(context.Background(), EnrollStudentRequest{
		TenantID:       tenantID,
		Name:           "Priya Sharma",
		Phone:          "9876543210",
		BatchID:        batch.ID,
		EnrollmentDate: time.Now(),
		TotalFee:       decimal.NewFromInt(50000),
	})

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	studentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnrollStudent_UnknownBatch(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	service := newTestStudentService(studentRepo, paymentRepo, batchRepo)

	tenantID := uuid.New()
	batchID := uuid.New()
	batchRepo.On("FindByIDForTenant", mock.Anything, tenantID, batchID).Return(nil, shared.ErrNotFound)

	result, err := service.EnrollStudent(context.Background(), EnrollStudentRequest{
		TenantID:       tenantID,
		Name:           "Priya Sharma",
		Phone:          "9876543210",
		BatchID:        batchID,
		EnrollmentDate: time.Now(),
		TotalFee:       decimal.NewFromInt(50000),
	})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestEnrollStudent_PaymentMethodRequired(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	service := newTestStudentService(studentRepo, paymentRepo, batchRepo)

	result, err := service.EnrollStudent(context.Background(), EnrollStudentRequest{
		TenantID:       uuid.New(),
		Name:           "Priya Sharma",
		Phone:          "9876543210",
		BatchID:        uuid.New(),
		EnrollmentDate: time.Now(),
		TotalFee:       decimal.NewFromInt(50000),
		InitialPayment: decimal.NewFromInt(10000),
	})

	assert.Nil(t, result)
	var domainErr *shared.DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "MISSING_FIELD", domainErr.Code)
	batchRepo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
}

// =============================================================================
// UpdateStudent
// =============================================================================

func TestUpdateStudent_TotalFeeRecomputesDue(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	service := newTestStudentService(studentRepo, paymentRepo, batchRepo)

	tenantID := uuid.New()
	student, err := enrollment.NewStudent(tenantID, "Priya Sharma", "9876543210", uuid.New(),
		time.Now(), decimal.NewFromInt(50000), decimal.NewFromInt(20000))
	assert.NoError(t, err)

	studentRepo.On("FindByIDForUpdate", mock.Anything, tenantID, student.ID).Return(student, nil)
	studentRepo.On("Save", mock.Anything, student).Return(nil)

	newFee := decimal.NewFromInt(45000)
	updated, err := service.UpdateStudent(context.Background(), tenantID, student.ID, UpdateStudentRequest{
		TotalFee: &newFee,
	})

	assert.NoError(t, err)
	assert.True(t, updated.TotalFee.Equal(decimal.NewFromInt(45000)))
	assert.True(t, updated.FeePaid.Equal(decimal.NewFromInt(20000)), "fee paid must not move on a fee change")
	assert.True(t, updated.FeeDue.Equal(decimal.NewFromInt(25000)))
}

func TestDeactivateStudent(t *testing.T) {
	studentRepo := new(MockStudentRepositoryForEnrollment)
	paymentRepo := new(MockPaymentRepositoryForEnrollment)
	batchRepo := new(MockBatchRepository)
	service := newTestStudentService(studentRepo, paymentRepo, batchRepo)

	tenantID := uuid.New()
	student, err := enrollment.NewStudent(tenantID, "Priya Sharma", "9876543210", uuid.New(),
		time.Now(), decimal.NewFromInt(50000), decimal.Zero)
	assert.NoError(t, err)

	studentRepo.On("FindByIDForTenant", mock.Anything, tenantID, student.ID).Return(student, nil)
	studentRepo.On("Save", mock.Anything, student).Return(nil)

	err = service.DeactivateStudent(context.Background(), tenantID, student.ID)

	assert.NoError(t, err)
	assert.False(t, student.IsActive)
}
