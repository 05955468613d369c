package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appfinance "github.com/institute/backend/internal/application/finance"
	"github.com/institute/backend/internal/domain/enrollment"
	"github.com/institute/backend/internal/domain/finance"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/institute/backend/internal/infrastructure/cache"
	"github.com/institute/backend/internal/interfaces/http/dto"
	"github.com/institute/backend/internal/interfaces/http/middleware"
)

// MockStudentRepository implements enrollment.StudentRepository for testing
type MockStudentRepository struct {
	mock.Mock
}

func (m *MockStudentRepository) FindByID(ctx context.Context, id uuid.UUID) (*enrollment.Student, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*enrollment.Student, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepository) FindByPhone(ctx context.Context, tenantID uuid.UUID, phone string) (*enrollment.Student, error) {
	args := m.Called(ctx, tenantID, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*enrollment.Student), args.Error(1)
}

func (m *MockStudentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter enrollment.StudentFilter) ([]enrollment.Student, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]enrollment.Student), args.Error(1)
}

func (m *MockStudentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter enrollment.StudentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStudentRepository) Create(ctx context.Context, student *enrollment.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) Save(ctx context.Context, student *enrollment.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *MockStudentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// MockPaymentRepository implements finance.PaymentRepository for testing
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*finance.Payment, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByStudent(ctx context.Context, tenantID, studentID uuid.UUID) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, studentID)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) ([]finance.Payment, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]finance.Payment), args.Error(1)
}

func (m *MockPaymentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter finance.PaymentFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Save(ctx context.Context, payment *finance.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

// Test setup helpers

var testTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

// setupTestRouter builds a router with the tenant context already resolved,
// the way the tenant middleware does in production.
func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.TenantIDKey, testTenantID.String())
		c.Next()
	})
	return router
}

func setupPaymentHandler(studentRepo *MockStudentRepository, paymentRepo *MockPaymentRepository, idempotency shared.IdempotencyStore) *PaymentHandler {
	txScope := appfinance.NewNoOpTransactionScope(studentRepo, paymentRepo)
	svc := appfinance.NewPaymentService(txScope, studentRepo, paymentRepo, idempotency, nil, nil)
	return NewPaymentHandler(svc)
}

func createTestStudent(totalFee, feePaid string) *enrollment.Student {
	student, err := enrollment.NewStudent(
		testTenantID,
		"Asha Verma",
		"9876501234",
		uuid.New(),
		time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		decimal.RequireFromString(totalFee),
		decimal.RequireFromString(feePaid),
	)
	if err != nil {
		panic(err)
	}
	return student
}

func createTestPayment(studentID uuid.UUID, amount string) *finance.Payment {
	payment, err := finance.NewPayment(
		testTenantID,
		studentID,
		decimal.RequireFromString(amount),
		time.Date(2025, 7, 15, 0, 0, 0, 0, time.UTC),
		finance.PaymentMethodCash,
	)
	if err != nil {
		panic(err)
	}
	payment.ClearDomainEvents()
	return payment
}

func doJSON(router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			panic(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// Tests

func TestPaymentHandler_Create_Success(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupPaymentHandler(studentRepo, paymentRepo, nil)

	student := createTestStudent("50000", "10000")
	studentID := student.ID

	studentRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, studentID).Return(student, nil)
	studentRepo.On("Save", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)

	router := setupTestRouter()
	router.POST("/payments", handler.Create)

	reqBody := RecordPaymentRequest{
		StudentID:   studentID.String(),
		Amount:      decimal.RequireFromString("5000"),
		PaymentDate: "2025-07-15",
		Method:      "BANK_TRANSFER",
		Reference:   "UTR-4411",
	}

	w := doJSON(router, http.MethodPost, "/payments", reqBody, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "15000", data["fee_paid"])
	assert.Equal(t, "35000", data["fee_due"])

	studentRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentHandler_Create_IdempotentReplay(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()
	handler := setupPaymentHandler(studentRepo, paymentRepo, store)

	student := createTestStudent("50000", "10000")
	studentID := student.ID

	// First call writes; the replay must only read.
	studentRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, studentID).Return(student, nil).Once()
	studentRepo.On("Save", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil).Once()
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil).Once()

	router := setupTestRouter()
	router.POST("/payments", handler.Create)

	reqBody := RecordPaymentRequest{
		StudentID:   studentID.String(),
		Amount:      decimal.RequireFromString("5000"),
		PaymentDate: "2025-07-15",
		Method:      "CASH",
	}
	headers := map[string]string{IdempotencyKeyHeader: "retry-key-001"}

	w1 := doJSON(router, http.MethodPost, "/payments", reqBody, headers)
	require.Equal(t, http.StatusCreated, w1.Code)

	var resp1 dto.Response
	require.NoError(t, json.Unmarshal(w1.Body.Bytes(), &resp1))
	payment1 := resp1.Data.(map[string]interface{})["payment"].(map[string]interface{})
	paymentID := uuid.MustParse(payment1["id"].(string))

	replayed := createTestPayment(studentID, "5000")
	replayed.ID = paymentID
	paymentRepo.On("FindByIDForTenant", mock.Anything, testTenantID, paymentID).Return(replayed, nil).Once()
	studentRepo.On("FindByIDForTenant", mock.Anything, testTenantID, studentID).Return(student, nil).Once()

	w2 := doJSON(router, http.MethodPost, "/payments", reqBody, headers)
	require.Equal(t, http.StatusCreated, w2.Code)

	var resp2 dto.Response
	require.NoError(t, json.Unmarshal(w2.Body.Bytes(), &resp2))
	payment2 := resp2.Data.(map[string]interface{})["payment"].(map[string]interface{})
	assert.Equal(t, paymentID.String(), payment2["id"])

	studentRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentHandler_Create_NegativeAmount(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupPaymentHandler(studentRepo, paymentRepo, nil)

	router := setupTestRouter()
	router.POST("/payments", handler.Create)

	reqBody := RecordPaymentRequest{
		StudentID: uuid.New().String(),
		Amount:    decimal.RequireFromString("-100"),
	}

	w := doJSON(router, http.MethodPost, "/payments", reqBody, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeInvalidAmount, resp.Error.Code)
}

func TestPaymentHandler_Create_InvalidJSON(t *testing.T) {
	handler := setupPaymentHandler(new(MockStudentRepository), new(MockPaymentRepository), nil)

	router := setupTestRouter()
	router.POST("/payments", handler.Create)

	req := httptest.NewRequest(http.MethodPost, "/payments", bytes.NewBufferString("not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_Create_StudentNotFound(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupPaymentHandler(studentRepo, paymentRepo, nil)

	studentID := uuid.New()
	studentRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, studentID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.POST("/payments", handler.Create)

	reqBody := RecordPaymentRequest{
		StudentID: studentID.String(),
		Amount:    decimal.RequireFromString("5000"),
	}

	w := doJSON(router, http.MethodPost, "/payments", reqBody, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	studentRepo.AssertExpectations(t)
}

func TestPaymentHandler_Get_Success(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupPaymentHandler(studentRepo, paymentRepo, nil)

	payment := createTestPayment(uuid.New(), "2500")
	paymentRepo.On("FindByIDForTenant", mock.Anything, testTenantID, payment.ID).Return(payment, nil)

	router := setupTestRouter()
	router.GET("/payments/:id", handler.Get)

	w := doJSON(router, http.MethodGet, "/payments/"+payment.ID.String(), nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentHandler_Get_InvalidID(t *testing.T) {
	handler := setupPaymentHandler(new(MockStudentRepository), new(MockPaymentRepository), nil)

	router := setupTestRouter()
	router.GET("/payments/:id", handler.Get)

	w := doJSON(router, http.MethodGet, "/payments/not-a-uuid", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_List_WithFilters(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupPaymentHandler(studentRepo, paymentRepo, nil)

	studentID := uuid.New()
	payments := []finance.Payment{*createTestPayment(studentID, "5000")}

	matchFilter := mock.MatchedBy(func(f finance.PaymentFilter) bool {
		return f.StudentID != nil && *f.StudentID == studentID &&
			f.Method != nil && *f.Method == finance.PaymentMethodCash &&
			f.From != nil && f.To != nil &&
			f.Page == 1 && f.PageSize == 20
	})
	paymentRepo.On("FindAllForTenant", mock.Anything, testTenantID, matchFilter).Return(payments, nil)
	paymentRepo.On("CountForTenant", mock.Anything, testTenantID, matchFilter).Return(int64(1), nil)

	router := setupTestRouter()
	router.GET("/payments", handler.List)

	path := "/payments?student_id=" + studentID.String() + "&method=CASH&from=2025-07-01&to=2025-07-31"
	w := doJSON(router, http.MethodGet, path, nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(1), resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Page)

	paymentRepo.AssertExpectations(t)
}

func TestPaymentHandler_List_InvalidDate(t *testing.T) {
	handler := setupPaymentHandler(new(MockStudentRepository), new(MockPaymentRepository), nil)

	router := setupTestRouter()
	router.GET("/payments", handler.List)

	w := doJSON(router, http.MethodGet, "/payments?from=July-1", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentHandler_Update_AmountDelta(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupPaymentHandler(studentRepo, paymentRepo, nil)

	student := createTestStudent("50000", "15000")
	payment := createTestPayment(student.ID, "5000")

	paymentRepo.On("FindByIDForTenant", mock.Anything, testTenantID, payment.ID).Return(payment, nil)
	paymentRepo.On("Save", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)
	studentRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, student.ID).Return(student, nil)
	studentRepo.On("Save", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)

	router := setupTestRouter()
	router.PUT("/payments/:id", handler.Update)

	amount := decimal.RequireFromString("7500")
	reqBody := UpdatePaymentRequest{Amount: &amount}

	w := doJSON(router, http.MethodPut, "/payments/"+payment.ID.String(), reqBody, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	// 5000 -> 7500 moves the ledger by +2500
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "17500", data["fee_paid"])
	assert.Equal(t, "32500", data["fee_due"])

	studentRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentHandler_Delete_Success(t *testing.T) {
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupPaymentHandler(studentRepo, paymentRepo, nil)

	student := createTestStudent("50000", "15000")
	payment := createTestPayment(student.ID, "5000")

	paymentRepo.On("FindByIDForTenant", mock.Anything, testTenantID, payment.ID).Return(payment, nil)
	studentRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, student.ID).Return(student, nil)
	paymentRepo.On("Delete", mock.Anything, testTenantID, payment.ID).Return(nil)
	studentRepo.On("Save", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)

	router := setupTestRouter()
	router.DELETE("/payments/:id", handler.Delete)

	w := doJSON(router, http.MethodDelete, "/payments/"+payment.ID.String(), nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, decimal.RequireFromString("10000").String(), student.FeePaid.String())

	studentRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestPaymentHandler_MissingTenant(t *testing.T) {
	handler := setupPaymentHandler(new(MockStudentRepository), new(MockPaymentRepository), nil)

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/payments", handler.List)

	w := doJSON(router, http.MethodGet, "/payments", nil, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
