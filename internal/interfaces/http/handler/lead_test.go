package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appcrm "github.com/institute/backend/internal/application/crm"
	"github.com/institute/backend/internal/domain/crm"
	"github.com/institute/backend/internal/domain/shared"
	"github.com/institute/backend/internal/interfaces/http/dto"
)

// MockLeadRepository implements crm.LeadRepository for testing
type MockLeadRepository struct {
	mock.Mock
}

func (m *MockLeadRepository) FindByID(ctx context.Context, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*crm.Lead, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.LeadFilter) ([]crm.Lead, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).([]crm.Lead), args.Error(1)
}

func (m *MockLeadRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter crm.LeadFilter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeadRepository) Create(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Save(ctx context.Context, lead *crm.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *MockLeadRepository) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func setupLeadHandler(leadRepo *MockLeadRepository, studentRepo *MockStudentRepository, paymentRepo *MockPaymentRepository) *LeadHandler {
	convScope := appcrm.NewNoOpConversionScope(leadRepo, studentRepo, paymentRepo)
	svc := appcrm.NewLeadService(convScope, leadRepo, nil, nil)
	return NewLeadHandler(svc)
}

func createTestLead() *crm.Lead {
	lead, err := crm.NewLead(testTenantID, "Rahul Nair", "9876512345", "walk-in", "Data Science")
	if err != nil {
		panic(err)
	}
	lead.SetEmail("rahul@example.com")
	lead.ClearDomainEvents()
	return lead
}

// Tests

func TestLeadHandler_Create_Success(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	handler := setupLeadHandler(leadRepo, new(MockStudentRepository), new(MockPaymentRepository))

	leadRepo.On("Create", mock.Anything, mock.AnythingOfType("*crm.Lead")).Return(nil)

	router := setupTestRouter()
	router.POST("/leads", handler.Create)

	reqBody := CaptureLeadRequest{
		Name:           "Rahul Nair",
		Phone:          "9876512345",
		Email:          "rahul@example.com",
		Source:         "walk-in",
		CourseInterest: "Data Science",
	}

	w := doJSON(router, http.MethodPost, "/leads", reqBody, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "NEW", data["status"])

	leadRepo.AssertExpectations(t)
}

func TestLeadHandler_Create_MissingPhone(t *testing.T) {
	handler := setupLeadHandler(new(MockLeadRepository), new(MockStudentRepository), new(MockPaymentRepository))

	router := setupTestRouter()
	router.POST("/leads", handler.Create)

	w := doJSON(router, http.MethodPost, "/leads", CaptureLeadRequest{Name: "Rahul Nair"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_Get_NotFound(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	handler := setupLeadHandler(leadRepo, new(MockStudentRepository), new(MockPaymentRepository))

	leadID := uuid.New()
	leadRepo.On("FindByIDForTenant", mock.Anything, testTenantID, leadID).Return(nil, shared.ErrNotFound)

	router := setupTestRouter()
	router.GET("/leads/:id", handler.Get)

	w := doJSON(router, http.MethodGet, "/leads/"+leadID.String(), nil, nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	leadRepo.AssertExpectations(t)
}

func TestLeadHandler_List_StatusFilter(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	handler := setupLeadHandler(leadRepo, new(MockStudentRepository), new(MockPaymentRepository))

	leads := []crm.Lead{*createTestLead()}
	matchFilter := mock.MatchedBy(func(f crm.LeadFilter) bool {
		return f.Status != nil && *f.Status == crm.LeadStatusNew
	})
	leadRepo.On("FindAllForTenant", mock.Anything, testTenantID, matchFilter).Return(leads, nil)
	leadRepo.On("CountForTenant", mock.Anything, testTenantID, matchFilter).Return(int64(1), nil)

	router := setupTestRouter()
	router.GET("/leads", handler.List)

	w := doJSON(router, http.MethodGet, "/leads?status=NEW", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	leadRepo.AssertExpectations(t)
}

func TestLeadHandler_Update_StatusChange(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	handler := setupLeadHandler(leadRepo, new(MockStudentRepository), new(MockPaymentRepository))

	lead := createTestLead()
	leadRepo.On("FindByIDForTenant", mock.Anything, testTenantID, lead.ID).Return(lead, nil)
	leadRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Lead")).Return(nil)

	router := setupTestRouter()
	router.PUT("/leads/:id", handler.Update)

	status := "CONTACTED"
	w := doJSON(router, http.MethodPut, "/leads/"+lead.ID.String(), UpdateLeadRequest{Status: &status}, nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, crm.LeadStatusContacted, lead.Status)

	leadRepo.AssertExpectations(t)
}

func TestLeadHandler_Update_ConvertedStatusRejected(t *testing.T) {
	handler := setupLeadHandler(new(MockLeadRepository), new(MockStudentRepository), new(MockPaymentRepository))

	router := setupTestRouter()
	router.PUT("/leads/:id", handler.Update)

	// CONVERTED is not reachable through the update endpoint
	status := "CONVERTED"
	w := doJSON(router, http.MethodPut, "/leads/"+uuid.New().String(), UpdateLeadRequest{Status: &status}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_Convert_WithInitialPayment(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupLeadHandler(leadRepo, studentRepo, paymentRepo)

	lead := createTestLead()

	leadRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, lead.ID).Return(lead, nil)
	studentRepo.On("Create", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)
	paymentRepo.On("Create", mock.Anything, mock.AnythingOfType("*finance.Payment")).Return(nil)
	leadRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Lead")).Return(nil)

	router := setupTestRouter()
	router.POST("/leads/:id/convert", handler.Convert)

	reqBody := ConvertLeadRequest{
		BatchID:        uuid.New().String(),
		EnrollmentDate: "2025-08-01",
		TotalFee:       decimal.RequireFromString("60000"),
		InitialPayment: decimal.RequireFromString("10000"),
		PaymentMethod:  "CASH",
	}

	w := doJSON(router, http.MethodPost, "/leads/"+lead.ID.String()+"/convert", reqBody, nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, crm.LeadStatusConverted, lead.Status)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	student := data["student"].(map[string]interface{})
	assert.Equal(t, "Rahul Nair", student["name"])
	assert.Equal(t, "10000", student["fee_paid"])
	assert.Equal(t, "50000", student["fee_due"])
	require.NotNil(t, data["payment"])

	leadRepo.AssertExpectations(t)
	studentRepo.AssertExpectations(t)
	paymentRepo.AssertExpectations(t)
}

func TestLeadHandler_Convert_NoPayment(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupLeadHandler(leadRepo, studentRepo, paymentRepo)

	lead := createTestLead()

	leadRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, lead.ID).Return(lead, nil)
	studentRepo.On("Create", mock.Anything, mock.AnythingOfType("*enrollment.Student")).Return(nil)
	leadRepo.On("Save", mock.Anything, mock.AnythingOfType("*crm.Lead")).Return(nil)

	router := setupTestRouter()
	router.POST("/leads/:id/convert", handler.Convert)

	reqBody := ConvertLeadRequest{
		BatchID:        uuid.New().String(),
		EnrollmentDate: "2025-08-01",
		TotalFee:       decimal.RequireFromString("60000"),
	}

	w := doJSON(router, http.MethodPost, "/leads/"+lead.ID.String()+"/convert", reqBody, nil)

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Nil(t, data["payment"])

	leadRepo.AssertExpectations(t)
	studentRepo.AssertExpectations(t)
	paymentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLeadHandler_Convert_AlreadyConverted(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	studentRepo := new(MockStudentRepository)
	paymentRepo := new(MockPaymentRepository)
	handler := setupLeadHandler(leadRepo, studentRepo, paymentRepo)

	lead := createTestLead()
	require.NoError(t, lead.Convert(uuid.New()))
	lead.ClearDomainEvents()

	leadRepo.On("FindByIDForUpdate", mock.Anything, testTenantID, lead.ID).Return(lead, nil)

	router := setupTestRouter()
	router.POST("/leads/:id/convert", handler.Convert)

	reqBody := ConvertLeadRequest{
		BatchID:        uuid.New().String(),
		EnrollmentDate: "2025-08-01",
		TotalFee:       decimal.RequireFromString("60000"),
	}

	w := doJSON(router, http.MethodPost, "/leads/"+lead.ID.String()+"/convert", reqBody, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)

	leadRepo.AssertExpectations(t)
	studentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestLeadHandler_Convert_MissingBatch(t *testing.T) {
	handler := setupLeadHandler(new(MockLeadRepository), new(MockStudentRepository), new(MockPaymentRepository))

	router := setupTestRouter()
	router.POST("/leads/:id/convert", handler.Convert)

	reqBody := ConvertLeadRequest{
		EnrollmentDate: "2025-08-01",
		TotalFee:       decimal.RequireFromString("60000"),
	}

	w := doJSON(router, http.MethodPost, "/leads/"+uuid.New().String()+"/convert", reqBody, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_Convert_MissingEnrollmentDate(t *testing.T) {
	handler := setupLeadHandler(new(MockLeadRepository), new(MockStudentRepository), new(MockPaymentRepository))

	router := setupTestRouter()
	router.POST("/leads/:id/convert", handler.Convert)

	reqBody := ConvertLeadRequest{
		BatchID:  uuid.New().String(),
		TotalFee: decimal.RequireFromString("60000"),
	}

	w := doJSON(router, http.MethodPost, "/leads/"+uuid.New().String()+"/convert", reqBody, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeadHandler_Delete_Success(t *testing.T) {
	leadRepo := new(MockLeadRepository)
	handler := setupLeadHandler(leadRepo, new(MockStudentRepository), new(MockPaymentRepository))

	leadID := uuid.New()
	leadRepo.On("Delete", mock.Anything, testTenantID, leadID).Return(nil)

	router := setupTestRouter()
	router.DELETE("/leads/:id", handler.Delete)

	w := doJSON(router, http.MethodDelete, "/leads/"+leadID.String(), nil, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	leadRepo.AssertExpectations(t)
}

func TestLeadHandler_RegisterRoutes(t *testing.T) {
	handler := setupLeadHandler(new(MockLeadRepository), new(MockStudentRepository), new(MockPaymentRepository))

	gin.SetMode(gin.TestMode)
	router := gin.New()
	handler.RegisterRoutes(router.Group("/api/v1"))

	routes := router.Routes()
	paths := make(map[string]bool)
	for _, r := range routes {
		paths[r.Method+" "+r.Path] = true
	}

	assert.True(t, paths["POST /api/v1/leads"])
	assert.True(t, paths["POST /api/v1/leads/:id/convert"])
	assert.True(t, paths["DELETE /api/v1/leads/:id"])
}
