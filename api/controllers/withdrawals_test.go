package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/dataflexhq/dataflex-backend/api/middleware"
	"github.com/dataflexhq/dataflex-backend/internal/withdrawals"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
	"github.com/dataflexhq/dataflex-backend/pkg/enums"
	"github.com/dataflexhq/dataflex-backend/pkg/pagination"
)

type stubWithdrawalsService struct {
	withdrawal *models.Withdrawal
	err        error
}

func (s stubWithdrawalsService) Create(ctx context.Context, input withdrawals.CreateInput) (*models.Withdrawal, error) {
	return s.withdrawal, s.err
}

func (s stubWithdrawalsService) SetStatus(ctx context.Context, id uuid.UUID, next enums.WithdrawalStatus) (*models.Withdrawal, error) {
	return s.withdrawal, s.err
}

func (s stubWithdrawalsService) Get(ctx context.Context, id uuid.UUID) (*models.Withdrawal, error) {
	return s.withdrawal, s.err
}

func (s stubWithdrawalsService) GetForAgent(ctx context.Context, agentID, id uuid.UUID) (*models.Withdrawal, error) {
	return s.withdrawal, s.err
}

func (s stubWithdrawalsService) ListForAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*withdrawals.Page, error) {
	return &withdrawals.Page{}, s.err
}

func (s stubWithdrawalsService) List(ctx context.Context, status *enums.WithdrawalStatus, params pagination.Params) (*withdrawals.Page, error) {
	return &withdrawals.Page{}, s.err
}

func withAgentContext(req *http.Request, agentID uuid.UUID) *http.Request {
	ctx := middleware.WithActorID(req.Context(), agentID.String())
	ctx = middleware.WithRole(ctx, "agent")
	return req.WithContext(ctx)
}

func TestWithdrawalCreateCreated(t *testing.T) {
	agentID := uuid.New()
	handler := WithdrawalCreate(stubWithdrawalsService{withdrawal: &models.Withdrawal{
		ID:      uuid.New(),
		AgentID: agentID,
		Amount:  decimal.RequireFromString("15.00"),
		Status:  enums.WithdrawalStatusRequested,
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", bytes.NewReader([]byte(`{"amount":"15.00","momo_number":"0240000000"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withAgentContext(req, agentID)
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestWithdrawalCreateBelowMinimum(t *testing.T) {
	handler := WithdrawalCreate(stubWithdrawalsService{err: withdrawals.ErrBelowMinimum}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", bytes.NewReader([]byte(`{"amount":"5.00","momo_number":"0240000000"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withAgentContext(req, uuid.New())
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestWithdrawalCreateMissingActor(t *testing.T) {
	handler := WithdrawalCreate(stubWithdrawalsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/withdrawals", bytes.NewReader([]byte(`{"amount":"15.00","momo_number":"0240000000"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAdminWithdrawalStatusInvalidTransition(t *testing.T) {
	handler := AdminWithdrawalStatus(stubWithdrawalsService{err: withdrawals.ErrInvalidTransition}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/withdrawals/"+uuid.NewString()+"/status", bytes.NewReader([]byte(`{"status":"paid"}`)))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("withdrawalId", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestAdminWithdrawalStatusUnknownStatus(t *testing.T) {
	handler := AdminWithdrawalStatus(stubWithdrawalsService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/withdrawals/"+uuid.NewString()+"/status", bytes.NewReader([]byte(`{"status":"archived"}`)))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("withdrawalId", uuid.NewString())
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
