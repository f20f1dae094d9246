package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dataflexhq/dataflex-backend/internal/agents"
	authsvc "github.com/dataflexhq/dataflex-backend/internal/auth"
	"github.com/dataflexhq/dataflex-backend/pkg/db/models"
)

type stubAuthService struct {
	pair *authsvc.TokenPair
	err  error
}

func (s stubAuthService) RegisterAgent(ctx context.Context, input agents.RegisterInput) (*models.Agent, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Agent{FullName: input.FullName, Phone: input.Phone}, nil
}

func (s stubAuthService) LoginAgent(ctx context.Context, phone, password string) (*authsvc.TokenPair, error) {
	return s.pair, s.err
}

func (s stubAuthService) LoginAdmin(ctx context.Context, email, password string) (*authsvc.TokenPair, error) {
	return s.pair, s.err
}

func (s stubAuthService) Refresh(ctx context.Context, accessToken, refreshToken string) (*authsvc.TokenPair, error) {
	return s.pair, s.err
}

func (s stubAuthService) Logout(ctx context.Context, accessID string) error {
	return s.err
}

func TestAuthLoginSuccess(t *testing.T) {
	handler := AuthLogin(stubAuthService{pair: &authsvc.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
	}}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"phone":"0240000000","password":"secret123"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data authsvc.TokenPair `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "access-token" {
		t.Fatalf("expected access token in payload got %+v", envelope.Data)
	}
}

func TestAuthLoginInvalidPayload(t *testing.T) {
	handler := AuthLogin(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader([]byte(`{"phone":"0240000000"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAuthRegisterCreated(t *testing.T) {
	handler := AuthRegister(stubAuthService{}, nil)

	body := `{"full_name":"Ama Mensah","phone":"0240000001","password":"secret123"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
}
