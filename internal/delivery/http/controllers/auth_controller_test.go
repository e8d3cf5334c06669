package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventboard/internal/domain"
)

type fakeUserService struct {
	createErr    error
	createResult *domain.User
	lastEmail    string

	loginErr   error
	loginToken string
	loginUser  *domain.User

	deleteErr error

	listResult []*domain.User
	lastIDs    []string
}

func (f *fakeUserService) Create(ctx context.Context, email, name, password string) (*domain.User, error) {
	f.lastEmail = email
	return f.createResult, f.createErr
}

func (f *fakeUserService) List(ctx context.Context, ids []string, p domain.PaginationParams) ([]*domain.User, error) {
	f.lastIDs = ids
	return f.listResult, nil
}

func (f *fakeUserService) Delete(ctx context.Context, id string) error {
	return f.deleteErr
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	f.lastEmail = email
	return f.loginToken, f.loginUser, f.loginErr
}

func TestAuthController_Login(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		loginErr   error
		wantStatus int
	}{
		{name: "success", body: `{"email": "alice@example.com", "password": "secretpass"}`, wantStatus: http.StatusOK},
		{name: "missing password", body: `{"email": "alice@example.com"}`, wantStatus: http.StatusBadRequest},
		{name: "bad credentials", body: `{"email": "alice@example.com", "password": "wrong-pass"}`, loginErr: domain.Validationf("invalid credentials"), wantStatus: http.StatusUnauthorized},
		{name: "backend failure", body: `{"email": "alice@example.com", "password": "secretpass"}`, loginErr: errors.New("db down"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUserService{
				loginErr:   tt.loginErr,
				loginToken: "tok-1",
				loginUser:  &domain.User{ID: "us-1", Email: "alice@example.com"},
			}
			controller := NewAuthController(testLogger, svc)

			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			controller.Login(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				var resp struct {
					Data LoginResponse `json:"data"`
				}
				require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "tok-1", resp.Data.Token)
				require.NotNil(t, resp.Data.User)
				assert.Equal(t, "us-1", resp.Data.User.ID)
			}
		})
	}
}

func TestUserController_Create(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
	}{
		{name: "created", body: `{"email": "bob@example.com", "name": "Bob", "password": "longenough"}`, wantStatus: http.StatusCreated},
		{name: "short password", body: `{"email": "bob@example.com", "name": "Bob", "password": "short"}`, wantStatus: http.StatusBadRequest},
		{name: "bad email", body: `{"email": "not-an-email", "name": "Bob", "password": "longenough"}`, wantStatus: http.StatusBadRequest},
		{name: "duplicate email", body: `{"email": "bob@example.com", "name": "Bob", "password": "longenough"}`, createErr: domain.Conflictf("email already registered"), wantStatus: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeUserService{createErr: tt.createErr, createResult: &domain.User{ID: "us-2"}}
			controller := NewUserController(testLogger, svc)

			req := httptest.NewRequest(http.MethodPost, "/admin/users", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()

			controller.Create(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestUserController_List_PassesIDs(t *testing.T) {
	svc := &fakeUserService{listResult: []*domain.User{{ID: "us-1"}}}
	controller := NewUserController(testLogger, svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/users?ids=us-1&ids=us-2", nil)
	rec := httptest.NewRecorder()

	controller.List(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"us-1", "us-2"}, svc.lastIDs)
}

func TestUserController_Delete(t *testing.T) {
	t.Run("no content", func(t *testing.T) {
		controller := NewUserController(testLogger, &fakeUserService{})

		req := httptest.NewRequest(http.MethodDelete, "/admin/users/us-1", nil)
		req.SetPathValue("userID", "us-1")
		rec := httptest.NewRecorder()

		controller.Delete(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("not found", func(t *testing.T) {
		controller := NewUserController(testLogger, &fakeUserService{deleteErr: domain.NotFoundf("user us-9 not found")})

		req := httptest.NewRequest(http.MethodDelete, "/admin/users/us-9", nil)
		req.SetPathValue("userID", "us-9")
		rec := httptest.NewRecorder()

		controller.Delete(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
