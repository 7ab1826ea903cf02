package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thysis/room-designer-api/internal/logging"
)

func newTestAuthRouter(t *testing.T) (*chi.Mux, *testEnv) {
	t.Helper()
	env := newTestEnv(t)
	h := NewHandler(env.service, logging.NewLogger(true))

	r := chi.NewRouter()
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)
	r.Post("/auth/forgot-password", h.ForgotPassword)
	r.Post("/auth/reset-password", h.ResetPassword)
	return r, env
}

func postJSON(t *testing.T, router *chi.Mux, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	router.ServeHTTP(rec, req)
	return rec
}

func authEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

func TestHandler_Register(t *testing.T) {
	router, _ := newTestAuthRouter(t)

	rec := postJSON(t, router, "/auth/register", RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	envelope := authEnvelope(t, rec)
	assert.Equal(t, true, envelope["status"])
	assert.Equal(t, "User registered successfully.", envelope["message"])
	data := envelope["data"].(map[string]any)
	assert.NotEmpty(t, data["userId"])

	// Second registration with the same username fails with a 400.
	rec = postJSON(t, router, "/auth/register", RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "correcthorse",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, false, authEnvelope(t, rec)["status"])
}

func TestHandler_Login(t *testing.T) {
	router, _ := newTestAuthRouter(t)

	postJSON(t, router, "/auth/register", RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})

	rec := postJSON(t, router, "/auth/login", LoginRequest{
		Username: "alice@example.com", Password: "correcthorse",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	data := authEnvelope(t, rec)["data"].(map[string]any)
	assert.Equal(t, "alice", data["username"])
	assert.NotEmpty(t, data["userId"])

	rec = postJSON(t, router, "/auth/login", LoginRequest{
		Username: "alice", Password: "wrongpassword",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, router, "/auth/login", LoginRequest{
		Username: "nobody", Password: "correcthorse",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_PasswordResetFlow(t *testing.T) {
	router, env := newTestAuthRouter(t)

	postJSON(t, router, "/auth/register", RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "correcthorse",
	})

	rec := postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Email: "alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Reset code sent to your email.", authEnvelope(t, rec)["message"])

	rec = postJSON(t, router, "/auth/forgot-password", ForgotPasswordRequest{Email: "nobody@example.com"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = postJSON(t, router, "/auth/reset-password", ResetPasswordRequest{
		Email: "alice@example.com", ResetCode: env.notifier.sentCode, NewPassword: "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password reset successfully.", authEnvelope(t, rec)["message"])

	rec = postJSON(t, router, "/auth/login", LoginRequest{
		Username: "alice", Password: "newpassword1",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Reused code is rejected.
	rec = postJSON(t, router, "/auth/reset-password", ResetPasswordRequest{
		Email: "alice@example.com", ResetCode: env.notifier.sentCode, NewPassword: "anotherpassword",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
