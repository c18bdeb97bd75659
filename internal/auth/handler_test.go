package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	token string
	user  *UserInfo
	err   error
}

func (s *stubAuthenticator) Login(ctx context.Context, email, password string) (string, *UserInfo, error) {
	if s.err != nil {
		return "", nil, s.err
	}
	return s.token, s.user, nil
}

func newAuthRouter(t *testing.T, authenticator Authenticator) (chi.Router, *SessionManager) {
	t.Helper()
	sm := newTestSessionManager(t)
	handler := NewHandler(slog.New(slog.DiscardHandler), authenticator, sm)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			sess, err := sm.Load(req.Context(), req)
			require.NoError(t, err)
			ctx := ContextWithSession(req.Context(), sess)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Route("/auth", handler.MountRoutes)
	return r, sm
}

func TestLoginSuccessStoresToken(t *testing.T) {
	authenticator := &stubAuthenticator{
		token: "tok-123",
		user:  &UserInfo{ID: 7, Name: "Sharma", Email: "owner@sharma.in"},
	}
	router, _ := newAuthRouter(t, authenticator)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"owner@sharma.in","password":"secret"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Sharma")
}

func TestLoginRejectionReturns401WithoutReset(t *testing.T) {
	authenticator := &stubAuthenticator{err: errors.New("invalid credentials")}
	router, _ := newAuthRouter(t, authenticator)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"owner@sharma.in","password":"wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLoginValidatesBody(t *testing.T) {
	router, _ := newAuthRouter(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"not-an-email"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMeRequiresAuthentication(t *testing.T) {
	router, _ := newAuthRouter(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutAlwaysSucceeds(t *testing.T) {
	router, _ := newAuthRouter(t, &stubAuthenticator{})

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
}
