package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-medicamp/models"
	"go-medicamp/store"
	"go-medicamp/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUserFinder struct {
	mock.Mock
}

func (m *mockUserFinder) FindUser(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newRequest(t *testing.T, tokens *utils.TokenManager, email string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if email != "" {
		token, err := tokens.GenerateJWT(email)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	}
	return req
}

func okHandler(t *testing.T, check func(r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	guard := NewGuard(tokens, &mockUserFinder{})

	t.Run("missing cookie", func(t *testing.T) {
		rr := httptest.NewRecorder()
		guard.Authenticate(okHandler(t, nil)).ServeHTTP(rr, newRequest(t, tokens, ""))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"message":"unauthorized access"}`, rr.Body.String())
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := newRequest(t, utils.NewTokenManager("other", time.Hour), "ann@example.com")
		guard.Authenticate(okHandler(t, nil)).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		rr := httptest.NewRecorder()
		var seen string
		handler := okHandler(t, func(r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			require.True(t, ok)
			seen = claims.Email
		})
		guard.Authenticate(handler).ServeHTTP(rr, newRequest(t, tokens, "ann@example.com"))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ann@example.com", seen)
	})
}

func TestRequireRole(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)

	tests := []struct {
		name       string
		user       *models.User
		err        error
		wantStatus int
		wantBody   string
	}{
		{"admin allowed", &models.User{Email: "root@example.com", Role: models.RoleAdmin}, nil, http.StatusOK, ""},
		{"customer rejected", &models.User{Email: "root@example.com", Role: models.RoleCustomer}, nil, http.StatusForbidden, `{"message":"forbidden access: admin only"}`},
		{"missing user rejected", nil, store.ErrNotFound, http.StatusForbidden, `{"message":"forbidden access: admin only"}`},
		{"lookup failure", nil, errors.New("connection reset"), http.StatusInternalServerError, `{"message":"internal server error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &mockUserFinder{}
			users.On("FindUser", mock.Anything, "root@example.com").Return(tt.user, tt.err)
			guard := NewGuard(tokens, users)

			var account *models.User
			handler := okHandler(t, func(r *http.Request) {
				account, _ = AccountFromContext(r.Context())
			})
			rr := httptest.NewRecorder()
			guard.Authenticate(guard.RequireRole(models.RoleAdmin)(handler)).
				ServeHTTP(rr, newRequest(t, tokens, "root@example.com"))

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rr.Body.String())
			} else {
				assert.Equal(t, tt.user, account)
			}
			users.AssertExpectations(t)
		})
	}
}

func TestRequireRole_MultipleRoles(t *testing.T) {
	tokens := utils.NewTokenManager("secret", time.Hour)
	users := &mockUserFinder{}
	users.On("FindUser", mock.Anything, "bob@example.com").
		Return(&models.User{Email: "bob@example.com", Role: models.RoleSeller}, nil)
	guard := NewGuard(tokens, users)

	rr := httptest.NewRecorder()
	h := guard.Authenticate(guard.RequireRole(models.RoleSeller, models.RoleAdmin)(okHandler(t, nil)))
	h.ServeHTTP(rr, newRequest(t, tokens, "bob@example.com"))

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
		seen = r.Header.Get("X-Request-ID")
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	h.ServeHTTP(rr, req)
	assert.Equal(t, "abc-123", rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "abc-123", seen)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestAccessLog_RecordsStatus(t *testing.T) {
	h := AccessLog(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/pot", nil))
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Equal(t, "short and stout", rr.Body.String())
}
