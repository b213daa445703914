package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-medicamp/controllers"
	"go-medicamp/middleware"
	"go-medicamp/models"
	"go-medicamp/store"
	"go-medicamp/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeStore answers every persistence call from a fixed set of users
type fakeStore struct {
	users map[string]*models.User
}

func (f *fakeStore) FindUser(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, store.ErrNotFound
}
func (f *fakeStore) UpsertUser(_ context.Context, u models.User) (*models.User, bool, error) {
	return &u, true, nil
}
func (f *fakeStore) RequestStatus(context.Context, string) error { return nil }
func (f *fakeStore) ListUsersExcept(context.Context, string) ([]models.User, error) {
	return []models.User{}, nil
}
func (f *fakeStore) SetRole(context.Context, string, string) error { return nil }

func (f *fakeStore) CreateCamp(context.Context, models.Camp) (primitive.ObjectID, error) {
	return primitive.NewObjectID(), nil
}
func (f *fakeStore) ListCamps(context.Context) ([]models.Camp, error) { return []models.Camp{}, nil }
func (f *fakeStore) FindCamp(_ context.Context, id string) (*models.Camp, error) {
	if _, err := store.ParseID(id); err != nil {
		return nil, err
	}
	return &models.Camp{Name: "Eye Care"}, nil
}
func (f *fakeStore) ReplaceCamp(context.Context, string, models.Camp) error { return nil }
func (f *fakeStore) ListSellerCamps(_ context.Context, email string) ([]models.Camp, error) {
	return []models.Camp{{Name: "owned by " + email}}, nil
}
func (f *fakeStore) DeleteCamp(context.Context, string, string) error         { return nil }
func (f *fakeStore) AdjustParticipants(context.Context, string, int) error    { return nil }
func (f *fakeStore) CreateOrder(_ context.Context, o models.Order) (*models.Order, error) {
	o.ID = primitive.NewObjectID()
	return &o, nil
}
func (f *fakeStore) CustomerOrders(context.Context, string) ([]models.OrderView, error) {
	return []models.OrderView{}, nil
}
func (f *fakeStore) SellerOrders(context.Context, string) ([]models.OrderView, error) {
	return []models.OrderView{}, nil
}
func (f *fakeStore) UpdateOrderStatus(context.Context, string, string, string) error { return nil }
func (f *fakeStore) CancelOrder(context.Context, string, string) error              { return nil }
func (f *fakeStore) AdminStats(context.Context) (*models.AdminStats, error) {
	return &models.AdminStats{ChartData: []models.DailyStats{}}, nil
}
func (f *fakeStore) Ping(context.Context) error { return nil }

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, utils.Email) {}

type stubIntents struct{}

func (stubIntents) CreateIntent(context.Context, float64, string) (string, error) {
	return "pi_secret", nil
}

func newRouter(t *testing.T) (*mux.Router, *utils.TokenManager) {
	t.Helper()
	db := &fakeStore{users: map[string]*models.User{
		"ann@example.com":  {Email: "ann@example.com", Role: models.RoleCustomer},
		"bob@example.com":  {Email: "bob@example.com", Role: models.RoleSeller},
		"root@example.com": {Email: "root@example.com", Role: models.RoleAdmin},
	}}
	tokens := utils.NewTokenManager("secret", time.Hour)

	router := mux.NewRouter()
	RegisterRoutes(router, middleware.NewGuard(tokens, db), Controllers{
		Health:  controllers.NewHealthController(db),
		Auth:    controllers.NewAuthController(tokens, false),
		User:    controllers.NewUserController(db, discardNotifier{}),
		Camp:    controllers.NewCampController(db),
		Order:   controllers.NewOrderController(db, discardNotifier{}),
		Admin:   controllers.NewAdminController(db),
		Payment: controllers.NewPaymentController(stubIntents{}),
	})
	return router, tokens
}

func do(t *testing.T, router http.Handler, tokens *utils.TokenManager, method, path, body, caller string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if caller != "" {
		token, err := tokens.GenerateJWT(caller)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: middleware.CookieName, Value: token})
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestRoutes_Guards(t *testing.T) {
	router, tokens := newRouter(t)
	campID := primitive.NewObjectID().Hex()

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		caller     string
		wantStatus int
	}{
		{"banner", "GET", "/", "", "", http.StatusOK},
		{"health", "GET", "/healthz", "", "", http.StatusOK},
		{"metrics", "GET", "/metrics", "", "", http.StatusOK},
		{"public camp list", "GET", "/camps", "", "", http.StatusOK},
		{"public camp detail", "GET", "/camps/" + campID, "", "", http.StatusOK},
		{"role lookup is public", "GET", "/users/role/ann@example.com", "", "", http.StatusOK},
		{"status request needs a token", "PATCH", "/users/ann@example.com", "", "", http.StatusUnauthorized},
		{"status request with token", "PATCH", "/users/ann@example.com", "", "ann@example.com", http.StatusOK},
		{"customer cannot list users", "GET", "/all-users/ann@example.com", "", "ann@example.com", http.StatusForbidden},
		{"admin lists users", "GET", "/all-users/root@example.com", "", "root@example.com", http.StatusOK},
		{"unknown caller is forbidden", "GET", "/admin-stat", "", "ghost@example.com", http.StatusForbidden},
		{"admin stats", "GET", "/admin-stat", "", "root@example.com", http.StatusOK},
		{"customer cannot add camps", "POST", "/camps", `{"name":"x"}`, "ann@example.com", http.StatusForbidden},
		{"seller adds camps", "POST", "/camps", `{"name":"x"}`, "bob@example.com", http.StatusCreated},
		{"customer cannot delete camps", "DELETE", "/camps/" + campID, "", "ann@example.com", http.StatusForbidden},
		{"admin deletes camps", "DELETE", "/camps/" + campID, "", "root@example.com", http.StatusOK},
		{"participant update needs a token", "PATCH", "/camps/participant/" + campID, `{}`, "", http.StatusUnauthorized},
		{"seller updates order status", "PATCH", "/orders/" + campID, `{"status":"Delivered"}`, "bob@example.com", http.StatusOK},
		{"customer cannot update order status", "PATCH", "/orders/" + campID, `{"status":"Delivered"}`, "ann@example.com", http.StatusForbidden},
		{"customer cancels order", "DELETE", "/orders/" + campID, "", "ann@example.com", http.StatusOK},
		{"payment intent needs a token", "POST", "/create-payment-intent", `{"quantity":1,"campId":"x"}`, "", http.StatusUnauthorized},
		{"payment intent", "POST", "/create-payment-intent", `{"quantity":1,"campId":"x"}`, "ann@example.com", http.StatusOK},
		{"logout", "GET", "/logout", "", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, tokens, tt.method, tt.path, tt.body, tt.caller)
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
		})
	}
}

func TestRoutes_SellerCampsNotShadowed(t *testing.T) {
	router, tokens := newRouter(t)

	rr := do(t, router, tokens, "GET", "/camps/seller", "", "bob@example.com")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "owned by bob@example.com")

	rr = do(t, router, tokens, "GET", "/camps/seller", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestRoutes_TokenThenGuardedCall(t *testing.T) {
	router, tokens := newRouter(t)

	rr := do(t, router, tokens, "POST", "/jwt", `{"email":"root@example.com"}`, "")
	require.Equal(t, http.StatusOK, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)

	req := httptest.NewRequest("GET", "/admin-stat", nil)
	req.AddCookie(cookies[0])
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
}

func TestRoutes_UnmatchedRequestsAreObserved(t *testing.T) {
	router, tokens := newRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"unknown path", "GET", "/no-such-route", http.StatusNotFound},
		{"wrong method", "DELETE", "/jwt", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, router, tokens, tt.method, tt.path, "", "")
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
		})
	}
}
