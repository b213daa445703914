package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"go-medicamp/middleware"
	"go-medicamp/models"
	"go-medicamp/utils"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) UpsertUser(ctx context.Context, u models.User) (*models.User, bool, error) {
	args := m.Called(ctx, u)
	user, _ := args.Get(0).(*models.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *mockUserStore) FindUser(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func (m *mockUserStore) RequestStatus(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockUserStore) ListUsersExcept(ctx context.Context, email string) ([]models.User, error) {
	args := m.Called(ctx, email)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *mockUserStore) SetRole(ctx context.Context, email, role string) error {
	return m.Called(ctx, email, role).Error(0)
}

type mockCampStore struct{ mock.Mock }

func (m *mockCampStore) CreateCamp(ctx context.Context, c models.Camp) (primitive.ObjectID, error) {
	args := m.Called(ctx, c)
	return args.Get(0).(primitive.ObjectID), args.Error(1)
}

func (m *mockCampStore) ListCamps(ctx context.Context) ([]models.Camp, error) {
	args := m.Called(ctx)
	camps, _ := args.Get(0).([]models.Camp)
	return camps, args.Error(1)
}

func (m *mockCampStore) FindCamp(ctx context.Context, id string) (*models.Camp, error) {
	args := m.Called(ctx, id)
	camp, _ := args.Get(0).(*models.Camp)
	return camp, args.Error(1)
}

func (m *mockCampStore) ReplaceCamp(ctx context.Context, id string, c models.Camp) error {
	return m.Called(ctx, id, c).Error(0)
}

func (m *mockCampStore) ListSellerCamps(ctx context.Context, sellerEmail string) ([]models.Camp, error) {
	args := m.Called(ctx, sellerEmail)
	camps, _ := args.Get(0).([]models.Camp)
	return camps, args.Error(1)
}

func (m *mockCampStore) DeleteCamp(ctx context.Context, id, ownerEmail string) error {
	return m.Called(ctx, id, ownerEmail).Error(0)
}

func (m *mockCampStore) AdjustParticipants(ctx context.Context, id string, delta int) error {
	return m.Called(ctx, id, delta).Error(0)
}

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) CreateOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	args := m.Called(ctx, o)
	order, _ := args.Get(0).(*models.Order)
	return order, args.Error(1)
}

func (m *mockOrderStore) CustomerOrders(ctx context.Context, email string) ([]models.OrderView, error) {
	args := m.Called(ctx, email)
	views, _ := args.Get(0).([]models.OrderView)
	return views, args.Error(1)
}

func (m *mockOrderStore) SellerOrders(ctx context.Context, email string) ([]models.OrderView, error) {
	args := m.Called(ctx, email)
	views, _ := args.Get(0).([]models.OrderView)
	return views, args.Error(1)
}

func (m *mockOrderStore) UpdateOrderStatus(ctx context.Context, id, sellerEmail, status string) error {
	return m.Called(ctx, id, sellerEmail, status).Error(0)
}

func (m *mockOrderStore) CancelOrder(ctx context.Context, id, customerEmail string) error {
	return m.Called(ctx, id, customerEmail).Error(0)
}

// recordingNotifier keeps every email handed to Notify
type recordingNotifier struct {
	mu     sync.Mutex
	emails []utils.Email
}

func (n *recordingNotifier) Notify(_ context.Context, e utils.Email) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.emails = append(n.emails, e)
}

func (n *recordingNotifier) Recipients() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	to := make([]string, 0, len(n.emails))
	for _, e := range n.emails {
		to = append(to, e.To)
	}
	return to
}

// newRequest builds a request carrying route vars and, when caller is set,
// the claims the auth guard would have attached
func newRequest(method, target, body string, vars map[string]string, caller string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	if caller != "" {
		ctx := context.WithValue(req.Context(), middleware.UserContextKey, &utils.Claims{Email: caller})
		req = req.WithContext(ctx)
	}
	return req
}

func withAccount(req *http.Request, user *models.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.AccountContextKey, user))
}
