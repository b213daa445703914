// routes/routes.go
package routes

import (
	"net/http"

	"go-medicamp/controllers"
	"go-medicamp/middleware"
	"go-medicamp/models"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Controllers groups the handlers the route table needs
type Controllers struct {
	Health  *controllers.HealthController
	Auth    *controllers.AuthController
	User    *controllers.UserController
	Camp    *controllers.CampController
	Order   *controllers.OrderController
	Admin   *controllers.AdminController
	Payment *controllers.PaymentController
}

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(router *mux.Router, guard *middleware.Guard, c Controllers) {
	observe := chain(middleware.RequestID, middleware.AccessLog)
	router.Use(observe)
	// mux skips middleware when no route matches
	router.NotFoundHandler = observe(http.HandlerFunc(http.NotFound))
	router.MethodNotAllowedHandler = observe(http.HandlerFunc(methodNotAllowed))

	token := guard.Authenticate
	admin := chain(token, guard.RequireRole(models.RoleAdmin))
	seller := chain(token, guard.RequireRole(models.RoleSeller))
	sellerOrAdmin := chain(token, guard.RequireRole(models.RoleSeller, models.RoleAdmin))

	// Public routes
	router.HandleFunc("/", c.Health.Banner).Methods("GET")
	router.HandleFunc("/healthz", c.Health.Health).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	router.HandleFunc("/jwt", c.Auth.IssueToken).Methods("POST")
	router.HandleFunc("/logout", c.Auth.Logout).Methods("GET")

	// User routes
	router.HandleFunc("/users/{email}", c.User.CreateUser).Methods("POST")
	router.Handle("/users/{email}", token(http.HandlerFunc(c.User.RequestStatus))).Methods("PATCH")
	router.HandleFunc("/users/role/{email}", c.User.GetRole).Methods("GET")
	router.Handle("/all-users/{email}", admin(http.HandlerFunc(c.User.ListUsers))).Methods("GET")
	router.Handle("/user/role/{email}", admin(http.HandlerFunc(c.User.UpdateRole))).Methods("PATCH")

	// Camp routes; /camps/seller must precede /camps/{id}
	router.Handle("/camps", seller(http.HandlerFunc(c.Camp.CreateCamp))).Methods("POST")
	router.HandleFunc("/camps", c.Camp.GetCamps).Methods("GET")
	router.Handle("/camps/seller", seller(http.HandlerFunc(c.Camp.GetSellerCamps))).Methods("GET")
	router.Handle("/camps/participant/{id}", token(http.HandlerFunc(c.Camp.UpdateParticipants))).Methods("PATCH")
	router.HandleFunc("/camps/{id}", c.Camp.GetCamp).Methods("GET")
	router.HandleFunc("/camps/{id}", c.Camp.ReplaceCamp).Methods("PUT")
	router.Handle("/camps/{id}", sellerOrAdmin(http.HandlerFunc(c.Camp.DeleteCamp))).Methods("DELETE")

	// Order routes
	router.Handle("/order", token(http.HandlerFunc(c.Order.CreateOrder))).Methods("POST")
	router.Handle("/customer-orders/{email}", token(http.HandlerFunc(c.Order.CustomerOrders))).Methods("GET")
	router.Handle("/seller-orders/{email}", seller(http.HandlerFunc(c.Order.SellerOrders))).Methods("GET")
	router.Handle("/orders/{id}", seller(http.HandlerFunc(c.Order.UpdateOrderStatus))).Methods("PATCH")
	router.Handle("/orders/{id}", token(http.HandlerFunc(c.Order.CancelOrder))).Methods("DELETE")

	// Admin and payment
	router.Handle("/admin-stat", admin(http.HandlerFunc(c.Admin.Stats))).Methods("GET")
	router.Handle("/create-payment-intent", token(http.HandlerFunc(c.Payment.CreatePaymentIntent))).Methods("POST")
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

// chain applies middlewares so the first one runs outermost
func chain(mws ...mux.MiddlewareFunc) mux.MiddlewareFunc {
	return func(h http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			h = mws[i](h)
		}
		return h
	}
}
