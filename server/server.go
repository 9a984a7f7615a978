package server

import (
	"context"
	"io"
	"net/http"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/sosika-app/sosika-backend/handlers"
	"github.com/sosika-app/sosika-backend/middlewares"
	"github.com/sosika-app/sosika-backend/models"
	"github.com/sosika-app/sosika-backend/notifications"
	"github.com/sosika-app/sosika-backend/realtime"
)

type Server struct {
	Router *mux.Router
	server *http.Server
}

const (
	readTimeout       = 5 * time.Minute
	readHeaderTimeout = 30 * time.Second
	writeTimeout      = 5 * time.Minute
)

func SetupRoutes(rt *realtime.Hub, notifier *notifications.Notifier, store *notifications.TokenStore) *Server {
	router := mux.NewRouter()
	authRoutes := router.PathPrefix("/api").Subrouter()
	authRoutes.Use(middlewares.AuthMiddleware)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, `{"alive": true}`)
	}).Methods("GET")

	// Websocket upgrade hijacks the connection, so the server timeouts above
	// do not apply to established sockets.
	router.HandleFunc("/ws", rt.ServeWS).Methods("GET")

	router.HandleFunc("/register", handlers.Register).Methods("POST")
	router.HandleFunc("/login", handlers.Login).Methods("POST")
	router.HandleFunc("/refresh", handlers.RefreshToken).Methods("POST")
	router.HandleFunc("/vendor/register", handlers.RegisterVendor).Methods("POST")
	router.HandleFunc("/vendor/login", handlers.LoginVendor).Methods("POST")
	router.HandleFunc("/delivery/register", handlers.RegisterDeliveryPerson).Methods("POST")
	router.HandleFunc("/delivery/login", handlers.LoginDeliveryPerson).Methods("POST")
	authRoutes.HandleFunc("/logout", handlers.Logout).Methods("POST")

	// orders
	authRoutes.HandleFunc("/orders", handlers.PlaceOrder(notifier)).Methods("POST")
	authRoutes.HandleFunc("/orders", handlers.ListOrders).Methods("GET")
	authRoutes.HandleFunc("/orders/unassigned", handlers.ListUnassignedOrders).Methods("GET")
	authRoutes.HandleFunc("/orders/{id}", handlers.GetOrder).Methods("GET")
	authRoutes.HandleFunc("/orders/vendor/{vendorId}", handlers.ListVendorOrders).Methods("GET")
	authRoutes.HandleFunc("/orders/{id}/status", handlers.UpdateOrderStatus(rt, notifier)).Methods("PATCH")
	authRoutes.HandleFunc("/orders/{id}/ratings", handlers.RateOrder).Methods("PATCH")
	authRoutes.HandleFunc("/orders/{orderId}/tracking", handlers.GetOrderTracking).Methods("GET")
	authRoutes.HandleFunc("/orders/{orderId}/accept", handlers.AcceptOrder(rt)).Methods("PUT")
	authRoutes.HandleFunc("/orders/{orderId}/confirm", handlers.ConfirmOrder).Methods("PUT")

	// order line items
	authRoutes.HandleFunc("/order-menu-items", handlers.CreateOrderItem).Methods("POST")
	authRoutes.HandleFunc("/orders/{orderId}/menu-items", handlers.ListOrderItems).Methods("GET")
	authRoutes.HandleFunc("/orders/{orderId}/menu-items/bulk", handlers.BulkCreateOrderItems).Methods("POST")
	authRoutes.HandleFunc("/order-menu-items/{id}", handlers.GetOrderItem).Methods("GET")
	authRoutes.HandleFunc("/order-menu-items/{id}", handlers.UpdateOrderItem).Methods("PATCH")
	authRoutes.HandleFunc("/order-menu-items/{id}", handlers.DeleteOrderItem).Methods("DELETE")

	// vendors
	authRoutes.HandleFunc("/vendors", handlers.ListVendors).Methods("GET")
	authRoutes.HandleFunc("/vendors/{id}", handlers.GetVendor).Methods("GET")
	authRoutes.HandleFunc("/vendors/{id}", handlers.UpdateVendor).Methods("PATCH")
	authRoutes.HandleFunc("/vendors/{vendorId}/menu-items", handlers.ListVendorMenuItems).Methods("GET")

	// menu items
	authRoutes.HandleFunc("/menu-items", handlers.ListMenuItems).Methods("GET")
	authRoutes.HandleFunc("/menu-items", handlers.CreateMenuItem).Methods("POST")
	authRoutes.HandleFunc("/menu-items/{id}", handlers.GetMenuItem).Methods("GET")
	authRoutes.HandleFunc("/menu-items/{id}/availability", handlers.UpdateMenuItemAvailability).Methods("PATCH")
	authRoutes.HandleFunc("/menu-items/{id}/price", handlers.UpdateMenuItemPrice).Methods("PATCH")
	authRoutes.HandleFunc("/menu-items/{id}", handlers.DeleteMenuItem).Methods("DELETE")

	// delivery persons
	authRoutes.HandleFunc("/delivery-persons", handlers.ListDeliveryPersons).Methods("GET")
	authRoutes.HandleFunc("/delivery-persons/{id}", handlers.GetDeliveryPerson).Methods("GET")
	authRoutes.HandleFunc("/delivery-persons/{id}", handlers.UpdateDeliveryPerson).Methods("PATCH")
	authRoutes.HandleFunc("/delivery-persons/{id}/active", handlers.ToggleActive).Methods("PATCH")
	authRoutes.HandleFunc("/delivery-persons/{id}/location", handlers.UpdateDeliveryLocation).Methods("PATCH")
	authRoutes.HandleFunc("/delivery-persons/{id}/orders", handlers.ListCourierOrders).Methods("GET")

	// users
	authRoutes.HandleFunc("/users/me", handlers.GetProfile).Methods("GET")
	authRoutes.HandleFunc("/users/me", handlers.UpdateProfile).Methods("PATCH")
	authRoutes.HandleFunc("/users/me/location", handlers.UpdateUserLocation).Methods("PATCH")

	// notifications
	authRoutes.HandleFunc("/notifications/tokens", handlers.SaveDeviceToken(store)).Methods("POST")
	authRoutes.HandleFunc("/notifications/tokens/{userId}", handlers.RemoveDeviceToken(store)).Methods("DELETE")
	authRoutes.HandleFunc("/notifications/subscriptions", handlers.SaveVendorPushSubscription(store)).Methods("POST")

	// colleges
	router.HandleFunc("/colleges", handlers.ListColleges).Methods("GET")

	// admin only
	admin := authRoutes.PathPrefix("/admin").Subrouter()
	admin.Use(middlewares.RoleBasedMiddleware(models.RoleAdmin))

	admin.HandleFunc("/colleges", handlers.CreateCollege).Methods("POST")

	return &Server{
		Router: router,
	}
}

func (svr *Server) Run(port string) error {
	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{"*"}),
		ghandlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		ghandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	svr.server = &http.Server{
		Addr:              port,
		Handler:           cors(svr.Router),
		ReadTimeout:       readTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}
	return svr.server.ListenAndServe()
}

func (svr *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return svr.server.Shutdown(ctx)
}
