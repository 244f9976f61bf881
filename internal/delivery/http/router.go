package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"eventboard/internal/delivery/http/controllers"
	"eventboard/internal/delivery/http/middleware"
	"eventboard/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	eventController *controllers.EventController,
	requestController *controllers.RequestController,
	adminController *controllers.AdminController,
	publicController *controllers.PublicController,
) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier)
	admin := middleware.RequireAdmin(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)

	// Initiator events
	mux.HandleFunc("POST /users/{userID}/events", auth(eventController.CreateEvent))
	mux.HandleFunc("GET /users/{userID}/events", auth(eventController.ListEvents))
	mux.HandleFunc("GET /users/{userID}/events/{eventID}", auth(eventController.GetEvent))
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}", auth(eventController.UpdateEvent))

	// Participation requests
	mux.HandleFunc("POST /users/{userID}/requests", auth(requestController.CreateRequest))
	mux.HandleFunc("GET /users/{userID}/requests", auth(requestController.ListOwnRequests))
	mux.HandleFunc("PATCH /users/{userID}/requests/{requestID}/cancel", auth(requestController.CancelRequest))
	mux.HandleFunc("GET /users/{userID}/events/{eventID}/requests", auth(requestController.ListEventRequests))
	mux.HandleFunc("PATCH /users/{userID}/events/{eventID}/requests", auth(requestController.UpdateRequestStatus))

	// Admin
	mux.HandleFunc("GET /admin/events", admin(adminController.SearchEvents))
	mux.HandleFunc("PATCH /admin/events/{eventID}", admin(adminController.UpdateEvent))
	mux.HandleFunc("POST /admin/categories", admin(adminController.CreateCategory))
	mux.HandleFunc("PATCH /admin/categories/{catID}", admin(adminController.UpdateCategory))
	mux.HandleFunc("DELETE /admin/categories/{catID}", admin(adminController.DeleteCategory))

	// Public
	mux.HandleFunc("GET /events", publicController.SearchEvents)
	mux.HandleFunc("GET /events/{eventID}", publicController.GetEvent)
	mux.HandleFunc("GET /categories", publicController.ListCategories)
	mux.HandleFunc("GET /categories/{catID}", publicController.GetCategory)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
