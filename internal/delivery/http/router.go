package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"meetingscheduler/internal/delivery/http/controllers"
	"meetingscheduler/internal/delivery/http/middleware"
	"meetingscheduler/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
// Everything except login and swagger requires a Bearer token.
func NewRouter(
	meetingController *controllers.MeetingController,
	authController *controllers.AuthController,
	directoryController *controllers.DirectoryController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Auth
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("POST /auth/change-password", auth(authController.ChangePassword))

	// Meetings
	mux.HandleFunc("POST /meetings", auth(meetingController.Schedule))
	mux.HandleFunc("GET /meetings/created", auth(meetingController.ListCreated))
	mux.HandleFunc("GET /meetings/schedule", auth(meetingController.ListSchedule))
	mux.HandleFunc("GET /meetings/{meetingID}", auth(meetingController.GetMeeting))
	mux.HandleFunc("PUT /meetings/{meetingID}", auth(meetingController.Reschedule))
	mux.HandleFunc("DELETE /meetings/{meetingID}", auth(meetingController.Cancel))
	mux.HandleFunc("GET /meetings/{meetingID}/members", auth(meetingController.ListMembers))

	// Directory
	mux.HandleFunc("GET /users", auth(directoryController.ListUsers))
	mux.HandleFunc("GET /departments", auth(directoryController.ListDepartments))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
