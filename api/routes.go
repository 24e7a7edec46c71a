package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/garnizeh/studybuddy/internal/auth"
	"github.com/garnizeh/studybuddy/internal/blob"
	"github.com/garnizeh/studybuddy/internal/chats"
	"github.com/garnizeh/studybuddy/internal/matches"
	"github.com/garnizeh/studybuddy/internal/messages"
	"github.com/garnizeh/studybuddy/internal/profiles"
	"github.com/garnizeh/studybuddy/internal/session"
)

// Services are the components the routes dispatch to.
type Services struct {
	Auth     *auth.Service
	Sessions *session.Issuer
	Profiles *profiles.Service
	Matches  *matches.Finder
	Chats    *chats.Registry
	Messages *messages.Log
	// Images is set when uploads are kept on local disk and served by this process.
	Images *blob.Local

	// Streams bounds the lifetime of websocket streams. A nil value gives streams that only end
	// with their connection.
	Streams *Streams

	PollInterval time.Duration
	CORSOrigins  []string
}

func SetupRoutes(s Services, version, buildTime string) http.Handler {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(LoggingMiddleware)
	r.Use(RecoveryMiddleware)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(s.Auth)
	profileHandler := NewProfileHandler(s.Profiles)
	matchesHandler := NewMatchesHandler(s.Matches)
	chatsHandler := NewChatsHandler(s.Chats, s.Profiles)
	messagesHandler := NewMessagesHandler(s.Chats, s.Messages, s.Profiles, s.Streams, s.PollInterval)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")
	if s.Images != nil {
		r.HandleFunc("/images/{key}", NewImagesHandler(s.Images).Get).Methods("GET")
	}

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddleware(s.Sessions))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Profiles
	apiV1.HandleFunc("/profile", profileHandler.GetMine).Methods("GET")
	apiV1.HandleFunc("/profile", profileHandler.Save).Methods("PUT")
	apiV1.HandleFunc("/profiles/{userID}", profileHandler.GetByID).Methods("GET")

	// Matches
	apiV1.HandleFunc("/matches", matchesHandler.List).Methods("GET")

	// Chats and messages
	apiV1.HandleFunc("/chats", chatsHandler.List).Methods("GET")
	apiV1.HandleFunc("/chats", chatsHandler.Start).Methods("POST")
	apiV1.HandleFunc("/chats/{chatID:[0-9]+}", chatsHandler.Get).Methods("GET")
	apiV1.HandleFunc("/chats/{chatID:[0-9]+}/counterpart", chatsHandler.Counterpart).Methods("GET")
	apiV1.HandleFunc("/chats/{chatID:[0-9]+}/messages", messagesHandler.History).Methods("GET")
	apiV1.HandleFunc("/chats/{chatID:[0-9]+}/messages", messagesHandler.Send).Methods("POST")
	apiV1.HandleFunc("/chats/{chatID:[0-9]+}/stream", messagesHandler.Stream).Methods("GET")

	return CORSMiddleware(s.CORSOrigins)(r)
}
