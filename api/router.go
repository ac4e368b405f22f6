package api

import (
	"github.com/gorilla/mux"

	"github.com/vainnor/freq-bridge/link"
	"github.com/vainnor/freq-bridge/tracker"
)

// NewRouter creates and configures a new router with all API endpoints
func NewRouter(mgr *link.Manager, t *tracker.Tracker) *mux.Router {
	r := mux.NewRouter()

	// Apply rate limiting middleware to all routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(RateLimit)

	// Discord account linking endpoints
	api.HandleFunc("/discord/login", DiscordLogin(mgr)).Methods("POST")
	api.HandleFunc("/discord/confirm", DiscordConfirm(mgr)).Methods("POST")

	// Liveness tracker endpoint
	api.HandleFunc("/tracker/stats", GetTrackerStats(t)).Methods("GET")

	return r
}
