package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"github.com/vainnor/freq-bridge/link"
	"github.com/vainnor/freq-bridge/tracker"
)

type userResponse struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Discriminator string `json:"discriminator"`
}

func toUserResponse(u *discordgo.User) userResponse {
	return userResponse{
		ID:            u.ID,
		Username:      u.Username,
		Discriminator: u.Discriminator,
	}
}

// DiscordLogin exchanges an OAuth authorization code and returns the
// confirmation code the user has to enter in the simulator client.
func DiscordLogin(mgr *link.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		user, confirmCode, err := mgr.Login(r.Context(), req.Code)
		if err != nil {
			if errors.Is(err, link.ErrUpstreamAuth) {
				http.Error(w, "Discord authorization failed", http.StatusBadGateway)
				return
			}
			log.Printf("Error handling login: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			User        userResponse `json:"user"`
			ConfirmCode string       `json:"confirmCode"`
		}{toUserResponse(user), confirmCode})
	}
}

// DiscordConfirm binds a confirmation code to a simulator client id.
func DiscordConfirm(mgr *link.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientID string `json:"clientId"`
			Code     string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ClientID == "" || req.Code == "" {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		user, err := mgr.Confirm(req.ClientID, req.Code)
		if err != nil {
			if errors.Is(err, link.ErrInvalidOrExpiredCode) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]string{"error": "Invalid or expired code"})
				return
			}
			log.Printf("Error handling confirmation for client %s: %v", req.ClientID, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			User userResponse `json:"user"`
		}{toUserResponse(user)})
	}
}

// GetTrackerStats reports liveness tracker counters.
func GetTrackerStats(t *tracker.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(t.Stats())
	}
}
