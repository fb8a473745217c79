package controllers

import (
	"net/http"

	"github.com/discope/discope-backend/api/middleware"
	"github.com/discope/discope-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

// PrivatePing echoes the authenticated user and groups.
func PrivatePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]any{"scope": "private", "status": "ok"}
		if user := middleware.UserIDFromContext(r.Context()); user != "" {
			payload["user_id"] = user
		}
		if groups := middleware.GroupsFromContext(r.Context()); len(groups) > 0 {
			payload["groups"] = groups
		}
		responses.WriteSuccess(w, payload)
	}
}
