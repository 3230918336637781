// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package api

import (
	"net/http"

	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/auth"
	"github.com/accountd/accountd/internal/cache"
)

// Login exchanges an email and password for a new access token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, cred, err := h.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token.String(),
		TokenType:   "Bearer",
		UserID:      cred.ID.String(),
		ExpiresIn:   int64(h.sessions.TokenLifetime().Seconds()),
	})
}

// Logout revokes the bearer token presented with the request.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	token, ok := auth.ParseBearer(r.Header.Get("Authorization"))
	if !ok {
		writeUnauthorized(w)
		return
	}

	if err := h.sessions.DeleteToken(r.Context(), token); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Session describes the session behind the bearer token.
func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	sess, ok := sessionFromContext(r.Context())
	if !ok {
		writeUnauthorized(w)
		return
	}

	ttl, err := h.sessions.TokenTTL(r.Context(), sess.token)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	switch ttl {
	case cache.TTLNotFound:
		// Expired between resolve and TTL lookup.
		writeUnauthorized(w)
		return
	case cache.TTLNoExpiry:
		// Every minted token carries a TTL.
		h.writeServiceError(w, r, oops.Code("SESSION_NO_EXPIRY").
			With("user_id", sess.userID.String()).
			Errorf("access token has no expiry"))
		return
	}

	writeJSON(w, http.StatusOK, SessionResponse{
		UserID:    sess.userID.String(),
		ExpiresIn: ttl,
	})
}
