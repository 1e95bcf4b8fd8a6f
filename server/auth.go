package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/MrJohz/homie/auth"
)

// loginRequest is the body accepted by POST /api/auth/login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse is the body returned by a successful login.
type loginResponse struct {
	Token string `json:"token"`
}

// handleLogin validates credentials and issues an opaque session token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.auth.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrUserPasswordMismatch) {
			s.logger.Warn("authentication failure", slog.String("username", req.Username))
			writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error("login", slog.Any("err", err))
		writeJSONError(w, http.StatusInternalServerError, "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

// handleMe returns the currently authenticated user.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	subject := r.Context().Value(ctxKeySubject)
	writeJSON(w, http.StatusOK, map[string]string{"username": fmt.Sprint(subject)})
}

// authMiddleware enforces session-token authentication on wrapped handlers.
// The token travels in the "token" header, the contract the frontend uses.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("token")
		if token == "" {
			writeJSONError(w, http.StatusUnauthorized, auth.ErrMissingToken.Error())
			return
		}
		username, err := s.auth.ValidateToken(token)
		if err != nil {
			if errors.Is(err, auth.ErrUnknownToken) {
				writeJSONError(w, http.StatusUnauthorized, auth.ErrUnknownToken.Error())
				return
			}
			s.logger.Error("validate token", slog.Any("err", err))
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}
		ctx := contextWithSubject(r.Context(), username)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
