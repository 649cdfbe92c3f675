package http

import (
	"errors"
	"net/http"
	"strings"

	"billtracker/internal/auth"
	"billtracker/internal/log"
)

type loginRequest struct {
	Password string `json:"password"`
}

type authResponse struct {
	Authenticated bool   `json:"authenticated"`
	Message       string `json:"message,omitempty"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		ErrorFor(r, err, "Login failed").Write(w)
		return
	}
	if strings.TrimSpace(req.Password) == "" {
		BadRequestError("Password is required").Write(w)
		return
	}

	logger := log.FromContext(r.Context()).WithComponent(log.ComponentAuth)
	if err := s.sessions.Login(w, req.Password); err != nil {
		if errors.Is(err, auth.ErrInvalidPassword) {
			logger.WarnContext(r.Context(), "Admin login rejected",
				log.FieldOperation, log.OpLogin,
				log.FieldClientIP, s.detector.ExtractClientIP(r))
			ErrorResponse(http.StatusUnauthorized, "Invalid password").Write(w)
			return
		}
		ErrorFor(r, err, "Login failed").Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Admin logged in", log.FieldOperation, log.OpLogin)
	NewJSONResponse().Body(authResponse{Authenticated: true, Message: "Login successful"}).Write(w)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Logout(w)
	MessageResponse("Logged out successfully").Write(w)
}

func (s *Server) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	if s.sessions == nil || !s.sessions.IsAuthenticated(r) {
		NewJSONResponse().Status(http.StatusUnauthorized).Body(authResponse{Authenticated: false}).Write(w)
		return
	}
	NewJSONResponse().Body(authResponse{Authenticated: true}).Write(w)
}
