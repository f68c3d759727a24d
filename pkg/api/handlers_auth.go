package api

import (
	"net/http"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.jwtManager == nil || s.userStore == nil {
		s.respondError(w, http.StatusNotImplemented, "authentication not configured")
		return
	}

	var req LoginRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	user, err := s.userStore.GetUserByUsername(req.Username)
	if err != nil || !s.userStore.VerifyPassword(user, req.Password) {
		// Same answer for unknown user and bad password.
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         user.Role,
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.jwtManager == nil || s.userStore == nil {
		s.respondError(w, http.StatusNotImplemented, "authentication not configured")
		return
	}

	var req RefreshRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	userID, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	user, err := s.userStore.GetUserByID(userID)
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "invalid or expired refresh token")
		return
	}

	access, err := s.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	refresh, err := s.jwtManager.GenerateRefreshToken(user.ID)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}

	s.respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		Role:         user.Role,
	})
}
