package auth

import (
	"encoding/json"
	"errors"
	"net/http"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AuthToken string `json:"auth_token"`
}

type createUserRequest struct {
	MasterPassword string `json:"master_password"`
	Username       string `json:"username"`
	Password       string `json:"password"`
}

type deleteUserRequest struct {
	MasterPassword string `json:"master_password"`
	Username       string `json:"username"`
}

type changePasswordRequest struct {
	Username        string `json:"username"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondAuthErr(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrUnauthenticated) {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func (s *Server) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	token, err := s.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		respondAuthErr(w, err)
		return
	}
	respond(w, http.StatusOK, tokenResponse{AuthToken: token})
}

func (s *Server) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	token, err := s.Create(r.Context(), req.MasterPassword, req.Username, req.Password)
	if err != nil {
		respondAuthErr(w, err)
		return
	}
	respond(w, http.StatusCreated, tokenResponse{AuthToken: token})
}

func (s *Server) HandleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := s.Delete(r.Context(), req.MasterPassword, req.Username); err != nil {
		respondAuthErr(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (s *Server) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	token, err := s.ChangePassword(r.Context(), req.Username, req.CurrentPassword, req.NewPassword)
	if err != nil {
		respondAuthErr(w, err)
		return
	}
	respond(w, http.StatusOK, tokenResponse{AuthToken: token})
}
