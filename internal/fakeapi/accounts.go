package fakeapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"storefront/internal/domain"
)

func (s *Server) userByEmail(email string) *account {
	for _, acc := range s.users {
		if strings.EqualFold(acc.Email, email) {
			return acc
		}
	}
	return nil
}

func (s *Server) authResponse(w http.ResponseWriter, status int, acc *account) {
	token, err := s.IssueToken(acc.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, status, data(map[string]any{
		"user":         acc.User,
		"access_token": token,
		"token_type":   "Bearer",
	}))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeBody(r, &req) {
		writeError(w, http.StatusUnprocessableEntity, "Invalid payload")
		return
	}
	s.mu.Lock()
	acc := s.userByEmail(req.Email)
	s.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	s.authResponse(w, http.StatusOK, acc)
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                 string `json:"name"`
		Surname              string `json:"surname"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
		Phone                string `json:"phone"`
	}
	if !decodeBody(r, &req) || req.Name == "" || req.Email == "" {
		writeError(w, http.StatusUnprocessableEntity, "The name and email fields are required.")
		return
	}
	if req.Password == "" || req.Password != req.PasswordConfirmation {
		writeError(w, http.StatusUnprocessableEntity, "The password field confirmation does not match.")
		return
	}
	s.mu.Lock()
	taken := s.userByEmail(req.Email) != nil
	s.mu.Unlock()
	if taken {
		writeError(w, http.StatusUnprocessableEntity, "The email has already been taken.")
		return
	}
	u, err := s.AddUser(domain.User{Name: req.Name, Surname: req.Surname, Email: req.Email, Phone: req.Phone}, req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.mu.Lock()
	acc := s.users[u.ID]
	s.mu.Unlock()
	s.authResponse(w, http.StatusCreated, acc)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, data(map[string]any{"user": currentUser(r).User}))
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if _, token, ok := s.userFromRequest(r); ok {
		s.mu.Lock()
		s.revoked[token] = true
		s.mu.Unlock()
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// ResetToken last password reset token handed out for email
func (s *Server) ResetToken(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resets[strings.ToLower(email)]
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeBody(r, &req) || req.Email == "" {
		writeError(w, http.StatusUnprocessableEntity, "The email field is required.")
		return
	}
	s.mu.Lock()
	if s.userByEmail(req.Email) != nil {
		s.resets[strings.ToLower(req.Email)] = uuid.NewString()
	}
	s.mu.Unlock()
	// same answer whether or not the account exists
	writeJSON(w, http.StatusOK, map[string]string{"message": "We have emailed your password reset link."})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token                string `json:"token"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if !decodeBody(r, &req) || req.Password == "" || req.Password != req.PasswordConfirmation {
		writeError(w, http.StatusUnprocessableEntity, "The password field confirmation does not match.")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(req.Email)
	acc := s.userByEmail(req.Email)
	if acc == nil || req.Token == "" || s.resets[key] != req.Token {
		writeError(w, http.StatusUnprocessableEntity, "This password reset token is invalid.")
		return
	}
	acc.hash = hash
	delete(s.resets, key)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your password has been reset."})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]domain.User, 0, len(s.users))
	for _, acc := range s.users {
		list = append(list, acc.User)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	writeJSON(w, http.StatusOK, data(map[string]any{"users": list}))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	var req struct {
		Role domain.Role `json:"role"`
	}
	if !decodeBody(r, &req) || !req.Role.Valid() {
		writeError(w, http.StatusUnprocessableEntity, "The selected role is invalid.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.users[id]
	if !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	acc.Role = req.Role
	writeJSON(w, http.StatusOK, data(acc.User))
}

func (s *Server) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := pathID(r, "id")
	if currentUser(r).ID == id {
		writeError(w, http.StatusUnprocessableEntity, "You cannot delete yourself.")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}
	delete(s.users, id)
	writeJSON(w, http.StatusOK, data(map[string]any{"id": id}))
}

func (s *Server) listCities(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.City{}, s.cities...)
	writeJSON(w, http.StatusOK, data(out))
}

func (s *Server) listAddresses(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Address, 0)
	for _, a := range s.addresses {
		if a.UserID == user.ID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, data(out))
}

// AddAddress stores a saved address for userID
func (s *Server) AddAddress(userID int64, in domain.AddressSnapshot) domain.Address {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := &domain.Address{
		ID:          s.id(),
		UserID:      userID,
		AddressLine: in.AddressLine,
		CityID:      in.CityID,
		Sector:      in.Sector,
		Reference:   in.Reference,
		CreatedAt:   s.now().UTC().Format(timeLayout),
	}
	s.addresses[a.ID] = a
	return *a
}

func (s *Server) ownAddress(w http.ResponseWriter, r *http.Request) (*domain.Address, bool) {
	a, ok := s.addresses[pathID(r, "id")]
	if !ok || a.UserID != currentUser(r).ID {
		writeError(w, http.StatusNotFound, "Address not found")
		return nil, false
	}
	return a, true
}

func (s *Server) getAddress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.ownAddress(w, r); ok {
		writeJSON(w, http.StatusOK, data(a))
	}
}

func (s *Server) decodeAddress(w http.ResponseWriter, r *http.Request) (domain.AddressSnapshot, bool) {
	var in domain.AddressSnapshot
	if !decodeBody(r, &in) || in.AddressLine == "" || in.CityID <= 0 {
		writeError(w, http.StatusUnprocessableEntity, "The address line and city id fields are required.")
		return in, false
	}
	return in, true
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeAddress(w, r)
	if !ok {
		return
	}
	a := s.AddAddress(currentUser(r).ID, in)
	writeJSON(w, http.StatusCreated, data(a))
}

func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeAddress(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.ownAddress(w, r)
	if !ok {
		return
	}
	a.AddressLine, a.CityID, a.Sector, a.Reference = in.AddressLine, in.CityID, in.Sector, in.Reference
	writeJSON(w, http.StatusOK, data(a))
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.ownAddress(w, r)
	if !ok {
		return
	}
	delete(s.addresses, a.ID)
	w.WriteHeader(http.StatusNoContent)
}
