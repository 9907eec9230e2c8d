package rest

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrijs2005/meetscribe/internal/common"
	"github.com/dmitrijs2005/meetscribe/internal/server/models"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// fail logs internal errors and writes the mapped response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		s.logger.Error(r.Context(), op+" failed", "error", err)
	}
	writeServiceError(w, err)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	if _, err := s.users.Register(r.Context(), req.Name, req.Email, password); err != nil {
		s.fail(w, r, "register", err)
		return
	}
	writeOK(w, http.StatusCreated, envelope{
		"message": "Registration successful. Please check your email to verify your account.",
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	u, token, err := s.users.Login(r.Context(), req.Email, password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		s.fail(w, r, "login", err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"user": u.View(), "token": token})
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if _, err := s.users.VerifyEmail(r.Context(), chi.URLParam(r, "token")); err != nil {
		s.fail(w, r, "verify email", err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "Email verified successfully."})
}

// handleGoogle stands in for the federated provider round trip: it signs in
// the demo account and redirects straight to the client callback.
func (s *Server) handleGoogle(w http.ResponseWriter, r *http.Request) {
	query := url.Values{}

	_, token, err := s.users.DemoLogin(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "federated login failed", "error", err)
		query.Set("error", "google_login_failed")
	} else {
		query.Set("token", token)
	}

	target, err := s.callbackTarget(query)
	if err != nil {
		s.fail(w, r, "federated login", err)
		return
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, envelope{"user": userFrom(r.Context()).View()})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.List(r.Context())
	if err != nil {
		s.fail(w, r, "list users", err)
		return
	}

	views := make([]models.UserView, 0, len(list))
	for _, u := range list {
		views = append(views, u.View())
	}
	writeOK(w, http.StatusOK, envelope{"users": views})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get user", err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"user": u.View()})
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	u, err := s.users.Update(r.Context(), chi.URLParam(r, "id"), req.Name, req.Email, req.Role)
	if err != nil {
		s.fail(w, r, "update user", err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"user": u.View()})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := s.users.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "delete user", err)
		return
	}
	writeOK(w, http.StatusOK, envelope{"message": "User deleted."})
}
