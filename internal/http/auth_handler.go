package http

import (
	"net/http"

	"github.com/tuanvumaihuynh/digital-store/internal/model"
	"github.com/tuanvumaihuynh/digital-store/internal/service"
	"github.com/tuanvumaihuynh/digital-store/internal/session"
)

type authHandler struct {
	responder
	userSvc  service.UserService
	sessions *session.Manager
}

func newAuthHandler(rs responder, userSvc service.UserService, sessions *session.Manager) *authHandler {
	return &authHandler{
		responder: rs,
		userSvc:   userSvc,
		sessions:  sessions,
	}
}

type userResponse struct {
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      model.Role `json:"role"`
	FirstName *string    `json:"first_name,omitempty"`
	LastName  *string    `json:"last_name,omitempty"`
}

func newUserResponse(p session.Principal) userResponse {
	return userResponse{
		UserID:    p.UserID,
		Username:  p.Username,
		Email:     p.Email,
		Role:      p.Role,
		FirstName: p.FirstName,
		LastName:  p.LastName,
	}
}

type registerResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type loginResponse struct {
	Status  string       `json:"status"`
	Message string       `json:"message"`
	User    userResponse `json:"user"`
}

type sessionResponse struct {
	Status   string        `json:"status"`
	LoggedIn bool          `json:"loggedIn"`
	User     *userResponse `json:"user,omitempty"`
}

type profileData struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
}

type profileResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    profileData `json:"data"`
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterParams
	if err := bindBody(w, r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	u, err := h.userSvc.Register(r.Context(), req)
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusCreated, registerResponse{
		Status:  statusSuccess,
		Message: "User registered successfully.",
		UserID:  u.ID,
	})
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginParams
	if err := bindBody(w, r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	u, err := h.userSvc.Login(r.Context(), req)
	if err != nil {
		h.error(w, r, err)
		return
	}

	sess, err := h.sessions.Login(r.Context(), w, session.PrincipalFromUser(u))
	if err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusOK, loginResponse{
		Status:  statusSuccess,
		Message: "Login successful.",
		User:    newUserResponse(*sess.Principal),
	})
}

func (h *authHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Logout(r.Context(), w); err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusOK, messageResponse{Status: statusSuccess, Message: "Logged out successfully."})
}

func (h *authHandler) Session(w http.ResponseWriter, r *http.Request) {
	sess := session.FromContext(r.Context())

	res := sessionResponse{Status: statusSuccess, LoggedIn: sess.IsLoggedIn()}
	if sess.IsLoggedIn() {
		u := newUserResponse(*sess.Principal)
		res.User = &u
	}

	h.json(w, r, http.StatusOK, res)
}

func (h *authHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.UpdateProfileParams
	if err := bindBody(w, r, &req); err != nil {
		h.error(w, r, err)
		return
	}

	sess := session.FromContext(r.Context())
	req.UserID = sess.Principal.UserID

	u, err := h.userSvc.UpdateProfile(r.Context(), req)
	if err != nil {
		h.error(w, r, err)
		return
	}

	if err := h.sessions.Refresh(r.Context(), session.PrincipalFromUser(u)); err != nil {
		h.error(w, r, err)
		return
	}

	h.json(w, r, http.StatusOK, profileResponse{
		Status:  statusSuccess,
		Message: "Profile updated successfully.",
		Data: profileData{
			FirstName: u.FirstName,
			LastName:  u.LastName,
		},
	})
}
