package api

import (
	"net/http"
	"strings"

	"github.com/dannyrandall/moviereviews/internal/apperr"
)

type signUpRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type confirmSignUpRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required"`
}

type signInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) signUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req signUpRequest
	if err := decodeBody(w, r, "api.signUp", &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Auth.SignUp(ctx, req.Username, req.Email, req.Password); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, messageBody{Message: "User registered successfully"})
}

func (h *Handler) confirmSignUp(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req confirmSignUpRequest
	if err := decodeBody(w, r, "api.confirmSignUp", &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.Auth.ConfirmSignUp(ctx, req.Email, req.Code); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageBody{Message: "User confirmed successfully"})
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	var req signInRequest
	if err := decodeBody(w, r, "api.signIn", &req); err != nil {
		h.fail(w, r, err)
		return
	}
	tokens, err := h.Auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tokens)
}

func (h *Handler) signOut(w http.ResponseWriter, r *http.Request) {
	const op = "api.signOut"
	ctx, cancel := h.requestContext(r)
	defer cancel()

	header := r.Header.Get("Authorization")
	if header == "" {
		h.fail(w, r, &apperr.Error{Kind: apperr.KindUnauthorized, Op: op, Msg: "Authorization header is missing"})
		return
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		h.fail(w, r, &apperr.Error{Kind: apperr.KindUnauthorized, Op: op, Msg: "Authorization header must be a Bearer token"})
		return
	}

	if err := h.Auth.SignOut(ctx, strings.TrimSpace(token)); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, messageBody{Message: "Successfully logged out"})
}
