package handlers

import (
	"net/http"

	"github.com/mroshb/kudos/pkg/response"
)

type loginRequest struct {
	UserName string `json:"user_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *HandlerManager) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	login := in.UserName
	if login == "" {
		login = in.Email
	}

	tokens, err := h.AuthSvc.Login(r.Context(), login, in.Password)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tokens)
}

func (h *HandlerManager) Me(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, currentUser(r))
}

type codeResponse struct {
	Code string `json:"code"`
}

// IssueCode hands the caller a one-time code another client can trade for
// its own token pair.
func (h *HandlerManager) IssueCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.AuthSvc.IssueCode(r.Context(), currentUser(r).ID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, codeResponse{Code: code})
}

type exchangeRequest struct {
	Code string `json:"code"`
}

func (h *HandlerManager) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	var in exchangeRequest
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	tokens, err := h.AuthSvc.ExchangeCode(r.Context(), in.Code)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tokens)
}
