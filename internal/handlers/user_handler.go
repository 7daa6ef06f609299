package handlers

import (
	"net/http"

	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/services"
	"github.com/mroshb/kudos/pkg/response"
)

func (h *HandlerManager) ListUsers(w http.ResponseWriter, r *http.Request) {
	page, err := h.CatalogSvc.ListUsers(r.Context(), pagination.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *HandlerManager) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	user, err := h.CatalogSvc.GetUser(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *HandlerManager) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var in services.UpdateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	user, err := h.CatalogSvc.UpdateUser(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

func (h *HandlerManager) ListCoreValues(w http.ResponseWriter, r *http.Request) {
	values, err := h.CatalogSvc.ListCoreValues(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, values)
}
