package handlers

import (
	"net/http"

	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/services"
	"github.com/mroshb/kudos/pkg/response"
)

func (h *HandlerManager) CreateReward(w http.ResponseWriter, r *http.Request) {
	var in services.CreateRewardInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	reward, err := h.CatalogSvc.CreateReward(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, reward)
}

func (h *HandlerManager) ListRewards(w http.ResponseWriter, r *http.Request) {
	isActive, err := queryBool(r, "is_active")
	if err != nil {
		response.Error(w, err)
		return
	}

	page, err := h.CatalogSvc.ListRewards(r.Context(), isActive, pagination.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *HandlerManager) GetReward(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	reward, err := h.CatalogSvc.GetReward(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, reward)
}

func (h *HandlerManager) UpdateReward(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var in services.UpdateRewardInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	reward, err := h.CatalogSvc.UpdateReward(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, reward)
}

func (h *HandlerManager) DeleteReward(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.CatalogSvc.DeleteReward(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
