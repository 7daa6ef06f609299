package handlers

import (
	"net/http"

	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/services"
	"github.com/mroshb/kudos/pkg/response"
)

func (h *HandlerManager) CreateRedemption(w http.ResponseWriter, r *http.Request) {
	var in services.CreateRedemptionInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	redemption, err := h.CatalogSvc.CreateRedemption(r.Context(), in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, redemption)
}

func (h *HandlerManager) ListRedemptions(w http.ResponseWriter, r *http.Request) {
	var (
		filter repositories.RedemptionFilter
		err    error
	)
	if filter.UserID, err = queryUUID(r, "user_id"); err != nil {
		response.Error(w, err)
		return
	}
	if filter.RewardID, err = queryUUID(r, "reward_id"); err != nil {
		response.Error(w, err)
		return
	}
	filter.Status = models.RedemptionStatus(r.URL.Query().Get("status"))

	page, err := h.CatalogSvc.ListRedemptions(r.Context(), filter, pagination.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *HandlerManager) GetRedemption(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	redemption, err := h.CatalogSvc.GetRedemption(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, redemption)
}

func (h *HandlerManager) UpdateRedemption(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var in services.UpdateRedemptionInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	redemption, err := h.CatalogSvc.UpdateRedemption(r.Context(), id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, redemption)
}

func (h *HandlerManager) DeleteRedemption(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.CatalogSvc.DeleteRedemption(r.Context(), id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}
