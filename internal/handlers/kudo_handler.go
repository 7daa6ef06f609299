package handlers

import (
	"net/http"

	"github.com/mroshb/kudos/internal/pagination"
	"github.com/mroshb/kudos/internal/repositories"
	"github.com/mroshb/kudos/internal/services"
	"github.com/mroshb/kudos/pkg/response"
)

func (h *HandlerManager) CreateKudo(w http.ResponseWriter, r *http.Request) {
	var in services.CreateKudoInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	kudo, err := h.KudoSvc.CreateKudo(r.Context(), currentUser(r).ID, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, kudo)
}

// ListKudos accepts sender_id and receiver_id filters besides the common
// pagination parameters.
func (h *HandlerManager) ListKudos(w http.ResponseWriter, r *http.Request) {
	var (
		filter repositories.KudoFilter
		err    error
	)
	if filter.SenderID, err = queryUUID(r, "sender_id"); err != nil {
		response.Error(w, err)
		return
	}
	if filter.ReceiverID, err = queryUUID(r, "receiver_id"); err != nil {
		response.Error(w, err)
		return
	}

	page, err := h.KudoSvc.ListKudos(r.Context(), filter, pagination.ParamsFromQuery(r.URL.Query()))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, page)
}

func (h *HandlerManager) GetKudo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	kudo, err := h.KudoSvc.GetKudo(r.Context(), id)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, kudo)
}

func (h *HandlerManager) UpdateKudo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var in services.UpdateKudoInput
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	kudo, err := h.KudoSvc.UpdateKudo(r.Context(), currentUser(r).ID, id, in)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, kudo)
}

func (h *HandlerManager) DeleteKudo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	if err := h.KudoSvc.DeleteKudo(r.Context(), currentUser(r).ID, id); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

type reactionRequest struct {
	Emoji string `json:"emoji"`
}

func (h *HandlerManager) AddReaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var in reactionRequest
	if err := decodeJSON(w, r, &in); err != nil {
		response.Error(w, err)
		return
	}

	kudo, err := h.KudoSvc.AddReaction(r.Context(), currentUser(r).ID, id, in.Emoji)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, kudo)
}

// RemoveReaction takes the emoji from the query string: DELETE has no body.
func (h *HandlerManager) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	kudo, err := h.KudoSvc.RemoveReaction(r.Context(), currentUser(r).ID, id, r.URL.Query().Get("emoji"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, kudo)
}
