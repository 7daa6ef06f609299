package handlers

import (
	"net/http"

	"github.com/mroshb/kudos/pkg/errors"
	"github.com/mroshb/kudos/pkg/response"
)

type healthResponse struct {
	Status      string `json:"status"`
	FeedClients int    `json:"feed_clients"`
}

func (h *HandlerManager) Health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := h.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		response.Error(w, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "Database unreachable"))
		return
	}

	body := healthResponse{Status: "ok"}
	if h.Clients != nil {
		body.FeedClients = h.Clients()
	}
	response.JSON(w, http.StatusOK, body)
}
