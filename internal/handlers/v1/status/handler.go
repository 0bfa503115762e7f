package status

import (
	"errors"
	"net/http"

	"github.com/carson-networks/budget-ledger/internal/logging"
	"github.com/carson-networks/budget-ledger/internal/storage"
)

type Handler struct {
	Store storage.Reader
}

func NewHandler(store storage.Reader) Handler {
	return Handler{Store: store}
}

func (h *Handler) Handler(w http.ResponseWriter, req *http.Request, logData *logging.LogData) error {
	if req.Method != "GET" {
		w.WriteHeader(http.StatusBadRequest)
		return errors.New("status: method not GET")
	}

	accounts, err := h.Store.ListAccounts(req.Context())
	if err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return err
	}
	logData.AddData("accounts", len(accounts))

	w.WriteHeader(http.StatusOK)
	return nil
}
