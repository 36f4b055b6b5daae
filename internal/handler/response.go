package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// Helper functions for HTTP responses

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeLocked encodes data while holding the ledger lock. Accounts are live
// objects, so they must not be read while a posting mutates them.
func writeLocked(w http.ResponseWriter, l *ledger.Serialized, status int, data any) {
	var body []byte
	err := l.Do(func(*ledger.Service) error {
		var err error
		body, err = json.Marshal(data)
		return err
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to encode response")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// writeLedgerError maps ledger error kinds to status codes
func writeLedgerError(w http.ResponseWriter, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrDuplicate):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("ledger operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal error")
	}
}
