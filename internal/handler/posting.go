package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// PostingRequest is the body of a deposit or withdrawal
type PostingRequest struct {
	Amount string `json:"amount"`
}

// PostingResponse is returned when a posting is queued instead of applied
type PostingResponse struct {
	PostingID uuid.UUID `json:"posting_id"`
	Status    string    `json:"status"`
}

// Publisher queues postings for the worker
type Publisher interface {
	PublishPosting(ctx context.Context, account string, txnType model.TransactionType, amount decimal.Decimal) (uuid.UUID, error)
}

// PostingHandler handles deposits, withdrawals and the transaction log
type PostingHandler struct {
	ledger    *ledger.Serialized
	publisher Publisher // nil for sync mode
	logger    *zap.Logger
}

// NewPostingHandler creates a new PostingHandler. With a nil publisher
// postings are applied within the request.
func NewPostingHandler(l *ledger.Serialized, publisher Publisher, logger *zap.Logger) *PostingHandler {
	return &PostingHandler{ledger: l, publisher: publisher, logger: logger}
}

// RegisterRoutes sets up the posting routes on the given router
func (h *PostingHandler) RegisterRoutes(r chi.Router) {
	r.Post("/accounts/{number}/deposits", h.post(model.TransactionTypeDeposit))
	r.Post("/accounts/{number}/withdrawals", h.post(model.TransactionTypeWithdraw))
	r.Get("/transactions", h.List)
}

// post handles POST /accounts/{number}/deposits and /withdrawals
func (h *PostingHandler) post(txnType model.TransactionType) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		number := chi.URLParam(r, "number")

		var req PostingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		amount, err := model.ParseMoney(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if !amount.IsPositive() {
			writeError(w, http.StatusBadRequest, model.ErrInvalidAmount.Error())
			return
		}

		if h.publisher != nil {
			h.enqueue(w, r, number, txnType, amount)
			return
		}

		txn, err := h.ledger.Post(r.Context(), number, txnType, amount)
		if err != nil {
			writeLedgerError(w, h.logger, err)
			return
		}

		h.logger.Info("posting applied",
			zap.String("account", number),
			zap.String("type", txnType.Name()),
			zap.String("amount", amount.String()),
		)
		writeJSON(w, http.StatusCreated, txn)
	}
}

// enqueue checks the account exists and hands the posting to the worker.
// Limits are checked when the worker applies it.
func (h *PostingHandler) enqueue(w http.ResponseWriter, r *http.Request, number string, txnType model.TransactionType, amount decimal.Decimal) {
	err := h.ledger.Do(func(svc *ledger.Service) error {
		_, err := svc.Account(number)
		return err
	})
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	id, err := h.publisher.PublishPosting(r.Context(), number, txnType, amount)
	if err != nil {
		h.logger.Error("failed to queue posting", zap.String("account", number), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to queue posting")
		return
	}

	h.logger.Info("posting queued",
		zap.String("posting_id", id.String()),
		zap.String("account", number),
		zap.String("type", txnType.Name()),
	)
	writeJSON(w, http.StatusAccepted, PostingResponse{PostingID: id, Status: "pending"})
}

// List handles GET /transactions, optionally filtered by ?account=
func (h *PostingHandler) List(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")

	var txns []*model.Transaction
	_ = h.ledger.Do(func(svc *ledger.Service) error {
		txns = svc.Transactions(account)
		return nil
	})

	// Return empty array instead of null
	if txns == nil {
		txns = []*model.Transaction{}
	}

	writeJSON(w, http.StatusOK, txns)
}
