package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
	"github.com/simonkvalheim/hm9-ledger/internal/model"
)

// CreateAccountRequest is the body of POST /accounts
type CreateAccountRequest struct {
	CustomerName string `json:"customer_name"`
	AccountType  string `json:"account_type"` // "S" or "C", default "S"
	Balance      string `json:"balance"`      // default "0"
}

// SetLimitsRequest is the body of PUT /accounts/{number}/limits
type SetLimitsRequest struct {
	MinLimit string `json:"min_limit"`
	MaxLimit string `json:"max_limit"`
}

// AccountHandler handles HTTP requests for accounts
type AccountHandler struct {
	ledger *ledger.Serialized
	logger *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(l *ledger.Serialized, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{ledger: l, logger: logger}
}

// RegisterRoutes sets up the account routes on the given router
func (h *AccountHandler) RegisterRoutes(r chi.Router) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts", h.List)
	r.Get("/accounts/{number}", h.Get)
	r.Put("/accounts/{number}/limits", h.SetLimits)
	r.Get("/accounts/{number}/statement", h.Statement)
}

// Create handles POST /accounts
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	kind := model.AccountKindSavings
	if strings.TrimSpace(req.AccountType) != "" {
		parsed, err := model.ParseAccountKind(req.AccountType)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		kind = parsed
	}

	balance := decimal.Zero
	if strings.TrimSpace(req.Balance) != "" {
		parsed, err := model.ParseMoney(req.Balance)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		balance = parsed
	}

	var account *model.Account
	err := h.ledger.Do(func(svc *ledger.Service) error {
		var err error
		account, err = svc.CreateAccount(r.Context(), req.CustomerName, kind, balance)
		return err
	})
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	h.logger.Info("account created",
		zap.String("account", account.Number()),
		zap.String("kind", string(account.Kind())),
	)
	writeLocked(w, h.ledger, http.StatusCreated, account)
}

// List handles GET /accounts
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	var accounts []*model.Account
	_ = h.ledger.Do(func(svc *ledger.Service) error {
		accounts = svc.Accounts()
		return nil
	})

	writeLocked(w, h.ledger, http.StatusOK, accounts)
}

// Get handles GET /accounts/{number}
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var account *model.Account
	err := h.ledger.Do(func(svc *ledger.Service) error {
		var err error
		account, err = svc.Account(number)
		return err
	})
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	writeLocked(w, h.ledger, http.StatusOK, account)
}

// SetLimits handles PUT /accounts/{number}/limits
func (h *AccountHandler) SetLimits(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var req SetLimitsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	minLimit, err := model.ParseMoney(req.MinLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "min_limit: "+err.Error())
		return
	}
	maxLimit, err := model.ParseMoney(req.MaxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "max_limit: "+err.Error())
		return
	}

	var account *model.Account
	err = h.ledger.Do(func(svc *ledger.Service) error {
		var err error
		account, err = svc.SetLimits(r.Context(), number, minLimit, maxLimit)
		return err
	})
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	h.logger.Info("limits set",
		zap.String("account", number),
		zap.String("min_limit", minLimit.String()),
		zap.String("max_limit", maxLimit.String()),
	)
	writeLocked(w, h.ledger, http.StatusOK, account)
}

// Statement handles GET /accounts/{number}/statement
func (h *AccountHandler) Statement(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")

	var statement *ledger.Statement
	err := h.ledger.Do(func(svc *ledger.Service) error {
		var err error
		statement, err = svc.Statement(number)
		return err
	})
	if err != nil {
		writeLedgerError(w, h.logger, err)
		return
	}

	writeLocked(w, h.ledger, http.StatusOK, statement)
}
