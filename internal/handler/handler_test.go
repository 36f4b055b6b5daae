package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/simonkvalheim/hm9-ledger/internal/ledger"
	"github.com/simonkvalheim/hm9-ledger/internal/model"
	"github.com/simonkvalheim/hm9-ledger/internal/storage"
)

// stubPublisher records queued postings
type stubPublisher struct {
	err     error
	account string
	txnType model.TransactionType
	amount  decimal.Decimal
}

func (p *stubPublisher) PublishPosting(_ context.Context, account string, txnType model.TransactionType, amount decimal.Decimal) (uuid.UUID, error) {
	if p.err != nil {
		return uuid.Nil, p.err
	}
	p.account, p.txnType, p.amount = account, txnType, amount
	return uuid.New(), nil
}

func newTestRouter(t *testing.T, publisher Publisher) (http.Handler, *ledger.Serialized) {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewFileStore(filepath.Join(dir, "ACCOUNTS.DAT"), filepath.Join(dir, "TRANSACTIONS.DAT"))
	svc := ledger.NewService(store)
	require.NoError(t, svc.Initialize(testContext(t)))
	locked := ledger.NewSerialized(svc)
	logger := zaptest.NewLogger(t)

	r := chi.NewRouter()
	r.Route("/v1", func(r chi.Router) {
		NewAccountHandler(locked, logger).RegisterRoutes(r)
		NewPostingHandler(locked, publisher, logger).RegisterRoutes(r)
	})
	return r, locked
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestAccountHandler_CreateAndGet(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Ivan Petrov","account_type":"c","balance":"100.50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeBody(t, rec)
	assert.Equal(t, "C00001", created["account_number"])
	assert.Equal(t, "C", created["account_type"])
	assert.Equal(t, "100.5", created["balance"])

	rec = do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Petr Ivanov"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "S00001", decodeBody(t, rec)["account_number"])

	rec = do(t, h, http.MethodGet, "/v1/accounts/C00001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ivan Petrov", decodeBody(t, rec)["customer_name"])

	rec = do(t, h, http.MethodGet, "/v1/accounts", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "C00001", list[0]["account_number"])
}

func TestAccountHandler_Errors(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "bad json", method: http.MethodPost, path: "/v1/accounts", body: `{`, want: http.StatusBadRequest},
		{name: "blank name", method: http.MethodPost, path: "/v1/accounts", body: `{"customer_name":"  "}`, want: http.StatusBadRequest},
		{name: "bad kind", method: http.MethodPost, path: "/v1/accounts", body: `{"customer_name":"Ivan","account_type":"X"}`, want: http.StatusBadRequest},
		{name: "balance below default min", method: http.MethodPost, path: "/v1/accounts", body: `{"customer_name":"Ivan","balance":"-10000.01"}`, want: http.StatusBadRequest},
		{name: "unknown account", method: http.MethodGet, path: "/v1/accounts/S99999", want: http.StatusNotFound},
		{name: "statement of unknown account", method: http.MethodGet, path: "/v1/accounts/S99999/statement", want: http.StatusNotFound},
		{name: "limits for unknown account", method: http.MethodPut, path: "/v1/accounts/S99999/limits", body: `{"min_limit":"0","max_limit":"10"}`, want: http.StatusNotFound},
		{name: "limits not numeric", method: http.MethodPut, path: "/v1/accounts/S99999/limits", body: `{"min_limit":"zero","max_limit":"10"}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.NotEmpty(t, decodeBody(t, rec)["error"])
		})
	}
}

func TestAccountHandler_SetLimitsAndStatement(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Ivan","balance":"1200"}`).Code)

	rec := do(t, h, http.MethodPut, "/v1/accounts/S00001/limits", `{"min_limit":"0","max_limit":"5000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "5000", decodeBody(t, rec)["max_limit"])

	rec = do(t, h, http.MethodGet, "/v1/accounts/S00001/statement", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	st := decodeBody(t, rec)
	assert.Equal(t, "1", st["interest"])
	assert.Equal(t, "1201", st["balance"])
	assert.Equal(t, "1200", st["account"].(map[string]any)["balance"])
	assert.Empty(t, st["transactions"])
}

func TestAccountHandler_StatementDoesNotAccrue(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Ivan","balance":"1200"}`).Code)

	for i := 0; i < 3; i++ {
		rec := do(t, h, http.MethodGet, "/v1/accounts/S00001/statement", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "1201", decodeBody(t, rec)["balance"])
	}

	rec := do(t, h, http.MethodGet, "/v1/accounts/S00001", "")
	assert.Equal(t, "1200", decodeBody(t, rec)["balance"])

	// limit checks still see the unaccrued balance
	rec = do(t, h, http.MethodPut, "/v1/accounts/S00001/limits", `{"min_limit":"1199","max_limit":"5000"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(t, h, http.MethodPost, "/v1/accounts/S00001/withdrawals", `{"amount":"2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestPostingHandler_Sync(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Ivan","account_type":"C","balance":"100"}`).Code)

	rec := do(t, h, http.MethodPost, "/v1/accounts/C00001/deposits", `{"amount":"30"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "D", decodeBody(t, rec)["type"])

	rec = do(t, h, http.MethodPost, "/v1/accounts/C00001/withdrawals", `{"amount":"50"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/v1/accounts/C00001", "")
	assert.Equal(t, "80", decodeBody(t, rec)["balance"])

	rec = do(t, h, http.MethodGet, "/v1/transactions?account=C00001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var txns []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &txns))
	assert.Len(t, txns, 2)

	rec = do(t, h, http.MethodGet, "/v1/transactions?account=S00001", "")
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestPostingHandler_SyncErrors(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Ivan","account_type":"C","balance":"100"}`).Code)

	tests := []struct {
		name string
		path string
		body string
		want int
	}{
		{name: "zero amount", path: "/v1/accounts/C00001/deposits", body: `{"amount":"0"}`, want: http.StatusBadRequest},
		{name: "missing amount", path: "/v1/accounts/C00001/deposits", body: `{}`, want: http.StatusBadRequest},
		{name: "below min limit", path: "/v1/accounts/C00001/withdrawals", body: `{"amount":"10100.01"}`, want: http.StatusBadRequest},
		{name: "unknown account", path: "/v1/accounts/C00404/deposits", body: `{"amount":"1"}`, want: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	rec := do(t, h, http.MethodGet, "/v1/accounts/C00001", "")
	assert.Equal(t, "100", decodeBody(t, rec)["balance"])
}

func TestPostingHandler_Async(t *testing.T) {
	pub := &stubPublisher{}
	h, _ := newTestRouter(t, pub)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Ivan","balance":"100"}`).Code)

	rec := do(t, h, http.MethodPost, "/v1/accounts/S00001/withdrawals", `{"amount":"12.5"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	assert.Equal(t, "pending", body["status"])
	assert.NotEmpty(t, body["posting_id"])

	assert.Equal(t, "S00001", pub.account)
	assert.Equal(t, model.TransactionTypeWithdraw, pub.txnType)
	assert.True(t, pub.amount.Equal(decimal.RequireFromString("12.5")))

	// nothing applied until the worker runs
	rec = do(t, h, http.MethodGet, "/v1/accounts/S00001", "")
	assert.Equal(t, "100", decodeBody(t, rec)["balance"])

	rec = do(t, h, http.MethodPost, "/v1/accounts/S00404/deposits", `{"amount":"1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPostingHandler_AsyncPublishFailure(t *testing.T) {
	h, _ := newTestRouter(t, &stubPublisher{err: errors.New("redis down")})
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/v1/accounts", `{"customer_name":"Ivan"}`).Code)

	rec := do(t, h, http.MethodPost, "/v1/accounts/S00001/deposits", `{"amount":"1"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to queue posting", decodeBody(t, rec)["error"])
}
