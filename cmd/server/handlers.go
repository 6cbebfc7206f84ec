package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"tradepool/internal/errs"
	"tradepool/internal/ledger"
	"tradepool/internal/trading"
)

// APIHandler serves the JSON API over the ledger and the trade lifecycle
// manager. It holds no state of its own: every request reads through the
// store, so the view can never drift from what is persisted.
type APIHandler struct {
	logger  *zap.Logger
	ledger  *ledger.Ledger
	manager *trading.Manager
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(logger *zap.Logger, l *ledger.Ledger, m *trading.Manager) *APIHandler {
	return &APIHandler{logger: logger.Named("api"), ledger: l, manager: m}
}

// Register attaches all routes to the mux.
func (h *APIHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/accounts", h.listAccounts)
	mux.HandleFunc("POST /api/accounts", h.createAccount)
	mux.HandleFunc("POST /api/accounts/{id}/deposit", h.deposit)
	mux.HandleFunc("POST /api/accounts/{id}/withdraw", h.withdraw)
	mux.HandleFunc("DELETE /api/accounts/{id}", h.deleteAccount)

	mux.HandleFunc("GET /api/trades", h.listTrades)
	mux.HandleFunc("POST /api/trades", h.openTrade)
	mux.HandleFunc("GET /api/trades/{id}", h.getTrade)
	mux.HandleFunc("POST /api/trades/{id}/positions", h.addPosition)
	mux.HandleFunc("POST /api/trades/{id}/exit/preview", h.previewExit)
	mux.HandleFunc("POST /api/trades/{id}/exit", h.applyExit)
	mux.HandleFunc("DELETE /api/trades/{id}", h.deleteTrade)

	mux.HandleFunc("GET /api/history", h.listHistory)
	mux.HandleFunc("GET /api/history/summary", h.historySummary)
	mux.HandleFunc("DELETE /api/history", h.purgeHistory)
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeError maps the domain error taxonomy onto HTTP statuses so a client
// can tell invalid input apart from a store failure and retry only the
// latter.
func (h *APIHandler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	var validation *errs.ValidationError
	var notFound *errs.NotFoundError
	var invalidState *errs.InvalidStateError
	var conflict *errs.ConflictError
	switch {
	case errors.As(err, &validation):
		status = http.StatusBadRequest
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.As(err, &invalidState), errors.As(err, &conflict):
		status = http.StatusConflict
	default:
		h.logger.Error("Request failed", zap.Error(err))
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (h *APIHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, errs.Validationf("invalid request body: %v", err))
		return false
	}
	return true
}

func (h *APIHandler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.ledger.List()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}

func (h *APIHandler) createAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  string  `json:"user_id"`
		Name    string  `json:"name"`
		Email   string  `json:"email"`
		Capital float64 `json:"capital"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.ledger.Create(req.UserID, req.Name, req.Email, req.Capital)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, account)
}

func (h *APIHandler) deposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.ledger.AddCapital(r.PathValue("id"), req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

func (h *APIHandler) withdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	account, err := h.ledger.WithdrawCapital(r.PathValue("id"), req.Amount)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, account)
}

func (h *APIHandler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Delete(r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) listTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.manager.List()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trades)
}

func (h *APIHandler) getTrade(w http.ResponseWriter, r *http.Request) {
	trade, err := h.manager.Get(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

type openTradeRequest struct {
	Symbol   string    `json:"symbol"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
	Fees     float64   `json:"fees"`
	Strategy string    `json:"strategy"`
	Date     time.Time `json:"date"`
	Accounts []string  `json:"accounts"`
}

func (h *APIHandler) openTrade(w http.ResponseWriter, r *http.Request) {
	var req openTradeRequest
	if !h.decode(w, r, &req) {
		return
	}
	trade, err := h.manager.Open(trading.OpenParams{
		Symbol:   req.Symbol,
		Quantity: req.Quantity,
		Price:    req.Price,
		Fees:     req.Fees,
		Strategy: req.Strategy,
		Date:     req.Date,
		Accounts: req.Accounts,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, trade)
}

func (h *APIHandler) addPosition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int     `json:"quantity"`
		Price    float64 `json:"price"`
		Fees     float64 `json:"fees"`
	}
	if !h.decode(w, r, &req) {
		return
	}
	trade, err := h.manager.AddPosition(r.PathValue("id"), req.Quantity, req.Price, req.Fees)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, trade)
}

type exitRequest struct {
	ExitQty   int       `json:"exit_qty"`
	ExitPrice float64   `json:"exit_price"`
	ExitFees  float64   `json:"exit_fees"`
	Date      time.Time `json:"date"`
}

func (h *APIHandler) previewExit(w http.ResponseWriter, r *http.Request) {
	var req exitRequest
	if !h.decode(w, r, &req) {
		return
	}
	preview, err := h.manager.ComputeExit(r.PathValue("id"), req.ExitQty, req.ExitPrice, req.ExitFees)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, preview)
}

func (h *APIHandler) applyExit(w http.ResponseWriter, r *http.Request) {
	var req exitRequest
	if !h.decode(w, r, &req) {
		return
	}
	preview, err := h.manager.ApplyExit(r.PathValue("id"), req.ExitQty, req.ExitPrice, req.ExitFees, req.Date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, preview)
}

func (h *APIHandler) deleteTrade(w http.ResponseWriter, r *http.Request) {
	confirm := r.URL.Query().Get("confirm")
	if err := h.manager.Delete(r.PathValue("id"), confirm); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandler) listHistory(w http.ResponseWriter, r *http.Request) {
	records, err := h.manager.History()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, records)
}

func (h *APIHandler) historySummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.manager.Summary()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) purgeHistory(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.manager.PurgeHistory(r.URL.Query().Get("confirm"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
