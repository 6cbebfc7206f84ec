// Package client is a thin REST client for the tradepool API, used by the
// poolctl command.
package client

import (
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"tradepool/internal/models"
	"tradepool/internal/trading"
)

// Client talks to a running tradepool server.
type Client struct {
	client *resty.Client
}

// New creates a new API client for the given base URL, e.g.
// "http://localhost:8080".
func New(baseURL string) *Client {
	return &Client{
		client: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json"),
	}
}

type apiError struct {
	Error string `json:"error"`
}

// do runs the request and converts non-2xx responses into errors carrying
// the server's message.
func do(req *resty.Request, method, path string) (*resty.Response, error) {
	resp, err := req.SetError(&apiError{}).Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	if resp.IsError() {
		if apiErr, ok := resp.Error().(*apiError); ok && apiErr.Error != "" {
			return nil, fmt.Errorf("%s", apiErr.Error)
		}
		return nil, fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status())
	}
	return resp, nil
}

// Accounts returns all accounts.
func (c *Client) Accounts() ([]models.Account, error) {
	var accounts []models.Account
	_, err := do(c.client.R().SetResult(&accounts), resty.MethodGet, "/api/accounts")
	return accounts, err
}

// CreateAccount registers a new account.
func (c *Client) CreateAccount(userID, name, email string, capital float64) (*models.Account, error) {
	var account models.Account
	_, err := do(c.client.R().
		SetBody(map[string]any{"user_id": userID, "name": name, "email": email, "capital": capital}).
		SetResult(&account), resty.MethodPost, "/api/accounts")
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Deposit adds capital to an account.
func (c *Client) Deposit(userID string, amount float64) (*models.Account, error) {
	var account models.Account
	_, err := do(c.client.R().
		SetBody(map[string]float64{"amount": amount}).
		SetResult(&account), resty.MethodPost, "/api/accounts/"+userID+"/deposit")
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// Withdraw removes capital from an account.
func (c *Client) Withdraw(userID string, amount float64) (*models.Account, error) {
	var account models.Account
	_, err := do(c.client.R().
		SetBody(map[string]float64{"amount": amount}).
		SetResult(&account), resty.MethodPost, "/api/accounts/"+userID+"/withdraw")
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// DeleteAccount removes an account with no trade references.
func (c *Client) DeleteAccount(userID string) error {
	_, err := do(c.client.R(), resty.MethodDelete, "/api/accounts/"+userID)
	return err
}

// Trades returns all trades.
func (c *Client) Trades() ([]models.Trade, error) {
	var trades []models.Trade
	_, err := do(c.client.R().SetResult(&trades), resty.MethodGet, "/api/trades")
	return trades, err
}

// OpenTrade creates a new trade.
func (c *Client) OpenTrade(symbol string, quantity int, price, fees float64, strategy string, accounts []string) (*models.Trade, error) {
	var trade models.Trade
	_, err := do(c.client.R().
		SetBody(map[string]any{
			"symbol":   symbol,
			"quantity": quantity,
			"price":    price,
			"fees":     fees,
			"strategy": strategy,
			"accounts": accounts,
		}).
		SetResult(&trade), resty.MethodPost, "/api/trades")
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// AddPosition blends an additional fill into a trade.
func (c *Client) AddPosition(tradeID string, quantity int, price, fees float64) (*models.Trade, error) {
	var trade models.Trade
	_, err := do(c.client.R().
		SetBody(map[string]any{"quantity": quantity, "price": price, "fees": fees}).
		SetResult(&trade), resty.MethodPost, "/api/trades/"+tradeID+"/positions")
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

func (c *Client) exit(path string, exitQty int, exitPrice, exitFees float64) (*trading.ExitPreview, error) {
	var preview trading.ExitPreview
	_, err := do(c.client.R().
		SetBody(map[string]any{"exit_qty": exitQty, "exit_price": exitPrice, "exit_fees": exitFees}).
		SetResult(&preview), resty.MethodPost, path)
	if err != nil {
		return nil, err
	}
	return &preview, nil
}

// PreviewExit computes P&L and distribution without mutating anything.
func (c *Client) PreviewExit(tradeID string, exitQty int, exitPrice, exitFees float64) (*trading.ExitPreview, error) {
	return c.exit("/api/trades/"+tradeID+"/exit/preview", exitQty, exitPrice, exitFees)
}

// ApplyExit executes a full or partial exit.
func (c *Client) ApplyExit(tradeID string, exitQty int, exitPrice, exitFees float64) (*trading.ExitPreview, error) {
	return c.exit("/api/trades/"+tradeID+"/exit", exitQty, exitPrice, exitFees)
}

// DeleteTrade removes a trade and its history. confirm must be the exact
// deletion phrase for the trade.
func (c *Client) DeleteTrade(tradeID, confirm string) error {
	_, err := do(c.client.R().SetQueryParam("confirm", confirm), resty.MethodDelete, "/api/trades/"+tradeID)
	return err
}

// History returns all exit records.
func (c *Client) History() ([]models.TradeHistory, error) {
	var records []models.TradeHistory
	_, err := do(c.client.R().SetResult(&records), resty.MethodGet, "/api/history")
	return records, err
}

// Summary returns aggregate statistics over the trade history.
func (c *Client) Summary() (*trading.HistorySummary, error) {
	var summary trading.HistorySummary
	_, err := do(c.client.R().SetResult(&summary), resty.MethodGet, "/api/history/summary")
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// PurgeHistory bulk-deletes all exit records. confirm must be the exact
// bulk purge phrase.
func (c *Client) PurgeHistory(confirm string) (int64, error) {
	var result struct {
		Deleted int64 `json:"deleted"`
	}
	_, err := do(c.client.R().SetQueryParam("confirm", confirm).SetResult(&result),
		resty.MethodDelete, "/api/history")
	return result.Deleted, err
}
