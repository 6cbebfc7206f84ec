package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"tradepool/internal/database"
	"tradepool/internal/guard"
	"tradepool/internal/ledger"
	"tradepool/internal/models"
	"tradepool/internal/trading"
)

func setupServer(t *testing.T) *httptest.Server {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, database.AutoMigrate(db))

	l := ledger.NewLedger(zap.NewNop(), db)
	m := trading.NewManager(zap.NewNop(), db, l)

	mux := http.NewServeMux()
	NewAPIHandler(zap.NewNop(), l, m).Register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	assert.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	assert.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	if resp.StatusCode != http.StatusNoContent {
		assert.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	}
	return resp, decoded
}

func TestAPI_AccountLifecycle(t *testing.T) {
	ts := setupServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		`{"user_id":"ACC1","name":"Asha","email":"asha@example.com","capital":6000}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "ACC1", body["user_id"])

	// Duplicate id maps to 409.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		`{"user_id":"ACC1","name":"Other","email":"other@example.com","capital":1}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Bad email maps to 400.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		`{"user_id":"ACC2","name":"Ravi","email":"nope","capital":1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/accounts/ACC1/withdraw", `{"amount":9999}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["error"], "exceeds capital")

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/accounts/ACC1", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_TradeExitFlow(t *testing.T) {
	ts := setupServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		`{"user_id":"ACC1","name":"Asha","email":"asha@example.com","capital":6000}`)
	doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		`{"user_id":"ACC2","name":"Ravi","email":"ravi@example.com","capital":4000}`)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/trades",
		`{"symbol":"goldpetal","quantity":10,"price":100,"fees":5,"strategy":"swing","accounts":["ACC1","ACC2"]}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	tradeID := body["id"].(string)

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/trades/"+tradeID+"/positions",
		`{"quantity":10,"price":120,"fees":5}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 110.00, body["avg_price"])

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/trades/"+tradeID+"/exit/preview",
		`{"exit_qty":20,"exit_price":130,"exit_fees":10}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 390.00, body["net_pnl"])

	resp, body = doJSON(t, http.MethodPost, ts.URL+"/api/trades/"+tradeID+"/exit",
		`{"exit_qty":20,"exit_price":130,"exit_fees":10}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	distribution := body["distribution"].(map[string]any)
	assert.Equal(t, 234.00, distribution["ACC1"])
	assert.Equal(t, 156.00, distribution["ACC2"])

	// Exiting again is illegal for a closed trade: 409.
	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/trades/"+tradeID+"/exit",
		`{"exit_qty":20,"exit_price":130,"exit_fees":10}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Linked account can no longer be deleted: 409.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/accounts/ACC1", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Wrong confirmation phrase: 400. Right phrase deletes trade + history.
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/trades/"+tradeID+"?confirm=nope", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	confirm := strings.ReplaceAll(guard.DeletionPhrase(tradeID), " ", "%20")
	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/trades/"+tradeID+"?confirm="+confirm, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/trades/"+tradeID, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_HistoryEndpoints(t *testing.T) {
	ts := setupServer(t)

	doJSON(t, http.MethodPost, ts.URL+"/api/accounts",
		`{"user_id":"ACC1","name":"Asha","email":"asha@example.com","capital":1000}`)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/trades",
		`{"symbol":"NIFTY","quantity":10,"price":100,"strategy":"swing","accounts":["ACC1"]}`)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	tradeID := body["id"].(string)

	resp, _ = doJSON(t, http.MethodPost, ts.URL+"/api/trades/"+tradeID+"/exit",
		`{"exit_qty":4,"exit_price":110}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/history/summary", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(1), body["total_exits"])
	assert.Equal(t, 40.00, body["total_pnl"])

	resp, _ = doJSON(t, http.MethodDelete, ts.URL+"/api/history?confirm=DELETE%20ALL", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var records []models.TradeHistory
	r, err := http.Get(ts.URL + "/api/history")
	assert.NoError(t, err)
	defer r.Body.Close()
	assert.NoError(t, json.NewDecoder(r.Body).Decode(&records))
	assert.Empty(t, records)
}
