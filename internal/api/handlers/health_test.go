package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"streammeter/internal/core"
)

type fakeHealth struct {
	active int
	ready  bool
}

func (f *fakeHealth) ActiveSessions() int     { return f.active }
func (f *fakeHealth) Ready() bool             { return f.ready }
func (f *fakeHealth) PricePerSecond() float64 { return 0.001 }

func TestGetHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/api/health", NewHealthHandler(&fakeHealth{active: 4, ready: true}).GetHealth)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "UP", body["status"])
	assert.Equal(t, true, body["initialized"])
	assert.Equal(t, float64(4), body["activeSessions"])
	assert.Equal(t, 0.001, body["pricePerSecond"])
}

type fakeLedger struct {
	snapshot core.LedgerSnapshot
}

func (f *fakeLedger) Snapshot() core.LedgerSnapshot { return f.snapshot }

func TestGetLedger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ledger := &fakeLedger{snapshot: core.LedgerSnapshot{
		{UserID: "u1", TotalSeconds: 8},
	}}

	router := gin.New()
	router.GET("/api/ledger", NewLedgerHandler(ledger).GetLedger)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))

	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(1), body["totalUsers"])
}
