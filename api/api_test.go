// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/api/middleware"
	"github.com/vechain/stakehub/genesis"
	"github.com/vechain/stakehub/lvldb"
	"github.com/vechain/stakehub/metrics"
	"github.com/vechain/stakehub/runtime"
	"github.com/vechain/stakehub/state"
)

func newRuntime(t *testing.T) *runtime.Runtime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gen := genesis.Default()
	st := state.New(db, 0)
	require.NoError(t, gen.Build(st))
	params, err := gen.Params()
	require.NoError(t, err)
	return runtime.New(st, params)
}

func TestNew(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	handler := New(newRuntime(t), Options{
		AllowedOrigins: "http://example.com",
		HostToken:      "secret",
		EnableMetrics:  true,
		Clock:          clockwork.NewFakeClock(),
	})
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/hub/pool", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://example.com")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "http://example.com", res.Header.Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, res.Header.Get(middleware.RequestIDHeader))

	res, err = http.Post(ts.URL+"/requests", "application/json", bytes.NewBufferString(`{"type":"tick","epoch":"1"}`))
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusForbidden, res.StatusCode)

	res, err = http.Get(ts.URL + "/hub/unknown")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics.InitializePrometheusMetrics()
	ts := httptest.NewServer(New(newRuntime(t), Options{EnableMetrics: true}))
	t.Cleanup(ts.Close)

	res, err := http.Get(ts.URL + "/hub/config")
	require.NoError(t, err)
	res.Body.Close()

	rec := httptest.NewRecorder()
	metrics.HTTPHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, rec.Body.String(), `stakehub_api_request_count{code="200",method="GET",name="hub_get_config"}`)
}
