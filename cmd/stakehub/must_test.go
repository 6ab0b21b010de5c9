// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/vechain/stakehub/thor"
)

func TestHandleXGenesisID(t *testing.T) {
	id := thor.Bytes32{1}
	handler := handleXGenesisID(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}), id)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/hub/pool", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id.String(), rec.Header().Get("x-genesis-id"))

	req := httptest.NewRequest(http.MethodGet, "/hub/pool", nil)
	req.Header.Set("x-genesis-id", thor.Bytes32{2}.String())
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestStartServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	group, groupCtx := errgroup.WithContext(ctx)

	url, err := startServer(groupCtx, group, "localhost:0", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("hub"))
	}))
	require.NoError(t, err)

	res, err := http.Get(url)
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	res.Body.Close()
	assert.Equal(t, "hub", string(body))

	cancel()
	assert.NoError(t, group.Wait())

	_, err = startServer(context.Background(), new(errgroup.Group), "invalid-addr", http.NotFoundHandler())
	assert.Error(t, err)
}
