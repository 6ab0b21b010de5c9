// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/genesis"
	"github.com/vechain/stakehub/lvldb"
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

func TestHealth_WithoutKeeper(t *testing.T) {
	h := New(newRuntime(t), nil)

	status, err := h.Status(0)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	assert.False(t, status.Halted)
	assert.Nil(t, status.Keeper)

	status, err = h.Status(time.Minute)
	require.NoError(t, err)
	assert.False(t, status.Healthy)
}

func TestHealth_Ticked(t *testing.T) {
	clock := clockwork.NewFakeClock()
	h := New(newRuntime(t), clock)

	h.Ticked(7, clock.Now())
	status, err := h.Status(time.Minute)
	require.NoError(t, err)
	assert.True(t, status.Healthy)
	require.NotNil(t, status.Keeper)
	assert.Equal(t, uint64(7), status.Keeper.LastEpoch)

	clock.Advance(2 * time.Minute)
	status, err = h.Status(time.Minute)
	require.NoError(t, err)
	assert.False(t, status.Healthy)
}
