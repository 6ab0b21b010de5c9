// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package rewards

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/builtin/hub/reverts"
	"github.com/vechain/stakehub/builtin/solidity"
	"github.com/vechain/stakehub/lvldb"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.HubAddress, state.New(db, 0)))
}

func TestService_Round(t *testing.T) {
	svc := newSvc(t)
	latest, err := svc.Latest()
	require.NoError(t, err)
	assert.Nil(t, latest)

	r, err := svc.Open(2)
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Equal(t, uint64(1), r.ID)

	// a second harvest while withdrawals are outstanding does nothing
	again, err := svc.Open(2)
	require.NoError(t, err)
	assert.Nil(t, again)

	r, done, err := svc.Record(1, big.NewInt(60))
	require.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, uint64(1), r.Outstanding)

	// failed withdrawal counts as zero
	r, done, err = svc.Record(1, new(big.Int))
	require.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, big.NewInt(60), r.Accumulated)
	assert.False(t, r.IsOpen())

	_, _, err = svc.Record(1, big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.InvalidState))

	r, err = svc.Open(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), r.ID)

	_, _, err = svc.Record(7, big.NewInt(1))
	assert.True(t, reverts.Is(err, reverts.NotFound))
}

func TestService_OpenWithoutWithdrawals(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.Open(0)
	assert.True(t, reverts.Is(err, reverts.InvalidState))
}

func TestService_Totals(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.Account(big.NewInt(100), big.NewInt(10), big.NewInt(90)))
	require.NoError(t, svc.Account(big.NewInt(50), big.NewInt(5), big.NewInt(45)))

	totals, err := svc.Totals()
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(150), totals.Harvested)
	assert.Equal(t, big.NewInt(15), totals.Fees)
	assert.Equal(t, big.NewInt(135), totals.Reinvested)
}
