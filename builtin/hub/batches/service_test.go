// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package batches

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

var (
	alice = thor.BytesToAddress([]byte("alice"))
	bob   = thor.BytesToAddress([]byte("bob"))
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.HubAddress, state.New(db, 0)))
}

func TestService_RequestAndClose(t *testing.T) {
	svc := newSvc(t)

	cur, err := svc.Current()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), cur.ID)
	assert.Equal(t, StateAccepting, cur.State)
	assert.True(t, cur.IsEmpty())

	_, err = svc.Request(alice, big.NewInt(0))
	assert.True(t, reverts.Is(err, reverts.InvalidAmount))

	_, err = svc.Request(alice, big.NewInt(300))
	require.NoError(t, err)
	_, err = svc.Request(alice, big.NewInt(200))
	require.NoError(t, err)
	b, err := svc.Request(bob, big.NewInt(100))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(600), b.Burned)

	ids, _ := svc.UserBatches(alice)
	assert.Equal(t, []uint64{1}, ids)

	closed, err := svc.Close(7, big.NewInt(654), 1000)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, closed.State)
	assert.Equal(t, uint64(7), closed.SubmittedAtEpoch)
	assert.Equal(t, uint64(1000), closed.EstUnbondEndTime)

	// late requests land in the next batch
	next, err := svc.Request(alice, big.NewInt(50))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), next.ID)
	closed, _ = svc.Get(1)
	assert.Equal(t, big.NewInt(600), closed.Burned)

	ids, _ = svc.UserBatches(alice)
	assert.Equal(t, []uint64{1, 2}, ids)

	_, err = svc.Get(3)
	assert.True(t, reverts.Is(err, reverts.NotFound))
	_, err = svc.Get(0)
	assert.True(t, reverts.Is(err, reverts.NotFound))
}

func TestService_CloseEmpty(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.Close(1, new(big.Int), 0)
	assert.True(t, reverts.Is(err, reverts.InvalidState))
}

func TestService_Advance(t *testing.T) {
	svc := newSvc(t)
	ok, err := svc.Advance(1)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _ = svc.Advance(1)
	assert.False(t, ok)
	ok, _ = svc.Advance(0)
	assert.False(t, ok)
	ok, _ = svc.Advance(5)
	assert.True(t, ok)

	last, _ := svc.LastEpoch()
	assert.Equal(t, uint64(5), last)
}

func TestService_MatureAndClaim(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.Request(alice, big.NewInt(500))
	require.NoError(t, err)
	_, err = svc.Close(1, big.NewInt(545), 100)
	require.NoError(t, err)

	_, err = svc.Claim(alice, 1)
	assert.True(t, reverts.Is(err, reverts.BatchNotMatured))

	_, err = svc.Mature(1, big.NewInt(545), 99, true)
	assert.True(t, reverts.Is(err, reverts.BatchNotMatured))

	settlement, err := svc.Mature(1, big.NewInt(545), 100, true)
	require.NoError(t, err)
	assert.Equal(t, 0, settlement.Shortfall.Sign())
	assert.Equal(t, 0, settlement.Surplus.Sign())

	_, err = svc.Mature(1, big.NewInt(545), 100, true)
	assert.True(t, reverts.Is(err, reverts.InvalidState))

	_, err = svc.Claim(bob, 1)
	assert.True(t, reverts.Is(err, reverts.NothingToClaim))

	amount, err := svc.Claim(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(545), amount)

	_, err = svc.Claim(alice, 1)
	assert.True(t, reverts.Is(err, reverts.NothingToClaim))
	_, err = svc.Claim(alice, 9)
	assert.True(t, reverts.Is(err, reverts.NothingToClaim))

	ids, _ := svc.UserBatches(alice)
	assert.Empty(t, ids)

	// retained after settlement
	b, err := svc.Get(1)
	require.NoError(t, err)
	assert.Equal(t, StateMatured, b.State)
	assert.Equal(t, 0, b.UnclaimedNative.Sign())
}

func TestService_MatureAccepting(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.Request(alice, big.NewInt(1))
	require.NoError(t, err)
	_, err = svc.Mature(1, big.NewInt(1), 0, true)
	assert.True(t, reverts.Is(err, reverts.InvalidState))
}

func TestService_Shortfall(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.Request(alice, big.NewInt(100))
	require.NoError(t, err)
	_, err = svc.Request(bob, big.NewInt(200))
	require.NoError(t, err)
	_, err = svc.Close(1, big.NewInt(300), 0)
	require.NoError(t, err)

	settlement, err := svc.Mature(1, big.NewInt(250), 0, true)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(50), settlement.Shortfall)

	a, err := svc.Claim(alice, 1)
	require.NoError(t, err)
	b, err := svc.Claim(bob, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(83), a)
	assert.Equal(t, big.NewInt(167), b)
	assert.Equal(t, big.NewInt(250), new(big.Int).Add(a, b))
}

func TestService_Surplus(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.Request(alice, big.NewInt(100))
	require.NoError(t, err)
	_, err = svc.Close(1, big.NewInt(100), 0)
	require.NoError(t, err)

	settlement, err := svc.Mature(1, big.NewInt(110), 0, true)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10), settlement.Surplus)
	amount, err := svc.Claim(alice, 1)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(100), amount)

	// with nobody left in the pool the claimants keep the surplus
	_, err = svc.Request(bob, big.NewInt(100))
	require.NoError(t, err)
	_, err = svc.Close(2, big.NewInt(100), 0)
	require.NoError(t, err)
	settlement, err = svc.Mature(2, big.NewInt(110), 0, false)
	require.NoError(t, err)
	assert.Equal(t, 0, settlement.Surplus.Sign())
	amount, err = svc.Claim(bob, 2)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(110), amount)
}

func TestService_ClaimAllAndRequests(t *testing.T) {
	svc := newSvc(t)
	_, _, err := svc.ClaimAll(alice)
	assert.True(t, reverts.Is(err, reverts.NothingToClaim))

	for epoch := uint64(1); epoch <= 3; epoch++ {
		_, err = svc.Request(alice, big.NewInt(10))
		require.NoError(t, err)
		_, err = svc.Close(epoch, big.NewInt(12), epoch*10)
		require.NoError(t, err)
	}
	_, err = svc.Mature(1, big.NewInt(12), 10, true)
	require.NoError(t, err)
	_, err = svc.Mature(3, big.NewInt(12), 30, true)
	require.NoError(t, err)

	reqs, err := svc.Requests(alice)
	require.NoError(t, err)
	require.Len(t, reqs, 3)
	assert.Equal(t, big.NewInt(12), reqs[0].Claimable)
	assert.Equal(t, StateSubmitted, reqs[1].State)
	assert.Equal(t, 0, reqs[1].Claimable.Sign())
	assert.Equal(t, uint64(20), reqs[1].EndTime)

	total, claimed, err := svc.ClaimAll(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(24), total)
	assert.Equal(t, []uint64{1, 3}, claimed)

	ids, _ := svc.UserBatches(alice)
	assert.Equal(t, []uint64{2}, ids)

	_, _, err = svc.ClaimAll(alice)
	assert.True(t, reverts.Is(err, reverts.NothingToClaim))
}

func TestService_Owed(t *testing.T) {
	svc := newSvc(t)
	owed, err := svc.Owed(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, owed.Sign())

	require.NoError(t, svc.Owe(alice, big.NewInt(30)))
	require.NoError(t, svc.Owe(alice, big.NewInt(12)))
	owed, _ = svc.Owed(alice)
	assert.Equal(t, big.NewInt(42), owed)
	owed, _ = svc.Owed(bob)
	assert.Equal(t, 0, owed.Sign())

	// an owed payout alone is claimable
	total, claimed, err := svc.ClaimAll(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), total)
	assert.Empty(t, claimed)
	owed, _ = svc.Owed(alice)
	assert.Equal(t, 0, owed.Sign())

	_, err = svc.Request(alice, big.NewInt(10))
	require.NoError(t, err)
	_, err = svc.Close(1, big.NewInt(10), 10)
	require.NoError(t, err)
	_, err = svc.Mature(1, big.NewInt(10), 10, true)
	require.NoError(t, err)
	require.NoError(t, svc.Owe(alice, big.NewInt(5)))

	total, claimed, err = svc.ClaimAll(alice)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(15), total)
	assert.Equal(t, []uint64{1}, claimed)

	taken, err := svc.TakeOwed(alice)
	require.NoError(t, err)
	assert.Equal(t, 0, taken.Sign())
	_, _, err = svc.ClaimAll(alice)
	assert.True(t, reverts.Is(err, reverts.NothingToClaim))
}

func TestService_NoValueCreation(t *testing.T) {
	svc := newSvc(t)
	users := []thor.Address{alice, bob, thor.BytesToAddress([]byte("carol"))}
	for i, u := range users {
		_, err := svc.Request(u, big.NewInt(int64(7*(i+1))))
		require.NoError(t, err)
	}
	_, err := svc.Close(1, big.NewInt(50), 0)
	require.NoError(t, err)
	_, err = svc.Mature(1, big.NewInt(43), 0, true)
	require.NoError(t, err)

	paid := new(big.Int)
	for _, u := range users {
		amount, err := svc.Claim(u, 1)
		require.NoError(t, err)
		paid.Add(paid, amount)
	}
	assert.LessOrEqual(t, paid.Cmp(big.NewInt(43)), 0)
}
