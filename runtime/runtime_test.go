// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/builtin/feesplit"
	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/lvldb"
	"github.com/vechain/stakehub/stakemsg"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

var (
	admin     = thor.BytesToAddress([]byte("admin"))
	alice     = thor.BytesToAddress([]byte("alice"))
	validator = thor.BytesToAddress([]byte("v1"))
)

func newRuntime(t *testing.T) *Runtime {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	splitter, err := feesplit.NewWeighted([]feesplit.Recipient{{Address: thor.BytesToAddress([]byte("fee")), Weight: 1}})
	require.NoError(t, err)
	st := state.New(db, 16)
	rt := New(st, hub.Params{Address: thor.HubAddress, Token: thor.TokenAddress, Denom: "uvet", Splitter: splitter})

	hub.New(st, rt.Params()).SetAdmin(admin)
	require.NoError(t, st.Commit())
	return rt
}

func amount(v int64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(big.NewInt(v))
}

func execute(t *testing.T, rt *Runtime, req *Request) *Receipt {
	receipt, err := rt.Execute(req, Env{Time: 100, Height: 1})
	require.NoError(t, err)
	return receipt
}

func TestExecute_Bond(t *testing.T) {
	rt := newRuntime(t)

	receipt := execute(t, rt, &Request{Type: TypeAddValidator, Sender: admin, Validator: &validator})
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, "stakehub/validator_added", receipt.Events[0].Name)
	assert.Equal(t, thor.Keccak256([]byte("stakehub/validator_added")), receipt.Events[0].Topic)

	receipt = execute(t, rt, &Request{Type: TypeBond, Sender: alice, Amount: amount(1000)})
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	assert.Equal(t, big.NewInt(1000), (*big.Int)(receipt.Outputs.Minted))
	require.Len(t, receipt.Operations, 1)
	assert.Equal(t, "delegate", receipt.Operations[0].Kind)

	env, err := stakemsg.Decode(receipt.Operations[0].Data)
	require.NoError(t, err)
	assert.Equal(t, receipt.Operations[0].ID, env.OpID)

	err = rt.View(func(h *hub.Hub) error {
		bal, err := h.Token().BalanceOf(alice)
		assert.Equal(t, big.NewInt(1000), bal)
		return err
	})
	require.NoError(t, err)
}

func TestExecute_RevertLeavesStateUntouched(t *testing.T) {
	rt := newRuntime(t)

	// the pool moves before the missing validator is noticed
	receipt := execute(t, rt, &Request{Type: TypeBond, Sender: alice, Amount: amount(1000)})
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "NotFound", receipt.RevertKind)
	assert.Empty(t, receipt.Operations)
	assert.Nil(t, receipt.Outputs)

	require.NoError(t, rt.View(func(h *hub.Hub) error {
		pool, err := h.Ledger().Pool()
		assert.Equal(t, 0, pool.Native.Sign())
		assert.Equal(t, 0, pool.Supply.Sign())
		return err
	}))

	receipt = execute(t, rt, &Request{Type: TypeAddValidator, Sender: alice, Validator: &validator})
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "Unauthorized", receipt.RevertKind)

	receipt = execute(t, rt, &Request{Type: "mint"})
	assert.Equal(t, "EncodingError", receipt.RevertKind)

	receipt = execute(t, rt, &Request{Type: TypeUnbond, Sender: alice})
	assert.Equal(t, "EncodingError", receipt.RevertKind)
	assert.Contains(t, receipt.RevertMessage, "missing amount")
}

func TestExecute_Lifecycle(t *testing.T) {
	rt := newRuntime(t)
	execute(t, rt, &Request{Type: TypeAddValidator, Sender: admin, Validator: &validator})
	rate := math.HexOrDecimal64(1000)
	execute(t, rt, &Request{Type: TypeUpdateFee, Sender: admin, Rate: &rate})
	period := math.HexOrDecimal64(50)
	execute(t, rt, &Request{Type: TypeSetUnbondPeriod, Sender: admin, Seconds: &period})

	confirm := func(op *Operation, reward int64) *Receipt {
		payload, err := stakemsg.EncodeConfirmation(&stakemsg.Confirmation{OpID: op.ID, Success: true, Amount: big.NewInt(reward)})
		require.NoError(t, err)
		r := execute(t, rt, &Request{Type: TypeConfirm, Payload: payload})
		require.False(t, r.Reverted, r.RevertMessage)
		return r
	}

	bond := execute(t, rt, &Request{Type: TypeBond, Sender: alice, Amount: amount(1000)})
	confirm(bond.Operations[0], 0)

	harvest := execute(t, rt, &Request{Type: TypeHarvest, Sender: alice})
	require.Len(t, harvest.Operations, 1)
	assert.Equal(t, uint64(1), uint64(*harvest.Outputs.Round))
	done := confirm(harvest.Operations[0], 100)
	assert.Equal(t, big.NewInt(100), (*big.Int)(done.Outputs.Distributed))
	for _, op := range done.Operations {
		confirm(op, 0)
	}

	unbond := execute(t, rt, &Request{Type: TypeUnbond, Sender: alice, Amount: amount(500)})
	assert.Equal(t, big.NewInt(545), (*big.Int)(unbond.Outputs.Native))

	epoch := math.HexOrDecimal64(1)
	tick := execute(t, rt, &Request{Type: TypeTick, Epoch: &epoch})
	require.NotNil(t, tick.Outputs.BatchID)
	assert.Equal(t, big.NewInt(545), (*big.Int)(tick.Outputs.Native))
	for _, op := range tick.Operations {
		confirm(op, 0)
	}

	payload, err := stakemsg.EncodeUnbondCompletion(&stakemsg.UnbondCompletion{BatchID: 1, Amount: big.NewInt(545)})
	require.NoError(t, err)
	receipt, err := rt.Execute(&Request{Type: TypeBatchConfirmed, Payload: payload}, Env{Time: 150})
	require.NoError(t, err)
	require.False(t, receipt.Reverted, receipt.RevertMessage)

	batch := math.HexOrDecimal64(1)
	withdraw := execute(t, rt, &Request{Type: TypeWithdrawUnbonded, Sender: alice, BatchID: &batch})
	require.False(t, withdraw.Reverted, withdraw.RevertMessage)
	assert.Equal(t, big.NewInt(545), (*big.Int)(withdraw.Outputs.Native))
	require.Len(t, withdraw.Operations, 1)
	assert.Equal(t, "send", withdraw.Operations[0].Kind)
}

func TestExecute_SyncDelegation(t *testing.T) {
	rt := newRuntime(t)
	execute(t, rt, &Request{Type: TypeAddValidator, Sender: admin, Validator: &validator})
	bond := execute(t, rt, &Request{Type: TypeBond, Sender: alice, Amount: amount(1000)})
	require.False(t, bond.Reverted, bond.RevertMessage)

	receipt := execute(t, rt, &Request{Type: TypeSyncDelegation, Validator: &validator})
	assert.Equal(t, "EncodingError", receipt.RevertKind)

	receipt = execute(t, rt, &Request{Type: TypeSyncDelegation, Validator: &validator, Amount: amount(900)})
	require.False(t, receipt.Reverted, receipt.RevertMessage)
	assert.Equal(t, big.NewInt(900), (*big.Int)(receipt.Outputs.Native))
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, "stakehub/delegation_synced", receipt.Events[0].Name)

	receipt = execute(t, rt, &Request{Type: TypeBond, Sender: alice, Amount: amount(100)})
	assert.True(t, receipt.Reverted)
	assert.Equal(t, "RateRegression", receipt.RevertKind)

	unbond := execute(t, rt, &Request{Type: TypeUnbond, Sender: alice, Amount: amount(500)})
	require.False(t, unbond.Reverted, unbond.RevertMessage)
	assert.Equal(t, big.NewInt(450), (*big.Int)(unbond.Outputs.Native))
	assert.True(t, IsHostType(TypeSyncDelegation))
}

func TestRequest_JSON(t *testing.T) {
	var req Request
	err := json.Unmarshal([]byte(`{
		"type": "bond",
		"sender": "0x0000000000000000000000000000000000616c69",
		"amount": "1000",
		"receiver": "0x0000000000000000000000000000000000000b0b",
		"batchId": "0x2"
	}`), &req)
	require.NoError(t, err)
	assert.Equal(t, TypeBond, req.Type)
	assert.Equal(t, big.NewInt(1000), (*big.Int)(req.Amount))
	assert.Equal(t, thor.BytesToAddress([]byte{0x0b, 0x0b}), *req.Receiver)
	assert.Equal(t, math.HexOrDecimal64(2), *req.BatchID)

	assert.True(t, IsHostType(TypeTick))
	assert.False(t, IsHostType(TypeBond))
}
