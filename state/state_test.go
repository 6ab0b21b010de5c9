// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakehub/kv"
	"github.com/vechain/stakehub/lvldb"
	"github.com/vechain/stakehub/thor"
)

func newState(t *testing.T) (*State, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db, 0), db
}

func TestStorage(t *testing.T) {
	st, _ := newState(t)
	addr := thor.BytesToAddress([]byte("acc"))
	key := thor.BytesToBytes32([]byte("key"))

	v, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())

	value := thor.BytesToBytes32([]byte{1, 2, 3})
	st.SetStorage(addr, key, value)
	v, err = st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, value, v)

	// other address does not see it
	v, err = st.GetStorage(thor.BytesToAddress([]byte("other")), key)
	assert.NoError(t, err)
	assert.True(t, v.IsZero())

	st.SetStorage(addr, key, thor.Bytes32{})
	raw, err := st.GetRawStorage(addr, key)
	assert.NoError(t, err)
	assert.Empty(t, raw)
}

func TestStructuredStorage(t *testing.T) {
	st, _ := newState(t)
	addr := thor.BytesToAddress([]byte("acc"))
	key := thor.BytesToBytes32([]byte("list"))

	type pair struct{ A, B uint64 }
	require.NoError(t, st.EncodeStorage(addr, key, func() ([]byte, error) {
		return rlp.EncodeToBytes(&pair{1, 2})
	}))

	var got pair
	require.NoError(t, st.DecodeStorage(addr, key, func(raw []byte) error {
		return rlp.DecodeBytes(raw, &got)
	}))
	assert.Equal(t, pair{1, 2}, got)

	raw, _ := st.GetRawStorage(addr, key)
	digest, err := st.GetStorage(addr, key)
	assert.NoError(t, err)
	assert.Equal(t, thor.Blake2b(raw), digest)

	err = st.EncodeStorage(addr, key, func() ([]byte, error) { return nil, errors.New("enc") })
	assert.EqualError(t, err, "state: enc")

	st.SetRawStorage(addr, key, rlp.RawValue{0xFF})
	_, err = st.GetStorage(addr, key)
	assert.Error(t, err)
}

func TestCheckpointRevert(t *testing.T) {
	st, _ := newState(t)
	addr := thor.BytesToAddress([]byte("acc"))
	k1, k2 := thor.BytesToBytes32([]byte("k1")), thor.BytesToBytes32([]byte("k2"))

	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{1}))
	cp := st.NewCheckpoint()
	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{2}))
	st.SetStorage(addr, k2, thor.BytesToBytes32([]byte{3}))

	inner := st.NewCheckpoint()
	st.SetStorage(addr, k2, thor.BytesToBytes32([]byte{4}))
	st.RevertTo(inner)

	v, _ := st.GetStorage(addr, k2)
	assert.Equal(t, thor.BytesToBytes32([]byte{3}), v)

	st.RevertTo(cp)
	v, _ = st.GetStorage(addr, k1)
	assert.Equal(t, thor.BytesToBytes32([]byte{1}), v)
	v, _ = st.GetStorage(addr, k2)
	assert.True(t, v.IsZero())

	// reverting to zero keeps the state writable
	st.RevertTo(0)
	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{9}))
	v, _ = st.GetStorage(addr, k1)
	assert.Equal(t, thor.BytesToBytes32([]byte{9}), v)
}

func TestCommit(t *testing.T) {
	st, db := newState(t)
	addr := thor.BytesToAddress([]byte("acc"))
	k1, k2 := thor.BytesToBytes32([]byte("k1")), thor.BytesToBytes32([]byte("k2"))

	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{1}))
	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{2}))
	st.SetStorage(addr, k2, thor.BytesToBytes32([]byte{3}))
	assert.Equal(t, 3, st.Dirty())

	require.NoError(t, st.Commit())
	assert.Equal(t, 0, st.Dirty())

	// a fresh state over the same store sees committed values
	fresh := New(db, 16)
	v, err := fresh.GetStorage(addr, k1)
	assert.NoError(t, err)
	assert.Equal(t, thor.BytesToBytes32([]byte{2}), v)

	st.SetStorage(addr, k2, thor.Bytes32{})
	require.NoError(t, st.Commit())
	has, err := db.Has(storageKey{addr, k2}.dbKey())
	assert.NoError(t, err)
	assert.False(t, has)

	st.SetStorage(addr, k1, thor.BytesToBytes32([]byte{7}))
	st.Discard()
	v, _ = st.GetStorage(addr, k1)
	assert.Equal(t, thor.BytesToBytes32([]byte{2}), v)

	it := db.Iterate(kv.PrefixRange([]byte(storagePrefix)))
	defer it.Release()
	n := 0
	for it.Next() {
		n++
	}
	assert.Equal(t, 1, n)
}
