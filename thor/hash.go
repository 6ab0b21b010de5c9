// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"hash"
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// NewBlake2b return blake2b-256 hash.
func NewBlake2b() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// Blake2b computes blake2b-256 checksum for given data.
func Blake2b(data ...[]byte) Bytes32 {
	if len(data) == 1 {
		return blake2b.Sum256(data[0])
	}
	return Blake2bFn(func(w io.Writer) {
		for _, b := range data {
			w.Write(b)
		}
	})
}

// Blake2bFn computes blake2b-256 checksum for the provided writer.
func Blake2bFn(fn func(w io.Writer)) (h Bytes32) {
	w := blake2bPool.Get().(*pooledHash)
	fn(w)
	w.Sum(w.out[:0])
	h = w.out
	w.Reset()
	blake2bPool.Put(w)
	return
}

// Keccak256 computes the legacy keccak-256 checksum, used for event topics.
func Keccak256(data ...[]byte) (h Bytes32) {
	w := keccakPool.Get().(*pooledHash)
	for _, b := range data {
		w.Write(b)
	}
	w.Sum(w.out[:0])
	h = w.out
	w.Reset()
	keccakPool.Put(w)
	return
}

type pooledHash struct {
	hash.Hash
	out Bytes32
}

var (
	blake2bPool = sync.Pool{
		New: func() any { return &pooledHash{Hash: NewBlake2b()} },
	}
	keccakPool = sync.Pool{
		New: func() any { return &pooledHash{Hash: sha3.NewLegacyKeccak256()} },
	}
)
