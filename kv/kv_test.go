// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefixRange(t *testing.T) {
	tests := []struct {
		prefix []byte
		start  []byte
		limit  []byte
	}{
		{[]byte("s"), []byte("s"), []byte("t")},
		{[]byte{0x01, 0xff}, []byte{0x01, 0xff}, []byte{0x02}},
		{[]byte{0xff, 0xff}, []byte{0xff, 0xff}, nil},
		{nil, []byte{}, nil},
	}
	for _, tt := range tests {
		r := PrefixRange(tt.prefix)
		assert.Equal(t, tt.start, r.Start)
		assert.Equal(t, tt.limit, r.Limit)
	}
}
