// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"fmt"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func Test_Reverts(t *testing.T) {
	revert := New(NothingToClaim, "test")
	assert.Equal(t, "test", revert.message)
	assert.Equal(t, "test", revert.Message())
	assert.Equal(t, "NothingToClaim: test", revert.Error())
	assert.Equal(t, NothingToClaim, revert.Kind())

	assert.True(t, IsRevertErr(revert))
	assert.False(t, IsRevertErr(nil))
	assert.False(t, IsRevertErr(fmt.Errorf("test")))
	assert.False(t, IsRevertErr(big.NewInt(0)))
}

func Test_Is(t *testing.T) {
	wrapped := errors.Wrap(Newf(InsufficientBalance, "have %d, want %d", 1, 2), "unbond")
	assert.True(t, IsRevertErr(wrapped))
	assert.True(t, Is(wrapped, InsufficientBalance))
	assert.False(t, Is(wrapped, InvalidAmount))
	assert.False(t, Is(errors.New("io"), InvalidAmount))
	assert.Equal(t, InsufficientBalance, KindOf(wrapped))
	assert.Equal(t, Kind(0), KindOf(errors.New("io")))
	assert.Contains(t, wrapped.Error(), "have 1, want 2")
}

func Test_KindString(t *testing.T) {
	for k := InvalidAmount; k <= InvalidState; k++ {
		assert.NotContains(t, k.String(), "Kind(")
	}
	assert.Equal(t, "Kind(99)", Kind(99).String())
}
