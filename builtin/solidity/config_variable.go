// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/thor"
)

// ConfigVariable is a tunable with a compiled-in default that storage may override.
// The slot holds value+1, so an empty slot means "use the default" and zero stays representable.
type ConfigVariable struct {
	slot  thor.Bytes32
	name  string
	value uint64
}

func NewConfigVariable(name string, defaultValue uint64) *ConfigVariable {
	return &ConfigVariable{
		slot:  thor.BytesToBytes32([]byte(name)),
		name:  name,
		value: defaultValue,
	}
}

func (c *ConfigVariable) Name() string {
	return c.name
}

func (c *ConfigVariable) Slot() thor.Bytes32 {
	return c.slot
}

// Reset drops the override.
func (c *ConfigVariable) Reset(ctx *Context) {
	NewUint256(ctx, c.slot).SetUint64(0)
}

func (c *ConfigVariable) Default() uint64 {
	return c.value
}

// Get returns the stored override, or the default when none is stored.
func (c *ConfigVariable) Get(ctx *Context) (uint64, error) {
	v, err := NewUint256(ctx, c.slot).GetUint64()
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return c.value, nil
	}
	return v - 1, nil
}

// Override stores v.
func (c *ConfigVariable) Override(ctx *Context, v uint64) {
	NewUint256(ctx, c.slot).SetUint64(v + 1)
	log.Debug("config value overridden", "slot", c.name, "value", v)
}
