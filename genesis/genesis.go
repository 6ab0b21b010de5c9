// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakehub/builtin/feesplit"
	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/builtin/hub/ledger"
	"github.com/vechain/stakehub/state"
	"github.com/vechain/stakehub/thor"
)

var slotGenesisID = thor.BytesToBytes32([]byte("genesis-id"))

// Genesis is the initial configuration of a hub.
type Genesis struct {
	Hub              thor.Address   `yaml:"hub"`
	Token            thor.Address   `yaml:"token"`
	Admin            thor.Address   `yaml:"admin"`
	Denom            string         `yaml:"denom"`
	UnbondPeriod     uint64         `yaml:"unbondPeriod"`
	RateTolerance    uint64         `yaml:"rateTolerance"`
	MinRebalanceMove uint64         `yaml:"minRebalanceMove"`
	FeeRate          uint64         `yaml:"feeRate"`
	MaxFeeRate       uint64         `yaml:"maxFeeRate"`
	FeeRecipients    []Recipient    `yaml:"feeRecipients"`
	Validators       []thor.Address `yaml:"validators"`
}

type Recipient struct {
	Address thor.Address `yaml:"address"`
	Weight  uint64       `yaml:"weight"`
}

// Load reads a genesis from a YAML file.
func Load(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read genesis")
	}
	return Parse(data)
}

// Parse decodes a YAML genesis. Unknown fields are rejected.
func Parse(data []byte) (*Genesis, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var gen Genesis
	if err := dec.Decode(&gen); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	if err := gen.Validate(); err != nil {
		return nil, err
	}
	return &gen, nil
}

func (g *Genesis) Validate() error {
	switch {
	case g.Hub.IsZero():
		return errors.New("hub address must be set")
	case g.Token.IsZero():
		return errors.New("token address must be set")
	case g.Hub == g.Token:
		return errors.New("hub and token must not share an address")
	case g.Admin.IsZero():
		return errors.New("admin must be set")
	case g.Denom == "":
		return errors.New("denom must be set")
	case g.MaxFeeRate > thor.BasisPoints:
		return fmt.Errorf("maxFeeRate %d above %d", g.MaxFeeRate, thor.BasisPoints)
	case g.FeeRate > g.MaxFeeRate:
		return fmt.Errorf("feeRate %d above maxFeeRate %d", g.FeeRate, g.MaxFeeRate)
	case g.RateTolerance > thor.BasisPoints:
		return fmt.Errorf("rateTolerance %d above %d", g.RateTolerance, thor.BasisPoints)
	}
	seen := make(map[thor.Address]bool, len(g.Validators))
	for _, v := range g.Validators {
		if v.IsZero() {
			return errors.New("zero validator address")
		}
		if seen[v] {
			return fmt.Errorf("duplicate validator %v", v)
		}
		seen[v] = true
	}
	_, err := g.splitter()
	return err
}

func (g *Genesis) splitter() (*feesplit.Weighted, error) {
	recipients := make([]feesplit.Recipient, 0, len(g.FeeRecipients))
	for _, r := range g.FeeRecipients {
		recipients = append(recipients, feesplit.Recipient{Address: r.Address, Weight: r.Weight})
	}
	w, err := feesplit.NewWeighted(recipients)
	if err != nil {
		return nil, errors.Wrap(err, "fee recipients")
	}
	return w, nil
}

// Params returns the static hub configuration.
func (g *Genesis) Params() (hub.Params, error) {
	w, err := g.splitter()
	if err != nil {
		return hub.Params{}, err
	}
	return hub.Params{Address: g.Hub, Token: g.Token, Denom: g.Denom, Splitter: w}, nil
}

// ID identifies the genesis by the hash of its YAML encoding.
func (g *Genesis) ID() (thor.Bytes32, error) {
	data, err := yaml.Marshal(g)
	if err != nil {
		return thor.Bytes32{}, errors.Wrap(err, "encode genesis")
	}
	return thor.Blake2b(data), nil
}

// Build writes the initial hub state and commits it. A state already built from the same
// genesis is left as is, one built from another genesis is an error.
func (g *Genesis) Build(st *state.State) error {
	id, err := g.ID()
	if err != nil {
		return err
	}
	stored, err := st.GetStorage(g.Hub, slotGenesisID)
	if err != nil {
		return err
	}
	if !stored.IsZero() {
		if stored != id {
			return fmt.Errorf("genesis mismatch: stored %v, given %v", stored, id)
		}
		return nil
	}

	params, err := g.Params()
	if err != nil {
		return err
	}
	h := hub.New(st, params)
	h.SetAdmin(g.Admin)

	sctx := h.Context()
	hub.UnbondPeriod.Override(sctx, g.UnbondPeriod)
	hub.FeeRate.Override(sctx, g.FeeRate)
	hub.MaxFeeRate.Override(sctx, g.MaxFeeRate)
	hub.MinRebalanceMove.Override(sctx, g.MinRebalanceMove)
	ledger.RateTolerance.Override(sctx, g.RateTolerance)

	for _, v := range g.Validators {
		if err := h.AddValidator(g.Admin, v); err != nil {
			st.Discard()
			return errors.Wrapf(err, "add validator %v", v)
		}
	}
	st.SetStorage(g.Hub, slotGenesisID, id)

	if err := st.Commit(); err != nil {
		return errors.Wrap(err, "commit genesis")
	}
	logger.Info("genesis built", "id", id, "hub", g.Hub, "validators", len(g.Validators))
	return nil
}
