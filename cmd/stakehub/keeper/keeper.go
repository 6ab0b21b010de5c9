// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package keeper

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/metrics"
	"github.com/vechain/stakehub/runtime"
)

var (
	logger = log.WithContext("pkg", "keeper")

	metricSteps = metrics.LazyLoadCounterVec("keeper_steps_count", []string{"type", "outcome"})
)

// Config for the epoch keeper.
type Config struct {
	Clock         clockwork.Clock
	EpochInterval time.Duration
	// HarvestEvery is the number of epochs between harvests. Zero disables harvesting.
	HarvestEvery uint64
	// OnStep, if set, is called after every delivered tick.
	OnStep func(epoch uint64, at time.Time)
}

func (cfg *Config) validate() error {
	if cfg.EpochInterval < time.Second {
		return errors.New("epoch interval must be at least one second")
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	return nil
}

// Keeper delivers the periodic host requests: one tick per epoch and an optional harvest.
type Keeper struct {
	rt  *runtime.Runtime
	cfg Config
}

func New(rt *runtime.Runtime, cfg Config) (*Keeper, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Keeper{rt: rt, cfg: cfg}, nil
}

// Epoch returns the epoch number containing t. Epochs are aligned to the unix epoch,
// so a restarted keeper never reuses an epoch.
func (k *Keeper) Epoch(t time.Time) uint64 {
	return uint64(t.Unix()) / uint64(k.cfg.EpochInterval/time.Second)
}

// Run ticks until ctx is done. Only system failures are returned.
func (k *Keeper) Run(ctx context.Context) error {
	logger.Info("keeper started", "interval", k.cfg.EpochInterval, "harvestEvery", k.cfg.HarvestEvery)

	ticker := k.cfg.Clock.NewTicker(k.cfg.EpochInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logger.Info("keeper stopped")
			return nil
		case now := <-ticker.Chan():
			if err := k.Step(now); err != nil {
				return err
			}
		}
	}
}

// Step delivers the requests due at now.
func (k *Keeper) Step(now time.Time) error {
	epoch := k.Epoch(now)
	env := runtime.Env{Time: uint64(now.Unix())}

	e := math.HexOrDecimal64(epoch)
	receipt, err := k.execute(&runtime.Request{Type: runtime.TypeTick, Epoch: &e}, env)
	if err != nil {
		return err
	}
	if receipt.Outputs != nil && receipt.Outputs.BatchID != nil {
		logger.Info("batch submitted",
			"epoch", epoch,
			"batch", uint64(*receipt.Outputs.BatchID),
			"operations", len(receipt.Operations),
		)
	}
	if k.cfg.OnStep != nil {
		k.cfg.OnStep(epoch, now)
	}

	if k.cfg.HarvestEvery == 0 || epoch%k.cfg.HarvestEvery != 0 {
		return nil
	}
	receipt, err = k.execute(&runtime.Request{Type: runtime.TypeHarvest}, env)
	if err != nil {
		return err
	}
	if receipt.Outputs != nil && receipt.Outputs.Round != nil {
		logger.Info("harvest started", "epoch", epoch, "round", uint64(*receipt.Outputs.Round), "operations", len(receipt.Operations))
	}
	return nil
}

func (k *Keeper) execute(req *runtime.Request, env runtime.Env) (*runtime.Receipt, error) {
	receipt, err := k.rt.Execute(req, env)
	if err != nil {
		metricSteps().AddWithLabel(1, map[string]string{"type": req.Type, "outcome": "failed"})
		return nil, errors.WithMessagef(err, "keeper %s", req.Type)
	}
	outcome := "ok"
	if receipt.Reverted {
		outcome = "reverted"
		logger.Warn("keeper request reverted", "type", req.Type, "kind", receipt.RevertKind, "err", receipt.RevertMessage)
	}
	metricSteps().AddWithLabel(1, map[string]string{"type": req.Type, "outcome": outcome})
	return receipt, nil
}
