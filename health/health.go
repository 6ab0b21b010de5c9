// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/vechain/stakehub/builtin/hub"
	"github.com/vechain/stakehub/runtime"
)

type Keeper struct {
	LastEpoch uint64     `json:"lastEpoch"`
	LastTick  *time.Time `json:"lastTick"`
}

type Status struct {
	Healthy           bool    `json:"healthy"`
	Halted            bool    `json:"halted"`
	PendingOperations uint64  `json:"pendingOperations"`
	Keeper            *Keeper `json:"keeper"`
}

// Health tracks the keeper progress and reads the pool state for the status report.
type Health struct {
	lock      sync.RWMutex
	rt        *runtime.Runtime
	clock     clockwork.Clock
	lastTick  time.Time
	lastEpoch uint64
}

func New(rt *runtime.Runtime, clock clockwork.Clock) *Health {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Health{rt: rt, clock: clock}
}

// Ticked records that the keeper delivered epoch at t.
func (h *Health) Ticked(epoch uint64, t time.Time) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.lastTick = t
	h.lastEpoch = epoch
}

// Status reports unhealthy when bonding is halted, or when maxTimeBetweenTicks is set
// and the keeper has not ticked within it.
func (h *Health) Status(maxTimeBetweenTicks time.Duration) (*Status, error) {
	var status Status
	if err := h.rt.View(func(hb *hub.Hub) error {
		pool, err := hb.Ledger().Pool()
		if err != nil {
			return err
		}
		_, pending, err := hb.Operations().Counts()
		if err != nil {
			return err
		}
		status.Halted = pool.Halted
		status.PendingOperations = pending
		return nil
	}); err != nil {
		return nil, err
	}

	h.lock.RLock()
	defer h.lock.RUnlock()

	ticking := true
	if maxTimeBetweenTicks > 0 {
		ticking = !h.lastTick.IsZero() && h.clock.Since(h.lastTick) <= maxTimeBetweenTicks
	}
	if !h.lastTick.IsZero() {
		lastTick := h.lastTick
		status.Keeper = &Keeper{LastEpoch: h.lastEpoch, LastTick: &lastTick}
	}
	status.Healthy = ticking && !status.Halted
	return &status, nil
}
