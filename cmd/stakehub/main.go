// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakehub/api"
	"github.com/vechain/stakehub/api/admin"
	"github.com/vechain/stakehub/cmd/stakehub/keeper"
	"github.com/vechain/stakehub/health"
	"github.com/vechain/stakehub/log"
	"github.com/vechain/stakehub/metrics"
	"github.com/vechain/stakehub/runtime"
	"github.com/vechain/stakehub/state"
)

var (
	version   string
	gitCommit string
	gitTag    string
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version:   fullVersion(),
		Name:      "Stakehub",
		Usage:     "Liquid staking hub for VeChain",
		Copyright: "2025 VeChain Foundation <https://vechain.org/>",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			persistFlag,
			cacheFlag,
			stateCacheFlag,
			apiAddrFlag,
			apiCorsFlag,
			apiSlowQueriesThresholdFlag,
			enableAPILogsFlag,
			hostTokenFlag,
			epochIntervalFlag,
			harvestEveryFlag,
			verbosityFlag,
			jsonLogsFlag,
			enableMetricsFlag,
			metricsAddrFlag,
			enableAdminFlag,
			adminAddrFlag,
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func defaultAction(ctx *cli.Context) error {
	exitSignal := handleExitSignal()
	defer func() { log.Info("exited") }()

	logLevel := initLogger(ctx)
	gene, err := loadGenesis(ctx)
	if err != nil {
		return err
	}
	genesisID, err := gene.ID()
	if err != nil {
		return err
	}

	mainDB, instanceDir, err := openMainDB(ctx, genesisID)
	if err != nil {
		return err
	}
	defer func() { log.Info("closing main database..."); mainDB.Close() }()

	st := state.New(mainDB, ctx.Int(stateCacheFlag.Name))
	if err := gene.Build(st); err != nil {
		return err
	}
	params, err := gene.Params()
	if err != nil {
		return err
	}
	rt := runtime.New(st, params)

	if ctx.Bool(enableMetricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	group, groupCtx := errgroup.WithContext(exitSignal)
	clock := clockwork.NewRealClock()

	apiLogs := new(atomic.Bool)
	apiLogs.Store(ctx.Bool(enableAPILogsFlag.Name))
	handler := api.New(rt, api.Options{
		AllowedOrigins:    ctx.String(apiCorsFlag.Name),
		HostToken:         ctx.String(hostTokenFlag.Name),
		EnableReqLogger:   apiLogs,
		SlowQueriesThresh: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		EnableMetrics:     ctx.Bool(enableMetricsFlag.Name),
		Clock:             clock,
	})
	apiURL, err := startServer(groupCtx, group, ctx.String(apiAddrFlag.Name), handleXGenesisID(handler, genesisID))
	if err != nil {
		return err
	}

	metricsURL := ""
	if ctx.Bool(enableMetricsFlag.Name) {
		if metricsURL, err = startServer(groupCtx, group, ctx.String(metricsAddrFlag.Name), metricsHandler()); err != nil {
			return err
		}
		metricsURL += "metrics"
	}

	healthStatus := health.New(rt, clock)
	interval := ctx.Duration(epochIntervalFlag.Name)
	if interval > 0 {
		k, err := keeper.New(rt, keeper.Config{
			Clock:         clock,
			EpochInterval: interval,
			HarvestEvery:  ctx.Uint64(harvestEveryFlag.Name),
			OnStep:        healthStatus.Ticked,
		})
		if err != nil {
			return err
		}
		group.Go(func() error { return k.Run(groupCtx) })
	}

	adminURL := ""
	if ctx.Bool(enableAdminFlag.Name) {
		// twice the epoch interval before the keeper counts as stalled
		adminHandler := admin.New(logLevel, apiLogs, healthStatus, 2*interval)
		if adminURL, err = startServer(groupCtx, group, ctx.String(adminAddrFlag.Name), adminHandler); err != nil {
			return err
		}
		adminURL += "admin"
	}

	printStartupMessage(gene, genesisID, instanceDir, apiURL, metricsURL, adminURL)

	return group.Wait()
}
