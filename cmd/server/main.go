package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/venuelabs/chain-ticketing/catalog"
	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/cmd/flags"
	"github.com/venuelabs/chain-ticketing/coordinator"
	"github.com/venuelabs/chain-ticketing/httpserver"
	"github.com/venuelabs/chain-ticketing/registrydb"
)

var flagListenAddr = &cli.StringFlag{
	Name:  "listen-addr",
	Value: "127.0.0.1:8080",
	Usage: "address to listen on for API",
}

var flagPprof = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}

var flagDrainSeconds = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}

var serverFlags = []cli.Flag{
	flagListenAddr,
	flagPprof,
	flagDrainSeconds,
	flags.RPCAddr,
	flags.ContractAddress,
	flags.ChainID,
	flags.ConfirmationTimeout,
	flags.CustodialAddress,
	flags.SignerKeyHex,
	flags.SignerKeyFile,
	flags.VaultAddr,
	flags.VaultToken,
	flags.VaultPath,
	flags.MetadataBackends,
	flags.LogJSON,
	flags.LogDebug,
	flags.LogUID,
	flags.LogService,
}

func main() {
	godotenv.Load()

	app := &cli.App{
		Name:  "reconcile-server",
		Usage: "Serve the ledger reconciliation admin API",
		Flags: serverFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.Logger(cCtx)
			ctx := context.Background()

			custodial, err := flags.Custodial(cCtx)
			if err != nil {
				return err
			}

			chainCfg, err := flags.ChainConfig(ctx, cCtx)
			if err != nil {
				logger.Error("Failed to assemble chain config", "err", err)
				return err
			}

			logger.Info("Connecting to Ethereum RPC", "address", chainCfg.RPCEndpoint)
			client, err := chain.Dial(ctx, chainCfg, logger)
			if err != nil {
				logger.Error("Failed to dial RPC", "err", err)
				return err
			}
			defer client.Close()

			pool, err := registrydb.NewPool(ctx, registrydb.ConfigFromEnv())
			if err != nil {
				logger.Error("Failed to connect to registry database", "err", err)
				return err
			}
			defer pool.Close()

			publisher, err := flags.MetadataBackend(cCtx, logger)
			if err != nil {
				logger.Error("Failed to construct metadata backend", "err", err)
				return err
			}

			cat := catalog.NewReader(pool)
			events := registrydb.NewEventRepo(pool)
			tiers := registrydb.NewTierRepo(pool)
			archive := registrydb.NewArchivalRepo(pool)
			timeout := flags.ConfirmTimeout(cCtx)

			eventReg := coordinator.NewEventRegistrar(cat, events, client, logger)
			eventReg.SetConfirmationTimeout(timeout)
			tierReg := coordinator.NewTierRegistrar(cat, events, tiers, client, logger)
			tierReg.SetConfirmationTimeout(timeout)
			minter := coordinator.NewArchivalMinter(cat, events, tiers, archive, client, publisher, logger)
			minter.SetConfirmationTimeout(timeout)
			status := coordinator.NewStatusReader(events, tiers, archive)

			handler := httpserver.NewHandler(eventReg, tierReg, minter, status, custodial, logger)

			srv, err := httpserver.New(&httpserver.HTTPServerConfig{
				ListenAddr:               cCtx.String(flagListenAddr.Name),
				EnablePprof:              cCtx.Bool(flagPprof.Name),
				Log:                      logger,
				DrainDuration:            time.Duration(cCtx.Int64(flagDrainSeconds.Name)) * time.Second,
				GracefulShutdownDuration: 30 * time.Second,
				ReadTimeout:              60 * time.Second,
				WriteTimeout:             30 * time.Second,
			}, handler)
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			srv.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
			<-exit

			srv.Shutdown()
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
