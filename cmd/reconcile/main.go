package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/venuelabs/chain-ticketing/catalog"
	"github.com/venuelabs/chain-ticketing/chain"
	"github.com/venuelabs/chain-ticketing/cmd/flags"
	"github.com/venuelabs/chain-ticketing/coordinator"
	"github.com/venuelabs/chain-ticketing/registrydb"
)

var flagSkipArchival = &cli.BoolFlag{
	Name:  "skip-archival",
	Value: false,
	Usage: "stop after tier registration, do not mint the archival record",
}

var commonFlags = []cli.Flag{
	flags.RPCAddr,
	flags.ContractAddress,
	flags.ChainID,
	flags.ConfirmationTimeout,
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
		Name:  "reconcile",
		Usage: "Reconcile catalog events with the on-chain ticketing ledger",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Register an event, its tiers and the archival record on-chain",
				ArgsUsage: "<catalog-event-id>",
				Flags:     append([]cli.Flag{flags.CustodialAddress, flagSkipArchival}, commonFlags...),
				Action:    runReconcile,
			},
			{
				Name:      "status",
				Usage:     "Print the registry mirror for an event",
				ArgsUsage: "<catalog-event-id>",
				Flags: []cli.Flag{
					flags.LogJSON,
					flags.LogDebug,
					flags.LogService,
				},
				Action: runStatus,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func eventIDArg(cCtx *cli.Context) (string, error) {
	eventID := cCtx.Args().First()
	if eventID == "" {
		return "", errors.New("catalog event id argument is required")
	}
	if _, err := uuid.Parse(eventID); err != nil {
		return "", fmt.Errorf("invalid catalog event id %q: %w", eventID, err)
	}
	return eventID, nil
}

func runReconcile(cCtx *cli.Context) error {
	logger := flags.Logger(cCtx)
	ctx := context.Background()

	eventID, err := eventIDArg(cCtx)
	if err != nil {
		return err
	}

	custodial, err := flags.Custodial(cCtx)
	if err != nil {
		return err
	}

	chainCfg, err := flags.ChainConfig(ctx, cCtx)
	if err != nil {
		logger.Error("Failed to assemble chain config", "err", err)
		return err
	}

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

	eventRes, err := eventReg.RegisterEvent(ctx, eventID)
	if err != nil {
		logger.Error("Event registration failed", "err", err)
		return err
	}
	fmt.Printf("event: onchain_id=%d tx=%s already_registered=%t\n",
		eventRes.OnChainEventID, eventRes.TxRef, eventRes.AlreadyRegistered)

	tierReg := coordinator.NewTierRegistrar(cat, events, tiers, client, logger)
	tierReg.SetConfirmationTimeout(timeout)

	tierResults, err := tierReg.RegisterTiers(ctx, eventID)
	if err != nil {
		logger.Error("Tier registration failed", "err", err)
		return err
	}
	anyTier := false
	for _, res := range tierResults {
		if res.Success {
			anyTier = true
			fmt.Printf("tier %s (%s): index=%d tx=%s\n", res.TierID, res.TierName, res.OnChainTierIndex, res.TxRef)
		} else {
			fmt.Printf("tier %s (%s): FAILED: %v\n", res.TierID, res.TierName, res.Err)
		}
	}

	if cCtx.Bool(flagSkipArchival.Name) {
		return nil
	}
	if !anyTier {
		return errors.New("no tier registered successfully, skipping archival mint")
	}

	minter := coordinator.NewArchivalMinter(cat, events, tiers, archive, client, publisher, logger)
	minter.SetConfirmationTimeout(timeout)

	archRes, err := minter.MintArchivalRecord(ctx, eventID, eventRes.OnChainEventID, custodial)
	if err != nil {
		logger.Error("Archival mint failed", "err", err)
		return err
	}
	fmt.Printf("archival: record=%s token=%s tx=%s already_minted=%t\n",
		archRes.RecordID, archRes.TokenID, archRes.TxRef, archRes.AlreadyMinted)

	return nil
}

func runStatus(cCtx *cli.Context) error {
	logger := flags.Logger(cCtx)
	ctx := context.Background()

	eventID, err := eventIDArg(cCtx)
	if err != nil {
		return err
	}

	pool, err := registrydb.NewPool(ctx, registrydb.ConfigFromEnv())
	if err != nil {
		logger.Error("Failed to connect to registry database", "err", err)
		return err
	}
	defer pool.Close()

	reader := coordinator.NewStatusReader(
		registrydb.NewEventRepo(pool),
		registrydb.NewTierRepo(pool),
		registrydb.NewArchivalRepo(pool),
	)
	status, err := reader.Fetch(ctx, eventID)
	if err != nil {
		return err
	}

	if status.Event == nil {
		fmt.Printf("event %s: not registered\n", eventID)
		return nil
	}
	fmt.Printf("event %s: onchain_id=%d chain=%d contract=%s tx=%s\n",
		eventID, status.Event.OnChainEventID, status.Event.ChainID,
		status.Event.ContractAddress, status.Event.TxRef)
	for _, tier := range status.Tiers {
		fmt.Printf("tier %s: index=%d tx=%s\n", tier.CatalogTierID, tier.OnChainTierIndex, tier.TxRef)
	}
	if status.Archival != nil {
		fmt.Printf("archival %s: token=%s slot=%s revealed=%t tx=%s\n",
			status.Archival.ID, status.Archival.TokenID, status.Archival.SlotLabel,
			status.Archival.Revealed, status.Archival.TxRef)
	}
	return nil
}
