package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"billtracker/internal/cli"
	"billtracker/internal/core"
	"billtracker/internal/log"
	"billtracker/internal/metrics"
	"billtracker/internal/services"
)

// app holds the services one command runs against.
type app struct {
	bills   *services.BillService
	imports *services.ImportService
	close   func() error
}

type opener func(ctx context.Context) (*app, error)

// openFromEnv builds the services from the environment the server uses.
// No change events are published from the CLI.
func openFromEnv(ctx context.Context) (*app, error) {
	cfg, logger := cli.Bootstrap(nil)
	ctx = log.WithLogger(ctx, logger)

	res, err := cli.OpenStore(ctx, logger, cfg)
	if err != nil {
		return nil, fmt.Errorf("open record store: %w", err)
	}

	m := metrics.New()
	urls := core.URLBuilder{Base: cfg.BillURLBase, GeneralAssembly: cfg.GeneralAssembly}
	bills := services.NewBillService(res.Store, nil, urls, m)
	return &app{
		bills:   bills,
		imports: services.NewImportService(bills, m),
		close:   res.Close,
	}, nil
}

func newRootCmd(open opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "billtracker-admin",
		Short:        "Operator tools for the bill tracker record store",
		SilenceUsage: true,
	}
	cmd.AddCommand(
		newImportCmd(open),
		newGenerateURLsCmd(open),
		newMigrateCmd(),
		newListCmd(open),
	)
	return cmd
}

// withApp opens the services, runs fn and closes them again.
func withApp(cmd *cobra.Command, open opener, fn func(a *app) error) error {
	a, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer func() {
		if a.close != nil {
			_ = a.close()
		}
	}()
	return fn(a)
}
