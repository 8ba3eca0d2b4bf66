package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	invoicingapp "github.com/maintledger/backend/internal/application/invoicing"
	settlementapp "github.com/maintledger/backend/internal/application/settlement"
	"github.com/maintledger/backend/internal/bootstrap"
	"github.com/maintledger/backend/internal/infrastructure/config"
	"github.com/maintledger/backend/internal/infrastructure/logger"
	"github.com/maintledger/backend/internal/infrastructure/persistence"
	"github.com/maintledger/backend/internal/interfaces/cli"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

var version = "dev"

// operations exposes the services finctl drives
type operations struct {
	*settlementapp.Service
	*invoicingapp.AdjustmentService
	*invoicingapp.InvoiceService
}

func main() {
	var (
		log *zap.Logger
		db  *persistence.Database
	)

	open := func(ctx context.Context) (cli.Operations, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}

		// Logs go to stderr so stdout carries only the result
		log, err = logger.New(&logger.Config{
			Level:      cfg.Log.Level,
			Format:     "console",
			Output:     "stderr",
			TimeFormat: "2006-01-02 15:04:05",
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}

		db, err = persistence.Open(&cfg.Database,
			logger.NewGormLogger(log, gormlogger.Warn))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		services := bootstrap.NewServices(db.DB, cfg.Invoicing, log)
		return operations{
			Service:           services.Settlements,
			AdjustmentService: services.Adjustments,
			InvoiceService:    services.Invoices,
		}, nil
	}

	err := cli.NewRootCommand(version, open).Execute()

	if db != nil {
		_ = db.Close()
	}
	if log != nil {
		_ = logger.Sync(log)
	}
	if err != nil {
		if !errors.Is(err, cli.ErrOperationFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
