package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	_ "github.com/lib/pq"
	"github.com/maintledger/backend/internal/infrastructure/config"
	"github.com/maintledger/backend/internal/infrastructure/logger"
	"github.com/maintledger/backend/internal/infrastructure/migration"
	"github.com/maintledger/backend/migrations"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		dir      string
		logLevel string
		log      *zap.Logger
	)

	root := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the settlement database schema",
		Long: `migrate applies the embedded SQL schema to the database configured
through MAINT_DATABASE_* variables. --dir reads a checkout instead.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			log, err = logger.New(&logger.Config{Level: logLevel, Format: "console", Output: "stderr"})
			return err
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = logger.Sync(log)
		},
	}
	root.PersistentFlags().StringVar(&dir, "dir", "", "read migrations from this directory instead of the embedded set")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")

	source := func() fs.FS {
		if dir == "" {
			return migrations.FS
		}
		return os.DirFS(dir)
	}

	// withMigrator opens the configured database for one command
	withMigrator := func(fn func(m *migration.Migrator, args []string) error) func(*cobra.Command, []string) error {
		return func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			db, err := sql.Open("postgres", cfg.Database.DSN())
			if err != nil {
				return err
			}
			if err := db.Ping(); err != nil {
				_ = db.Close()
				return fmt.Errorf("failed to ping database: %w", err)
			}
			m, err := migration.New(db, source(), log)
			if err != nil {
				_ = db.Close()
				return err
			}
			defer m.Close()
			return fn(m, args)
		}
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(func(m *migration.Migrator, _ []string) error { return m.Up() }),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back every migration",
			Args:  cobra.NoArgs,
			RunE:  withMigrator(func(m *migration.Migrator, _ []string) error { return m.Down() }),
		},
		&cobra.Command{
			Use:   "step <n>",
			Short: "Apply n migrations, or roll back when n is negative",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				n, err := strconv.Atoi(args[0])
				if err != nil || n == 0 {
					return fmt.Errorf("invalid step count %q", args[0])
				}
				return m.Steps(n)
			}),
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a version",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.ParseUint(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.To(uint(v))
			}),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
				st, err := m.Status()
				if err != nil {
					return err
				}
				if !st.Applied {
					fmt.Println("no migrations applied")
					return nil
				}
				fmt.Printf("%d dirty=%t\n", st.Version, st.Dirty)
				return nil
			}),
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Record a version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: withMigrator(func(m *migration.Migrator, args []string) error {
				v, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q", args[0])
				}
				return m.Force(v)
			}),
		},
		newDropCommand(withMigrator),
		&cobra.Command{
			Use:   "create <name> [description]",
			Short: "Scaffold a new migration pair in --dir (default ./migrations)",
			Args:  cobra.RangeArgs(1, 2),
			RunE: func(_ *cobra.Command, args []string) error {
				target := dir
				if target == "" {
					target = "migrations"
				}
				description := ""
				if len(args) == 2 {
					description = args[1]
				}
				p, err := migration.Scaffold(target, args[0], description, time.Now())
				if err != nil {
					return err
				}
				log.Info("Migration created", zap.String("up", p.UpPath), zap.String("down", p.DownPath))
				return nil
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List migrations and flag those without a down file",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				names, err := migration.List(source())
				if err != nil {
					return err
				}
				missing, err := migration.Unpaired(source())
				if err != nil {
					return err
				}
				unpaired := make(map[string]bool, len(missing))
				for _, n := range missing {
					unpaired[n] = true
				}
				for _, n := range names {
					if unpaired[n] {
						fmt.Println(n, "(no down migration)")
						continue
					}
					fmt.Println(n)
				}
				return nil
			},
		},
	)
	return root
}

func newDropCommand(withMigrator func(func(*migration.Migrator, []string) error) func(*cobra.Command, []string) error) *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Drop every object in the schema",
		Args:  cobra.NoArgs,
		RunE: withMigrator(func(m *migration.Migrator, _ []string) error {
			if !confirm {
				return errors.New("refusing to drop without --confirm")
			}
			return m.Drop()
		}),
	}
	cmd.Flags().BoolVar(&confirm, "confirm", false, "really drop all data")
	return cmd
}
