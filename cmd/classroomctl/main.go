// Command classroomctl administers a classroom database directly: schema
// migration, account creation and read-only listings.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"digikul/internal/config"
	"digikul/internal/ledger"
	"digikul/internal/logging"
	"digikul/internal/store"
	"digikul/internal/user"
)

// app is opened once per invocation by the root command.
type app struct {
	cfg    config.App
	log    *zap.Logger
	db     *store.DB
	users  *user.Service
	ledger *ledger.Service
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:           "classroomctl",
		Short:         "Administer the classroom database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			a.close()
		},
	}
	RegisterCommands(root, a)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(logging.Options{Level: "warn", Path: cfg.LogPath})
	if err != nil {
		return err
	}
	db, err := store.NewDB(cmd.Context(), cfg.DatabaseURL)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = log
	a.db = db
	a.users = user.NewService(user.NewRepository(db.Client), log)
	a.ledger = ledger.NewService(ledger.NewRepository(db.Client), log)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
