package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vytor/wordflash/internal/config"
	"github.com/vytor/wordflash/internal/logger"
)

type app struct {
	v   *viper.Viper
	cfg config.Config
	log *logger.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "wordflash",
		Short:         "Adaptive vocabulary trainer",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.cfg = config.FromViper(a.v)
			if err := a.cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			a.log = logger.New(
				logger.WithLevel(logger.ParseLevel(a.cfg.LogLevel)),
				logger.WithJSON(a.cfg.IsProduction()),
				logger.WithColors(!a.cfg.IsProduction()),
				logger.WithOutput(os.Stderr),
			)
			logger.SetDefault(a.log)
			return nil
		},
	}

	v, err := config.NewViper()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	a.v = v

	flags := root.PersistentFlags()
	flags.String("db-driver", v.GetString("db_driver"), "storage backend: sqlite or postgres")
	flags.String("db-path", v.GetString("db_path"), "SQLite database path")
	flags.String("database-url", v.GetString("database_url"), "PostgreSQL connection string")
	flags.String("log-level", v.GetString("log_level"), "DEBUG, INFO, WARN or ERROR")
	for key, flag := range map[string]string{
		"db_driver":    "db-driver",
		"db_path":      "db-path",
		"database_url": "database-url",
		"log_level":    "log-level",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newServeCmd(a),
		newReconcileCmd(a),
		newImportCmd(a),
		newAssignCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}
