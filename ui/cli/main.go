// Copyright (c) 2026 Soroban Trader Team
// Soroban Trader - multi-signature governance engine
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the root command, loads configuration and opens the
// store shared by every subcommand.

package cli

import (
	"errors"
	"fmt"
	"os"

	log "github.com/charmbracelet/log"
	"github.com/kaankacar/soroban-trader-skill-sub000/buildvars"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/config"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/db"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/i18n"
	"github.com/kaankacar/soroban-trader-skill-sub000/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string
var verbose bool
var outputFormat string

var appConfig config.Config

// appStore is opened once per process by setupDefaultServices. Tests
// install their own store before running commands.
var appStore db.Store

// openStore is replaced in tests.
var openStore = db.New

func setupDefaultServices(cmd *cobra.Command, args []string) error {
	explicitPath, err := getConfigPathFromCli(cmd)
	if err != nil {
		return err
	}

	defaults := config.Defaults()
	appConfig, err = config.LoadConfig[config.Config](cmd, defaults, explicitPath)
	if errors.As(err, &viper.ConfigFileNotFoundError{}) {
		// First run: persist the resolved settings so the file can be
		// edited. The wallet stays a per-invocation choice.
		persist := appConfig
		persist.Wallet = ""
		if writeErr := config.WriteConfigFile(&persist, false); writeErr != nil {
			log.Warnf("could not write default config file: %v", writeErr)
		} else {
			log.Debug("wrote default config to user config path")
		}
	} else if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	if appConfig.Database.Type == "" {
		appConfig.Database.Type = defaults["database.type"].(string)
	}
	if appConfig.Database.Dsn == "" {
		appConfig.Database.Dsn = defaults["database.dsn"].(string)
	}
	if appConfig.Language == "" {
		appConfig.Language = defaults["language"].(string)
	}

	db.SetDebug(verbose)
	if verbose {
		logging.SetDebug(true)
	} else if err := logging.SetLevel(appConfig.Log.Level); err != nil {
		log.Warnf("ignoring log level %q: %v", appConfig.Log.Level, err)
	}

	i18n.Init(appConfig.Language)

	if appStore == nil {
		st, err := openStore(appConfig.Database.Type, appConfig.Database.Dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		appStore = st
	}
	return nil
}

// Execute runs the CLI. The main package calls it and handles the exit code.
func Execute() error {
	defer func() {
		if appStore != nil {
			if err := appStore.Close(); err != nil {
				log.Errorf("closing database: %v", err)
			}
			appStore = nil
		}
	}()
	err := NewRootCmd().Execute()
	logFailure(err)
	return err
}

func getConfigPathFromCli(cmd *cobra.Command) (*string, error) {
	if !cmd.Flags().Changed("config") {
		return nil, nil
	}
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	if path == "" {
		return nil, nil
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file specified via --config flag not found or is not accessible: %w", err)
	}
	return &path, nil
}

// NewRootCmd creates the root command with every subcommand attached. Each
// call builds a fresh tree so tests can run commands in isolation.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "soroban-trader",
		Short: "Multi-signature governance for Soroban trading wallets.",
		Long: `soroban-trader authorizes wallet transactions through weighted
multi-signature proposals, delegated sub-accounts with daily limits and an
asset compliance policy. Every command acts on one wallet and is
authenticated with a credential secret.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupDefaultServices,
	}

	cmd.Version = buildvars.Resolve(nil).String()

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file")
	cmd.PersistentFlags().String("language", "en", `Output language ("en", "de")`)
	cmd.PersistentFlags().String("database.type", "sqlite", "Database type (sqlite, postgres, mysql)")
	cmd.PersistentFlags().String("database.dsn", "./soroban-trader.db", "Database connection string (DSN)")
	cmd.PersistentFlags().StringP("wallet", "w", "", "Wallet id the command acts on")
	cmd.PersistentFlags().String("secret", "", "Credential secret (defaults to $SOROBAN_TRADER_SECRET or a prompt)")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", `Output format ("text", "json")`)

	cmd.AddCommand(
		newMultiSigCmd(),
		newSubAccountCmd(),
		newPolicyCmd(),
		newDashboardCmd(),
		newCallCmd(),
		newIdentityCmd(),
		newServeCmd(),
		newSweepCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newMigrateCmd(),
		newAuditCmd(),
		newDBMaintainCmd(),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		// The version command needs neither config nor database.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildvars.Resolve(nil)
			out := cmd.OutOrStdout()
			if !textOutput() {
				return printJSON(out, info)
			}
			fmt.Fprintf(out, "version: %s\n", info.Version)
			fmt.Fprintf(out, "commit: %s\n", info.Commit)
			if info.Date != "" {
				fmt.Fprintf(out, "built: %s\n", info.Date)
			}
			return nil
		},
	}
}
