package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/psds-microservice/arm-service-desk/internal/config"
	"github.com/psds-microservice/arm-service-desk/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type globalOptions struct {
	apiURL    string
	statePath string
	ephemeral bool
	output    string
	timeout   time.Duration
}

var (
	opts globalOptions
	cfg  *config.Config
	log  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "arm-desk",
	Short:         "ARM service desk: workstation inventory and maintenance tickets",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(cfg.AppEnv, cfg.LogLevel)

		if opts.apiURL != "" {
			cfg.Client.APIURL = opts.apiURL
		}
		if opts.statePath != "" {
			cfg.Client.StatePath = opts.statePath
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Client.Timeout = opts.timeout
		}
		switch opts.output {
		case outputTable, outputJSON, outputYAML:
		default:
			return fmt.Errorf("unknown --output %q (table, json or yaml)", opts.output)
		}
		return nil
	},
}

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(stderr, "error:", err)
	}
	return err
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.apiURL, "api-url", "", "desk API base URL (default $ARM_DESK_API_URL or http://localhost:8000/api)")
	pf.StringVar(&opts.statePath, "state", "", "session state file (default $ARM_DESK_STATE or $XDG_CONFIG_HOME/arm-desk/state.db)")
	pf.BoolVar(&opts.ephemeral, "ephemeral", false, "keep the session in memory only; commands other than login then sign in with $ARM_DESK_USERNAME and $ARM_DESK_PASSWORD")
	pf.StringVarP(&opts.output, "output", "o", outputTable, "output format: table, json or yaml")
	pf.DurationVar(&opts.timeout, "timeout", 30*time.Second, "per-request timeout, 0 to disable")

	rootCmd.AddCommand(apiCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(armsCmd, ticketsCmd, statsCmd)
}
