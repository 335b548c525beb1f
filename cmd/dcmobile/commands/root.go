package commands

import (
	"context"
	"fmt"
	"os"

	"dcinside-mobile/internal/components/telemetry"
	"dcinside-mobile/internal/dcmobile"
	"dcinside-mobile/internal/serviceutil"
	"dcinside-mobile/internal/sessionstore"

	"github.com/spf13/cobra"
)

var (
	configPath *string
	profile    *string
	verbose    *bool
)

// state is built once the flags are parsed.
var (
	cfg     Config
	client  *dcmobile.Client
	tel     telemetry.Telemetry
	storeFn func(ctx context.Context) *sessionstore.Store
)

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "dcmobile.json5", "The configuration file, searched for from the working directory upwards.")
	profile = rootCmd.PersistentFlags().StringP("profile", "p", "default", "The stored session to use.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every request.")
}

var rootCmd = &cobra.Command{
	Use:   "dcmobile",
	Short: "dcmobile drives the dcinside mobile site: login, posts, comments and recommendations.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose)

		var err error
		cfg, err = loadConfig(*configPath)
		if err != nil {
			serviceutil.Fatal("failed to read config", err)
		}

		tel, err = telemetry.Setup(cmd.Context(), "dcmobile", cfg.Telemetry)
		if err != nil {
			serviceutil.Fatal("failed to setup telemetry", err)
		}

		client = dcmobile.NewClient(cfg.clientOptions(), telemetry.SlogAPI{})
		storeFn = func(ctx context.Context) *sessionstore.Store {
			store, err := sessionstore.Open(ctx, cfg.Database)
			if err != nil {
				serviceutil.Fatal("failed to open session database", err)
			}
			return store
		}
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if err := tel.Shutdown(context.Background()); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	},
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
