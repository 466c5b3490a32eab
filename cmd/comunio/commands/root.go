package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"comunio-manager/internal/components/serviceutil"
	"comunio-manager/internal/components/telemetry"
	"comunio-manager/internal/config"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
	username   string
	password   string
	dumpHttp   string
)

// state is set up before any subcommand runs and torn down by ExecuteContext.
var state *app

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath(), "The config file to read.")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Log debug output.")
	flags.StringVarP(&username, "username", "u", "", "The comunio username, overrides the config.")
	flags.StringVarP(&password, "password", "p", "", "The comunio password, overrides the config.")
	flags.StringVar(&dumpHttp, "dump-http", "", "Write every page fetched from comunio to this directory.")
}

var rootCmd = &cobra.Command{
	Use:           "comunio",
	Short:         "comunio keeps a daily history of a comunio.de team and its finances.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(verbose)

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("username") {
			cfg.Username = username
		}
		if cmd.Flags().Changed("password") {
			cfg.Password = password
		}

		state, err = newApp(cmd.Context(), cfg)
		return err
	},
}

func closeState() {
	if state == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	err := state.Close(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	state = nil
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	closeState()
	if err != nil {
		serviceutil.Fatal("command failed", err)
	}
}
