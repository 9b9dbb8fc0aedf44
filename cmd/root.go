package cmd

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/resonatehq/console/cmd/config"
	"github.com/resonatehq/console/cmd/health"
	"github.com/resonatehq/console/cmd/serve"
	"github.com/resonatehq/console/cmd/states"
	"github.com/resonatehq/console/cmd/users"
	"github.com/resonatehq/console/cmd/version"
	"github.com/resonatehq/console/internal/app/console"
	"github.com/resonatehq/console/pkg/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCmd builds the command tree around c. The console is set up before any
// subcommand runs, closing it is left to the caller, see run.
func NewCmd(c *console.Console) *cobra.Command {
	var (
		cfg     = &config.Config{}
		vip     = viper.New()
		cfgFile string
		envFile string
	)

	cmd := &cobra.Command{
		Use:          "console",
		Short:        "Admin console for users and states",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// a missing default .env file is fine, an explicit one must exist
			if err := godotenv.Load(envFile); err != nil {
				if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("env-file") {
					return err
				}
			}

			if cfgFile != "" {
				vip.SetConfigFile(cfgFile)
			} else {
				vip.SetConfigName("console")
				vip.AddConfigPath(".")
				vip.AddConfigPath("$HOME")
			}

			vip.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
			vip.AutomaticEnv()

			if err := vip.ReadInConfig(); err != nil {
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return err
				}
			}

			if err := cfg.Parse(vip); err != nil {
				return err
			}

			logger, err := log.New(cfg.LogLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			return c.Setup(cfg.Console())
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	// Flags
	cmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default console.yaml)")
	cmd.PersistentFlags().StringVarP(&envFile, "env-file", "", ".env", "dotenv file with backend urls")

	// bind config
	if err := cfg.Bind(cmd.PersistentFlags(), vip); err != nil {
		panic(err)
	}

	// Add subcommands
	cmd.AddCommand(serve.NewCmd(cfg, c))
	cmd.AddCommand(users.NewCmd(c))
	cmd.AddCommand(states.NewCmd(c))
	cmd.AddCommand(health.NewCmd(c, &cfg.Monitor))
	cmd.AddCommand(version.NewCmd())

	// Set default output
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	return cmd
}

func Execute() {
	c := console.New()
	if err := run(NewCmd(c), c); err != nil {
		os.Exit(1)
	}
}

// run executes cmd and then drains and closes the console, also when the
// command failed.
func run(cmd *cobra.Command, c *console.Console) error {
	err := cmd.Execute()

	if cerr := c.Close(); cerr != nil {
		slog.Error("failed to close console", "error", cerr)
	}

	return err
}
