package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/focusflow/focusapi/cmd/admin"
	"github.com/focusflow/focusapi/cmd/users"
	"github.com/focusflow/focusapi/internal/config"
	"github.com/focusflow/focusapi/internal/logging"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

var (
	cfg        *config.Config
	logger     *logging.Logger
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "focusapi",
	Short: "FocusFlow API server",
	Long: `FocusFlow API serves tasks, goals, habits, insights and chat history
for the FocusFlow productivity app over a JSON HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(".env"); err != nil {
			return err
		}
		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger, err = logging.Setup(logging.Config{
			Level:  cfg.Log.Level,
			Pretty: cfg.Log.Pretty,
			Dir:    cfg.Log.Dir,
		})
		if err != nil {
			return fmt.Errorf("failed to set up logging: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Close()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (yaml, toml or json)")
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: FOCUS_DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: FOCUS_SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: FOCUS_DEBUG)")

	bindFlag("database_url", "db-url")
	bindFlag("server_addr", "server-addr")
	bindFlag("debug", "debug")

	// Add subcommands
	rootCmd.AddCommand(users.UsersCmd)
	rootCmd.AddCommand(admin.AdminCmd)
}

func bindFlag(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
