package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eternnoir/gollmlecture/pkg/config"
	"github.com/eternnoir/gollmlecture/pkg/logger"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gollmlecture",
	Short: "AI-powered transcript-to-lecture transformation tool",
	Long: `gollmlecture is a Go application that transforms raw conversational
transcripts into structured lecture transcripts of a target spoken duration
using Large Language Models.

Features:
- Structured lecture planning extracted from the source transcript
- Word budgets derived from target duration and speaking pace
- Narrative continuity across introduction, main topics, practical
  applications, and summary sections
- Multiple LLM providers (OpenAI, Gemini, local inference servers)
- Folder watch mode for automatic batch transformation`,
	Version: "1.0.0",
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.gollmlecture.yaml)")
	rootCmd.PersistentFlags().String("api-key", "", "LLM provider API key")
	rootCmd.PersistentFlags().String("provider", "openai", "LLM provider (openai, gemini, local)")
	rootCmd.PersistentFlags().String("model", "", "model name to use (e.g., gpt-4o-mini, gemini-2.0-flash-exp)")
	rootCmd.PersistentFlags().String("base-url", "", "custom API base URL (required for local provider)")
	rootCmd.PersistentFlags().Bool("verbose", false, "verbose output (deprecated, use --log-level debug)")

	// Logging flags
	rootCmd.PersistentFlags().String("log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().String("log-output", "stderr", "log output (stdout, stderr, file path)")
	rootCmd.PersistentFlags().Bool("log-no-color", false, "disable colored log output")
	rootCmd.PersistentFlags().Bool("log-caller", false, "include caller information in logs")

	// Bind flags to viper
	_ = viper.BindPFlag("provider.api_key", rootCmd.PersistentFlags().Lookup("api-key"))
	_ = viper.BindPFlag("provider.name", rootCmd.PersistentFlags().Lookup("provider"))
	_ = viper.BindPFlag("provider.model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("provider.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Bind logging flags to viper
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.output", rootCmd.PersistentFlags().Lookup("log-output"))
	_ = viper.BindPFlag("logging.caller", rootCmd.PersistentFlags().Lookup("log-caller"))
	_ = viper.BindPFlag("logging.no_color", rootCmd.PersistentFlags().Lookup("log-no-color"))

	// Environment variable bindings. The replacer maps nested keys to
	// underscored env names (provider.api_key -> GOLLMLECTURE_PROVIDER_API_KEY).
	viper.SetEnvPrefix("GOLLMLECTURE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// initConfig reads in config file and ENV variables.
func initConfig() {
	// A .env file in the working directory supplies API keys during
	// development; absence is not an error.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".gollmlecture" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".gollmlecture")
	}

	// If a config file is found, read it in.
	configFileUsed := ""
	if err := viper.ReadInConfig(); err == nil {
		configFileUsed = viper.ConfigFileUsed()
	}

	// Initialize logger
	initLogger()

	// Log config file usage after logger is initialized
	if configFileUsed != "" {
		logger.Info().Str("config_file", configFileUsed).Msg("Loaded configuration file")
	}
}

// initLogger initializes the logger based on configuration
func initLogger() {
	cfg := config.DefaultConfig()

	// Update logging config from viper
	if v := viper.GetString("logging.level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("logging.format"); v != "" {
		cfg.Logging.Format = v
	}
	if v := viper.GetString("logging.output"); v != "" {
		cfg.Logging.Output = v
	}
	cfg.Logging.Caller = viper.GetBool("logging.caller")
	cfg.Logging.NoColor = viper.GetBool("logging.no_color")

	// Handle legacy verbose flag
	if viper.GetBool("verbose") && cfg.Logging.Level == "info" {
		cfg.Logging.Level = "debug"
	}

	// Initialize the logger
	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
}
