package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/gemini"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/search"
)

const envPrefix = "GEMINI_BOT"

func Execute() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geminibot",
		Short: "Telegram webhook relay backed by Gemini with web-search enrichment",
	}

	cobra.OnInitialize(initConfig)

	cmd.PersistentFlags().String("config", "", "Config file path (optional).")
	_ = viper.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))

	cmd.PersistentFlags().String("log-level", "", "Logging level: debug|info|warn|error (defaults to info; debug if --trace).")
	cmd.PersistentFlags().String("log-format", "text", "Logging format: text|json.")
	cmd.PersistentFlags().Bool("log-add-source", false, "Include source file:line in logs.")
	cmd.PersistentFlags().Bool("trace", false, "Print extra debug info to stderr.")

	_ = viper.BindPFlag("logging.level", cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("logging.add_source", cmd.PersistentFlags().Lookup("log-add-source"))
	_ = viper.BindPFlag("trace", cmd.PersistentFlags().Lookup("trace"))

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newWebhookCmd())
	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func initViperDefaults() {
	viper.SetDefault("logging.format", "text")
	viper.SetDefault("logging.add_source", false)
	viper.SetDefault("trace", false)

	viper.SetDefault("server.bind", "0.0.0.0")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("gemini.model", gemini.DefaultModel)

	viper.SetDefault("search.enabled", true)
	viper.SetDefault("search.url", search.DefaultEndpoint)

	viper.SetDefault("relay.max_concurrency", 4)
	viper.SetDefault("relay.queue_size", 16)
	viper.SetDefault("relay.call_timeout", "60s")
}

func initConfig() {
	// A local .env is honored but never required; real env vars win.
	_ = godotenv.Load()

	initViperDefaults()

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	// The deployment contract names these without the prefix.
	_ = viper.BindEnv("telegram.bot_token", envPrefix+"_TELEGRAM_BOT_TOKEN", "BOT_TOKEN")
	_ = viper.BindEnv("gemini.api_key", envPrefix+"_GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY")
	_ = viper.BindEnv("search.url", envPrefix+"_SEARCH_URL", "SEARCH_ENGINE_URL")
	_ = viper.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")

	cfgFile := strings.TrimSpace(viper.GetString("config"))
	if cfgFile == "" {
		return
	}

	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
	}
}
