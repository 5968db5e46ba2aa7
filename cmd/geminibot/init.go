package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/gemini"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/search"
)

type fileConfig struct {
	Logging struct {
		Level     string `yaml:"level"`
		Format    string `yaml:"format"`
		AddSource bool   `yaml:"add_source"`
	} `yaml:"logging"`
	Server struct {
		Bind string `yaml:"bind"`
		Port int    `yaml:"port"`
	} `yaml:"server"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Search struct {
		Enabled bool   `yaml:"enabled"`
		URL     string `yaml:"url"`
	} `yaml:"search"`
	Relay struct {
		MaxConcurrency int    `yaml:"max_concurrency"`
		QueueSize      int    `yaml:"queue_size"`
		CallTimeout    string `yaml:"call_timeout"`
	} `yaml:"relay"`
}

func defaultFileConfig() fileConfig {
	var cfg fileConfig
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	cfg.Server.Bind = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Gemini.Model = gemini.DefaultModel
	cfg.Search.Enabled = true
	cfg.Search.URL = search.DefaultEndpoint
	cfg.Relay.MaxConcurrency = 4
	cfg.Relay.QueueSize = 16
	cfg.Relay.CallTimeout = "60s"
	return cfg
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Write a default config.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				dir = args[0]
			}
			dir = filepath.Clean(dir)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return err
			}

			cfgPath := filepath.Join(dir, "config.yaml")
			if _, err := os.Stat(cfgPath); err == nil {
				return fmt.Errorf("config already exists: %s", cfgPath)
			}

			body, err := yaml.Marshal(defaultFileConfig())
			if err != nil {
				return err
			}
			header := "# geminibot configuration. Secrets may also come from the\n# BOT_TOKEN and GOOGLE_GEMINI_API_KEY environment variables.\n"
			if err := os.WriteFile(cfgPath, append([]byte(header), body...), 0o600); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", cfgPath)
			return nil
		},
	}

	return cmd
}
