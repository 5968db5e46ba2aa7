package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/configutil"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/gemini"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/logutil"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/relay"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/search"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/session"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/telegram"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/webhook"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server that relays Telegram messages to Gemini",
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(configutil.FlagOrViperString(cmd, "bot-token", "telegram.bot_token"))
			if token == "" {
				return fmt.Errorf("missing telegram.bot_token (set via --bot-token or BOT_TOKEN)")
			}
			apiKey := strings.TrimSpace(configutil.FlagOrViperString(cmd, "gemini-api-key", "gemini.api_key"))
			if apiKey == "" {
				return fmt.Errorf("missing gemini.api_key (set via --gemini-api-key or GOOGLE_GEMINI_API_KEY)")
			}

			bind := strings.TrimSpace(viper.GetString("server.bind"))
			port := configutil.FlagOrViperInt(cmd, "port", "server.port")
			if port <= 0 {
				port = 8080
			}

			logger, err := logutil.FromViper()
			if err != nil {
				return err
			}
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			model := strings.TrimSpace(configutil.FlagOrViperString(cmd, "gemini-model", "gemini.model"))
			gem, err := gemini.NewClient(ctx, apiKey, model, gemini.DefaultGenerationConfig())
			if err != nil {
				return err
			}

			bot := telegram.NewClient(nil, telegram.DefaultBaseURL, token)
			me, err := bot.GetMe(ctx)
			if err != nil {
				return fmt.Errorf("telegram credential check failed: %w", err)
			}
			logger.Info("bot_identified", "username", me.Username, "bot_id", me.ID)

			searchEnabled := configutil.FlagOrViperBool(cmd, "search-enabled", "search.enabled")
			searchURL := strings.TrimSpace(configutil.FlagOrViperString(cmd, "search-url", "search.url"))
			var searcher relay.Searcher
			if searchEnabled {
				searcher = search.NewClient(nil, searchURL)
			}

			store := session.NewStore(func(ctx context.Context) (session.ModelSession, error) {
				s, err := gem.NewSession(ctx)
				if err != nil {
					return nil, err
				}
				return s, nil
			}, nil)

			callTimeout := viper.GetDuration("relay.call_timeout")
			handler := relay.NewHandler(relay.HandlerOptions{
				Logger:        logger,
				Sessions:      store,
				Searcher:      searcher,
				Messenger:     bot,
				SearchEnabled: searchEnabled,
				CallTimeout:   callTimeout,
			})
			hub, err := relay.NewHub(relay.HubOptions{
				Ctx:            ctx,
				Handler:        handler,
				Logger:         logger,
				MaxConcurrency: viper.GetInt("relay.max_concurrency"),
				QueueSize:      viper.GetInt("relay.queue_size"),
			})
			if err != nil {
				return err
			}

			router, err := webhook.NewRouter(webhook.RouterOptions{
				Logger:     logger,
				Token:      token,
				Dispatcher: hub,
			})
			if err != nil {
				return err
			}

			srv := &http.Server{
				Addr:              net.JoinHostPort(bind, strconv.Itoa(port)),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("webhook_server_started",
					"addr", srv.Addr,
					"search_enabled", searchEnabled,
					"model", model,
				)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
					return
				}
				errCh <- nil
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			logger.Info("shutting_down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errCh
		},
	}

	cmd.Flags().String("bot-token", "", "Telegram bot token (also the webhook path segment).")
	cmd.Flags().String("gemini-api-key", "", "Gemini API key.")
	cmd.Flags().String("gemini-model", "", "Gemini model id (default "+gemini.DefaultModel+").")
	cmd.Flags().Int("port", 0, "HTTP listen port (default 8080).")
	cmd.Flags().Bool("search-enabled", true, "Enrich messages with web search context before the model call.")
	cmd.Flags().String("search-url", "", "SearxNG-compatible search endpoint.")

	return cmd
}
