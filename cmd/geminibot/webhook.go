package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/configutil"
	"github.com/addhe/telegram-bot-gemini-ai-gcf/internal/telegram"
)

func newWebhookCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Manage the Telegram webhook registration",
	}
	cmd.AddCommand(newWebhookSetCmd())
	cmd.AddCommand(newWebhookDeleteCmd())
	return cmd
}

func botFromFlags(cmd *cobra.Command) (*telegram.Client, string, error) {
	token := strings.TrimSpace(configutil.FlagOrViperString(cmd, "bot-token", "telegram.bot_token"))
	if token == "" {
		return nil, "", fmt.Errorf("missing telegram.bot_token (set via --bot-token or BOT_TOKEN)")
	}
	return telegram.NewClient(nil, telegram.DefaultBaseURL, token), token, nil
}

func newWebhookSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Point the bot's webhook at this service",
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, token, err := botFromFlags(cmd)
			if err != nil {
				return err
			}

			webhookURL := strings.TrimSpace(configutil.FlagOrViperString(cmd, "url", "webhook.url"))
			externalURL := strings.TrimSpace(configutil.FlagOrViperString(cmd, "external-url", "webhook.external_url"))
			if webhookURL == "" && externalURL != "" {
				webhookURL = strings.TrimRight(externalURL, "/") + "/" + token
			}
			if webhookURL == "" {
				return fmt.Errorf("missing webhook url (set --url, or --external-url to derive <external-url>/<token>)")
			}

			if err := bot.SetWebhook(cmd.Context(), webhookURL); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "webhook set: %s\n", webhookURL)
			return nil
		},
	}

	cmd.Flags().String("bot-token", "", "Telegram bot token.")
	cmd.Flags().String("url", "", "Full webhook URL, token path included.")
	cmd.Flags().String("external-url", "", "Public base URL of this service; the token path is appended.")

	return cmd
}

func newWebhookDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove the bot's webhook registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			bot, _, err := botFromFlags(cmd)
			if err != nil {
				return err
			}
			if err := bot.DeleteWebhook(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "webhook deleted")
			return nil
		},
	}

	cmd.Flags().String("bot-token", "", "Telegram bot token.")

	return cmd
}
