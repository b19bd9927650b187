package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/gumshoehq/gumshoe/internal/transcript"
)

var askChatID string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask the agent a question and stream the answer",
	Long: `Ask submits a question to the investigation agent and waits for the
final response, printing intermediate progress as the agent works.
Without --chat, a new chat is started for the question.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		ctx := cmd.Context()

		client, rpc, err := newAgent()
		if err != nil {
			return err
		}
		defer rpc.Close()

		chatID := askChatID
		if chatID == "" {
			chatID, err = client.StartChat(ctx)
			if err != nil {
				return fmt.Errorf("start chat: %w", err)
			}
			fmt.Println(idStyle.Render("chat " + chatID))
		}

		entry := transcript.Entry{
			ChatID:    chatID,
			Prompt:    question,
			StartedAt: time.Now(),
		}

		result, err := client.Stream(ctx, chatID, question, func(partial string) {
			entry.Partials++
			fmt.Println(partialStyle.Render(partial))
		})
		entry.FinishedAt = time.Now()

		switch {
		case err == nil:
			entry.Status = "complete"
			entry.Response = result.Response
		case errors.Is(err, context.Canceled):
			entry.Status = "cancelled"
		default:
			entry.Status = "failed"
		}
		recordExchange(entry)

		if err != nil {
			return err
		}

		fmt.Println()
		fmt.Println(result.Response)
		return nil
	},
}

// recordExchange writes the exchange to the local transcript. Failures
// are logged, not fatal: the answer already reached the user.
func recordExchange(e transcript.Entry) {
	store, err := openTranscript()
	if err != nil {
		logger.Warn("transcript unavailable", "error", err)
		return
	}
	defer store.Close()

	// The command context may already be cancelled (ctrl-c); recording
	// should still happen.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := store.Record(ctx, e); err != nil {
		logger.Warn("record exchange", "error", err)
	}
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVar(&askChatID, "chat", "", "Continue an existing chat instead of starting a new one")
}
