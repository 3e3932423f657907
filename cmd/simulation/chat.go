package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"voice-assistant-be/internal/pkg/logger"
	"voice-assistant-be/pkg/assistant"
	"voice-assistant-be/pkg/dialogue"
	"voice-assistant-be/pkg/encyclopedia"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	userColor      = color.New(color.FgCyan, color.Bold)
	assistantColor = color.New(color.FgGreen)
	stateColor     = color.New(color.FgHiBlack)
	errorColor     = color.New(color.FgRed)
)

func newChatCmd() *cobra.Command {
	var offline bool
	var logPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Talk to an in-process assistant with an in-memory calendar",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.NewNopLogger()
			if logPath != "" {
				log = logger.NewIsolatedLogger(logPath)
			}
			defer log.Sync()

			opts := []assistant.Option{assistant.WithEventStore(assistant.NewMemoryEventStore())}
			if !offline {
				opts = append(opts, assistant.WithEncyclopedia(encyclopedia.NewClient(encyclopedia.DefaultConfig(), nil, log)))
			}
			router := assistant.NewRouter(dialogue.NewManager(log), log, opts...)
			session := dialogue.NewSession("console", uuid.New())

			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), router, session)
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "Disable encyclopedia lookups.")
	cmd.Flags().StringVar(&logPath, "log", "", "Write assistant logs to this file.")
	return cmd
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, router *assistant.Router, session *dialogue.Session) error {
	fmt.Fprintln(out, "Type a message. \"quit\" exits.")
	scanner := bufio.NewScanner(in)

	for {
		userColor.Fprint(out, "you> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		text := scanner.Text()
		if strings.EqualFold(strings.TrimSpace(text), "quit") {
			return nil
		}

		resp := router.Handle(ctx, session, text)
		printReply(out, string(resp.Intent), resp.Text, resp.State)
	}
}

func printReply(out io.Writer, intent, text, state string) {
	c := assistantColor
	if intent == string(assistant.IntentFailure) {
		c = errorColor
	}
	c.Fprintf(out, "bot> %s\n", text)
	stateColor.Fprintf(out, "     [%s -> %s]\n", intent, state)
}
