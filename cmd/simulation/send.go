package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"voice-assistant-be/internal/dto"
	"voice-assistant-be/internal/pkg/serverutils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var (
		server       string
		token        string
		secret       string
		user         string
		conversation string
	)

	cmd := &cobra.Command{
		Use:   "send [message...]",
		Short: "Send messages to a running server, one per argument",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				userID, err := uuid.Parse(user)
				if err != nil {
					return fmt.Errorf("--user must be a uuid when --token is not given: %w", err)
				}
				if token, err = serverutils.SignToken(userID, secret); err != nil {
					return err
				}
			}

			client := &http.Client{Timeout: 30 * time.Second}
			endpoint := strings.TrimRight(server, "/") + "/api/assistant/v1/message"
			for _, text := range args {
				userColor.Fprintf(cmd.OutOrStdout(), "you> %s\n", text)
				reply, err := postMessage(client, endpoint, token, dto.AssistantMessageRequest{
					ConversationID: conversation,
					Text:           text,
				})
				if err != nil {
					errorColor.Fprintf(cmd.OutOrStdout(), "error: %v\n", err)
					return err
				}
				printReply(cmd.OutOrStdout(), reply.Intent, reply.Text, reply.State)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&server, "server", "http://localhost:3000", "Server base URL.")
	cmd.Flags().StringVar(&token, "token", "", "Bearer token.")
	cmd.Flags().StringVar(&secret, "secret", "", "JWT secret used to sign a token for --user.")
	cmd.Flags().StringVar(&user, "user", "", "User id to sign a token for.")
	cmd.Flags().StringVar(&conversation, "conversation", "console", "Conversation id.")
	return cmd
}

func postMessage(client *http.Client, endpoint, token string, req dto.AssistantMessageRequest) (*dto.AssistantMessageResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var env struct {
		Message string                        `json:"message"`
		Data    dto.AssistantMessageResponse `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response (%s): %w", resp.Status, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", resp.Status, env.Message)
	}
	return &env.Data, nil
}
