package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/flightdeck/adbot/pkg/domain"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the bot from the terminal",
	Long:  `Runs an interactive console session against the configured state backend. Type "exit" to leave.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// The console is a single client; the local lock is enough, so
		// the distributed locker goes unused here.
		store, _, cleanup, err := buildStore(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		bot, err := buildBot(cfg, store, logger)
		if err != nil {
			return err
		}

		conversationID := uuid.NewString()
		ctx := cmd.Context()

		send := func(activity *domain.Activity) error {
			resp, err := bot.Turn(ctx, activity)
			if err != nil {
				return err
			}
			for _, reply := range resp.Replies {
				if reply.Text != "" {
					fmt.Println("bot>", reply.Text)
				}
				for range reply.Attachments {
					fmt.Println("bot> [card]")
				}
			}
			return nil
		}

		base := domain.Activity{
			ChannelID:    "console",
			Conversation: domain.ChannelAccount{ID: conversationID},
			From:         domain.ChannelAccount{ID: "console-user"},
			Recipient:    domain.ChannelAccount{ID: "adbot"},
		}

		join := base
		join.Type = domain.ActivityConversationUpdate
		join.MembersAdded = []domain.ChannelAccount{{ID: "console-user"}}
		if err := send(&join); err != nil {
			return err
		}

		scanner := bufio.NewScanner(os.Stdin)
		for {
			fmt.Print("> ")
			if !scanner.Scan() {
				break
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "" {
				continue
			}
			if text == "exit" || text == "quit" {
				fmt.Println("Bye!")
				break
			}

			msg := base
			msg.Type = domain.ActivityMessage
			msg.Text = text
			if err := send(&msg); err != nil {
				return err
			}
		}
		return scanner.Err()
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
