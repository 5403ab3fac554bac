package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/flightdeck/adbot/pkg/domain"
	"github.com/flightdeck/adbot/pkg/ports"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage persistent conversation state",
	Long:  `List, inspect, and remove conversations stored in the configured state backend. Conversation keys have the form <channel>:<conversation-id>.`,
}

var sessionLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all active conversations",
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := getStore(cmd)
		defer cleanup()

		keys, err := store.ListConversations(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing conversations: %v\n", err)
			os.Exit(1)
		}

		if len(keys) == 0 {
			fmt.Println("No active conversations found.")
			return
		}

		fmt.Println("Active Conversations:")
		for _, k := range keys {
			fmt.Println("- " + k)
		}
	},
}

var sessionInspectCmd = &cobra.Command{
	Use:   "inspect <conversation-key>",
	Short: "Inspect the dialog stack of a conversation",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key, err := parseConversationKey(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		store, cleanup := getStore(cmd)
		defer cleanup()

		state, err := store.LoadConversation(cmd.Context(), key)
		if err != nil {
			fmt.Printf("Error loading conversation '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		data, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling state: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var sessionRmCmd = &cobra.Command{
	Use:   "rm <conversation-key>...",
	Short: "Remove one or more conversations",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, cleanup := getStore(cmd)
		defer cleanup()

		hasError := false
		for _, arg := range args {
			key, err := parseConversationKey(arg)
			if err != nil {
				fmt.Println(err)
				hasError = true
				continue
			}
			if err := store.DeleteConversation(cmd.Context(), key); err != nil {
				fmt.Printf("Error removing '%s': %v\n", arg, err)
				hasError = true
			} else {
				fmt.Printf("Removed conversation '%s'\n", arg)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionLsCmd)
	sessionCmd.AddCommand(sessionInspectCmd)
	sessionCmd.AddCommand(sessionRmCmd)
}

func getStore(cmd *cobra.Command) (ports.StateStore, func()) {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	store, _, cleanup, err := buildStore(cfg)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return store, cleanup
}

func parseConversationKey(s string) (domain.ConversationKey, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return domain.ConversationKey{}, fmt.Errorf("invalid conversation key %q: want <channel>:<conversation-id>", s)
	}
	return domain.ConversationKey{ChannelID: parts[0], ConversationID: parts[1]}, nil
}
