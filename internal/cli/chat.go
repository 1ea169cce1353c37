package cli

import (
	"github.com/spf13/cobra"

	"github.com/lexfirm/lex/internal/assistant"
	"github.com/lexfirm/lex/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open an interactive chat session",
	Long: `Open a terminal chat session with the assistant. The session keeps the
conversation history and replays it on every turn, the same way the HTTP
API does.`,
	RunE: runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	a := assistant.New(st, newBackend(), logger)
	return tui.Run(a.HandleTurn, cfg.ChatTimeout)
}
