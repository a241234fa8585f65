package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/Hari31416/multimodal-chatbot/internal/chat"
	"github.com/Hari31416/multimodal-chatbot/internal/ui/tui"
)

var (
	serverURL string
	userID    string
	sessionID string
	verbose   bool
	jsonLogs  bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "chatbot",
	Short: "Multimodal chat client",
	Long: `A terminal client for a multimodal chat backend: text, image and
CSV conversations with per-session history and artifacts.`,
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Run: func(cmd *cobra.Command, args []string) {
		runInteractive()
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [message]",
	Short: "Send a single message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runAsk(strings.Join(args, " "))
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check backend connectivity",
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		if err := env.client.Health(context.Background()); err != nil {
			fmt.Printf("Backend unreachable: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Backend healthy:", env.server)
	},
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "Backend base URL (default from config, else http://localhost:8000)")
	RootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "User id sent with every request")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	RootCmd.PersistentFlags().BoolVar(&jsonLogs, "json", false, "JSON log output")

	chatCmd.Flags().StringVar(&sessionID, "session", "", "Resume a specific session instead of the last one")
	askCmd.Flags().StringVar(&sessionID, "session", "", "Send within an existing session")

	RootCmd.AddCommand(chatCmd)
	RootCmd.AddCommand(askCmd)
	RootCmd.AddCommand(pingCmd)
}

func runInteractive() {
	env := mustEnv()
	defer env.Close()

	ctx := context.Background()
	resume := sessionID
	if resume == "" {
		resume, _ = env.store.LastSession()
	}
	if resume != "" {
		if err := env.ctrl.SwitchTo(ctx, resume); err != nil {
			env.obs.Log().Warn().Str("session_id", resume).Err(err).Msg("Could not resume session")
		}
	}

	model := tui.NewModel(env.ctrl)
	program := tea.NewProgram(model, tea.WithAltScreen())
	env.ctrl.SetUI(tui.NewTUI(program))

	if _, err := program.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}

func runAsk(message string) {
	env := mustEnv()
	defer env.Close()

	ctx := context.Background()
	if sessionID != "" {
		if err := env.ctrl.SwitchTo(ctx, sessionID); err != nil {
			fmt.Printf("Failed to load session: %v\n", err)
			os.Exit(1)
		}
	}

	env.ctrl.Send(ctx, message)

	snap := env.ctrl.State().Snapshot()
	if snap.Error != "" {
		fmt.Println(snap.Error)
		os.Exit(1)
	}
	for i := len(snap.Messages) - 1; i >= 0; i-- {
		if snap.Messages[i].Role == chat.RoleAssistant {
			printMessage(snap.Messages[i])
			return
		}
	}
}

func printMessage(m chat.Message) {
	if m.Content != "" {
		fmt.Println(m.Content)
	}
	if m.Code != "" {
		fmt.Println("```\n" + m.Code + "\n```")
	}
	if m.Artifact != nil {
		if m.Artifact.Text != "" {
			fmt.Println(m.Artifact.Text)
		}
		if m.Artifact.Chart != "" {
			fmt.Printf("[chart: %d bytes]\n", len(m.Artifact.Chart))
		}
	}
}
