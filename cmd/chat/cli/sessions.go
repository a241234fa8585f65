package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Hari31416/multimodal-chatbot/internal/chat"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage chat sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions on the backend",
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		sessions, err := env.ctrl.ListSessions(context.Background(), true)
		if err != nil {
			fmt.Printf("Failed to list sessions: %v\n", err)
			os.Exit(1)
		}
		if len(sessions) == 0 {
			fmt.Println("No sessions.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tMESSAGES\tARTIFACTS\tUPDATED")
		for _, s := range sessions {
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\n",
				s.SessionID, s.Title, s.NumMessages, s.NumArtifacts, s.UpdatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
	},
}

var sessionsNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a session and print its id",
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		if err := env.ctrl.NewChat(context.Background()); err != nil {
			fmt.Printf("Failed to create session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(env.ctrl.State().SessionID())
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete a session on the backend",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		if err := env.ctrl.DeleteSession(context.Background(), args[0]); err != nil {
			fmt.Printf("Failed to delete session: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Deleted", args[0])
	},
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print a session transcript",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		raws, err := env.client.GetSession(context.Background(), args[0])
		if err != nil {
			fmt.Printf("Failed to load session: %v\n", err)
			os.Exit(1)
		}

		result := chat.ConvertHistory(args[0], raws)
		for _, decErr := range result.DecodeErrs {
			env.obs.Log().Warn().Err(decErr).Msg("Skipped undecodable artifact")
		}
		for _, m := range result.Messages {
			fmt.Printf("[%s]", m.Role)
			if m.Modality != chat.ModalityText {
				fmt.Printf(" (%s)", m.Modality)
			}
			fmt.Println()
			printMessage(m)
			fmt.Println()
		}
	},
}

func init() {
	RootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsNewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
}
