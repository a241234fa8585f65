package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Hari31416/multimodal-chatbot/internal/chat"
	"github.com/Hari31416/multimodal-chatbot/internal/export"
)

var (
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export [session-id]",
	Short: "Export a session transcript (json, yaml or markdown)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		ctx := context.Background()
		id := args[0]

		exporter, err := export.NewExporter(exportFormat)
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		raws, err := env.client.GetSession(ctx, id)
		if err != nil {
			fmt.Printf("Failed to load session: %v\n", err)
			os.Exit(1)
		}
		result := chat.ConvertHistory(id, raws)

		title := ""
		if sessions, err := env.ctrl.ListSessions(ctx, false); err == nil {
			for _, s := range sessions {
				if s.SessionID == id {
					title = s.Title
					break
				}
			}
		}

		t := &export.Transcript{
			SessionID:  id,
			Title:      title,
			ExportedAt: time.Now(),
			Messages:   result.Messages,
		}

		out := os.Stdout
		if exportOut != "" {
			f, err := os.Create(exportOut) // #nosec G304
			if err != nil {
				fmt.Printf("Failed to create %s: %v\n", exportOut, err)
				os.Exit(1)
			}
			defer f.Close()
			out = f
		}

		if err := exporter.Export(t, out); err != nil {
			fmt.Printf("Export failed: %v\n", err)
			os.Exit(1)
		}
		if exportOut != "" {
			fmt.Println("Wrote", exportOut)
		}
	},
}

func init() {
	RootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "markdown", "Output format: json, yaml or markdown")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output file (default stdout)")
}
