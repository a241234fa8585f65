package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/Hari31416/multimodal-chatbot/internal/chat"
)

var uploadCaption string

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload artifacts into a session",
}

var uploadImageCmd = &cobra.Command{
	Use:   "image [glob]",
	Short: "Upload one or more images (doublestar glob)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		files, err := globFiles(args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		for i := range files {
			files[i].Caption = uploadCaption
		}

		runUpload(env, func(ctx context.Context) error {
			return env.ctrl.UploadImages(ctx, files)
		})
		for _, img := range env.ctrl.State().Snapshot().Images {
			fmt.Println(img.ArtifactID)
		}
	},
}

var uploadCSVCmd = &cobra.Command{
	Use:   "csv [file]",
	Short: "Upload a CSV file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		data, err := os.ReadFile(args[0]) // #nosec G304
		if err != nil {
			fmt.Printf("Failed to read %s: %v\n", args[0], err)
			os.Exit(1)
		}
		f := chat.UploadFile{
			Name:    filepath.Base(args[0]),
			Data:    data,
			Caption: uploadCaption,
		}

		runUpload(env, func(ctx context.Context) error {
			return env.ctrl.UploadCSV(ctx, f)
		})

		snap := env.ctrl.State().Snapshot()
		if snap.CSV != nil {
			fmt.Println(snap.CSV.ArtifactID)
		}
		if !snap.Dataset.Empty() {
			fmt.Printf("Columns: %v (%d rows)\n", snap.Dataset.Columns, snap.Dataset.NumRows)
		}
	},
}

var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Manage session artifacts",
}

var artifactsRmCmd = &cobra.Command{
	Use:   "rm [artifact-id]",
	Short: "Delete an artifact from the active session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		env := mustEnv()
		defer env.Close()

		ctx := context.Background()
		if sessionID != "" {
			if err := env.ctrl.SwitchTo(ctx, sessionID); err != nil {
				fmt.Printf("Failed to load session: %v\n", err)
				os.Exit(1)
			}
		}
		if err := env.ctrl.RemoveArtifact(ctx, args[0]); err != nil {
			fmt.Printf("Failed to delete artifact: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Deleted", args[0])
	},
}

// consoleUI prints controller events on stdout for non-interactive runs.
type consoleUI struct{}

func (consoleUI) Status(msg string) { fmt.Println(msg) }

func (consoleUI) Progress(file string, pct int) {
	fmt.Printf("\r%s: %d%%", file, pct)
	if pct >= 100 {
		fmt.Println()
	}
}

func (consoleUI) Log(msg string) { fmt.Println(msg) }

func runUpload(env *env, op func(ctx context.Context) error) {
	env.ctrl.SetUI(consoleUI{})
	ctx := context.Background()
	if sessionID != "" {
		if err := env.ctrl.SwitchTo(ctx, sessionID); err != nil {
			fmt.Printf("Failed to load session: %v\n", err)
			os.Exit(1)
		}
	}
	if err := op(ctx); err != nil {
		fmt.Printf("\nUpload failed: %v\n", err)
		os.Exit(1)
	}
}

func globFiles(pattern string) ([]chat.UploadFile, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}

	var files []chat.UploadFile
	for _, path := range matches {
		data, err := os.ReadFile(path) // #nosec G304
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		files = append(files, chat.UploadFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

func init() {
	RootCmd.AddCommand(uploadCmd)
	RootCmd.AddCommand(artifactsCmd)
	uploadCmd.AddCommand(uploadImageCmd)
	uploadCmd.AddCommand(uploadCSVCmd)
	artifactsCmd.AddCommand(artifactsRmCmd)

	uploadCmd.PersistentFlags().StringVar(&uploadCaption, "caption", "", "Caption or description stored with the artifact")
	uploadCmd.PersistentFlags().StringVar(&sessionID, "session", "", "Target session (default: a fresh session)")
	artifactsRmCmd.Flags().StringVar(&sessionID, "session", "", "Session owning the artifact")
}
