package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// knownConfigKeys are the settings the client actually reads at startup.
// Unknown keys are stored anyway so older configs keep working, but the
// user gets a hint.
var knownConfigKeys = []struct {
	key, desc string
}{
	{"server.url", "backend base URL (default " + defaultServer + ")"},
	{"user.id", "user id sent with every request (default \"default\")"},
}

func isKnownConfigKey(key string) bool {
	for _, k := range knownConfigKeys {
		if k.key == key {
			return true
		}
	}
	return false
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage client configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]
		value := args[1]

		s := getStore()
		defer s.Close()

		if err := s.SetConfig(key, value); err != nil {
			fmt.Printf("Failed to set config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Configuration saved: %s\n", key)
		if !isKnownConfigKey(key) {
			fmt.Printf("Note: %q is not a key the client reads; see 'config list'\n", key)
		}
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		key := args[0]

		s := getStore()
		defer s.Close()

		val, err := s.GetConfig(key)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		if val == "" {
			fmt.Println("(not set)")
		} else {
			fmt.Println(val)
		}
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the settings the client reads and their current values",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		s := getStore()
		defer s.Close()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tVALUE\tDESCRIPTION")
		for _, k := range knownConfigKeys {
			val, err := s.GetConfig(k.key)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				os.Exit(1)
			}
			if val == "" {
				val = "(not set)"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", k.key, val, k.desc)
		}
		w.Flush()
	},
}

func init() {
	RootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configListCmd)
}
