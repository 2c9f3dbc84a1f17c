package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	chatcmd "github.com/Alijeyrad/mindcare_backend/cmd/chat"
	httpcmd "github.com/Alijeyrad/mindcare_backend/cmd/http"
	systemcmd "github.com/Alijeyrad/mindcare_backend/cmd/system"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "mindcare",
	Short: "MindCare crisis-support backend for psychologists and their patients.",
	Long: `MindCare connects patients with their psychologist. Psychologists enroll
patients with single-use invite codes, patients raise crisis alerts, and both
sides talk through a polling chat.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(chatcmd.NewChatCommand())
}
