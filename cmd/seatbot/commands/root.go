// ABOUTME: Root CLI command and global flags for seatbot
// ABOUTME: Wires every subcommand and the shared verbose/quiet/format flags
package commands

import (
	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
	dataDir      string
)

const banner = `
███████╗███████╗ █████╗ ████████╗██████╗  ██████╗ ████████╗
██╔════╝██╔════╝██╔══██╗╚══██╔══╝██╔══██╗██╔═══██╗╚══██╔══╝
███████╗█████╗  ███████║   ██║   ██████╔╝██║   ██║   ██║
╚════██║██╔══╝  ██╔══██║   ██║   ██╔══██╗██║   ██║   ██║
███████║███████╗██║  ██║   ██║   ██████╔╝╚██████╔╝   ██║
╚══════╝╚══════╝╚═╝  ╚═╝   ╚═╝   ╚═════╝  ╚═════╝    ╚═╝
`

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seatbot",
		Short: "Inspect and edit the seatbot database",
		Long: banner + `
Seatbot keeps its guild data (counters, sounds, custom commands,
birthdays, reminders and moderation rules) in typed SQLite tables.

This CLI reads and writes those tables directly and can expose them
to LLM agents over MCP.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors and skip summaries")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: json, table, or auto (table on a terminal, JSON otherwise)")
	cmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override the data directory (SEATBOT_DATA_DIR)")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewTablesCmd(),
		NewSchemaCmd(),
		NewGetCmd(),
		NewListCmd(),
		NewSetCmd(),
		NewRemoveCmd(),
		NewRemindCmd(),
		NewMCPCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}
