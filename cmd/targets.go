package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/schemadraft/schemadraft/internal/targets"
	"github.com/spf13/cobra"

	_ "github.com/schemadraft/schemadraft/internal/targets/mongodb"
	_ "github.com/schemadraft/schemadraft/internal/targets/mysql"
	_ "github.com/schemadraft/schemadraft/internal/targets/postgres"
)

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the supported deployment targets",
	Run: func(cmd *cobra.Command, args []string) {
		for _, md := range targets.GetMetadata() {
			color.New(color.FgCyan, color.Bold).Printf("%s\n", md.Name)
			fmt.Printf("  %s\n", md.Description)
			color.New(color.Faint).Printf("  example: %s\n\n", md.ExampleURL)
		}
	},
}

func init() {
	rootCmd.AddCommand(targetsCmd)
}
