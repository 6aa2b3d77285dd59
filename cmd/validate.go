package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/schemadraft/schemadraft/internal/validate"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [schema.json]",
	Short: "Check a schema file for structural and semantic problems",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(cmd).WithPrefix("[validate]")

		buf, err := os.ReadFile(args[0])
		if err != nil {
			log.Error("error reading %s: %s", args[0], err)
			os.Exit(1)
		}
		warnings, err := validate.Document(buf)
		if err != nil {
			log.Error("error: %s", err)
			os.Exit(1)
		}
		if len(warnings) == 0 {
			color.Green("%s looks good", args[0])
			return
		}
		for _, warning := range warnings {
			color.Yellow("warning: %s", warning)
		}
		if mustFlagBool(cmd, "strict", false) {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("strict", false, "exit non-zero when warnings are found")
}
