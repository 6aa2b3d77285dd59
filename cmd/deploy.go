package cmd

import (
	"context"
	"encoding/json"
	"os"

	"github.com/fatih/color"
	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/schemadraft/schemadraft/internal/targets"
	"github.com/schemadraft/schemadraft/internal/util"
	"github.com/spf13/cobra"

	_ "github.com/schemadraft/schemadraft/internal/targets/mongodb"
	_ "github.com/schemadraft/schemadraft/internal/targets/mysql"
	_ "github.com/schemadraft/schemadraft/internal/targets/postgres"
)

var deployCmd = &cobra.Command{
	Use:   "deploy [schema.json]",
	Short: "Deploy a schema file to a database",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(cmd).WithPrefix("[deploy]")
		defer util.RecoverPanic(log)

		url := mustFlagString(cmd, "url", true)
		dryRun := mustFlagBool(cmd, "dry-run", false)

		buf, err := os.ReadFile(args[0])
		if err != nil {
			log.Error("error reading %s: %s", args[0], err)
			os.Exit(1)
		}
		var doc schema.Document
		if err := json.Unmarshal(buf, &doc); err != nil {
			log.Error("error parsing %s: %s", args[0], err)
			os.Exit(1)
		}

		target, err := targets.ForURL(url)
		if err != nil {
			log.Error("error: %s", err)
			os.Exit(1)
		}
		masked, _ := util.MaskURL(url)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if err := target.Test(ctx, log, url); err != nil {
			log.Error("error connecting to %s: %s", masked, err)
			os.Exit(1)
		}
		if dryRun {
			color.Green("connection to %s ok (dry run, nothing deployed)", masked)
			return
		}

		util.RunTaskWithSpinner("Deploying schema ...", func() {
			err = target.Deploy(ctx, log, url, &doc)
		})
		if err != nil {
			log.Error("error deploying to %s: %s", masked, err)
			os.Exit(1)
		}
		color.Green("schema deployed to %s", masked)
	},
}

func init() {
	rootCmd.AddCommand(deployCmd)
	deployCmd.Flags().String("url", "", "the database connection url")
	deployCmd.Flags().Bool("dry-run", false, "test the connection but don't deploy")
}
