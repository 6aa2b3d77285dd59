package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/schemadraft/schemadraft/internal/diagram"
	"github.com/schemadraft/schemadraft/internal/extractor"
	"github.com/schemadraft/schemadraft/internal/generator"
	"github.com/schemadraft/schemadraft/internal/prompt"
	"github.com/schemadraft/schemadraft/internal/schema"
	"github.com/schemadraft/schemadraft/internal/session"
	"github.com/schemadraft/schemadraft/internal/util"
	"github.com/spf13/cobra"
)

var generateCmd = &cobra.Command{
	Use:   "generate [description]",
	Short: "Generate a schema from a description and print it",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(cmd).WithPrefix("[generate]")
		defer util.RecoverPanic(log)

		description := strings.Join(args, " ")
		schemaType := mustFlagString(cmd, "schema-type", false)
		if schemaType == "" {
			schemaType = schema.SchemaTypeRelational
		}
		includeCode := mustFlagBool(cmd, "include-code", false)
		format := mustFlagString(cmd, "format", false)
		outFile := mustFlagString(cmd, "out", false)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		client, err := newLLMClient(log)
		if err != nil {
			log.Error("error: %s", err)
			os.Exit(1)
		}

		var cache generator.ResponseCache
		if !mustFlagBool(cmd, "no-cache", false) {
			sessions, err := session.New(session.Config{
				Context: ctx,
				Logger:  log,
				Dir:     getDataDir(cmd, log),
			})
			if err != nil {
				log.Error("error opening session store: %s", err)
				os.Exit(1)
			}
			defer sessions.Close()
			cache = sessions
		}

		gen := generator.New(generator.Config{
			Logger: log,
			Client: client,
			Cache:  cache,
		})

		var result extractor.Result
		util.RunTaskWithSpinner("Generating schema ...", func() {
			result = gen.Generate(ctx, prompt.Request{
				Description: description,
				SchemaType:  schemaType,
				IncludeCode: includeCode,
			})
		})

		if !result.OK() {
			color.Red("%s", result.Failure.Error)
			if result.Failure.RawResponse != "" {
				fmt.Fprintln(os.Stderr, result.Failure.RawResponse)
			}
			os.Exit(1)
		}

		var output string
		switch format {
		case "", "json":
			var pretty json.RawMessage = result.JSON
			buf, err := json.MarshalIndent(pretty, "", "  ")
			if err != nil {
				log.Error("error formatting json: %s", err)
				os.Exit(1)
			}
			output = string(buf)
		default:
			output, err = diagram.Render(format, result.Document)
			if err != nil {
				log.Error("error: %s", err)
				os.Exit(1)
			}
		}

		if outFile != "" {
			if err := os.WriteFile(outFile, []byte(output+"\n"), 0644); err != nil {
				log.Error("error writing %s: %s", outFile, err)
				os.Exit(1)
			}
			log.Info("wrote %s", outFile)
			return
		}
		fmt.Println(output)
	},
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("schema-type", schema.SchemaTypeRelational, "relational or nosql")
	generateCmd.Flags().Bool("include-code", false, "ask the model for sql and prisma code")
	generateCmd.Flags().String("format", "json", "output format: json, mermaid or dot")
	generateCmd.Flags().String("out", "", "write output to this file instead of stdout")
	generateCmd.Flags().Bool("no-cache", false, "skip the prompt response cache")
}
