package cmd

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/schemadraft/schemadraft/internal/llm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type doctorCheck struct {
	name string
	ok   bool
	note string
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the local environment is ready to generate schemas",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var mu sync.Mutex
		var checks []doctorCheck
		record := func(name string, ok bool, note string) {
			mu.Lock()
			defer mu.Unlock()
			checks = append(checks, doctorCheck{name: name, ok: ok, note: note})
		}

		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			installed := llm.OllamaInstalled()
			note := "found on PATH"
			if !installed {
				note = "not found on PATH, install from https://ollama.com"
			}
			record("ollama installed", installed, note)
			return nil
		})
		g.Go(func() error {
			reachable := llm.OllamaReachable(ctx, cfg.OllamaURL)
			note := cfg.OllamaURL
			if !reachable {
				note = fmt.Sprintf("no server at %s, run: ollama serve", cfg.OllamaURL)
			}
			record("ollama server", reachable, note)
			return nil
		})
		g.Go(func() error {
			models, err := llm.OllamaModels(ctx, cfg.OllamaURL)
			if err != nil {
				record("model pulled", false, fmt.Sprintf("could not list models: %s", err))
				return nil
			}
			for _, name := range models {
				if name == cfg.Model || strings.HasPrefix(name, cfg.Model+":") {
					record("model pulled", true, name)
					return nil
				}
			}
			record("model pulled", false, fmt.Sprintf("%s not found, run: ollama pull %s", cfg.Model, cfg.Model))
			return nil
		})
		g.Go(func() error {
			if cfg.HFToken == "" {
				record("huggingface token", false, "SCHEMADRAFT_HF_TOKEN not set (only needed for --provider huggingface)")
			} else {
				record("huggingface token", true, "set")
			}
			return nil
		})
		g.Wait()

		failed := 0
		for _, check := range checks {
			if check.ok {
				color.Green("ok    %-20s %s", check.name, check.note)
			} else {
				color.Yellow("warn  %-20s %s", check.name, check.note)
				failed++
			}
		}
		if failed == 0 {
			fmt.Println("\nall checks passed")
		} else {
			fmt.Printf("\n%d check(s) need attention\n", failed)
		}
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}
