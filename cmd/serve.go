package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schemadraft/schemadraft/internal/generator"
	"github.com/schemadraft/schemadraft/internal/llm"
	"github.com/schemadraft/schemadraft/internal/server"
	"github.com/schemadraft/schemadraft/internal/session"
	"github.com/schemadraft/schemadraft/internal/util"
	"github.com/spf13/cobra"

	_ "github.com/schemadraft/schemadraft/internal/targets/mongodb"
	_ "github.com/schemadraft/schemadraft/internal/targets/mysql"
	_ "github.com/schemadraft/schemadraft/internal/targets/postgres"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web designer",
	Run: func(cmd *cobra.Command, args []string) {
		log := newLogger(cmd).WithPrefix("[serve]")
		defer util.RecoverPanic(log)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.Provider == "ollama" && mustFlagBool(cmd, "start-ollama", false) {
			if err := llm.EnsureOllamaRunning(ctx, log, cfg.OllamaURL, 30*time.Second); err != nil {
				log.Error("error starting ollama: %s", err)
				os.Exit(1)
			}
		}

		client, err := newLLMClient(log)
		if err != nil {
			log.Error("error: %s", err)
			os.Exit(1)
		}

		dataDir := getDataDir(cmd, log)
		sessions, err := session.New(session.Config{
			Context: ctx,
			Logger:  log,
			Dir:     dataDir,
		})
		if err != nil {
			log.Error("error opening session store: %s", err)
			os.Exit(1)
		}
		defer sessions.Close()

		gen := generator.New(generator.Config{
			Logger: log,
			Client: client,
			Cache:  sessions,
		})

		addr := mustFlagString(cmd, "addr", false)
		if addr == "" {
			addr = cfg.Addr
		}
		srv := server.New(server.Config{
			Logger:    log,
			Generator: gen,
			Sessions:  sessions,
			Addr:      addr,
		})

		go func() {
			c := make(chan os.Signal, 1)
			signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			<-c
			log.Info("shutting down")
			cancel()
		}()

		if err := srv.Run(ctx); err != nil {
			log.Error("server error: %s", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "address to listen on")
	serveCmd.Flags().Bool("start-ollama", false, "start a local ollama server if one is not running")
}
