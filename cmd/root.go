package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopmonkeyus/go-common/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set by main from the build info.
var Version string

func mustFlagBool(cmd *cobra.Command, name string, required bool) bool {
	val, err := cmd.Flags().GetBool(name)
	if required && err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
	return val
}

func mustFlagString(cmd *cobra.Command, name string, required bool) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		fmt.Printf("error: %s\n", err)
		os.Exit(1)
	}
	if required && val == "" {
		fmt.Printf("error: required flag --%s missing\n", name)
		os.Exit(1)
	}
	return val
}

func newLogger(cmd *cobra.Command) logger.Logger {
	if mustFlagBool(cmd, "verbose", false) {
		return logger.NewConsoleLogger(logger.LevelTrace)
	}
	if mustFlagBool(cmd, "silent", false) {
		return logger.NewConsoleLogger(logger.LevelError)
	}
	return logger.NewConsoleLogger(logger.LevelInfo)
}

func getDataDir(cmd *cobra.Command, log logger.Logger) string {
	dir := mustFlagString(cmd, "data-dir", false)
	if dir == "" {
		dir = cfg.DataDir
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Error("error getting home directory: %s", err)
			os.Exit(1)
		}
		dir = filepath.Join(home, ".schemadraft")
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		log.Error("error creating data directory %s: %s", dir, err)
		os.Exit(1)
	}
	return dir
}

// config holds the settings every command shares. Precedence, highest first:
// flags, environment (SCHEMADRAFT_*), config file, defaults.
type config struct {
	Provider    string  `mapstructure:"provider"`
	OllamaURL   string  `mapstructure:"ollama_url"`
	Model       string  `mapstructure:"model"`
	HFToken     string  `mapstructure:"hf_token"`
	HFRepo      string  `mapstructure:"hf_repo"`
	Temperature float64 `mapstructure:"temperature"`
	NumCtx      int     `mapstructure:"num_ctx"`
	Addr        string  `mapstructure:"addr"`
	DataDir     string  `mapstructure:"data_dir"`
}

var (
	cfgFile string
	cfg     config
)

func loadConfig() error {
	godotenv.Load()

	v := viper.New()
	v.SetDefault("provider", "ollama")
	v.SetDefault("ollama_url", "http://localhost:11434")
	v.SetDefault("model", "codellama")
	v.SetDefault("hf_repo", "mistralai/Mistral-7B-Instruct-v0.2")
	v.SetDefault("temperature", 0.1)
	v.SetDefault("num_ctx", 4096)
	v.SetDefault("addr", ":8501")

	v.SetEnvPrefix("SCHEMADRAFT")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	} else {
		paths := []string{"schemadraft.yaml", "schemadraft.yml"}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, filepath.Join(home, ".schemadraft", "schemadraft.yaml"))
		}
		for _, p := range paths {
			if _, err := os.Stat(p); err == nil {
				v.SetConfigFile(p)
				if err := v.ReadInConfig(); err != nil {
					return fmt.Errorf("error reading config file %s: %w", p, err)
				}
				break
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("unable to decode config: %w", err)
	}
	return nil
}

var rootCmd = &cobra.Command{
	Use:   "schemadraft",
	Short: "Design database schemas from plain-language descriptions",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.Version = Version
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to the config file")
	rootCmd.PersistentFlags().String("data-dir", "", "directory for local state")
	rootCmd.PersistentFlags().Bool("verbose", false, "turn on verbose logging")
	rootCmd.PersistentFlags().Bool("silent", false, "turn off all logging except errors")
}
