package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/callweave/callweave"
	"github.com/callweave/callweave/internal/adapters/redis"
	"github.com/callweave/callweave/internal/logging"
	"github.com/callweave/callweave/pkg/domain"
	"github.com/callweave/callweave/pkg/ports"
)

var rootCmd = &cobra.Command{
	Use:   "callweave",
	Short: "Callweave is a call workflow engine",
	Long:  `Callweave models automated phone conversations as graphs of typed nodes and executes them against a telephony backend.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("redis", "", "Redis address for workflow and execution storage (empty = in-memory)")
	rootCmd.PersistentFlags().String("redis-password", "", "Redis password")
	rootCmd.PersistentFlags().Int("redis-db", 0, "Redis database number")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// newEngine wires storage from the persistent flags around the given
// telephony adapter.
func newEngine(cmd *cobra.Command, logger *slog.Logger, adapter ports.Telephony, opts ...callweave.Option) *callweave.Engine {
	opts = append(opts, callweave.WithLogger(logger))

	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		password, _ := cmd.Flags().GetString("redis-password")
		db, _ := cmd.Flags().GetInt("redis-db")
		store := redis.New(addr, password, db)
		opts = append(opts,
			callweave.WithWorkflowStore(store),
			callweave.WithExecutionStore(store),
		)
	}

	return callweave.New(adapter, opts...)
}

// loadWorkflow reads a workflow definition from a YAML or JSON file.
func loadWorkflow(path string) (*domain.Workflow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading workflow file: %w", err)
	}

	var wf domain.Workflow
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("parsing workflow YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &wf); err != nil {
			return nil, fmt.Errorf("parsing workflow JSON: %w", err)
		}
	}
	return &wf, nil
}
