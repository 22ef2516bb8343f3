package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/callweave/callweave/internal/adapters/sim"
	"github.com/callweave/callweave/internal/runtime"
	"github.com/callweave/callweave/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run <workflow-file>",
	Short: "Execute a workflow against the simulated telephony backend",
	Long: `Loads a workflow definition from a YAML or JSON file, executes it with
simulated calls and messages, and prints the execution log.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runWorkflow(cmd, args[0]); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().String("phone", "", "Callee phone number")
	runCmd.Flags().StringArray("input", nil, "Scripted response for input nodes (repeatable, empty = timeout)")
}

func runWorkflow(cmd *cobra.Command, path string) error {
	logger := newLogger(cmd)

	wf, err := loadWorkflow(path)
	if err != nil {
		return err
	}

	responses, _ := cmd.Flags().GetStringArray("input")
	adapter := sim.New(sim.WithLogger(logger), sim.WithResponses(responses...))
	eng := newEngine(cmd, logger, adapter)

	// Ctrl-C cancels the run instead of killing the process, so the
	// execution log still reflects the cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var execOpts []runtime.ExecOption
	if phone, _ := cmd.Flags().GetString("phone"); phone != "" {
		execOpts = append(execOpts, runtime.WithInitialData(map[string]string{
			domain.KeyPhoneNumber: domain.NormalizePhoneNumber(phone),
		}))
	}

	exec, err := eng.Execute(ctx, wf, execOpts...)
	if exec == nil {
		return err
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Printf("Execution finished with error: %v\n", err)
	}

	printExecution(exec)
	return nil
}

func printExecution(exec *domain.Execution) {
	out := termenv.NewOutput(os.Stdout)

	fmt.Println()
	status := out.String(string(exec.Status)).Bold()
	switch exec.Status {
	case domain.ExecCompleted:
		status = status.Foreground(out.Color("2"))
	case domain.ExecFailed:
		status = status.Foreground(out.Color("1"))
	case domain.ExecCancelled:
		status = status.Foreground(out.Color("3"))
	}
	fmt.Printf("Execution %s: %s", exec.ID, status)
	if exec.ErrorKind != "" {
		fmt.Printf(" (%s)", exec.ErrorKind)
	}
	fmt.Println()

	for _, entry := range exec.Log {
		event := out.String(string(entry.Event)).Foreground(out.Color("6"))
		fmt.Printf("  %s  %-20s %s", entry.Timestamp.Format("15:04:05.000"), event, entry.NodeID)
		if entry.Message != "" {
			fmt.Printf("  %s", entry.Message)
		}
		fmt.Println()
	}

	if len(exec.Data) > 0 {
		fmt.Println("\nCollected data:")
		for k, v := range exec.Data {
			fmt.Printf("  %s = %s\n", k, v)
		}
	}
}
