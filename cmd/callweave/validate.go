package main

import (
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/callweave/callweave/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <workflow-file>",
	Short: "Check a workflow definition for structural errors",
	Long:  `Parses a workflow file and reports missing start nodes, dangling edges, unreachable nodes, and malformed conditional branching.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(path string) error {
	wf, err := loadWorkflow(path)
	if err != nil {
		return err
	}

	out := termenv.NewOutput(os.Stdout)
	errs := validator.Validate(wf)
	if len(errs) == 0 {
		fmt.Println(out.String("Workflow is valid").Foreground(out.Color("2")))
		return nil
	}

	fmt.Println(out.String(fmt.Sprintf("%d structural error(s):", len(errs))).Foreground(out.Color("1")))
	for _, se := range errs {
		fmt.Printf("  - %s\n", se.Error())
	}
	os.Exit(1)
	return nil
}
