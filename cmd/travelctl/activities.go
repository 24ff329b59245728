package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"travel-workers/pkg/registry"
)

var activitiesCmd = &cobra.Command{
	Use:   "activities",
	Short: "List, export or check the job types served by the worker manager",
}

var activitiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered activities",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Default()
		if flagJSON {
			return printJSON(cmd.OutOrStdout(), reg)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TASK TYPE\tCATEGORY\tRETRIES\tBPMN ERRORS")
		for _, a := range reg.Activities {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", a.TaskType, a.Category, a.Retries, strings.Join(a.BPMNErrors, ","))
		}
		return tw.Flush()
	},
}

var activitiesExportCmd = &cobra.Command{
	Use:     "export <path>",
	Short:   "Write the activity registry as JSON",
	Args:    cobra.ExactArgs(1),
	Example: `  travelctl activities export configs/activity-registry.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Default()
		if err := registry.Save(reg, args[0], time.Now()); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d activities to %s\n", len(reg.Activities), args[0])
		return nil
	},
}

var activitiesCheckCmd = &cobra.Command{
	Use:   "check <path>",
	Short: "Validate a registry file against the task types this build serves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := registry.LoadRegistry(args[0])
		if err != nil {
			if os.IsNotExist(err) {
				return invalidArgsError(fmt.Sprintf("no registry at %s", args[0]),
					"travelctl activities export "+args[0])
			}
			return invalidArgsError(err.Error())
		}
		if err := reg.Validate(); err != nil {
			return invalidArgsError(fmt.Sprintf("registry validation failed: %v", err))
		}

		served := registry.Default()
		var missing, unknown []string
		for _, tt := range served.TaskTypes() {
			if _, ok := reg.Find(tt); !ok {
				missing = append(missing, tt)
			}
		}
		for _, tt := range reg.TaskTypes() {
			if _, ok := served.Find(tt); !ok {
				unknown = append(unknown, tt)
			}
		}
		if len(missing) > 0 || len(unknown) > 0 {
			return &cliError{
				Code:        "REGISTRY_DRIFT",
				Message:     fmt.Sprintf("registry out of date: missing %v, unknown %v", missing, unknown),
				Suggestions: []string{"travelctl activities export " + args[0]},
				ExitCode:    ExitRejected,
			}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registry ok: %d activities\n", len(reg.Activities))
		return nil
	},
}

func init() {
	activitiesCmd.AddCommand(activitiesListCmd, activitiesExportCmd, activitiesCheckCmd)
	rootCmd.AddCommand(activitiesCmd)
}
