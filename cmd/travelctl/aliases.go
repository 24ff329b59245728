package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"travel-workers/internal/app"
	"travel-workers/internal/query"
)

var flagBuiltin bool

var aliasesCmd = &cobra.Command{
	Use:   "aliases",
	Short: "List and edit custom location aliases",
}

var aliasesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List custom aliases (--builtin to include the built-in table)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			custom := s.Repository.LoadCustomAliases(ctx)
			if custom == nil {
				custom = []query.LocationAlias{}
			}
			var builtin []query.LocationAlias
			if flagBuiltin {
				builtin = query.BuiltinAliases()
			}

			if flagJSON {
				out := map[string]interface{}{"custom": custom}
				if flagBuiltin {
					out["builtin"] = builtin
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KEY\tTARGET\tSOURCE")
			for _, a := range sortedAliases(custom) {
				fmt.Fprintf(tw, "%s\t%s\tcustom\n", a.Key, a.Target)
			}
			for _, a := range sortedAliases(builtin) {
				fmt.Fprintf(tw, "%s\t%s\tbuiltin\n", a.Key, a.Target)
			}
			return tw.Flush()
		})
	},
}

var aliasesAddCmd = &cobra.Command{
	Use:     "add <key>",
	Short:   "Add or replace a custom alias",
	Args:    cobra.MinimumNArgs(1),
	Example: `  travelctl aliases add "the berg" --area Drakensberg`,
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.Join(args, " ")
		target := locationFromFlags()
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			shadows, err := s.Repository.AddCustomAlias(ctx, key, target)
			if err != nil {
				return aliasError(err)
			}
			k := query.NormalizeAliasKey(key)
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"key":            k,
					"target":         target.Normalize(),
					"shadowsBuiltin": shadows,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added %q -> %s\n", k, target.Normalize())
			if shadows {
				fmt.Fprintf(cmd.OutOrStdout(), "note: %q overrides a built-in alias\n", k)
			}
			return nil
		})
	},
}

var aliasesRemoveCmd = &cobra.Command{
	Use:   "remove <key>",
	Short: "Remove a custom alias",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.Join(args, " ")
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			removed, err := s.Repository.RemoveCustomAlias(ctx, key)
			if err != nil {
				return aliasError(err)
			}
			if !removed {
				return &cliError{
					Code:        "NOT_FOUND",
					Message:     fmt.Sprintf("no custom alias %q", query.NormalizeAliasKey(key)),
					Suggestions: []string{"travelctl aliases list"},
					ExitCode:    ExitRejected,
				}
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{"removed": query.NormalizeAliasKey(key)})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %q\n", query.NormalizeAliasKey(key))
			return nil
		})
	},
}

var locationCmd = &cobra.Command{
	Use:   "location",
	Short: "Show or set the saved \"near me\" location",
}

var locationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the saved location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			loc := s.Repository.LoadMyLocation(ctx)
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), loc)
			}
			if loc.IsEmpty() {
				fmt.Fprintln(cmd.OutOrStdout(), "no location saved")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc.String())
			return nil
		})
	},
}

var locationSetCmd = &cobra.Command{
	Use:     "set",
	Short:   "Save the location used for \"near me\" queries",
	Args:    cobra.NoArgs,
	Example: `  travelctl location set --city Durban`,
	RunE: func(cmd *cobra.Command, args []string) error {
		loc := locationFromFlags()
		if loc.IsEmpty() {
			return invalidArgsError("a location is required", "travelctl location set --city Durban")
		}
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			if !s.Repository.SaveMyLocation(ctx, loc) {
				return upstreamError("saving location", query.ErrStorageWrite)
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), loc)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", loc.Normalize())
			return nil
		})
	},
}

func init() {
	aliasesListCmd.Flags().BoolVar(&flagBuiltin, "builtin", false, "Include built-in aliases")
	registerLocationFlags(aliasesAddCmd.Flags())
	registerLocationFlags(locationSetCmd.Flags())

	aliasesCmd.AddCommand(aliasesListCmd, aliasesAddCmd, aliasesRemoveCmd)
	locationCmd.AddCommand(locationShowCmd, locationSetCmd)
	rootCmd.AddCommand(aliasesCmd, locationCmd)
}

func sortedAliases(list []query.LocationAlias) []query.LocationAlias {
	out := append([]query.LocationAlias(nil), list...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
