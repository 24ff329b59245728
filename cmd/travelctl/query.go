package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"travel-workers/internal/app"
	"travel-workers/internal/common/metrics"
	"travel-workers/internal/query"
)

var flagNoAliases bool

func resetQueryFlags() {
	flagNoAliases = false
	flagBuiltin = false
}

var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Show the category and location a search phrase resolves to",
	Args:  cobra.MinimumNArgs(1),
	Example: `  travelctl parse "hotels in durban"
  travelctl parse "tours near me" --city "Cape Town" --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			opts, err := queryOptions(ctx, s)
			if err != nil {
				return err
			}
			parsed := s.Interpreter.ParseQuery(ctx, text, opts)
			metrics.QueriesInterpreted.WithLabelValues(
				metrics.QueryOutcome(parsed.Category != "", !parsed.Location.IsEmpty()),
			).Inc()

			if flagJSON {
				return printJSON(cmd.OutOrStdout(), parsed)
			}
			printParsed(cmd, parsed)
			return nil
		})
	},
}

var suggestCmd = &cobra.Command{
	Use:     "suggest <text>",
	Short:   "Build the search suggestion for a phrase, with its result count",
	Args:    cobra.MinimumNArgs(1),
	Example: `  travelctl suggest "safaris in kzn"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return withServices(cmd, func(ctx context.Context, s *app.Services) error {
			opts, err := queryOptions(ctx, s)
			if err != nil {
				return err
			}
			sug := s.Interpreter.GetSuggestion(ctx, text, opts)
			if sug == nil {
				return &cliError{
					Code:        "NOT_FOUND",
					Message:     fmt.Sprintf("nothing recognized in %q", text),
					Suggestions: []string{"Add a category (\"hotels\", \"tours\") or a place name."},
					ExitCode:    ExitRejected,
				}
			}
			if flagJSON {
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"label":       sug.Label,
					"count":       sug.Count,
					"params":      sug.Params,
					"queryString": sug.QueryString(),
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n?%s\n", sug.Label, sug.QueryString())
			return nil
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{parseCmd, suggestCmd} {
		registerLocationFlags(c.Flags())
		c.Flags().BoolVar(&flagNoAliases, "no-aliases", false, "Ignore built-in and custom aliases")
		rootCmd.AddCommand(c)
	}
}

// queryOptions uses the location flags as "my location", falling back to the
// saved one.
func queryOptions(ctx context.Context, s *app.Services) (query.Options, error) {
	products, err := s.Catalog.Products(ctx)
	if err != nil {
		return query.Options{}, upstreamError("loading catalog", err)
	}
	my := locationFromFlags().Normalize()
	if my.IsEmpty() {
		my = s.Repository.LoadMyLocation(ctx)
	}
	return query.Options{
		Products:      products,
		MyLocation:    my,
		EnableAliases: s.Config.Search.EnableAliases && !flagNoAliases,
	}, nil
}

func printParsed(cmd *cobra.Command, q query.ParsedQuery) {
	out := cmd.OutOrStdout()
	category, location := q.Category, "-"
	if category == "" {
		category = "-"
	}
	if !q.Location.IsEmpty() {
		location = q.Location.String()
	}
	fmt.Fprintf(out, "category: %s\n", category)
	fmt.Fprintf(out, "location: %s\n", location)
}
