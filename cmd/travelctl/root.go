package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"travel-workers/internal/app"
	"travel-workers/internal/common/config"
	"travel-workers/internal/common/logger"
	"travel-workers/internal/query"
)

var (
	flagConfig   string
	flagJSON     bool
	flagLogLevel string

	flagArea      string
	flagCity      string
	flagProvince  string
	flagCountry   string
	flagContinent string
)

// Overridden in tests.
var (
	loadConfig = func(path string) (*config.Config, error) {
		if path != "" {
			return config.LoadFromFile(path)
		}
		return config.Load()
	}
	buildServices = func(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Services, func(), error) {
		s, err := app.Build(ctx, cfg, log, app.NoRetry)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}
)

var rootCmd = &cobra.Command{
	Use:   "travelctl",
	Short: "Inspect and operate the travel search interpreter and loyalty ledger",
	Long: "Operator CLI over the same storage the job workers use.\n" +
		"Storage and catalog backends are read from configs/config.yaml (or --config).",
	Example: `  travelctl parse "hotels in durban"
  travelctl suggest "tours near me" --city "Cape Town"
  travelctl aliases add umhlanga --city Umhlanga
  travelctl loyalty show user-42 --json
  travelctl loyalty redeem user-42 500 --purpose "Hotel discount"`,
}

func init() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "Path to a config file (default: configs/config.yaml)")
	pf.BoolVar(&flagJSON, "json", false, "Output as JSON")
	pf.StringVar(&flagLogLevel, "log-level", "error", "Log level for diagnostics on stderr")
}

func runCLI(args []string, stdout, stderr io.Writer) int {
	resetCLIState()
	setCommandIO(rootCmd, stdout, stderr)
	rootCmd.SetArgs(args)

	if err := rootCmd.Execute(); err != nil {
		cliErr := classifyCLIError(err)
		if flagJSON {
			if jerr := printCLIErrorJSON(stderr, cliErr); jerr != nil {
				fmt.Fprintln(stderr, formatCLIErrorText(classifyCLIError(jerr)))
				return ExitInternal
			}
		} else {
			fmt.Fprintln(stderr, formatCLIErrorText(cliErr))
		}
		return cliErr.ExitCode
	}
	return ExitSuccess
}

func setCommandIO(cmd *cobra.Command, stdout, stderr io.Writer) {
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	for _, child := range cmd.Commands() {
		setCommandIO(child, stdout, stderr)
	}
}

func resetCLIState() {
	flagConfig = ""
	flagJSON = false
	flagLogLevel = "error"
	resetLocationFlags()
	resetLoyaltyFlags()
	resetQueryFlags()
}

func resetLocationFlags() {
	flagArea, flagCity, flagProvince, flagCountry, flagContinent = "", "", "", "", ""
}

func registerLocationFlags(f *pflag.FlagSet) {
	f.StringVar(&flagArea, "area", "", "Area, e.g. \"V&A Waterfront\"")
	f.StringVar(&flagCity, "city", "", "City, e.g. Durban")
	f.StringVar(&flagProvince, "province", "", "Province, e.g. KwaZulu-Natal")
	f.StringVar(&flagCountry, "country", "", "Country, e.g. South Africa")
	f.StringVar(&flagContinent, "continent", "", "Continent, e.g. Africa")
}

func locationFromFlags() query.LocationRef {
	return query.LocationRef{
		Area:      flagArea,
		City:      flagCity,
		Province:  flagProvince,
		Country:   flagCountry,
		Continent: flagContinent,
	}
}

// withServices loads config, builds the services and runs fn.
func withServices(cmd *cobra.Command, fn func(ctx context.Context, s *app.Services) error) error {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return invalidArgsError(fmt.Sprintf("load config: %v", err), "travelctl --config configs/config.yaml ...")
	}
	log := logger.NewZapAdapter(logger.New(flagLogLevel, "console", "stderr"))

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, closeFn, err := buildServices(ctx, cfg, log)
	if err != nil {
		return upstreamError("connecting backends", err)
	}
	defer closeFn()
	return fn(ctx, s)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
