package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"StockPilot/internal/domain/models"

	"github.com/spf13/cobra"
)

// Pipeline is what the commands drive.
type Pipeline interface {
	RunPipeline(ctx context.Context, query string) *models.WorkflowResult
	ResolveAndValidateTicker(ctx context.Context, query string) models.TickerValidation
}

type CacheClearer interface {
	ClearCache(ctx context.Context) error
}

// Env is built once per command invocation and closed afterwards.
type Env struct {
	Pipeline Pipeline
	Cache    CacheClearer
	Close    func() error
}

// Loader builds an Env from the global flags.
type Loader func(opts *RootOptions) (*Env, error)

type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Compact    bool
}

func NewRootCommand(load Loader) *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "stockpilot",
		Short: "Stock recommendations from market data, research and consensus",
		Long: `stockpilot resolves a company or ticker, scores it with four analysts,
weighs a bull and a bear case and prints a BUY/SELL/HOLD decision as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config/config.yaml", "config file path (empty for defaults)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log to stderr at debug level")
	cmd.PersistentFlags().BoolVar(&opts.Compact, "compact", false, "single-line JSON output")

	cmd.AddCommand(newAnalyzeCommand(opts, load))
	cmd.AddCommand(newResolveCommand(opts, load))
	cmd.AddCommand(newCacheCommand(opts, load))

	return cmd
}

// withEnv loads the environment, runs fn and closes it.
func withEnv(opts *RootOptions, load Loader, fn func(env *Env) error) (err error) {
	env, err := load(opts)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer func() {
		if env.Close == nil {
			return
		}
		if cerr := env.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close: %w", cerr)
		}
	}()
	return fn(env)
}

func writeJSON(w io.Writer, compact bool, v interface{}) error {
	enc := json.NewEncoder(w)
	if !compact {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}
