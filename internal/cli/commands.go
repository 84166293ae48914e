package cli

import (
	"errors"

	"StockPilot/internal/domain/models"

	"github.com/spf13/cobra"
)

// ErrAnalysisFailed is returned after the failed result has been printed, so
// the process exits non-zero.
var ErrAnalysisFailed = errors.New("analysis failed")

func newAnalyzeCommand(opts *RootOptions, load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <company or ticker>",
		Short: "Run the full recommendation pipeline",
		Example: `  stockpilot analyze apple
  stockpilot analyze "NVDA"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, load, func(env *Env) error {
				res := env.Pipeline.RunPipeline(cmd.Context(), joinArgs(args))
				if err := writeJSON(cmd.OutOrStdout(), opts.Compact, res); err != nil {
					return err
				}
				if res.Status == models.StatusFailed {
					return ErrAnalysisFailed
				}
				return nil
			})
		},
	}
}

func newResolveCommand(opts *RootOptions, load Loader) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <company or ticker>",
		Short: "Resolve and validate a ticker without analysing it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(opts, load, func(env *Env) error {
				v := env.Pipeline.ResolveAndValidateTicker(cmd.Context(), joinArgs(args))
				return writeJSON(cmd.OutOrStdout(), opts.Compact, v)
			})
		},
	}
}

func newCacheCommand(opts *RootOptions, load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the provider response cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Drop every cached provider response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(opts, load, func(env *Env) error {
				if env.Cache != nil {
					if err := env.Cache.ClearCache(cmd.Context()); err != nil {
						return err
					}
				}
				return writeJSON(cmd.OutOrStdout(), opts.Compact, map[string]bool{"cleared": true})
			})
		},
	})
	return cmd
}
