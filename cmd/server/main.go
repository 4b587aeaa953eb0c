package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Skufu/healthrec/internal/config"
	"github.com/Skufu/healthrec/internal/logging"
	"github.com/Skufu/healthrec/internal/recommend"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:           "healthrec",
		Short:         "Health content recommendations by age and conditions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web form and JSON API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(debug)
			if err != nil {
				return reportErr(cmd.ErrOrStderr(), err)
			}
			log := logging.New(os.Stdout, cfg.Debug)
			if err := serve(cmd.Context(), cfg, log); err != nil {
				log.Error().Err(err).Msg("server stopped")
				return err
			}
			return nil
		},
	}

	root.AddCommand(serveCmd, newRecommendCmd(&debug))
	// A bare invocation serves, like the original single-binary server.
	root.RunE = serveCmd.RunE
	return root
}

func newRecommendCmd(debug *bool) *cobra.Command {
	var (
		age        int
		weight     float64
		height     float64
		conditions string
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Print recommendations for one profile using the configured tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*debug)
			if err != nil {
				return reportErr(cmd.ErrOrStderr(), err)
			}
			log := logging.New(cmd.ErrOrStderr(), cfg.Debug)

			rec, err := loadRecommender(cfg, log)
			if err != nil {
				return reportErr(cmd.ErrOrStderr(), err)
			}
			req := recommend.Request{
				Age:        age,
				BMI:        recommend.BMI(weight, height),
				Conditions: recommend.SplitConditions(conditions),
			}
			if err := printRecommendations(cmd.OutOrStdout(), rec, req); err != nil {
				return reportErr(cmd.ErrOrStderr(), err)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&age, "age", 0, "age in years")
	cmd.Flags().Float64Var(&weight, "weight", 0, "weight in kg")
	cmd.Flags().Float64Var(&height, "height", 0, "height in m")
	cmd.Flags().StringVar(&conditions, "conditions", "", "comma separated medical conditions")
	_ = cmd.MarkFlagRequired("age")
	_ = cmd.MarkFlagRequired("weight")
	_ = cmd.MarkFlagRequired("height")
	return cmd
}

func loadConfig(debug bool) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}
	cfg.Debug = cfg.Debug || debug
	return cfg, nil
}

func printRecommendations(w io.Writer, rec Recommender, req recommend.Request) error {
	recs, err := rec.Recommend(req)
	if err != nil {
		return err
	}
	for i, r := range recs {
		if _, err := fmt.Fprintf(w, "%d. %s\n", i+1, r); err != nil {
			return err
		}
	}
	return nil
}

func reportErr(w io.Writer, err error) error {
	fmt.Fprintf(w, "error: %v\n", err)
	return err
}
