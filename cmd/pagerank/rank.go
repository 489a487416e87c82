package main

import (
	"fmt"

	"github.com/lioia/markov-pagerank/pkg/graph"
	"github.com/lioia/markov-pagerank/pkg/rank"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newRankCmd(opts *rootOptions) *cobra.Command {
	flags := &rankFlags{}
	var output string
	cmd := &cobra.Command{
		Use:   "rank [corpus]",
		Short: "Rank a corpus directory, edge list file or URL with both estimators",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.load(cmd, opts)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("output") {
				config.Output = output
			}
			resource := graphArg(args, config)
			if resource == "" {
				return errors.New("no graph given")
			}
			g, err := graph.LoadGraphResource(resource)
			if err != nil {
				return err
			}

			report, err := rank.Compare(cmd.Context(), g, rank.NewConfig(config), rank.NewSource(config.Seed))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "PageRank Results from Sampling (n = %d)\n", config.Samples)
			if err := report.Sampled.Write(out); err != nil {
				return err
			}
			fmt.Fprintln(out, "PageRank Results from Iteration")
			if err := report.Iterated.Write(out); err != nil {
				return err
			}
			if report.Reference != nil {
				fmt.Fprintln(out, "PageRank Results from gonum")
				if err := report.Reference.Write(out); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Converged after %d iteration(s), max deviation %.4f\n", report.Iterations, report.MaxDeviation)

			if config.Output != "" {
				return graph.Write(config.Output, g, report.Iterated)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "render the ranked graph (.dot, .svg, .png)")
	return cmd
}

func newTransitionCmd(opts *rootOptions) *cobra.Command {
	flags := &rankFlags{}
	cmd := &cobra.Command{
		Use:   "transition <corpus> <page>",
		Short: "Print the next page distribution of a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.load(cmd, opts)
			if err != nil {
				return err
			}
			g, err := graph.LoadGraphResource(args[0])
			if err != nil {
				return err
			}
			dist, err := rank.Transition(g, graph.Page(args[1]), config.Damping)
			if err != nil {
				return err
			}
			return rank.Ranks(dist).Write(cmd.OutOrStdout())
		},
	}
	flags.register(cmd)
	return cmd
}

func newRenderCmd(opts *rootOptions) *cobra.Command {
	flags := &rankFlags{}
	cmd := &cobra.Command{
		Use:   "render <corpus> <output>",
		Short: "Render the graph labelled with its iterated ranks",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.load(cmd, opts)
			if err != nil {
				return err
			}
			g, err := graph.LoadGraphResource(args[0])
			if err != nil {
				return err
			}
			iterOpts := rank.IterateOptions{Tolerance: config.Tolerance, MaxIterations: config.MaxIterations}
			ranks, _, err := rank.Iterate(cmd.Context(), g, config.Damping, iterOpts)
			if err != nil {
				return err
			}
			return graph.Write(args[1], g, ranks)
		},
	}
	flags.register(cmd)
	return cmd
}
