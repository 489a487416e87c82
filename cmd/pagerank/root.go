package main

import (
	"github.com/lioia/markov-pagerank/pkg/utils"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	config  string
	verbose bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "pagerank",
		Short:         "Rank linked pages by sampling and by iteration",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return utils.InitLog(opts.verbose, opts.verbose, "")
		},
	}
	cmd.PersistentFlags().StringVar(&opts.config, "config", "config.json", "configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log computation progress")

	cmd.AddCommand(
		newRankCmd(opts),
		newTransitionCmd(opts),
		newRenderCmd(opts),
		newSubmitCmd(opts),
	)
	return cmd
}

// rankFlags are the ranking parameters that override config.json
type rankFlags struct {
	damping       float64
	samples       int
	tolerance     float64
	maxIterations int
	seed          uint64
	reference     bool
}

func (f *rankFlags) register(cmd *cobra.Command) {
	defaults := utils.DefaultConfig()
	cmd.Flags().Float64Var(&f.damping, "damping", defaults.Damping, "damping factor")
	cmd.Flags().IntVar(&f.samples, "samples", defaults.Samples, "number of random walk samples")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", defaults.Tolerance, "convergence tolerance")
	cmd.Flags().IntVar(&f.maxIterations, "max-iterations", defaults.MaxIterations, "iteration cap")
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "random seed (0: random)")
	cmd.Flags().BoolVar(&f.reference, "reference", false, "also compute the gonum reference ranks")
}

// load reads the configuration file and applies the flags set by the user
func (f *rankFlags) load(cmd *cobra.Command, opts *rootOptions) (utils.Config, error) {
	config, err := utils.LoadConfiguration(opts.config)
	if err != nil {
		return config, err
	}
	flags := cmd.Flags()
	if flags.Changed("damping") {
		config.Damping = f.damping
	}
	if flags.Changed("samples") {
		config.Samples = f.samples
	}
	if flags.Changed("tolerance") {
		config.Tolerance = f.tolerance
	}
	if flags.Changed("max-iterations") {
		config.MaxIterations = f.maxIterations
	}
	if flags.Changed("seed") {
		config.Seed = f.seed
	}
	if flags.Changed("reference") {
		config.Reference = f.reference
	}
	return config, nil
}

// graphArg returns the graph resource from the arguments or the config
func graphArg(args []string, config utils.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.Graph
}
