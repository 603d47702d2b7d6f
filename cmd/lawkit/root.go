package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"lawkit/adapters/reader"
	"lawkit/adapters/render"
	"lawkit/app"
	"lawkit/domain/law"
	"lawkit/internal/api"
	"lawkit/internal/config"
	"lawkit/internal/errors"
)

var errRiskExceeded = stderrors.New("risk threshold reached")

// cli carries the state shared by every subcommand.
type cli struct {
	flags       optionFlags
	inputFormat string
	words       bool
	sheet       string
	verbose     bool
	failOnRisk  bool

	svc    *config.ServiceConfig
	logger *slog.Logger
}

var lawCommands = []struct {
	id      law.ID
	aliases []string
	short   string
}{
	{law.Benford, []string{"benford"}, "Check leading digits against Benford's law"},
	{law.Pareto, nil, "Measure concentration against the Pareto principle"},
	{law.Zipf, nil, "Fit a rank-frequency power law"},
	{law.Normal, nil, "Test values for normality"},
	{law.Poisson, nil, "Test counts against a Poisson distribution"},
	{law.Integration, nil, "Run several laws and reconcile their verdicts"},
	{law.Validation, nil, "Score the quality of the input data"},
	{law.Diagnostic, nil, "Combine validation and integration into a diagnosis"},
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	rootCmd := &cobra.Command{
		Use:   "lawkit",
		Short: "lawkit checks data against statistical laws",
		Long: `lawkit checks numeric data against Benford's law, the Pareto principle,
Zipf's law, the normal distribution and the Poisson distribution, and can
generate samples that follow them.

Example: lawkit benf sales.csv --format json`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errors.WithCode(errors.CodeInvalidInput, err)
	})

	pf := rootCmd.PersistentFlags()
	c.flags.register(pf)
	pf.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	for _, lc := range lawCommands {
		rootCmd.AddCommand(c.newLawCmd(lc.id, lc.aliases, lc.short))
	}
	rootCmd.AddCommand(c.newGenerateCmd(), c.newServeCmd())
	return rootCmd
}

// setup loads .env and the service configuration, then installs the logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(err, "failed to load .env")
	}
	svc, err := config.LoadServiceConfig()
	if err != nil {
		return err
	}
	c.svc = svc

	level := svc.Logging.Level
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = slog.New(tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    svc.Logging.NoColor,
	}))
	slog.SetDefault(c.logger)
	return nil
}

func (c *cli) newLawCmd(id law.ID, aliases []string, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     string(id) + " [file...]",
		Aliases: aliases,
		Short:   short,
		Long: short + `.

Files may be CSV, TSV, XLSX, JSON or plain text; standard input is read when
no file is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := c.readInput(cmd, args)
			if err != nil {
				return err
			}
			return c.run(cmd, id, input)
		},
	}
	cmd.Flags().StringVar(&c.inputFormat, "input-format", "", "input format (csv|tsv|xlsx|json|text); detected when empty")
	cmd.Flags().BoolVar(&c.words, "words", false, "analyze word frequencies of text input")
	cmd.Flags().StringVar(&c.sheet, "sheet", "", "XLSX sheet to read")
	cmd.Flags().BoolVar(&c.failOnRisk, "fail-on-risk", false, "exit with status 10 when a result reaches the risk threshold")
	return cmd
}

func (c *cli) newGenerateCmd() *cobra.Command {
	var params map[string]string

	cmd := &cobra.Command{
		Use:   "generate [distribution]",
		Short: "Generate a sample following one of the laws",
		Long: `Generate a sample following benf, pareto, zipf, normal or poisson.

Example: lawkit generate pareto --count 500 --seed 42 --param alpha=1.5`,
		Args: usageArgs(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := &law.GenerateSpec{}
			if len(args) == 1 {
				spec.Distribution = args[0]
			}
			for k, v := range params {
				f, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return errors.InvalidConfigurationf("param "+k, "%q is not a number", v)
				}
				if spec.Params == nil {
					spec.Params = map[string]float64{}
				}
				spec.Params[k] = f
			}
			return c.run(cmd, law.Generation, law.Input{Spec: spec})
		},
	}
	cmd.Flags().StringToStringVar(&params, "param", nil, "distribution parameter as name=value (alpha, exponent, noise, mean, std_dev, lambda)")
	return cmd
}

func (c *cli) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analyses over HTTP",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverCfg := c.svc.Server
			if addr != "" {
				serverCfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server, err := api.NewServer(app.NewDispatcher(c.logger), serverCfg, c.logger)
			if err != nil {
				return err
			}
			return server.Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address; LAWKIT_ADDR when empty")
	return cmd
}

func (c *cli) readInput(cmd *cobra.Command, files []string) (law.Input, error) {
	r := reader.NewDataReader(reader.Options{
		Format: reader.Format(c.inputFormat),
		Words:  c.words,
		Sheet:  c.sheet,
	}, c.logger)
	if len(files) == 0 {
		return r.Read(cmd.InOrStdin(), "stdin")
	}
	return r.ReadFiles(files)
}

// run resolves the flags, dispatches and renders to stdout.
func (c *cli) run(cmd *cobra.Command, id law.ID, input law.Input) error {
	opts := c.flags.options(cmd.Flags())
	if opts.OutputFormat == nil {
		opts.OutputFormat = config.Ptr(string(c.svc.Output.Format))
	}
	cfg, err := config.ResolveOptions(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	results, err := app.NewDispatcher(c.logger).Analyze(ctx, string(id), input, cfg)
	if err != nil {
		return err
	}
	if err := render.Render(cmd.OutOrStdout(), results, render.SettingsFrom(cfg)); err != nil {
		return errors.Wrap(err, "failed to render results")
	}

	if c.failOnRisk {
		threshold := cfg.LawSettings().RiskThreshold
		for _, r := range results {
			if risk, ok := riskOf(r); ok && risk.AtLeast(threshold) {
				return fmt.Errorf("%s: %w (%s)", r.SourcePath(), errRiskExceeded, risk)
			}
		}
	}
	return nil
}

func riskOf(r law.Result) (law.RiskLevel, bool) {
	switch v := r.(type) {
	case law.Assessment:
		return v.Risk(), true
	case *law.IntegrationAnalysis:
		return v.OverallRisk, true
	default:
		return 0, false
	}
}

// usageArgs tags argument errors so they exit with the usage status.
func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		return errors.WithCode(errors.CodeInvalidInput, check(cmd, args))
	}
}
