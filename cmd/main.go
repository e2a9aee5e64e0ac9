// Command teamrank turns contest leaderboard exports into ranked teams.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/teamrank/internal/adapters/console"
	"github.com/okian/teamrank/internal/adapters/loader"
	app "github.com/okian/teamrank/internal/app"
	"github.com/okian/teamrank/internal/config"
	"github.com/okian/teamrank/internal/domain/columns"
	"github.com/okian/teamrank/internal/domain/partition"
	"github.com/okian/teamrank/internal/domain/scoring"
	"github.com/okian/teamrank/pkg/logger"
	"github.com/okian/teamrank/pkg/metrics"
)

// Process exit codes.
const (
	exitOK     = 0
	exitFailed = 1
	exitEmpty  = 2
)

const longHelp = `Aggregate per-contest leaderboard exports into a combined score and form
teams of a fixed size from the top of the ranking down.

  1. Open each contest's standings page (for VJudge: Setting -> Rank) and
     download the leaderboard file.
  2. Save every file in the input folder, e.g. Leaderboards/01.xlsx,
     Leaderboards/02.xlsx, Leaderboards/03.csv.
  3. Run teamrank. Each rank earns ceil(numerator / (rank + offset)) points,
     points are summed over all contests, and teams are cut from the ranking.

The output workbook has a "Participants" sheet with every participant's
points per contest and their total, followed by one sheet per team.`

// streams are the process's standard streams, swapped out in tests.
type streams struct {
	in          io.Reader
	out         io.Writer
	err         io.Writer
	interactive bool
}

type flags struct {
	configFile  string
	inputDir    string
	outputFile  string
	teamSize    string
	logLevel    string
	workers     int
	metricsFile string
}

// exitError carries the exit code out of cobra.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], streams{
		in:          os.Stdin,
		out:         os.Stdout,
		err:         os.Stderr,
		interactive: console.IsInteractive(os.Stdin),
	})
	stop()
	os.Exit(code)
}

// execute runs the root command and maps its error to an exit code.
func execute(ctx context.Context, args []string, s streams) int {
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return exitFailed
}

func newRootCmd(s streams) *cobra.Command {
	var f flags
	cmd := &cobra.Command{
		Use:           "teamrank",
		Short:         "Rank contest participants and form teams",
		Long:          longHelp,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, f, s)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "YAML config file (default: $"+config.EnvConfigFile+")")
	fs.StringVarP(&f.inputDir, "input", "i", "", "directory with contest exports")
	fs.StringVarP(&f.outputFile, "output", "o", "", "output workbook path")
	fs.StringVarP(&f.teamSize, "team-size", "t", "", "members per team; prompts when omitted on a terminal")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	fs.IntVar(&f.workers, "workers", 0, "files read concurrently")
	fs.StringVar(&f.metricsFile, "metrics-file", "", "write Prometheus textfile metrics here")
	return cmd
}

func run(cmd *cobra.Command, f flags, s streams) error {
	ctx := cmd.Context()

	if err := logger.Init(logger.WithWriter(s.err)); err != nil {
		return &exitError{code: exitFailed, err: fmt.Errorf("failed to initialize logging: %w", err)}
	}
	defer func() { _ = logger.Sync() }()

	// Defaults -> optional file -> env, then flags on top.
	cfg, err := config.Load(ctx, f.configFile)
	if err != nil {
		fmt.Fprintln(s.err, "failed to load config: "+err.Error())
		return &exitError{code: exitFailed, err: err}
	}
	applyFlags(cmd, f, cfg)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(s.err, "invalid configuration: "+err.Error())
		return &exitError{code: exitFailed, err: err}
	}

	if cfg.LogJSON {
		_ = logger.Init(logger.WithWriter(s.err), logger.WithJSON(true))
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	ld := loader.New(
		columns.NewResolver(cfg.IdentifierAliases, cfg.RankAliases),
		loader.WithExtensions(cfg.Extensions),
		loader.WithWorkers(cfg.Workers),
		loader.WithLogger(log.Named("loader")),
	)

	// Check for input before asking the user anything.
	if _, err := ld.Discover(ctx, cfg.InputDir); err != nil {
		return missingInput(s, cfg.InputDir, err)
	}

	if cfg.TeamSize <= 0 {
		log.Warn(ctx, "configured team size must be positive; using default",
			logger.Int("team_size", cfg.TeamSize),
			logger.Int("default", config.DefaultTeamSize),
		)
		cfg.TeamSize = config.DefaultTeamSize
	}
	teamSize, err := resolveTeamSize(cmd, f, cfg, s)
	if err != nil {
		log.Warn(ctx, "unusable team size; using default", logger.Int("team_size", teamSize), logger.Error(err))
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithInputDir(cfg.InputDir),
		app.WithOutputFile(cfg.OutputFile),
		app.WithFormula(scoring.NewFormula(scoring.WithNumerator(cfg.Numerator), scoring.WithOffset(cfg.Offset))),
		app.WithLayout(app.Layout{
			ParticipantsSheet: cfg.ParticipantsSheet,
			TeamSheetPrefix:   cfg.TeamSheetPrefix,
			IdentifierHeader:  cfg.IdentifierHeader,
			TotalHeader:       cfg.TotalHeader,
		}),
		app.WithLoader(ld),
	)

	rep, runErr := svc.Run(ctx, teamSize)
	writeMetrics(ctx, log, cfg.MetricsFile)

	switch {
	case runErr == nil:
		fmt.Fprintf(s.out, "Saved %d participants in %d teams of %d to %s\n",
			len(rep.Ranked), len(rep.Teams), rep.TeamSize, rep.OutputFile)
		return nil
	case errors.Is(runErr, app.ErrEmptyResult):
		fmt.Fprintln(s.out, "No points computed. Nothing to save.")
		return &exitError{code: exitEmpty, err: runErr}
	case errors.Is(runErr, app.ErrMissingInput):
		return missingInput(s, cfg.InputDir, runErr)
	default:
		fmt.Fprintln(s.err, "run failed: "+runErr.Error())
		return &exitError{code: exitFailed, err: runErr}
	}
}

func missingInput(s streams, dir string, err error) error {
	fmt.Fprintf(s.err, "No contest files found in %q: %v\n", dir, err)
	return &exitError{code: exitFailed, err: err}
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cmd *cobra.Command, f flags, cfg *config.Config) {
	fs := cmd.Flags()
	if fs.Changed("input") {
		cfg.InputDir = f.inputDir
	}
	if fs.Changed("output") {
		cfg.OutputFile = f.outputFile
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if fs.Changed("workers") {
		cfg.Workers = f.workers
	}
	if fs.Changed("metrics-file") {
		cfg.MetricsFile = f.metricsFile
	}
}

// resolveTeamSize prefers the flag, then an interactive prompt, then config.
func resolveTeamSize(cmd *cobra.Command, f flags, cfg *config.Config, s streams) (int, error) {
	raw := ""
	switch {
	case cmd.Flags().Changed("team-size"):
		raw = f.teamSize
	case s.interactive:
		answer, err := console.PromptTeamSize(s.in, s.out, cfg.TeamSize)
		if err != nil {
			return partition.ResolveTeamSize("", cfg.TeamSize)
		}
		raw = answer
	}
	return partition.ResolveTeamSize(raw, cfg.TeamSize)
}

func writeMetrics(ctx context.Context, log logger.Logger, path string) {
	if path == "" {
		return
	}
	if err := metrics.WriteTextfile(path); err != nil {
		log.Warn(ctx, "failed to write metrics file", logger.String("file", path), logger.Error(err))
	}
}
