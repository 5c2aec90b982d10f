package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/experiment"
	"github.com/san-kum/dropsim/internal/sim"
	"github.com/san-kum/dropsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string

	preset         string
	configFile     string
	endTime        float64
	outputs        int
	resolution     int
	contactAngle   float64
	surfaceTension float64
	riemann        string
	formats        []string
	live           bool

	iteration int
	pngPath   string
	svgPath   string
)

var logger = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "dropsim",
})

// main registers the commands and runs the root command, exiting with status 1
// on error.
func main() {
	rootCmd := &cobra.Command{
		Use:   "dropsim",
		Short: "two-phase droplet wetting simulator",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".dropsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a case",
		Args:  cobra.NoArgs,
		RunE:  runCase,
	}
	runCmd.Flags().StringVar(&preset, "preset", "two-droplets", "preset case")
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml), overrides the preset")
	runCmd.Flags().Float64Var(&endTime, "end-time", config.DefaultEndTime, "simulated end time")
	runCmd.Flags().IntVar(&outputs, "outputs", config.DefaultOutputs, "number of snapshots")
	runCmd.Flags().IntVar(&resolution, "resolution", config.DefaultResolution, "particles across the tank width")
	runCmd.Flags().Float64Var(&contactAngle, "contact-angle", config.DefaultContactAngle, "static contact angle in degrees")
	runCmd.Flags().Float64Var(&surfaceTension, "surface-tension", config.DefaultSurfaceTension, "surface tension coefficient")
	runCmd.Flags().StringVar(&riemann, "riemann", config.DefaultRiemann, "riemann solver (acoustic, none)")
	runCmd.Flags().StringSliceVar(&formats, "format", []string{"csv"}, "snapshot formats (csv, svg, png)")
	runCmd.Flags().BoolVar(&live, "live", false, "show the live terminal view")

	resumeCmd := &cobra.Command{
		Use:   "resume [run_id]",
		Short: "continue a run from its restart files",
		Args:  cobra.ExactArgs(1),
		RunE:  resumeRun,
	}
	resumeCmd.Flags().IntVar(&iteration, "iteration", -1, "restart iteration (-1 for the latest)")
	resumeCmd.Flags().Float64Var(&endTime, "end-time", 0, "new end time (default: the run's)")
	resumeCmd.Flags().BoolVar(&live, "live", false, "show the live terminal view")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&pngPath, "png", "", "also save the plots as PNG files with this prefix")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summarise a run and its droplet oscillations",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata and summaries as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&svgPath, "trajectory", "", "write the centroid trajectories to this SVG file")

	renderCmd := &cobra.Command{
		Use:   "render [run_id]",
		Short: "render stored snapshots as images",
		Args:  cobra.ExactArgs(1),
		RunE:  renderRun,
	}
	renderCmd.Flags().StringSliceVar(&formats, "format", []string{"svg"}, "image formats (svg, png)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tTANK\tDP\tEND\tANGLE")
			for _, name := range config.ListPresets() {
				cfg := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%gx%g\t%g\t%g\t%g°\n", name, cfg.Domain.Width, cfg.Domain.Height,
					cfg.Spacing(), cfg.Output.EndTime, cfg.Interface.ContactAngle)
			}
			return w.Flush()
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a preset over a parameter grid and rank by a metric",
		Args:  cobra.NoArgs,
		RunE:  sweepCases,
	}
	sweepCmd.Flags().StringVar(&sweepPreset, "preset", "quick", "preset case")
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "grid axis as name=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "stability", "metric to rank by (lowest first)")
	sweepCmd.Flags().Float64Var(&endTime, "end-time", 0, "end time override for every trial")
	_ = sweepCmd.MarkFlagRequired("param")

	rootCmd.AddCommand(runCmd, resumeCmd, listCmd, plotCmd, analyzeCmd, exportCmd, renderCmd, presetsCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCase(cmd *cobra.Command, args []string) error {
	cfg := config.GetPreset(preset)
	if cfg == nil {
		return fmt.Errorf("unknown preset: %s (available: %s)", preset, strings.Join(config.ListPresets(), ", "))
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	// CLI flags override the file only when given
	flags := cmd.Flags()
	if flags.Changed("end-time") {
		cfg.Output.EndTime = endTime
	}
	if flags.Changed("outputs") {
		cfg.Output.Outputs = outputs
	}
	if flags.Changed("resolution") {
		cfg.Domain.Resolution = resolution
	}
	if flags.Changed("contact-angle") {
		cfg.Interface.ContactAngle = contactAngle
	}
	if flags.Changed("surface-tension") {
		cfg.Interface.SurfaceTension = surfaceTension
	}
	if flags.Changed("riemann") {
		cfg.Solver.Riemann = riemann
	}
	if flags.Changed("format") {
		cfg.Output.Formats = formats
	}

	c, err := experiment.Build(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	run, err := st.Create(cfg)
	if err != nil {
		return err
	}
	if err := c.AttachOutputs(run); err != nil {
		return err
	}

	logger.Info("starting", "run", run.ID, "case", cfg.Name, "dp", cfg.Spacing(),
		"lower", c.Phases[0].Fluid.Len(), "upper", c.Phases[1].Fluid.Len(), "wall", c.Wall.Len())
	return execute(c, run)
}

func resumeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	cfg, err := st.Config(runID)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("end-time") {
		cfg.Output.EndTime = endTime
	}
	c, err := experiment.Build(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}

	rs, err := st.LoadRestart(runID, iteration)
	if err != nil {
		return err
	}
	if err := c.Restore(rs); err != nil {
		return err
	}
	run, err := st.Open(runID)
	if err != nil {
		return err
	}
	if err := c.AttachOutputs(run); err != nil {
		return err
	}

	logger.Info("resuming", "run", runID, "iteration", rs.Clock.Iteration, "time", rs.Clock.Time)
	return execute(c, run)
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// execute runs the case, in the live view if requested, and records the
// outcome in the run's metadata.
func execute(c *experiment.Case, run *storage.Run) error {
	ctx, stop := signalContext()
	defer stop()

	start := time.Now()
	var (
		res *sim.Result
		err error
	)
	if live {
		res, err = runLive(ctx, c, run)
	} else {
		c.SetLogger(logger)
		res, err = c.Run(ctx, logger)
	}
	if ferr := run.Finish(res, err); ferr != nil {
		logger.Error("failed to record run", "err", ferr)
	}
	if err != nil {
		return err
	}

	logger.Info("completed", "run", run.ID, "elapsed", time.Since(start).Round(time.Millisecond),
		"steps", res.Clock.Iteration, "snapshots", res.Snapshots)
	for _, name := range sortedKeys(res.Metrics) {
		logger.Info("metric", "name", name, "value", res.Metrics[name])
	}
	return nil
}

func runLive(ctx context.Context, c *experiment.Case, run *storage.Run) (*sim.Result, error) {
	logFile, err := os.Create(filepath.Join(run.Dir, "run.log"))
	if err != nil {
		return nil, err
	}
	defer logFile.Close()
	fileLogger := log.NewWithOptions(logFile, log.Options{ReportTimestamp: true})
	c.SetLogger(fileLogger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := newLiveProgram(c, cancel)
	feed := newLiveFeed(program)
	c.Controller.AddObserver(feed)
	c.Controller.AddSnapshotWriter(feed)

	type outcome struct {
		res *sim.Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := c.Run(ctx, fileLogger)
		program.Send(doneMsg(err))
		done <- outcome{res, err}
	}()

	if _, err := program.Run(); err != nil {
		cancel()
		<-done
		return nil, err
	}
	cancel()
	out := <-done
	return out.res, out.err
}
