package main

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/log"
	"github.com/san-kum/dropsim/internal/config"
	"github.com/san-kum/dropsim/internal/experiment"
	"github.com/san-kum/dropsim/internal/optim"
	"github.com/spf13/cobra"
)

var (
	sweepPreset string
	sweepParams []string
	sweepMetric string
)

// parseSweep turns name=v1,v2,... flags into parallel name and value lists.
func parseSweep(args []string) ([]string, [][]float64, error) {
	var names []string
	var ranges [][]float64
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --param %q, want name=v1,v2", arg)
		}
		var values []float64
		for _, s := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("--param %s: %w", name, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func sweepCases(cmd *cobra.Command, args []string) error {
	if config.GetPreset(sweepPreset) == nil {
		return fmt.Errorf("unknown preset: %s", sweepPreset)
	}
	names, ranges, err := parseSweep(sweepParams)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	quiet := log.New(os.Stderr)
	quiet.SetLevel(log.WarnLevel)
	build := func(params map[string]float64) (*experiment.Case, error) {
		cfg := config.GetPreset(sweepPreset)
		if cmd.Flags().Changed("end-time") {
			cfg.Output.EndTime = endTime
		}
		for name, v := range params {
			if err := cfg.Set(name, v); err != nil {
				return nil, err
			}
		}
		c, err := experiment.Build(cfg, experiment.NewRegistry())
		if err != nil {
			return nil, err
		}
		c.SetLogger(quiet)
		logger.Info("trial", "params", params)
		return c, nil
	}

	ctx, stop := signalContext()
	defer stop()
	trials, err := g.Search(ctx, build, sweepMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := append([]string(nil), names...)
	sort.Strings(header)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(append(header, sweepMetric), "\t")))
	for _, tr := range trials {
		cols := make([]string, 0, len(header)+1)
		for _, name := range header {
			cols = append(cols, strconv.FormatFloat(tr.Params[name], 'g', -1, 64))
		}
		if math.IsNaN(tr.Value) {
			cols = append(cols, "failed: "+tr.Err.Error())
		} else {
			cols = append(cols, fmt.Sprintf("%.6g", tr.Value))
		}
		fmt.Fprintln(w, strings.Join(cols, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}
