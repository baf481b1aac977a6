package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/soilsim/internal/analysis"
	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/metrics"
	"github.com/san-kum/soilsim/internal/sim"
	"github.com/san-kum/soilsim/internal/soil"
	"github.com/san-kum/soilsim/internal/storage"
	"github.com/san-kum/soilsim/internal/tui"
)

var (
	dataDir    string
	configFile string
	preset     string

	dryingRate float64
	irrigation float64
	ambient    float64
	target     float64
	initial    float64
	kp         float64
	ki         float64
	kd         float64
	l1         float64
	l2         float64
	tStart     float64
	tEnd       float64
	samples    int

	frameRate int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "soilsim",
		Short: "closed-loop soil moisture simulation",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".soilsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation",
		RunE:  runSimulation,
	}
	addParamFlags(runCmd)

	promptCmd := &cobra.Command{
		Use:   "prompt",
		Short: "edit parameters interactively, then run",
		RunE:  runPrompt,
	}
	addParamFlags(promptCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live trajectory view",
		RunE:  runLive,
	}
	addParamFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "print the analysis report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  reportRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write run trajectories as CSV to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.ListPresets() {
				fmt.Println(p)
			}
		},
	}

	rootCmd.AddCommand(runCmd, promptCmd, liveCmd, listCmd, plotCmd, reportCmd,
		exportCmd, exportCSVCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addParamFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dryingRate, "drying-rate", config.DefaultDryingRate, "plant drying rate (a)")
	cmd.Flags().Float64Var(&irrigation, "irrigation", config.DefaultIrrigation, "irrigation effect (b)")
	cmd.Flags().Float64Var(&ambient, "ambient", config.DefaultAmbient, "ambient moisture")
	cmd.Flags().Float64Var(&target, "target", config.DefaultTarget, "target moisture")
	cmd.Flags().Float64Var(&initial, "initial", config.DefaultInitial, "initial moisture")
	cmd.Flags().Float64Var(&kp, "kp", config.DefaultKp, "pid kp")
	cmd.Flags().Float64Var(&ki, "ki", config.DefaultKi, "pid ki")
	cmd.Flags().Float64Var(&kd, "kd", config.DefaultKd, "pid kd")
	cmd.Flags().Float64Var(&l1, "l1", config.DefaultL1, "observer gain l1")
	cmd.Flags().Float64Var(&l2, "l2", config.DefaultL2, "observer gain l2")
	cmd.Flags().Float64Var(&tStart, "t-start", 0, "time span start")
	cmd.Flags().Float64Var(&tEnd, "t-end", config.DefaultSpan, "time span end")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "number of time samples")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves parameters with preset < config file < explicit flags
// precedence, the same layering the flags of each command advertise.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		*cfg = *p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	f := cmd.Flags()
	if f.Changed("drying-rate") {
		cfg.Plant.DryingRate = dryingRate
	}
	if f.Changed("irrigation") {
		cfg.Plant.Irrigation = irrigation
	}
	if f.Changed("ambient") {
		cfg.Plant.Ambient = ambient
	}
	if f.Changed("target") {
		cfg.Plant.Target = target
	}
	if f.Changed("initial") {
		cfg.Plant.Initial = initial
	}
	if f.Changed("kp") {
		cfg.Controller.Kp = kp
	}
	if f.Changed("ki") {
		cfg.Controller.Ki = ki
	}
	if f.Changed("kd") {
		cfg.Controller.Kd = kd
	}
	if f.Changed("l1") {
		cfg.Observer.L1 = l1
	}
	if f.Changed("l2") {
		cfg.Observer.L2 = l2
	}
	if f.Changed("t-start") {
		cfg.Grid.Start = tStart
	}
	if f.Changed("t-end") {
		cfg.Grid.End = tEnd
	}
	if f.Changed("samples") {
		cfg.Grid.Samples = samples
	}

	return cfg, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	return execute(cfg, nil)
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	accepted, err := tui.RunPrompt(cfg)
	if err != nil {
		return err
	}
	if !accepted {
		return nil
	}
	return execute(cfg, nil)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	plant := soil.NewPlant(cfg.Plant.DryingRate, cfg.Plant.Irrigation, cfg.Plant.Ambient, cfg.Plant.Target)
	low := min(cfg.Plant.Ambient, cfg.Plant.Initial)
	high := max(cfg.Plant.Target, plant.Equilibrium(1))

	renderer := tui.NewLiveRenderer(cfg.Plant.Target, low, high, frameRate)
	renderer.Start()
	defer renderer.Stop()

	return execute(cfg, renderer)
}

// execute runs one simulation, stores it, and prints the summary and report.
func execute(cfg *config.Config, listener sim.StepListener) error {
	engine, err := sim.New(cfg.Engine())
	if err != nil {
		return err
	}

	engine.AddMetric(metrics.NewTrackingError(cfg.Plant.Target))
	engine.AddMetric(metrics.NewControlEffort())
	engine.AddMetric(metrics.NewSaturation())
	if listener != nil {
		engine.AddListener(listener)
	}

	start := time.Now()
	result, err := engine.Run(context.Background())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	plant := soil.NewPlant(cfg.Plant.DryingRate, cfg.Plant.Irrigation, cfg.Plant.Ambient, cfg.Plant.Target)

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d (dt=%.4fs)\n", len(result.Times), engine.Dt())
	fmt.Printf("final moisture: %.3f (target %.3f, actuator ceiling %.3f)\n",
		result.Moisture[len(result.Moisture)-1], cfg.Plant.Target, plant.Equilibrium(1))

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	fmt.Println()
	printReport(result.Report)
	return nil
}

func printReport(rep analysis.Report) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "closed-loop eigenvalues\t%s\n", eigString(rep.EigenvaluesA))
	fmt.Fprintf(w, "closed-loop stable\t%v\n", rep.StableA)
	fmt.Fprintf(w, "observable\t%v\n", rep.Observable)
	fmt.Fprintf(w, "controllable\t%v\n", rep.Controllable)
	fmt.Fprintf(w, "observer eigenvalues\t%s\n", eigString(rep.EigenvaluesObserver))
	fmt.Fprintf(w, "observer stable\t%v\n", rep.StableObserver)
	w.Flush()
}

func eigString(eigs []analysis.Eigenvalue) string {
	parts := make([]string, len(eigs))
	for i, e := range eigs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tTARGET\tSAMPLES\tSTABLE\tOBSERVABLE")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%d\t%v\t%v\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Config.Plant.Target,
			run.Config.Grid.Samples,
			run.Report.StableA,
			run.Report.Observable,
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Times) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("samples: %d\n\n", len(series.Times))

	graph := asciigraph.PlotMany([][]float64{series.Reference, series.Moisture},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("moisture vs reference"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.PlotMany([][]float64{series.Moisture, series.Estimated},
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("true vs estimated moisture"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(series.Control,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("control signal"),
	)
	fmt.Println(graph)
	fmt.Println()

	graph = asciigraph.Plot(series.Cost,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("quadratic cost"),
	)
	fmt.Println(graph)

	return nil
}

func reportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("run: %s\n\n", meta.ID)
	printReport(meta.Report)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	file, err := os.Open(st.CSVPath(args[0]))
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(os.Stdout, file)
	return err
}
