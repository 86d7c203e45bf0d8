package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/turbinectl/internal/logging"
)

var (
	dataDir string
	quiet   bool
	verbose bool

	configFile string
	preset     string
	dt         float64
	duration   float64
	integrator string
	controller string
	inputFile  string
	wind       float64
	seed       int64
	shareable  bool
	tempDir    string
	encoding   string
	noSave     bool
	workers    int

	channels   []string
	plotWidth  int
	plotHeight int
	outFile    string
	svgChannel string
	scenario   string
	peaks      int
	minFreq    float64

	log *zap.Logger
)

// main registers the commands and exits with status 1 when one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:           "turbinectl",
		Short:         "drive wind turbine control-law modules through a simulated host",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = logging.New(logging.FromFlags(quiet, verbose))
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = log.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".turbinectl", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a turbine simulation and store its channels",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a turbine simulation with live visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset...]",
		Short: "run several presets or a scenario file concurrently and store each",
		Args:  cobra.ArbitraryArgs,
		RunE:  runSweep,
	}
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")
	sweepCmd.Flags().Float64Var(&duration, "time", 0, "override duration for every run")
	sweepCmd.Flags().StringVar(&tempDir, "tmp", "", "directory for private module copies")
	sweepCmd.Flags().StringVar(&scenario, "scenario", "", "YAML scenario file")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored channels",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVarP(&channels, "channel", "c", nil, "channels to plot (default all)")
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 10, "plot height")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run as JSON, or one channel as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")
	exportCmd.Flags().StringVar(&svgChannel, "svg", "", "export this channel as an SVG plot")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "list the spectral peaks of stored channels",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringSliceVarP(&channels, "channel", "c", nil, "channels to analyze (default all)")
	analyzeCmd.Flags().IntVar(&peaks, "peaks", 3, "peaks per channel")
	analyzeCmd.Flags().Float64Var(&minFreq, "min-freq", 0.01, "ignore peaks below this frequency in Hz")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list run presets",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	lawsCmd := &cobra.Command{
		Use:   "laws",
		Short: "list built-in control laws",
		Args:  cobra.NoArgs,
		RunE:  listLaws,
	}

	inspectCmd := &cobra.Command{
		Use:   "inspect [module]",
		Short: "load a control-law module and resolve its DISCON entry point",
		Args:  cobra.ExactArgs(1),
		RunE:  inspectModule,
	}
	inspectCmd.Flags().BoolVar(&shareable, "shareable", false, "load in place instead of from a private copy")
	inspectCmd.Flags().StringVar(&tempDir, "tmp", "", "directory for private module copies")

	rootCmd.AddCommand(runCmd, liveCmd, sweepCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd, lawsCmd, inspectCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "run config file (yaml)")
	f.StringVar(&preset, "preset", "", "start from a preset (see 'presets')")
	f.Float64Var(&dt, "dt", 0, "time step (s)")
	f.Float64Var(&duration, "time", 0, "duration (s)")
	f.StringVar(&integrator, "integrator", "", "integrator (euler, rk4)")
	f.StringVar(&controller, "controller", "", "control-law module: shared library path or go:<law>")
	f.StringVar(&inputFile, "input", "", "input file passed to the module")
	f.Float64Var(&wind, "wind", 0, "mean wind speed (m/s)")
	f.Int64Var(&seed, "seed", 0, "turbulence seed")
	f.BoolVar(&shareable, "shareable", false, "load the module in place instead of from a private copy")
	f.StringVar(&tempDir, "tmp", "", "directory for private module copies")
	f.StringVar(&encoding, "encoding", "", "code page for module text arguments")
}
