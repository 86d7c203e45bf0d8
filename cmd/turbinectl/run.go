package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/san-kum/turbinectl/internal/automation"
	"github.com/san-kum/turbinectl/internal/config"
	"github.com/san-kum/turbinectl/internal/hostsim"
	"github.com/san-kum/turbinectl/internal/storage"
	"github.com/san-kum/turbinectl/internal/viz"
)

// loadConfig starts from the preset, or the config file, or the defaults,
// then applies the flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	dir := "."

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		dir = filepath.Dir(configFile)
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller.Module = controller
	}
	if flags.Changed("input") {
		cfg.Controller.InputFile = inputFile
	}
	if flags.Changed("wind") {
		cfg.Wind.Mean = wind
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("shareable") {
		cfg.Controller.Shareable = shareable
	}
	if flags.Changed("encoding") {
		cfg.Controller.Encoding = encoding
	}
	return cfg, dir, cfg.Validate()
}

func harnessOptions(dir string) hostsim.Options {
	return hostsim.Options{Dir: dir, Logger: log, TempDir: tempDir}
}

func save(res *hostsim.Result, runErr error) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	meta := storage.MetadataFor(res.Config)
	meta.Metrics = res.Metrics
	if runErr != nil {
		meta.Error = runErr.Error()
	}
	return st.Save(meta, res.Recording)
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	h, err := hostsim.New(cfg, harnessOptions(dir))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s with %s...\n", cfg.Name, cfg.Controller.Module)
	start := time.Now()
	res, runErr := h.Run(ctx)
	elapsed := time.Since(start)
	if res == nil {
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("steps: %d\n", res.Steps)
	if !noSave {
		runID, err := save(res, runErr)
		if err != nil {
			return multierr.Append(runErr, err)
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Println("\nmetrics:")
	printMetrics(res.Metrics)
	return runErr
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, dir, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	h, err := hostsim.New(cfg, harnessOptions(dir))
	if err != nil {
		return err
	}
	return viz.RunLive(h)
}

func runSweep(cmd *cobra.Command, args []string) error {
	var cfgs []*config.Config
	n := workers
	if scenario != "" {
		sc, err := automation.Load(scenario)
		if err != nil {
			return err
		}
		cfgs, err = sc.Configs()
		if err != nil {
			return err
		}
		if !cmd.Flags().Changed("workers") {
			n = sc.Workers
		}
		log.Info("loaded scenario", zap.String("name", sc.Name), zap.Int("runs", len(cfgs)))
	}
	for _, name := range args {
		cfg := config.GetPreset(name)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
		}
		cfgs = append(cfgs, cfg)
	}
	if len(cfgs) == 0 {
		return fmt.Errorf("nothing to run: name presets or pass --scenario")
	}
	if cmd.Flags().Changed("time") {
		for _, cfg := range cfgs {
			cfg.Duration = duration
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dir := "."
	if scenario != "" {
		dir = filepath.Dir(scenario)
	}
	results, sweepErr := hostsim.Sweep(ctx, cfgs, harnessOptions(dir), n)
	var errs error
	for _, res := range results {
		if res == nil {
			continue
		}
		runID, err := save(res, nil)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		log.Info("stored run", zap.String("name", res.Name), zap.String("id", runID))
		fmt.Printf("%s: %s (%d steps)\n", res.Name, runID, res.Steps)
		printMetrics(res.Metrics)
	}
	return multierr.Append(sweepErr, errs)
}
