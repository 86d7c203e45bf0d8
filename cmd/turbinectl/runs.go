package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/turbinectl/internal/analysis"
	"github.com/san-kum/turbinectl/internal/sim"
	"github.com/san-kum/turbinectl/internal/storage"
	"github.com/san-kum/turbinectl/internal/viz"
)

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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tDURATION\tDT\tCONTROLLER\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Controller,
			status,
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
	rec, err := st.LoadChannels(runID)
	if err != nil {
		return err
	}
	if rec.Len() == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("controller: %s\n", meta.Controller)
	fmt.Printf("samples: %d\n", rec.Len())
	if meta.Error != "" {
		fmt.Printf("stopped: %s\n", meta.Error)
	}
	fmt.Println()

	out, err := viz.PlotChannels(rec, channels, viz.PlotOptions{Width: plotWidth, Height: plotHeight})
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rec, err := st.LoadChannels(runID)
	if err != nil {
		return err
	}

	if svgChannel != "" {
		return exportSVG(runID, rec)
	}
	if outFile == "" {
		return storage.WriteJSON(os.Stdout, *meta, rec)
	}
	if err := storage.ExportJSON(outFile, *meta, rec); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, outFile)
	return nil
}

func exportSVG(runID string, rec *sim.Recording) error {
	values, ok := rec.Channel(svgChannel)
	if !ok {
		return fmt.Errorf("unknown channel %s (available: %v)", svgChannel, rec.Names)
	}
	out, err := viz.ChannelSVG(svgChannel, rec.Times, values, 800, 300, "#00d7ff")
	if err != nil {
		return err
	}
	path := outFile
	if path == "" {
		path = fmt.Sprintf("%s_%s.svg", runID, svgChannel)
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %s of %s to %s\n", svgChannel, runID, path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rec, err := st.LoadChannels(runID)
	if err != nil {
		return err
	}

	names := channels
	if len(names) == 0 {
		names = rec.Names
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHANNEL\tFREQ (Hz)\tPERIOD (s)\tAMPLITUDE")
	for _, name := range names {
		values, ok := rec.Channel(name)
		if !ok {
			return fmt.Errorf("unknown channel %s (available: %v)", name, rec.Names)
		}
		s, err := analysis.Compute(values, meta.Dt)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		found := s.Peaks(peaks, minFreq)
		if len(found) == 0 {
			fmt.Fprintf(w, "%s\t-\t-\t-\n", name)
		}
		for _, p := range found {
			fmt.Fprintf(w, "%s\t%.4f\t%.2f\t%.4g\n", name, p.Freq, 1/p.Freq, p.Amplitude)
		}
	}
	return w.Flush()
}
