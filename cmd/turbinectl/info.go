package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/turbinectl/internal/config"
	"github.com/san-kum/turbinectl/internal/laws"
	"github.com/san-kum/turbinectl/internal/module"
)

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCONTROLLER\tWIND\tPITCH\tDURATION")
	for _, name := range config.ListPresets() {
		cfg := config.Presets[name]
		fmt.Fprintf(w, "%s\t%s\t%.1f m/s\t%s\t%.0fs\n",
			name, cfg.Controller.Module, cfg.Wind.Mean, cfg.Turbine.PitchMode, cfg.Duration)
	}
	return w.Flush()
}

func listLaws(cmd *cobra.Command, args []string) error {
	reg := laws.Builtin()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODULE\tDESCRIPTION")
	for _, name := range reg.Names() {
		fmt.Fprintf(w, "%s%s\t%s\n", module.Scheme, name, reg.Description(name))
	}
	return w.Flush()
}

// inspectModule loads a module the way a controller would, resolves its
// entry point and unloads it again without calling it.
func inspectModule(cmd *cobra.Command, args []string) error {
	loader := module.Router{Builtin: laws.Builtin(), Native: module.Native{}}
	h, err := module.Open(loader, args[0], module.OpenOptions{
		Shareable: shareable,
		TempDir:   tempDir,
		Logger:    log,
	})
	if err != nil {
		return err
	}

	fmt.Printf("module: %s\n", h.Source())
	fmt.Printf("loaded from: %s\n", h.LoadedPath())
	fmt.Printf("private copy: %v\n", h.Private())
	fmt.Printf("entry point: %s resolved\n", module.EntryPoint)
	return h.Close()
}
