package storage

import (
	"encoding/json"
	"io"
	"os"

	"github.com/san-kum/turbinectl/internal/sim"
)

type ExportData struct {
	RunMetadata
	Times []float64            `json:"times"`
	Data  map[string][]float64 `json:"data"`
}

func exportData(meta RunMetadata, rec *sim.Recording) ExportData {
	data := ExportData{
		RunMetadata: meta,
		Times:       rec.Times,
		Data:        make(map[string][]float64, len(rec.Names)),
	}
	for _, name := range rec.Names {
		data.Data[name], _ = rec.Channel(name)
	}
	return data
}

// WriteJSON encodes the run as one indented JSON document.
func WriteJSON(w io.Writer, meta RunMetadata, rec *sim.Recording) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportData(meta, rec))
}

func ExportJSON(path string, meta RunMetadata, rec *sim.Recording) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(file, meta, rec); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
