package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/turbinectl/internal/config"
	"github.com/san-kum/turbinectl/internal/sim"
)

const (
	metadataFile = "metadata.json"
	channelsFile = "channels.csv"
)

var ErrNoChannels = errors.New("storage: run has no channels")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Dir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Controller string             `json:"controller"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Integrator string             `json:"integrator"`
	Steps      int                `json:"steps"`
	Channels   []string           `json:"channels"`
	Metrics    map[string]float64 `json:"metrics"`
	// Error is set when the run stopped on a controller failure.
	Error  string         `json:"error,omitempty"`
	Config *config.Config `json:"config,omitempty"`
}

// MetadataFor fills the metadata fields a run configuration determines.
func MetadataFor(cfg *config.Config) RunMetadata {
	return RunMetadata{
		Name:       cfg.Name,
		Controller: cfg.Controller.Module,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Integrator: cfg.Integrator,
		Config:     cfg,
	}
}

func newRunID(name string, now time.Time) string {
	return fmt.Sprintf("%s_%s_%s", name, now.Format("20060102T150405"), uuid.NewString()[:8])
}

// Save writes metadata.json and channels.csv into a new run directory and
// returns the run ID.
func (s *Store) Save(meta RunMetadata, rec *sim.Recording) (string, error) {
	now := time.Now()
	meta.ID = newRunID(meta.Name, now)
	meta.Timestamp = now
	meta.Steps = rec.Len()
	meta.Channels = rec.Names
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, channelsFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	if err := w.Write(append([]string{"time"}, rec.Names...)); err != nil {
		return "", err
	}
	for i, row := range rec.Rows {
		line := make([]string, 0, len(row)+1)
		line = append(line, strconv.FormatFloat(rec.Times[i], 'f', 6, 64))
		for _, val := range row {
			line = append(line, strconv.FormatFloat(val, 'g', 8, 64))
		}
		if err := w.Write(line); err != nil {
			return "", err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", err
	}

	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadChannels reads a run's channels back into a recording.
func (s *Store) LoadChannels(runID string) (*sim.Recording, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, channelsFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return nil, ErrNoChannels
	}

	rec := sim.NewRecording(records[0][1:]...)
	for i, line := range records[1:] {
		vals := make([]float64, len(line))
		for j, field := range line {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d: %w", channelsFile, i+2, err)
			}
			vals[j] = v
		}
		if err := rec.Add(vals[0], vals[1:]...); err != nil {
			return nil, err
		}
	}
	return rec, nil
}
