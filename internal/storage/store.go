package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/soilsim/internal/analysis"
	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/sim"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Timestamp time.Time          `json:"timestamp"`
	Config    *config.Config     `json:"config"`
	Metrics   map[string]float64 `json:"metrics"`
	Report    analysis.Report    `json:"report"`
}

// Series is one run's trajectories as read back from disk. All slices have
// equal length.
type Series struct {
	Times             []float64
	Moisture          []float64
	ErrorIntegral     []float64
	Estimated         []float64
	EstimatedIntegral []float64
	Control           []float64
	Cost              []float64
	Reference         []float64
}

var csvHeader = []string{
	"time", "moisture", "error_integral",
	"estimated", "estimated_integral", "control", "cost", "reference",
}

func (s *Store) Save(cfg *config.Config, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("run_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:        runID,
		Timestamp: time.Now(),
		Config:    cfg,
		Metrics:   result.Metrics,
		Report:    result.Report,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "trajectories.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	w := csv.NewWriter(csvFile)
	defer w.Flush()

	if err := w.Write(csvHeader); err != nil {
		return "", err
	}

	for i := range result.Times {
		row := make([]string, 0, len(csvHeader))
		for _, v := range []float64{
			result.Times[i], result.Moisture[i], result.ErrorIntegral[i],
			result.Estimated[i], result.EstimatedIntegral[i],
			result.Control[i], result.Cost[i], result.Reference[i],
		} {
			row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
		}
		if err := w.Write(row); err != nil {
			return "", err
		}
	}

	return runID, nil
}

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

		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}

		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// CSVPath returns the location of the stored trajectories for a run.
func (s *Store) CSVPath(runID string) string {
	return filepath.Join(s.baseDir, runID, "trajectories.csv")
}

func (s *Store) LoadSeries(runID string) (*Series, error) {
	file, err := os.Open(s.CSVPath(runID))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	series := &Series{}
	for i := 1; i < len(records); i++ {
		record := records[i]
		if len(record) < len(csvHeader) {
			continue
		}

		vals := make([]float64, len(csvHeader))
		ok := true
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				ok = false
				break
			}
			vals[j] = v
		}
		if !ok {
			continue
		}

		series.Times = append(series.Times, vals[0])
		series.Moisture = append(series.Moisture, vals[1])
		series.ErrorIntegral = append(series.ErrorIntegral, vals[2])
		series.Estimated = append(series.Estimated, vals[3])
		series.EstimatedIntegral = append(series.EstimatedIntegral, vals[4])
		series.Control = append(series.Control, vals[5])
		series.Cost = append(series.Cost, vals[6])
		series.Reference = append(series.Reference, vals[7])
	}

	return series, nil
}
