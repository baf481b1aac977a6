package storage

import (
	"context"
	"math"
	"testing"

	"github.com/san-kum/soilsim/internal/config"
	"github.com/san-kum/soilsim/internal/sim"
)

func runSmall(t *testing.T) (*config.Config, *sim.Result) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Grid.Samples = 20

	engine, err := sim.New(cfg.Engine())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	res, err := engine.Run(context.Background())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return cfg, res
}

func TestSaveLoadRoundtrip(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, res := runSmall(t)
	runID, err := st.Save(cfg, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.ID != runID {
		t.Errorf("expected id %s, got %s", runID, meta.ID)
	}
	if meta.Config.Plant.Target != cfg.Plant.Target {
		t.Errorf("config not persisted: %+v", meta.Config)
	}
	if meta.Report.StableA != res.Report.StableA {
		t.Error("report not persisted")
	}
	if len(meta.Metrics) != len(res.Metrics) {
		t.Errorf("expected %d metrics, got %d", len(res.Metrics), len(meta.Metrics))
	}
}

func TestLoadSeries(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, res := runSmall(t)
	runID, err := st.Save(cfg, res)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}

	if len(series.Times) != len(res.Times) {
		t.Fatalf("expected %d samples, got %d", len(res.Times), len(series.Times))
	}

	// Values round-trip through 6-decimal CSV.
	for i := range res.Times {
		if math.Abs(series.Moisture[i]-res.Moisture[i]) > 1e-5 {
			t.Fatalf("moisture mismatch at %d: %v vs %v", i, series.Moisture[i], res.Moisture[i])
		}
		if math.Abs(series.Control[i]-res.Control[i]) > 1e-5 {
			t.Fatalf("control mismatch at %d", i)
		}
		if math.Abs(series.Reference[i]-res.Reference[i]) > 1e-5 {
			t.Fatalf("reference mismatch at %d", i)
		}
	}
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}

	cfg, res := runSmall(t)
	if _, err := st.Save(cfg, res); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestListMissingDir(t *testing.T) {
	st := New("/nonexistent/soilsim-test")
	runs, err := st.List()
	if err != nil {
		t.Fatalf("expected empty list for missing dir, got error: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected no runs, got %d", len(runs))
	}
}
