package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/soilsim/internal/sim"
)

const (
	DefaultDryingRate = 0.1
	DefaultIrrigation = 0.5
	DefaultAmbient    = 30.0
	DefaultTarget     = 60.0
	DefaultInitial    = 30.0
	DefaultKp         = 0.8
	DefaultKi         = 0.05
	DefaultKd         = 0.2
	DefaultL1         = 6.4
	DefaultL2         = 78.0
	DefaultSpan       = 100.0
	DefaultSamples    = 500
)

type Config struct {
	Plant      PlantConfig      `yaml:"plant" json:"plant"`
	Controller ControllerConfig `yaml:"controller" json:"controller"`
	Observer   ObserverConfig   `yaml:"observer" json:"observer"`
	Grid       GridConfig       `yaml:"grid" json:"grid"`
}

type PlantConfig struct {
	DryingRate float64 `yaml:"drying_rate" json:"drying_rate"`
	Irrigation float64 `yaml:"irrigation" json:"irrigation"`
	Ambient    float64 `yaml:"ambient" json:"ambient"`
	Target     float64 `yaml:"target" json:"target"`
	Initial    float64 `yaml:"initial" json:"initial"`
}

type ControllerConfig struct {
	Kp float64 `yaml:"kp" json:"kp"`
	Ki float64 `yaml:"ki" json:"ki"`
	Kd float64 `yaml:"kd" json:"kd"`
}

type ObserverConfig struct {
	L1 float64 `yaml:"l1" json:"l1"`
	L2 float64 `yaml:"l2" json:"l2"`
}

type GridConfig struct {
	Start   float64 `yaml:"start" json:"start"`
	End     float64 `yaml:"end" json:"end"`
	Samples int     `yaml:"samples" json:"samples"`
}

func DefaultConfig() *Config {
	return &Config{
		Plant: PlantConfig{
			DryingRate: DefaultDryingRate,
			Irrigation: DefaultIrrigation,
			Ambient:    DefaultAmbient,
			Target:     DefaultTarget,
			Initial:    DefaultInitial,
		},
		Controller: ControllerConfig{Kp: DefaultKp, Ki: DefaultKi, Kd: DefaultKd},
		Observer:   ObserverConfig{L1: DefaultL1, L2: DefaultL2},
		Grid:       GridConfig{Start: 0, End: DefaultSpan, Samples: DefaultSamples},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Engine flattens the file-facing config into engine parameters.
func (c *Config) Engine() sim.Config {
	return sim.Config{
		DryingRate: c.Plant.DryingRate,
		Irrigation: c.Plant.Irrigation,
		Ambient:    c.Plant.Ambient,
		Target:     c.Plant.Target,
		Initial:    c.Plant.Initial,
		Kp:         c.Controller.Kp,
		Ki:         c.Controller.Ki,
		Kd:         c.Controller.Kd,
		L1:         c.Observer.L1,
		L2:         c.Observer.L2,
		TStart:     c.Grid.Start,
		TEnd:       c.Grid.End,
		Samples:    c.Grid.Samples,
	}
}
