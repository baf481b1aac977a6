package config

import "sort"

// Presets are named scenarios worth keeping around: the nominal demo run, a
// reachable low setpoint that settles without saturation, and a windup case
// where the actuator can never supply the demanded moisture.
var Presets = map[string]*Config{
	"nominal": {
		Plant:      PlantConfig{DryingRate: 0.1, Irrigation: 0.5, Ambient: 30, Target: 60, Initial: 30},
		Controller: ControllerConfig{Kp: 0.8, Ki: 0.05, Kd: 0.2},
		Observer:   ObserverConfig{L1: 6.4, L2: 78},
		Grid:       GridConfig{Start: 0, End: 100, Samples: 500},
	},
	"gentle": {
		Plant:      PlantConfig{DryingRate: 0.1, Irrigation: 0.5, Ambient: 30, Target: 32, Initial: 30},
		Controller: ControllerConfig{Kp: 0.8, Ki: 0.05, Kd: 0.2},
		Observer:   ObserverConfig{L1: 6.4, L2: 78},
		Grid:       GridConfig{Start: 0, End: 100, Samples: 500},
	},
	"windup": {
		Plant:      PlantConfig{DryingRate: 0.2, Irrigation: 0.1, Ambient: 25, Target: 80, Initial: 25},
		Controller: ControllerConfig{Kp: 1.2, Ki: 0.1, Kd: 0.1},
		Observer:   ObserverConfig{L1: 6.4, L2: 78},
		Grid:       GridConfig{Start: 0, End: 60, Samples: 300},
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
