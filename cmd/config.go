package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TimeConfig sets the virtual clock parameters.
type TimeConfig struct {
	SpeedFactor float64 `yaml:"speed_factor"` // real seconds per simulated minute
	OpenMinutes int64   `yaml:"open_minutes"` // horizon (closing time)
}

// PolicyConfig holds park-wide policy switches.
type PolicyConfig struct {
	Fastpass bool `yaml:"fastpass"` // enable priority lanes on ride queues
}

// RideEntry describes one ride. The catalog replaces per-ride subclasses:
// rides differ only by these values.
type RideEntry struct {
	Name          string  `yaml:"name"`
	Capacity      int     `yaml:"capacity"`
	RunDuration   int64   `yaml:"run_duration"`
	BoardWindow   int64   `yaml:"board_window"`
	QueueCapacity int     `yaml:"queue_capacity"`
	Popularity    float64 `yaml:"popularity"`
}

// FoodEntry describes one food facility.
type FoodEntry struct {
	Name        string  `yaml:"name"`
	ServiceTime []int64 `yaml:"service_time"` // [min, max] simulated minutes
	Capacity    int     `yaml:"capacity"`     // orders cooked in parallel
}

// CurvePointEntry is one control point of the arrival curve.
type CurvePointEntry struct {
	Minute int64   `yaml:"minute"`
	Mean   float64 `yaml:"mean"`
}

// ArrivalConfig parameterizes the visitor arrival generator.
type ArrivalConfig struct {
	CurvePoints  []CurvePointEntry  `yaml:"curve_points"`
	VisitorTypes map[string]float64 `yaml:"visitor_types"`
	Jitter       float64            `yaml:"jitter"`
}

// MaintenanceConfig parameterizes the failure injector.
type MaintenanceConfig struct {
	MeanUptime float64 `yaml:"mean_uptime"` // mean minutes between failures per ride
	MeanRepair float64 `yaml:"mean_repair"` // mean repair duration in minutes
}

// ParkConfig is the full park configuration, loaded from YAML.
type ParkConfig struct {
	Time        TimeConfig        `yaml:"time"`
	Policy      PolicyConfig      `yaml:"policy"`
	Rides       []RideEntry       `yaml:"rides"`
	Food        []FoodEntry       `yaml:"food"`
	Arrival     ArrivalConfig     `yaml:"arrival"`
	Maintenance MaintenanceConfig `yaml:"maintenance"`
}

// Validate rejects configurations the core would panic on.
func (c *ParkConfig) Validate() error {
	if c.Time.OpenMinutes <= 0 {
		return fmt.Errorf("time.open_minutes must be positive, got %d", c.Time.OpenMinutes)
	}
	if len(c.Rides) == 0 {
		return fmt.Errorf("at least one ride is required")
	}
	for _, r := range c.Rides {
		if r.Name == "" {
			return fmt.Errorf("ride with empty name")
		}
		if r.Capacity <= 0 {
			return fmt.Errorf("ride %s: capacity must be positive, got %d", r.Name, r.Capacity)
		}
		if r.QueueCapacity < 0 {
			return fmt.Errorf("ride %s: queue_capacity must not be negative", r.Name)
		}
	}
	for _, f := range c.Food {
		if f.Name == "" {
			return fmt.Errorf("food facility with empty name")
		}
		if len(f.ServiceTime) != 2 || f.ServiceTime[0] < 1 || f.ServiceTime[1] < f.ServiceTime[0] {
			return fmt.Errorf("food %s: service_time must be [min, max] with 1 <= min <= max", f.Name)
		}
		if f.Capacity <= 0 {
			return fmt.Errorf("food %s: capacity must be positive", f.Name)
		}
	}
	if len(c.Arrival.CurvePoints) == 0 {
		return fmt.Errorf("arrival.curve_points must not be empty")
	}
	if len(c.Arrival.VisitorTypes) == 0 {
		return fmt.Errorf("arrival.visitor_types must not be empty")
	}
	return nil
}

// LoadParkConfig reads and validates a YAML park configuration.
// Unknown fields are errors so typos surface instead of silently defaulting.
func LoadParkConfig(path string) (*ParkConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultParkConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// DefaultParkConfig is the built-in park: the standard ride catalog, two
// food facilities, a morning-peaked arrival curve and a moderate failure
// rate. Used when no --config is given and as the base for partial configs.
func DefaultParkConfig() *ParkConfig {
	return &ParkConfig{
		Time:   TimeConfig{SpeedFactor: 0.05, OpenMinutes: 600},
		Policy: PolicyConfig{Fastpass: true},
		Rides: []RideEntry{
			{Name: "RollerCoaster", Capacity: 16, RunDuration: 5, BoardWindow: 3, QueueCapacity: 100, Popularity: 0.9},
			{Name: "DropTower", Capacity: 8, RunDuration: 3, BoardWindow: 2, QueueCapacity: 100, Popularity: 0.8},
			{Name: "FerrisWheel", Capacity: 20, RunDuration: 7, BoardWindow: 4, QueueCapacity: 100, Popularity: 0.6},
			{Name: "BumperCars", Capacity: 12, RunDuration: 4, BoardWindow: 2, QueueCapacity: 100, Popularity: 0.5},
			{Name: "HauntedHouse", Capacity: 10, RunDuration: 6, BoardWindow: 3, QueueCapacity: 100, Popularity: 0.7},
			{Name: "SplashMountain", Capacity: 12, RunDuration: 5, BoardWindow: 3, QueueCapacity: 100, Popularity: 0.8},
			{Name: "SpinningTeacups", Capacity: 18, RunDuration: 4, BoardWindow: 3, QueueCapacity: 100, Popularity: 0.65},
			{Name: "PirateShip", Capacity: 14, RunDuration: 5, BoardWindow: 2, QueueCapacity: 100, Popularity: 0.7},
			{Name: "SpaceSimulator", Capacity: 10, RunDuration: 6, BoardWindow: 3, QueueCapacity: 100, Popularity: 0.85},
		},
		Food: []FoodEntry{
			{Name: "BurgerTruck", ServiceTime: []int64{3, 6}, Capacity: 10},
			{Name: "IceCreamStand", ServiceTime: []int64{2, 5}, Capacity: 8},
		},
		Arrival: ArrivalConfig{
			CurvePoints: []CurvePointEntry{
				{Minute: 0, Mean: 2},
				{Minute: 120, Mean: 8},
				{Minute: 300, Mean: 5},
				{Minute: 480, Mean: 2},
				{Minute: 600, Mean: 0},
			},
			VisitorTypes: map[string]float64{
				"Child":            0.3,
				"Tourist":          0.5,
				"AdrenalineAddict": 0.2,
			},
			Jitter: 0.5,
		},
		Maintenance: MaintenanceConfig{MeanUptime: 120, MeanRepair: 10},
	}
}
