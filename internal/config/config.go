// Package config loads the three JSON configuration files (radio.json,
// phy.json, upper.json) from a single directory, the program's sole
// positional CLI argument, parsed with encoding/json.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ThreadConfig is the {prio_offset, cpu_core} pair assigned to every
// pinned thread.
type ThreadConfig struct {
	PrioOffset int `json:"prio_offset"`
	CPUCore    int `json:"cpu_core"`
}

// HwConfig is one radio.json entry.
type HwConfig struct {
	HwName string `json:"hw_name"` // "usrp" or "simulator"

	RxAntStreamsLengthSlots int `json:"rx_ant_streams_length_slots"`
	NSamplesPerSlot         int `json:"n_samples_per_slot"`

	TurnaroundSamples int64 `json:"turnaround_samples"`
	TimeAdvanceSamples int64 `json:"time_advance_samples"`

	RxPrestreamMs         int64 `json:"rx_prestream_ms"`
	NotificationPeriodUs  int64 `json:"notification_period_us"`

	TxThread ThreadConfig `json:"tx_thread"`
	RxThread ThreadConfig `json:"rx_thread"`

	USRPArgs string `json:"usrp_args,omitempty"`
}

// RadioConfig is the full radio.json document: per-hardware entries plus
// the global simulation keys.
type RadioConfig struct {
	HW []HwConfig `json:"hw"`

	SimSampRateLTE    float64 `json:"sim_samp_rate_lte"`
	SimSppUs          int     `json:"sim_spp_us"`           // [50,500]
	SimSampRateSpeed  float64 `json:"sim_samp_rate_speed"`  // [-N,+N]
	SimChannelInter   string  `json:"sim_channel_name_inter"`
	SimChannelIntra   string  `json:"sim_channel_name_intra"`
	SimNoiseType      string  `json:"sim_noise_type"` // "relative" | "thermal"
}

// WorkerPoolConfig is one phy.json entry.
type WorkerPoolConfig struct {
	RadioDeviceClass  string `json:"radio_device_class"` // e.g. "1.1.1.A"
	NofWorkers        int    `json:"nof_workers"`
	ResamplingEnforced bool  `json:"resampling_enforced"`
	OversamplingFloor float64 `json:"oversampling_floor"`
}

// PhyConfig is the full phy.json document.
type PhyConfig struct {
	WorkerPools []WorkerPoolConfig `json:"worker_pools"`
}

// TpointConfig is one upper.json entry.
type TpointConfig struct {
	FirmwareName string   `json:"firmware_name"`
	FirmwareID   int      `json:"firmware_id"`
	NetworkIDs   []uint32 `json:"network_ids"` // 1..10 integers
	AppThreads   []ThreadConfig `json:"app_threads"`
}

// UpperConfig is the full upper.json document.
type UpperConfig struct {
	Tpoints []TpointConfig `json:"tpoints"`
}

// Config bundles all three documents, loaded from one directory.
type Config struct {
	Radio RadioConfig
	Phy   PhyConfig
	Upper UpperConfig
}

// Load reads radio.json, phy.json and upper.json from dir. A missing or
// malformed file is a resource failure: the caller (only cmd/dectnrp)
// turns this into log.Fatal + exit code 1.
func Load(dir string) (Config, error) {
	var cfg Config

	if err := loadJSON(filepath.Join(dir, "radio.json"), &cfg.Radio); err != nil {
		return Config{}, err
	}
	if err := loadJSON(filepath.Join(dir, "phy.json"), &cfg.Phy); err != nil {
		return Config{}, err
	}
	if err := loadJSON(filepath.Join(dir, "upper.json"), &cfg.Upper); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func loadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.Radio.SimSppUs != 0 && (cfg.Radio.SimSppUs < 50 || cfg.Radio.SimSppUs > 500) {
		return fmt.Errorf("config: sim_spp_us must be in [50,500], got %d", cfg.Radio.SimSppUs)
	}
	for _, tp := range cfg.Upper.Tpoints {
		if len(tp.NetworkIDs) == 0 || len(tp.NetworkIDs) > 10 {
			return fmt.Errorf("config: tpoint %q must have 1..10 network_ids, got %d", tp.FirmwareName, len(tp.NetworkIDs))
		}
	}
	return nil
}
