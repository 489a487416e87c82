package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Ranking parameters, usually loaded from config.json
type Config struct {
	Damping       float64 `json:"damping"`
	Samples       int     `json:"samples"`
	Tolerance     float64 `json:"tolerance"`
	MaxIterations int     `json:"max_iterations"`
	Seed          uint64  `json:"seed"`      // 0: random seed
	Graph         string  `json:"graph"`     // Graph resource (corpus dir, file or url)
	Output        string  `json:"output"`    // Optional rendering of the ranked graph
	Reference     bool    `json:"reference"` // Also compute the gonum reference ranks
}

func DefaultConfig() Config {
	return Config{
		Damping:       0.85,
		Samples:       10000,
		Tolerance:     0.0001,
		MaxIterations: 1000,
	}
}

// Load path (config.json if empty) on top of the default values.
// A missing file is not an error.
func LoadConfiguration(path string) (Config, error) {
	config := DefaultConfig()
	if path == "" {
		path = "config.json"
	}
	bytes, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("read: %v", err)
	}
	// Parse config.json into Config struct
	if err = json.Unmarshal(bytes, &config); err != nil {
		return config, fmt.Errorf("parse: %v", err)
	}
	return config, nil
}
