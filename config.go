package pumpsim

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path"
)

type Config struct {
	Server         Server `json:"server"`
	UpdateInterval int    `json:"update_interval"` // register mirror interval in ms
}

type Server struct {
	Url        string `json:"url"` // e.g. tcp://0.0.0.0:5502
	Timeout    int    `json:"timeout"`
	MaxClients int    `json:"max_clients"`
}

// DefaultConfig is used when no configuration directory is given.
var DefaultConfig = Config{
	Server: Server{
		Url:        "tcp://0.0.0.0:5502",
		Timeout:    30,
		MaxClients: 5,
	},
	UpdateInterval: 500,
}

func LoadConfig(configPath string) (Config, error) {
	if !exists(path.Join(configPath, "config.json")) {
		return Config{}, fmt.Errorf("configuration file not found: %s", path.Join(configPath, "config.json"))
	}

	bb, err := os.ReadFile(path.Join(configPath, "config.json"))
	if err != nil {
		return Config{}, fmt.Errorf("error reading file: %w", err)
	}
	config := DefaultConfig
	if err := json.NewDecoder(bytes.NewReader(bb)).Decode(&config); err != nil {
		return Config{}, fmt.Errorf("error decoding file: %w", err)
	}
	return config, nil
}

func exists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil || !os.IsNotExist(err)
}
