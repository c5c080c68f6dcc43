package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// bootstrapConfig is the on-disk YAML shape loaded from demo.yaml. It is
// pure data, distinct from emberforge.Config, which is dependency
// injection — gameConfig in game.go adapts between the two.
type bootstrapConfig struct {
	Address        string `yaml:"address"`
	MaxConnections int64  `yaml:"max_connections"`
	TickRate       uint32 `yaml:"tick_rate"`
	OnlineMode     bool   `yaml:"online_mode"`

	IncomingPacketCapacity int `yaml:"incoming_packet_capacity"`
	OutgoingPacketCapacity int `yaml:"outgoing_packet_capacity"`

	Motd       string `yaml:"motd"`
	MaxPlayers int    `yaml:"max_players"`

	Worlds []worldConfig `yaml:"worlds"`
}

type worldConfig struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// loadBootstrapConfig reads and decodes path, applying defaults for any
// field left unset, matching the teacher's server.yaml decode-then-default
// pattern.
func loadBootstrapConfig(path string) (*bootstrapConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var cfg bootstrapConfig
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if cfg.Address == "" {
		cfg.Address = "0.0.0.0:25565"
	}
	if cfg.MaxConnections == 0 {
		cfg.MaxConnections = 256
	}
	if cfg.TickRate == 0 {
		cfg.TickRate = 20
	}
	if cfg.IncomingPacketCapacity == 0 {
		cfg.IncomingPacketCapacity = 128
	}
	if cfg.OutgoingPacketCapacity == 0 {
		cfg.OutgoingPacketCapacity = 256
	}
	if cfg.Motd == "" {
		cfg.Motd = "An emberforge server"
	}
	if cfg.MaxPlayers == 0 {
		cfg.MaxPlayers = 20
	}
	if len(cfg.Worlds) == 0 {
		cfg.Worlds = []worldConfig{{Name: "overworld", Width: 4, Height: 4}}
	}

	return &cfg, nil
}
