package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// config is the membershipd process's own configuration, loaded from a
// YAML file. This is unrelated to the membership library's Builder,
// which takes its configuration through Go method calls only.
type config struct {
	AdvertisedURL  string   `yaml:"advertised_url"`
	PeerNodes      []string `yaml:"peer_nodes"`
	GossipInterval string   `yaml:"gossip_interval"`
	PhiThreshold   float64  `yaml:"phi_threshold"`
	GRPCAddr       string   `yaml:"grpc_addr"`
	HTTPAddr       string   `yaml:"http_addr"`
	Tracing        bool     `yaml:"tracing"`
}

func loadConfig(path string) (config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := config{
		GossipInterval: "1.5s",
		PhiThreshold:   8.0,
		GRPCAddr:       ":7700",
		HTTPAddr:       ":8080",
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.AdvertisedURL == "" {
		return config{}, fmt.Errorf("advertised_url is required")
	}
	return cfg, nil
}

func (c config) gossipInterval() (time.Duration, error) {
	return time.ParseDuration(c.GossipInterval)
}
