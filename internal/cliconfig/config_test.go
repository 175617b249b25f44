package cliconfig

import (
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	valid := DefaultConfig()
	valid.Host = "10.0.0.1"
	valid.Port = 27020
	valid.Password = "hunter2"

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}, wantErr: false},
		{name: "missing host", mutate: func(c *Config) { c.Host = "" }, wantErr: true},
		{name: "missing password", mutate: func(c *Config) { c.Password = "" }, wantErr: true},
		{name: "port zero", mutate: func(c *Config) { c.Port = 0 }, wantErr: true},
		{name: "port out of range", mutate: func(c *Config) { c.Port = 70000 }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.Timeout = -time.Second }, wantErr: true},
		{name: "zero timeout allowed", mutate: func(c *Config) { c.Timeout = 0 }, wantErr: false},
		{name: "frame size too small", mutate: func(c *Config) { c.MaxFrameSize = 5 }, wantErr: true},
		{name: "bad cluster port", mutate: func(c *Config) { c.ClusterPorts = []int{27021, -1} }, wantErr: true},
		{name: "empty save command", mutate: func(c *Config) { c.SaveCommand = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Validate() expected error but got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}

func TestParsePorts(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int
		wantErr bool
	}{
		{name: "whitespace separated", raw: "27021 27022", want: []int{27021, 27022}},
		{name: "comma separated", raw: "27021,27022", want: []int{27021, 27022}},
		{name: "mixed separators", raw: " 27021,  27022\t27023 ", want: []int{27021, 27022, 27023}},
		{name: "empty", raw: "", want: nil},
		{name: "garbage", raw: "27021 next", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePorts(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Error("ParsePorts() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ParsePorts() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ParsePorts() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ParsePorts() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestPortsToTargets(t *testing.T) {
	targets := PortsToTargets("10.0.0.1", 27020, []int{27021, 27020, 27022, 27021})

	if len(targets) != 2 {
		t.Fatalf("expected primary and duplicates removed, got %+v", targets)
	}
	if targets[0].Port != 27021 || targets[1].Port != 27022 {
		t.Fatalf("unexpected target order %+v", targets)
	}
	for _, tgt := range targets {
		if tgt.Host != "10.0.0.1" {
			t.Fatalf("target host %q, want shared cluster host", tgt.Host)
		}
	}
}
