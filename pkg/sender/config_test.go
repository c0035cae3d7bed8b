package sender

import (
	"testing"
	"time"

	"github.com/dmx-protocol/dmxuart-go/pkg/dmx"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.BreakTime != dmx.DefaultBreakTime {
		t.Errorf("BreakTime = %v, want %v", config.BreakTime, dmx.DefaultBreakTime)
	}
	if config.FrameTime != dmx.DefaultFrameTime {
		t.Errorf("FrameTime = %v, want %v", config.FrameTime, dmx.DefaultFrameTime)
	}
	if config.ReportInterval != DefaultReportInterval {
		t.Errorf("ReportInterval = %v, want %v", config.ReportInterval, DefaultReportInterval)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{"default", func(*Config) {}, true},
		{"break at minimum", func(c *Config) { c.BreakTime = dmx.MinBreakTime }, true},
		{"break below minimum", func(c *Config) { c.BreakTime = 50 * time.Microsecond }, false},
		{"zero frame time", func(c *Config) { c.FrameTime = 0 }, false},
		{"negative frame time", func(c *Config) { c.FrameTime = -time.Millisecond }, false},
		{"zero report interval", func(c *Config) { c.ReportInterval = 0 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			config := DefaultConfig()
			tc.mutate(&config)
			err := config.Validate()
			if tc.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tc.valid && err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}
