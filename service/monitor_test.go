package service

import (
	"context"
	"testing"
	"time"

	"github.com/dnldd/htfbot/shared"
	"github.com/peterldowns/testy/assert"
)

func baseConfig() *MonitorConfig {
	return &MonitorConfig{
		Markets:         []string{"NIFTY", "BANKNIFTY"},
		DhanClientID:    "client",
		DhanAccessToken: "token",
		Interval:        shared.OneMinute,
		Lookback:        time.Hour * 3,
		ScanInterval:    time.Second * 30,
		CooldownWindow:  time.Minute * 15,
		Cancel:          func() {},
	}
}

func TestMonitorConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *MonitorConfig)
		wantErr bool
	}{
		{
			name:    "valid config",
			modify:  func(cfg *MonitorConfig) {},
			wantErr: false,
		},
		{
			name:    "no markets",
			modify:  func(cfg *MonitorConfig) { cfg.Markets = nil },
			wantErr: true,
		},
		{
			name:    "unknown market",
			modify:  func(cfg *MonitorConfig) { cfg.Markets = []string{"DOGE"} },
			wantErr: true,
		},
		{
			name:    "missing dhan client id",
			modify:  func(cfg *MonitorConfig) { cfg.DhanClientID = "" },
			wantErr: true,
		},
		{
			name:    "missing dhan access token",
			modify:  func(cfg *MonitorConfig) { cfg.DhanAccessToken = "" },
			wantErr: true,
		},
		{
			name:    "invalid cooldown window",
			modify:  func(cfg *MonitorConfig) { cfg.CooldownWindow = 0 },
			wantErr: true,
		},
		{
			name:    "invalid scan interval",
			modify:  func(cfg *MonitorConfig) { cfg.ScanInterval = -time.Second },
			wantErr: true,
		},
		{
			name:    "nil cancel func",
			modify:  func(cfg *MonitorConfig) { cfg.Cancel = nil },
			wantErr: true,
		},
	}

	for _, test := range tests {
		cfg := baseConfig()
		test.modify(cfg)

		err := cfg.Validate()
		if (err != nil) != test.wantErr {
			t.Errorf("%s: expected error %v, got %v", test.name, test.wantErr, err)
		}
	}
}

func TestNewMonitor(t *testing.T) {
	monitor, err := NewMonitor(context.Background(), baseConfig())
	assert.NoError(t, err)

	assert.Equal(t, len(monitor.SignalSnapshot()), 0)

	// Manual clear resets both the signal log and the cooldown tracker.
	monitor.signalLog.Append(shared.NewSignal("NIFTY", shared.Buy, 24100, "test", time.Now()))
	monitor.cooldown.RecordDispatch("NIFTY_BUY", time.Now())
	assert.Equal(t, len(monitor.SignalSnapshot()), 1)

	monitor.ClearSignals()
	assert.Equal(t, len(monitor.SignalSnapshot()), 0)
	assert.False(t, monitor.cooldown.ShouldSuppress("NIFTY_BUY", time.Now()))
}

func TestNewMonitorInvalidConfig(t *testing.T) {
	cfg := baseConfig()
	cfg.Markets = nil

	_, err := NewMonitor(context.Background(), cfg)
	assert.Error(t, err)
}
