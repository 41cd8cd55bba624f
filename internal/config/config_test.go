package config

import (
	"errors"
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/eugenenazirov/board-settings/internal/settings"
)

func clearBoardEnv(t *testing.T) {
	t.Helper()
	for _, v := range settings.Table(settings.Defaults()) {
		t.Setenv(v.Name, "")
	}
	t.Setenv("PORT", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("RATE_LIMIT_BURST", "")
}

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "board.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearBoardEnv(t)

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != defaultPort {
		t.Fatalf("expected default port %s, got %s", defaultPort, cfg.Port)
	}
	if cfg.ShutdownGracePeriod != 10*time.Second {
		t.Fatalf("unexpected shutdown grace period: %s", cfg.ShutdownGracePeriod)
	}
	if diff := cmp.Diff(settings.Table(settings.Defaults()), settings.Table(cfg.Board)); diff != "" {
		t.Fatalf("board settings differ from defaults (-want +got):\n%s", diff)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearBoardEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("BOARD_NAME", "Kitchen Plant")
	t.Setenv("BOARD_LED_PIN_R", "15")
	t.Setenv("BOARD_LED_PIN_G", "12")
	t.Setenv("BOARD_LED_PIN_B", "13")
	t.Setenv("BOARD_LED_INVERSE", "true")
	t.Setenv("BUTTON_HOLD_TIME_ACTION", "12s")
	t.Setenv("WIFI_AP_IP", "10.0.0.1")
	t.Setenv("WIFI_AP_Subnet", "255.255.0.0")
	t.Setenv("USE_TIMER_ONE", "1")
	t.Setenv("APP_DEBUG", "true")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "9000" {
		t.Fatalf("expected overridden port, got %s", cfg.Port)
	}
	b := cfg.Board
	if b.Identity.Name != "Kitchen Plant" {
		t.Fatalf("unexpected board name %q", b.Identity.Name)
	}
	if diff := cmp.Diff(settings.LED(settings.RGBLED{R: 15, G: 12, B: 13, Inverse: true}), b.LED); diff != "" {
		t.Fatalf("unexpected LED (-want +got):\n%s", diff)
	}
	if b.Timing.HoldAction != 12*time.Second {
		t.Fatalf("unexpected hold action %s", b.Timing.HoldAction)
	}
	if b.Network.APIP != netip.MustParseAddr("10.0.0.1") {
		t.Fatalf("unexpected AP IP %s", b.Network.APIP)
	}
	if b.Timer != settings.TimerOne || !b.Debug {
		t.Fatalf("expected timer one with debug, got %s debug=%v", b.Timer, b.Debug)
	}
}

func TestEnvLayerRejectsConflicts(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		env     map[string]string
		wantErr error
	}{
		{
			name:    "TwoLEDVariants",
			env:     map[string]string{"BOARD_LED_PIN": "2", "BOARD_LED_PIN_WS2812": "4"},
			wantErr: settings.ErrLEDVariant,
		},
		{
			name:    "PartialRGB",
			env:     map[string]string{"BOARD_LED_PIN_R": "15", "BOARD_LED_PIN_G": "12"},
			wantErr: settings.ErrLEDVariant,
		},
		{
			name:    "TwoTimers",
			env:     map[string]string{"USE_TICKER": "true", "USE_TIMER_THREE": "true"},
			wantErr: settings.ErrInvalidTimer,
		},
		{
			name:    "IPv6AccessPoint",
			env:     map[string]string{"WIFI_AP_IP": "::1"},
			wantErr: settings.ErrInvalidNetwork,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			getenv := func(name string) string { return tc.env[name] }
			if _, err := envLayer(getenv); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestEnvLayerRejectsMalformedValues(t *testing.T) {
	t.Parallel()

	for _, env := range []map[string]string{
		{"BOARD_BUTTON_PIN": "zero"},
		{"BOARD_BUTTON_ACTIVE_LOW": "maybe"},
		{"WIFI_NET_CONNECT_TIMEOUT": "soon"},
	} {
		getenv := func(name string) string { return env[name] }
		if _, err := envLayer(getenv); err == nil {
			t.Fatalf("expected error for %v", env)
		}
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearBoardEnv(t)
	t.Setenv("BOARD_VENDOR", "EnvVendor")
	t.Setenv("BOARD_NAME", "EnvName")

	path := writeConfigFile(t, `
server:
  port: "7070"
  write_timeout: 3s
  enable_request_logging: false
  rate_limit:
    rps: 5
    burst: 10
board:
  name: Balcony Plant
  button:
    pin: 5
    active_low: false
  led:
    single:
      pin: 2
      inverse: true
  brightness: 0
  hold_time_indication: 2000
  hold_time_action: 8s
  ap_ip: 192.168.10.1
  captive_portal: true
  timer: timer_three
`)

	cfg, err := Load(&CLIOverrides{ConfigFile: path})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "7070" || cfg.WriteTimeout != 3*time.Second || cfg.EnableRequestLogging {
		t.Fatalf("unexpected server settings: %+v", cfg)
	}
	if cfg.RateLimitRPS != 5 || cfg.RateLimitBurst != 10 {
		t.Fatalf("unexpected rate limit %v/%d", cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	b := cfg.Board
	if b.Identity.Name != "Balcony Plant" {
		t.Fatalf("expected YAML to override env name, got %q", b.Identity.Name)
	}
	if b.Identity.Vendor != "EnvVendor" {
		t.Fatalf("expected env vendor to survive, got %q", b.Identity.Vendor)
	}
	if b.Button != (settings.Button{Pin: 5, ActiveLow: false}) {
		t.Fatalf("unexpected button %+v", b.Button)
	}
	if b.LED != settings.LED(settings.SingleLED{Pin: 2, Inverse: true}) {
		t.Fatalf("unexpected LED %#v", b.LED)
	}
	if b.Brightness != 0 {
		t.Fatalf("expected explicit zero brightness, got %d", b.Brightness)
	}
	if b.Timing.HoldIndication != 2*time.Second || b.Timing.HoldAction != 8*time.Second {
		t.Fatalf("unexpected hold times %s/%s", b.Timing.HoldIndication, b.Timing.HoldAction)
	}
	if !b.CaptivePortal || b.Timer != settings.TimerThree {
		t.Fatalf("unexpected toggles portal=%v timer=%s", b.CaptivePortal, b.Timer)
	}
}

func TestLoadYAMLRejectsTwoLEDVariants(t *testing.T) {
	clearBoardEnv(t)

	path := writeConfigFile(t, `
board:
  led:
    single:
      pin: 2
    ws2812:
      pin: 4
`)

	if _, err := Load(&CLIOverrides{ConfigFile: path}); !errors.Is(err, settings.ErrLEDVariant) {
		t.Fatalf("expected ErrLEDVariant, got %v", err)
	}
}

func TestLoadCLIOverridesYAML(t *testing.T) {
	clearBoardEnv(t)

	path := writeConfigFile(t, `
server:
  port: "7070"
board:
  led:
    single:
      pin: 2
  timer: timer_one
`)

	port := "6060"
	led := "ws2812:16"
	timer := "ticker"
	debug := true
	cfg, err := Load(&CLIOverrides{ConfigFile: path, Port: &port, LED: &led, Timer: &timer, Debug: &debug})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Port != "6060" {
		t.Fatalf("expected CLI port, got %s", cfg.Port)
	}
	if cfg.Board.LED != settings.LED(settings.WS2812LED{Pin: 16}) {
		t.Fatalf("expected CLI LED, got %#v", cfg.Board.LED)
	}
	if cfg.Board.Timer != settings.TimerTicker || !cfg.Board.Debug {
		t.Fatalf("expected CLI timer and debug, got %s debug=%v", cfg.Board.Timer, cfg.Board.Debug)
	}
}

func TestLoadRejectsInvalidBoard(t *testing.T) {
	clearBoardEnv(t)

	t.Run("brightness", func(t *testing.T) {
		t.Setenv("BOARD_RGB_BRIGHTNESS", "300")
		if _, err := Load(nil); !errors.Is(err, settings.ErrInvalidBrightness) {
			t.Fatalf("expected ErrInvalidBrightness, got %v", err)
		}
	})

	t.Run("pin conflict", func(t *testing.T) {
		t.Setenv("BOARD_BUTTON_PIN", "4")
		if _, err := Load(nil); !errors.Is(err, settings.ErrPinConflict) {
			t.Fatalf("expected ErrPinConflict, got %v", err)
		}
	})

	t.Run("inverse on ws2812", func(t *testing.T) {
		t.Setenv("BOARD_LED_INVERSE", "true")
		if _, err := Load(nil); !errors.Is(err, settings.ErrLEDVariant) {
			t.Fatalf("expected ErrLEDVariant, got %v", err)
		}
	})
}

func TestLoadMissingFile(t *testing.T) {
	clearBoardEnv(t)

	if _, err := Load(&CLIOverrides{ConfigFile: filepath.Join(t.TempDir(), "missing.yaml")}); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}

func TestParseLED(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		cases := map[string]settings.LED{
			"single:2":        settings.SingleLED{Pin: 2},
			"RGB: 15, 12, 13": settings.RGBLED{R: 15, G: 12, B: 13},
			"ws2812:4":        settings.WS2812LED{Pin: 4},
		}
		for raw, want := range cases {
			got, err := ParseLED(raw)
			if err != nil {
				t.Fatalf("ParseLED(%q) returned error: %v", raw, err)
			}
			if got != want {
				t.Fatalf("ParseLED(%q) = %#v, want %#v", raw, got, want)
			}
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, raw := range []string{"ws2812", "rgb:1,2", "single:a", "neopixel:4"} {
			if _, err := ParseLED(raw); err == nil {
				t.Fatalf("expected error for %q", raw)
			}
		}
	})
}

func TestParseMillis(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Duration{
		"3000":  3 * time.Second,
		"15s":   15 * time.Second,
		"1m30s": 90 * time.Second,
		"250ms": 250 * time.Millisecond,
	}
	for raw, want := range cases {
		got, err := parseMillis(raw)
		if err != nil {
			t.Fatalf("parseMillis(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("parseMillis(%q) = %s, want %s", raw, got, want)
		}
	}
	if _, err := parseMillis("later"); err == nil {
		t.Fatalf("expected error for invalid duration")
	}

	for _, raw := range []string{"9300000000000000", "99999999999999999999", "-5", "-3s", "200000w"} {
		if _, err := parseMillis(raw); !errors.Is(err, settings.ErrInvalidDuration) {
			t.Fatalf("parseMillis(%q): expected ErrInvalidDuration, got %v", raw, err)
		}
	}
}

func TestLoadRejectsOverflowingTimeout(t *testing.T) {
	clearBoardEnv(t)
	t.Setenv("WIFI_NET_CONNECT_TIMEOUT", "9300000000000000")

	if _, err := Load(nil); !errors.Is(err, settings.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}
}

func TestLoadEnvInverseFollowsFinalLED(t *testing.T) {
	t.Run("yaml variant replaces env inverse", func(t *testing.T) {
		clearBoardEnv(t)
		t.Setenv("BOARD_LED_INVERSE", "true")
		path := writeConfigFile(t, `
board:
  led:
    single:
      pin: 2
`)

		cfg, err := Load(&CLIOverrides{ConfigFile: path})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Board.LED != settings.LED(settings.SingleLED{Pin: 2}) {
			t.Fatalf("expected non-inverted single LED, got %#v", cfg.Board.LED)
		}
	})

	t.Run("env inverse applies to yaml-free LED", func(t *testing.T) {
		clearBoardEnv(t)
		t.Setenv("BOARD_LED_PIN", "2")
		t.Setenv("BOARD_LED_INVERSE", "true")
		path := writeConfigFile(t, `
board:
  name: Shelf Plant
`)

		cfg, err := Load(&CLIOverrides{ConfigFile: path})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Board.LED != settings.LED(settings.SingleLED{Pin: 2, Inverse: true}) {
			t.Fatalf("expected inverted single LED, got %#v", cfg.Board.LED)
		}
	})

	t.Run("yaml inverse on cli ws2812 is dropped", func(t *testing.T) {
		clearBoardEnv(t)
		path := writeConfigFile(t, `
board:
  led:
    rgb:
      r: 15
      g: 12
      b: 13
      inverse: true
`)
		led := "ws2812:16"

		cfg, err := Load(&CLIOverrides{ConfigFile: path, LED: &led})
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}
		if cfg.Board.LED != settings.LED(settings.WS2812LED{Pin: 16}) {
			t.Fatalf("expected CLI LED, got %#v", cfg.Board.LED)
		}
	})
}

func TestLoadRejectsMalformedRateLimitEnv(t *testing.T) {
	for name, env := range map[string][2]string{
		"rps":            {"RATE_LIMIT_RPS", "fast"},
		"negative rps":   {"RATE_LIMIT_RPS", "-1"},
		"burst":          {"RATE_LIMIT_BURST", "1.5"},
		"negative burst": {"RATE_LIMIT_BURST", "-3"},
	} {
		t.Run(name, func(t *testing.T) {
			clearBoardEnv(t)
			t.Setenv(env[0], env[1])
			if _, err := Load(nil); err == nil {
				t.Fatalf("expected error for %s=%s", env[0], env[1])
			}
		})
	}
}
