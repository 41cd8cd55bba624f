package config

import (
	"errors"
	"fmt"
	"math"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/xhit/go-str2duration/v2"

	"github.com/eugenenazirov/board-settings/internal/settings"
)

// boardLayer is one configuration source's view of the board settings.
// Nil fields leave the value resolved by lower-precedence sources untouched.
type boardLayer struct {
	FirmwareVersion *string
	HardwareVersion *string
	Name            *string
	Vendor          *string
	ProductSSID     *string
	ConfigHost      *string

	ButtonPin       *int
	ButtonActiveLow *bool
	LED             settings.LED
	LEDInverse      *bool
	Brightness      *int

	HoldIndication *time.Duration
	HoldAction     *time.Duration
	NetConnect     *time.Duration
	CloudConnect   *time.Duration
	PWMMax         *int

	APPort   *int
	APIP     *netip.Addr
	APSubnet *netip.Addr

	CaptivePortal *bool
	Timer         *settings.TimerSource
	Debug         *bool
}

// apply copies the layer onto cfg. BOARD_LED_INVERSE is held in
// cfg.ledInverse until every layer is applied, and a layer that selects an
// LED variant discards the inverse requested by lower layers.
func (l boardLayer) apply(cfg *Config) error {
	s := &cfg.Board
	setString(&s.Identity.FirmwareVersion, l.FirmwareVersion)
	setString(&s.Identity.HardwareVersion, l.HardwareVersion)
	setString(&s.Identity.Name, l.Name)
	setString(&s.Identity.Vendor, l.Vendor)
	setString(&s.Identity.ProductSSID, l.ProductSSID)
	setString(&s.Identity.ConfigHost, l.ConfigHost)

	if l.ButtonPin != nil {
		s.Button.Pin = *l.ButtonPin
	}
	if l.ButtonActiveLow != nil {
		s.Button.ActiveLow = *l.ButtonActiveLow
	}
	if l.LED != nil {
		s.LED = l.LED
		cfg.ledInverse = nil
	}
	if l.LEDInverse != nil {
		inverse := *l.LEDInverse
		cfg.ledInverse = &inverse
	}
	if l.Brightness != nil {
		if *l.Brightness < 0 || *l.Brightness > 255 {
			return fmt.Errorf("%w: %s=%d", settings.ErrInvalidBrightness, settings.NameRGBBrightness, *l.Brightness)
		}
		s.Brightness = uint8(*l.Brightness)
	}

	setDuration(&s.Timing.HoldIndication, l.HoldIndication)
	setDuration(&s.Timing.HoldAction, l.HoldAction)
	setDuration(&s.Timing.NetConnect, l.NetConnect)
	setDuration(&s.Timing.CloudConnect, l.CloudConnect)
	if l.PWMMax != nil {
		s.Timing.PWMMax = *l.PWMMax
	}

	if l.APPort != nil {
		s.Network.APPort = *l.APPort
	}
	if l.APIP != nil {
		s.Network.APIP = *l.APIP
	}
	if l.APSubnet != nil {
		s.Network.APSubnet = *l.APSubnet
	}

	if l.CaptivePortal != nil {
		s.CaptivePortal = *l.CaptivePortal
	}
	if l.Timer != nil {
		s.Timer = *l.Timer
	}
	if l.Debug != nil {
		s.Debug = *l.Debug
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setDuration(dst *time.Duration, src *time.Duration) {
	if src != nil {
		*dst = *src
	}
}

// resolveLEDInverse applies the pending inverse request to the final LED.
func resolveLEDInverse(cfg *Config) error {
	if cfg.ledInverse == nil {
		return nil
	}
	led, err := withInverse(cfg.Board.LED, *cfg.ledInverse)
	if err != nil {
		return err
	}
	cfg.Board.LED = led
	cfg.ledInverse = nil
	return nil
}

func withInverse(led settings.LED, inverse bool) (settings.LED, error) {
	switch l := led.(type) {
	case settings.SingleLED:
		l.Inverse = inverse
		return l, nil
	case settings.RGBLED:
		l.Inverse = inverse
		return l, nil
	default:
		if inverse {
			return nil, fmt.Errorf("%w: %s is not supported by %s LEDs", settings.ErrLEDVariant, settings.NameLEDInverse, settings.LEDWS2812)
		}
		return led, nil
	}
}

// ParseLED parses an LED selection of the form "single:2", "rgb:15,12,13" or "ws2812:4".
func ParseLED(raw string) (settings.LED, error) {
	kind, pins, ok := strings.Cut(strings.TrimSpace(raw), ":")
	if !ok {
		return nil, fmt.Errorf("%w: %q must look like kind:pins", settings.ErrLEDVariant, raw)
	}

	values, err := parsePins(pins)
	if err != nil {
		return nil, err
	}

	switch settings.LEDKind(strings.ToLower(kind)) {
	case settings.LEDSingle:
		if len(values) == 1 {
			return settings.SingleLED{Pin: values[0]}, nil
		}
	case settings.LEDRGB:
		if len(values) == 3 {
			return settings.RGBLED{R: values[0], G: values[1], B: values[2]}, nil
		}
	case settings.LEDWS2812:
		if len(values) == 1 {
			return settings.WS2812LED{Pin: values[0]}, nil
		}
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", settings.ErrLEDVariant, kind)
	}
	return nil, fmt.Errorf("%w: wrong pin count for %s LED: %q", settings.ErrLEDVariant, kind, pins)
}

func parsePins(raw string) ([]int, error) {
	parts := strings.Split(raw, ",")
	pins := make([]int, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid pin %q", part)
		}
		pins = append(pins, value)
	}
	return pins, nil
}

// maxMillis is the largest millisecond count a time.Duration can hold.
const maxMillis = math.MaxInt64 / int64(time.Millisecond)

// parseMillis accepts a bare millisecond count ("3000") or a duration with
// units ("3s", "1m30s"). Negative and out-of-range values are rejected.
func parseMillis(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms < 0 || ms > maxMillis {
			return 0, fmt.Errorf("%w: %q is out of range", settings.ErrInvalidDuration, raw)
		}
		return time.Duration(ms) * time.Millisecond, nil
	} else if errors.Is(err, strconv.ErrRange) {
		return 0, fmt.Errorf("%w: %q is out of range", settings.ErrInvalidDuration, raw)
	}
	d, err := str2duration.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid duration %q", settings.ErrInvalidDuration, raw)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: %q is negative", settings.ErrInvalidDuration, raw)
	}
	return d, nil
}

func parseIPv4(raw string) (netip.Addr, error) {
	addr, err := netip.ParseAddr(strings.TrimSpace(raw))
	if err != nil || !addr.Is4() {
		return netip.Addr{}, fmt.Errorf("%w: %q is not an IPv4 address", settings.ErrInvalidNetwork, raw)
	}
	return addr, nil
}

// selectOne returns the single LED or timer choice among candidates, or an
// error when more than one source was selected at once.
func selectOne[T any](what string, sentinel error, candidates map[string]T) (*T, error) {
	if len(candidates) > 1 {
		names := make([]string, 0, len(candidates))
		for name := range candidates {
			names = append(names, name)
		}
		slices.Sort(names)
		return nil, fmt.Errorf("%w: %s set by %s", sentinel, what, strings.Join(names, ", "))
	}
	for _, v := range candidates {
		v := v
		return &v, nil
	}
	return nil, nil
}
