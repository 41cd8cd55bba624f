package config

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/eugenenazirov/board-settings/internal/settings"
)

// yamlBoard represents the board section in YAML. Durations are bare
// milliseconds or unit strings.
type yamlBoard struct {
	FirmwareVersion *string `yaml:"firmware_version"`
	HardwareVersion *string `yaml:"hardware_version"`
	Name            *string `yaml:"name"`
	Vendor          *string `yaml:"vendor"`
	ProductSSID     *string `yaml:"product_ssid"`
	ConfigAPURL     *string `yaml:"config_ap_url"`

	Button struct {
		Pin       *int  `yaml:"pin"`
		ActiveLow *bool `yaml:"active_low"`
	} `yaml:"button"`

	LED struct {
		Single *struct {
			Pin     int   `yaml:"pin"`
			Inverse *bool `yaml:"inverse"`
		} `yaml:"single"`
		RGB *struct {
			R       int   `yaml:"r"`
			G       int   `yaml:"g"`
			B       int   `yaml:"b"`
			Inverse *bool `yaml:"inverse"`
		} `yaml:"rgb"`
		WS2812 *struct {
			Pin int `yaml:"pin"`
		} `yaml:"ws2812"`
	} `yaml:"led"`
	Brightness *int `yaml:"brightness"`

	HoldTimeIndication  string `yaml:"hold_time_indication"`
	HoldTimeAction      string `yaml:"hold_time_action"`
	NetConnectTimeout   string `yaml:"net_connect_timeout"`
	CloudConnectTimeout string `yaml:"cloud_connect_timeout"`
	PWMMax              *int   `yaml:"pwm_max"`

	APConfigPort *int   `yaml:"ap_config_port"`
	APIP         string `yaml:"ap_ip"`
	APSubnet     string `yaml:"ap_subnet"`

	CaptivePortal *bool  `yaml:"captive_portal"`
	Timer         string `yaml:"timer"`
	Debug         *bool  `yaml:"debug"`
}

func (b yamlBoard) layer() (boardLayer, error) {
	layer := boardLayer{
		FirmwareVersion: b.FirmwareVersion,
		HardwareVersion: b.HardwareVersion,
		Name:            b.Name,
		Vendor:          b.Vendor,
		ProductSSID:     b.ProductSSID,
		ConfigHost:      b.ConfigAPURL,
		ButtonPin:       b.Button.Pin,
		ButtonActiveLow: b.Button.ActiveLow,
		Brightness:      b.Brightness,
		PWMMax:          b.PWMMax,
		APPort:          b.APConfigPort,
		CaptivePortal:   b.CaptivePortal,
		Debug:           b.Debug,
	}

	leds := make(map[string]settings.LED)
	if l := b.LED.Single; l != nil {
		leds["led.single"] = settings.SingleLED{Pin: l.Pin}
		layer.LEDInverse = l.Inverse
	}
	if l := b.LED.RGB; l != nil {
		leds["led.rgb"] = settings.RGBLED{R: l.R, G: l.G, B: l.B}
		layer.LEDInverse = l.Inverse
	}
	if l := b.LED.WS2812; l != nil {
		leds["led.ws2812"] = settings.WS2812LED{Pin: l.Pin}
	}
	led, err := selectOne("LED", settings.ErrLEDVariant, leds)
	if err != nil {
		return boardLayer{}, err
	}
	if led != nil {
		layer.LED = *led
	}

	millis := []struct {
		name string
		raw  string
		dst  **time.Duration
	}{
		{"hold_time_indication", b.HoldTimeIndication, &layer.HoldIndication},
		{"hold_time_action", b.HoldTimeAction, &layer.HoldAction},
		{"net_connect_timeout", b.NetConnectTimeout, &layer.NetConnect},
		{"cloud_connect_timeout", b.CloudConnectTimeout, &layer.CloudConnect},
	}
	for _, m := range millis {
		if m.raw == "" {
			continue
		}
		d, err := parseMillis(m.raw)
		if err != nil {
			return boardLayer{}, fmt.Errorf("%s: %w", m.name, err)
		}
		*m.dst = &d
	}

	if b.APIP != "" {
		addr, err := parseIPv4(b.APIP)
		if err != nil {
			return boardLayer{}, fmt.Errorf("ap_ip: %w", err)
		}
		layer.APIP = &addr
	}
	if b.APSubnet != "" {
		addr, err := parseIPv4(b.APSubnet)
		if err != nil {
			return boardLayer{}, fmt.Errorf("ap_subnet: %w", err)
		}
		layer.APSubnet = &addr
	}

	if b.Timer != "" {
		timer, err := settings.ParseTimerSource(b.Timer)
		if err != nil {
			return boardLayer{}, fmt.Errorf("timer %q: %w", b.Timer, err)
		}
		layer.Timer = &timer
	}

	return layer, nil
}

// envReader reads firmware constant names from the environment and keeps the
// first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (r *envReader) lookup(name string) (string, bool) {
	value := strings.TrimSpace(r.getenv(name))
	return value, value != ""
}

func (r *envReader) fail(name string, err error) {
	if r.err == nil {
		r.err = fmt.Errorf("%s: %w", name, err)
	}
}

func (r *envReader) str(name string) *string {
	if value, ok := r.lookup(name); ok {
		return &value
	}
	return nil
}

func (r *envReader) integer(name string) *int {
	raw, ok := r.lookup(name)
	if !ok {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		r.fail(name, fmt.Errorf("invalid integer %q", raw))
		return nil
	}
	return &value
}

func (r *envReader) boolean(name string) *bool {
	raw, ok := r.lookup(name)
	if !ok {
		return nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		r.fail(name, fmt.Errorf("invalid boolean %q", raw))
		return nil
	}
	return &value
}

func (r *envReader) millis(name string) *time.Duration {
	raw, ok := r.lookup(name)
	if !ok {
		return nil
	}
	d, err := parseMillis(raw)
	if err != nil {
		r.fail(name, err)
		return nil
	}
	return &d
}

func (r *envReader) ipv4(name string) *netip.Addr {
	raw, ok := r.lookup(name)
	if !ok {
		return nil
	}
	addr, err := parseIPv4(raw)
	if err != nil {
		r.fail(name, err)
		return nil
	}
	return &addr
}

// envLayer reads the board settings from variables named after the firmware
// constants, e.g. BOARD_NAME or WIFI_AP_IP. Toggles such as USE_TIMER_ONE are
// selected by any true boolean value.
func envLayer(getenv func(string) string) (boardLayer, error) {
	r := &envReader{getenv: getenv}

	layer := boardLayer{
		FirmwareVersion: r.str(settings.NameFirmwareVersion),
		HardwareVersion: r.str(settings.NameHardwareVersion),
		Name:            r.str(settings.NameBoardName),
		Vendor:          r.str(settings.NameBoardVendor),
		ProductSSID:     r.str(settings.NameProductSSID),
		ConfigHost:      r.str(settings.NameConfigAPURL),
		ButtonPin:       r.integer(settings.NameButtonPin),
		ButtonActiveLow: r.boolean(settings.NameButtonActiveLow),
		LEDInverse:      r.boolean(settings.NameLEDInverse),
		Brightness:      r.integer(settings.NameRGBBrightness),
		HoldIndication:  r.millis(settings.NameHoldIndication),
		HoldAction:      r.millis(settings.NameHoldAction),
		NetConnect:      r.millis(settings.NameNetConnectTimeout),
		CloudConnect:    r.millis(settings.NameCloudConnectTimeout),
		PWMMax:          r.integer(settings.NamePWMMax),
		APPort:          r.integer(settings.NameAPConfigPort),
		APIP:            r.ipv4(settings.NameAPIP),
		APSubnet:        r.ipv4(settings.NameAPSubnet),
		CaptivePortal:   r.boolean(settings.NameCaptivePortal),
		Debug:           r.boolean(settings.NameAppDebug),
	}

	leds := make(map[string]settings.LED)
	if pin := r.integer(settings.NameLEDPin); pin != nil {
		leds[settings.NameLEDPin] = settings.SingleLED{Pin: *pin}
	}
	red, green, blue := r.integer(settings.NameLEDPinR), r.integer(settings.NameLEDPinG), r.integer(settings.NameLEDPinB)
	switch {
	case red != nil && green != nil && blue != nil:
		leds[settings.NameLEDPinR] = settings.RGBLED{R: *red, G: *green, B: *blue}
	case red != nil || green != nil || blue != nil:
		r.fail(settings.NameLEDPinR, fmt.Errorf("%w: R, G and B pins must be set together", settings.ErrLEDVariant))
	}
	if pin := r.integer(settings.NameLEDPinWS2812); pin != nil {
		leds[settings.NameLEDPinWS2812] = settings.WS2812LED{Pin: *pin}
	}

	timers := make(map[string]settings.TimerSource)
	for name, source := range map[string]settings.TimerSource{
		settings.NameUseTicker:     settings.TimerTicker,
		settings.NameUseTimerOne:   settings.TimerOne,
		settings.NameUseTimerThree: settings.TimerThree,
	} {
		if enabled := r.boolean(name); enabled != nil && *enabled {
			timers[name] = source
		}
	}

	if r.err != nil {
		return boardLayer{}, r.err
	}

	led, err := selectOne("LED", settings.ErrLEDVariant, leds)
	if err != nil {
		return boardLayer{}, err
	}
	if led != nil {
		layer.LED = *led
	}

	timer, err := selectOne("timer", settings.ErrInvalidTimer, timers)
	if err != nil {
		return boardLayer{}, err
	}
	layer.Timer = timer

	return layer, nil
}
