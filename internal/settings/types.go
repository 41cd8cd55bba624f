package settings

import (
	"net/netip"
	"time"
)

// MaxGPIO is the highest GPIO number accepted for any pin setting.
const MaxGPIO = 39

// Settings is the resolved configuration table of a board build.
// It is passed by value and never mutated after loading.
type Settings struct {
	Identity      Identity
	Button        Button
	LED           LED
	Brightness    uint8
	Timing        Timing
	Network       Network
	CaptivePortal bool
	Timer         TimerSource
	Debug         bool
}

// Identity groups product, vendor and version strings.
type Identity struct {
	FirmwareVersion string `json:"firmwareVersion"`
	HardwareVersion string `json:"hardwareVersion"`
	Name            string `json:"name"`
	Vendor          string `json:"vendor"`
	ProductSSID     string `json:"productSsid"`
	ConfigHost      string `json:"configHost"`
}

// Button describes the user button wiring.
type Button struct {
	Pin       int  `json:"pin"`
	ActiveLow bool `json:"activeLow"`
}

// Timing holds gesture thresholds, connection budgets and the PWM ceiling.
type Timing struct {
	HoldIndication time.Duration
	HoldAction     time.Duration
	NetConnect     time.Duration
	CloudConnect   time.Duration
	PWMMax         int
}

// Network holds the access point addressing used during provisioning.
type Network struct {
	APPort   int
	APIP     netip.Addr
	APSubnet netip.Addr
}

// TimerSource selects the timer peripheral driving periodic work.
type TimerSource int

const (
	TimerTicker TimerSource = iota
	TimerOne
	TimerThree
)

var timerNames = map[TimerSource]string{
	TimerTicker: "ticker",
	TimerOne:    "timer_one",
	TimerThree:  "timer_three",
}

func (t TimerSource) String() string {
	if name, ok := timerNames[t]; ok {
		return name
	}
	return "unknown"
}

// ParseTimerSource maps "ticker", "timer_one" or "timer_three" to a TimerSource.
func ParseTimerSource(raw string) (TimerSource, error) {
	for source, name := range timerNames {
		if name == raw {
			return source, nil
		}
	}
	return 0, ErrInvalidTimer
}

// LEDKind identifies an LED wiring variant.
type LEDKind string

const (
	LEDSingle LEDKind = "single"
	LEDRGB    LEDKind = "rgb"
	LEDWS2812 LEDKind = "ws2812"
)

// LED is the wiring of the status LED. Exactly one variant is active per build.
type LED interface {
	Kind() LEDKind
	Pins() []int
	isLED()
}

// SingleLED is a single-color LED on one pin.
type SingleLED struct {
	Pin     int
	Inverse bool
}

// RGBLED is a PWM-driven RGB LED on three pins.
type RGBLED struct {
	R, G, B int
	Inverse bool
}

// WS2812LED is an addressable RGB LED on one data pin.
type WS2812LED struct {
	Pin int
}

func (SingleLED) Kind() LEDKind { return LEDSingle }
func (RGBLED) Kind() LEDKind    { return LEDRGB }
func (WS2812LED) Kind() LEDKind { return LEDWS2812 }

func (l SingleLED) Pins() []int { return []int{l.Pin} }
func (l RGBLED) Pins() []int    { return []int{l.R, l.G, l.B} }
func (l WS2812LED) Pins() []int { return []int{l.Pin} }

func (SingleLED) isLED() {}
func (RGBLED) isLED()    {}
func (WS2812LED) isLED() {}

// Inverse reports whether the LED signal is inverted. WS2812 has no inverse option.
func Inverse(led LED) bool {
	switch l := led.(type) {
	case SingleLED:
		return l.Inverse
	case RGBLED:
		return l.Inverse
	default:
		return false
	}
}
