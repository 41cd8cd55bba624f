package settings

import (
	"net/netip"
	"time"
)

// Defaults returns the settings shipped with the stock board build.
func Defaults() Settings {
	return Settings{
		Identity: Identity{
			FirmwareVersion: "1.0.0",
			HardwareVersion: "1.0.0",
			Name:            "My Plant",
			Vendor:          "Blynk",
			ProductSSID:     "Blynk myPlant",
			ConfigHost:      "my-plant.cc",
		},
		Button: Button{
			Pin:       0,
			ActiveLow: true,
		},
		LED:        WS2812LED{Pin: 4},
		Brightness: 32,
		Timing: Timing{
			HoldIndication: 3 * time.Second,
			HoldAction:     10 * time.Second,
			NetConnect:     30 * time.Second,
			CloudConnect:   15 * time.Second,
			PWMMax:         1023,
		},
		Network: Network{
			APPort:   80,
			APIP:     netip.AddrFrom4([4]byte{192, 168, 4, 1}),
			APSubnet: netip.AddrFrom4([4]byte{255, 255, 255, 0}),
		},
		CaptivePortal: false,
		Timer:         TimerTicker,
		Debug:         false,
	}
}
