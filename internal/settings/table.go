package settings

// Constant names understood by the firmware build.
const (
	NameFirmwareVersion     = "BOARD_FIRMWARE_VERSION"
	NameHardwareVersion     = "BOARD_HARDWARE_VERSION"
	NameBoardName           = "BOARD_NAME"
	NameBoardVendor         = "BOARD_VENDOR"
	NameProductSSID         = "PRODUCT_WIFI_SSID"
	NameConfigAPURL         = "BOARD_CONFIG_AP_URL"
	NameButtonPin           = "BOARD_BUTTON_PIN"
	NameButtonActiveLow     = "BOARD_BUTTON_ACTIVE_LOW"
	NameLEDPin              = "BOARD_LED_PIN"
	NameLEDPinR             = "BOARD_LED_PIN_R"
	NameLEDPinG             = "BOARD_LED_PIN_G"
	NameLEDPinB             = "BOARD_LED_PIN_B"
	NameLEDPinWS2812        = "BOARD_LED_PIN_WS2812"
	NameLEDInverse          = "BOARD_LED_INVERSE"
	NameRGBBrightness       = "BOARD_RGB_BRIGHTNESS"
	NameHoldIndication      = "BUTTON_HOLD_TIME_INDICATION"
	NameHoldAction          = "BUTTON_HOLD_TIME_ACTION"
	NamePWMMax              = "BOARD_PWM_MAX"
	NameNetConnectTimeout   = "WIFI_NET_CONNECT_TIMEOUT"
	NameCloudConnectTimeout = "WIFI_CLOUD_CONNECT_TIMEOUT"
	NameAPConfigPort        = "WIFI_AP_CONFIG_PORT"
	NameAPIP                = "WIFI_AP_IP"
	NameAPSubnet            = "WIFI_AP_Subnet"
	NameCaptivePortal       = "WIFI_CAPTIVE_PORTAL_ENABLE"
	NameUseTicker           = "USE_TICKER"
	NameUseTimerOne         = "USE_TIMER_ONE"
	NameUseTimerThree       = "USE_TIMER_THREE"
	NameAppDebug            = "APP_DEBUG"
)

// Semantic is the implied type of a table value.
type Semantic string

const (
	SemanticString  Semantic = "string"
	SemanticInteger Semantic = "integer"
	SemanticBoolean Semantic = "boolean"
	SemanticPin     Semantic = "pin"
	SemanticMillis  Semantic = "milliseconds"
	SemanticIPv4    Semantic = "ipv4"
	SemanticToggle  Semantic = "toggle"
)

// Value is one named entry of the table. Inactive entries belong to an
// unselected hardware variant or an unset toggle; their Value is the
// placeholder emitted in the commented-out header line.
type Value struct {
	Name     string   `json:"name"`
	Value    any      `json:"value"`
	Semantic Semantic `json:"semantic"`
	Active   bool     `json:"active"`
}

// placeholder pins for LED variants that are not selected
const (
	placeholderLEDPin = 2
	placeholderLEDR   = 15
	placeholderLEDG   = 12
	placeholderLEDB   = 13
)

func ledPinNames(kind LEDKind) []string {
	switch kind {
	case LEDSingle:
		return []string{NameLEDPin}
	case LEDRGB:
		return []string{NameLEDPinR, NameLEDPinG, NameLEDPinB}
	default:
		return []string{NameLEDPinWS2812}
	}
}

// Table flattens s into its named entries, in header order.
func Table(s Settings) []Value {
	single, _ := s.LED.(SingleLED)
	rgb, _ := s.LED.(RGBLED)
	ws, _ := s.LED.(WS2812LED)
	kind := LEDKind("")
	if s.LED != nil {
		kind = s.LED.Kind()
	}

	pinOr := func(active bool, pin, placeholder int) int {
		if active {
			return pin
		}
		return placeholder
	}

	return []Value{
		{NameFirmwareVersion, s.Identity.FirmwareVersion, SemanticString, true},
		{NameHardwareVersion, s.Identity.HardwareVersion, SemanticString, true},
		{NameBoardName, s.Identity.Name, SemanticString, true},
		{NameBoardVendor, s.Identity.Vendor, SemanticString, true},
		{NameProductSSID, s.Identity.ProductSSID, SemanticString, true},
		{NameConfigAPURL, s.Identity.ConfigHost, SemanticString, true},

		{NameButtonPin, s.Button.Pin, SemanticPin, true},
		{NameButtonActiveLow, s.Button.ActiveLow, SemanticBoolean, true},

		{NameLEDPin, pinOr(kind == LEDSingle, single.Pin, placeholderLEDPin), SemanticPin, kind == LEDSingle},
		{NameLEDPinR, pinOr(kind == LEDRGB, rgb.R, placeholderLEDR), SemanticPin, kind == LEDRGB},
		{NameLEDPinG, pinOr(kind == LEDRGB, rgb.G, placeholderLEDG), SemanticPin, kind == LEDRGB},
		{NameLEDPinB, pinOr(kind == LEDRGB, rgb.B, placeholderLEDB), SemanticPin, kind == LEDRGB},
		{NameLEDPinWS2812, pinOr(kind == LEDWS2812, ws.Pin, 0), SemanticPin, kind == LEDWS2812},
		{NameLEDInverse, s.LED != nil && Inverse(s.LED), SemanticBoolean, kind == LEDSingle || kind == LEDRGB},
		{NameRGBBrightness, int(s.Brightness), SemanticInteger, true},

		{NameHoldIndication, s.Timing.HoldIndication.Milliseconds(), SemanticMillis, true},
		{NameHoldAction, s.Timing.HoldAction.Milliseconds(), SemanticMillis, true},
		{NamePWMMax, s.Timing.PWMMax, SemanticInteger, true},
		{NameNetConnectTimeout, s.Timing.NetConnect.Milliseconds(), SemanticMillis, true},
		{NameCloudConnectTimeout, s.Timing.CloudConnect.Milliseconds(), SemanticMillis, true},

		{NameAPConfigPort, s.Network.APPort, SemanticInteger, true},
		{NameAPIP, s.Network.APIP.String(), SemanticIPv4, true},
		{NameAPSubnet, s.Network.APSubnet.String(), SemanticIPv4, true},
		{NameCaptivePortal, s.CaptivePortal, SemanticToggle, s.CaptivePortal},

		{NameUseTicker, s.Timer == TimerTicker, SemanticToggle, s.Timer == TimerTicker},
		{NameUseTimerOne, s.Timer == TimerOne, SemanticToggle, s.Timer == TimerOne},
		{NameUseTimerThree, s.Timer == TimerThree, SemanticToggle, s.Timer == TimerThree},
		{NameAppDebug, s.Debug, SemanticToggle, s.Debug},
	}
}

// Lookup returns the entry called name.
func Lookup(s Settings, name string) (Value, bool) {
	for _, v := range Table(s) {
		if v.Name == name {
			return v, true
		}
	}
	return Value{}, false
}
