package settings

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
)

var headerTemplate = template.Must(template.New("header").Funcs(template.FuncMap{
	"line": defineLine,
}).Parse(`/*
 * General options
 */

{{ range .General }}{{ line . }}
{{ end }}
/*
 * Board configuration
 */

{{ range .Board }}{{ line . }}
{{ end }}
/*
 * Advanced options
 */

{{ range .Advanced }}{{ line . }}
{{ end }}
{{ line .Debug }}

#if defined(APP_DEBUG)
  #define DEBUG_PRINT(...) BLYNK_LOG1(__VA_ARGS__)
#else
  #define DEBUG_PRINT(...)
#endif
`))

type headerData struct {
	General  []Value
	Board    []Value
	Advanced []Value
	Debug    Value
}

// RenderHeader writes s as the firmware settings header. Entries of
// unselected variants and unset toggles are emitted commented out.
func RenderHeader(w io.Writer, s Settings) error {
	byName := make(map[string]Value)
	for _, v := range Table(s) {
		byName[v.Name] = v
	}
	pick := func(names ...string) []Value {
		out := make([]Value, 0, len(names))
		for _, name := range names {
			out = append(out, byName[name])
		}
		return out
	}

	data := headerData{
		General: pick(NameFirmwareVersion, NameHardwareVersion, NameBoardName, NameBoardVendor,
			NameProductSSID, NameConfigAPURL),
		Board: pick(NameButtonPin, NameButtonActiveLow, NameLEDPin, NameLEDPinR, NameLEDPinG,
			NameLEDPinB, NameLEDPinWS2812, NameLEDInverse, NameRGBBrightness),
		Advanced: pick(NameHoldIndication, NameHoldAction, NamePWMMax, NameNetConnectTimeout,
			NameCloudConnectTimeout, NameAPConfigPort, NameAPIP, NameAPSubnet, NameCaptivePortal,
			NameUseTicker, NameUseTimerOne, NameUseTimerThree),
		Debug: byName[NameAppDebug],
	}
	if err := headerTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render header: %w", err)
	}
	return nil
}

func defineLine(v Value) string {
	prefix := "#define "
	if !v.Active {
		prefix = "//#define "
	}
	if v.Semantic == SemanticToggle {
		return prefix + v.Name
	}
	return fmt.Sprintf("%s%-28s %s", prefix, v.Name, formatValue(v))
}

func formatValue(v Value) string {
	switch v.Semantic {
	case SemanticString:
		return strconv.Quote(fmt.Sprint(v.Value))
	case SemanticIPv4:
		return "IPAddress(" + strings.ReplaceAll(fmt.Sprint(v.Value), ".", ", ") + ")"
	default:
		return fmt.Sprint(v.Value)
	}
}
