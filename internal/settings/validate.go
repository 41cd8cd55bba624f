package settings

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net/netip"

	"go.uber.org/multierr"
)

// maxSSIDLength is the 802.11 limit on SSID octets.
const maxSSIDLength = 32

// maxHostBits allows access point networks no wider than /8.
const maxHostBits = 1<<24 - 1

// Validate checks every invariant of the table and returns all violations
// combined into one error. Each violation wraps one of the package sentinels.
func Validate(s Settings) error {
	var err error
	err = multierr.Append(err, validateIdentity(s.Identity))
	err = multierr.Append(err, validatePins(s.Button, s.LED))
	err = multierr.Append(err, validateTiming(s.Timing))
	err = multierr.Append(err, validateNetwork(s.Network))
	if _, ok := timerNames[s.Timer]; !ok {
		err = multierr.Append(err, fmt.Errorf("%w: %d", ErrInvalidTimer, int(s.Timer)))
	}
	return err
}

// Violations splits an error returned by Validate, possibly wrapped, into its
// individual violations.
func Violations(err error) []error {
	if err == nil {
		return nil
	}
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}

func validateIdentity(id Identity) error {
	var err error
	fields := []struct {
		name  string
		value string
	}{
		{NameFirmwareVersion, id.FirmwareVersion},
		{NameHardwareVersion, id.HardwareVersion},
		{NameBoardName, id.Name},
		{NameBoardVendor, id.Vendor},
		{NameProductSSID, id.ProductSSID},
		{NameConfigAPURL, id.ConfigHost},
	}
	for _, f := range fields {
		if f.value == "" {
			err = multierr.Append(err, fmt.Errorf("%w: %s", ErrInvalidIdentity, f.name))
		}
	}
	if len(id.ProductSSID) > maxSSIDLength {
		err = multierr.Append(err, fmt.Errorf("%w: %s longer than %d bytes", ErrInvalidIdentity, NameProductSSID, maxSSIDLength))
	}
	return err
}

func validatePins(button Button, led LED) error {
	var err error
	err = multierr.Append(err, checkPin(NameButtonPin, button.Pin))

	if led == nil {
		return multierr.Append(err, fmt.Errorf("%w: none selected", ErrLEDVariant))
	}

	used := map[int]string{button.Pin: NameButtonPin}
	for i, pin := range led.Pins() {
		name := ledPinNames(led.Kind())[i]
		err = multierr.Append(err, checkPin(name, pin))
		if other, dup := used[pin]; dup {
			err = multierr.Append(err, fmt.Errorf("%w: %s and %s both use GPIO %d", ErrPinConflict, other, name, pin))
			continue
		}
		used[pin] = name
	}
	return err
}

func checkPin(name string, pin int) error {
	if pin < 0 || pin > MaxGPIO {
		return fmt.Errorf("%w: %s=%d", ErrInvalidPin, name, pin)
	}
	return nil
}

func validateTiming(t Timing) error {
	var err error
	durations := []struct {
		name  string
		value int64
	}{
		{NameHoldIndication, t.HoldIndication.Milliseconds()},
		{NameHoldAction, t.HoldAction.Milliseconds()},
		{NameNetConnectTimeout, t.NetConnect.Milliseconds()},
		{NameCloudConnectTimeout, t.CloudConnect.Milliseconds()},
	}
	for _, d := range durations {
		if d.value <= 0 {
			err = multierr.Append(err, fmt.Errorf("%w: %s must be at least 1ms", ErrInvalidDuration, d.name))
		}
	}
	if t.HoldIndication > 0 && t.HoldIndication >= t.HoldAction {
		err = multierr.Append(err, fmt.Errorf("%w: %s must be shorter than %s", ErrInvalidDuration, NameHoldIndication, NameHoldAction))
	}
	if t.PWMMax <= 0 {
		err = multierr.Append(err, fmt.Errorf("%w: %s=%d", ErrInvalidPWM, NamePWMMax, t.PWMMax))
	}
	return err
}

func validateNetwork(n Network) error {
	var err error
	if n.APPort < 1 || n.APPort > 65535 {
		err = multierr.Append(err, fmt.Errorf("%w: %s=%d", ErrInvalidNetwork, NameAPConfigPort, n.APPort))
	}
	if !n.APIP.Is4() {
		err = multierr.Append(err, fmt.Errorf("%w: %s is not an IPv4 address", ErrInvalidNetwork, NameAPIP))
	} else if n.APIP.IsUnspecified() || n.APIP.IsLoopback() || n.APIP.IsMulticast() {
		err = multierr.Append(err, fmt.Errorf("%w: %s %s cannot address an access point", ErrInvalidNetwork, NameAPIP, n.APIP))
	}
	if !n.APSubnet.Is4() {
		return multierr.Append(err, fmt.Errorf("%w: %s is not an IPv4 mask", ErrInvalidNetwork, NameAPSubnet))
	}

	mask := addrToUint32(n.APSubnet)
	hostBits := ^mask
	if hostBits&(hostBits+1) != 0 {
		return multierr.Append(err, fmt.Errorf("%w: %s %s is not contiguous", ErrInvalidNetwork, NameAPSubnet, n.APSubnet))
	}
	if hostBits > maxHostBits {
		return multierr.Append(err, fmt.Errorf("%w: %s %s is wider than /8", ErrInvalidNetwork, NameAPSubnet, n.APSubnet))
	}
	// /31 and /32 leave no address for clients.
	if hostBits < 3 {
		return multierr.Append(err, fmt.Errorf("%w: %s %s leaves no client addresses", ErrInvalidNetwork, NameAPSubnet, n.APSubnet))
	}
	if !n.APIP.Is4() {
		return err
	}
	host := addrToUint32(n.APIP) & hostBits
	if host == 0 || host == hostBits {
		err = multierr.Append(err, fmt.Errorf("%w: %s %s is the network or broadcast address of %s", ErrInvalidNetwork, NameAPIP, n.APIP, n.APSubnet))
	}
	return err
}

// Prefix returns the access point network in CIDR form, e.g. 192.168.4.0/24.
// It reports false when the addresses do not form a valid IPv4 network.
func (n Network) Prefix() (string, bool) {
	if validateNetwork(Network{APPort: 1, APIP: n.APIP, APSubnet: n.APSubnet}) != nil {
		return "", false
	}
	ones := 0
	for m := addrToUint32(n.APSubnet); m != 0; m <<= 1 {
		ones++
	}
	prefix, err := n.APIP.Prefix(ones)
	if err != nil {
		return "", false
	}
	return prefix.String(), true
}

func addrToUint32(addr netip.Addr) uint32 {
	b := addr.As4()
	return binary.BigEndian.Uint32(b[:])
}
