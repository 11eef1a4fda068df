package x11

import (
	"bufio"
	"errors"
	"strconv"
	"strings"

	"github.com/BurntSushi/xgbutil/xprop"
)

// ErrNoDPI is returned when the X resource database carries no Xft.dpi.
var ErrNoDPI = errors.New("Xft.dpi not set")

// XftDPI reads Xft.dpi from the RESOURCE_MANAGER property on the root
// window. X11 has a single value for all monitors.
func (c *Connection) XftDPI() (float64, error) {
	db, err := xprop.PropValStr(xprop.GetProperty(c.XUtil, c.Root, "RESOURCE_MANAGER"))
	if err != nil {
		return 0, ErrNoDPI
	}
	dpi, ok := ParseXftDPI(db)
	if !ok {
		return 0, ErrNoDPI
	}
	return dpi, nil
}

// ParseXftDPI extracts a positive Xft.dpi value from an xrdb dump.
func ParseXftDPI(db string) (float64, bool) {
	scanner := bufio.NewScanner(strings.NewReader(db))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) != "Xft.dpi" {
			continue
		}
		dpi, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || dpi <= 0 {
			return 0, false
		}
		return dpi, true
	}
	return 0, false
}
