//go:build !linux && !windows

package platform

import "log/slog"

// OpenHost reports that no backend exists for this platform.
func OpenHost(HostOptions, *slog.Logger) (Host, error) {
	return nil, ErrUnsupportedPlatform
}
