// Package geometry turns a monitor, a dock edge and a logical panel size into
// absolute desktop coordinates.
package geometry

import (
	"fmt"
	"math"

	"github.com/1broseidon/edgedock/internal/monitor"
	"github.com/1broseidon/edgedock/internal/platform"
)

// Size is a logical (96 DPI) panel size.
type Size struct {
	Width  int
	Height int
}

// ScaleTransform compensates for a monitor's DPI.
type ScaleTransform struct {
	ScaleX float64
	ScaleY float64
}

// TransformFor derives the transform for a monitor descriptor.
func TransformFor(m monitor.Descriptor) ScaleTransform {
	t := ScaleTransform{ScaleX: m.ScaleX, ScaleY: m.ScaleY}
	if t.ScaleX <= 0 {
		t.ScaleX = 1
	}
	if t.ScaleY <= 0 {
		t.ScaleY = 1
	}
	return t
}

// Apply converts a logical size into physical pixels.
func (t ScaleTransform) Apply(s Size) Size {
	return Size{
		Width:  int(math.Round(float64(s.Width) * t.ScaleX)),
		Height: int(math.Round(float64(s.Height) * t.ScaleY)),
	}
}

// ComputeWorkArea returns the strip a panel docked to edge should occupy on
// the monitor. The monitor's work area must not include this panel's own
// reservation. Left/Right strips span the full work-area height and
// Top/Bottom strips the full width.
func ComputeWorkArea(m monitor.Descriptor, edge platform.Edge, logical Size) (platform.Rect, error) {
	physical := TransformFor(m).Apply(logical)
	physical.Width = max(physical.Width, 0)
	physical.Height = max(physical.Height, 0)

	result := m.WorkArea.Normalize()
	switch edge {
	case platform.EdgeLeft:
		result.Right = result.Left + physical.Width
	case platform.EdgeRight:
		result.Left = result.Right - physical.Width
	case platform.EdgeTop:
		result.Bottom = result.Top + physical.Height
	case platform.EdgeBottom:
		result.Top = result.Bottom - physical.Height
	default:
		return platform.Rect{}, fmt.Errorf("cannot compute dock area for edge %s", edge)
	}
	return result, nil
}
