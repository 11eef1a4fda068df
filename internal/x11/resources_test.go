package x11

import "testing"

func TestParseXftDPI(t *testing.T) {
	tests := []struct {
		name string
		db   string
		want float64
		ok   bool
	}{
		{name: "present", db: "Xft.antialias:\t1\nXft.dpi:\t144\nXft.hinting:\t1\n", want: 144, ok: true},
		{name: "fractional", db: "Xft.dpi: 120.5", want: 120.5, ok: true},
		{name: "missing", db: "Xcursor.size:\t24\n", ok: false},
		{name: "comment", db: "! Xft.dpi: 200\n", ok: false},
		{name: "garbage", db: "Xft.dpi: big\n", ok: false},
		{name: "zero", db: "Xft.dpi: 0\n", ok: false},
		{name: "empty", db: "", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseXftDPI(tt.db)
			if ok != tt.ok {
				t.Fatalf("ParseXftDPI ok = %v, want %v", ok, tt.ok)
			}
			if got != tt.want {
				t.Fatalf("ParseXftDPI = %v, want %v", got, tt.want)
			}
		})
	}
}
