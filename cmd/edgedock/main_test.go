package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/1broseidon/edgedock/internal/config"
	"github.com/1broseidon/edgedock/internal/ipc"
	"github.com/1broseidon/edgedock/internal/platform"
)

func TestParseWindowID(t *testing.T) {
	tests := []struct {
		in      string
		want    platform.WindowID
		wantErr bool
	}{
		{"", 0, false},
		{"  ", 0, false},
		{"4194305", 4194305, false},
		{"0x400001", 0x400001, false},
		{"0", 0, true},
		{"window", 0, true},
		{"0x1ffffffff", 0, true},
	}
	for _, tt := range tests {
		got, err := parseWindowID(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("parseWindowID(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Fatalf("parseWindowID(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestFormatSource(t *testing.T) {
	tests := []struct {
		src  config.Source
		want string
	}{
		{config.Source{Kind: config.SourceDefault}, "default"},
		{config.Source{Kind: config.SourceDefault, Name: "width"}, "default:width"},
		{config.Source{Kind: config.SourceFile}, "file"},
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml"}, "file:/tmp/c.yaml"},
		{config.Source{Kind: config.SourceFile, File: "/tmp/c.yaml", Line: 3, Column: 5}, "file:/tmp/c.yaml:3:5"},
	}
	for _, tt := range tests {
		if got := formatSource(tt.src); got != tt.want {
			t.Fatalf("formatSource(%+v) = %q, want %q", tt.src, got, tt.want)
		}
	}
}

func TestValidateResize(t *testing.T) {
	if err := validateResize(0, 0, false); err == nil {
		t.Fatalf("expected error for empty resize")
	}
	if err := validateResize(-10, 0, false); err == nil {
		t.Fatalf("expected error for negative absolute width")
	}
	if err := validateResize(-10, 0, true); err != nil {
		t.Fatalf("negative delta rejected: %v", err)
	}
	if err := validateResize(0, 64, false); err != nil {
		t.Fatalf("height-only resize rejected: %v", err)
	}
}

func TestPrintMonitors(t *testing.T) {
	var buf bytes.Buffer
	printMonitors(&buf, []ipc.MonitorInfo{
		{Index: 0, Name: "DP-1", Primary: true, Bounds: platform.Rect{Right: 1920, Bottom: 1080}, ScaleX: 1, ScaleY: 1},
		{Index: 1, Name: "HDMI-1", Bounds: platform.Rect{Left: 1920, Right: 3840, Bottom: 1080}, ScaleX: 1.5, ScaleY: 1.5},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[1], "0") || !strings.Contains(lines[1], "DP-1") {
		t.Fatalf("primary row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "1.50x1.50") {
		t.Fatalf("scale missing from %q", lines[2])
	}
}

func TestPrintStatusIncludesPending(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &ipc.StatusData{Edge: "left", PendingSettings: true, Width: 320, Height: 48})
	out := buf.String()
	if !strings.Contains(out, "pending:          true") || !strings.Contains(out, "size:             320x48") {
		t.Fatalf("status output:\n%s", out)
	}
}
