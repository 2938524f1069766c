package config

import (
	"os"
	"path/filepath"
	"testing"
)

// TestParseHexColor_ValidInputs verifies that ParseHexColor correctly parses
// various valid hex colour formats, catching case sensitivity issues,
// prefix handling, and byte ordering bugs.
func TestParseHexColor_ValidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		wantR uint8
		wantG uint8
		wantB uint8
	}{
		// Uppercase without hash
		{
			name:  "FF0000 (uppercase red, no hash)",
			input: "FF0000",
			wantR: 255,
			wantG: 0,
			wantB: 0,
		},
		// Lowercase with hash
		{
			name:  "#ff0000 (lowercase red, with hash)",
			input: "#ff0000",
			wantR: 255,
			wantG: 0,
			wantB: 0,
		},
		// Mixed case
		{
			name:  "Ff00fF (mixed case magenta)",
			input: "Ff00fF",
			wantR: 255,
			wantG: 0,
			wantB: 255,
		},
		// Black
		{
			name:  "000000 (black)",
			input: "000000",
			wantR: 0,
			wantG: 0,
			wantB: 0,
		},
		// White
		{
			name:  "#FFFFFF (white)",
			input: "#FFFFFF",
			wantR: 255,
			wantG: 255,
			wantB: 255,
		},
		// Pulse accent (#FF2D78)
		{
			name:  "#FF2D78 (pulse pink)",
			input: "#FF2D78",
			wantR: 255,
			wantG: 45,
			wantB: 120,
		},
		// Spectrum accent without hash
		{
			name:  "00E5FF (electric cyan, no hash)",
			input: "00E5FF",
			wantR: 0,
			wantG: 229,
			wantB: 255,
		},
		// Low values
		{
			name:  "010203 (low values)",
			input: "010203",
			wantR: 1,
			wantG: 2,
			wantB: 3,
		},
		// High values
		{
			name:  "FDFEFF (high values)",
			input: "FDFEFF",
			wantR: 253,
			wantG: 254,
			wantB: 255,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b, err := ParseHexColor(tc.input)
			if err != nil {
				t.Fatalf("ParseHexColor(%q) returned error: %v", tc.input, err)
			}

			if r != tc.wantR || g != tc.wantG || b != tc.wantB {
				t.Errorf("ParseHexColor(%q) = (%d, %d, %d), want (%d, %d, %d)",
					tc.input, r, g, b, tc.wantR, tc.wantG, tc.wantB)
			}
		})
	}
}

// TestParseHexColor_InvalidInputs verifies that ParseHexColor correctly
// rejects malformed input with appropriate errors.
func TestParseHexColor_InvalidInputs(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		// Too short
		{
			name:  "FFF (too short, 3 chars)",
			input: "FFF",
		},
		// Too short with hash
		{
			name:  "#FFF (too short with hash)",
			input: "#FFF",
		},
		// Too long
		{
			name:  "FFFFFFF (too long)",
			input: "FFFFFFF",
		},
		// Invalid hex characters
		{
			name:  "GGGGGG (invalid hex)",
			input: "GGGGGG",
		},
		// Mixed valid and invalid
		{
			name:  "FF00GG (mixed valid/invalid)",
			input: "FF00GG",
		},
		// Empty string
		{
			name:  "Empty string",
			input: "",
		},
		// Just hash
		{
			name:  "# (just hash)",
			input: "#",
		},
		// Spaces
		{
			name:  "FF 000 (spaces)",
			input: "FF 000",
		},
		// Hash in middle
		{
			name:  "FF#000 (hash in middle)",
			input: "FF#000",
		},
		// Double hash
		{
			name:  "##FF0000 (double hash)",
			input: "##FF0000",
		},
		// Newline
		{
			name:  "FF0000\\n (with newline)",
			input: "FF0000\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, _, err := ParseHexColor(tc.input); err == nil {
				t.Errorf("ParseHexColor(%q) expected error, got nil", tc.input)
			}
		})
	}
}

// TestParseHexColor_ByteOrder verifies correct byte ordering (R, G, B).
// This catches swaps like (B, G, R) or (G, R, B).
func TestParseHexColor_ByteOrder(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		// Each should have distinct values to catch any reordering
		wantR, wantG, wantB uint8
	}{
		{
			name:  "010203 (1, 2, 3)",
			input: "010203",
			wantR: 1,
			wantG: 2,
			wantB: 3,
		},
		{
			name:  "AABBCC (170, 187, 204)",
			input: "AABBCC",
			wantR: 0xAA,
			wantG: 0xBB,
			wantB: 0xCC,
		},
		{
			name:  "DDEEFF (221, 238, 255)",
			input: "DDEEFF",
			wantR: 0xDD,
			wantG: 0xEE,
			wantB: 0xFF,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b, err := ParseHexColor(tc.input)
			if err != nil {
				t.Fatalf("ParseHexColor(%q) returned error: %v", tc.input, err)
			}

			// Check each component individually to catch reorderings
			if r != tc.wantR {
				t.Errorf("Red channel: got %d (0x%02X), want %d (0x%02X)",
					r, r, tc.wantR, tc.wantR)
			}
			if g != tc.wantG {
				t.Errorf("Green channel: got %d (0x%02X), want %d (0x%02X)",
					g, g, tc.wantG, tc.wantG)
			}
			if b != tc.wantB {
				t.Errorf("Blue channel: got %d (0x%02X), want %d (0x%02X)",
					b, b, tc.wantB, tc.wantB)
			}
		})
	}
}

// TestRuntimeConfig_GetPulseColor verifies that GetPulseColor returns
// default values unless every component is overridden.
func TestRuntimeConfig_GetPulseColor(t *testing.T) {
	defR, defG, defB := DefaultPulseColor()

	testCases := []struct {
		name   string
		config *RuntimeConfig
		wantR  uint8
		wantG  uint8
		wantB  uint8
	}{
		{
			name:   "Nil config fields (use defaults)",
			config: &RuntimeConfig{},
			wantR:  defR,
			wantG:  defG,
			wantB:  defB,
		},
		{
			name: "Custom R only",
			config: &RuntimeConfig{
				PulseR: ptrUint8(100),
			},
			// Should use defaults since not all fields are set
			wantR: defR,
			wantG: defG,
			wantB: defB,
		},
		{
			name: "All custom values",
			config: &RuntimeConfig{
				PulseR: ptrUint8(255),
				PulseG: ptrUint8(128),
				PulseB: ptrUint8(64),
			},
			wantR: 255,
			wantG: 128,
			wantB: 64,
		},
		{
			name: "Custom with zeros",
			config: &RuntimeConfig{
				PulseR: ptrUint8(0),
				PulseG: ptrUint8(0),
				PulseB: ptrUint8(255),
			},
			wantR: 0,
			wantG: 0,
			wantB: 255,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, g, b := tc.config.GetPulseColor()
			if r != tc.wantR || g != tc.wantG || b != tc.wantB {
				t.Errorf("GetPulseColor() = (%d, %d, %d), want (%d, %d, %d)",
					r, g, b, tc.wantR, tc.wantG, tc.wantB)
			}
		})
	}
}

// TestRuntimeConfig_GetSpectrumColor verifies override and default
// behaviour for the spectrum accent, including the nil receiver used
// when no config file was loaded.
func TestRuntimeConfig_GetSpectrumColor(t *testing.T) {
	defR, defG, defB := DefaultSpectrumColor()

	var nilCfg *RuntimeConfig
	if r, g, b := nilCfg.GetSpectrumColor(); r != defR || g != defG || b != defB {
		t.Errorf("nil GetSpectrumColor() = (%d, %d, %d), want defaults (%d, %d, %d)",
			r, g, b, defR, defG, defB)
	}

	partial := &RuntimeConfig{SpectrumR: ptrUint8(10), SpectrumB: ptrUint8(30)}
	if r, g, b := partial.GetSpectrumColor(); r != defR || g != defG || b != defB {
		t.Errorf("partial GetSpectrumColor() = (%d, %d, %d), want defaults", r, g, b)
	}

	full := &RuntimeConfig{
		SpectrumR: ptrUint8(40),
		SpectrumG: ptrUint8(50),
		SpectrumB: ptrUint8(60),
	}
	if r, g, b := full.GetSpectrumColor(); r != 40 || g != 50 || b != 60 {
		t.Errorf("GetSpectrumColor() = (%d, %d, %d), want (40, 50, 60)", r, g, b)
	}
}

// TestRuntimeConfig_GetSensitivity verifies the sensitivity override
// falls back to the package default when unset.
func TestRuntimeConfig_GetSensitivity(t *testing.T) {
	var nilCfg *RuntimeConfig
	if got := nilCfg.GetSensitivity(); got != SpectrumSensitivity {
		t.Errorf("nil GetSensitivity() = %v, want %v", got, SpectrumSensitivity)
	}

	s := 2.5
	cfg := &RuntimeConfig{Sensitivity: &s}
	if got := cfg.GetSensitivity(); got != 2.5 {
		t.Errorf("GetSensitivity() = %v, want 2.5", got)
	}
}

// TestLoad_EmptyPath verifies that an empty config path yields a config
// with no overrides rather than an error.
func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") returned error: %v", err)
	}
	if cfg.PulseR != nil || cfg.SpectrumR != nil || cfg.Sensitivity != nil {
		t.Error("Load(\"\") should return a config with no overrides")
	}
}

// TestLoad_File verifies that a YAML config file populates every
// override group.
func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thump.yaml")
	content := `colors:
  pulse: "#102030"
  spectrum: "405060"
spectrum:
  sensitivity: 1.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if r, g, b := cfg.GetPulseColor(); r != 0x10 || g != 0x20 || b != 0x30 {
		t.Errorf("pulse color = (%d, %d, %d), want (16, 32, 48)", r, g, b)
	}
	if r, g, b := cfg.GetSpectrumColor(); r != 0x40 || g != 0x50 || b != 0x60 {
		t.Errorf("spectrum color = (%d, %d, %d), want (64, 80, 96)", r, g, b)
	}
	if got := cfg.GetSensitivity(); got != 1.5 {
		t.Errorf("sensitivity = %v, want 1.5", got)
	}
}

// TestLoad_BadColor verifies that an invalid colour in the file is
// reported instead of silently ignored.
func TestLoad_BadColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thump.yaml")
	if err := os.WriteFile(path, []byte("colors:\n  pulse: \"#XYZ\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() with invalid colour should fail")
	}
}

// TestLoad_MissingFile verifies that pointing at a nonexistent file
// fails loudly.
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() with missing file should fail")
	}
}

// ptrUint8 is a helper to create pointers to uint8 values for testing.
func ptrUint8(v uint8) *uint8 {
	return &v
}
