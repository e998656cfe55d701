package ymstream

import (
	"errors"
	"testing"
)

func TestIdentifyFormat(t *testing.T) {
	tests := []struct {
		magic string
		want  Format
	}{
		{"YM2!", FormatYM2},
		{"YM3!", FormatYM3},
		{"YM3b", FormatYM3b},
		{"YM4!", FormatYM4},
		{"YM5!", FormatYM5},
		{"YM6!", FormatYM6},
	}
	for _, tt := range tests {
		t.Run(tt.magic, func(t *testing.T) {
			got, err := identifyFormat([]byte(tt.magic + "rest"))
			if err != nil {
				t.Fatalf("identifyFormat(%q) failed: %v", tt.magic, err)
			}
			if got != tt.want {
				t.Errorf("identifyFormat(%q) = %v, want %v", tt.magic, got, tt.want)
			}
			if got.String() != tt.magic {
				t.Errorf("String() = %q, want %q", got.String(), tt.magic)
			}
		})
	}
}

func TestIdentifyFormat_Rejects(t *testing.T) {
	for _, data := range [][]byte{nil, []byte("YM"), []byte("ym5!data"), []byte("MThd")} {
		if _, err := identifyFormat(data); !errors.Is(err, ErrUnrecognizedFormat) {
			t.Errorf("identifyFormat(%q) error = %v, want ErrUnrecognizedFormat", data, err)
		}
	}
}

func TestRegisterWidth(t *testing.T) {
	if w := FormatYM2.registerWidth(); w != 14 {
		t.Errorf("YM2 width = %d, want 14", w)
	}
	if w := FormatYM3b.registerWidth(); w != 14 {
		t.Errorf("YM3b width = %d, want 14", w)
	}
	if w := FormatYM4.registerWidth(); w != 16 {
		t.Errorf("YM4 width = %d, want 16", w)
	}
	if w := FormatYM6.registerWidth(); w != 16 {
		t.Errorf("YM6 width = %d, want 16", w)
	}
}

func TestIsLHAData(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want bool
	}{
		{"lh5 archive", []byte{0x24, 0x0B, '-', 'l', 'h', '5', '-', 0x00}, true},
		{"lh0 stored", []byte{0x10, 0x22, '-', 'l', 'h', '0', '-', 0x00}, true},
		{"plain ym", []byte("YM5!LeOnArD!"), false},
		{"short", []byte{'-', 'l'}, false},
		{"empty", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isLHAData(tt.data); got != tt.want {
				t.Errorf("isLHAData = %v, want %v", got, tt.want)
			}
		})
	}
}
