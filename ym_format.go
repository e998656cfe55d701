// ym_format.go - YM container format identification and chip constants.

package ymstream

import "fmt"

type Format uint8

const (
	FormatYM2 Format = iota
	FormatYM3
	FormatYM3b
	FormatYM4
	FormatYM5
	FormatYM6
)

const (
	YM_REG_COUNT        = 16
	YM_LEGACY_REG_COUNT = 14

	YM_CLOCK_ATARI_ST     = 2000000
	YM_DEFAULT_FRAME_RATE = 50
	MFP_TIMER_HZ          = 2457600
	YM_MAX_DIGIDRUMS      = 32
)

// ymCheckString follows the magic in YM4!/YM5!/YM6! files. It carries no
// data; historical rippers used it to detect truncated downloads.
const ymCheckString = "LeOnArD!"

var ymMagics = map[string]Format{
	"YM2!": FormatYM2,
	"YM3!": FormatYM3,
	"YM3b": FormatYM3b,
	"YM4!": FormatYM4,
	"YM5!": FormatYM5,
	"YM6!": FormatYM6,
}

func (f Format) String() string {
	switch f {
	case FormatYM2:
		return "YM2!"
	case FormatYM3:
		return "YM3!"
	case FormatYM3b:
		return "YM3b"
	case FormatYM4:
		return "YM4!"
	case FormatYM5:
		return "YM5!"
	case FormatYM6:
		return "YM6!"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// registerWidth is the number of register slots stored per frame. YM4 and
// later pad to 16 to make room for the two virtual effect-divisor registers.
func (f Format) registerWidth() int {
	if f <= FormatYM3b {
		return YM_LEGACY_REG_COUNT
	}
	return YM_REG_COUNT
}

// hasFullHeader reports whether the variant carries the extended header
// block (check string, frame count, attributes, metadata strings).
func (f Format) hasFullHeader() bool {
	return f >= FormatYM4
}

// identifyFormat classifies the buffer by its 4-byte magic token.
func identifyFormat(data []byte) (Format, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: buffer too short (%d bytes)", ErrUnrecognizedFormat, len(data))
	}
	format, ok := ymMagics[string(data[:4])]
	if !ok {
		return 0, fmt.Errorf("%w: magic %q", ErrUnrecognizedFormat, data[:4])
	}
	return format, nil
}

// Song attribute bits (YM4 and later).
const (
	attrInterleaved = 1 << 0
	attrDrumsSigned = 1 << 1
	attrDrums4Bit   = 1 << 2
)

// isLHAData sniffs an LHA level 0/1 archive header: the 5-byte compression
// method id "-lh?-" (or "-lz?-") starts at offset 2.
func isLHAData(data []byte) bool {
	if len(data) < 7 {
		return false
	}
	return data[2] == '-' && data[3] == 'l' && data[6] == '-'
}
