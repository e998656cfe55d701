// ym_parser.go - YM file parser for AY/YM register frames.

package ymstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Fatal decode error kinds. Errors returned by Decode wrap one of these and
// carry byte-offset context; check with errors.Is.
var (
	ErrUnrecognizedFormat = errors.New("ym: unrecognized format")
	ErrArchive            = errors.New("ym: archive decompression failed")
	ErrTruncatedHeader    = errors.New("ym: truncated header")
	ErrTruncatedDigiDrum  = errors.New("ym: truncated digi-drum sample")
	ErrTruncatedFrameData = errors.New("ym: truncated frame data")
)

// YMFile is a fully decoded YM song: the header metadata, the digi-drum
// sample table and the reconstructed frame-major register snapshots.
// Immutable after Decode; safe to share between any number of Players.
type YMFile struct {
	Version   Format
	Frames    [][]uint8 // frame-major, YM_REG_COUNT slots each, carry-forward resolved
	FrameRate uint16
	ClockHz   uint32
	LoopFrame uint32
	Title     string
	Author    string
	Comments  string

	Interleaved bool
	DrumsSigned bool
	Drums4Bit   bool

	DigiDrums [][]uint8

	// Warnings collects non-fatal field-level problems (clamped loop frame,
	// zero clock, missing end tag). A file with warnings still decodes.
	Warnings []string

	// envWrites[f] is false when frame f stored the envelope-shape hold
	// sentinel; players must not retrigger the hardware envelope there.
	envWrites []bool
}

// FrameCount returns the number of reconstructed frames.
func (y *YMFile) FrameCount() uint32 {
	return uint32(len(y.Frames))
}

// DurationSeconds returns the play time of one pass through the song.
func (y *YMFile) DurationSeconds() float64 {
	if y.FrameRate == 0 {
		return 0
	}
	return float64(len(y.Frames)) / float64(y.FrameRate)
}

// FrameCycles returns the number of chip clock cycles per music frame.
func (y *YMFile) FrameCycles() float64 {
	if y.FrameRate == 0 {
		return 0
	}
	return float64(y.ClockHz) / float64(y.FrameRate)
}

// EnvelopeWritten reports whether frame f rewrote the envelope shape
// register rather than holding the previous value.
func (y *YMFile) EnvelopeWritten(f uint32) bool {
	if int(f) >= len(y.envWrites) {
		return false
	}
	return y.envWrites[f]
}

func (y *YMFile) warnf(format string, args ...any) {
	y.Warnings = append(y.Warnings, fmt.Sprintf(format, args...))
}

// Decompressor strips a compressed-archive envelope from a whole-file
// buffer. The package treats it as an opaque capability.
type Decompressor func(data []byte) ([]byte, error)

// DecodeOptions configures Decode. A nil Decompress falls back to the
// platform default (liblhasa on Linux).
type DecodeOptions struct {
	Decompress Decompressor
}

// Decode parses a whole-file byte buffer into a YMFile. LHA-wrapped files
// are unwrapped first; the six container variants are then normalized into
// one frame-major output model. Decode never reads files or logs.
func Decode(data []byte) (*YMFile, error) {
	return DecodeWithOptions(data, DecodeOptions{})
}

// DecodeFile reads and decodes the file at path.
func DecodeFile(path string) (*YMFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func DecodeWithOptions(data []byte, opts DecodeOptions) (*YMFile, error) {
	if isLHAData(data) {
		decompress := opts.Decompress
		if decompress == nil {
			decompress = DecompressLHA
		}
		raw, err := decompress(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrArchive, err)
		}
		data = raw
	}

	format, err := identifyFormat(data)
	if err != nil {
		return nil, err
	}

	if format.hasFullHeader() {
		return parseModern(format, data)
	}
	return parseLegacy(format, data)
}

// ymPsgDebugEnabled caches the PSG_DEBUG environment variable at init time
var ymPsgDebugEnabled = func() bool {
	value := strings.ToLower(os.Getenv("PSG_DEBUG"))
	return value == "1" || value == "true" || value == "yes"
}()

// parseLegacy handles YM2!/YM3!/YM3b: no header block at all. The frame
// count is derived from the payload size; a 4-byte remainder is the
// trailing loop-frame dword (always present for YM3b, optional for YM3!).
func parseLegacy(format Format, data []byte) (*YMFile, error) {
	payload := data[4:]
	width := format.registerWidth()

	var loopFrame uint32
	switch len(payload) % width {
	case 0:
	case 4:
		loopFrame = binary.BigEndian.Uint32(payload[len(payload)-4:])
		payload = payload[:len(payload)-4]
	default:
		return nil, fmt.Errorf("%w: payload of %d bytes is not a multiple of %d registers",
			ErrTruncatedFrameData, len(payload), width)
	}

	frameCount := len(payload) / width
	if frameCount == 0 {
		return nil, fmt.Errorf("%w: no frame data", ErrTruncatedFrameData)
	}

	ym := &YMFile{
		Version:     format,
		FrameRate:   YM_DEFAULT_FRAME_RATE,
		ClockHz:     YM_CLOCK_ATARI_ST,
		Interleaved: true,
	}
	ym.clampLoopFrame(loopFrame, uint32(frameCount))

	frames, envWrites, err := reconstructFrames(payload, frameCount, width, true)
	if err != nil {
		return nil, err
	}
	ym.Frames = frames
	ym.envWrites = envWrites

	if ymPsgDebugEnabled {
		fmt.Printf("YM debug: version=%s frames=%d loop=%d\n", format, frameCount, ym.LoopFrame)
	}
	return ym, nil
}

// parseModern handles YM4!/YM5!/YM6!: check string, big-endian header
// block, digi-drum table, null-terminated metadata, then frame data.
func parseModern(format Format, data []byte) (*YMFile, error) {
	r := &ymReader{data: data, off: 4}

	check, err := r.take(len(ymCheckString))
	if err != nil {
		return nil, err
	}
	if string(check) != ymCheckString {
		return nil, fmt.Errorf("%w: bad check string %q at offset 4", ErrUnrecognizedFormat, check)
	}

	nbFrames, err := r.u32()
	if err != nil {
		return nil, err
	}
	songAttrs, err := r.u32()
	if err != nil {
		return nil, err
	}
	numDrums, err := r.u16()
	if err != nil {
		return nil, err
	}

	ym := &YMFile{
		Version:     format,
		FrameRate:   YM_DEFAULT_FRAME_RATE,
		ClockHz:     YM_CLOCK_ATARI_ST,
		Interleaved: songAttrs&attrInterleaved != 0,
		DrumsSigned: songAttrs&attrDrumsSigned != 0,
		Drums4Bit:   songAttrs&attrDrums4Bit != 0,
	}

	if format == FormatYM4 {
		loopFrame, err := r.u32()
		if err != nil {
			return nil, err
		}
		ym.clampLoopFrame(loopFrame, nbFrames)
	} else {
		clock, err := r.u32()
		if err != nil {
			return nil, err
		}
		frameRate, err := r.u16()
		if err != nil {
			return nil, err
		}
		loopFrame, err := r.u32()
		if err != nil {
			return nil, err
		}
		addData, err := r.u16()
		if err != nil {
			return nil, err
		}
		// Reserved extra header data; no known file uses it.
		if _, err := r.take(int(addData)); err != nil {
			return nil, err
		}

		if clock == 0 {
			ym.warnf("chip clock field is 0, using %d Hz", YM_CLOCK_ATARI_ST)
		} else {
			ym.ClockHz = clock
		}
		if frameRate == 0 {
			ym.warnf("frame rate field is 0, using %d Hz", YM_DEFAULT_FRAME_RATE)
		} else {
			ym.FrameRate = frameRate
		}
		ym.clampLoopFrame(loopFrame, nbFrames)
	}

	if err := parseDigiDrums(ym, r, numDrums); err != nil {
		return nil, err
	}

	ym.Title = r.cstr()
	ym.Author = r.cstr()
	ym.Comments = r.cstr()

	if nbFrames == 0 {
		return nil, fmt.Errorf("%w: header declares 0 frames", ErrTruncatedFrameData)
	}

	frames, envWrites, err := reconstructFrames(r.rest(), int(nbFrames), YM_REG_COUNT, ym.Interleaved)
	if err != nil {
		return nil, err
	}
	ym.Frames = frames
	ym.envWrites = envWrites

	trailing := len(r.rest()) - int(nbFrames)*YM_REG_COUNT
	if trailing >= 4 {
		tag := r.rest()[int(nbFrames)*YM_REG_COUNT:][:4]
		if string(tag) != "End!" {
			ym.warnf("trailing bytes after frame data are not an End! tag")
		}
	}

	if ymPsgDebugEnabled {
		fmt.Printf("YM debug: version=%s frames=%d attrs=0x%X drums=%d clock=%d rate=%d loop=%d title=%q author=%q\n",
			format, nbFrames, songAttrs, numDrums, ym.ClockHz, ym.FrameRate, ym.LoopFrame, ym.Title, ym.Author)
	}
	return ym, nil
}

// parseDigiDrums consumes the per-drum size+data pairs and normalizes the
// sample bytes to 4-bit the way the format attributes prescribe.
func parseDigiDrums(ym *YMFile, r *ymReader, numDrums uint16) error {
	if numDrums == 0 {
		return nil
	}
	if numDrums > YM_MAX_DIGIDRUMS {
		return fmt.Errorf("%w: %d samples declared, limit is %d", ErrTruncatedDigiDrum, numDrums, YM_MAX_DIGIDRUMS)
	}
	ym.DigiDrums = make([][]uint8, 0, numDrums)
	for i := 0; i < int(numDrums); i++ {
		size, err := r.u32()
		if err != nil {
			return fmt.Errorf("%w: size of sample %d: %v", ErrTruncatedDigiDrum, i, err)
		}
		raw, err := r.take(int(size))
		if err != nil {
			return fmt.Errorf("%w: sample %d declares %d bytes at offset %d, %d remain",
				ErrTruncatedDigiDrum, i, size, r.off, len(r.data)-r.off)
		}
		sample := make([]uint8, len(raw))
		if ym.Drums4Bit {
			copy(sample, raw)
		} else if ym.DrumsSigned {
			for j, b := range raw {
				sample[j] = (b + 0x80) >> 4
			}
		} else {
			for j, b := range raw {
				sample[j] = b >> 4
			}
		}
		ym.DigiDrums = append(ym.DigiDrums, sample)
	}
	return nil
}

// clampLoopFrame records the loop point, flagging and clamping an index
// beyond the frame count instead of rejecting the file.
func (y *YMFile) clampLoopFrame(loopFrame, frameCount uint32) {
	if loopFrame > frameCount {
		y.warnf("loop frame %d beyond frame count %d, clamped", loopFrame, frameCount)
		loopFrame = frameCount
	}
	y.LoopFrame = loopFrame
}

// ymReader threads a byte offset through the header fields so every fatal
// error can report where the buffer ran out.
type ymReader struct {
	data []byte
	off  int
}

func (r *ymReader) u32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, fmt.Errorf("%w: need 4 bytes at offset %d, have %d", ErrTruncatedHeader, r.off, len(r.data)-r.off)
	}
	val := binary.BigEndian.Uint32(r.data[r.off : r.off+4])
	r.off += 4
	return val, nil
}

func (r *ymReader) u16() (uint16, error) {
	if r.off+2 > len(r.data) {
		return 0, fmt.Errorf("%w: need 2 bytes at offset %d, have %d", ErrTruncatedHeader, r.off, len(r.data)-r.off)
	}
	val := binary.BigEndian.Uint16(r.data[r.off : r.off+2])
	r.off += 2
	return val, nil
}

func (r *ymReader) take(n int) ([]byte, error) {
	if r.off+n > len(r.data) {
		return nil, fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrTruncatedHeader, n, r.off, len(r.data)-r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

// cstr reads a null-terminated string, stopping at the buffer end. Metadata
// strings are best-effort: a missing terminator is not fatal.
func (r *ymReader) cstr() string {
	s, off := parseNullTerminatedString(r.data, r.off)
	r.off = off
	return s
}

func (r *ymReader) rest() []byte {
	return r.data[r.off:]
}
