//go:build !linux || headless

// lha_fallback.go - Stub LHA backend for platforms without liblhasa.
// Callers can still decode wrapped files by injecting their own
// Decompressor through DecodeOptions.

package ymstream

import "fmt"

func DecompressLHAFile(path string) ([]byte, error) {
	return nil, fmt.Errorf("LHA decompression requires Linux with liblhasa installed")
}

func DecompressLHA(data []byte) ([]byte, error) {
	return nil, fmt.Errorf("LHA decompression requires Linux with liblhasa installed")
}
