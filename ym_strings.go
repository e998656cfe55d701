// ym_strings.go - Shared helpers for the metadata string fields.

package ymstream

// parseNullTerminatedString extracts a string up to the first null byte.
// Returns the string and the new offset (after the null terminator).
// The title/author/comment fields are stored this way in YM4 and later.
func parseNullTerminatedString(data []byte, offset int) (string, int) {
	start := offset
	for offset < len(data) && data[offset] != 0 {
		offset++
	}
	end := offset
	if offset < len(data) {
		offset++ // Skip null terminator
	}
	if end <= start {
		return "", offset
	}
	return string(data[start:end]), offset
}
