package device

import "strings"

// ParseHeaders splits an HTTP-header-style text block into a flat map.
//
// Lines are "Key: Value" separated by CRLF (bare LF is accepted too).
// Keys are case-sensitive. Lines without a colon, such as the status line,
// are skipped, as is any NUL padding from a fixed-size receive buffer.
func ParseHeaders(data []byte) map[string]string {
	text := strings.TrimRight(string(data), "\x00")

	headers := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}

		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}

	return headers
}

// ParseAnnouncement is ParseHeaders followed by Parse
func ParseAnnouncement(data []byte) (*Descriptor, bool) {
	return Parse(ParseHeaders(data))
}
