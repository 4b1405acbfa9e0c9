package runner

import (
	"fmt"
	"strings"
)

// DecodePermissive renders captured output as ASCII text. Bytes outside the
// ASCII range are written as \xNN escapes so undecodable output never fails.
func DecodePermissive(b []byte) string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		if c < 0x80 {
			sb.WriteByte(c)
			continue
		}
		fmt.Fprintf(&sb, `\x%02x`, c)
	}
	return sb.String()
}
