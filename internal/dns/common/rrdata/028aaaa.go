package rrdata

import (
	"encoding/hex"
	"fmt"
	"net"
	"strings"
)

// encodeAAAAData encodes an AAAA record string into its binary representation.
// Accepts both the canonical net.ParseIP form and the byte-level colon-joined
// form decodeAAAAData emits, so the codec round-trips its own output.
func encodeAAAAData(data string) ([]byte, error) {
	if b, err := decodeByteColonHex(data); err == nil {
		return b, nil
	}
	ip := net.ParseIP(data)
	if ip == nil || !isIPv6(ip) {
		return nil, fmt.Errorf("invalid AAAA record IP: %s", data)
	}
	return ip.To16(), nil
}

// decodeByteColonHex parses the 16-byte-pair colon form back into raw bytes,
// rejecting anything that isn't exactly that shape.
func decodeByteColonHex(data string) ([]byte, error) {
	parts := strings.Split(data, ":")
	if len(parts) != 16 {
		return nil, fmt.Errorf("not byte-colon form")
	}
	out := make([]byte, 16)
	for i, p := range parts {
		b, err := hex.DecodeString(p)
		if err != nil || len(b) != 1 {
			return nil, fmt.Errorf("not byte-colon form")
		}
		out[i] = b[0]
	}
	return out, nil
}

// decodeAAAAData decodes an AAAA record's 16-byte RDATA into text form.
// Presentation is a byte-level colon join (16 hex pairs) rather than the
// canonical 16-bit-group form net.IP.String produces; this is a deliberate,
// non-canonical choice carried over unchanged. Parsing still accepts the
// canonical form so a future switch in the encoder stays backward compatible.
func decodeAAAAData(b []byte) (string, error) {
	if len(b) != 16 {
		return "", fmt.Errorf("invalid AAAA record length: %d", len(b))
	}
	if !isIPv6(net.IP(b)) {
		return "", fmt.Errorf("invalid AAAA record address: not IPv6")
	}
	parts := make([]string, 16)
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, ":"), nil
}
