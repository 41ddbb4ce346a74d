package rrdata

// encodeTXTData encodes a TXT record's rdata as raw bytes. This system does
// not frame TXT rdata into RFC 1035 length-prefixed character-strings; the
// text is carried verbatim.
func encodeTXTData(data string) ([]byte, error) {
	return []byte(data), nil
}

// decodeTXTData decodes a TXT record's rdata as raw bytes, the mirror of
// encodeTXTData.
func decodeTXTData(b []byte) (string, error) {
	return string(b), nil
}
