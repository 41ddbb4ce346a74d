package wire

import (
	"bytes"
	"encoding/binary"

	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

const headerLength = 12

func encodeHeader(buf *bytes.Buffer, h domain.Header) {
	var flags uint16
	if h.QR {
		flags |= 1 << 15
	}
	flags |= uint16(h.Opcode&0x0F) << 11
	if h.AA {
		flags |= 1 << 10
	}
	if h.TC {
		flags |= 1 << 9
	}
	if h.RD {
		flags |= 1 << 8
	}
	if h.RA {
		flags |= 1 << 7
	}
	flags |= uint16(h.Z&0x07) << 4
	flags |= uint16(h.RCode) & 0x0F

	_ = binary.Write(buf, binary.BigEndian, h.ID)
	_ = binary.Write(buf, binary.BigEndian, flags)
	_ = binary.Write(buf, binary.BigEndian, h.QDCount)
	_ = binary.Write(buf, binary.BigEndian, h.ANCount)
	_ = binary.Write(buf, binary.BigEndian, h.NSCount)
	_ = binary.Write(buf, binary.BigEndian, h.ARCount)
}

func decodeHeader(data []byte) (domain.Header, error) {
	if len(data) < headerLength {
		return domain.Header{}, domain.ErrFormat
	}
	flags := binary.BigEndian.Uint16(data[2:4])
	h := domain.Header{
		ID:      binary.BigEndian.Uint16(data[0:2]),
		QR:      flags&(1<<15) != 0,
		Opcode:  uint8(flags>>11) & 0x0F,
		AA:      flags&(1<<10) != 0,
		TC:      flags&(1<<9) != 0,
		RD:      flags&(1<<8) != 0,
		RA:      flags&(1<<7) != 0,
		Z:       uint8(flags>>4) & 0x07,
		RCode:   domain.RCode(flags & 0x0F),
		QDCount: binary.BigEndian.Uint16(data[4:6]),
		ANCount: binary.BigEndian.Uint16(data[6:8]),
		NSCount: binary.BigEndian.Uint16(data[8:10]),
		ARCount: binary.BigEndian.Uint16(data[10:12]),
	}
	if h.QDCount == 0 {
		return domain.Header{}, domain.ErrFormat
	}
	return h, nil
}
