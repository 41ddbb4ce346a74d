package wire

import (
	"bytes"
	"encoding/binary"
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/common/log"
	"github.com/rrwalk/rrwalk/internal/dns/common/rrdata"
	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// udpCodec implements MessageCodec for plain DNS-over-UDP messages.
type udpCodec struct {
	logger log.Logger
}

// NewUDPCodec creates a MessageCodec backed by the given logger.
func NewUDPCodec(logger log.Logger) MessageCodec {
	return &udpCodec{logger: logger}
}

// Encode serializes msg into wire format, compressing names against a
// table seeded by the question and carried across every section.
func (c *udpCodec) Encode(msg domain.Message, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	h := msg.Header
	h.QDCount = uint16(len(msg.Questions))
	h.ANCount = uint16(len(msg.Answers))
	h.NSCount = uint16(len(msg.Authorities))
	h.ARCount = uint16(len(msg.Additionals))
	encodeHeader(&buf, h)

	table := newCompressionTable()

	for _, q := range msg.Questions {
		if err := encodeName(&buf, q.Name, table); err != nil {
			return nil, err
		}
		_ = binary.Write(&buf, binary.BigEndian, uint16(q.Type))
		_ = binary.Write(&buf, binary.BigEndian, uint16(q.Class))
	}

	for _, section := range [][]domain.ResourceRecord{msg.Answers, msg.Authorities, msg.Additionals} {
		for _, rr := range section {
			if err := c.encodeRecord(&buf, rr, table, now); err != nil {
				return nil, err
			}
		}
	}

	c.logger.Debug(map[string]any{
		"id":   h.ID,
		"size": buf.Len(),
	}, "encoded dns message")

	return buf.Bytes(), nil
}

func (c *udpCodec) encodeRecord(buf *bytes.Buffer, rr domain.ResourceRecord, table compressionTable, now time.Time) error {
	if err := encodeName(buf, rr.Name, table); err != nil {
		return err
	}
	_ = binary.Write(buf, binary.BigEndian, uint16(rr.Type))
	_ = binary.Write(buf, binary.BigEndian, uint16(rr.Class))
	_ = binary.Write(buf, binary.BigEndian, rr.TTL(now))

	data := rr.Data
	if len(data) > 65535 {
		return domain.ErrFormat
	}
	_ = binary.Write(buf, binary.BigEndian, uint16(len(data)))
	buf.Write(data)
	return nil
}

// Decode parses data into a Message, resolving the compression pointers of
// owner names, question names and NS/CNAME targets, and the rdata of each of
// the six semantically-decoded types. The mname and rname inside SOA rdata
// are read from the rdata bytes alone, so a compressed one yields no text.
func (c *udpCodec) Decode(data []byte, now time.Time) (domain.Message, error) {
	h, err := decodeHeader(data)
	if err != nil {
		return domain.Message{}, err
	}

	offset := headerLength
	questions := make([]domain.Question, 0, h.QDCount)
	for i := 0; i < int(h.QDCount); i++ {
		name, next, err := decodeName(data, offset)
		if err != nil {
			return domain.Message{}, err
		}
		offset = next
		if offset+4 > len(data) {
			return domain.Message{}, domain.ErrFormat
		}
		qtype := domain.RRType(binary.BigEndian.Uint16(data[offset : offset+2]))
		qclass := domain.RRClass(binary.BigEndian.Uint16(data[offset+2 : offset+4]))
		offset += 4
		q, err := domain.NewQuestion(name, qtype, qclass)
		if err != nil {
			return domain.Message{}, domain.ErrFormat
		}
		questions = append(questions, q)
	}

	decodeSection := func(count uint16) ([]domain.ResourceRecord, error) {
		records := make([]domain.ResourceRecord, 0, count)
		for i := 0; i < int(count); i++ {
			rr, next, err := c.decodeRecord(data, offset, now)
			if err != nil {
				return nil, err
			}
			offset = next
			records = append(records, rr)
		}
		return records, nil
	}

	answers, err := decodeSection(h.ANCount)
	if err != nil {
		return domain.Message{}, err
	}
	authorities, err := decodeSection(h.NSCount)
	if err != nil {
		return domain.Message{}, err
	}
	additionals, err := decodeSection(h.ARCount)
	if err != nil {
		return domain.Message{}, err
	}

	return domain.Message{
		Header:      h,
		Questions:   questions,
		Answers:     answers,
		Authorities: authorities,
		Additionals: additionals,
	}, nil
}

func (c *udpCodec) decodeRecord(data []byte, offset int, now time.Time) (domain.ResourceRecord, int, error) {
	name, next, err := decodeName(data, offset)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	offset = next
	if offset+10 > len(data) {
		return domain.ResourceRecord{}, 0, domain.ErrFormat
	}
	rrtype := domain.RRType(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	rrclass := domain.RRClass(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	ttl := binary.BigEndian.Uint32(data[offset : offset+4])
	offset += 4
	rdLen := int(binary.BigEndian.Uint16(data[offset : offset+2]))
	offset += 2
	if offset+rdLen > len(data) {
		return domain.ResourceRecord{}, 0, domain.ErrFormat
	}
	rdata := make([]byte, rdLen)
	copy(rdata, data[offset:offset+rdLen])
	offset += rdLen

	text, err := rrdata.Decode(rrtype, rdata)
	if rrtype == domain.RRTypeNS || rrtype == domain.RRTypeCNAME {
		// NS and CNAME targets may be compressed against the whole message,
		// so the name is read from data rather than the detached rdata copy.
		text, _, err = decodeName(data, offset-rdLen)
	}
	if err != nil {
		c.logger.Debug(map[string]any{
			"type":  rrtype.String(),
			"error": err.Error(),
		}, "rdata decode produced no text form, keeping raw bytes only")
		text = ""
	}

	rr, err := domain.NewResourceRecord(name, rrtype, rrclass, ttl, rdata, text)
	if err != nil {
		return domain.ResourceRecord{}, 0, domain.ErrFormat
	}
	return rr, offset, nil
}

var _ MessageCodec = &udpCodec{}
