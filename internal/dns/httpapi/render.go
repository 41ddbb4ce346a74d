package httpapi

import (
	"time"

	"github.com/rrwalk/rrwalk/internal/dns/domain"
)

// renderedMessage is the JSON shape the /resolve endpoint returns: header
// fields, the question, and each section's records rendered with both a
// human-readable rdata string and the raw wire bytes.
type renderedMessage struct {
	Header      renderedHeader     `json:"header"`
	Questions   []renderedQuestion `json:"questions"`
	Answers     []renderedRecord   `json:"answers"`
	Authorities []renderedRecord   `json:"authorities"`
	Additionals []renderedRecord   `json:"additionals"`
}

type renderedHeader struct {
	ID      uint16 `json:"id"`
	QR      bool   `json:"qr"`
	Opcode  uint8  `json:"opcode"`
	AA      bool   `json:"aa"`
	TC      bool   `json:"tc"`
	RD      bool   `json:"rd"`
	RA      bool   `json:"ra"`
	RCode   string `json:"rcode"`
	ANCount uint16 `json:"ancount"`
	NSCount uint16 `json:"nscount"`
	ARCount uint16 `json:"arcount"`
}

type renderedQuestion struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Class string `json:"class"`
}

type renderedRecord struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Class string `json:"class"`
	TTL   uint32 `json:"ttl"`
	Text  string `json:"text"`
	Data  []byte `json:"data"`
}

func renderMessage(m domain.Message) renderedMessage {
	now := time.Now()
	return renderedMessage{
		Header: renderedHeader{
			ID:      m.Header.ID,
			QR:      m.Header.QR,
			Opcode:  m.Header.Opcode,
			AA:      m.Header.AA,
			TC:      m.Header.TC,
			RD:      m.Header.RD,
			RA:      m.Header.RA,
			RCode:   m.Header.RCode.String(),
			ANCount: m.Header.ANCount,
			NSCount: m.Header.NSCount,
			ARCount: m.Header.ARCount,
		},
		Questions:   renderQuestions(m.Questions),
		Answers:     renderRecords(m.Answers, now),
		Authorities: renderRecords(m.Authorities, now),
		Additionals: renderRecords(m.Additionals, now),
	}
}

func renderQuestions(questions []domain.Question) []renderedQuestion {
	out := make([]renderedQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, renderedQuestion{
			Name:  q.Name,
			Type:  q.Type.String(),
			Class: q.Class.String(),
		})
	}
	return out
}

func renderRecords(records []domain.ResourceRecord, now time.Time) []renderedRecord {
	out := make([]renderedRecord, 0, len(records))
	for _, rr := range records {
		out = append(out, renderedRecord{
			Name:  rr.Name,
			Type:  rr.Type.String(),
			Class: rr.Class.String(),
			TTL:   rr.TTL(now),
			Text:  rr.Text,
			Data:  rr.Data,
		})
	}
	return out
}
