package domain

// Message is a fully decoded DNS message: a question paired with the three
// resource record sections. Both queries and responses use this type; a
// query simply carries an empty Answers/Authorities/Additionals.
type Message struct {
	Header      Header
	Questions   []Question
	Answers     []ResourceRecord
	Authorities []ResourceRecord
	Additionals []ResourceRecord
}

// NewQuery builds a single-question query message with RD set, matching
// what a recursive resolver sends upstream and what the front end expects
// to receive from a client.
func NewQuery(id uint16, q Question) Message {
	return Message{
		Header: Header{
			ID:      id,
			RD:      true,
			QDCount: 1,
		},
		Questions: []Question{q},
	}
}

// NewErrorResponse builds a response carrying no records beyond the
// original question, used for SERVFAIL/NXDOMAIN/FORMERR replies where the
// resolver has nothing else to say.
func NewErrorResponse(id uint16, q Question, rcode RCode) Message {
	return Message{
		Header: Header{
			ID:      id,
			QR:      true,
			RA:      true,
			RCode:   rcode,
			QDCount: 1,
		},
		Questions: []Question{q},
	}
}

// IsError reports whether the message's response code indicates failure.
func (m Message) IsError() bool {
	return m.Header.RCode != NOERROR
}

// HasAnswers reports whether the message carries at least one answer record.
func (m Message) HasAnswers() bool {
	return len(m.Answers) > 0
}

// Validate checks the question and every record across all three sections.
func (m Message) Validate() error {
	for _, q := range m.Questions {
		if err := q.Validate(); err != nil {
			return err
		}
	}
	for _, section := range [][]ResourceRecord{m.Answers, m.Authorities, m.Additionals} {
		for _, rr := range section {
			if err := rr.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}
