package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQuery(t *testing.T) {
	q, err := NewQuestion("example.com", RRTypeA, RRClassIN)
	require.NoError(t, err)

	msg := NewQuery(1234, q)
	assert.Equal(t, uint16(1234), msg.Header.ID)
	assert.True(t, msg.Header.RD)
	assert.Equal(t, uint16(1), msg.Header.QDCount)
	assert.False(t, msg.HasAnswers())
}

func TestNewErrorResponse(t *testing.T) {
	q, err := NewQuestion("example.com", RRTypeA, RRClassIN)
	require.NoError(t, err)

	msg := NewErrorResponse(1234, q, NXDOMAIN)
	assert.True(t, msg.Header.QR)
	assert.True(t, msg.IsError())
	assert.Equal(t, NXDOMAIN, msg.Header.RCode)
}

func TestMessageValidate(t *testing.T) {
	q, err := NewQuestion("example.com", RRTypeA, RRClassIN)
	require.NoError(t, err)
	rr, err := NewResourceRecord("example.com", RRTypeA, RRClassIN, 60, []byte{1, 2, 3, 4}, "1.2.3.4")
	require.NoError(t, err)

	msg := Message{Header: Header{QDCount: 1}, Questions: []Question{q}, Answers: []ResourceRecord{rr}}
	assert.NoError(t, msg.Validate())
}
