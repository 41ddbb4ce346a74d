package domain

import (
	"errors"
	"fmt"
)

// Question is a single entry in a message's question section.
type Question struct {
	Name  string
	Type  RRType
	Class RRClass
}

// NewQuestion builds a Question and validates it before returning.
func NewQuestion(name string, t RRType, c RRClass) (Question, error) {
	q := Question{Name: name, Type: t, Class: c}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate reports whether the question is well formed.
func (q Question) Validate() error {
	if q.Name == "" {
		return errors.New("query name must not be empty")
	}
	if !q.Type.IsValid() {
		return fmt.Errorf("unsupported RRType: %d", uint16(q.Type))
	}
	if !q.Class.IsValid() {
		return fmt.Errorf("unsupported RRClass: %d", uint16(q.Class))
	}
	return nil
}

// CacheKey returns the answer cache key for this question.
func (q Question) CacheKey() string {
	return GenerateCacheKey(q.Name, q.Type, q.Class)
}
