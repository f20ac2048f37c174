package model

import "fmt"

// Answer is the oracle's verdict on a yes/no question.
type Answer string

const (
	AnswerYes     Answer = "yes"
	AnswerNo      Answer = "no"
	AnswerUnknown Answer = "unknown"
)

// ParseAnswer validates a persisted answer token. Only the three
// closed variants are allowed to round-trip through storage.
func ParseAnswer(s string) (Answer, error) {
	switch Answer(s) {
	case AnswerYes, AnswerNo, AnswerUnknown:
		return Answer(s), nil
	}
	return "", fmt.Errorf("invalid answer value: %q", s)
}
