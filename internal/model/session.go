package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Redis hash field names for a game session record.
const (
	FieldSessionID         = "session_id"
	FieldWordOfDay         = "word_of_day"
	FieldStartTime         = "start_time"
	FieldCurrentQuestion   = "current_question"
	FieldPreviousQuestions = "previous_questions"
	FieldPreviousAnswers   = "previous_answers"
	FieldGuessesMade       = "guesses_made"
	FieldIsComplete        = "is_complete"
	FieldFinalGuess        = "final_guess"
)

// GameSession is one in-progress or completed game. The record is
// owned by the store; services read, modify and write it back within
// a single operation and never cache it across calls.
type GameSession struct {
	SessionID         string
	WordOfDay         string
	StartTime         time.Time
	CurrentQuestion   int
	PreviousQuestions []string
	PreviousAnswers   map[string]Answer
	GuessesMade       []string
	IsComplete        bool
	FinalGuess        string
}

// QuestionKey formats the answers-map key for the question at the
// given 0-based ordinal.
func QuestionKey(index int) string {
	return fmt.Sprintf("question_%d", index)
}

// RedisFields serializes the full session as a flat hash for create.
func (s *GameSession) RedisFields() (map[string]any, error) {
	questions, err := json.Marshal(s.PreviousQuestions)
	if err != nil {
		return nil, fmt.Errorf("marshal previous questions: %w", err)
	}
	answers, err := json.Marshal(s.PreviousAnswers)
	if err != nil {
		return nil, fmt.Errorf("marshal previous answers: %w", err)
	}
	guesses, err := json.Marshal(s.GuessesMade)
	if err != nil {
		return nil, fmt.Errorf("marshal guesses: %w", err)
	}

	fields := map[string]any{
		FieldSessionID:         s.SessionID,
		FieldWordOfDay:         s.WordOfDay,
		FieldStartTime:         s.StartTime.Format(time.RFC3339),
		FieldCurrentQuestion:   strconv.Itoa(s.CurrentQuestion),
		FieldPreviousQuestions: string(questions),
		FieldPreviousAnswers:   string(answers),
		FieldGuessesMade:       string(guesses),
		FieldIsComplete:        strconv.FormatBool(s.IsComplete),
	}
	if s.FinalGuess != "" {
		fields[FieldFinalGuess] = s.FinalGuess
	}
	return fields, nil
}

// SessionFromFields rebuilds a session from a Redis hash. Answers are
// validated against the closed Answer variants so an invalid token in
// storage surfaces as a fault rather than a free-form string.
func SessionFromFields(fields map[string]string) (*GameSession, error) {
	s := &GameSession{
		SessionID:       fields[FieldSessionID],
		WordOfDay:       fields[FieldWordOfDay],
		FinalGuess:      fields[FieldFinalGuess],
		PreviousAnswers: make(map[string]Answer),
	}
	if s.SessionID == "" {
		return nil, fmt.Errorf("session record missing %s", FieldSessionID)
	}

	startTime, err := time.Parse(time.RFC3339, fields[FieldStartTime])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", FieldStartTime, err)
	}
	s.StartTime = startTime

	s.CurrentQuestion, err = strconv.Atoi(fields[FieldCurrentQuestion])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", FieldCurrentQuestion, err)
	}
	s.IsComplete, err = strconv.ParseBool(fields[FieldIsComplete])
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", FieldIsComplete, err)
	}

	if err := json.Unmarshal([]byte(fields[FieldPreviousQuestions]), &s.PreviousQuestions); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FieldPreviousQuestions, err)
	}
	if err := json.Unmarshal([]byte(fields[FieldGuessesMade]), &s.GuessesMade); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FieldGuessesMade, err)
	}

	var rawAnswers map[string]string
	if err := json.Unmarshal([]byte(fields[FieldPreviousAnswers]), &rawAnswers); err != nil {
		return nil, fmt.Errorf("parse %s: %w", FieldPreviousAnswers, err)
	}
	for key, raw := range rawAnswers {
		answer, err := ParseAnswer(raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s[%s]: %w", FieldPreviousAnswers, key, err)
		}
		s.PreviousAnswers[key] = answer
	}

	return s, nil
}
