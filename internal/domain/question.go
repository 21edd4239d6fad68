package domain

import (
	"encoding/json"
	"strings"
)

// Question is a practice question. Only questions flagged IsFlashcardQuestion
// are eligible for the daily flashcard sample.
type Question struct {
	ID                  int64           `json:"id"`
	Content             json.RawMessage `json:"content"`
	IsFlashcardQuestion bool            `json:"is_flashcard_question"`
}

// AnswerOption is one selectable answer of a question.
// Exactly one option per question is expected to be correct.
type AnswerOption struct {
	ID         int64           `json:"id"`
	QuestionID int64           `json:"question_id"`
	Code       string          `json:"code"`
	Content    json.RawMessage `json:"content"`
	IsCorrect  bool            `json:"is_correct"`
}

// CorrectOption returns the first option marked correct.
func CorrectOption(options []AnswerOption) (AnswerOption, bool) {
	for _, o := range options {
		if o.IsCorrect {
			return o, true
		}
	}
	return AnswerOption{}, false
}

// FindOption returns the option with the given ID.
func FindOption(options []AnswerOption, id int64) (AnswerOption, bool) {
	for _, o := range options {
		if o.ID == id {
			return o, true
		}
	}
	return AnswerOption{}, false
}

// CorrectAnswerIndex maps question ID to its correct option ID.
func CorrectAnswerIndex(options []AnswerOption) map[int64]int64 {
	idx := make(map[int64]int64)
	for _, o := range options {
		if o.IsCorrect {
			if _, seen := idx[o.QuestionID]; !seen {
				idx[o.QuestionID] = o.ID
			}
		}
	}
	return idx
}

type richTextNode struct {
	Type    string         `json:"type"`
	Text    string         `json:"text,omitempty"`
	Content []richTextNode `json:"content,omitempty"`
}

// NormalizeContent returns stored question or answer content as a rich-text
// document. A JSON object is passed through unchanged. Anything else is legacy
// plain text and is wrapped in a document with one paragraph per line.
func NormalizeContent(raw string) json.RawMessage {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}

	doc := richTextNode{Type: "doc", Content: []richTextNode{}}
	for _, line := range strings.Split(raw, "\n") {
		p := richTextNode{Type: "paragraph"}
		if line != "" {
			p.Content = []richTextNode{{Type: "text", Text: line}}
		}
		doc.Content = append(doc.Content, p)
	}

	// Marshalling a tree of strings cannot fail.
	out, _ := json.Marshal(doc)
	return out
}
