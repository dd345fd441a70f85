package models

import (
	"encoding/json"
	"time"
)

// TriviaResponse is the payload returned by the Open Trivia DB API.
// ResponseCode 0 means success; any other value means there are no results.
// Results stay raw so one malformed item cannot fail the whole payload.
type TriviaResponse struct {
	ResponseCode int               `json:"response_code"`
	Results      []json.RawMessage `json:"results"`
}

// TriviaItem is one question as delivered upstream, HTML-entity encoded.
// Pointer fields distinguish a missing key from an empty value.
type TriviaItem struct {
	Type             string   `json:"type,omitempty"`
	Category         string   `json:"category"`
	Difficulty       string   `json:"difficulty"`
	Question         *string  `json:"question"`
	CorrectAnswer    *string  `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

// TriviaRecord is the normalized document stored for one question.
type TriviaRecord struct {
	Category           string    `bson:"category" json:"category"`
	Difficulty         string    `bson:"difficulty" json:"difficulty"`
	Question           string    `bson:"question" json:"question"`
	CorrectAnswer      string    `bson:"correct_answer" json:"correct_answer"`
	AllAnswers         []string  `bson:"all_answers" json:"all_answers"`
	IngestionTimestamp time.Time `bson:"ingestion_timestamp" json:"ingestion_timestamp"`
}

func (TriviaRecord) SQLColumns() []Column {
	return []Column{
		{Name: "category", Type: "NVARCHAR(256) NOT NULL"},
		{Name: "difficulty", Type: "NVARCHAR(32) NOT NULL"},
		{Name: "question", Type: "NVARCHAR(MAX) NOT NULL"},
		{Name: "correct_answer", Type: "NVARCHAR(MAX) NOT NULL"},
		{Name: "all_answers", Type: "NVARCHAR(MAX) NOT NULL"},
		{Name: "ingestion_timestamp", Type: "DATETIME2 NOT NULL"},
	}
}

// SQLValues stores all_answers as a JSON array string.
func (r TriviaRecord) SQLValues() []interface{} {
	answers, err := json.Marshal(r.AllAnswers)
	if err != nil {
		answers = []byte("[]")
	}
	return []interface{}{
		r.Category,
		r.Difficulty,
		r.Question,
		r.CorrectAnswer,
		string(answers),
		r.IngestionTimestamp,
	}
}
