package models

import (
	"sort"
	"time"
)

// Transcription is a processed recording: transcript text, generated summary
// and, once the quiz was taken, its result.
type Transcription struct {
	ID             string      `json:"_id"`
	Title          string      `json:"title"`
	Type           string      `json:"type"`
	OriginalSource string      `json:"originalSource,omitempty"`
	Duration       float64     `json:"duration"`
	Transcription  string      `json:"transcription"`
	Summary        string      `json:"summary"`
	ExternalID     string      `json:"externalId,omitempty"`
	UserID         string      `json:"user"`
	CreatedAt      time.Time   `json:"createdAt"`
	QuizResults    *QuizResult `json:"quizResults,omitempty"`
}

// SortByNewest orders transcriptions by creation time, most recent first.
func SortByNewest(items []Transcription) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
}

// ChatEntry is one question/answer exchange about a transcription.
type ChatEntry struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// QuizQuestion is a multiple-choice question keyed by option letter.
type QuizQuestion struct {
	Question string            `json:"mcq"`
	Options  map[string]string `json:"options"`
}

// OptionKeys returns the option keys in display order.
func (q QuizQuestion) OptionKeys() []string {
	keys := make([]string, 0, len(q.Options))
	for k := range q.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type Quiz struct {
	Questions []QuizQuestion `json:"mcqs"`
}

type QuizAnswer struct {
	Selected string `json:"selected"`
}

type QuizResult struct {
	CorrectCount int     `json:"correctCount"`
	WrongCount   int     `json:"wrongCount"`
	Percentage   float64 `json:"percentage"`
}

// MediaKind selects the upload endpoint for a local recording.
type MediaKind string

const (
	MediaAudio MediaKind = "audio"
	MediaVideo MediaKind = "video"
)
