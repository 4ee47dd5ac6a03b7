// Package export renders questions for the command line in JSON, CSV and
// plain text.
package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sloppy/pastyears/internal/api"
)

// QuestionInfo is the exported form of a question.
type QuestionInfo struct {
	ID            string            `json:"id"`
	Exam          string            `json:"exam"`
	Subject       string            `json:"subject"`
	Year          int               `json:"year"`
	MainQuestion  string            `json:"main_question"`
	Options       []string          `json:"options,omitempty"`
	Continuation  string            `json:"continuation,omitempty"`
	Answers       map[string]string `json:"answers"`
	CorrectAnswer string            `json:"correct_answer"`
}

// QuestionPage is a page of questions together with its position.
type QuestionPage struct {
	Query      string         `json:"query"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
	Total      int            `json:"total"`
	Questions  []QuestionInfo `json:"questions"`
}

// ExportQuestionsJSON writes one page of questions as indented JSON. page is
// 1-based.
func ExportQuestionsJSON(w io.Writer, query string, page, totalPages, total int, questions []api.Question) error {
	payload := QuestionPage{
		Query:      query,
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		Questions:  toQuestionInfos(questions),
	}
	return encode(w, payload)
}

// ExportQuestionJSON writes a single question as indented JSON.
func ExportQuestionJSON(w io.Writer, q api.Question) error {
	return encode(w, toQuestionInfo(q))
}

// ExportMetadataJSON writes the filter facets as indented JSON.
func ExportMetadataJSON(w io.Writer, md api.Metadata) error {
	return encode(w, md)
}

func encode(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(payload); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

func toQuestionInfos(questions []api.Question) []QuestionInfo {
	out := make([]QuestionInfo, 0, len(questions))
	for _, q := range questions {
		out = append(out, toQuestionInfo(q))
	}
	return out
}

func toQuestionInfo(q api.Question) QuestionInfo {
	answers := make(map[string]string, len(api.AnswerLetters))
	for _, letter := range api.AnswerLetters {
		answers[letter] = q.Answers.Get(letter)
	}
	return QuestionInfo{
		ID:            q.ID,
		Exam:          q.Exam,
		Subject:       q.Subject,
		Year:          q.Year,
		MainQuestion:  q.MainQuestion,
		Options:       q.QuestionOptions,
		Continuation:  q.Continuation,
		Answers:       answers,
		CorrectAnswer: q.CorrectAnswer,
	}
}
