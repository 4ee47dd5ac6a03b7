package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sloppy/pastyears/internal/api"
)

// ExportQuestionsCSV writes one row per question. Statement options are
// joined with " | ".
func ExportQuestionsCSV(w io.Writer, questions []api.Question) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, q := range questions {
		if err := writer.Write(csvRow(q)); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func csvHeader() []string {
	return []string{
		"id",
		"exam",
		"subject",
		"year",
		"main_question",
		"options",
		"continuation",
		"answer_a",
		"answer_b",
		"answer_c",
		"answer_d",
		"correct_answer",
	}
}

func csvRow(q api.Question) []string {
	return []string{
		q.ID,
		q.Exam,
		q.Subject,
		strconv.Itoa(q.Year),
		q.MainQuestion,
		strings.Join(q.QuestionOptions, " | "),
		q.Continuation,
		q.Answers.A,
		q.Answers.B,
		q.Answers.C,
		q.Answers.D,
		q.CorrectAnswer,
	}
}
