package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/pagination"
)

// ExportQuestionsText writes numbered questions starting at offset+1. The
// correct answer is only printed when reveal is set.
func ExportQuestionsText(w io.Writer, offset int, questions []api.Question, reveal bool) error {
	if len(questions) == 0 {
		_, err := fmt.Fprintln(w, "No questions found.")
		return err
	}
	for i, q := range questions {
		if err := writeQuestion(w, strconv.Itoa(offset+i+1)+". ", q, reveal); err != nil {
			return err
		}
	}
	return nil
}

// ExportQuestionText writes one question with its id.
func ExportQuestionText(w io.Writer, q api.Question, reveal bool) error {
	if _, err := fmt.Fprintf(w, "Question %s\n", q.ID); err != nil {
		return err
	}
	return writeQuestion(w, "", q, reveal)
}

func writeQuestion(w io.Writer, prefix string, q api.Question, reveal bool) error {
	indent := strings.Repeat(" ", len(prefix))
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n", prefix, q.MainQuestion)
	for _, opt := range q.QuestionOptions {
		fmt.Fprintf(&b, "%s  %s\n", indent, opt)
	}
	if q.Continuation != "" {
		fmt.Fprintf(&b, "%s%s\n", indent, q.Continuation)
	}
	for _, letter := range api.AnswerLetters {
		fmt.Fprintf(&b, "%s(%s) %s\n", indent, letter, q.Answers.Get(letter))
	}
	if reveal && q.CorrectAnswer != "" {
		fmt.Fprintf(&b, "%sAnswer: (%s) %s\n", indent, q.CorrectAnswer, q.Answers.Get(q.CorrectAnswer))
	}
	fmt.Fprintf(&b, "%s[%s | %s | %d]\n\n", indent, q.Exam, q.Subject, q.Year)
	_, err := io.WriteString(w, b.String())
	return err
}

// ExportMetadataText writes the filter facets as an aligned table.
func ExportMetadataText(w io.Writer, md api.Metadata) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Exams\t%s\n", strings.Join(md.Exams, ", "))
	fmt.Fprintf(tw, "Subjects\t%s\n", strings.Join(md.Subjects, ", "))
	fmt.Fprintf(tw, "Years\t%s\n", strings.Join(md.Years, ", "))
	return tw.Flush()
}

// PagerLine renders the pager row, e.g. "<< < [1] 2 3 4 5 6 > >>  page 1 of 12".
// Disabled navigation buttons are shown as "-".
func PagerLine(w *pagination.Window) string {
	buttons := w.Plan()
	if len(buttons) == 0 {
		return "no pages"
	}
	parts := make([]string, 0, len(buttons))
	for _, b := range buttons {
		switch {
		case b.Active:
			parts = append(parts, "["+b.Label+"]")
		case b.Disabled:
			parts = append(parts, "-")
		default:
			parts = append(parts, b.Label)
		}
	}
	return fmt.Sprintf("%s  page %d of %d", strings.Join(parts, " "), w.Current()+1, w.TotalPages())
}
