package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/pagination"
)

func sampleQuestions() []api.Question {
	return []api.Question{
		{
			ID:              "q1",
			MainQuestion:    "Consider the following statements:",
			QuestionOptions: []string{"1. Repo rate is set by RBI.", "2. CRR applies to NBFCs."},
			Continuation:    "Which of the statements given above is/are correct?",
			Answers:         api.Answers{A: "1 only", B: "2 only", C: "Both", D: "Neither"},
			CorrectAnswer:   "a",
			Exam:            "CSE",
			Subject:         "Economics",
			Year:            2022,
		},
		{
			ID:            "q2",
			MainQuestion:  "Who chairs the GST council?",
			Answers:       api.Answers{A: "PM", B: "Finance Minister", C: "RBI Governor", D: "President"},
			CorrectAnswer: "b",
			Exam:          "NDA",
			Subject:       "Polity",
			Year:          2021,
		},
	}
}

func TestExportQuestionsJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportQuestionsJSON(&buf, "exams=cse", 1, 3, 25, sampleQuestions()); err != nil {
		t.Fatalf("export json: %v", err)
	}

	var got QuestionPage
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if got.Page != 1 || got.TotalPages != 3 || got.Total != 25 || got.Query != "exams=cse" {
		t.Fatalf("unexpected page header: %+v", got)
	}
	if len(got.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(got.Questions))
	}
	if got.Questions[0].Answers["a"] != "1 only" || got.Questions[1].Options != nil {
		t.Fatalf("unexpected questions: %+v", got.Questions)
	}
	if !strings.Contains(buf.String(), `"main_question": "Who chairs the GST council?"`) {
		t.Fatalf("expected snake_case indented output, got:\n%s", buf.String())
	}
}

func TestExportQuestionsCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportQuestionsCSV(&buf, sampleQuestions()); err != nil {
		t.Fatalf("export csv: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header and 2 rows, got %d lines", len(lines))
	}
	expectedHeader := "id,exam,subject,year,main_question,options,continuation,answer_a,answer_b,answer_c,answer_d,correct_answer"
	if lines[0] != expectedHeader {
		t.Fatalf("unexpected csv header: %s", lines[0])
	}
	if !strings.HasPrefix(lines[1], "q1,CSE,Economics,2022,Consider the following statements:,1. Repo rate is set by RBI. | 2. CRR applies to NBFCs.,") {
		t.Fatalf("unexpected first row: %s", lines[1])
	}
	if lines[2] != "q2,NDA,Polity,2021,Who chairs the GST council?,,,PM,Finance Minister,RBI Governor,President,b" {
		t.Fatalf("unexpected second row: %s", lines[2])
	}
}

func TestExportQuestionsText(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportQuestionsText(&buf, 10, sampleQuestions(), false); err != nil {
		t.Fatalf("export text: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"11. Consider the following statements:\n",
		"      1. Repo rate is set by RBI.\n",
		"    Which of the statements given above is/are correct?\n",
		"    (a) 1 only\n",
		"    [CSE | Economics | 2022]\n",
		"12. Who chairs the GST council?\n",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Answer:") {
		t.Fatalf("answers should be hidden:\n%s", out)
	}

	buf.Reset()
	if err := ExportQuestionText(&buf, sampleQuestions()[1], true); err != nil {
		t.Fatalf("export question: %v", err)
	}
	if !strings.Contains(buf.String(), "Question q2\n") || !strings.Contains(buf.String(), "Answer: (b) Finance Minister\n") {
		t.Fatalf("unexpected question output:\n%s", buf.String())
	}
}

func TestExportQuestionsTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportQuestionsText(&buf, 0, nil, true); err != nil {
		t.Fatalf("export text: %v", err)
	}
	if buf.String() != "No questions found.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestExportMetadataText(t *testing.T) {
	var buf bytes.Buffer
	md := api.Metadata{Exams: []string{"CSE", "NDA"}, Subjects: []string{"Economics"}, Years: []string{"2022", "2021"}}
	if err := ExportMetadataText(&buf, md); err != nil {
		t.Fatalf("export metadata: %v", err)
	}
	want := "Exams     CSE, NDA\nSubjects  Economics\nYears     2022, 2021\n"
	if buf.String() != want {
		t.Fatalf("unexpected metadata output:\n%q\nwant:\n%q", buf.String(), want)
	}
}

func TestPagerLine(t *testing.T) {
	w := pagination.Restore(12, 5, 0, 0)
	if got := PagerLine(w); got != "- - [1] 2 3 4 5 6 > >>  page 1 of 12" {
		t.Fatalf("unexpected first-page pager: %q", got)
	}

	w = pagination.Restore(12, 5, 11, 6)
	if got := PagerLine(w); got != "<< < 7 8 9 10 11 [12] - -  page 12 of 12" {
		t.Fatalf("unexpected last-page pager: %q", got)
	}

	if got := PagerLine(pagination.Restore(0, 5, 0, 0)); got != "no pages" {
		t.Fatalf("unexpected empty pager: %q", got)
	}
}
