package testutil

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// Question mirrors the backend wire format, which uses snake_case keys.
type Question struct {
	ID              string            `json:"id"`
	MainQuestion    string            `json:"main_question"`
	Continuation    string            `json:"continuation"`
	QuestionOptions []string          `json:"question_options"`
	Answers         map[string]string `json:"answers"`
	CorrectAnswer   string            `json:"correct_answer"`
	Exam            string            `json:"exam"`
	Subject         string            `json:"subject"`
	Year            int               `json:"year"`
}

var (
	fixtureExams    = []string{"CSE", "NDA", "CDS"}
	fixtureSubjects = []string{"economics", "polity", "international relations", "environment"}
	fixtureYears    = []int{2022, 2021, 2020}
)

// SampleQuestions returns n deterministic questions spread over the fixture
// exams, subjects and years. Question i has exam fixtureExams[i%3], subject
// fixtureSubjects[i%4] and year fixtureYears[i%3].
func SampleQuestions(n int) []Question {
	out := make([]Question, 0, n)
	for i := 0; i < n; i++ {
		main := fmt.Sprintf("Sample question %d about %s?", i+1, fixtureSubjects[i%len(fixtureSubjects)])
		sum := sha1.Sum([]byte(main))
		q := Question{
			ID:           hex.EncodeToString(sum[:])[:16],
			MainQuestion: main,
			Answers: map[string]string{
				"a": fmt.Sprintf("Answer A%d", i+1),
				"b": fmt.Sprintf("Answer B%d", i+1),
				"c": fmt.Sprintf("Answer C%d", i+1),
				"d": fmt.Sprintf("Answer D%d", i+1),
			},
			CorrectAnswer: "b",
			Exam:          fixtureExams[i%len(fixtureExams)],
			Subject:       fixtureSubjects[i%len(fixtureSubjects)],
			Year:          fixtureYears[i%len(fixtureYears)],
		}
		if i%5 == 0 {
			q.QuestionOptions = []string{"1. First statement", "2. Second statement"}
			q.Continuation = "Which of the statements given above is/are correct?"
		}
		out = append(out, q)
	}
	return out
}
