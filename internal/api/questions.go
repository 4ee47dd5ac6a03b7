package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sloppy/pastyears/internal/filter"
)

// ListQuestions returns the questions matching query, a string built by
// filter.Selection.QueryString. An empty query lists everything.
func (c *Client) ListQuestions(ctx context.Context, query string) ([]Question, error) {
	var questions []Question
	err := c.getJSON(ctx, call{op: "list questions", method: http.MethodGet, path: []string{questionsPath}, query: query}, &questions)
	return questions, err
}

// RandomQuestions returns a random sample of the questions matching query.
func (c *Client) RandomQuestions(ctx context.Context, query string) ([]Question, error) {
	var questions []Question
	err := c.getJSON(ctx, call{op: "random questions", method: http.MethodGet, path: []string{randomQuestionsPath}, query: query}, &questions)
	return questions, err
}

// Question fetches one question by id.
func (c *Client) Question(ctx context.Context, id string) (Question, error) {
	var q Question
	err := c.getJSON(ctx, call{op: "get question", method: http.MethodGet, path: []string{questionsPath, url.PathEscape(id)}}, &q)
	return q, err
}

// Metadata fetches the filter facets. Years arrive as numbers and are
// returned as strings; subjects are title-cased.
func (c *Client) Metadata(ctx context.Context) (Metadata, error) {
	var raw struct {
		Exams    []string `json:"exams"`
		Subjects []string `json:"subjects"`
		Years    []any    `json:"years"`
	}
	if err := c.getJSON(ctx, call{op: "questions metadata", method: http.MethodGet, path: []string{questionsMetadataPath}}, &raw); err != nil {
		return Metadata{}, err
	}

	md := Metadata{
		Exams:    raw.Exams,
		Subjects: make([]string, 0, len(raw.Subjects)),
		Years:    make([]string, 0, len(raw.Years)),
	}
	for _, s := range raw.Subjects {
		md.Subjects = append(md.Subjects, filter.Title(s))
	}
	for _, y := range raw.Years {
		switch v := y.(type) {
		case float64:
			md.Years = append(md.Years, strconv.FormatFloat(v, 'f', -1, 64))
		case string:
			md.Years = append(md.Years, v)
		default:
			return Metadata{}, fmt.Errorf("questions metadata: unexpected year %v", y)
		}
	}
	return md, nil
}

// IncorrectQuestionURL returns the tracking URL of the known issue for a
// question.
func (c *Client) IncorrectQuestionURL(ctx context.Context, id string) (string, error) {
	data, err := c.do(ctx, call{op: "incorrect question url", method: http.MethodGet, path: []string{incorrectQuestionPath, url.PathEscape(id)}})
	if err != nil {
		return "", err
	}
	issueURL, err := stringOrField(data, "issueUrl")
	if err != nil {
		return "", fmt.Errorf("incorrect question url: decode response: %w", err)
	}
	return issueURL, nil
}

// ReportIncorrectQuestion files the user's comments against a question and
// returns the URL where the report can be tracked.
func (c *Client) ReportIncorrectQuestion(ctx context.Context, id, comments string) (string, error) {
	body := map[string]string{"comments": comments}
	data, err := c.do(ctx, call{op: "report incorrect question", method: http.MethodPost, path: []string{incorrectQuestionPath, url.PathEscape(id)}, body: body})
	if err != nil {
		return "", err
	}
	issueURL, err := stringOrField(data, "issueUrl")
	if err != nil {
		return "", fmt.Errorf("report incorrect question: decode response: %w", err)
	}
	return issueURL, nil
}
