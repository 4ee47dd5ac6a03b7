package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCamelCase(t *testing.T) {
	cases := map[string]string{
		"id":               "id",
		"main_question":    "mainQuestion",
		"question_options": "questionOptions",
		"issue_url":        "issueUrl",
		"_private":         "private",
		"user_id":          "userId",
	}
	for in, want := range cases {
		assert.Equal(t, want, camelCase(in), in)
	}
}

func TestDecodeCamelNested(t *testing.T) {
	data := []byte(`{"refresh_token":"r","access_token":"a","user":{"user_id":"u1","display_name":"Asha","email":"a@example.com"}}`)
	var resp LoginResponse
	require.NoError(t, decodeCamel(data, &resp))
	assert.Equal(t, LoginResponse{
		RefreshToken: "r",
		AccessToken:  "a",
		User:         User{UserID: "u1", DisplayName: "Asha", Email: "a@example.com"},
	}, resp)
}

func TestStringOrField(t *testing.T) {
	got, err := stringOrField([]byte(`"plain"`), "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "plain", got)

	got, err = stringOrField([]byte(`{"access_token":"wrapped"}`), "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "wrapped", got)

	got, err = stringOrField([]byte(`{"other":1}`), "accessToken")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = stringOrField([]byte(`{`), "accessToken")
	assert.Error(t, err)
}

func TestOutcomeFor(t *testing.T) {
	assert.Equal(t, "network_error", outcomeFor(0, assert.AnError))
	assert.Equal(t, "http_5xx", outcomeFor(502, nil))
	assert.Equal(t, "http_4xx", outcomeFor(404, nil))
	assert.Equal(t, "decode_error", outcomeFor(200, assert.AnError))
	assert.Equal(t, "ok", outcomeFor(200, nil))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.observe("op", "ok", 0) })
}
