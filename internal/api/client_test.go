package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/testutil"
)

func newClient(t *testing.T, fake *testutil.FakeAPI, opts ...api.Option) *api.Client {
	t.Helper()
	opts = append([]api.Option{api.WithLogger(testutil.Logger(t))}, opts...)
	c, err := api.New(fake.URL(), opts...)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeURL(t *testing.T) {
	_, err := api.New("/api")
	require.Error(t, err)

	c, err := api.New("http://localhost:8000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestListQuestionsDecodesSnakeCase(t *testing.T) {
	fake := testutil.NewFakeAPI(t, testutil.SampleQuestions(12))
	c := newClient(t, fake)

	questions, err := c.ListQuestions(context.Background(), "exams=cse&years=2022")
	require.NoError(t, err)
	require.NotEmpty(t, questions)
	for _, q := range questions {
		assert.Equal(t, "CSE", q.Exam)
		assert.Equal(t, 2022, q.Year)
		assert.NotEmpty(t, q.MainQuestion)
		assert.Equal(t, "b", q.CorrectAnswer)
		assert.NotEmpty(t, q.Answers.Get("B"))
	}
	assert.Equal(t, []string{"exams=cse&years=2022"}, fake.Queries())

	first := questions[0]
	assert.Equal(t, []string{"1. First statement", "2. Second statement"}, first.QuestionOptions)
	assert.NotEmpty(t, first.Continuation)
}

func TestRandomQuestionsLimit(t *testing.T) {
	fake := testutil.NewFakeAPI(t, testutil.SampleQuestions(30))
	c := newClient(t, fake)

	questions, err := c.RandomQuestions(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, questions, testutil.RandomLimit)
}

func TestQuestionNotFound(t *testing.T) {
	sample := testutil.SampleQuestions(3)
	fake := testutil.NewFakeAPI(t, sample)
	c := newClient(t, fake)

	q, err := c.Question(context.Background(), sample[1].ID)
	require.NoError(t, err)
	assert.Equal(t, sample[1].MainQuestion, q.MainQuestion)

	_, err = c.Question(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.False(t, api.IsNetwork(err))
	assert.NotEmpty(t, api.RequestID(err))
}

func TestMetadataNormalizesFacets(t *testing.T) {
	fake := testutil.NewFakeAPI(t, testutil.SampleQuestions(12))
	c := newClient(t, fake)

	md, err := c.Metadata(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"CSE", "NDA", "CDS"}, md.Exams)
	assert.Equal(t, []string{"Economics", "Polity", "International Relations", "Environment"}, md.Subjects)
	assert.Equal(t, []string{"2022", "2021", "2020"}, md.Years)
}

func TestIncorrectQuestionFlow(t *testing.T) {
	sample := testutil.SampleQuestions(2)
	fake := testutil.NewFakeAPI(t, sample)
	c := newClient(t, fake)
	id := sample[0].ID

	_, err := c.IncorrectQuestionURL(context.Background(), id)
	assert.ErrorIs(t, err, api.ErrNotFound)

	fake.SetIssue(id, "https://issues.example.com/1")
	issue, err := c.IncorrectQuestionURL(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "https://issues.example.com/1", issue)

	ctx := api.WithAccessToken(context.Background(), "token-1")
	tracking, err := c.ReportIncorrectQuestion(ctx, id, "answer should be c")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(tracking, "https://issues.example.com/"+id))

	reports := fake.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, testutil.Report{QuestionID: id, Comments: "answer should be c", Auth: "Bearer token-1"}, reports[0])
}

func TestLoginAndRefresh(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	userID := fake.AddUser("asha@example.com", "secret", "Asha")
	c := newClient(t, fake)

	_, err := c.Login(context.Background(), "asha@example.com", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUnauthorized)

	resp, err := c.Login(context.Background(), "asha@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, api.User{UserID: userID, DisplayName: "Asha", Email: "asha@example.com"}, resp.User)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, fake.RefreshTokenFor(userID), resp.RefreshToken)

	token, err := c.RefreshAccessToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	require.NoError(t, c.Logout(context.Background(), userID))
	assert.Equal(t, []string{userID}, fake.Logouts())

	_, err = c.RefreshAccessToken(context.Background(), resp.RefreshToken)
	assert.ErrorIs(t, err, api.ErrUnauthorized)
}

func TestSignUpConflict(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	c := newClient(t, fake)

	require.NoError(t, c.SignUp(context.Background(), "ravi@example.com", "Ravi", "pw"))
	err := c.SignUp(context.Background(), "ravi@example.com", "Ravi", "pw")
	require.Error(t, err)
	assert.ErrorIs(t, err, api.ErrUserAlreadyExists)

	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusConflict, se.StatusCode)
}

func TestServerErrorCarriesRequestID(t *testing.T) {
	fake := testutil.NewFakeAPI(t, testutil.SampleQuestions(3))
	c := newClient(t, fake)

	fake.FailWith(http.StatusInternalServerError)
	_, err := c.ListQuestions(context.Background(), "")
	require.Error(t, err)
	assert.False(t, api.IsNetwork(err))
	assert.Equal(t, testutil.RequestID(1), api.RequestID(err))
}

func TestNetworkError(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	c := newClient(t, fake)
	fake.Server.Close()

	_, err := c.ListQuestions(context.Background(), "")
	require.Error(t, err)
	assert.True(t, api.IsNetwork(err))
	assert.Empty(t, api.RequestID(err))
}

func TestCustomEndpoints(t *testing.T) {
	fake := testutil.NewFakeAPI(t, nil)
	fake.AddUser("a@example.com", "pw", "A")
	endpoints := api.DefaultEndpoints()
	endpoints.Login = "/auth/login"
	c := newClient(t, fake, api.WithEndpoints(endpoints))

	_, err := c.Login(context.Background(), "a@example.com", "pw")
	assert.ErrorIs(t, err, api.ErrNotFound)
}

func TestMetricsCountOutcomes(t *testing.T) {
	fake := testutil.NewFakeAPI(t, testutil.SampleQuestions(3))
	reg := prometheus.NewRegistry()
	metrics := api.NewMetrics(reg)
	c := newClient(t, fake, api.WithMetrics(metrics))

	_, err := c.ListQuestions(context.Background(), "")
	require.NoError(t, err)
	_, err = c.Question(context.Background(), "missing")
	require.Error(t, err)

	count, err := promtest.GatherAndCount(reg, "pastyears_api_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
