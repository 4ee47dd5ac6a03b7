package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
)

// RandomLimit is how many questions the fake random endpoint returns.
const RandomLimit = 5

// TokenSecret signs the fake API's access tokens.
const TokenSecret = "pastyears-test-secret"

// Report is one incorrect-question report received by the fake API.
type Report struct {
	QuestionID string
	Comments   string
	Auth       string
}

type fakeUser struct {
	ID          string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	password    string
}

// FakeAPI is an in-process stand-in for the questions REST API. It speaks the
// backend's snake_case JSON and stamps every response with X-Request-Id.
type FakeAPI struct {
	Server *httptest.Server

	mu            sync.Mutex
	questions     []Question
	users         map[string]fakeUser
	refreshTokens map[string]string
	issues        map[string]string
	reports       []Report
	logouts       []string
	queries       []string
	failStatus    int
	tokenTTL      time.Duration
	nextRequest   int
}

// NewFakeAPI starts a fake API serving questions. It is closed with the test.
func NewFakeAPI(t *testing.T, questions []Question) *FakeAPI {
	t.Helper()
	f := &FakeAPI{
		questions:     questions,
		users:         map[string]fakeUser{},
		refreshTokens: map[string]string{},
		issues:        map[string]string{},
		tokenTTL:      time.Hour,
	}

	r := chi.NewRouter()
	r.Use(f.stamp)
	r.Get("/questions", f.handleList)
	r.Get("/questions/random", f.handleRandom)
	r.Get("/questions/metadata", f.handleMetadata)
	r.Get("/questions/{id}", f.handleQuestion)
	r.Get("/incorrect-question/{id}", f.handleIssue)
	r.Post("/incorrect-question/{id}", f.handleReport)
	r.Post("/login", f.handleLogin)
	r.Post("/signup", f.handleSignUp)
	r.Post("/login/refresh", f.handleRefresh)
	r.Get("/login/logout/{userID}", f.handleLogout)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake API.
func (f *FakeAPI) URL() string { return f.Server.URL }

// AddUser registers an account and returns its id.
func (f *FakeAPI) AddUser(email, password, displayName string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("user-%d", len(f.users)+1)
	f.users[email] = fakeUser{ID: id, DisplayName: displayName, Email: email, password: password}
	return id
}

// SetIssue sets the known-issue URL of a question.
func (f *FakeAPI) SetIssue(questionID, url string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.issues[questionID] = url
}

// FailWith makes every subsequent request fail with status; 0 restores
// normal behaviour.
func (f *FakeAPI) FailWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failStatus = status
}

// SetTokenTTL changes the lifetime of issued access tokens.
func (f *FakeAPI) SetTokenTTL(ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenTTL = ttl
}

// Reports returns the incorrect-question reports received so far.
func (f *FakeAPI) Reports() []Report {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.reports)
}

// Logouts returns the user ids that logged out.
func (f *FakeAPI) Logouts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.logouts)
}

// Queries returns the raw query strings received by the list endpoints.
func (f *FakeAPI) Queries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.queries)
}

// RefreshTokenFor returns the refresh token issued to a user id.
func (f *FakeAPI) RefreshTokenFor(userID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshTokenLocked(userID)
}

// RequestID returns the id stamped on the n-th response (1-based).
func RequestID(n int) string {
	return "req-" + strconv.Itoa(n)
}

func (f *FakeAPI) stamp(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.nextRequest++
		id := RequestID(f.nextRequest)
		status := f.failStatus
		f.mu.Unlock()

		w.Header().Set("X-Request-Id", id)
		if status != 0 {
			writeJSON(w, status, map[string]string{"title": http.StatusText(status)})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeAPI) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, f.filtered(r))
}

func (f *FakeAPI) handleRandom(w http.ResponseWriter, r *http.Request) {
	matches := f.filtered(r)
	if len(matches) > RandomLimit {
		matches = matches[:RandomLimit]
	}
	writeJSON(w, http.StatusOK, matches)
}

func (f *FakeAPI) filtered(r *http.Request) []Question {
	query := r.URL.Query()
	exams := listParam(query["exams"], strings.ToUpper)
	subjects := listParam(query["subjects"], strings.ToLower)
	years := listParam(query["years"], nil)
	text := strings.ToLower(query.Get("q"))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, r.URL.RawQuery)

	out := []Question{}
	for _, q := range f.questions {
		if len(exams) > 0 && !slices.Contains(exams, q.Exam) {
			continue
		}
		if len(subjects) > 0 && !slices.Contains(subjects, q.Subject) {
			continue
		}
		if len(years) > 0 && !slices.Contains(years, strconv.Itoa(q.Year)) {
			continue
		}
		if text != "" && !strings.Contains(strings.ToLower(q.MainQuestion), text) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func (f *FakeAPI) handleMetadata(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var exams, subjects []string
	var years []int
	for _, q := range f.questions {
		if !slices.Contains(exams, q.Exam) {
			exams = append(exams, q.Exam)
		}
		if !slices.Contains(subjects, q.Subject) {
			subjects = append(subjects, q.Subject)
		}
		if !slices.Contains(years, q.Year) {
			years = append(years, q.Year)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"exams": exams, "subjects": subjects, "years": years})
}

func (f *FakeAPI) handleQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, q := range f.questions {
		if q.ID == id {
			writeJSON(w, http.StatusOK, q)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"title": "QuestionNotFound"})
}

func (f *FakeAPI) handleIssue(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	f.mu.Lock()
	issue, ok := f.issues[id]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"title": "Issue not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"issue_url": issue})
}

func (f *FakeAPI) handleReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body struct {
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"title": "Invalid body"})
		return
	}
	f.mu.Lock()
	f.reports = append(f.reports, Report{QuestionID: id, Comments: body.Comments, Auth: r.Header.Get("Authorization")})
	n := len(f.reports)
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]string{"issue_url": fmt.Sprintf("https://issues.example.com/%s#comment-%d", id, n)})
}

func (f *FakeAPI) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"title": "MissingData"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[body.Email]
	if !ok || user.password != body.Password {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	refresh := f.refreshTokenLocked(user.ID)
	if refresh == "" {
		refresh = fmt.Sprintf("refresh-%s-%d", user.ID, len(f.refreshTokens)+1)
		f.refreshTokens[refresh] = user.ID
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"refresh_token": refresh,
		"access_token":  f.signLocked(user.ID),
		"user":          user,
	})
}

func (f *FakeAPI) refreshTokenLocked(userID string) string {
	for token, id := range f.refreshTokens {
		if id == userID {
			return token
		}
	}
	return ""
}

func (f *FakeAPI) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Password    string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"title": "Invalid body"})
		return
	}
	f.mu.Lock()
	_, exists := f.users[body.Email]
	f.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{
			"title":       "UserAlreadyExists",
			"description": "A user with that email already exists",
		})
		return
	}
	f.AddUser(body.Email, body.Password, body.DisplayName)
	w.WriteHeader(http.StatusCreated)
}

func (f *FakeAPI) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Token == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"title": "MissingDetails"})
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	userID, ok := f.refreshTokens[body.Token]
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, f.signLocked(userID))
}

func (f *FakeAPI) handleLogout(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, id := range f.refreshTokens {
		if id == userID {
			delete(f.refreshTokens, token)
		}
	}
	f.logouts = append(f.logouts, userID)
	w.WriteHeader(http.StatusOK)
}

func (f *FakeAPI) signLocked(userID string) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(f.tokenTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TokenSecret))
	if err != nil {
		panic("testutil: sign token: " + err.Error())
	}
	return token
}

func listParam(raw []string, transform func(string) string) []string {
	var out []string
	for _, joined := range raw {
		for _, v := range strings.Split(joined, ",") {
			if v == "" {
				continue
			}
			if transform != nil {
				v = transform(v)
			}
			out = append(out, v)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
