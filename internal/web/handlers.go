package web

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/auth"
	"github.com/sloppy/pastyears/internal/filter"
	"github.com/sloppy/pastyears/internal/pagination"
)

// Form messages.
const (
	requiredMessage     = "This is required."
	badLoginMessage     = "Incorrect email or password."
	userExistsMessage   = "A user with that email already exists."
	signedUpMessage     = "Account created. Log in to continue."
	tooManyPostsMessage = "Too many submissions. Try again in a minute."
)

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	render(w, r, homePage(navFor(r)))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleQuestions(w http.ResponseWriter, r *http.Request) {
	page := 1
	if raw := chi.URLParam(r, "pageNum"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "invalid page number", http.StatusBadRequest)
			return
		}
		page = n
	}
	query := r.URL.Query()
	start := parseStart(query.Get(startParam))

	form, params, apiQuery := mountFilter(query)
	links := carriedParams(query, form.Selection())
	if !filter.SameParams(params, query) {
		http.Redirect(w, r, buildQuestionsLink(page, links, start), http.StatusFound)
		return
	}

	view := questionsView{
		Nav:       navFor(r),
		Selection: form.Selection(),
		Params:    params,
	}
	view.Facets, view.FacetsErr = s.facets.get(r.Context(), s.API)
	if view.FacetsErr != nil {
		s.logAPIError("questions metadata", view.FacetsErr)
	}

	questions, err := s.API.ListQuestions(r.Context(), apiQuery)
	if err != nil {
		s.logAPIError("list questions", err)
		view.Err = err
		s.renderQuestions(w, r, http.StatusBadGateway, view)
		return
	}

	totalPages := pagination.PageCount(len(questions), questionsPerPage)
	if totalPages > 0 && page > totalPages {
		last := totalPages - 1
		http.Redirect(w, r, buildQuestionsLink(totalPages, links, pagination.NextStart(0, last, pagerWindowSize, totalPages)), http.StatusFound)
		return
	}
	if start < 0 {
		start = page - 1
	}
	window := pagination.Restore(totalPages, pagerWindowSize, page-1, start)

	offset := window.Current() * questionsPerPage
	end := min(offset+questionsPerPage, len(questions))
	view.Questions = questions[offset:end]
	view.Offset = offset
	view.Total = len(questions)
	view.Page = window.Current() + 1
	view.TotalPages = totalPages
	view.Pager = pagerLinks(window, links)
	s.renderQuestions(w, r, http.StatusOK, view)
}

func (s *Server) handleRandomQuestions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	form, params, apiQuery := mountFilter(query)
	if !filter.SameParams(params, query) {
		http.Redirect(w, r, buildRandomLink(carriedParams(query, form.Selection())), http.StatusFound)
		return
	}

	view := questionsView{
		Nav:       navFor(r),
		Selection: form.Selection(),
		Params:    params,
		Random:    true,
	}
	view.Facets, view.FacetsErr = s.facets.get(r.Context(), s.API)
	if view.FacetsErr != nil {
		s.logAPIError("questions metadata", view.FacetsErr)
	}

	questions, err := s.API.RandomQuestions(r.Context(), apiQuery)
	if err != nil {
		s.logAPIError("random questions", err)
		view.Err = err
		s.renderQuestions(w, r, http.StatusBadGateway, view)
		return
	}
	view.Questions = questions
	view.Total = len(questions)
	s.renderQuestions(w, r, http.StatusOK, view)
}

// mountFilter runs the filter form for the request parameters and returns
// the canonical address-bar parameters and the API query.
func mountFilter(query url.Values) (*filter.Form, url.Values, string) {
	var params url.Values
	var apiQuery string
	form := filter.NewForm(query,
		func(p url.Values) { params = p },
		func(q string) { apiQuery = q },
	)
	form.Mount()
	return form, params, apiQuery
}

func (s *Server) renderQuestions(w http.ResponseWriter, r *http.Request, status int, view questionsView) {
	if isHTMXRequest(r) {
		renderStatus(w, r, status, questionsResults(view))
		return
	}
	renderStatus(w, r, status, questionsPage(view))
}

func pagerLinks(window *pagination.Window, params url.Values) []pagerLink {
	buttons := window.Plan()
	links := make([]pagerLink, 0, len(buttons))
	for _, b := range buttons {
		link := pagerLink{Label: b.Label, Disabled: b.Disabled, Active: b.Active}
		if !b.Disabled && !b.Active {
			link.Href = buildQuestionsLink(b.Target+1, params, b.Start)
		}
		links = append(links, link)
	}
	return links
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nav := navFor(r)
	question, ok := s.loadQuestion(w, r, nav, id)
	if !ok {
		return
	}

	issueURL, err := s.API.IncorrectQuestionURL(r.Context(), id)
	if err != nil && !errors.Is(err, api.ErrNotFound) {
		s.logAPIError("incorrect question url", err)
	}
	render(w, r, questionPage(questionView{Nav: nav, Question: question, IssueURL: issueURL}))
}

// loadQuestion fetches a question or writes the error page.
func (s *Server) loadQuestion(w http.ResponseWriter, r *http.Request, nav navState, id string) (api.Question, bool) {
	question, err := s.API.Question(r.Context(), id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			renderStatus(w, r, http.StatusNotFound, messagePage(nav, "Question not found", "No question exists with that id."))
			return api.Question{}, false
		}
		s.logAPIError("get question", err)
		renderStatus(w, r, http.StatusBadGateway, errorPage(nav, "Question", err))
		return api.Question{}, false
	}
	return question, true
}

func (s *Server) handleReportForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !loggedIn(r) {
		http.Redirect(w, r, loginLink(reportLink(id)), http.StatusFound)
		return
	}
	nav := navFor(r)
	question, ok := s.loadQuestion(w, r, nav, id)
	if !ok {
		return
	}
	render(w, r, reportPage(reportView{Nav: nav, Question: question}))
}

func (s *Server) handleReportSubmit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	nav := navFor(r)
	if !s.limiter.allow(r) {
		renderStatus(w, r, http.StatusTooManyRequests, messagePage(nav, "Slow down", tooManyPostsMessage))
		return
	}
	sess := currentSession(r)
	if sess == nil || !sess.auth.IsLoggedIn() {
		http.Redirect(w, r, loginLink(reportLink(id)), http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	question, ok := s.loadQuestion(w, r, nav, id)
	if !ok {
		return
	}

	view := reportView{Nav: nav, Question: question, Comments: r.PostFormValue("comments")}
	if strings.TrimSpace(view.Comments) == "" {
		view.CommentsErr = requiredMessage
		renderStatus(w, r, http.StatusUnprocessableEntity, reportPage(view))
		return
	}

	token, err := sess.auth.AccessToken(r.Context())
	if err != nil {
		s.logger.Error("access token", zap.Error(err))
		http.Error(w, "failed to load session", http.StatusInternalServerError)
		return
	}
	if token == "" {
		http.Redirect(w, r, loginLink(reportLink(id)), http.StatusSeeOther)
		return
	}

	tracking, err := s.API.ReportIncorrectQuestion(api.WithAccessToken(r.Context(), token), id, strings.TrimSpace(view.Comments))
	if err != nil {
		if errors.Is(err, api.ErrUnauthorized) {
			http.Redirect(w, r, loginLink(reportLink(id)), http.StatusSeeOther)
			return
		}
		s.logAPIError("report incorrect question", err)
		view.Err = err
		renderStatus(w, r, http.StatusBadGateway, reportPage(view))
		return
	}
	view.TrackingURL = tracking
	render(w, r, reportPage(view))
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	view := loginView{Nav: navFor(r), Next: r.URL.Query().Get("next")}
	if r.URL.Query().Get("signed_up") == "1" {
		view.Notice = signedUpMessage
	}
	render(w, r, loginPage(view))
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	nav := navFor(r)
	if !s.limiter.allow(r) {
		renderStatus(w, r, http.StatusTooManyRequests, messagePage(nav, "Slow down", tooManyPostsMessage))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := loginView{
		Nav:   nav,
		Email: strings.TrimSpace(r.PostFormValue("email")),
		Next:  r.PostFormValue("next"),
	}
	password := r.PostFormValue("password")
	if view.Email == "" {
		view.EmailErr = requiredMessage
	}
	if password == "" {
		view.PasswordErr = requiredMessage
	}
	if view.EmailErr != "" || view.PasswordErr != "" {
		renderStatus(w, r, http.StatusUnprocessableEntity, loginPage(view))
		return
	}

	sess, err := s.sessions.ensure(w, r)
	if err != nil {
		s.logger.Error("create session", zap.Error(err))
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	if err := sess.auth.Login(r.Context(), view.Email, password); err != nil {
		switch {
		case errors.Is(err, api.ErrUnauthorized):
			view.FormErr = badLoginMessage
			renderStatus(w, r, http.StatusUnauthorized, loginPage(view))
		default:
			s.logAPIError("login", err)
			view.Err = err
			renderStatus(w, r, http.StatusBadGateway, loginPage(view))
		}
		return
	}
	http.Redirect(w, r, safeNext(view.Next), http.StatusSeeOther)
}

func (s *Server) handleSignUpForm(w http.ResponseWriter, r *http.Request) {
	if loggedIn(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	render(w, r, signUpPage(signUpView{Nav: navFor(r)}))
}

func (s *Server) handleSignUpSubmit(w http.ResponseWriter, r *http.Request) {
	nav := navFor(r)
	if !s.limiter.allow(r) {
		renderStatus(w, r, http.StatusTooManyRequests, messagePage(nav, "Slow down", tooManyPostsMessage))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	view := signUpView{
		Nav:         nav,
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		DisplayName: strings.TrimSpace(r.PostFormValue("display_name")),
	}
	password := r.PostFormValue("password")
	if view.Email == "" {
		view.EmailErr = requiredMessage
	}
	if view.DisplayName == "" {
		view.DisplayNameErr = requiredMessage
	}
	if password == "" {
		view.PasswordErr = requiredMessage
	}
	if view.EmailErr != "" || view.DisplayNameErr != "" || view.PasswordErr != "" {
		renderStatus(w, r, http.StatusUnprocessableEntity, signUpPage(view))
		return
	}

	var sess *auth.Session
	if current := currentSession(r); current != nil {
		sess = current.auth
	} else {
		sess = auth.NewSession(s.API, auth.NewMemoryStore(), s.logger)
	}
	if err := sess.SignUp(r.Context(), view.Email, view.DisplayName, password); err != nil {
		switch {
		case errors.Is(err, api.ErrUserAlreadyExists):
			view.FormErr = userExistsMessage
			renderStatus(w, r, http.StatusConflict, signUpPage(view))
		default:
			s.logAPIError("sign up", err)
			view.Err = err
			renderStatus(w, r, http.StatusBadGateway, signUpPage(view))
		}
		return
	}
	http.Redirect(w, r, "/login?signed_up=1", http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := currentSession(r)
	if sess == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err := sess.auth.Logout(r.Context()); err != nil {
		s.logAPIError("logout", err)
		renderStatus(w, r, http.StatusBadGateway, errorPage(navFor(r), "Log out", err))
		return
	}
	if err := s.sessions.end(w, r, sess.id); err != nil {
		s.logger.Error("end session", zap.Error(err))
		http.Error(w, "failed to end session", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) logAPIError(op string, err error) {
	fields := []zap.Field{zap.String("op", op), zap.Error(err)}
	if id := api.RequestID(err); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	s.logger.Warn("api call failed", fields...)
}

func navFor(r *http.Request) navState {
	sess := currentSession(r)
	if sess == nil || !sess.auth.IsLoggedIn() {
		return navState{Path: r.URL.RequestURI()}
	}
	return navState{LoggedIn: true, DisplayName: sess.auth.DisplayName(), Path: r.URL.RequestURI()}
}

func loggedIn(r *http.Request) bool {
	sess := currentSession(r)
	return sess != nil && sess.auth.IsLoggedIn()
}

func isHTMXRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("HX-Request"), "true")
}

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	renderStatus(w, r, http.StatusOK, component)
}

func renderStatus(w http.ResponseWriter, r *http.Request, status int, component templ.Component) {
	var buf bytes.Buffer
	if err := component.Render(r.Context(), &buf); err != nil {
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
