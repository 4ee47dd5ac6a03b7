package web

import (
	"context"
	"fmt"
	"html"
	"io"
	"slices"

	"github.com/a-h/templ"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/filter"
)

func layout(title string, nav navState, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!doctype html><html lang=\"en\"><head>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<meta charset=\"utf-8\">"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<title>%s</title>", html.EscapeString(title)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, layoutStyles); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<script src=\"https://unpkg.com/htmx.org@1.9.12\" defer></script>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</head><body>"); err != nil {
			return err
		}
		if err := navBar(nav).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<main class=\"shell\">"); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</main></body></html>"); err != nil {
			return err
		}
		return nil
	})
}

func navBar(nav navState) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<header class=\"topbar\"><a class=\"brand\" href=\"/\">Past Years</a><nav><a class=\"back-link\" href=\"/questions\">Questions</a><a class=\"back-link\" href=\"/questions/random\">Random</a>"); err != nil {
			return err
		}
		if nav.LoggedIn {
			if _, err := fmt.Fprintf(w, "<span class=\"muted\">%s</span><form method=\"post\" action=\"/logout\"><button class=\"ghost\" type=\"submit\">Log out</button></form>", html.EscapeString(nav.DisplayName)); err != nil {
				return err
			}
		} else {
			if _, err := fmt.Fprintf(w, "<a class=\"back-link\" href=\"%s\">Log in</a><a class=\"back-link\" href=\"/signup\">Sign up</a>", html.EscapeString(loginLink(nav.Path))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</nav></header>"); err != nil {
			return err
		}
		return nil
	})
}

func homePage(nav navState) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<header class=\"page-header\"><p class=\"eyebrow\">Past Years</p><h1>Practice with past exam questions</h1><p class=\"subhead\">Browse questions by exam, subject and year, or test yourself with a random set.</p></header>"); err != nil {
			return err
		}
		if nav.LoggedIn {
			if _, err := fmt.Fprintf(w, "<p class=\"notice\">Signed in as %s.</p>", html.EscapeString(nav.DisplayName)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<div class=\"page-actions\"><a class=\"back-link\" href=\"/questions\">Browse questions</a><a class=\"back-link\" href=\"/questions/random\">Random questions</a></div>"); err != nil {
			return err
		}
		return nil
	})
	return layout("Past Years", nav, body)
}

func questionsPage(view questionsView) templ.Component {
	title := "Questions"
	subhead := "Filter by exam, subject and year, or search the question text."
	if view.Random {
		title = "Random questions"
		subhead = "A random set of questions matching your filters."
	}
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<header class=\"page-header\"><p class=\"eyebrow\">Past Years</p><h1>%s</h1><p class=\"subhead\">%s</p></header>", title, subhead); err != nil {
			return err
		}
		if err := filterForm(view).Render(ctx, w); err != nil {
			return err
		}
		return questionsResults(view).Render(ctx, w)
	})
	return layout("Past Years - "+title, view.Nav, body)
}

func filterForm(view questionsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		action := "/questions"
		if view.Random {
			action = "/questions/random"
		}
		if _, err := fmt.Fprintf(w, "<section class=\"card\"><form method=\"get\" action=\"%s\" class=\"filters\">", action); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<input name=\"q\" type=\"search\" placeholder=\"Search questions\" value=\"%s\">", html.EscapeString(view.Selection.Query)); err != nil {
			return err
		}
		groups := []struct {
			Key     string
			Legend  string
			Options []string
		}{
			{filter.KeyExams, "Exams", mergeOptions(view.Facets.Exams, view.Selection.Exams)},
			{filter.KeySubjects, "Subjects", mergeOptions(view.Facets.Subjects, view.Selection.Subjects)},
			{filter.KeyYears, "Years", mergeOptions(view.Facets.Years, view.Selection.Years)},
		}
		for _, group := range groups {
			if _, err := fmt.Fprintf(w, "<fieldset><legend>%s</legend>", group.Legend); err != nil {
				return err
			}
			for _, opt := range group.Options {
				checked := ""
				if view.Selection.Has(group.Key, opt) {
					checked = " checked"
				}
				escaped := html.EscapeString(opt)
				if _, err := fmt.Fprintf(w, "<label class=\"checkbox-row\"><input type=\"checkbox\" name=\"%s\" value=\"%s\"%s>%s</label>", group.Key, escaped, checked, escaped); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</fieldset>"); err != nil {
				return err
			}
		}
		if view.FacetsErr != nil {
			if _, err := io.WriteString(w, "<p class=\"muted\">Filter options could not be loaded.</p>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<div class=\"filter-actions\"><button type=\"submit\" formaction=\"/questions\">Search</button><button class=\"ghost\" type=\"submit\" formaction=\"/questions/random\">Random</button></div></form></section>"); err != nil {
			return err
		}
		return nil
	})
}

// mergeOptions lists the facet values followed by any selected value the
// facets do not know about.
func mergeOptions(facets, selected []string) []string {
	out := slices.Clone(facets)
	for _, v := range selected {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func questionsResults(view questionsView) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<div id=\"results\">"); err != nil {
			return err
		}
		if view.Err != nil {
			if err := fetchErrorPanel(view.Err).Render(ctx, w); err != nil {
				return err
			}
			_, err := io.WriteString(w, "</div>")
			return err
		}
		if _, err := io.WriteString(w, "<section class=\"card\">"); err != nil {
			return err
		}
		if len(view.Questions) == 0 {
			if _, err := io.WriteString(w, "<p class=\"empty\">No questions match these filters.</p></section></div>"); err != nil {
				return err
			}
			return nil
		}
		if !view.Random {
			if _, err := fmt.Fprintf(w, "<p class=\"pager-status\">Showing %d-%d of %d questions</p>", view.Offset+1, view.Offset+len(view.Questions), view.Total); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<ol class=\"question-list\">"); err != nil {
			return err
		}
		for i, q := range view.Questions {
			if _, err := fmt.Fprintf(w, "<li value=\"%d\">", view.Offset+i+1); err != nil {
				return err
			}
			if err := questionCard(q, true).Render(ctx, w); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "</li>"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</ol>"); err != nil {
			return err
		}
		if err := pagerNav(view.Pager).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</section></div>"); err != nil {
			return err
		}
		return nil
	})
}

func pagerNav(links []pagerLink) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(links) == 0 {
			return nil
		}
		if _, err := io.WriteString(w, "<nav class=\"pager\" aria-label=\"Pages\">"); err != nil {
			return err
		}
		for _, link := range links {
			label := html.EscapeString(link.Label)
			switch {
			case link.Active:
				if _, err := fmt.Fprintf(w, "<span class=\"pager-link active\" aria-current=\"page\">%s</span>", label); err != nil {
					return err
				}
			case link.Disabled:
				if _, err := fmt.Fprintf(w, "<span class=\"pager-link disabled\">%s</span>", label); err != nil {
					return err
				}
			default:
				href := html.EscapeString(link.Href)
				if _, err := fmt.Fprintf(w, "<a class=\"pager-link\" href=\"%s\" hx-get=\"%s\" hx-target=\"#results\" hx-swap=\"outerHTML\" hx-push-url=\"true\">%s</a>", href, href, label); err != nil {
					return err
				}
			}
		}
		if _, err := io.WriteString(w, "</nav>"); err != nil {
			return err
		}
		return nil
	})
}

func questionCard(q api.Question, linkToDetail bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<article class=\"question\"><p>%s</p>", html.EscapeString(q.MainQuestion)); err != nil {
			return err
		}
		if len(q.QuestionOptions) > 0 {
			if _, err := io.WriteString(w, "<ul class=\"statements\">"); err != nil {
				return err
			}
			for _, opt := range q.QuestionOptions {
				if _, err := fmt.Fprintf(w, "<li>%s</li>", html.EscapeString(opt)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "</ul>"); err != nil {
				return err
			}
		}
		if q.Continuation != "" {
			if _, err := fmt.Fprintf(w, "<p>%s</p>", html.EscapeString(q.Continuation)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<ol type=\"a\">"); err != nil {
			return err
		}
		for _, letter := range api.AnswerLetters {
			if _, err := fmt.Fprintf(w, "<li>%s</li>", html.EscapeString(q.Answers.Get(letter))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</ol>"); err != nil {
			return err
		}
		if q.CorrectAnswer != "" {
			if _, err := fmt.Fprintf(w, "<details><summary>Show answer</summary><p>(%s) %s</p></details>", html.EscapeString(q.CorrectAnswer), html.EscapeString(q.Answers.Get(q.CorrectAnswer))); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "<p class=\"tags\">%s | %s | %d", html.EscapeString(q.Exam), html.EscapeString(q.Subject), q.Year); err != nil {
			return err
		}
		if linkToDetail {
			if _, err := fmt.Fprintf(w, " | <a class=\"back-link\" href=\"%s\">Details</a>", html.EscapeString(questionLink(q.ID))); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "</p></article>"); err != nil {
			return err
		}
		return nil
	})
}

func questionPage(view questionView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		q := view.Question
		if _, err := fmt.Fprintf(w, "<header class=\"page-header\"><p class=\"eyebrow\">%s %d</p><h1>Question</h1><p class=\"subhead\">%s</p></header>", html.EscapeString(q.Exam), q.Year, html.EscapeString(q.Subject)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<section class=\"card\">"); err != nil {
			return err
		}
		if err := questionCard(q, false).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</section>"); err != nil {
			return err
		}
		if view.IssueURL != "" {
			if link, ok := externalLink(view.IssueURL); ok {
				if _, err := fmt.Fprintf(w, "<p class=\"notice\">This question has a reported issue: <a class=\"back-link\" href=\"%s\">view report</a></p>", html.EscapeString(link)); err != nil {
					return err
				}
			} else if _, err := io.WriteString(w, "<p class=\"notice\">This question has a reported issue.</p>"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "<div class=\"page-actions\"><a class=\"back-link\" href=\"%s\">Report an incorrect question</a><a class=\"back-link\" href=\"/questions\">Back to questions</a></div>", html.EscapeString(reportLink(q.ID))); err != nil {
			return err
		}
		return nil
	})
	return layout("Past Years - Question", view.Nav, body)
}

func reportPage(view reportView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		q := view.Question
		if _, err := io.WriteString(w, "<header class=\"page-header\"><p class=\"eyebrow\">Report</p><h1>Incorrect question</h1><p class=\"subhead\">Tell us what is wrong with this question or its answer.</p></header>"); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<section class=\"card\">"); err != nil {
			return err
		}
		if err := questionCard(q, false).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "</section>"); err != nil {
			return err
		}
		if view.TrackingURL != "" {
			tracking := ""
			if link, ok := externalLink(view.TrackingURL); ok {
				tracking = fmt.Sprintf(" <a class=\"back-link\" href=\"%s\">Track it here</a>.", html.EscapeString(link))
			}
			if _, err := fmt.Fprintf(w, "<section class=\"card\"><p class=\"notice\">Thanks, your report was filed.%s</p><a class=\"back-link\" href=\"%s\">Back to question</a></section>", tracking, html.EscapeString(questionLink(q.ID))); err != nil {
				return err
			}
			return nil
		}
		if view.Err != nil {
			if err := fetchErrorPanel(view.Err).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "<section class=\"card\"><form method=\"post\" action=\"%s\" class=\"auth-form\"><label for=\"comments\">What is wrong?</label>", html.EscapeString(reportLink(q.ID))); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<textarea id=\"comments\" name=\"comments\" rows=\"6\">%s</textarea>", html.EscapeString(view.Comments)); err != nil {
			return err
		}
		if err := fieldError(view.CommentsErr).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<button type=\"submit\">Send report</button></form></section>"); err != nil {
			return err
		}
		return nil
	})
	return layout("Past Years - Report", view.Nav, body)
}

func loginPage(view loginView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<header class=\"page-header\"><p class=\"eyebrow\">Account</p><h1>Log in</h1></header>"); err != nil {
			return err
		}
		if view.Notice != "" {
			if _, err := fmt.Fprintf(w, "<p class=\"notice\">%s</p>", html.EscapeString(view.Notice)); err != nil {
				return err
			}
		}
		if view.Err != nil {
			if err := fetchErrorPanel(view.Err).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<section class=\"card\"><form method=\"post\" action=\"/login\" class=\"auth-form\">"); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "<input type=\"hidden\" name=\"next\" value=\"%s\">", html.EscapeString(view.Next)); err != nil {
			return err
		}
		if view.FormErr != "" {
			if _, err := fmt.Fprintf(w, "<p class=\"form-error\">%s</p>", html.EscapeString(view.FormErr)); err != nil {
				return err
			}
		}
		if err := inputField("Email", "email", "email", view.Email, view.EmailErr).Render(ctx, w); err != nil {
			return err
		}
		if err := inputField("Password", "password", "password", "", view.PasswordErr).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<button type=\"submit\">Log in</button></form><p class=\"muted\">No account yet? <a class=\"back-link\" href=\"/signup\">Sign up</a></p></section>"); err != nil {
			return err
		}
		return nil
	})
	return layout("Past Years - Log in", view.Nav, body)
}

func signUpPage(view signUpView) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<header class=\"page-header\"><p class=\"eyebrow\">Account</p><h1>Sign up</h1></header>"); err != nil {
			return err
		}
		if view.Err != nil {
			if err := fetchErrorPanel(view.Err).Render(ctx, w); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "<section class=\"card\"><form method=\"post\" action=\"/signup\" class=\"auth-form\">"); err != nil {
			return err
		}
		if view.FormErr != "" {
			if _, err := fmt.Fprintf(w, "<p class=\"form-error\">%s</p>", html.EscapeString(view.FormErr)); err != nil {
				return err
			}
		}
		if err := inputField("Email", "email", "email", view.Email, view.EmailErr).Render(ctx, w); err != nil {
			return err
		}
		if err := inputField("Display name", "display_name", "text", view.DisplayName, view.DisplayNameErr).Render(ctx, w); err != nil {
			return err
		}
		if err := inputField("Password", "password", "password", "", view.PasswordErr).Render(ctx, w); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "<button type=\"submit\">Create account</button></form></section>"); err != nil {
			return err
		}
		return nil
	})
	return layout("Past Years - Sign up", view.Nav, body)
}

func inputField(label, name, kind, value, errMsg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<label>%s<input name=\"%s\" type=\"%s\" value=\"%s\"></label>", html.EscapeString(label), name, kind, html.EscapeString(value)); err != nil {
			return err
		}
		return fieldError(errMsg).Render(ctx, w)
	})
}

func fieldError(msg string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if msg == "" {
			return nil
		}
		_, err := fmt.Fprintf(w, "<p class=\"field-error\">%s</p>", html.EscapeString(msg))
		return err
	})
}

// fetchErrorPanel tells connectivity failures apart from error responses and
// shows the backend request id when there is one.
func fetchErrorPanel(fetchErr error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if api.IsNetwork(fetchErr) {
			_, err := io.WriteString(w, "<section class=\"card error-panel\" role=\"alert\"><h2>Check your internet connection</h2><p class=\"muted\">The questions service could not be reached. Try again in a moment.</p></section>")
			return err
		}
		if _, err := io.WriteString(w, "<section class=\"card error-panel\" role=\"alert\"><h2>Something went wrong</h2>"); err != nil {
			return err
		}
		if id := api.RequestID(fetchErr); id != "" {
			if _, err := fmt.Fprintf(w, "<p class=\"muted\">Request id: <span class=\"mono\">%s</span></p>", html.EscapeString(id)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</section>")
		return err
	})
}

func messagePage(nav navState, title, message string) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<header class=\"page-header\"><h1>%s</h1><p class=\"subhead\">%s</p></header>", html.EscapeString(title), html.EscapeString(message)); err != nil {
			return err
		}
		_, err := io.WriteString(w, "<div class=\"page-actions\"><a class=\"back-link\" href=\"/questions\">Back to questions</a></div>")
		return err
	})
	return layout("Past Years - "+title, nav, body)
}

func errorPage(nav navState, title string, fetchErr error) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, "<header class=\"page-header\"><h1>%s</h1></header>", html.EscapeString(title)); err != nil {
			return err
		}
		return fetchErrorPanel(fetchErr).Render(ctx, w)
	})
	return layout("Past Years - "+title, nav, body)
}
