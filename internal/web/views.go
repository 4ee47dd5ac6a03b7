package web

import (
	"net/url"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/filter"
)

type navState struct {
	LoggedIn    bool
	DisplayName string
	Path        string
}

type pagerLink struct {
	Label    string
	Href     string
	Disabled bool
	Active   bool
}

type questionsView struct {
	Nav        navState
	Selection  filter.Selection
	Params     url.Values
	Facets     api.Metadata
	FacetsErr  error
	Questions  []api.Question
	Offset     int
	Total      int
	Page       int
	TotalPages int
	Pager      []pagerLink
	Random     bool
	Err        error
}

type questionView struct {
	Nav      navState
	Question api.Question
	IssueURL string
}

type reportView struct {
	Nav         navState
	Question    api.Question
	Comments    string
	CommentsErr string
	TrackingURL string
	Err         error
}

type loginView struct {
	Nav         navState
	Email       string
	Next        string
	Notice      string
	EmailErr    string
	PasswordErr string
	FormErr     string
	Err         error
}

type signUpView struct {
	Nav            navState
	Email          string
	DisplayName    string
	EmailErr       string
	DisplayNameErr string
	PasswordErr    string
	FormErr        string
	Err            error
}
