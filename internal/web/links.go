package web

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/sloppy/pastyears/internal/filter"
)

// startParam carries the pager window start between list pages.
const startParam = "start"

// buildQuestionsLink returns the list URL for a 1-based page. start is the
// pager window start to restore; a negative start is omitted.
func buildQuestionsLink(page int, params url.Values, start int) string {
	values := filterValues(params)
	if start >= 0 {
		values = append(values, startParam+"="+strconv.Itoa(start))
	}
	path := "/questions"
	if page > 1 || start >= 0 {
		path = fmt.Sprintf("/questions/%d", page)
	}
	if len(values) == 0 {
		return path
	}
	return path + "?" + strings.Join(values, "&")
}

// buildRandomLink returns the random-sample URL for the filter params.
func buildRandomLink(params url.Values) string {
	values := filterValues(params)
	if len(values) == 0 {
		return "/questions/random"
	}
	return "/questions/random?" + strings.Join(values, "&")
}

// carriedParams merges the canonical selection into the request query so
// keys unrelated to filtering survive redirects and pager links. The pager
// start is dropped; links set their own.
func carriedParams(query url.Values, sel filter.Selection) url.Values {
	params := filter.Apply(query, sel)
	params.Del(startParam)
	return params
}

// filterValues encodes the filter keys in a fixed order so links are stable,
// followed by any other carried keys in sorted order.
func filterValues(params url.Values) []string {
	filterKeys := []string{filter.KeyExams, filter.KeySubjects, filter.KeyYears, filter.KeyQuery}
	values := make([]string, 0, len(params))
	for _, key := range filterKeys {
		if v := params.Get(key); v != "" {
			values = append(values, key+"="+url.QueryEscape(v))
		}
	}
	for _, key := range slices.Sorted(maps.Keys(params)) {
		if key == startParam || slices.Contains(filterKeys, key) {
			continue
		}
		for _, v := range params[key] {
			values = append(values, url.QueryEscape(key)+"="+url.QueryEscape(v))
		}
	}
	return values
}

func questionLink(id string) string {
	return "/question/" + url.PathEscape(id)
}

func reportLink(id string) string {
	return questionLink(id) + "/report"
}

func loginLink(next string) string {
	if next == "" || next == "/" {
		return "/login"
	}
	return "/login?next=" + url.QueryEscape(next)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

// parseStart reads the pager window start; -1 means absent or invalid.
func parseStart(value string) int {
	val, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || val < 0 {
		return -1
	}
	return val
}

// externalLink accepts backend-supplied URLs only with an http or https
// scheme and a host.
func externalLink(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return u.String(), true
	}
	return "", false
}
