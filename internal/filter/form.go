package filter

import "net/url"

// Form owns the selection of one filter view and publishes it on submit:
// onURL receives the address-bar parameters and onSearch the API query.
type Form struct {
	sel      Selection
	onURL    func(url.Values)
	onSearch func(query string)
}

// NewForm hydrates a form from the current URL parameters.
func NewForm(params url.Values, onURL func(url.Values), onSearch func(query string)) *Form {
	return &Form{
		sel:      ParseFromURL(params),
		onURL:    onURL,
		onSearch: onSearch,
	}
}

// Mount runs the initial search for the hydrated selection.
func (f *Form) Mount() {
	f.Submit()
}

// Submit publishes the current selection to both observers.
func (f *Form) Submit() {
	if f.onURL != nil {
		f.onURL(f.sel.URLParams())
	}
	if f.onSearch != nil {
		f.onSearch(f.sel.QueryString())
	}
}

// Selection returns a copy of the current selection.
func (f *Form) Selection() Selection {
	return Selection{
		Query:    f.sel.Query,
		Exams:    append([]string(nil), f.sel.Exams...),
		Subjects: append([]string(nil), f.sel.Subjects...),
		Years:    append([]string(nil), f.sel.Years...),
	}
}

func (f *Form) SetQuery(q string) { f.sel.Query = q }
func (f *Form) SetExams(values []string) { f.sel.Exams = splitValues(values, Upper) }
func (f *Form) SetSubjects(values []string) { f.sel.Subjects = splitValues(values, Title) }
func (f *Form) SetYears(values []string) { f.sel.Years = splitValues(values, nil) }
