package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sloppy/pastyears/internal/api"
	"github.com/sloppy/pastyears/internal/auth"
	"github.com/sloppy/pastyears/internal/config"
	"github.com/sloppy/pastyears/internal/db"
	"github.com/sloppy/pastyears/internal/export"
	"github.com/sloppy/pastyears/internal/filter"
	"github.com/sloppy/pastyears/internal/logging"
	"github.com/sloppy/pastyears/internal/pagination"
)

// cliScope is the storage scope holding the CLI's login state.
const cliScope = "cli"

const (
	cliPerPage    = 10
	cliWindowSize = 5
)

func usage() string {
	return "Usage: pastyears <serve|questions|random|question|metadata|report|login|signup|logout|whoami>\n" +
		"Common flags: --config <file> --api <url> --db <path>"
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(out, usage())
		return 1
	}

	command := strings.ToLower(args[1])
	switch command {
	case "serve":
		return runServe(args[2:], out, errOut)
	case "questions":
		return runQuestions(args[2:], out, errOut, false)
	case "random":
		return runQuestions(args[2:], out, errOut, true)
	case "question":
		return runQuestion(args[2:], out, errOut)
	case "metadata":
		return runMetadata(args[2:], out, errOut)
	case "report":
		return runReport(args[2:], out, errOut)
	case "login":
		return runLogin(args[2:], out, errOut)
	case "signup":
		return runSignUp(args[2:], out, errOut)
	case "logout":
		return runLogout(args[2:], out, errOut)
	case "whoami":
		return runWhoAmI(args[2:], out, errOut)
	case "help", "-h", "--help":
		fmt.Fprintln(out, usage())
		return 0
	default:
		fmt.Fprintf(errOut, "unknown command: %s\n", command)
		fmt.Fprintln(out, usage())
		return 1
	}
}

// app holds what a CLI command needs after the common flags are applied.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	client *api.Client
	db     *db.DB
}

func (a *app) Close() {
	a.db.Close()
	_ = a.logger.Sync()
}

// loadConfig strips --config, --api and --db from args and returns the
// resolved configuration with the flag overrides applied.
func loadConfig(args []string) (*config.Config, []string, error) {
	cfgPath, remaining, err := extractFlag(args, "config", "")
	if err != nil {
		return nil, nil, err
	}
	apiURL, remaining, err := extractFlag(remaining, "api", "")
	if err != nil {
		return nil, nil, err
	}
	dbPath, remaining, err := extractFlag(remaining, "db", "")
	if err != nil {
		return nil, nil, err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, err
	}
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return cfg, remaining, nil
}

func newClient(cfg *config.Config, logger *zap.Logger, opts ...api.Option) (*api.Client, error) {
	opts = append([]api.Option{
		api.WithLogger(logger),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout}),
		api.WithEndpoints(api.Endpoints{
			Login:   cfg.API.Login,
			SignUp:  cfg.API.SignUp,
			Refresh: cfg.API.Refresh,
			Logout:  cfg.API.Logout,
		}),
	}, opts...)
	return api.New(cfg.API.BaseURL, opts...)
}

func setup(args []string, errOut io.Writer) (*app, []string, bool) {
	cfg, remaining, err := loadConfig(args)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return nil, nil, false
	}
	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(errOut, "logger: %v\n", err)
		return nil, nil, false
	}
	client, err := newClient(cfg, logger)
	if err != nil {
		fmt.Fprintf(errOut, "api client: %v\n", err)
		return nil, nil, false
	}
	database, err := db.Open(cfg.DB.Path)
	if err != nil {
		fmt.Fprintf(errOut, "open db: %v\n", err)
		return nil, nil, false
	}
	return &app{cfg: cfg, logger: logger, client: client, db: database}, remaining, true
}

// session restores the CLI login state from the local database.
func (a *app) session(ctx context.Context) (*auth.Session, error) {
	store := a.db.Scope(cliScope)
	a.logger.Debug("loading session", zap.String("scope", store.Name()))
	sess := auth.NewSession(a.client, store, a.logger)
	if err := sess.Init(ctx); err != nil {
		return nil, err
	}
	return sess, nil
}

func runQuestions(args []string, out, errOut io.Writer, random bool) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()

	flags := map[string]string{}
	for _, key := range []string{filter.KeyExams, filter.KeySubjects, filter.KeyYears, filter.KeyQuery} {
		var val string
		var err error
		val, remaining, err = extractFlag(remaining, key, "")
		if err != nil {
			fmt.Fprintln(errOut, err)
			return 1
		}
		flags[key] = val
	}
	pageRaw, remaining, err := extractFlag(remaining, "page", "1")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	format, remaining, err := extractFlag(remaining, "format", "text")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	reveal, remaining := extractBool(remaining, "reveal")
	if len(remaining) > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(remaining, " "))
		return 1
	}
	page, err := strconv.Atoi(pageRaw)
	if err != nil || page < 1 {
		fmt.Fprintf(errOut, "invalid page: %s\n", pageRaw)
		return 1
	}

	var apiQuery string
	form := filter.NewForm(url.Values{}, nil, func(q string) { apiQuery = q })
	if flags[filter.KeyExams] != "" || flags[filter.KeySubjects] != "" || flags[filter.KeyYears] != "" {
		form.SetExams([]string{flags[filter.KeyExams]})
		form.SetSubjects([]string{flags[filter.KeySubjects]})
		form.SetYears([]string{flags[filter.KeyYears]})
	}
	form.SetQuery(flags[filter.KeyQuery])
	form.Submit()

	ctx := context.Background()
	var questions []api.Question
	if random {
		questions, err = a.client.RandomQuestions(ctx, apiQuery)
	} else {
		questions, err = a.client.ListQuestions(ctx, apiQuery)
	}
	if err != nil {
		fmt.Fprintln(errOut, describeAPIError(err))
		return 1
	}

	if random {
		return writeQuestions(out, errOut, format, apiQuery, 1, 1, questions, 0, questions, reveal, nil)
	}

	totalPages := pagination.PageCount(len(questions), cliPerPage)
	window := pagination.New(totalPages, cliWindowSize, 0, func(p int) {
		a.logger.Debug("questions page", zap.Int("page", p+1), zap.Int("pages", totalPages))
	})
	if page > 1 && !window.GoTo(page-1) {
		fmt.Fprintf(errOut, "page %d is out of range (1-%d)\n", page, max(totalPages, 1))
		return 1
	}
	offset := window.Current() * cliPerPage
	pageItems := questions[offset:min(offset+cliPerPage, len(questions))]
	return writeQuestions(out, errOut, format, apiQuery, window.Current()+1, totalPages, questions, offset, pageItems, reveal, window)
}

func writeQuestions(out, errOut io.Writer, format, apiQuery string, page, totalPages int, all []api.Question, offset int, items []api.Question, reveal bool, window *pagination.Window) int {
	var err error
	switch strings.ToLower(format) {
	case "text":
		err = export.ExportQuestionsText(out, offset, items, reveal)
		if err == nil && window != nil && len(items) > 0 {
			_, err = fmt.Fprintln(out, export.PagerLine(window))
		}
	case "json":
		err = export.ExportQuestionsJSON(out, apiQuery, page, totalPages, len(all), items)
	case "csv":
		err = export.ExportQuestionsCSV(out, items)
	default:
		fmt.Fprintf(errOut, "unknown format: %s\n", format)
		return 1
	}
	if err != nil {
		fmt.Fprintf(errOut, "write questions: %v\n", err)
		return 1
	}
	return 0
}

func runQuestion(args []string, out, errOut io.Writer) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()

	format, remaining, err := extractFlag(remaining, "format", "text")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	reveal, remaining := extractBool(remaining, "reveal")
	if len(remaining) != 1 {
		fmt.Fprintln(errOut, "question requires a question id")
		return 1
	}
	id := remaining[0]

	ctx := context.Background()
	q, err := a.client.Question(ctx, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			fmt.Fprintf(errOut, "question %s not found\n", id)
			return 1
		}
		fmt.Fprintln(errOut, describeAPIError(err))
		return 1
	}

	switch strings.ToLower(format) {
	case "text":
		err = export.ExportQuestionText(out, q, reveal)
	case "json":
		err = export.ExportQuestionJSON(out, q)
	default:
		fmt.Fprintf(errOut, "unknown format: %s\n", format)
		return 1
	}
	if err != nil {
		fmt.Fprintf(errOut, "write question: %v\n", err)
		return 1
	}

	issueURL, err := a.client.IncorrectQuestionURL(ctx, id)
	switch {
	case err == nil && issueURL != "":
		fmt.Fprintf(errOut, "reported issue: %s\n", issueURL)
	case err != nil && !errors.Is(err, api.ErrNotFound):
		a.logger.Warn("incorrect question url", zap.Error(err))
	}
	return 0
}

func runMetadata(args []string, out, errOut io.Writer) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()

	format, remaining, err := extractFlag(remaining, "format", "text")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(remaining) > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(remaining, " "))
		return 1
	}
	md, err := a.client.Metadata(context.Background())
	if err != nil {
		fmt.Fprintln(errOut, describeAPIError(err))
		return 1
	}
	switch strings.ToLower(format) {
	case "text":
		err = export.ExportMetadataText(out, md)
	case "json":
		err = export.ExportMetadataJSON(out, md)
	default:
		fmt.Fprintf(errOut, "unknown format: %s\n", format)
		return 1
	}
	if err != nil {
		fmt.Fprintf(errOut, "write metadata: %v\n", err)
		return 1
	}
	return 0
}

func runReport(args []string, out, errOut io.Writer) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()

	if len(remaining) < 2 {
		fmt.Fprintln(errOut, "report requires a question id and comments")
		return 1
	}
	id := remaining[0]
	comments := strings.TrimSpace(strings.Join(remaining[1:], " "))
	if comments == "" {
		fmt.Fprintln(errOut, "report comments are required")
		return 1
	}

	ctx := context.Background()
	sess, err := a.session(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "load session: %v\n", err)
		return 1
	}
	token, err := sess.AccessToken(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "access token: %v\n", err)
		return 1
	}
	if token == "" {
		fmt.Fprintln(errOut, "not logged in; run pastyears login first")
		return 1
	}
	tracking, err := a.client.ReportIncorrectQuestion(api.WithAccessToken(ctx, token), id, comments)
	if err != nil {
		fmt.Fprintln(errOut, describeAPIError(err))
		return 1
	}
	fmt.Fprintf(out, "reported question %s: %s\n", id, tracking)
	return 0
}

func runLogin(args []string, out, errOut io.Writer) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()

	email, remaining, err := extractFlag(remaining, "email", "")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	password, remaining, err := extractFlag(remaining, "password", os.Getenv("PASTYEARS_PASSWORD"))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(remaining) > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(remaining, " "))
		return 1
	}

	ctx := context.Background()
	sess, err := a.session(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "load session: %v\n", err)
		return 1
	}
	if err := sess.Login(ctx, email, password); err != nil {
		var fieldErr *auth.FieldError
		switch {
		case errors.As(err, &fieldErr):
			fmt.Fprintf(errOut, "--%s is required\n", fieldErr.Field)
		case errors.Is(err, api.ErrUnauthorized):
			fmt.Fprintln(errOut, "Incorrect email or password.")
		default:
			fmt.Fprintln(errOut, describeAPIError(err))
		}
		return 1
	}
	fmt.Fprintf(out, "logged in as %s\n", sess.DisplayName())
	return 0
}

func runSignUp(args []string, out, errOut io.Writer) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()

	email, remaining, err := extractFlag(remaining, "email", "")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	name, remaining, err := extractFlag(remaining, "name", "")
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	password, remaining, err := extractFlag(remaining, "password", os.Getenv("PASTYEARS_PASSWORD"))
	if err != nil {
		fmt.Fprintln(errOut, err)
		return 1
	}
	if len(remaining) > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(remaining, " "))
		return 1
	}

	sess := auth.NewSession(a.client, a.db.Scope(cliScope), a.logger)
	if err := sess.SignUp(context.Background(), email, name, password); err != nil {
		var fieldErr *auth.FieldError
		switch {
		case errors.As(err, &fieldErr):
			fmt.Fprintf(errOut, "%s is required\n", fieldErr.Field)
		case errors.Is(err, api.ErrUserAlreadyExists):
			fmt.Fprintln(errOut, "A user with that email already exists.")
		default:
			fmt.Fprintln(errOut, describeAPIError(err))
		}
		return 1
	}
	fmt.Fprintf(out, "signed up %s; run pastyears login to continue\n", email)
	return 0
}

func runLogout(args []string, out, errOut io.Writer) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()
	if len(remaining) > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(remaining, " "))
		return 1
	}

	ctx := context.Background()
	sess, err := a.session(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "load session: %v\n", err)
		return 1
	}
	loggedIn := sess.IsLoggedIn()
	if loggedIn {
		if err := sess.Logout(ctx); err != nil {
			fmt.Fprintln(errOut, describeAPIError(err))
			return 1
		}
	}
	// Drop anything a half-finished login left behind.
	cleared, err := a.db.ClearScope(ctx, cliScope)
	if err != nil {
		fmt.Fprintf(errOut, "clear session: %v\n", err)
		return 1
	}
	a.logger.Debug("cleared session scope", zap.String("scope", cliScope), zap.Int64("keys", cleared))
	if !loggedIn {
		fmt.Fprintln(out, "not logged in")
		return 0
	}
	fmt.Fprintln(out, "logged out")
	return 0
}

func runWhoAmI(args []string, out, errOut io.Writer) int {
	a, remaining, ok := setup(args, errOut)
	if !ok {
		return 1
	}
	defer a.Close()
	showKeys, remaining := extractBool(remaining, "keys")
	if len(remaining) > 0 {
		fmt.Fprintf(errOut, "unexpected arguments: %s\n", strings.Join(remaining, " "))
		return 1
	}

	ctx := context.Background()
	sess, err := a.session(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "load session: %v\n", err)
		return 1
	}
	if user, ok := sess.User(); ok {
		fmt.Fprintf(out, "%s <%s>\n", user.DisplayName, user.Email)
	} else {
		fmt.Fprintln(out, "not logged in")
	}
	if !showKeys {
		return 0
	}

	// Values hold tokens, so only keys and timestamps are shown.
	entries, err := a.db.ListKeys(ctx, cliScope)
	if err != nil {
		fmt.Fprintf(errOut, "list session keys: %v\n", err)
		return 1
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s\t%s\n", e.Key, e.UpdatedAt.UTC().Format(time.RFC3339))
	}
	return 0
}

// describeAPIError turns an API failure into a one-line message.
func describeAPIError(err error) string {
	if api.IsNetwork(err) {
		return "Check your internet connection: " + err.Error()
	}
	if id := api.RequestID(err); id != "" {
		return fmt.Sprintf("Something went wrong (request id %s): %v", id, err)
	}
	return "Something went wrong: " + err.Error()
}

// extractFlag finds a string flag (e.g., --db value) anywhere in args and returns its value and remaining args.
func extractFlag(args []string, name string, defaultVal string) (string, []string, error) {
	val := defaultVal
	var remaining []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--"+name || arg == "-"+name {
			if i+1 >= len(args) {
				return "", nil, fmt.Errorf("%s flag requires a value", arg)
			}
			val = args[i+1]
			i++
			continue
		}
		if v, ok := strings.CutPrefix(arg, "--"+name+"="); ok {
			val = v
			continue
		}
		remaining = append(remaining, arg)
	}
	return val, remaining, nil
}

// extractBool removes a boolean switch from args and reports whether it was present.
func extractBool(args []string, name string) (bool, []string) {
	found := false
	var remaining []string
	for _, arg := range args {
		if arg == "--"+name || arg == "-"+name {
			found = true
			continue
		}
		remaining = append(remaining, arg)
	}
	return found, remaining
}
