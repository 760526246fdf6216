// Package session composes the store, repository, router, and localization
// cache into the single controller the presentation layer drives.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/lingua-health/lingua/internal/analysis"
	"github.com/lingua-health/lingua/internal/i18n"
	"github.com/lingua-health/lingua/internal/ident"
	"github.com/lingua-health/lingua/internal/model"
	"github.com/lingua-health/lingua/internal/router"
	"github.com/lingua-health/lingua/internal/scans"
	"github.com/lingua-health/lingua/internal/stats"
	"github.com/lingua-health/lingua/internal/store"
)

const idAttempts = 3

var (
	// ErrBusy is returned when an analysis or chat request is already running.
	ErrBusy = errors.New("operation already in progress")
	// ErrNotLoggedIn is returned for operations that need a profile.
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrInvalidProfile is returned when login details are missing.
	ErrInvalidProfile = errors.New("name and email are required")
	// ErrRecordNotFound is returned when selecting an unknown record.
	ErrRecordNotFound = errors.New("scan record not found")
	// ErrCollision is returned when no unused record id could be generated.
	ErrCollision = errors.New("could not generate a unique scan id")
	// ErrUnavailable is returned when a collaborator is not configured.
	ErrUnavailable = errors.New("service not configured")
)

// Options wires the controller's collaborators. Store is required; every
// other field has a default.
type Options struct {
	Store      store.KV
	Analyzer   analysis.Analyzer
	Translator i18n.Translator
	Chatter    analysis.Chatter
	IDs        ident.Generator
	Clock      func() time.Time
	TimeZone   *time.Location
	Location   *router.Location
	Logger     *log.Logger

	// DefaultLanguage is the language of the built-in dictionary.
	DefaultLanguage string
	// StartupLanguage is applied for visitors without a saved preference,
	// typically derived from the environment locale.
	StartupLanguage string
	// ShareURL prefixes deep links produced by ShareLink.
	ShareURL    string
	TrendWindow int
}

// Notice is a localized, dismissible message. A newer notice replaces the
// current one.
type Notice struct {
	Key  string
	Text string
}

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one line of the transient result conversation.
type ChatMessage struct {
	Role string
	Text string
}

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Profile     *model.UserProfile
	View        router.View
	FocusedID   string
	Language    string
	RTL         bool
	Analyzing   bool
	Translating bool
	Chatting    bool
	Notice      *Notice
	Chat        []ChatMessage
	Fragment    string
	Records     int
}

// Controller is the serialized-access façade over the session. The mutex is
// never held across analyzer, translator, or chatter calls.
type Controller struct {
	mu sync.Mutex

	kv       store.KV
	analyzer analysis.Analyzer
	chatter  analysis.Chatter
	ids      ident.Generator
	clock    func() time.Time
	tz       *time.Location
	location *router.Location
	logger   *log.Logger
	shareURL string
	window   int
	startup  string
	// epoch counts logouts so late results can tell the session moved on.
	epoch uint64

	repo    *scans.Repository
	cache   *i18n.Cache
	router  *router.Router
	profile *model.UserProfile

	analyzing bool
	chatting  bool
	notice    *Notice
	chat      []ChatMessage
	chatSeq   uint64
}

// New loads the profile and scan history and picks the initial view. A deep
// link present in the location is honoured only when a profile exists.
func New(ctx context.Context, opts Options) (*Controller, error) {
	if opts.Store == nil {
		return nil, errors.New("session store is nil")
	}
	c := &Controller{
		kv:       opts.Store,
		analyzer: opts.Analyzer,
		chatter:  opts.Chatter,
		ids:      opts.IDs,
		clock:    opts.Clock,
		tz:       opts.TimeZone,
		location: opts.Location,
		logger:   opts.Logger,
		shareURL: strings.TrimSpace(opts.ShareURL),
		window:   opts.TrendWindow,
	}
	if c.ids == nil {
		c.ids = ident.Random{}
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	if c.tz == nil {
		c.tz = time.Local
	}
	if c.location == nil {
		c.location = router.NewLocation("")
	}
	if c.logger == nil {
		c.logger = log.Default()
	}
	if c.window <= 0 {
		c.window = stats.DefaultTrendWindow
	}
	def := opts.DefaultLanguage
	if def == "" {
		def = model.DefaultLanguage
	}
	c.cache = i18n.NewCache(def, opts.Translator)
	c.repo = scans.Load(ctx, c.kv, c.logger)

	var profile model.UserProfile
	if store.LoadJSON(ctx, c.kv, store.KeyProfile, &profile, c.logger) && profile.Name != "" {
		c.profile = &profile
	}

	target, linked := router.Resolve(c.location.Fragment(), c.repo)
	linked = linked && c.profile != nil
	c.router = router.New(router.InitialView(c.profile != nil, linked))
	if linked {
		if err := c.router.Apply(target); err != nil {
			c.router.Reset(router.Dashboard)
		}
	}

	switch {
	case c.profile != nil && c.profile.PreferredLanguage != "":
		c.startup = i18n.Normalize(c.profile.PreferredLanguage)
	case c.profile == nil:
		c.startup = i18n.Normalize(opts.StartupLanguage)
	}
	if c.startup == c.cache.Default() {
		c.startup = ""
	}
	return c, nil
}

// StartupLanguage returns the language to switch to once the UI is running,
// or "" when the default applies.
func (c *Controller) StartupLanguage() string {
	return c.startup
}

// Location returns the fragment holder the controller observes.
func (c *Controller) Location() *router.Location {
	return c.location
}

// T resolves a UI string for the active language.
func (c *Controller) T(key string) string {
	return c.cache.Lookup(key)
}

// Format resolves a UI string and expands its placeholders.
func (c *Controller) Format(key string, vars map[string]string) string {
	return c.cache.Format(key, vars)
}

// State returns a snapshot of the session.
func (c *Controller) State() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	lang := c.cache.Active()
	s := Snapshot{
		View:        c.router.View(),
		FocusedID:   c.router.Focused(),
		Language:    lang,
		RTL:         i18n.IsRTL(lang),
		Analyzing:   c.analyzing,
		Translating: c.cache.Translating(),
		Chatting:    c.chatting,
		Fragment:    c.location.Fragment(),
		Records:     c.repo.Len(),
	}
	if c.profile != nil {
		p := *c.profile
		s.Profile = &p
	}
	if c.notice != nil {
		n := *c.notice
		s.Notice = &n
	}
	if len(c.chat) > 0 {
		s.Chat = append([]ChatMessage(nil), c.chat...)
	}
	return s
}

// DismissNotice clears the current notice.
func (c *Controller) DismissNotice() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notice = nil
}

func (c *Controller) setNotice(key string) {
	c.notice = &Notice{Key: key, Text: c.cache.Lookup(key)}
}

func (c *Controller) logf(format string, args ...any) {
	c.logger.Printf(format, args...)
}

// resetChat drops the conversation and orphans any pending reply.
func (c *Controller) resetChat() {
	c.chat = nil
	c.chatSeq++
}

// Login stores a new profile carrying the active language and leaves the auth
// view, honouring a pending deep link.
func (c *Controller) Login(ctx context.Context, name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	c.mu.Lock()
	defer c.mu.Unlock()
	if name == "" || email == "" {
		c.setNotice("invalidProfile")
		return ErrInvalidProfile
	}
	profile := model.UserProfile{
		ID:                c.ids.NewID(),
		Name:              name,
		Email:             email,
		PreferredLanguage: c.cache.Active(),
	}
	if err := store.SaveJSON(ctx, c.kv, store.KeyProfile, profile); err != nil {
		c.logf("failed to save profile: %v", err)
		c.setNotice("error")
		return err
	}
	c.profile = &profile
	c.notice = nil
	if target, ok := router.Resolve(c.location.Fragment(), c.repo); ok {
		if err := c.router.Apply(target); err == nil {
			return nil
		}
	}
	c.router.Reset(router.Dashboard)
	return nil
}

// Logout forgets the profile and returns to the auth view in the default
// language.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var err error
	if rerr := c.kv.Remove(ctx, store.KeyProfile); rerr != nil {
		c.logf("failed to remove profile: %v", rerr)
		err = rerr
	}
	c.profile = nil
	c.epoch++
	c.cache.Reset()
	c.location.Clear()
	c.router.Reset(router.Auth)
	c.resetChat()
	c.notice = nil
	return err
}

// ChangeLanguage switches the UI language. The default language applies
// synchronously. A failed translation keeps the previous language and records
// a notice. A successful change is saved to the profile.
func (c *Controller) ChangeLanguage(ctx context.Context, tag string) error {
	err := c.cache.SetLanguage(ctx, tag)
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case errors.Is(err, i18n.ErrSuperseded):
		return nil
	case err != nil:
		c.logf("language change to %s failed: %v", tag, err)
		c.setNotice("translateError")
		return err
	}
	if c.profile == nil {
		return nil
	}
	lang := c.cache.Active()
	if c.profile.PreferredLanguage == lang {
		return nil
	}
	updated := *c.profile
	updated.PreferredLanguage = lang
	if serr := store.SaveJSON(ctx, c.kv, store.KeyProfile, updated); serr != nil {
		c.logf("failed to save language preference: %v", serr)
		return nil
	}
	c.profile = &updated
	return nil
}

// SubmitScan analyzes image, stores the new record, and shows it. On failure
// the view is unchanged and a notice explains what happened. A second
// submission while one is running is rejected with ErrBusy.
func (c *Controller) SubmitScan(ctx context.Context, image string) (model.ScanRecord, error) {
	c.mu.Lock()
	switch {
	case c.profile == nil:
		c.mu.Unlock()
		return model.ScanRecord{}, ErrNotLoggedIn
	case c.analyzing:
		c.setNotice("busy")
		c.mu.Unlock()
		return model.ScanRecord{}, ErrBusy
	case c.analyzer == nil:
		c.setNotice("error")
		c.mu.Unlock()
		return model.ScanRecord{}, ErrUnavailable
	}
	c.analyzing = true
	lang := c.cache.Active()
	epoch := c.epoch
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.analyzing = false
		c.mu.Unlock()
	}()

	result, err := c.analyzer.Analyze(ctx, image, lang)
	if err == nil {
		err = result.Validate()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logf("analysis failed: %v", err)
		c.setNotice(noticeFor(err))
		return model.ScanRecord{}, err
	}
	rec := model.ScanRecord{
		Timestamp: c.clock(),
		Image:     image,
		Results:   result,
		Summary: c.cache.Format("summary", map[string]string{
			"color":   result.Color,
			"texture": result.Texture,
		}),
	}
	for attempt := 0; attempt < idAttempts; attempt++ {
		rec.ID = c.ids.NewID()
		err = c.repo.Insert(ctx, rec)
		if !errors.Is(err, scans.ErrDuplicateID) {
			break
		}
		c.logf("scan id %q collided, regenerating", rec.ID)
	}
	switch {
	case errors.Is(err, scans.ErrDuplicateID):
		c.setNotice("collision")
		return model.ScanRecord{}, fmt.Errorf("%w: %v", ErrCollision, err)
	case err != nil:
		c.logf("failed to save scan: %v", err)
		c.setNotice("error")
		return model.ScanRecord{}, err
	}
	if epoch != c.epoch {
		c.logf("scan %s finished after logout; kept in history only", rec.ID)
		return rec, nil
	}
	c.focus(rec.ID)
	return rec, nil
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, analysis.ErrQuotaExceeded):
		return "quota"
	case errors.Is(err, analysis.ErrInvalidResult):
		return "invalidResult"
	case errors.Is(err, analysis.ErrUnsupportedImage):
		return "invalidImage"
	default:
		return "error"
	}
}

// focus shows id in the result view and publishes its deep link.
func (c *Controller) focus(id string) {
	if c.router.Focused() != id {
		c.resetChat()
	}
	if err := c.router.Open(id); err != nil {
		c.logf("open %s: %v", id, err)
		return
	}
	c.location.Set(router.Fragment(id))
}

// NavigateTo switches views. Leaving the result view drops its focus and
// conversation.
func (c *Controller) NavigateTo(view router.View) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil && view != router.Auth {
		return ErrNotLoggedIn
	}
	leaving := c.router.View() == router.Result
	if err := c.router.Navigate(view); err != nil {
		return err
	}
	if view != router.Result {
		c.resetChat()
		if leaving {
			c.location.Clear()
		}
	}
	return nil
}

// SelectHistoricalRecord shows a stored record.
func (c *Controller) SelectHistoricalRecord(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.profile == nil {
		return ErrNotLoggedIn
	}
	if _, ok := c.repo.FindByID(id); !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	c.focus(id)
	return nil
}

// BackToHistory leaves the result view for the history list.
func (c *Controller) BackToHistory() error {
	return c.NavigateTo(router.History)
}

// HandleFragment reacts to a location change: it re-reads the history, which
// another process may have written, and opens the linked record. Fragments
// that resolve to nothing are ignored. Without a profile the link stays
// pending until login.
func (c *Controller) HandleFragment(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repo.Reload(ctx)
	if c.profile == nil {
		return false
	}
	target, ok := router.Resolve(c.location.Fragment(), c.repo)
	if !ok {
		return false
	}
	if target.RecordID != c.router.Focused() {
		c.resetChat()
	}
	if err := c.router.Apply(target); err != nil {
		c.logf("apply deep link: %v", err)
		return false
	}
	return true
}

// Ask sends a question about the focused result and appends both sides of the
// exchange to the conversation. A failed call appends a localized apology.
func (c *Controller) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	c.mu.Lock()
	rec, ok := c.repo.FindByID(c.router.Focused())
	switch {
	case question == "":
		c.mu.Unlock()
		return "", errors.New("question is empty")
	case c.router.View() != router.Result || !ok:
		c.mu.Unlock()
		return "", router.ErrNoFocus
	case c.chatting:
		c.mu.Unlock()
		return "", ErrBusy
	}
	c.chatting = true
	c.chat = append(c.chat, ChatMessage{Role: RoleUser, Text: question})
	seq := c.chatSeq
	lang := c.cache.Active()
	chatter := c.chatter
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.chatting = false
		c.mu.Unlock()
	}()

	var answer string
	err := ErrUnavailable
	if chatter != nil {
		answer, err = chatter.Chat(ctx, question, rec.Results, lang)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logf("chat failed: %v", err)
		answer = c.cache.Lookup("chatError")
	}
	if seq == c.chatSeq {
		c.chat = append(c.chat, ChatMessage{Role: RoleAssistant, Text: answer})
	}
	return answer, err
}

// Focused returns the record shown in the result view.
func (c *Controller) Focused() (model.ScanRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repo.FindByID(c.router.Focused())
}

// Previous returns the record just older than the focused one.
func (c *Controller) Previous() (model.ScanRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repo.PreviousOf(c.router.Focused())
}

// History returns the records, newest first.
func (c *Controller) History() []model.ScanRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repo.All()
}

// ShareLink returns the deep link of the focused record.
func (c *Controller) ShareLink() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.router.Focused()
	if id == "" {
		return "", false
	}
	if c.shareURL == "" {
		return router.Fragment(id), true
	}
	return strings.TrimRight(c.shareURL, "#/") + "/" + router.Fragment(id), true
}

// Dashboard is the data behind the dashboard view.
type Dashboard struct {
	stats.Report
	Welcome string
	Latest  *model.ScanRecord
}

// Dashboard summarizes the history for the dashboard view.
func (c *Controller) Dashboard() Dashboard {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := Dashboard{Report: stats.BuildReport(c.repo.All(), c.window, c.clock(), c.tz)}
	if c.profile != nil {
		d.Welcome = c.cache.Format("welcome", map[string]string{"name": c.profile.Name})
	}
	if latest, ok := c.repo.Latest(); ok {
		d.Latest = &latest
	}
	return d
}
