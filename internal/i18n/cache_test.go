package i18n

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type stubTranslator struct {
	mu    sync.Mutex
	calls []string
	dicts map[string]map[string]string
	err   error
	gates map[string]chan struct{}
}

func (s *stubTranslator) Translate(ctx context.Context, lang string, source map[string]string) (map[string]string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, lang)
	gate := s.gates[lang]
	s.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(source) != len(Base) {
		return nil, errors.New("expected the full base dictionary")
	}
	return s.dicts[lang], nil
}

func (s *stubTranslator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func waitForCalls(t *testing.T, tr *stubTranslator, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for tr.callCount() < n {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d translation calls", n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestLookupFallbackChain(t *testing.T) {
	overlay := map[string]string{"home": "خانه", "back": ""}
	tests := []struct {
		key  string
		want string
	}{
		{"home", "خانه"},
		{"back", "Back"},
		{"history", "History"},
		{"no-such-key", "no-such-key"},
	}
	for _, tt := range tests {
		if got := Lookup(overlay, tt.key); got != tt.want {
			t.Fatalf("Lookup(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
	if got := Lookup(nil, ""); got != MissingKey {
		t.Fatalf("Lookup of an empty key = %q, want %q", got, MissingKey)
	}
	for key := range Base {
		if Lookup(nil, key) == "" {
			t.Fatalf("expected non-empty value for %q", key)
		}
	}
}

func TestExpand(t *testing.T) {
	got := Expand(Base["summary"], map[string]string{"color": "pale pink", "texture": "smooth"})
	if got != "Analysis shows pale pink color with smooth texture." {
		t.Fatalf("unexpected expansion %q", got)
	}
	if Expand("plain", nil) != "plain" {
		t.Fatalf("expected plain text untouched")
	}
}

func TestSetLanguageDefaultIsSynchronous(t *testing.T) {
	tr := &stubTranslator{dicts: map[string]map[string]string{"fa": {"home": "خانه"}}}
	c := NewCache("en", tr)
	ctx := context.Background()
	if err := c.SetLanguage(ctx, "fa"); err != nil {
		t.Fatalf("set fa: %v", err)
	}
	if err := c.SetLanguage(ctx, "en"); err != nil {
		t.Fatalf("set en: %v", err)
	}
	if c.Active() != "en" {
		t.Fatalf("expected en active, got %s", c.Active())
	}
	if len(c.Overlay()) != 0 {
		t.Fatalf("expected empty overlay, got %v", c.Overlay())
	}
	if tr.callCount() != 1 {
		t.Fatalf("expected only the fa request, got %d calls", tr.callCount())
	}
}

func TestSetLanguageAppliesOverlayAndCaches(t *testing.T) {
	tr := &stubTranslator{dicts: map[string]map[string]string{
		"fa": {"home": "خانه", "unknown": "x", "back": ""},
	}}
	c := NewCache("en-US", tr)
	ctx := context.Background()
	if err := c.SetLanguage(ctx, "fa-IR"); err != nil {
		t.Fatalf("set fa: %v", err)
	}
	if c.Active() != "fa" {
		t.Fatalf("expected fa active, got %s", c.Active())
	}
	if want := map[string]string{"home": "خانه"}; !reflect.DeepEqual(c.Overlay(), want) {
		t.Fatalf("unexpected overlay %v", c.Overlay())
	}
	if c.Lookup("back") != "Back" {
		t.Fatalf("expected base fallback for an omitted key")
	}
	_ = c.SetLanguage(ctx, "en")
	if err := c.SetLanguage(ctx, "fa"); err != nil {
		t.Fatalf("set fa again: %v", err)
	}
	if tr.callCount() != 1 {
		t.Fatalf("expected cached overlay to be reused, got %d calls", tr.callCount())
	}
}

func TestSetLanguageFailureKeepsPreviousState(t *testing.T) {
	tr := &stubTranslator{dicts: map[string]map[string]string{"de": {"home": "Startseite"}}}
	c := NewCache("en", tr)
	ctx := context.Background()
	if err := c.SetLanguage(ctx, "de"); err != nil {
		t.Fatalf("set de: %v", err)
	}
	before := c.Overlay()

	tr.err = errors.New("service unavailable")
	if err := c.SetLanguage(ctx, "fa"); err == nil {
		t.Fatalf("expected translation error")
	}
	if c.Active() != "de" {
		t.Fatalf("expected de to stay active, got %s", c.Active())
	}
	if !reflect.DeepEqual(c.Overlay(), before) {
		t.Fatalf("overlay changed after failure: %v", c.Overlay())
	}
	if c.Translating() {
		t.Fatalf("expected translating to be released")
	}
}

func TestSetLanguageLastIssuedWins(t *testing.T) {
	slow := make(chan struct{})
	tr := &stubTranslator{
		dicts: map[string]map[string]string{
			"fa": {"home": "خانه"},
			"de": {"home": "Startseite"},
		},
		gates: map[string]chan struct{}{"fa": slow},
	}
	c := NewCache("en", tr)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- c.SetLanguage(ctx, "fa")
	}()
	waitForCalls(t, tr, 1)
	if !c.Translating() {
		t.Fatalf("expected translating while fa is pending")
	}
	if err := c.SetLanguage(ctx, "de"); err != nil {
		t.Fatalf("set de: %v", err)
	}
	close(slow)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded error, got %v", err)
	}
	if c.Active() != "de" || c.Lookup("home") != "Startseite" {
		t.Fatalf("stale response overwrote newer language: active=%s home=%s", c.Active(), c.Lookup("home"))
	}
	if c.Translating() {
		t.Fatalf("expected translating to be released")
	}
}

func TestSupersededFailureIsNotReported(t *testing.T) {
	slow := make(chan struct{})
	tr := &stubTranslator{
		err:   errors.New("network down"),
		gates: map[string]chan struct{}{"fa": slow},
	}
	c := NewCache("en", tr)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- c.SetLanguage(ctx, "fa")
	}()
	waitForCalls(t, tr, 1)
	if err := c.SetLanguage(ctx, "en"); err != nil {
		t.Fatalf("set en: %v", err)
	}
	close(slow)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected a failed stale request to report ErrSuperseded, got %v", err)
	}
	if c.Active() != "en" {
		t.Fatalf("expected en to stay active, got %s", c.Active())
	}
	if c.Translating() {
		t.Fatalf("expected translating to be released")
	}
}

func TestResetDiscardsPendingTranslation(t *testing.T) {
	slow := make(chan struct{})
	tr := &stubTranslator{
		dicts: map[string]map[string]string{"fa": {"home": "خانه"}},
		gates: map[string]chan struct{}{"fa": slow},
	}
	c := NewCache("en", tr)
	done := make(chan error, 1)
	go func() {
		done <- c.SetLanguage(context.Background(), "fa")
	}()
	waitForCalls(t, tr, 1)
	c.Reset()
	close(slow)
	if err := <-done; !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected superseded error, got %v", err)
	}
	if c.Active() != "en" {
		t.Fatalf("expected en after reset, got %s", c.Active())
	}
}

func TestSetLanguageWithoutTranslator(t *testing.T) {
	c := NewCache("en", nil)
	if err := c.SetLanguage(context.Background(), "fa"); !errors.Is(err, ErrNoTranslator) {
		t.Fatalf("expected ErrNoTranslator, got %v", err)
	}
	if c.Active() != "en" {
		t.Fatalf("expected en to stay active")
	}
}

func TestIsRTL(t *testing.T) {
	if !IsRTL("fa-IR") || !IsRTL("ar") {
		t.Fatalf("expected fa and ar to be RTL")
	}
	if IsRTL("en") {
		t.Fatalf("expected en to be LTR")
	}
	if l, ok := FindLanguage("FA"); !ok || l.Name != "Persian" {
		t.Fatalf("expected Persian entry, got %+v", l)
	}
}
