// Package router tracks the active view and resolves deep links to scan records.
package router

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lingua-health/lingua/internal/model"
)

// View names one screen of the application.
type View string

// Views.
const (
	Auth      View = "auth"
	Dashboard View = "dashboard"
	Scanner   View = "scanner"
	History   View = "history"
	Result    View = "result"
	Profile   View = "profile"
	Settings  View = "settings"
)

// Views lists every view in menu order.
var Views = []View{Auth, Dashboard, Scanner, History, Result, Profile, Settings}

// FragmentPrefix starts every scan deep link.
const FragmentPrefix = "#scan-"

var (
	// ErrUnknownView is returned for names outside the view enumeration.
	ErrUnknownView = errors.New("unknown view")
	// ErrNoFocus is returned when entering the result view without a record.
	ErrNoFocus = errors.New("result view needs a focused record")
)

// ParseView converts a name into a View.
func ParseView(name string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Views {
		if v == known {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownView, name)
}

// Target is a resolved navigation destination.
type Target struct {
	View     View
	RecordID string
}

// Finder looks up scan records by id.
type Finder interface {
	FindByID(id string) (model.ScanRecord, bool)
}

// Fragment returns the deep-link fragment for a record id.
func Fragment(id string) string {
	return FragmentPrefix + id
}

// FragmentOf extracts the fragment from a bare fragment or a full link.
func FragmentOf(link string) string {
	link = strings.TrimSpace(link)
	i := strings.LastIndex(link, "#")
	if i < 0 {
		return ""
	}
	return link[i:]
}

// Resolve maps a fragment to the result view of an existing record. It
// reports false for fragments that do not name a scan or name an unknown one.
func Resolve(fragment string, finder Finder) (Target, bool) {
	if !strings.HasPrefix(fragment, FragmentPrefix) {
		return Target{}, false
	}
	id := strings.TrimPrefix(fragment, FragmentPrefix)
	if id == "" || finder == nil {
		return Target{}, false
	}
	if _, ok := finder.FindByID(id); !ok {
		return Target{}, false
	}
	return Target{View: Result, RecordID: id}, true
}

// InitialView picks the first view of a session.
func InitialView(hasProfile bool, deepLink bool) View {
	switch {
	case !hasProfile:
		return Auth
	case deepLink:
		return Result
	default:
		return Dashboard
	}
}

// Router is the view state machine. Only the result view carries a focused
// record, referenced by id.
type Router struct {
	view    View
	focused string
}

// New returns a router in the given view.
func New(initial View) *Router {
	return &Router{view: initial}
}

// View returns the current view.
func (r *Router) View() View {
	return r.view
}

// Focused returns the id of the record shown in the result view.
func (r *Router) Focused() string {
	return r.focused
}

// Navigate moves to view. Entering the result view requires a focus;
// leaving it drops the focus.
func (r *Router) Navigate(view View) error {
	if _, err := ParseView(string(view)); err != nil {
		return err
	}
	if view == Result {
		if r.focused == "" {
			return ErrNoFocus
		}
		r.view = Result
		return nil
	}
	r.view = view
	r.focused = ""
	return nil
}

// Open moves to the result view focused on id.
func (r *Router) Open(id string) error {
	if id == "" {
		return ErrNoFocus
	}
	r.focused = id
	r.view = Result
	return nil
}

// Apply moves to a resolved target.
func (r *Router) Apply(t Target) error {
	if t.View == Result {
		return r.Open(t.RecordID)
	}
	return r.Navigate(t.View)
}

// Reset moves to view unconditionally and drops the focus.
func (r *Router) Reset(view View) {
	r.view = view
	r.focused = ""
}
