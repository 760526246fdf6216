// Package tui provides the Bubble Tea interface over a session controller.
package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lingua-health/lingua/internal/analysis"
	"github.com/lingua-health/lingua/internal/i18n"
	"github.com/lingua-health/lingua/internal/router"
	"github.com/lingua-health/lingua/internal/session"
	"github.com/lingua-health/lingua/internal/stats"
)

const chartHeight = 8

var navViews = []router.View{router.Dashboard, router.Scanner, router.History, router.Profile, router.Settings}

var navKeys = map[router.View]string{
	router.Dashboard: "home",
	router.Scanner:   "newScan",
	router.History:   "history",
	router.Profile:   "profile",
	router.Settings:  "settings",
}

type (
	fragmentMsg     struct{}
	scanDoneMsg     struct{ err error }
	languageDoneMsg struct{ err error }
	chatDoneMsg     struct{ err error }
)

// Model implements the Bubble Tea UI. All state lives in the session
// controller; the model only keeps input widgets and view-local toggles.
type Model struct {
	ctx  context.Context
	ctrl *session.Controller
	tz   *time.Location

	width  int
	height int

	nameInput  textinput.Model
	emailInput textinput.Model
	authFocus  int
	pathInput  textinput.Model
	chatInput  textinput.Model
	linkInput  textinput.Model
	history    table.Model
	spinner    spinner.Model

	linkMode    bool
	chatFocused bool
	compare     bool
	showShare   bool
	langCursor  int
	scroll      int
	waiting     int
	flash       string

	fragments <-chan struct{}
	cancelSub func()
}

// NewModel constructs the UI over ctrl. Collaborator calls run with ctx.
func NewModel(ctx context.Context, ctrl *session.Controller, tz *time.Location) *Model {
	if tz == nil {
		tz = time.Local
	}
	m := &Model{
		ctx:        ctx,
		ctrl:       ctrl,
		tz:         tz,
		nameInput:  newInput(ctrl.T("name") + ": "),
		emailInput: newInput(ctrl.T("email") + ": "),
		pathInput:  newInput("> "),
		chatInput:  newInput("> "),
		linkInput:  newInput("> "),
		spinner:    spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(accentStyle)),
		history: table.New(
			table.WithFocused(true),
			table.WithHeight(10),
		),
	}
	m.history.SetStyles(historyTableStyles())
	m.nameInput.Focus()
	m.pathInput.Focus()
	m.fragments, m.cancelSub = ctrl.Location().Subscribe()
	m.refreshHistory()
	return m
}

func newInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 512
	return input
}

// Close ends the fragment subscription.
func (m *Model) Close() {
	m.cancelSub()
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{waitForFragment(m.fragments), textinput.Blink}
	if lang := m.ctrl.StartupLanguage(); lang != "" {
		cmds = append(cmds, m.changeLanguage(lang))
	}
	return tea.Batch(cmds...)
}

func waitForFragment(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return fragmentMsg{}
	}
}

func (m *Model) busy() bool {
	st := m.ctrl.State()
	return m.waiting > 0 || st.Analyzing || st.Translating || st.Chatting
}

func (m *Model) changeLanguage(tag string) tea.Cmd {
	m.waiting++
	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(func() tea.Msg {
		return languageDoneMsg{err: ctrl.ChangeLanguage(ctx, tag)}
	}, m.spinner.Tick)
}

func (m *Model) submitScan(path string) tea.Cmd {
	m.waiting++
	m.flash = ""
	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(func() tea.Msg {
		image, err := analysis.EncodeImageFile(path)
		if err != nil {
			return scanDoneMsg{err: err}
		}
		_, err = ctrl.SubmitScan(ctx, image)
		return scanDoneMsg{err: err}
	}, m.spinner.Tick)
}

func (m *Model) ask(question string) tea.Cmd {
	m.waiting++
	ctx, ctrl := m.ctx, m.ctrl
	return tea.Batch(func() tea.Msg {
		_, err := ctrl.Ask(ctx, question)
		return chatDoneMsg{err: err}
	}, m.spinner.Tick)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case fragmentMsg:
		before := m.ctrl.State().FocusedID
		if m.ctrl.HandleFragment(m.ctx) && m.ctrl.State().FocusedID != before {
			m.enterResult()
		}
		m.refreshHistory()
		return m, waitForFragment(m.fragments)
	case scanDoneMsg:
		m.waiting--
		if msg.err == nil {
			m.pathInput.Reset()
			m.enterResult()
			m.refreshHistory()
		} else if m.ctrl.State().Notice == nil {
			m.flash = m.ctrl.T("invalidImage")
		}
		return m, nil
	case languageDoneMsg:
		m.waiting--
		m.relabel()
		return m, nil
	case chatDoneMsg:
		m.waiting--
		return m, nil
	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "ctrl+o":
		return m.openLinkPrompt()
	}
	if m.linkMode {
		return m.updateLink(msg)
	}
	st := m.ctrl.State()
	if msg.String() == "esc" && (st.Notice != nil || m.flash != "") {
		m.ctrl.DismissNotice()
		m.flash = ""
		return m, nil
	}
	switch st.View {
	case router.Auth:
		return m.updateAuth(msg)
	case router.Scanner:
		return m.updateScanner(msg)
	case router.Result:
		if m.chatFocused {
			return m.updateChat(msg)
		}
	}
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "o":
		return m.openLinkPrompt()
	case "1", "2", "3", "4", "5":
		m.navigate(navViews[int(msg.String()[0]-'1')])
		return m, nil
	}
	switch st.View {
	case router.Dashboard:
		return m.updateDashboard(msg)
	case router.History:
		return m.updateHistory(msg)
	case router.Result:
		return m.updateResult(msg)
	case router.Profile:
		return m.updateProfile(msg)
	case router.Settings:
		return m.updateSettings(msg)
	}
	return m, nil
}

func (m *Model) navigate(view router.View) {
	if err := m.ctrl.NavigateTo(view); err != nil {
		return
	}
	m.scroll = 0
	m.chatFocused = false
	switch view {
	case router.Scanner:
		m.pathInput.Focus()
	case router.History:
		m.refreshHistory()
	case router.Settings:
		m.langCursor = languageIndex(m.ctrl.State().Language)
	}
}

func (m *Model) enterResult() {
	m.scroll = 0
	m.compare = false
	m.showShare = false
	m.chatFocused = false
	m.chatInput.Reset()
}

func (m *Model) openLinkPrompt() (tea.Model, tea.Cmd) {
	m.linkMode = true
	m.linkInput.Reset()
	m.linkInput.Focus()
	return m, textinput.Blink
}

func (m *Model) updateLink(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.linkMode = false
		m.linkInput.Blur()
		return m, nil
	case "enter":
		m.linkMode = false
		m.linkInput.Blur()
		m.ctrl.Location().Set(m.linkInput.Value())
		return m, nil
	}
	var cmd tea.Cmd
	m.linkInput, cmd = m.linkInput.Update(msg)
	return m, cmd
}

func (m *Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.authFocus = 1 - m.authFocus
		if m.authFocus == 0 {
			m.emailInput.Blur()
			m.nameInput.Focus()
		} else {
			m.nameInput.Blur()
			m.emailInput.Focus()
		}
		return m, textinput.Blink
	case "enter":
		if m.authFocus == 0 && strings.TrimSpace(m.emailInput.Value()) == "" {
			m.authFocus = 1
			m.nameInput.Blur()
			m.emailInput.Focus()
			return m, textinput.Blink
		}
		if err := m.ctrl.Login(m.ctx, m.nameInput.Value(), m.emailInput.Value()); err != nil {
			return m, nil
		}
		m.nameInput.Reset()
		m.emailInput.Reset()
		if m.ctrl.State().View == router.Result {
			m.enterResult()
		}
		m.refreshHistory()
		return m, nil
	}
	var cmd tea.Cmd
	if m.authFocus == 0 {
		m.nameInput, cmd = m.nameInput.Update(msg)
	} else {
		m.emailInput, cmd = m.emailInput.Update(msg)
	}
	return m, cmd
}

func (m *Model) updateScanner(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.navigate(router.Dashboard)
		return m, nil
	case "enter":
		path := strings.TrimSpace(m.pathInput.Value())
		if path == "" || m.ctrl.State().Analyzing {
			return m, nil
		}
		return m, m.submitScan(path)
	}
	var cmd tea.Cmd
	m.pathInput, cmd = m.pathInput.Update(msg)
	return m, cmd
}

func (m *Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "enter":
		m.navigate(router.Scanner)
	case "h":
		m.navigate(router.History)
	case "l":
		if latest := m.ctrl.Dashboard().Latest; latest != nil {
			if err := m.ctrl.SelectHistoricalRecord(latest.ID); err == nil {
				m.enterResult()
			}
		}
	}
	return m, nil
}

func (m *Model) updateHistory(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.navigate(router.Dashboard)
		return m, nil
	case "enter":
		row := m.history.SelectedRow()
		if len(row) > 1 {
			if err := m.ctrl.SelectHistoricalRecord(row[1]); err == nil {
				m.enterResult()
			}
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.history, cmd = m.history.Update(msg)
	return m, cmd
}

func (m *Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		if err := m.ctrl.BackToHistory(); err == nil {
			m.refreshHistory()
		}
	case "c":
		m.compare = !m.compare
	case "s":
		m.showShare = !m.showShare
	case "a", "/":
		m.chatFocused = true
		m.chatInput.Focus()
		return m, textinput.Blink
	case "j", "down":
		m.scroll++
	case "k", "up":
		if m.scroll > 0 {
			m.scroll--
		}
	}
	return m, nil
}

func (m *Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.chatFocused = false
		m.chatInput.Blur()
		return m, nil
	case "enter":
		question := strings.TrimSpace(m.chatInput.Value())
		if question == "" || m.ctrl.State().Chatting {
			return m, nil
		}
		m.chatInput.Reset()
		return m, m.ask(question)
	}
	var cmd tea.Cmd
	m.chatInput, cmd = m.chatInput.Update(msg)
	return m, cmd
}

func (m *Model) updateProfile(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "x" {
		_ = m.ctrl.Logout(m.ctx)
		m.authFocus = 0
		m.emailInput.Blur()
		m.nameInput.Focus()
		m.relabel()
		return m, textinput.Blink
	}
	return m, nil
}

func (m *Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.langCursor < len(i18n.Languages)-1 {
			m.langCursor++
		}
	case "k", "up":
		if m.langCursor > 0 {
			m.langCursor--
		}
	case "enter":
		if m.ctrl.State().Translating {
			return m, nil
		}
		return m, m.changeLanguage(i18n.Languages[m.langCursor].Code)
	}
	return m, nil
}

func languageIndex(tag string) int {
	for i, l := range i18n.Languages {
		if l.Code == tag {
			return i
		}
	}
	return 0
}

// relabel refreshes widget labels after a language change.
func (m *Model) relabel() {
	m.nameInput.Prompt = m.ctrl.T("name") + ": "
	m.emailInput.Prompt = m.ctrl.T("email") + ": "
	m.refreshHistory()
}

func (m *Model) refreshHistory() {
	headers := []string{"Date", "ID", m.ctrl.T("redness"), m.ctrl.T("moisture"), m.ctrl.T("cracks"), "Color", m.ctrl.T("urgency")}
	rows := stats.HistoryRows(m.ctrl.History(), m.tz)
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		for j, cell := range row {
			if w := lipgloss.Width(cell); w > widths[j] {
				widths[j] = w
			}
		}
		tableRows[i] = table.Row(row)
	}
	cols := make([]table.Column, len(headers))
	for i, h := range headers {
		cols[i] = table.Column{Title: h, Width: widths[i]}
	}
	m.history.SetRows(nil)
	m.history.SetColumns(cols)
	m.history.SetRows(tableRows)
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.history.SetWidth(m.width)
	m.history.SetHeight(maxInt(1, bodyHeight-2))
	inputWidth := maxInt(10, m.width/2)
	for _, in := range []*textinput.Model{&m.nameInput, &m.emailInput, &m.pathInput, &m.chatInput, &m.linkInput} {
		in.Width = inputWidth
	}
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = lipgloss.Height(activeNavStyle.Render("X")) + 1
	footerHeight = 1
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
