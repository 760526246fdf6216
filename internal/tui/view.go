package tui

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/skip2/go-qrcode"

	"github.com/lingua-health/lingua/internal/i18n"
	"github.com/lingua-health/lingua/internal/model"
	"github.com/lingua-health/lingua/internal/router"
	"github.com/lingua-health/lingua/internal/session"
	"github.com/lingua-health/lingua/internal/stats"
)

const defaultWidth = 80

// View implements tea.Model.
func (m *Model) View() string {
	st := m.ctrl.State()
	width := m.width
	if width <= 0 {
		width = defaultWidth
	}
	contentWidth := width - 2
	if contentWidth < 20 {
		contentWidth = width
	}

	var body string
	switch st.View {
	case router.Auth:
		body = m.renderAuth(contentWidth)
	case router.Dashboard:
		body = m.renderDashboard(contentWidth)
	case router.Scanner:
		body = m.renderScanner(st, contentWidth)
	case router.History:
		body = m.renderHistory()
	case router.Result:
		body = m.renderResult(st, contentWidth)
	case router.Profile:
		body = m.renderProfile(st)
	case router.Settings:
		body = m.renderSettings(st)
	}
	if m.linkMode {
		body = modalStyle.Render(titleStyle.Render(m.ctrl.T("openLink")) + "\n\n" + m.linkInput.View())
	}
	if st.RTL {
		body = lipgloss.NewStyle().Width(contentWidth).Align(lipgloss.Right).Render(body)
	}

	header := m.renderHeader(st)
	footer := m.renderFooter()
	if m.width == 0 || m.height == 0 {
		return header + "\n" + body + "\n" + footer
	}
	headerHeight, bodyHeight, _ := m.layoutHeights()
	if st.View == router.Result && m.scroll > 0 {
		lines := strings.Split(body, "\n")
		if m.scroll >= len(lines) {
			m.scroll = len(lines) - 1
		}
		body = strings.Join(lines[m.scroll:], "\n")
	}
	return fitLines(header, m.width, headerHeight) + "\n" +
		fitLines(body, m.width, bodyHeight) + "\n" +
		truncateLine(footer, m.width)
}

func (m *Model) renderHeader(st session.Snapshot) string {
	if st.View == router.Auth {
		return titleStyle.Render("Lingua") + "  " + mutedStyle.Render(st.Language) + "\n"
	}
	tabs := make([]string, 0, len(navViews))
	for i, v := range navViews {
		label := fmt.Sprintf("%d %s", i+1, m.ctrl.T(navKeys[v]))
		if v == st.View || (v == router.History && st.View == router.Result) {
			tabs = append(tabs, activeNavStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveNavStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m *Model) renderFooter() string {
	st := m.ctrl.State()
	switch {
	case st.Notice != nil:
		return errorStyle.Render(st.Notice.Text) + footerStyle.Render("  esc")
	case m.flash != "":
		return errorStyle.Render(m.flash) + footerStyle.Render("  esc")
	case st.Analyzing:
		return m.spinner.View() + " " + footerStyle.Render(m.ctrl.T("analyzing"))
	case st.Translating:
		return m.spinner.View() + " " + footerStyle.Render(m.ctrl.T("translating"))
	case st.Chatting:
		return m.spinner.View() + " " + footerStyle.Render(m.ctrl.T("chat"))
	}
	return footerStyle.Render(m.helpText(st))
}

func (m *Model) helpText(st session.Snapshot) string {
	if m.linkMode {
		return "enter open · esc cancel"
	}
	switch st.View {
	case router.Auth:
		return "tab switch · enter " + m.ctrl.T("signIn") + " · ctrl+o " + m.ctrl.T("openLink") + " · ctrl+c quit"
	case router.Dashboard:
		return "n " + m.ctrl.T("newScan") + " · h " + m.ctrl.T("history") + " · l " + m.ctrl.T("latestAnalysis") + " · o " + m.ctrl.T("openLink") + " · q quit"
	case router.Scanner:
		return "enter analyze · esc " + m.ctrl.T("back")
	case router.History:
		return "↑/↓ select · enter open · esc " + m.ctrl.T("back")
	case router.Result:
		if m.chatFocused {
			return "enter send · esc " + m.ctrl.T("back")
		}
		return "c " + m.ctrl.T("compare") + " · s " + m.ctrl.T("share") + " · a " + m.ctrl.T("chat") + " · j/k scroll · esc " + m.ctrl.T("backToHistory")
	case router.Profile:
		return "x " + m.ctrl.T("signOut") + " · q quit"
	case router.Settings:
		return "↑/↓ select · enter " + m.ctrl.T("save") + " · q quit"
	}
	return ""
}

func (m *Model) renderAuth(width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.T("signIn")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(wrapJoin(m.ctrl.T("privacy"), width)))
	b.WriteString("\n\n")
	b.WriteString(m.nameInput.View())
	b.WriteString("\n")
	b.WriteString(m.emailInput.View())
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderDashboard(width int) string {
	d := m.ctrl.Dashboard()
	var b strings.Builder
	b.WriteString(titleStyle.Render(d.Welcome))
	b.WriteString("\n\n")

	cards := []string{
		metricCard(m.ctrl.T("history"), fmt.Sprintf("%d", len(d.Records))),
		metricCard(m.ctrl.T("trends"), m.ctrl.Format("streak", map[string]string{"days": fmt.Sprintf("%d", d.Streak)})),
	}
	if d.Latest != nil {
		urgency := d.Latest.Results.Guidance.MedicalUrgency
		cards = append(cards, metricCard(m.ctrl.T("urgency"), levelStyle(urgency).Render(urgency)))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	if d.Latest == nil {
		b.WriteString(mutedStyle.Render(m.ctrl.T("noScans")))
		b.WriteString("\n")
		return b.String()
	}
	b.WriteString(titleStyle.Render(m.ctrl.T("latestAnalysis")))
	b.WriteString("\n")
	b.WriteString(wrapJoin(d.Latest.Summary, width))
	b.WriteString("\n\n")

	var chart bytes.Buffer
	if err := stats.RenderTrendChart(&chart, m.ctrl.T("trends"), d.Trend, stats.ChartWidthFor(width), chartHeight, true); err == nil {
		b.WriteString(strings.TrimRight(chart.String(), "\n"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderScanner(st session.Snapshot, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.T("startScan")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.ctrl.T("imagePath")))
	b.WriteString("\n")
	b.WriteString(m.pathInput.View())
	b.WriteString("\n\n")
	if st.Analyzing {
		b.WriteString(m.spinner.View() + " " + accentStyle.Render(m.ctrl.T("analyzing")))
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render(wrapJoin(m.ctrl.T("waitAi"), width)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *Model) renderHistory() string {
	if len(m.history.Rows()) == 0 {
		return mutedStyle.Render(m.ctrl.T("noScans"))
	}
	return titleStyle.Render(m.ctrl.T("history")) + "\n" + m.history.View()
}

func (m *Model) renderResult(st session.Snapshot, width int) string {
	rec, ok := m.ctrl.Focused()
	if !ok {
		return mutedStyle.Render(m.ctrl.T("noScans"))
	}
	res := rec.Results
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.T("captured")))
	b.WriteString("  ")
	b.WriteString(mutedStyle.Render(rec.Timestamp.In(m.tz).Format(stats.HistoryDateLayout)))
	b.WriteString("\n")
	b.WriteString(wrapJoin(rec.Summary, width))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		metricCard(m.ctrl.T("redness"), formatScore(res.Redness)),
		metricCard(m.ctrl.T("moisture"), formatScore(res.Moisture)),
		metricCard(m.ctrl.T("cracks"), formatScore(res.Cracks)),
		metricCard(m.ctrl.T("urgency"), levelStyle(res.Guidance.MedicalUrgency).Render(res.Guidance.MedicalUrgency)),
	))
	b.WriteString("\n")

	if m.compare {
		b.WriteString(m.renderComparison(rec))
	}
	if m.showShare {
		if link, ok := m.ctrl.ShareLink(); ok {
			b.WriteString(accentStyle.Render(m.ctrl.T("share")) + ": " + link + "\n")
			if code := shareCode(link); code != "" {
				b.WriteString(code)
			}
		}
	}

	section := func(title string) {
		b.WriteString("\n")
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}

	section(m.ctrl.T("temperament"))
	b.WriteString(accentStyle.Render(res.Temperament.Archetype))
	b.WriteString("\n")
	if res.Temperament.Description != "" {
		b.WriteString(wrapJoin(res.Temperament.Description, width))
		b.WriteString("\n")
	}
	if len(res.Temperament.Traits) > 0 {
		b.WriteString(mutedStyle.Render(strings.Join(res.Temperament.Traits, " · ")))
		b.WriteString("\n")
	}

	section(m.ctrl.T("markers"))
	b.WriteString(renderMarkers(res, width, m.ctrl.T("noMarkers")))

	section(m.ctrl.T("organs"))
	for _, organ := range []struct{ name, note string }{
		{"Liver", res.OrganHealth.Liver},
		{"Kidney", res.OrganHealth.Kidney},
		{"Digestion", res.OrganHealth.Digestion},
		{"Heart", res.OrganHealth.Heart},
	} {
		if organ.note == "" {
			continue
		}
		b.WriteString(wrapJoin(organ.name+": "+organ.note, width))
		b.WriteString("\n")
	}

	section(m.ctrl.T("path"))
	for _, line := range []string{res.Guidance.Hydration, res.Guidance.Nutrition, res.Guidance.Lifestyle, res.Guidance.Hygiene} {
		if line != "" {
			b.WriteString(wrapJoin("• "+line, width))
			b.WriteString("\n")
		}
	}
	for i, step := range res.Guidance.RecoverySteps {
		b.WriteString(wrapJoin(fmt.Sprintf("%d. %s", i+1, step), width))
		b.WriteString("\n")
	}

	section(m.ctrl.T("chat"))
	for _, msg := range st.Chat {
		if msg.Role == session.RoleUser {
			b.WriteString(userLineStyle.Render(wrapJoin("> "+msg.Text, width)))
		} else {
			b.WriteString(assistantLineStyle.Render(wrapJoin(msg.Text, width)))
		}
		b.WriteString("\n")
	}
	if m.chatFocused {
		b.WriteString(m.chatInput.View())
	} else {
		b.WriteString(mutedStyle.Render(m.ctrl.T("chatHint")))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderComparison(rec model.ScanRecord) string {
	prev, ok := m.ctrl.Previous()
	if !ok {
		return mutedStyle.Render(m.ctrl.T("compare")+": "+m.ctrl.T("noScans")) + "\n"
	}
	delta := func(label string, now, before float64) string {
		return fmt.Sprintf("%s %s → %s (%+.0f)", label, formatScore(before), formatScore(now), now-before)
	}
	lines := []string{
		titleStyle.Render(m.ctrl.T("compare")) + "  " + mutedStyle.Render(m.ctrl.T("previousScan")+" "+prev.Timestamp.In(m.tz).Format(stats.HistoryDateLayout)),
		delta(m.ctrl.T("redness"), rec.Results.Redness, prev.Results.Redness),
		delta(m.ctrl.T("moisture"), rec.Results.Moisture, prev.Results.Moisture),
		delta(m.ctrl.T("cracks"), rec.Results.Cracks, prev.Results.Cracks),
	}
	return strings.Join(lines, "\n") + "\n"
}

func renderMarkers(res model.AnalysisResult, width int, empty string) string {
	var b strings.Builder
	for _, c := range res.DetectedConditions {
		b.WriteString(levelStyle(c.Severity).Render(fmt.Sprintf("%s %s", c.Name, formatScore(c.Likelihood))))
		b.WriteString("\n")
		if c.Evidence != "" {
			b.WriteString(mutedStyle.Render(wrapJoin(c.Evidence, width)))
			b.WriteString("\n")
		}
	}
	for _, cat := range []model.CategoryResult{res.ViralCommon, res.ChronicSerious, res.MentalState, res.EverydayStuff} {
		if !cat.Detected {
			continue
		}
		line := cat.Description
		if len(cat.Markers) > 0 {
			line += " (" + strings.Join(cat.Markers, ", ") + ")"
		}
		b.WriteString(wrapJoin("• "+line, width))
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return mutedStyle.Render(empty) + "\n"
	}
	return b.String()
}

// shareCode renders link as a QR code drawn with half-block characters.
func shareCode(link string) string {
	code, err := qrcode.New(link, qrcode.Medium)
	if err != nil {
		return ""
	}
	return code.ToSmallString(false)
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}

func (m *Model) renderProfile(st session.Snapshot) string {
	if st.Profile == nil {
		return ""
	}
	lang := st.Language
	if l, ok := i18n.FindLanguage(lang); ok {
		lang = l.NativeName
	}
	rows := [][2]string{
		{m.ctrl.T("name"), st.Profile.Name},
		{m.ctrl.T("email"), st.Profile.Email},
		{m.ctrl.T("language"), lang},
		{m.ctrl.T("history"), fmt.Sprintf("%d", st.Records)},
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.T("profile")))
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(cardTitleStyle.Render(row[0] + ": "))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(m.ctrl.T("madeBy")))
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderSettings(st session.Snapshot) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.ctrl.T("changeLang")))
	b.WriteString("\n\n")
	for i, l := range i18n.Languages {
		cursor := "  "
		if i == m.langCursor {
			cursor = accentStyle.Render("> ")
		}
		label := fmt.Sprintf("%s (%s)", l.NativeName, l.Name)
		if l.Code == st.Language {
			label = cardValueStyle.Render(label + " ✓")
		}
		b.WriteString(cursor + label + "\n")
	}
	return b.String()
}
