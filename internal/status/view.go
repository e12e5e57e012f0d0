package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Styles, populated by applyTheme; zero-value lipgloss.Style until the
// first NewModel call, same as the teacher's package-level style vars.
var (
	titleStyle lipgloss.Style
	borderStyle lipgloss.Style
	labelStyle lipgloss.Style
	accentStyle lipgloss.Style
	quitStyle lipgloss.Style
	runningBadge lipgloss.Style
	disabledBadge lipgloss.Style
	errorBadge lipgloss.Style
	bodyStyle lipgloss.Style
	debugTitleStyle lipgloss.Style
	debugRuleStyle lipgloss.Style
	debugHeaderStyle lipgloss.Style
	debugTimeStyle lipgloss.Style
	debugCategoryStyle lipgloss.Style
	debugMsgStyle lipgloss.Style
	debugSepStyle lipgloss.Style
	statusOkStyle lipgloss.Style
	statusBadStyle lipgloss.Style
)

// panelWidth is the total outer width of the main panel.
// borderStyle has: border (1+1) = 2, padding (2+2) = 4, total chrome = 6.
// Width() in lipgloss sets width including padding but excluding border.
// So we pass panelWidth - 2 (border) to Width(), and the actual text area
// is panelWidth - 6 (border + padding).
const panelWidth = 80
const panelWidthForStyle = panelWidth - 2 // passed to borderStyle.Width()
const panelContentWidth = panelWidth - 6  // actual usable text area

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder

	titleText := "  YAMY  "
	barTotal := panelContentWidth - len(titleText)
	barLeft := barTotal / 2
	barRight := barTotal - barLeft
	title := strings.Repeat("▓", barLeft) + titleText + strings.Repeat("▓", barRight)
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("State:  "))
	b.WriteString(m.renderBadge())
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Keymap:"))
	b.WriteString("\n")
	if m.KeymapName != "" {
		b.WriteString(accentStyle.Render(m.KeymapName))
	} else {
		b.WriteString(bodyStyle.Render("(none)"))
	}
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render("Focus:"))
	b.WriteString("\n")
	if m.FocusClass != "" || m.FocusTitle != "" {
		b.WriteString(accentStyle.Render(fmt.Sprintf("%s — %s", m.FocusClass, m.FocusTitle)))
	} else {
		b.WriteString(bodyStyle.Render("(no window focused)"))
	}
	b.WriteString("\n\n")

	b.WriteString(quitStyle.Render(fmt.Sprintf("Events: %s   Latency: %s (mean) / %s (max)",
		humanize.Comma(int64(m.EventCount)), fmtLatency(m.Latency.Mean, m.Latency.Count), fmtLatency(m.Latency.Max, m.Latency.Count))))
	b.WriteString("\n")
	b.WriteString(quitStyle.Render("Press t to cycle theme, q to quit"))

	if m.DebugMode || len(m.DebugEntries) > 0 {
		b.WriteString("\n\n")
		b.WriteString(m.renderDebugPanel())
	}

	return borderStyle.Width(panelWidthForStyle).Render(b.String())
}

const debugPanelMaxLines = 5

const (
	colTimeWidth     = 15
	colCategoryWidth = 10
	colSepWidth      = 3 // " │ "
	colMsgWidth      = panelContentWidth - colTimeWidth - colCategoryWidth - colSepWidth*2
)

func (m Model) renderDebugPanel() string {
	sep := debugSepStyle.Render(" │ ")
	rule := debugRuleStyle.Render(strings.Repeat("─", panelContentWidth))

	var db strings.Builder

	db.WriteString(debugTitleStyle.Render("Debug"))
	db.WriteString("\n")
	db.WriteString(rule)
	db.WriteString("\n")

	db.WriteString(
		debugHeaderStyle.Width(colTimeWidth).Render("TIME") +
			sep +
			debugHeaderStyle.Width(colCategoryWidth).Render("TYPE") +
			sep +
			debugHeaderStyle.Width(colMsgWidth).Render("MESSAGE"))
	db.WriteString("\n")
	db.WriteString(rule)

	entries := m.DebugEntries
	if len(entries) > debugPanelMaxLines {
		entries = entries[len(entries)-debugPanelMaxLines:]
	}
	for _, entry := range entries {
		timeStr := entry.Time
		if len(timeStr) > colTimeWidth {
			timeStr = timeStr[:colTimeWidth]
		}

		cat := entry.Category
		if len(cat) > colCategoryWidth {
			cat = cat[:colCategoryWidth]
		}

		msg := entry.Message
		if len(msg) > colMsgWidth {
			msg = msg[:colMsgWidth-3] + "..."
		}

		db.WriteString("\n")
		db.WriteString(
			debugTimeStyle.Width(colTimeWidth).Render(timeStr) +
				sep +
				debugCategoryStyle.Width(colCategoryWidth).Render(cat) +
				sep +
				debugMsgStyle.Width(colMsgWidth).Render(msg))
	}

	return db.String()
}

func (m Model) renderStatusBar() string {
	var engineStatus string
	if m.State == StateError {
		engineStatus = statusBadStyle.Render("✗")
	} else {
		engineStatus = statusOkStyle.Render("✓")
	}
	return quitStyle.Render("Engine: ") + engineStatus
}

func (m Model) renderBadge() string {
	switch m.State {
	case StateDisabled:
		return disabledBadge.Render("● Disabled")
	case StateError:
		errText := m.LastError
		if len(errText) > 50 {
			errText = errText[:50] + "..."
		}
		return errorBadge.Render(fmt.Sprintf("● Error: %s", errText))
	default:
		return runningBadge.Render("● Running")
	}
}
