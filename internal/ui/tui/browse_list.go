package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/klauern/cpm/internal/registry"
)

// BrowseAction represents the action to perform on a selected package.
type BrowseAction int

const (
	// BrowseActionNone means no action was taken (user quit).
	BrowseActionNone BrowseAction = iota
	// BrowseActionInstall means the user wants to install the package.
	BrowseActionInstall
)

// BrowseListResult contains the result of the browse list TUI interaction.
type BrowseListResult struct {
	Action  BrowseAction
	Package registry.SearchResult
}

// browseListKeyMap defines the key bindings for the browse list.
type browseListKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Detail   key.Binding
	Install  key.Binding
	Filter   key.Binding
	ClearFlt key.Binding
	Help     key.Binding
	Back     key.Binding
	Quit     key.Binding
}

func defaultBrowseListKeyMap() browseListKeyMap {
	return browseListKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Detail: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "details"),
		),
		Install: key.NewBinding(
			key.WithKeys("enter", "i"),
			key.WithHelp("enter/i", "install"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		ClearFlt: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filter"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// BrowseListModel is the BubbleTea model for interactive package browsing.
type BrowseListModel struct {
	table        table.Model
	packages     []registry.SearchResult
	filtered     []registry.SearchResult
	keys         browseListKeyMap
	result       BrowseListResult
	filter       string
	filtering    bool
	showHelp     bool
	width        int
	height       int
	columnWidths browseListColumnWidths
	phase        browseListPhase
	detailPkg    registry.SearchResult
	viewport     viewport.Model
	ready        bool
	quitting     bool
}

// Styles for the browse list TUI.
var browseListStyles = struct {
	Title       lipgloss.Style
	Help        lipgloss.Style
	Filter      lipgloss.Style
	FilterInput lipgloss.Style
	Status      lipgloss.Style
	DetailBox   lipgloss.Style
	DetailTitle lipgloss.Style
}{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")).Padding(0, 1),
	Help:        lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	Filter:      lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	FilterInput: lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
	Status:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	DetailBox:   lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
	DetailTitle: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
}

type browseListPhase int

const (
	browseListPhaseList browseListPhase = iota
	browseListPhaseDetail
)

const (
	browseListNameWidth     = 28
	browseListTypeWidth     = 10
	browseListVersionWidth  = 10
	browseListDescWidth     = 45
	browseListColumnPadding = 2
	browseListColumnCount   = 4
)

type browseListColumnWidths struct {
	name    int
	typ     int
	version int
	desc    int
}

var browseTypeCaser = cases.Title(language.English)

// NewBrowseListModel creates a new browse list model.
func NewBrowseListModel(packages []registry.SearchResult) BrowseListModel {
	columns, columnWidths := browseListColumns(0, packages)

	// Sort packages alphabetically by name (case-insensitive)
	sort.Slice(packages, func(i, j int) bool {
		return strings.ToLower(packages[i].Name) < strings.ToLower(packages[j].Name)
	})

	m := BrowseListModel{
		packages:     packages,
		filtered:     packages,
		keys:         defaultBrowseListKeyMap(),
		columnWidths: columnWidths,
		phase:        browseListPhaseList,
	}

	rows := m.packagesToRows(packages)

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	m.table = t
	return m
}

func (m BrowseListModel) packagesToRows(packages []registry.SearchResult) []table.Row {
	rows := make([]table.Row, len(packages))
	for i, p := range packages {
		rows[i] = table.Row{
			clipCell(p.Name, m.columnWidths.name),
			clipCell(browseTypeCaser.String(p.Type), m.columnWidths.typ),
			clipCell(p.Version, m.columnWidths.version),
			clipCell(p.Description, m.columnWidths.desc),
		}
	}
	return rows
}

func browseListColumns(totalWidth int, packages []registry.SearchResult) ([]table.Column, browseListColumnWidths) {
	widths := browseListColumnWidths{
		name:    browseListNameWidth,
		typ:     browseListTypeWidth,
		version: browseListVersionWidth,
		desc:    browseListDescWidth,
	}

	if totalWidth > 0 {
		baseTotal := widths.name + widths.typ + widths.version + widths.desc +
			(browseListColumnPadding * browseListColumnCount)
		extra := totalWidth - baseTotal
		if extra > 0 {
			maxNameWidth := widths.name
			for _, p := range packages {
				nameWidth := runewidth.StringWidth(p.Name)
				if nameWidth > maxNameWidth {
					maxNameWidth = nameWidth
				}
			}

			nameNeeded := maxNameWidth - widths.name
			if nameNeeded > 0 {
				nameExtra := min(nameNeeded, extra)
				widths.name += nameExtra
				extra -= nameExtra
			}
			widths.desc += extra
		}
	}

	columns := []table.Column{
		{Title: "Name", Width: widths.name},
		{Title: "Type", Width: widths.typ},
		{Title: "Version", Width: widths.version},
		{Title: "Description", Width: widths.desc},
	}

	return columns, widths
}

func (m *BrowseListModel) updateColumns(totalWidth int) {
	columns, widths := browseListColumns(totalWidth, m.packages)
	m.columnWidths = widths
	m.table.SetColumns(columns)
}

// Init implements tea.Model.
func (m BrowseListModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m BrowseListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.phase {
	case browseListPhaseDetail:
		return m.updateDetail(msg)
	default:
		return m.updateList(msg)
	}
}

func (m BrowseListModel) updateList(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		newHeight := max(msg.Height-8, 5)
		m.table.SetHeight(newHeight)
		m.updateColumns(msg.Width)
		m.table.SetRows(m.packagesToRows(m.filtered))

	case tea.KeyMsg:
		// Handle filtering mode
		if m.filtering {
			switch msg.String() {
			case "enter":
				m.filtering = false
				return m, nil
			case "esc":
				m.filter = ""
				m.filtering = false
				m.applyFilter()
				return m, nil
			case "backspace":
				if len(m.filter) > 0 {
					m.filter = m.filter[:len(m.filter)-1]
					m.applyFilter()
				}
				return m, nil
			default:
				if len(msg.String()) == 1 {
					m.filter += msg.String()
					m.applyFilter()
				}
				return m, nil
			}
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.Filter):
			m.filtering = true
			return m, nil

		case key.Matches(msg, m.keys.ClearFlt):
			m.filter = ""
			m.applyFilter()
			return m, nil

		case key.Matches(msg, m.keys.Detail):
			if len(m.filtered) > 0 {
				m.detailPkg = m.getSelectedPackage()
				m.phase = browseListPhaseDetail
				m.ready = false
				m.ensureDetailViewport()
				return m, nil
			}
			return m, nil

		case key.Matches(msg, m.keys.Install):
			if len(m.filtered) > 0 {
				m.result = BrowseListResult{
					Action:  BrowseActionInstall,
					Package: m.getSelectedPackage(),
				}
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m BrowseListModel) updateDetail(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureDetailViewport()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Install):
			m.result = BrowseListResult{
				Action:  BrowseActionInstall,
				Package: m.detailPkg,
			}
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.phase = browseListPhaseList
			return m, nil
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *BrowseListModel) applyFilter() {
	if m.filter == "" {
		m.filtered = m.packages
	} else {
		var filtered []registry.SearchResult
		lowerFilter := strings.ToLower(m.filter)
		for _, p := range m.packages {
			if strings.Contains(strings.ToLower(p.Name), lowerFilter) ||
				strings.Contains(strings.ToLower(p.Type), lowerFilter) ||
				strings.Contains(strings.ToLower(p.Description), lowerFilter) ||
				keywordsMatch(p.Keywords, lowerFilter) {
				filtered = append(filtered, p)
			}
		}
		m.filtered = filtered
	}
	m.table.SetRows(m.packagesToRows(m.filtered))
}

func keywordsMatch(keywords []string, lowerFilter string) bool {
	for _, kw := range keywords {
		if strings.Contains(strings.ToLower(kw), lowerFilter) {
			return true
		}
	}
	return false
}

func (m BrowseListModel) getSelectedPackage() registry.SearchResult {
	cursor := m.table.Cursor()
	if cursor >= 0 && cursor < len(m.filtered) {
		return m.filtered[cursor]
	}
	return registry.SearchResult{}
}

func (m *BrowseListModel) ensureDetailViewport() {
	width := m.width
	if width <= 0 {
		width = 80
	}
	height := m.height - 8
	if height < 5 {
		height = 5
	}

	m.viewport = viewport.New(width, height)
	m.viewport.SetContent(m.renderDetailContent(width - 4))
	m.ready = true
}

func (m BrowseListModel) renderDetailContent(width int) string {
	p := m.detailPkg

	var b strings.Builder
	b.WriteString(detailField("Name:        ", p.Name, width))
	b.WriteString("\n")
	b.WriteString(detailField("Type:        ", browseTypeCaser.String(p.Type), width))
	b.WriteString("\n")
	if p.Version != "" {
		b.WriteString(detailField("Version:     ", p.Version, width))
		b.WriteString("\n")
	}
	if p.Downloads > 0 {
		b.WriteString(detailField("Downloads:   ", fmt.Sprintf("%d", p.Downloads), width))
		b.WriteString("\n")
	}
	if len(p.Keywords) > 0 {
		b.WriteString(detailField("Keywords:    ", strings.Join(p.Keywords, ", "), width))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = "No description available."
	}
	b.WriteString(detailField("Description: ", description, width))
	return b.String()
}

// View implements tea.Model.
func (m BrowseListModel) View() string {
	if m.quitting {
		return ""
	}

	if m.phase == browseListPhaseDetail {
		return m.viewDetail()
	}

	var b strings.Builder

	title := browseListStyles.Title.Render("📦 cpm Packages")
	b.WriteString(title)
	b.WriteString("\n\n")

	if m.filter != "" || m.filtering {
		filterStr := browseListStyles.Filter.Render("Filter: ")
		filterVal := browseListStyles.FilterInput.Render(m.filter)
		if m.filtering {
			filterVal += "█"
		}
		b.WriteString(filterStr + filterVal + "\n\n")
	}

	b.WriteString(m.table.View())
	b.WriteString("\n")

	status := fmt.Sprintf("%d package(s)", len(m.filtered))
	if m.filter != "" {
		status = fmt.Sprintf("%d of %d package(s) (filtered)", len(m.filtered), len(m.packages))
	}
	b.WriteString(browseListStyles.Status.Render(status))
	b.WriteString("\n")

	if m.showHelp {
		b.WriteString("\n")
		b.WriteString(m.renderFullHelp())
	} else {
		b.WriteString(m.renderShortHelp())
	}

	return b.String()
}

func (m BrowseListModel) viewDetail() string {
	if !m.ready {
		return "Loading..."
	}

	var b strings.Builder

	title := browseListStyles.Title.Render(fmt.Sprintf("📦 Package Details: %s", m.detailPkg.Name))
	b.WriteString(title)
	b.WriteString("\n\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	status := "Press enter/i to install • b or Esc to go back"
	b.WriteString(browseListStyles.Status.Render(status))
	b.WriteString("\n")

	return b.String()
}

func (m BrowseListModel) renderShortHelp() string {
	return browseListStyles.Help.Render("↑/↓: navigate • enter/i: install • v: details • /: filter • ?: help • q: quit")
}

func (m BrowseListModel) renderFullHelp() string {
	help := []string{
		"↑/k, ↓/j    navigate packages",
		"enter, i    install selected package",
		"v           view package details",
		"/           filter packages",
		"esc         clear filter / back",
		"?           toggle help",
		"q, ctrl+c   quit",
	}
	return browseListStyles.Help.Render(strings.Join(help, "\n"))
}

// Result returns the interaction result after the program has finished.
func (m BrowseListModel) Result() BrowseListResult {
	return m.result
}

// RunBrowseList runs the interactive package browser and returns the
// user's selection.
func RunBrowseList(packages []registry.SearchResult) (BrowseListResult, error) {
	mdl := NewBrowseListModel(packages)

	finalModel, err := Run(mdl, tea.WithAltScreen())
	if err != nil {
		return BrowseListResult{}, fmt.Errorf("failed to run package browser: %w", err)
	}

	if final, ok := finalModel.(BrowseListModel); ok {
		return final.Result(), nil
	}
	return BrowseListResult{}, nil
}
