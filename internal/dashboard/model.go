package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/arencloud/surveyboard/internal/models"
)

type View int

const (
	ViewDashboard View = iota
	ViewSurveys
)

// LoadState tracks one survey list load. Only a full reload goes back to Loading.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Loaded
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return "idle"
}

type ExportStatus int

const (
	ExportRunning ExportStatus = iota + 1
	ExportStarted
	ExportFailed
)

const viewNotice = "View functionality coming soon!"

// API is the part of Client the model needs.
type API interface {
	Surveys(ctx context.Context) ([]models.Survey, error)
	RepositoryStats(ctx context.Context) (*models.RepositoryStats, error)
	ExportSurvey(ctx context.Context, surveyID, format string) (json.RawMessage, error)
}

type Options struct {
	ExportFormat string
	StartView    View
}

type Model struct {
	ctx    context.Context
	api    API
	format string

	view     View
	state    LoadState
	surveys  []models.Survey
	err      string
	stats    *models.RepositoryStats
	statsErr string
	selected int
	exports  map[string]ExportStatus
	notice   string
	width    int

	// gen identifies the current load cycle; replies from earlier cycles are dropped.
	gen uint64
}

type surveysLoadedMsg struct {
	gen   uint64
	items []models.Survey
	err   error
}

type statsLoadedMsg struct {
	gen   uint64
	stats *models.RepositoryStats
	err   error
}

type exportDoneMsg struct {
	gen      uint64
	surveyID string
	result   json.RawMessage
	err      error
}

func NewModel(ctx context.Context, api API, options Options) *Model {
	format := strings.TrimSpace(options.ExportFormat)
	if format == "" {
		format = "json"
	}
	return &Model{
		ctx:     ctx,
		api:     api,
		format:  format,
		view:    options.StartView,
		surveys: []models.Survey{},
		exports: map[string]ExportStatus{},
	}
}

func (m *Model) Init() tea.Cmd {
	m.state = Loading
	return tea.Batch(m.loadStatsCmd(), m.loadSurveysCmd())
}

func (m *Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := message.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case surveysLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.surveys = []models.Survey{}
			m.state = Failed
			m.err = msg.err.Error()
			return m, nil
		}
		m.surveys = msg.items
		if m.surveys == nil {
			m.surveys = []models.Survey{}
		}
		m.state = Loaded
		m.err = ""
		if m.selected >= len(m.surveys) {
			m.selected = 0
		}
		return m, nil
	case statsLoadedMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.stats = nil
			m.statsErr = msg.err.Error()
			return m, nil
		}
		m.stats = msg.stats
		m.statsErr = ""
		return m, nil
	case exportDoneMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		if msg.err != nil {
			m.exports[msg.surveyID] = ExportFailed
			m.notice = "Export failed: " + msg.err.Error()
			return m, nil
		}
		m.exports[msg.surveyID] = ExportStarted
		m.notice = "Export initiated successfully! " + exportSummary(msg.result)
		return m, nil
	case tea.KeyMsg:
		if m.notice != "" {
			m.notice = ""
			return m, nil
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.view == ViewDashboard {
			m.view = ViewSurveys
		} else {
			m.view = ViewDashboard
		}
		return m, nil
	case "r":
		return m, m.reload()
	}
	if m.view != ViewSurveys || len(m.surveys) == 0 {
		return m, nil
	}
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.surveys)-1 {
			m.selected++
		}
	case "v":
		m.notice = viewNotice
	case "e", "enter":
		return m, m.exportCmd(m.surveys[m.selected].ID)
	}
	return m, nil
}

// reload discards everything and loads from scratch.
func (m *Model) reload() tea.Cmd {
	view, width, gen := m.view, m.width, m.gen
	*m = *NewModel(m.ctx, m.api, Options{ExportFormat: m.format, StartView: view})
	m.width = width
	m.gen = gen + 1
	return m.Init()
}

func (m *Model) State() LoadState { return m.state }

func (m *Model) Surveys() []models.Survey { return m.surveys }

func (m *Model) Err() string { return m.err }

func (m *Model) Notice() string { return m.notice }

func (m *Model) ExportStatus(surveyID string) (ExportStatus, bool) {
	s, ok := m.exports[surveyID]
	return s, ok
}

func (m *Model) loadSurveysCmd() tea.Cmd {
	ctx, api, gen := m.ctx, m.api, m.gen
	return func() tea.Msg {
		items, err := api.Surveys(ctx)
		return surveysLoadedMsg{gen: gen, items: items, err: err}
	}
}

func (m *Model) loadStatsCmd() tea.Cmd {
	ctx, api, gen := m.ctx, m.api, m.gen
	return func() tea.Msg {
		stats, err := api.RepositoryStats(ctx)
		return statsLoadedMsg{gen: gen, stats: stats, err: err}
	}
}

// exportCmd fires one export start. A row already running is left alone.
func (m *Model) exportCmd(surveyID string) tea.Cmd {
	if m.exports[surveyID] == ExportRunning {
		return nil
	}
	m.exports[surveyID] = ExportRunning
	ctx, api, gen, format := m.ctx, m.api, m.gen, m.format
	return func() tea.Msg {
		result, err := api.ExportSurvey(ctx, surveyID, format)
		return exportDoneMsg{gen: gen, surveyID: surveyID, result: result, err: err}
	}
}

func exportSummary(raw json.RawMessage) string {
	var env struct {
		Result struct {
			ProgressID string `json:"progressId"`
		} `json:"result"`
	}
	if json.Unmarshal(raw, &env) == nil && env.Result.ProgressID != "" {
		return "Progress id: " + env.Result.ProgressID
	}
	return ""
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229")).Background(lipgloss.Color("62"))
	activeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("63"))
)

func (m *Model) View() string {
	var builder strings.Builder
	builder.WriteString(titleStyle.Render("Research Visualization Hub"))
	builder.WriteString("  ")
	builder.WriteString(m.tabs())
	builder.WriteString("\n\n")

	if m.notice != "" {
		builder.WriteString(noticeStyle.Render(m.notice + "\n\n" + dimStyle.Render("press any key")))
		return builder.String()
	}

	if m.view == ViewDashboard {
		m.renderDashboard(&builder)
		builder.WriteString(dimStyle.Render("Keys: tab surveys  r reload  q quit"))
	} else {
		m.renderSurveys(&builder)
		builder.WriteString(dimStyle.Render("Keys: ↑/k ↓/j move  e export  v view  tab dashboard  r reload  q quit"))
	}
	return builder.String()
}

func (m *Model) tabs() string {
	dash, surveys := "Dashboard", "Qualtrics Surveys"
	if m.view == ViewDashboard {
		return selectedStyle.Render(dash) + " " + dimStyle.Render(surveys)
	}
	return dimStyle.Render(dash) + " " + selectedStyle.Render(surveys)
}

func (m *Model) renderDashboard(builder *strings.Builder) {
	builder.WriteString(sectionStyle.Render("Repository"))
	builder.WriteString("\n")
	if m.stats == nil {
		if m.statsErr != "" {
			builder.WriteString(errorStyle.Render(m.statsErr))
		} else {
			builder.WriteString(dimStyle.Render("loading..."))
		}
		builder.WriteString("\n\n")
		return
	}
	s := m.stats
	builder.WriteString(fmt.Sprintf("Total projects: %d   Active: %d\n", s.TotalProjects, s.ActiveProjects))
	builder.WriteString(fmt.Sprintf("Participants: %d   Completed surveys: %d\n\n", s.TotalParticipants, s.CompletedSurveys))

	builder.WriteString(sectionStyle.Render("Monthly"))
	builder.WriteString("\n")
	for _, d := range s.MonthlyData {
		builder.WriteString(fmt.Sprintf("%-4s %-12s %3d projects  %4d participants\n", d.Month, strings.Repeat("█", d.Projects), d.Projects, d.Participants))
	}
	builder.WriteString("\n")

	builder.WriteString(sectionStyle.Render("Categories"))
	builder.WriteString("\n")
	for _, c := range s.ProjectCategories {
		builder.WriteString(fmt.Sprintf("- %s: %d\n", c.Category, c.Count))
	}
	builder.WriteString("\n")
}

func (m *Model) renderSurveys(builder *strings.Builder) {
	builder.WriteString(sectionStyle.Render("Qualtrics Surveys"))
	builder.WriteString("\n")
	switch m.state {
	case Idle, Loading:
		builder.WriteString(dimStyle.Render("Loading surveys..."))
		builder.WriteString("\n\n")
		return
	case Failed:
		builder.WriteString(errorStyle.Render("Error loading surveys"))
		builder.WriteString("\n")
		builder.WriteString(m.err)
		builder.WriteString("\n")
		builder.WriteString(dimStyle.Render("Make sure your Qualtrics API credentials are configured properly in the server."))
		builder.WriteString("\n\n")
		return
	}
	if len(m.surveys) == 0 {
		builder.WriteString("No surveys found\n")
		builder.WriteString(dimStyle.Render("Check your Qualtrics API configuration or create surveys in your Qualtrics account."))
		builder.WriteString("\n\n")
		return
	}
	for index, survey := range m.surveys {
		line := fmt.Sprintf("%s  ID: %s • Modified: %s", survey.Name, survey.ID, FormatDate(survey.LastModified))
		if survey.IsActive {
			line += " " + activeStyle.Render("Active")
		}
		switch m.exports[survey.ID] {
		case ExportRunning:
			line += "  Exporting..."
		case ExportStarted:
			line += "  exported"
		case ExportFailed:
			line += "  export failed"
		}
		if index == m.selected {
			builder.WriteString(selectedStyle.Render("> " + line))
		} else {
			builder.WriteString("  " + line)
		}
		builder.WriteString("\n")
	}
	builder.WriteString("\n")
}
