package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arencloud/surveyboard/internal/models"
)

type fakeAPI struct {
	surveys    []models.Survey
	surveysErr error
	exportErr  error
	exported   []string
}

func (f *fakeAPI) Surveys(context.Context) ([]models.Survey, error) {
	if f.surveysErr != nil {
		return nil, f.surveysErr
	}
	return f.surveys, nil
}

func (f *fakeAPI) RepositoryStats(context.Context) (*models.RepositoryStats, error) {
	return &models.RepositoryStats{TotalProjects: 12}, nil
}

func (f *fakeAPI) ExportSurvey(_ context.Context, surveyID, format string) (json.RawMessage, error) {
	f.exported = append(f.exported, surveyID+"/"+format)
	if f.exportErr != nil {
		return nil, f.exportErr
	}
	return json.RawMessage(`{"result":{"progressId":"ES_1"}}`), nil
}

func key(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loadedModel(t *testing.T, api *fakeAPI) *Model {
	t.Helper()
	m := NewModel(context.Background(), api, Options{StartView: ViewSurveys})
	m.Init()
	m.Update(m.loadSurveysCmd()())
	return m
}

func TestEmptyListingRendersEmptyState(t *testing.T) {
	m := loadedModel(t, &fakeAPI{})
	if m.State() != Loaded {
		t.Fatalf("state = %s", m.State())
	}
	view := m.View()
	if !strings.Contains(view, "No surveys found") {
		t.Fatalf("empty-state missing:\n%s", view)
	}
	if strings.Contains(view, "Modified:") {
		t.Fatalf("list view rendered for empty listing:\n%s", view)
	}
}

func TestSurveyWithoutLastModifiedRenders(t *testing.T) {
	m := loadedModel(t, &fakeAPI{surveys: []models.Survey{{ID: "SV_1", Name: "Onboarding", IsActive: true}}})
	view := m.View()
	if !strings.Contains(view, "Modified: —") || !strings.Contains(view, "SV_1") {
		t.Fatalf("unexpected view:\n%s", view)
	}
}

func TestFailedListingIsIdempotent(t *testing.T) {
	api := &fakeAPI{surveysErr: &APIError{Message: "Failed to fetch surveys", Details: "dial tcp: connection refused"}}
	m := NewModel(context.Background(), api, Options{StartView: ViewSurveys})
	m.Init()
	for i := 0; i < 3; i++ {
		m.Update(m.loadSurveysCmd()())
		if m.State() != Failed {
			t.Fatalf("attempt %d: state = %s", i, m.State())
		}
		if len(m.Surveys()) != 0 {
			t.Fatalf("attempt %d: surveys = %v", i, m.Surveys())
		}
		if m.Err() == "" {
			t.Fatalf("attempt %d: empty error", i)
		}
	}
	if !strings.Contains(m.View(), "Error loading surveys") {
		t.Fatal("error view missing")
	}
}

func TestExportLifecyclePerRow(t *testing.T) {
	api := &fakeAPI{surveys: []models.Survey{{ID: "SV_123", Name: "A"}, {ID: "SV_456", Name: "B"}}}
	m := loadedModel(t, api)

	_, cmd := m.Update(key("e"))
	if cmd == nil {
		t.Fatal("export did not produce a command")
	}
	if s, _ := m.ExportStatus("SV_123"); s != ExportRunning {
		t.Fatalf("status before settle = %v", s)
	}
	if _, again := m.Update(key("e")); again != nil {
		t.Fatal("second trigger on a running row should be ignored")
	}

	m.Update(key("j"))
	_, other := m.Update(key("e"))
	if other == nil {
		t.Fatal("second row should export independently")
	}

	m.Update(cmd())
	if s, _ := m.ExportStatus("SV_123"); s != ExportStarted {
		t.Fatalf("status after settle = %v", s)
	}
	if s, _ := m.ExportStatus("SV_456"); s != ExportRunning {
		t.Fatalf("other row status = %v", s)
	}
	if !strings.HasPrefix(m.Notice(), "Export initiated successfully!") {
		t.Fatalf("notice = %q", m.Notice())
	}

	m.Update(key("x"))
	if m.Notice() != "" {
		t.Fatal("notice not dismissed by key press")
	}
	if len(api.exported) != 1 || api.exported[0] != "SV_123/json" {
		t.Fatalf("exported = %v", api.exported)
	}
}

func TestExportFailureShowsNotice(t *testing.T) {
	api := &fakeAPI{
		surveys:   []models.Survey{{ID: "SV_1", Name: "A"}},
		exportErr: &APIError{Message: "Failed to export survey", Details: "boom"},
	}
	m := loadedModel(t, api)
	_, cmd := m.Update(key("enter"))
	m.Update(cmd())
	if s, _ := m.ExportStatus("SV_1"); s != ExportFailed {
		t.Fatalf("status = %v", s)
	}
	if m.Notice() != "Export failed: Failed to export survey: boom" {
		t.Fatalf("notice = %q", m.Notice())
	}
	if m.State() != Loaded || len(m.Surveys()) != 1 {
		t.Fatal("export failure leaked into list state")
	}
}

func TestViewKeyAndReload(t *testing.T) {
	api := &fakeAPI{surveys: []models.Survey{{ID: "SV_1", Name: "A"}}}
	m := loadedModel(t, api)
	m.Update(key("v"))
	if m.Notice() != "View functionality coming soon!" {
		t.Fatalf("notice = %q", m.Notice())
	}
	m.Update(key("v"))

	_, cmd := m.Update(key("e"))
	m.Update(cmd())
	m.Update(key("x"))

	_, reload := m.Update(key("r"))
	if reload == nil {
		t.Fatal("reload produced no command")
	}
	if m.State() != Loading || len(m.Surveys()) != 0 {
		t.Fatalf("reload kept state: %s %v", m.State(), m.Surveys())
	}
	if _, ok := m.ExportStatus("SV_1"); ok {
		t.Fatal("reload kept export statuses")
	}
}

func TestTabSwitchesView(t *testing.T) {
	m := NewModel(context.Background(), &fakeAPI{}, Options{})
	m.Init()
	m.Update(m.loadStatsCmd()())
	if !strings.Contains(m.View(), "Total projects: 12") {
		t.Fatalf("dashboard view:\n%s", m.View())
	}
	m.Update(key("tab"))
	if !strings.Contains(m.View(), "Loading surveys...") {
		t.Fatalf("surveys view:\n%s", m.View())
	}
}

func TestReloadDropsRepliesFromEarlierCycle(t *testing.T) {
	api := &fakeAPI{surveys: []models.Survey{{ID: "SV_1", Name: "A"}}}
	m := NewModel(context.Background(), api, Options{StartView: ViewSurveys})
	m.Init()
	firstLoad := m.loadSurveysCmd()
	api.surveysErr = errors.New("first load failed")
	staleFailure := firstLoad()
	api.surveysErr = nil
	m.Update(m.loadSurveysCmd()())

	_, exportCmd := m.Update(key("e"))
	if exportCmd == nil {
		t.Fatal("export did not produce a command")
	}
	staleExport := exportCmd()

	m.Update(key("r"))
	m.Update(m.loadSurveysCmd()())
	if m.State() != Loaded {
		t.Fatalf("state after reload = %s", m.State())
	}

	m.Update(staleExport)
	if s, ok := m.ExportStatus("SV_1"); ok {
		t.Fatalf("earlier export leaked into reloaded model: %v", s)
	}
	if m.Notice() != "" {
		t.Fatalf("notice = %q", m.Notice())
	}

	m.Update(staleFailure)
	if m.State() != Loaded || m.Err() != "" || len(m.Surveys()) != 1 {
		t.Fatalf("earlier failure applied: state=%s err=%q surveys=%v", m.State(), m.Err(), m.Surveys())
	}
}
