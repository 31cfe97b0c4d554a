package browse

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amishk599/jobmatch/internal/model"
	"github.com/amishk599/jobmatch/internal/search"
)

func sampleResult() search.Result {
	a := model.JobRecord{Title: "Golang Developer", Company: "Acme", Location: "Lahore", Source: "linkedin", ApplyLink: "https://www.linkedin.com/jobs/view/1/"}
	b := model.JobRecord{Title: "Go Engineer", Company: "Beta", Source: "indeed", Summary: "Build services in Go."}
	c := model.JobRecord{Title: "Accountant", Company: "Gamma", Source: "linkedin"}
	return search.Result{
		Collected: []model.JobRecord{a, b, c},
		Ranked: []model.ScoredJob{
			{JobRecord: a, Score: 0.81},
			{JobRecord: b, Score: 0.93},
		},
	}
}

func sized(t *testing.T, m browseModel) browseModel {
	t.Helper()
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(browseModel)
}

func key(t *testing.T, m browseModel, k string) browseModel {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, _ := m.Update(msg)
	return next.(browseModel)
}

func TestRankedEntries_SortedByScore(t *testing.T) {
	got := rankedEntries(sampleResult().Ranked)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].job.Company != "Beta" || got[1].job.Company != "Acme" {
		t.Errorf("order = %s, %s; want Beta, Acme", got[0].job.Company, got[1].job.Company)
	}
	if got[1].job.Location != "Lahore" || got[0].job.Location != model.UnknownLocation {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestCollectedEntries_Unscored(t *testing.T) {
	got := collectedEntries(sampleResult().Collected)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for _, e := range got {
		if e.ranked {
			t.Errorf("collected entry %q marked ranked", e.job.Title)
		}
	}
}

func TestBrowseModel_NavigateAndDetail(t *testing.T) {
	m := sized(t, newBrowseModel(model.SearchQuery{Position: "Golang Developer", Location: "Lahore"}, sampleResult()))

	if m.activePane != 1 {
		t.Fatalf("activePane = %d, want ranked pane first", m.activePane)
	}

	m = key(t, m, "j")
	if m.rightCursor != 1 {
		t.Errorf("rightCursor = %d, want 1", m.rightCursor)
	}
	m = key(t, m, "j")
	if m.rightCursor != 1 {
		t.Errorf("rightCursor = %d, want clamped at 1", m.rightCursor)
	}

	m = key(t, m, "enter")
	if m.view != viewDetail {
		t.Fatal("expected detail view after enter")
	}
	if m.detailJob.job.Company != "Acme" {
		t.Errorf("detail company = %q, want Acme", m.detailJob.job.Company)
	}
	detail := m.renderDetail()
	for _, want := range []string{"Golang Developer", "0.810", "https://www.linkedin.com/jobs/view/1/", model.SalaryNotMentioned} {
		if !strings.Contains(detail, want) {
			t.Errorf("detail missing %q:\n%s", want, detail)
		}
	}

	m = key(t, m, "esc")
	if m.view != viewList {
		t.Error("expected list view after esc")
	}

	m = key(t, m, "tab")
	if m.activePane != 0 {
		t.Errorf("activePane = %d, want 0 after tab", m.activePane)
	}
	if !strings.Contains(m.View(), "Collected (3)") {
		t.Errorf("list view missing collected header:\n%s", m.View())
	}
}

func TestBrowseModel_QuitAndBack(t *testing.T) {
	m := sized(t, newBrowseModel(model.SearchQuery{}, sampleResult()))

	if got := key(t, m, "q"); !got.wantQuit {
		t.Error("q should request quit")
	}
	if got := key(t, m, "b"); got.wantQuit {
		t.Error("b should return to picker, not quit")
	}
}

func TestBrowseModel_EmptyResult(t *testing.T) {
	m := sized(t, newBrowseModel(model.SearchQuery{}, search.Result{}))
	m = key(t, m, "enter")
	if m.view != viewList {
		t.Error("enter on an empty pane must not open detail")
	}
	if !strings.Contains(renderJobs(nil, 0, true), "(no jobs)") {
		t.Error("expected placeholder for empty pane")
	}
}

func TestRenderJobs_ShowsScoreOnlyWhenRanked(t *testing.T) {
	res := sampleResult()
	ranked := renderJobs(rankedEntries(res.Ranked), 0, true)
	if !strings.Contains(ranked, "0.93") {
		t.Errorf("ranked pane missing score:\n%s", ranked)
	}
	collected := renderJobs(collectedEntries(res.Collected), 0, false)
	if strings.Contains(collected, "0.93") {
		t.Errorf("collected pane should not show scores:\n%s", collected)
	}
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wordWrap = %q, want %q", got, want)
	}
	if wordWrap("   ", 10) != "" {
		t.Error("wordWrap of blank text should be empty")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct{ v, lo, hi, want int }{
		{-1, 0, 5, 0},
		{3, 0, 5, 3},
		{9, 0, 5, 5},
	}
	for _, tt := range tests {
		if got := clamp(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("clamp(%d, %d, %d) = %d, want %d", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestPickerModel(t *testing.T) {
	m := pickerModel{
		queries: []model.SearchQuery{
			{Position: "Golang Developer", Location: "Lahore"},
			{Position: "SRE", Location: "Remote"},
		},
		chosen: pickPending,
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := next.(pickerModel).chosen; got != 1 {
		t.Errorf("chosen = %d, want 1", got)
	}

	quit, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if got := quit.(pickerModel).chosen; got != pickQuit {
		t.Errorf("chosen = %d, want quit", got)
	}

	if !strings.Contains(m.View(), "SRE (Remote)") {
		t.Errorf("picker view missing label:\n%s", m.View())
	}
}

func TestLoaderModel_CompletesWithResult(t *testing.T) {
	m := newLoaderModel("test", func(ctx context.Context) search.Result {
		return search.Result{RequestID: "abc"}
	})
	next, _ := m.Update(searchDoneMsg{result: search.Result{RequestID: "abc"}})
	final := next.(loaderModel)
	if !final.done || final.result.RequestID != "abc" || final.err != nil {
		t.Errorf("loader state = %+v", final)
	}
	if final.View() != "" {
		t.Error("finished loader should render nothing")
	}
	if final.ctx.Err() == nil {
		t.Error("search context should be released once done")
	}
}

func TestLoaderModel_CtrlCCancels(t *testing.T) {
	m := newLoaderModel("test", func(ctx context.Context) search.Result { return search.Result{} })
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	final := next.(loaderModel)
	if final.err != errCancelled {
		t.Errorf("err = %v, want cancelled", final.err)
	}
	if final.ctx.Err() == nil {
		t.Error("ctrl+c should cancel the in-flight search")
	}
}
