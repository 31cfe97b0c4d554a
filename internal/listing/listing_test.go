package listing

import (
	"encoding/json"
	"testing"

	"github.com/amishk599/jobmatch/internal/model"
)

func TestFromScored_FillsDefaultsAndKeepsOrder(t *testing.T) {
	jobs := []model.ScoredJob{
		{JobRecord: model.JobRecord{Title: "Go Developer", Company: "Acme", ApplyLink: "https://www.linkedin.com/jobs/view/1/"}, Score: 0.9},
		{JobRecord: model.JobRecord{}, Score: 0.8},
	}

	got := FromScored(jobs)
	if len(got) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(got))
	}
	if got[0].JobTitle != "Go Developer" || got[0].Company != "Acme" {
		t.Errorf("unexpected first listing %+v", got[0])
	}
	if got[0].Salary != model.SalaryNotMentioned || got[0].Experience != model.ExperienceNotSpecified {
		t.Errorf("expected defaults on first listing, got %+v", got[0])
	}

	want := model.JobListing{
		JobTitle:   model.NoTitle,
		Company:    model.UnknownCompany,
		Location:   model.UnknownLocation,
		Experience: model.ExperienceNotSpecified,
		Salary:     model.SalaryNotMentioned,
		ApplyLink:  model.NoLink,
	}
	if got[1] != want {
		t.Errorf("expected %+v, got %+v", want, got[1])
	}
}

func TestFromScored_EmptyIsNotNil(t *testing.T) {
	got := FromScored(nil)
	if got == nil {
		t.Fatal("expected empty non-nil slice")
	}
	b, _ := json.Marshal(got)
	if string(b) != "[]" {
		t.Errorf("expected JSON [], got %s", b)
	}
}

func TestListing_JSONFieldNames(t *testing.T) {
	b, err := json.Marshal(FromRecord(model.JobRecord{Title: "x"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]string
	json.Unmarshal(b, &m)
	for _, k := range []string{"job_title", "company", "location", "experience", "salary", "apply_link"} {
		if m[k] == "" {
			t.Errorf("expected non-empty %s in %s", k, b)
		}
	}
}

func TestFromRecords(t *testing.T) {
	got := FromRecords([]model.JobRecord{{Title: "a"}, {Title: "b"}})
	if len(got) != 2 || got[0].JobTitle != "a" || got[1].JobTitle != "b" {
		t.Errorf("unexpected listings %+v", got)
	}
}
