package relevance

import (
	"reflect"
	"testing"

	"github.com/reitermarkus/infosec-job-scraper/pkg/jobfacts/rules"
)

func newTestFilter() *Filter {
	return New(rules.MustDefault().Relevance)
}

func TestRelevant(t *testing.T) {
	f := newTestFilter()

	tests := []struct {
		title string
		want  bool
	}{
		{"IT Security Specialist", true},
		{"Senior Backend Developer", false},
		{"Cyber Security Analyst (m/w/d)", true},
		{"Informationssicherheitsbeauftragte/r", true},
		{"Network Security Engineer", true},
		{"Penetration Tester", true},
		{"Pentester", true},
		{"Security Officer", true},
		{"Sicherheitsberater", true},
		{"IT-Sicherheit Spezialist", true},
		{"Netzwerktechniker", false},
		{"Security Guard", false},
		{"IT Consultant", false},
		{"Cyber Operations Lead", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := f.Relevant(tt.title); got != tt.want {
			t.Errorf("Relevant(%q) = %v, want %v (groups %v)", tt.title, got, tt.want, f.Groups(tt.title))
		}
	}
}

func TestWordsMatchWholeWordsOnly(t *testing.T) {
	f := newTestFilter()

	// "it" is a substring of "security" but must not count as a word.
	got := f.Groups("Security Guard")
	if !reflect.DeepEqual(got, []string{"security"}) {
		t.Errorf("Expected [security], got %v", got)
	}
}

func TestGroupsRuleOrder(t *testing.T) {
	f := newTestFilter()

	got := f.Groups("IT Security Specialist")
	expected := []string{"information", "security", "role"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestCustomGroups(t *testing.T) {
	f := New(rules.Relevance{
		Groups: []rules.Group{
			{Name: "cloud", Words: []string{"AWS"}, Stems: []string{"cloud"}},
			{Name: "ops", Stems: []string{"ops"}},
		},
		AnyOf: [][]string{{"cloud", "ops"}, {}},
	})

	if !f.Relevant("AWS DevOps") {
		t.Error("AWS DevOps should be relevant")
	}
	if f.Relevant("Cloud Architect") {
		t.Error("Cloud Architect should not be relevant")
	}
}
