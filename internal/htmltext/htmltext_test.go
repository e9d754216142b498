package htmltext

import "testing"

func TestText(t *testing.T) {
	var c Converter

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "IT Security Consultant", "IT Security Consultant"},
		{"entities", "Gehalt &euro; 3.500 &amp; mehr", "Gehalt € 3.500 & mehr"},
		{"inline", "<p>Standort <b>Wien</b></p>", "Standort Wien"},
		{"blocks", "<h2>Aufgaben</h2><ul><li>Audits</li><li>Pentests</li></ul>", "Aufgaben\nAudits\nPentests"},
		{"line break", "Vollzeit<br>Teilzeit", "Vollzeit\nTeilzeit"},
		{"script skipped", "<div>Job<script>var x = 1;</script></div>", "Job"},
		{"whitespace", "  <p>  viel \t  Platz  </p> ", "viel Platz"},
		{"text newlines kept", "## Profil\n* Erfahrung", "## Profil\n* Erfahrung"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Text(tt.in)
			if err != nil {
				t.Fatalf("Text(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
