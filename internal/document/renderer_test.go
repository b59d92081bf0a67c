// AngelaMos | 2026
// renderer_test.go

package document

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func sampleResume() Resume {
	return Resume{
		Name:     "Juan Dela Cruz",
		Email:    "juan@example.com",
		Phone:    "+63 917 123 4567",
		Location: "Quezon City",
		Summary:  "Forestry graduate with field inventory experience.",
		Experience: []Job{{
			Position:         "Forestry Intern",
			Company:          "DENR",
			Period:           "2023",
			Responsibilities: []string{"Surveyed 500+ trees", "Encoded field data"},
		}},
		Education: []School{{
			Degree:      "BS Forestry",
			Institution: "UPLB",
			Period:      "2019 - 2023",
			Relevant:    "Dendrology",
		}},
		TechnicalSkill: []string{"Excel", "GPS"},
		SoftSkill:      []string{"Teamwork"},
		Languages:      []string{"English", "Filipino"},
	}
}

func TestRenderProducesPDF(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := NewRenderer().Render(&buf, sampleResume()); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("output does not start with a pdf header: %q", buf.Bytes()[:min(8, buf.Len())])
	}
	if !bytes.Contains(buf.Bytes(), []byte("%%EOF")) {
		t.Fatal("output has no pdf trailer")
	}
}

func TestRenderLongContentPaginates(t *testing.T) {
	t.Parallel()

	res := sampleResume()
	for range 40 {
		res.Experience = append(res.Experience, Job{
			Position:         "Engineer",
			Company:          "Acme",
			Period:           "2020",
			Responsibilities: []string{strings.Repeat("Delivered work across teams. ", 8)},
		})
	}

	var buf bytes.Buffer
	if err := NewRenderer().Render(&buf, res); err != nil {
		t.Fatalf("Render: %v", err)
	}
	pages := bytes.Count(buf.Bytes(), []byte("/Type /Page")) - bytes.Count(buf.Bytes(), []byte("/Type /Pages"))
	if pages < 2 {
		t.Fatal("expected more than one page")
	}
}

func TestSectionsOrder(t *testing.T) {
	t.Parallel()

	res := sampleResume()
	want := []string{"PROFESSIONAL SUMMARY", "WORK EXPERIENCE", "EDUCATION", "SKILLS", "LANGUAGES"}
	if got := Sections(res); !slices.Equal(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}

	res.Certifications = "AWS Certified • PMP"
	want = []string{"PROFESSIONAL SUMMARY", "WORK EXPERIENCE", "EDUCATION", "SKILLS", "CERTIFICATIONS", "LANGUAGES"}
	if got := Sections(res); !slices.Equal(got, want) {
		t.Fatalf("sections = %v, want %v", got, want)
	}
}

func TestJoinNonEmpty(t *testing.T) {
	t.Parallel()

	if got := joinNonEmpty(" | ", "a@b.c", " ", "Manila"); got != "a@b.c | Manila" {
		t.Fatalf("joinNonEmpty = %q", got)
	}
	if got := joinNonEmpty(" | "); got != "" {
		t.Fatalf("joinNonEmpty() = %q", got)
	}
}
