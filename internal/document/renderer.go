// AngelaMos | 2026
// renderer.go

package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Resume is the printable view of an enhanced resume.
type Resume struct {
	Name           string
	Email          string
	Phone          string
	Location       string
	LinkedIn       string
	Summary        string
	Experience     []Job
	Education      []School
	TechnicalSkill []string
	SoftSkill      []string
	Certifications string
	Languages      []string
}

type Job struct {
	Position         string
	Company          string
	Period           string
	Responsibilities []string
}

type School struct {
	Degree      string
	Institution string
	Period      string
	Relevant    string
}

const (
	fontFamily  = "Helvetica"
	margin      = 18.0
	lineHeight  = 5.0
	bulletGlyph = "•"
)

// Renderer lays out a resume on A4 in a fixed section order: contact,
// summary, work experience, education, skills, certifications, languages.
// Empty sections are skipped.
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

func (r *Renderer) Render(w io.Writer, res Resume) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(res.Name+" Resume", true)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	p := &page{pdf: pdf, tr: tr}

	p.contact(res)
	p.summary(res.Summary)
	p.experience(res.Experience)
	p.education(res.Education)
	p.skills(res.TechnicalSkill, res.SoftSkill)
	p.certifications(res.Certifications)
	p.languages(res.Languages)

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("layout pdf: %w", err)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}

	return nil
}

type page struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func (p *page) text(s string) string {
	// cp1252 has a bullet; anything it cannot carry degrades instead of failing
	return p.tr(s)
}

func (p *page) contact(res Resume) {
	p.pdf.SetFont(fontFamily, "B", 20)
	p.pdf.CellFormat(0, 10, p.text(res.Name), "", 1, "C", false, 0, "")

	line := joinNonEmpty(" | ", res.Email, res.Phone, res.Location)
	if line != "" {
		p.pdf.SetFont(fontFamily, "", 10)
		p.pdf.CellFormat(0, lineHeight, p.text(line), "", 1, "C", false, 0, "")
	}

	if res.LinkedIn != "" {
		p.pdf.SetFont(fontFamily, "U", 10)
		p.pdf.SetTextColor(0, 0, 200)
		p.pdf.CellFormat(0, lineHeight, p.text(res.LinkedIn), "", 1, "C", false, 0, res.LinkedIn)
		p.pdf.SetTextColor(0, 0, 0)
	}

	p.pdf.Ln(6)
}

func (p *page) heading(title string) {
	p.pdf.SetFont(fontFamily, "B", 13)
	p.pdf.CellFormat(0, 7, title, "B", 1, "L", false, 0, "")
	p.pdf.Ln(2)
}

func (p *page) summary(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.heading("PROFESSIONAL SUMMARY")
	p.pdf.SetFont(fontFamily, "", 10)
	p.pdf.MultiCell(0, lineHeight, p.text(s), "", "J", false)
	p.pdf.Ln(4)
}

func (p *page) experience(jobs []Job) {
	if len(jobs) == 0 {
		return
	}
	p.heading("WORK EXPERIENCE")

	for i, job := range jobs {
		p.pdf.SetFont(fontFamily, "B", 11)
		p.pdf.MultiCell(0, lineHeight+1, p.text(job.Position), "", "L", false)

		p.pdf.SetFont(fontFamily, "I", 10)
		p.pdf.MultiCell(0, lineHeight, p.text(joinNonEmpty(" | ", job.Company, job.Period)), "", "L", false)
		p.pdf.Ln(1)

		p.pdf.SetFont(fontFamily, "", 10)
		for _, item := range job.Responsibilities {
			p.bullet(item)
		}

		if i < len(jobs)-1 {
			p.pdf.Ln(3)
		}
	}
	p.pdf.Ln(4)
}

func (p *page) bullet(s string) {
	left, _, _, _ := p.pdf.GetMargins()
	p.pdf.SetX(left + 5)
	p.pdf.CellFormat(4, lineHeight, p.text(bulletGlyph), "", 0, "L", false, 0, "")
	p.pdf.SetLeftMargin(left + 9)
	p.pdf.MultiCell(0, lineHeight, p.text(s), "", "L", false)
	p.pdf.SetLeftMargin(left)
}

func (p *page) education(schools []School) {
	if len(schools) == 0 {
		return
	}
	p.heading("EDUCATION")

	for _, s := range schools {
		p.pdf.SetFont(fontFamily, "B", 11)
		p.pdf.MultiCell(0, lineHeight+1, p.text(s.Degree), "", "L", false)
		p.pdf.SetFont(fontFamily, "", 10)
		p.pdf.MultiCell(0, lineHeight, p.text(joinNonEmpty(" | ", s.Institution, s.Period)), "", "L", false)
		if s.Relevant != "" {
			p.pdf.SetFont(fontFamily, "I", 9)
			p.pdf.MultiCell(0, lineHeight, p.text("Relevant Coursework: "+s.Relevant), "", "L", false)
		}
		p.pdf.Ln(2)
	}
	p.pdf.Ln(2)
}

func (p *page) skills(technical, soft []string) {
	if len(technical) == 0 && len(soft) == 0 {
		return
	}
	p.heading("SKILLS")

	for _, group := range []struct {
		label string
		items []string
	}{
		{"Technical Skills:", technical},
		{"Soft Skills:", soft},
	} {
		if len(group.items) == 0 {
			continue
		}
		p.pdf.SetFont(fontFamily, "B", 10)
		p.pdf.CellFormat(0, lineHeight+1, group.label, "", 1, "L", false, 0, "")
		p.pdf.SetFont(fontFamily, "", 10)
		p.pdf.MultiCell(0, lineHeight, p.text(strings.Join(group.items, " "+bulletGlyph+" ")), "", "L", false)
		p.pdf.Ln(2)
	}
	p.pdf.Ln(2)
}

func (p *page) certifications(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	p.heading("CERTIFICATIONS")
	p.pdf.SetFont(fontFamily, "", 10)
	p.pdf.MultiCell(0, lineHeight, p.text(s), "", "L", false)
	p.pdf.Ln(4)
}

func (p *page) languages(langs []string) {
	if len(langs) == 0 {
		return
	}
	p.heading("LANGUAGES")
	p.pdf.SetFont(fontFamily, "", 10)
	p.pdf.MultiCell(0, lineHeight, p.text(strings.Join(langs, " "+bulletGlyph+" ")), "", "L", false)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}

// Sections lists the headings Render will emit for res, in order.
func Sections(res Resume) []string {
	var out []string
	if strings.TrimSpace(res.Summary) != "" {
		out = append(out, "PROFESSIONAL SUMMARY")
	}
	if len(res.Experience) > 0 {
		out = append(out, "WORK EXPERIENCE")
	}
	if len(res.Education) > 0 {
		out = append(out, "EDUCATION")
	}
	if len(res.TechnicalSkill) > 0 || len(res.SoftSkill) > 0 {
		out = append(out, "SKILLS")
	}
	if strings.TrimSpace(res.Certifications) != "" {
		out = append(out, "CERTIFICATIONS")
	}
	if len(res.Languages) > 0 {
		out = append(out, "LANGUAGES")
	}
	return out
}
