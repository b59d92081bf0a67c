// AngelaMos | 2026
// document.go

package optimize

import (
	"github.com/carterperez-dev/enhancify/internal/document"
)

// ToDocument maps an enhanced resume onto the printable view.
func ToDocument(e *EnhancedResume) document.Resume {
	if e == nil {
		return document.Resume{}
	}

	doc := document.Resume{
		Name:           e.Contact.Name,
		Email:          e.Contact.Email,
		Phone:          e.Contact.Phone,
		Location:       e.Contact.Location,
		LinkedIn:       NormalizeLinkedIn(e.Contact.LinkedIn),
		Summary:        e.Summary,
		TechnicalSkill: e.Skills.Technical,
		SoftSkill:      e.Skills.Soft,
		Certifications: NormalizeCertifications(string(e.Certifications)),
		Languages:      e.Languages,
	}

	for _, x := range e.Experience {
		doc.Experience = append(doc.Experience, document.Job{
			Position:         x.Position,
			Company:          x.Company,
			Period:           x.Period,
			Responsibilities: x.Responsibilities,
		})
	}
	for _, ed := range e.Education {
		doc.Education = append(doc.Education, document.School{
			Degree:      ed.Degree,
			Institution: ed.Institution,
			Period:      ed.Period,
			Relevant:    ed.Relevant,
		})
	}

	return doc
}
