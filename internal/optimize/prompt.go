// AngelaMos | 2026
// prompt.go

package optimize

import (
	"strings"
)

// BuildPrompt embeds the resume and, when present, the job description in
// fixed tags ahead of the instruction block. An empty job description
// switches the instructions to general ATS optimization.
func BuildPrompt(resumeText, jobDescription string) string {
	jobDescription = strings.TrimSpace(jobDescription)

	var b strings.Builder
	b.Grow(len(resumeText) + len(jobDescription) + len(promptRules) + len(promptSchema) + 512)

	b.WriteString("<RESUME_TEXT_VERSION>\n")
	b.WriteString(strings.TrimSpace(resumeText))
	b.WriteString("\n</RESUME_TEXT_VERSION>\n\n")

	if jobDescription != "" {
		b.WriteString("<JOB_DESCRIPTION>\n")
		b.WriteString(jobDescription)
		b.WriteString("\n</JOB_DESCRIPTION>\n\n")
		b.WriteString(targetedMode)
	} else {
		b.WriteString(generalMode)
	}

	b.WriteString(promptRules)
	b.WriteString(promptSchema)

	return b.String()
}

const targetedMode = `You are an ATS (Applicant Tracking System) resume optimizer. Rewrite the resume in RESUME_TEXT_VERSION so it scores well against the posting in JOB_DESCRIPTION. Put the experience and skills that match the posting first and mirror its keywords where the resume already supports them.

`

const generalMode = `You are an ATS (Applicant Tracking System) resume optimizer. No job description was supplied, so optimize the resume in RESUME_TEXT_VERSION for general ATS compatibility in its own field.

`

const promptRules = `Rules you must never break:
- Use only information present in RESUME_TEXT_VERSION.
- Do not add skills, experience, employers, dates, courses, certifications or achievements that are not in the source text.
- Do not fill gaps or infer missing information. Keep unclear details as they are.
- Certifications: if the source mentions none, "certifications" must be the empty string "". Never write "N/A", "None", "To be added" or example certifications.
- LinkedIn: only include a profile URL that appears in the source. Otherwise use "".

What you may do:
- Clarify job titles (for example "Intern" to "Forestry Intern") and expand acronyms in company names.
- Rewrite bullet points as action-verb accomplishment statements and add metrics the source supports.
- Align keywords with the job description when one is given.
- Split skills into technical and soft skills.
- Format phone numbers with a country code and shorten addresses to a location.
- Fix grammar and incomplete sentences.
- Score the original and the enhanced resume from 0 to 100 on keyword match, formatting, content depth and completeness.

Every entry in "improvements" must have "impact" set to "high" or "critical".

`

const promptSchema = `Respond with one JSON object in exactly this shape:

{
  "originalResume": {
    "contact": {"name": "", "phone": "", "email": "", "address": ""},
    "summary": "",
    "experience": [{"position": "", "company": "", "period": "", "responsibilities": [""]}],
    "education": [{"degree": "", "institution": "", "period": ""}],
    "skills": [""],
    "languages": [""]
  },
  "enhancedResume": {
    "contact": {"name": "", "phone": "", "email": "", "location": "", "linkedin": ""},
    "summary": "",
    "experience": [{"position": "", "company": "", "period": "Month Year - Month Year", "responsibilities": [""]}],
    "education": [{"degree": "", "institution": "", "period": ""}],
    "skills": {"technical": [""], "soft": [""]},
    "languages": ["language (proficiency)"],
    "certifications": ""
  },
  "improvements": [{"category": "", "changes": [""], "impact": "high"}],
  "atsScore": {
    "original": 0,
    "enhanced": 0,
    "categories": [{"name": "", "original": 0, "enhanced": 0}]
  }
}

Return only the JSON object. No markdown, no commentary.
`
