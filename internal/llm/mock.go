// AngelaMos | 2026
// mock.go

package llm

import (
	"context"
	"time"
)

// MockClient answers every prompt with the same canned optimization so the
// pipeline can run without provider credentials.
type MockClient struct {
	Delay time.Duration
}

func NewMockClient() *MockClient {
	return &MockClient{Delay: 300 * time.Millisecond}
}

func (m *MockClient) Complete(ctx context.Context, _ string) (string, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-t.C:
		}
	}
	return mockCompletion, nil
}

const mockCompletion = "```json\n" + `{
  "originalResume": {
    "contact": {
      "name": "Juan Dela Cruz",
      "phone": "09171234567",
      "email": "juan.delacruz@example.com",
      "address": "123 Rizal St., Brgy. San Isidro, Quezon City, Metro Manila"
    },
    "summary": "Forestry graduate looking for work.",
    "experience": [
      {
        "position": "Intern",
        "company": "DENR",
        "period": "Jun 2023 - Aug 2023",
        "responsibilities": ["Helped with tree inventory", "Encoded data"]
      }
    ],
    "education": [
      {
        "degree": "BS Forestry",
        "institution": "University of the Philippines Los Banos",
        "period": "2019 - 2023"
      }
    ],
    "skills": ["MS Excel", "GPS", "teamwork"],
    "languages": ["English", "Filipino"]
  },
  "enhancedResume": {
    "contact": {
      "name": "Juan Dela Cruz",
      "phone": "+63 917 123 4567",
      "email": "juan.delacruz@example.com",
      "location": "Quezon City, Metro Manila",
      "linkedin": "N/A"
    },
    "summary": "Detail-oriented Forestry graduate with hands-on field inventory and data management experience from the Department of Environment and Natural Resources, seeking to apply GIS-supported resource assessment skills.",
    "experience": [
      {
        "position": "Forestry Intern",
        "company": "Department of Environment and Natural Resources (DENR)",
        "period": "June 2023 - August 2023",
        "responsibilities": [
          "Supported forest inventory of 500+ trees across 3 survey plots using GPS-tagged sampling",
          "Maintained 100% data accuracy while encoding field measurements into Microsoft Excel",
          "Collaborated with a 6-person field team to complete survey schedules on time",
          "Coordinated daily data handoff between field teams and the regional office",
          "Executed quality checks on encoded records before weekly submission"
        ]
      }
    ],
    "education": [
      {
        "degree": "Bachelor of Science in Forestry",
        "institution": "University of the Philippines Los Banos",
        "period": "2019 - 2023"
      }
    ],
    "skills": {
      "technical": ["Microsoft Excel", "GPS Field Navigation", "Forest Inventory Data Encoding"],
      "soft": ["Team Collaboration", "Attention to Detail"]
    },
    "languages": ["English (Professional)", "Filipino (Native)"],
    "certifications": ["N/A"]
  },
  "improvements": [
    {
      "category": "Experience",
      "changes": ["Expanded 2 bullets into 5 action-verb statements with metrics"],
      "impact": "critical"
    },
    {
      "category": "Skills",
      "changes": ["Split skills into technical and soft categories"],
      "impact": "high"
    }
  ],
  "atsScore": {
    "original": 48,
    "enhanced": 82,
    "categories": [
      {"name": "Keywords", "original": 40, "enhanced": 80},
      {"name": "Formatting", "original": 55, "enhanced": 88},
      {"name": "Content Depth", "original": 45, "enhanced": 78}
    ]
  }
}` + "\n```"
