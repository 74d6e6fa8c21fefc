package funnel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrefilter(t *testing.T) {
	cases := []struct {
		title    string
		reject   bool
		isIntern bool
	}{
		// accept qualifiers always go forward
		{"New Grad Software Engineer", false, false},
		{"Software Engineer, New Graduate", false, false},
		{"Junior Backend Developer", false, false},
		{"Entry Level Software Engineer", false, false},
		{"Entry-Level Engineer", false, false},
		{"Associate Software Engineer", false, false},

		// qualifier wins over any reject pattern
		{"Intern/New Grad Software Engineer", false, true},
		{"Junior Program Manager", false, false},

		// seniority indicators
		{"Senior Software Engineer", true, false},
		{"Sr. Backend Engineer", true, false},
		{"Staff Engineer", true, false},
		{"Principal Engineer", true, false},
		{"Engineering Manager", true, false},
		{"VP of Engineering", true, false},
		{"Head of Platform", true, false},

		// non-engineering roles
		{"Account Executive", true, false},
		{"Sales Development Representative", true, false},
		{"Product Manager", true, false},
		{"Recruiter", true, false},

		// non-engineering word next to an engineering keyword forwards
		{"Sales Engineer", false, false},
		{"Support Software Developer", false, false},

		// plain titles forward; the models decide
		{"Software Engineer", false, false},
		{"Backend Developer", false, false},

		// internship marker alone never rejects
		{"Software Engineering Intern", false, true},
		{"Co-op Developer", false, true},
	}

	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			res := Prefilter(tc.title)
			assert.Equal(t, tc.reject, res.Reject, "reject")
			assert.Equal(t, tc.isIntern, res.IsIntern, "isIntern")
			if tc.reject {
				assert.NotEmpty(t, res.Reason)
			}
		})
	}
}

func TestPriorityFor(t *testing.T) {
	signals := []string{"united states", "usa", "us", "remote", "austin"}

	assert.Equal(t, 1, PriorityFor("", signals))
	assert.Equal(t, 1, PriorityFor("San Francisco, United States", signals))
	assert.Equal(t, 1, PriorityFor("Remote", signals))
	assert.Equal(t, 1, PriorityFor("Austin, TX, US", signals))
	assert.Equal(t, 3, PriorityFor("London, United Kingdom", signals))
	assert.Equal(t, 3, PriorityFor("Vienna, Austria", signals))
	assert.Equal(t, 3, PriorityFor("Toronto, Canada", signals))
}
