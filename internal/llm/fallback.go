package llm

import (
	"fmt"
	"strings"

	"github.com/shivansh-labs/namegate/internal/model"
)

// legalSuffixWords are dropped when extracting the key word from a base
// name for templated suggestions.
var legalSuffixWords = map[string]bool{
	"private": true, "limited": true, "ltd": true,
	"pvt": true, "company": true, "services": true,
}

// FallbackSuggestions produces deterministic alternatives when no model
// is reachable. Names with a digital or Indian-identity theme get a
// themed set; everything else gets templates built around the first
// distinctive word of the base name.
func FallbackSuggestions(baseName string) []model.Suggestion {
	if baseName == "" {
		baseName = "Business"
	}
	lower := strings.ToLower(baseName)

	switch {
	case strings.Contains(lower, "digital") || strings.Contains(lower, "tech"):
		return []model.Suggestion{
			{Name: "Digital Innovation Solutions Private Limited", Reason: "Emphasizes innovation in digital technology"},
			{Name: "Advanced Digital Services Private Limited", Reason: "Highlights advanced digital capabilities"},
			{Name: "Digital Excellence Partners Private Limited", Reason: "Focuses on excellence and partnership"},
			{Name: "NextGen Digital Solutions Private Limited", Reason: "Suggests next-generation digital services"},
			{Name: "Digital Transformation Hub Private Limited", Reason: "Emphasizes digital transformation expertise"},
		}
	case strings.Contains(lower, "bharat") || strings.Contains(lower, "india"):
		return []model.Suggestion{
			{Name: "Bharat Innovation Technologies Private Limited", Reason: "Combines Indian identity with technology focus"},
			{Name: "Digital Bharat Solutions Private Limited", Reason: "Maintains Bharat identity with solution focus"},
			{Name: "Bharat Tech Ventures Private Limited", Reason: "Emphasizes technology and business ventures"},
			{Name: "New Bharat Digital Private Limited", Reason: "Suggests modern digital services for India"},
			{Name: "Bharat Excellence Services Private Limited", Reason: "Focuses on service excellence with Indian identity"},
		}
	}

	keyWord := "Business"
	for _, w := range strings.Fields(lower) {
		if !legalSuffixWords[w] {
			keyWord = titleCase(w)
			break
		}
	}
	return []model.Suggestion{
		{Name: fmt.Sprintf("%s Solutions Private Limited", keyWord), Reason: "Professional solution-focused approach"},
		{Name: fmt.Sprintf("Advanced %s Services Private Limited", keyWord), Reason: "Emphasizes advanced service capabilities"},
		{Name: fmt.Sprintf("%s Excellence Private Limited", keyWord), Reason: "Focuses on excellence in the business domain"},
		{Name: fmt.Sprintf("Professional %s Partners Private Limited", keyWord), Reason: "Highlights professional partnership approach"},
		{Name: fmt.Sprintf("%s Innovation Hub Private Limited", keyWord), Reason: "Suggests innovation and collaborative workspace"},
	}
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + w[1:]
}
