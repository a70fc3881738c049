package llm

import (
	"fmt"
	"strings"

	"github.com/shivansh-labs/namegate/internal/analyser"
)

const systemPrompt = `You are a senior business naming consultant with 15+ years of experience in Indian corporate law and MCA registrations.

EXPERTISE AREAS:
- Indian Companies Act 2013 and Incorporation Rules 2014
- Trademark law and intellectual property conflicts
- Brand strategy and market positioning

CORE OBJECTIVES:
Your first task is to analyze the provided list of raw conflict messages. Summarize and rephrase them into a few crisp, user-friendly points. Focus on the core issue and what it means for the user.

Your second task is to provide 5 strategically crafted alternative company names that resolve these legal conflicts while enhancing brand potential.

CRITICAL COMPLIANCE REQUIREMENTS:
1. LEGAL SAFETY: Names must pass MCA approval with high probability
2. DISTINCTIVENESS: Avoid phonetic, visual, or conceptual similarity to conflicting names
3. TRADEMARK CLEARANCE: Steer clear of protected words and phrases
4. PROFESSIONAL STANDARDS: Names should sound established and trustworthy
5. BUSINESS ALIGNMENT: Preserve industry focus and target market appeal

RESPONSE QUALITY STANDARDS:
- Each name suggestion must include a strategic rationale.
- The conflict summary must be concise and easy to understand.
- Prioritize names that can scale with business growth.`

const formatInstructions = `FORMAT INSTRUCTIONS:
Respond with a single JSON object and nothing else, using exactly this shape:
{
  "summarized_conflicts": ["crisp, user-friendly conflict summary points"],
  "recommended_names": [
    {"name": "Alternative Name Private Limited", "reason": "strategic rationale"}
  ]
}
Provide between 3 and 7 recommended names.`

// userPrompt renders the conflict context into the request prompt.
func userPrompt(c analyser.Context, blockingMessages []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "A client wants to register a %s with the name %q but it has conflicts.\n\n", c.CheckType, c.BaseName)

	b.WriteString("RAW CONFLICT MESSAGES FROM PORTAL:\n")
	for _, msg := range blockingMessages {
		fmt.Fprintf(&b, "- %s\n", msg)
	}

	if len(c.SimilarNames) > 0 {
		b.WriteString("\nEXISTING SIMILAR NAMES:\n")
		for _, name := range c.SimilarNames {
			fmt.Fprintf(&b, "- %s\n", name)
		}
	}
	if len(c.TrademarkWords) > 0 {
		b.WriteString("\nCONFLICTING TRADEMARK WORDS:\n")
		for _, word := range c.TrademarkWords {
			fmt.Fprintf(&b, "- %s\n", word)
		}
	}

	fmt.Fprintf(&b, `
TASK:
1. Summarize the key issues from the raw messages above into a clear, concise list.
2. Based on these issues, suggest 5 alternative %s names that resolve the conflicts.

%s`, c.CheckType, formatInstructions)
	return b.String()
}
