package genai

import (
	"fmt"
	"strings"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
)

const personality = `
IDENTITY: JARVIS (Strategic Growth Processor).
TONE: Highly logical, precise, unemotional, futuristic, data-driven.
STYLE: Similar to a Star Trek computer or Iron Man's Jarvis.
OUTPUT: Dense information, calculated probabilities, no fluff.
`

func competitorScanPrompt(url string) string {
	return personality + fmt.Sprintf(`
TASK: Execute a deep web scan for: %s.
OBJECTIVE: Identify exactly 5 direct competitors in the same market niche.
CRITERIA: Focus on brands likely bidding in the same Meta Ads auctions.
TOOL USE: Use Google Search to verify the website exists and find real similar brands.
RESPONSE FORMAT: RETURN ONLY A RAW JSON ARRAY. No markdown formatting, no explanation, no code blocks.
Schema: [{ "name": "Brand Name", "url": "website.com", "strength": "Brief strength analysis" }]
`, url)
}

func growthAnalysisPrompt(url string, competitors []domain.Competitor, siteContext string) string {
	var sb strings.Builder
	sb.WriteString(personality)
	fmt.Fprintf(&sb, "\nTASK: Solve the \"Growth Puzzle\" for %s.\n", url)
	if siteContext != "" {
		fmt.Fprintf(&sb, "SITE PROFILE:\n%s\n", siteContext)
	}
	sb.WriteString("CONTEXT:\nWe have analyzed traffic data for these top competitors:\n")
	for _, c := range competitors {
		visits, bounce := "Unknown", "N/A"
		if c.Traffic != nil {
			if c.Traffic.MonthlyVisits != "" {
				visits = c.Traffic.MonthlyVisits
			}
			if c.Traffic.BounceRate != "" {
				bounce = c.Traffic.BounceRate
			}
		}
		fmt.Fprintf(&sb, "- %s (%s): %s visits/mo, Bounce: %s\n", c.Name, c.URL, visits, bounce)
	}
	fmt.Fprintf(&sb, `
1. CALCULATE GROSS OPPORTUNITY: Estimate the potential revenue or efficiency upside based on the traffic gap between %s and these competitors.
2. STRATEGIC OPTIONS: Provide 3 distinct, high-level strategic options for Meta Ads growth to bridge this gap.
3. MARKET GAP: Identify one specific inefficiency in the current market landscape based on the traffic data (e.g., high bounce rates suggest poor landing pages).
4. CONSTRAINT: Ignore SEO. Focus STRICTLY on Paid Acquisition (Meta/Facebook/Instagram).

Output strict JSON only. Object properties: executiveSummary, marketGap, grossOpportunity, options (array of {id, label, hypothesis, projectedImpact, requirements}), metaDiagnostic. No markdown.`, url)
	return sb.String()
}

func metaDiagnosticPrompt(url string) string {
	return personality + fmt.Sprintf(`
TASK: Simulate a diagnostic handshake with a Meta Ad Account for %s.
Identify a critical failing metric (e.g. Creative Fatigue, High CPM).
Provide a 1-sentence mathematical fix.`, url)
}
