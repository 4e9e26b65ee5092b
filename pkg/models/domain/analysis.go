package domain

import "slices"

// TrafficMetrics holds display-ready traffic figures for a site
type TrafficMetrics struct {
	MonthlyVisits string `json:"monthlyVisits"`
	BounceRate    string `json:"bounceRate"`
	AvgDuration   string `json:"avgDuration"`
	DeviceSplit   string `json:"deviceSplit"`
}

// Competitor is identified by its position in the list it was offered in.
type Competitor struct {
	Name     string          `json:"name"`
	URL      string          `json:"url"`
	Strength string          `json:"strength"`
	Traffic  *TrafficMetrics `json:"traffic,omitempty"`
}

type GrowthOption struct {
	ID              string   `json:"id"`
	Label           string   `json:"label"`
	Hypothesis      string   `json:"hypothesis"`
	ProjectedImpact int      `json:"projectedImpact"`
	Requirements    []string `json:"requirements"`
}

// AnalysisResult is built once per session and never mutated afterwards.
type AnalysisResult struct {
	ExecutiveSummary string         `json:"executiveSummary"`
	Competitors      []Competitor   `json:"competitors"`
	GrossOpportunity string         `json:"grossOpportunity"`
	MarketGap        string         `json:"marketGap"`
	Options          []GrowthOption `json:"options"`
	MetaDiagnostic   string         `json:"metaDiagnostic"`
}

func (c Competitor) Clone() Competitor {
	if c.Traffic != nil {
		traffic := *c.Traffic
		c.Traffic = &traffic
	}
	return c
}

func CloneCompetitors(competitors []Competitor) []Competitor {
	if competitors == nil {
		return nil
	}
	out := make([]Competitor, len(competitors))
	for i, c := range competitors {
		out[i] = c.Clone()
	}
	return out
}

func (r AnalysisResult) Clone() AnalysisResult {
	r.Competitors = CloneCompetitors(r.Competitors)
	if r.Options != nil {
		options := make([]GrowthOption, len(r.Options))
		for i, o := range r.Options {
			o.Requirements = slices.Clone(o.Requirements)
			options[i] = o
		}
		r.Options = options
	}
	return r
}

// DemoCompetitors is the list offered whenever live discovery is unavailable.
func DemoCompetitors() []Competitor {
	return []Competitor{
		{Name: "Market Leader Alpha", URL: "competitor-a.com", Strength: "High Frequency Ads"},
		{Name: "Sector Target Beta", URL: "competitor-b.com", Strength: "Video Velocity"},
		{Name: "Sector Target Gamma", URL: "competitor-c.com", Strength: "Aggressive Offers"},
		{Name: "Niche Disruptor", URL: "competitor-d.com", Strength: "Low CPM Strategy"},
		{Name: "Legacy Brand", URL: "competitor-e.com", Strength: "High AOV Bundles"},
	}
}

// FallbackAnalysis is the dashboard shown when the deep pass fails. Every
// selected competitor gets the sector-average traffic profile.
func FallbackAnalysis(selected []Competitor) AnalysisResult {
	competitors := make([]Competitor, 0, len(selected))
	for _, c := range selected {
		competitors = append(competitors, Competitor{
			Name:     c.Name,
			URL:      c.URL,
			Strength: c.Strength,
			Traffic: &TrafficMetrics{
				MonthlyVisits: "50K+",
				BounceRate:    "45%",
				AvgDuration:   "2m 30s",
				DeviceSplit:   "60% Mobile",
			},
		})
	}

	return AnalysisResult{
		ExecutiveSummary: "Analysis complete. Based on competitor intelligence, significant growth opportunities identified in Meta Ads optimization.",
		Competitors:      competitors,
		GrossOpportunity: "$12k - $50k / mo",
		MarketGap:        "High CPM in mobile feeds",
		Options: []GrowthOption{
			{
				ID:              "opt-1",
				Label:           "Optimize Creative Strategy",
				Hypothesis:      "Implement high-velocity video creatives to reduce bounce rate by 20%",
				ProjectedImpact: 85,
				Requirements:    []string{"Video Assets", "A/B Testing"},
			},
			{
				ID:              "opt-2",
				Label:           "Mobile Feed Optimization",
				Hypothesis:      "Undercut competitor CPMs in mobile feeds where efficiency is low",
				ProjectedImpact: 75,
				Requirements:    []string{"Mobile Creative", "Budget Allocation"},
			},
			{
				ID:              "opt-3",
				Label:           "Audience Retargeting",
				Hypothesis:      "Implement lookalike audiences based on high-value competitor traffic",
				ProjectedImpact: 80,
				Requirements:    []string{"Pixel Data", "Custom Audiences"},
			},
		},
		MetaDiagnostic: "Connection pending - connect Meta account for detailed diagnostics",
	}
}
