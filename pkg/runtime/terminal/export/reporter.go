package export

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/metagrowth/growth-agent/pkg/models/store"
	"github.com/nao1215/markdown"
)

const notAvailable = "N/A"

// Reporter prints analysis results as markdown
type Reporter struct {
	writer io.Writer
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{writer: writer}
}

// Competitors lists the discovered competitors with the index used by --select
func (c *Reporter) Competitors(competitors []domain.Competitor) error {
	md := markdown.NewMarkdown(c.writer)

	md.H2("Competitors")
	md.PlainText("")
	if len(competitors) == 0 {
		md.PlainText("No competitors found.")
		return md.Build()
	}

	rows := make([][]string, 0, len(competitors))
	for i, comp := range competitors {
		rows = append(rows, []string{strconv.Itoa(i), comp.Name, comp.URL, comp.Strength})
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Name", "URL", "Strength"},
		Rows:   rows,
	})
	md.PlainText("")
	return md.Build()
}

// Dashboard prints the growth analysis of url
func (c *Reporter) Dashboard(url string, result domain.AnalysisResult) error {
	md := markdown.NewMarkdown(c.writer)

	md.H1(fmt.Sprintf("Growth dashboard for %s", url))
	md.PlainText("")
	md.PlainText(result.ExecutiveSummary)
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Gross opportunity", result.GrossOpportunity},
			{"Market gap", result.MarketGap},
			{"Meta diagnostic", result.MetaDiagnostic},
		},
	})
	md.PlainText("")

	md.H2("Competitor traffic")
	md.PlainText("")
	rows := make([][]string, 0, len(result.Competitors))
	for _, comp := range result.Competitors {
		t := comp.Traffic
		if t == nil {
			t = &domain.TrafficMetrics{MonthlyVisits: notAvailable, BounceRate: notAvailable, AvgDuration: notAvailable, DeviceSplit: notAvailable}
		}
		rows = append(rows, []string{comp.Name, comp.URL, t.MonthlyVisits, t.BounceRate, t.AvgDuration, t.DeviceSplit})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Name", "URL", "Monthly visits", "Bounce rate", "Avg duration", "Devices"},
		Rows:   rows,
	})
	md.PlainText("")

	md.H2("Growth options")
	md.PlainText("")
	if len(result.Options) == 0 {
		md.PlainText("No growth options available.")
		md.PlainText("")
	}
	for _, opt := range result.Options {
		md.H3(fmt.Sprintf("%s (%d%% projected impact)", opt.Label, opt.ProjectedImpact))
		md.PlainText("")
		md.PlainText(opt.Hypothesis)
		md.PlainText("")
		if len(opt.Requirements) > 0 {
			md.BulletList(opt.Requirements...)
			md.PlainText("")
		}
	}
	return md.Build()
}

// Run prints a stored report run
func (c *Reporter) Run(run *store.ReportRun) error {
	md := markdown.NewMarkdown(c.writer)

	artifact := notAvailable
	if run.ArtifactsPath != nil {
		artifact = *run.ArtifactsPath
	}

	md.H2(fmt.Sprintf("Report run %d", run.ID))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Account", run.AccountID},
			{"Timeframe", run.Timeframe},
			{"Created", run.CreatedAt.Format("2006-01-02 15:04:05 MST")},
			{"Artifact", artifact},
		},
	})
	md.PlainText("")
	md.PlainText(strings.TrimSpace(run.InsightText))
	md.PlainText("")
	return md.Build()
}

// Text prints a single paragraph
func (c *Reporter) Text(title, body string) error {
	md := markdown.NewMarkdown(c.writer)
	md.H2(title)
	md.PlainText("")
	md.PlainText(body)
	md.PlainText("")
	return md.Build()
}
