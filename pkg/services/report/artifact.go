package report

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/metagrowth/growth-agent/pkg/models/domain"
	"github.com/nao1215/markdown"
)

// RenderArtifact lays a report run out as a markdown document
func RenderArtifact(accountID, timeframe string, meta, competitor map[string]any, insight domain.Insight, at time.Time) ([]byte, error) {
	var buf bytes.Buffer
	md := markdown.NewMarkdown(&buf)

	md.H1(fmt.Sprintf("Growth report for %s", accountID))
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Account", accountID},
			{"Timeframe", timeframe},
			{"Generated", at.UTC().Format("2006-01-02 15:04:05 MST")},
			{"Provider", insight.Provider},
		},
	})
	md.PlainText("")

	md.H2("Insight")
	md.PlainText("")
	md.PlainText(insight.Text)
	md.PlainText("")

	md.H2("Meta Ads")
	md.PlainText("")
	md.Table(markdown.TableSet{Header: []string{"Metric", "Value"}, Rows: rows(meta)})
	md.PlainText("")

	md.H2("Competitor intel")
	md.PlainText("")
	md.Table(markdown.TableSet{Header: []string{"Metric", "Value"}, Rows: rows(competitor)})
	md.PlainText("")

	if err := md.Build(); err != nil {
		return nil, fmt.Errorf("render artifact: %w", err)
	}
	return buf.Bytes(), nil
}

func rows(m map[string]any) [][]string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([][]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, []string{k, fmt.Sprint(m[k])})
	}
	return out
}
