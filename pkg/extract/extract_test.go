package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_FencedMatchesPlainParse(t *testing.T) {
	docs := []string{
		`[{"name":"Acme","url":"acme.com","strength":"Video"}]`,
		`{"executiveSummary":"ok","options":[{"id":"a","projectedImpact":70}]}`,
		`"just a string"`,
		`42`,
		`true`,
		`null`,
		`[]`,
	}

	for _, doc := range docs {
		var want any
		require.NoError(t, json.Unmarshal([]byte(doc), &want))

		wrappings := map[string]string{
			"plain":        doc,
			"json fence":   "```json\n" + doc + "\n```",
			"bare fence":   "```\n" + doc + "\n```",
			"padded fence": "  \n```json" + doc + "```  \n",
		}
		for name, text := range wrappings {
			t.Run(doc+"/"+name, func(t *testing.T) {
				m, ok := ExtractMatch(text)
				require.True(t, ok)
				assert.Equal(t, want, m.Value)
				assert.Equal(t, RuleDirect, m.Rule)
			})
		}
	}
}

func TestExtract_ArrayInsideProse(t *testing.T) {
	text := `Here are the competitors you asked for: [{"name":"A"},{"name":"B"}] Let me know if you need more.`

	m, ok := ExtractMatch(text)
	require.True(t, ok)
	assert.Equal(t, RuleArray, m.Rule)
	assert.Equal(t, []any{
		map[string]any{"name": "A"},
		map[string]any{"name": "B"},
	}, m.Value)
	assert.Equal(t, `[{"name":"A"},{"name":"B"}]`, text[m.Start:m.End])
}

func TestExtract_ObjectInsideProse(t *testing.T) {
	text := `Analysis follows {"marketGap":"High CPM"} end of transmission`

	m, ok := ExtractMatch(text)
	require.True(t, ok)
	assert.Equal(t, RuleObject, m.Rule)
	assert.Equal(t, map[string]any{"marketGap": "High CPM"}, m.Value)
}

func TestExtract_ArrayPreferredOverObject(t *testing.T) {
	text := `result: [{"name":"A"}] trailing`

	m, ok := ExtractMatch(text)
	require.True(t, ok)
	assert.Equal(t, RuleArray, m.Rule)
}

func TestExtract_FallsBackToObjectWhenArraySpanIsInvalid(t *testing.T) {
	// the '[' .. ']' span covers broken text; the object span still parses
	text := `note [draft {"a":1} see ]`

	m, ok := ExtractMatch(text)
	require.True(t, ok)
	assert.Equal(t, RuleObject, m.Rule)
	assert.Equal(t, map[string]any{"a": float64(1)}, m.Value)
}

func TestExtract_NoValue(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "prose only", text: "I could not find any competitors."},
		{name: "reversed brackets", text: "] nothing here ["},
		{name: "unbalanced object", text: `{"name": "A"`},
		{name: "truncated array", text: `[{"name":"A"},`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := Extract(tt.text)
			assert.False(t, ok)
			assert.Nil(t, v)
		})
	}
}

func TestInto(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}

	t.Run("decodes recovered value", func(t *testing.T) {
		var items []item
		err := Into("```json\n[{\"name\":\"A\"}]\n```", &items)
		require.NoError(t, err)
		assert.Equal(t, []item{{Name: "A"}}, items)
	})

	t.Run("no value", func(t *testing.T) {
		var items []item
		err := Into("nothing", &items)
		assert.ErrorIs(t, err, ErrNoJSON)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		var items []item
		err := Into(`{"name":"A"}`, &items)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, ErrNoJSON)
	})
}
