package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CompetitorEntry is one key of the report's competitor object
type CompetitorEntry struct {
	Key   string
	Value json.RawMessage
}

// Object returns the entry value when it is a JSON object, nil otherwise.
func (e CompetitorEntry) Object() map[string]any {
	var obj map[string]any
	if err := json.Unmarshal(e.Value, &obj); err != nil {
		return nil
	}
	return obj
}

// CompetitorMap is a JSON object that keeps its keys in document order.
// A JSON value that is not an object decodes to an empty map.
type CompetitorMap []CompetitorEntry

func (m CompetitorMap) Len() int {
	return len(m)
}

func (m *CompetitorMap) UnmarshalJSON(data []byte) error {
	*m = nil

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil
	}

	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected competitor key %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decode competitor %q: %w", key, err)
		}

		// a repeated key keeps its first position and its last value
		if i, seen := index[key]; seen {
			(*m)[i].Value = raw
			continue
		}
		index[key] = len(*m)
		*m = append(*m, CompetitorEntry{Key: key, Value: raw})
	}

	_, err = dec.Token()
	return err
}

func (m CompetitorMap) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if len(e.Value) == 0 {
			buf.WriteString("null")
			continue
		}
		buf.Write(e.Value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
