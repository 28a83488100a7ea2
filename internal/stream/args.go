package stream

import "encoding/json"

// PrettyArgs formats raw JSON tool arguments for display. Invalid or
// empty JSON falls back to the raw string. Called once at the
// event-construction boundary; handlers downstream never re-parse.
func PrettyArgs(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(raw)
	}
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return string(raw)
	}
	return string(out)
}
