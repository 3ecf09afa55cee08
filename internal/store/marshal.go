package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/deduce/internal/ir"
)

// marshalList converts a symbol list or trace to canonical JSON TEXT.
// A nil list is stored as "[]".
func marshalList(v any) (string, error) {
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("marshal list: %w", err)
	}
	return string(data), nil
}

// unmarshalSymbols parses canonical JSON TEXT to a symbol list. Always
// returns a non-nil slice.
func unmarshalSymbols(data string) ([]ir.Symbol, error) {
	out := []ir.Symbol{}
	if data == "" || data == "[]" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal symbols: %w", err)
	}
	return out, nil
}

// unmarshalTrace parses canonical JSON TEXT to a trace. Always returns a
// non-nil trace.
func unmarshalTrace(data string) (ir.Trace, error) {
	out := ir.Trace{}
	if data == "" || data == "[]" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal trace: %w", err)
	}
	return out, nil
}

// unmarshalDropped parses the dropped rule list. An empty list reads back
// as nil, matching how the engine reports a trace with nothing to drop.
func unmarshalDropped(data string) ([]string, error) {
	tr, err := unmarshalTrace(data)
	if err != nil {
		return nil, err
	}
	if len(tr) == 0 {
		return nil, nil
	}
	return []string(tr), nil
}
