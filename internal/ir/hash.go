package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows a future algorithm migration.
const (
	DomainRulebook = "deduce/rulebook/v1"
	DomainOutcome  = "deduce/outcome/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RulebookHash computes the content address of a normalized rule table.
// Two tables holding the same rules hash identically regardless of the
// order the rules were declared in.
func RulebookHash(t *RuleTable) (string, error) {
	rules := make([]any, 0, t.Len())
	for _, r := range t.Rules() {
		rules = append(rules, map[string]any{
			"id":         r.ID,
			"premises":   r.Premises,
			"conclusion": r.Conclusion,
			"category":   r.Category,
			"note":       r.Note,
		})
	}
	canonical, err := MarshalCanonical(map[string]any{"rules": rules})
	if err != nil {
		return "", fmt.Errorf("RulebookHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRulebook, canonical), nil
}

// OutcomeHash digests the observable outcome of a run: strategy, inputs,
// verdict and both traces. Replaying a run must reproduce the same hash.
func OutcomeHash(run Run) (string, error) {
	canonical, err := MarshalCanonical(map[string]any{
		"strategy":      run.Strategy,
		"rulebook_hash": run.RulebookHash,
		"facts":         run.Facts,
		"goals":         run.Goals,
		"success":       run.Success,
		"failure_code":  run.FailureCode,
		"full_trace":    run.FullTrace,
		"optimal_trace": run.OptimalTrace,
	})
	if err != nil {
		return "", fmt.Errorf("OutcomeHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainOutcome, canonical), nil
}

// MustRulebookHash is like RulebookHash but panics on error.
// Use only in tests or when the table is known to be valid.
func MustRulebookHash(t *RuleTable) string {
	h, err := RulebookHash(t)
	if err != nil {
		panic(err)
	}
	return h
}
