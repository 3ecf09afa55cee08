// Package rules turns raw rule records into normalized ir.Rule values.
//
// Normalization is permissive: records with an empty id, an empty
// conclusion or no premises are dropped and reported as Rejections rather
// than errors. Premise expressions may mix conjunction notations
// ("a ∧ b", "a AND b", "a & b; c", "a | b", "a, b"); all are treated as
// plain item delimiters.
//
// Every symbol is trimmed and NFC-normalized so that visually identical
// facts compare equal.
package rules
