package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue/token"

	"github.com/roach88/deduce/internal/compiler"
	"github.com/roach88/deduce/internal/ir"
	"github.com/roach88/deduce/internal/rules"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric      = "E001" // Generic/unknown error
	ErrCodeUnsupported  = "E002" // Unknown rulebook extension
	ErrCodeDecodeFailed = "E003" // YAML/JSON rulebook cannot be decoded
	ErrCodeLoadFailed   = "E004" // CUE load failed
	ErrCodeNotFound     = "E005" // Path or run not found
	ErrCodeBuildFailed  = "E006" // CUE rulebook does not compile
	ErrCodeWriteFailed  = "E007" // Database or file write error
	ErrCodeInvalidFlag  = "E008" // Flag value rejected
	ErrCodeStore        = "E009" // Database cannot be opened or read

	ErrCodeDeterminism = "E_DETERMINISM" // replayed outcome differs
	ErrCodeUnsound     = "E_UNSOUND"     // optimal trace does not replay
)

// LoadError represents an error that occurred while loading a rulebook.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadRulebook loads a rulebook file or CUE directory. Every failure is a
// *LoadError.
func LoadRulebook(path string) (*ir.Rulebook, error) {
	book, err := compiler.LoadFile(path)
	if err != nil {
		return nil, convertLoadError(path, err)
	}
	return book, nil
}

// convertLoadError classifies a compiler.LoadFile error.
func convertLoadError(path string, err error) *LoadError {
	var compileErr *compiler.CompileError
	var decodeErr *compiler.DecodeError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("rulebook not found: %s", path)}
	case errors.Is(err, compiler.ErrUnsupportedFormat):
		return &LoadError{Code: ErrCodeUnsupported, Message: err.Error()}
	case errors.As(err, &compileErr):
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: compileErr.Message,
			Pos:     compileErr.Pos,
		}
	case errors.As(err, &decodeErr):
		return &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
	}

	if isCUEPath(path) {
		return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}
	return &LoadError{Code: ErrCodeDecodeFailed, Message: err.Error()}
}

func isCUEPath(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch {
	case field == "symbol":
		return compiler.ErrUnsupportedType
	case strings.HasPrefix(field, "rule.") && strings.HasSuffix(field, ".premises"):
		return compiler.ErrNoPremises
	case strings.HasPrefix(field, "rule.") && strings.HasSuffix(field, ".conclusion"):
		return compiler.ErrEmptyConclusion
	default:
		return ErrCodeBuildFailed
	}
}

// loadErrorCode returns the code of a LoadError, or ErrCodeGeneric.
func loadErrorCode(err error) string {
	var le *LoadError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeGeneric
}

// problem is a loaded rulebook with its facts and goals resolved.
type problem struct {
	Book    *ir.Rulebook
	Table   *ir.RuleTable
	Facts   []ir.Symbol
	Goals   []ir.Symbol
	Dropped int
}

// loadProblem loads a rulebook and normalizes it. Non-empty facts and
// goals replace the rulebook's own.
func loadProblem(path string, facts, goals []string) (*problem, error) {
	book, err := LoadRulebook(path)
	if err != nil {
		return nil, err
	}

	table, rejected := rules.Normalize(book.Rules)
	for _, r := range rejected {
		slog.Debug("rule dropped", "rulebook", book.Name, "rule", r.String())
	}

	p := &problem{
		Book:    book,
		Table:   table,
		Facts:   book.Facts,
		Goals:   book.Goals,
		Dropped: len(rejected),
	}
	if f := ir.Symbols(facts...); len(f) > 0 {
		p.Facts = f
	}
	if g := ir.Symbols(goals...); len(g) > 0 {
		p.Goals = g
	}
	return p, nil
}

// requireFile fails unless path names an existing regular file.
func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}
