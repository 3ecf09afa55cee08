package compiler

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/deduce/internal/ir"
)

// ErrUnsupportedFormat is returned by LoadFile for an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported rulebook format")

// LoadFile reads a rulebook from disk. The format follows the path:
//   - a directory is loaded as a CUE package
//   - .cue is compiled with CompileRulebook
//   - .yaml, .yml and .json are decoded with DecodeRulebook
//
// A rulebook without a name is named after its file.
func LoadFile(path string) (*ir.Rulebook, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load rulebook: %w", err)
	}

	var book *ir.Rulebook
	switch ext := strings.ToLower(filepath.Ext(path)); {
	case info.IsDir():
		book, err = loadCUEDir(path)
	case ext == ".cue":
		book, err = loadCUEFile(path)
	case ext == ".yaml" || ext == ".yml" || ext == ".json":
		var data []byte
		data, err = os.ReadFile(path)
		if err == nil {
			book, err = DecodeRulebook(data)
		}
	default:
		return nil, fmt.Errorf("load rulebook %s: %w %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load rulebook %s: %w", path, err)
	}

	if book.Name == "" {
		book.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return book, nil
}

func loadCUEFile(path string) (*ir.Rulebook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	ctx := cuecontext.New()
	return CompileRulebook(ctx.CompileBytes(data, cue.Filename(path)))
}

func loadCUEDir(dir string) (*ir.Rulebook, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	ctx := cuecontext.New()
	return CompileRulebook(ctx.BuildInstance(inst))
}
