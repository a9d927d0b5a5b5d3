package compile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blockberries/huckleberry/pkg/idl"
	"github.com/blockberries/huckleberry/pkg/spec"
)

// Loader loads and compiles Thrift files, resolving include headers
// relative to the including file and the configured search paths.
// Compiled modules are cached by their resolved path; include cycles
// are an error.
type Loader struct {
	// SearchPaths are extra directories to search for included files.
	SearchPaths []string

	// NonStrict relaxes explicit requiredness for every loaded file.
	NonStrict bool

	modules map[string]*Module
}

// NewLoader creates a loader with the given search paths.
func NewLoader(searchPaths ...string) *Loader {
	return &Loader{
		SearchPaths: searchPaths,
		modules:     make(map[string]*Module),
	}
}

// LoadFile loads, parses, compiles, and links a Thrift file and all
// of its includes.
func (l *Loader) LoadFile(path string) (*Module, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("huckleberry: cannot resolve path %q: %w", path, err)
	}
	return l.loadFile(absPath, nil)
}

func (l *Loader) loadFile(absPath string, chain []string) (*Module, error) {
	for _, p := range chain {
		if p == absPath {
			return nil, &spec.CompileError{
				Message: fmt.Sprintf(
					"include cycle detected: %s",
					strings.Join(append(chain, absPath), " -> "),
				),
			}
		}
	}

	if m, ok := l.modules[absPath]; ok {
		return m, nil
	}

	source, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("huckleberry: cannot read %q: %w", absPath, err)
	}

	program, err := idl.Parse(absPath, string(source))
	if err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(absPath)
	compiler := &Compiler{
		NonStrict: l.NonStrict,
		resolveInclude: func(includePath string, line int) (*spec.Scope, error) {
			resolved, err := l.resolveIncludePath(baseDir, includePath, line)
			if err != nil {
				return nil, err
			}
			included, err := l.loadFile(resolved, append(chain, absPath))
			if err != nil {
				return nil, err
			}
			return included.Scope(), nil
		},
	}

	m, err := compiler.Compile(moduleName(absPath), program)
	if err != nil {
		return nil, err
	}
	l.modules[absPath] = m
	return m, nil
}

// resolveIncludePath finds an included file relative to the including
// file's directory, then under each search path.
func (l *Loader) resolveIncludePath(baseDir, includePath string, line int) (string, error) {
	candidates := make([]string, 0, len(l.SearchPaths)+1)
	if filepath.IsAbs(includePath) {
		candidates = append(candidates, includePath)
	} else {
		candidates = append(candidates, filepath.Join(baseDir, includePath))
		for _, dir := range l.SearchPaths {
			candidates = append(candidates, filepath.Join(dir, includePath))
		}
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", &spec.CompileError{
		Message: fmt.Sprintf("cannot find included file %q", includePath),
		Line:    line,
	}
}

// moduleName derives the module name from the file path:
// "idl/shared.thrift" compiles as module "shared".
func moduleName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
