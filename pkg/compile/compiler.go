// Package compile turns parsed Thrift documents into linked spec
// trees and binds them behind a Module facade with dumps/loads entry
// points. The multi-file Loader resolves include headers with caching
// and cycle detection.
package compile

import (
	"fmt"
	"sort"

	"github.com/blockberries/huckleberry/pkg/idl"
	"github.com/blockberries/huckleberry/pkg/spec"
)

// Compiler compiles parsed Thrift programs into modules. The zero
// value is a strict compiler that rejects include headers; a Loader
// supplies include resolution.
type Compiler struct {
	// NonStrict relaxes the rule that struct fields must declare
	// requiredness explicitly.
	NonStrict bool

	// resolveInclude loads the scope of an included file. When nil,
	// include headers are compile errors.
	resolveInclude func(path string, line int) (*spec.Scope, error)
}

// Compile parses and compiles Thrift source in one step using a
// default strict compiler.
func Compile(name, source string) (*Module, error) {
	program, err := idl.Parse(name+".thrift", source)
	if err != nil {
		return nil, err
	}
	return (&Compiler{}).Compile(name, program)
}

// Compile compiles a parsed program into a linked module.
// Compilation happens in two phases: the scope is populated with
// unlinked specs, then every root is linked.
func (c *Compiler) Compile(name string, program *idl.Program) (*Module, error) {
	scope := spec.NewScope(name)

	for _, header := range program.Headers {
		switch h := header.(type) {
		case *idl.Include:
			if c.resolveInclude == nil {
				return nil, &spec.CompileError{
					Message: fmt.Sprintf(
						"include of %q requires a file loader; "+
							"compile through a Loader to resolve includes", h.Path),
					Line: h.Line,
				}
			}
			included, err := c.resolveInclude(h.Path, h.Line)
			if err != nil {
				return nil, err
			}
			if err := scope.AddInclude(included); err != nil {
				return nil, err
			}
		case *idl.Namespace:
			// Namespaces direct code generators; the runtime compiler
			// has nothing to do with them.
		}
	}

	if err := c.gather(scope, program); err != nil {
		return nil, err
	}
	if err := link(scope); err != nil {
		return nil, err
	}
	return NewModule(name, scope), nil
}

// gather populates the scope with unlinked specs for every
// definition.
func (c *Compiler) gather(scope *spec.Scope, program *idl.Program) error {
	strict := !c.NonStrict
	for _, def := range program.Definitions {
		switch d := def.(type) {
		case *idl.Typedef:
			if err := scope.AddTypeSpec(d.Name, spec.CompileTypedef(d), d.Line); err != nil {
				return err
			}
		case *idl.Enum:
			enum, err := spec.CompileEnum(d)
			if err != nil {
				return err
			}
			if err := scope.AddTypeSpec(d.Name, enum, d.Line); err != nil {
				return err
			}
			// Enum items are reachable as Enum.Item constants.
			for _, item := range enum.Items {
				itemConst := spec.NewConstSpec(
					d.Name+"."+item.Name,
					enum,
					&idl.ConstInt{Value: int64(item.Value), Line: d.Line},
					d.Line,
				)
				if err := scope.AddConstSpec(itemConst); err != nil {
					return err
				}
			}
		case *idl.Struct:
			s, err := spec.CompileStruct(d, strict)
			if err != nil {
				return err
			}
			if err := scope.AddTypeSpec(d.Name, s, d.Line); err != nil {
				return err
			}
		case *idl.Union:
			u, err := spec.CompileUnion(d)
			if err != nil {
				return err
			}
			if err := scope.AddTypeSpec(d.Name, u, d.Line); err != nil {
				return err
			}
		case *idl.Exception:
			e, err := spec.CompileException(d, strict)
			if err != nil {
				return err
			}
			if err := scope.AddTypeSpec(d.Name, e, d.Line); err != nil {
				return err
			}
		case *idl.Const:
			if err := scope.AddConstSpec(spec.CompileConst(d)); err != nil {
				return err
			}
		case *idl.Service:
			s, err := spec.CompileService(d)
			if err != nil {
				return err
			}
			if err := scope.AddServiceSpec(s); err != nil {
				return err
			}
		default:
			return &spec.CompileError{
				Message: fmt.Sprintf("unsupported definition %T", def),
				Line:    def.DefLine(),
			}
		}
	}
	return nil
}

// link resolves every root in the scope: types, constants, then
// services. Linking visits names in sorted order so that failures are
// deterministic.
func link(scope *spec.Scope) error {
	for _, name := range sortedKeys(scope.TypeSpecs()) {
		if _, err := scope.ResolveTypeSpec(name, 0); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(scope.ConstSpecs()) {
		if _, err := scope.ResolveConstSpec(name, 0); err != nil {
			return err
		}
	}
	for _, name := range sortedKeys(scope.ServiceSpecs()) {
		if _, err := scope.ResolveServiceSpec(name, 0); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
