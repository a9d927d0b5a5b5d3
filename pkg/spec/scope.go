package spec

import "strings"

// Scope is the compilation environment. It owns every spec by name:
// type specs (primitives pre-registered plus declared types), service
// specs, constants, and the scopes of included modules.
//
// The scope is mutated only during the compile and link phases; after
// linking it is read-only.
type Scope struct {
	name string

	typeSpecs    map[string]TypeSpec
	constSpecs   map[string]*ConstSpec
	serviceSpecs map[string]*ServiceSpec
	includes     map[string]*Scope
}

// NewScope creates a scope with all primitive type specs
// pre-registered.
func NewScope(name string) *Scope {
	s := &Scope{
		name:         name,
		typeSpecs:    make(map[string]TypeSpec),
		constSpecs:   make(map[string]*ConstSpec),
		serviceSpecs: make(map[string]*ServiceSpec),
		includes:     make(map[string]*Scope),
	}
	for primName, primSpec := range primitiveSpecs {
		s.typeSpecs[primName] = primSpec
	}
	return s
}

// Name returns the name of the module this scope compiles.
func (s *Scope) Name() string {
	return s.name
}

// AddTypeSpec registers a type spec under the given name.
func (s *Scope) AddTypeSpec(name string, spec TypeSpec, line int) error {
	if _, ok := s.typeSpecs[name]; ok {
		return compileErrorf(line,
			"cannot define type %q: another type with that name already exists", name)
	}
	s.typeSpecs[name] = spec
	return nil
}

// AddConstSpec registers a constant spec.
func (s *Scope) AddConstSpec(c *ConstSpec) error {
	if _, ok := s.constSpecs[c.Name]; ok {
		return compileErrorf(c.Line,
			"cannot define constant %q: that name is already taken", c.Name)
	}
	s.constSpecs[c.Name] = c
	return nil
}

// AddServiceSpec registers a service spec.
func (s *Scope) AddServiceSpec(svc *ServiceSpec) error {
	if _, ok := s.serviceSpecs[svc.Name]; ok {
		return compileErrorf(svc.Line,
			"cannot define service %q: that name is already taken", svc.Name)
	}
	s.serviceSpecs[svc.Name] = svc
	return nil
}

// AddInclude makes another compiled scope reachable under its name, so
// that name.X resolves into it.
func (s *Scope) AddInclude(other *Scope) error {
	if _, ok := s.includes[other.name]; ok {
		return compileErrorf(0,
			"cannot include %q: that name is already taken", other.name)
	}
	s.includes[other.name] = other
	return nil
}

// Include returns the included scope with the given name, if any.
func (s *Scope) Include(name string) (*Scope, bool) {
	sc, ok := s.includes[name]
	return sc, ok
}

// TypeSpecs returns the scope's type specs by name. The returned map
// must not be modified.
func (s *Scope) TypeSpecs() map[string]TypeSpec {
	return s.typeSpecs
}

// ConstSpecs returns the scope's constant specs by name.
func (s *Scope) ConstSpecs() map[string]*ConstSpec {
	return s.constSpecs
}

// ServiceSpecs returns the scope's service specs by name.
func (s *Scope) ServiceSpecs() map[string]*ServiceSpec {
	return s.serviceSpecs
}

// ResolveTypeSpec finds and links the type spec with the given name.
// Dotted names (other.X) traverse included scopes.
func (s *Scope) ResolveTypeSpec(name string, line int) (TypeSpec, error) {
	if include, rest, ok := splitQualified(name); ok {
		if other, found := s.includes[include]; found {
			return other.ResolveTypeSpec(rest, line)
		}
	}
	spec, ok := s.typeSpecs[name]
	if !ok {
		return nil, compileErrorf(line, "unknown type %q referenced", name)
	}
	linked, err := spec.Link(s)
	if err != nil {
		return nil, err
	}
	s.typeSpecs[name] = linked
	return linked, nil
}

// ResolveConstSpec finds and links the constant spec with the given
// name. Enum items are reachable as Enum.Item; dotted names also
// traverse included scopes.
func (s *Scope) ResolveConstSpec(name string, line int) (*ConstSpec, error) {
	if c, ok := s.constSpecs[name]; ok {
		return c.Link(s)
	}
	if include, rest, ok := splitQualified(name); ok {
		if other, found := s.includes[include]; found {
			return other.ResolveConstSpec(rest, line)
		}
	}
	return nil, compileErrorf(line, "unknown constant %q referenced", name)
}

// ResolveServiceSpec finds and links the service spec with the given
// name.
func (s *Scope) ResolveServiceSpec(name string, line int) (*ServiceSpec, error) {
	if include, rest, ok := splitQualified(name); ok {
		if other, found := s.includes[include]; found {
			return other.ResolveServiceSpec(rest, line)
		}
	}
	svc, ok := s.serviceSpecs[name]
	if !ok {
		return nil, compileErrorf(line, "unknown service %q referenced", name)
	}
	return svc.Link(s)
}

func splitQualified(name string) (include, rest string, ok bool) {
	i := strings.IndexByte(name, '.')
	if i < 0 {
		return "", "", false
	}
	return name[:i], name[i+1:], true
}
