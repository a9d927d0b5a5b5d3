package spec

import (
	"fmt"

	"github.com/blockberries/huckleberry/pkg/idl"
)

// FunctionSpec is the specification of a single service function.
// Parameters become an implicit request struct; unless the function
// is oneway, outcomes become an implicit result union with field 0
// carrying the return value and one field per declared exception.
type FunctionSpec struct {
	// Name is the bare function name.
	Name string

	// ArgsSpec is the implicit <service>_<function>_request struct.
	ArgsSpec *StructTypeSpec

	// ResultSpec is the implicit <service>_<function>_response union,
	// or nil for oneway functions.
	ResultSpec *UnionTypeSpec

	// OneWay reports whether the function is oneway: void, no
	// declared exceptions, and no reply on the wire.
	OneWay bool

	Line   int
	linked bool
}

// CompileFunction builds a FunctionSpec from its AST node. Oneway
// functions must be void and must not declare exceptions.
func CompileFunction(fn *idl.Function, serviceName string) (*FunctionSpec, error) {
	if fn.OneWay {
		if fn.ReturnType != nil {
			return nil, compileErrorf(fn.Line,
				"function %q of service %q is oneway; oneway functions cannot return a value",
				fn.Name, serviceName)
		}
		if len(fn.Exceptions) > 0 {
			return nil, compileErrorf(fn.Line,
				"function %q of service %q is oneway; oneway functions cannot raise exceptions",
				fn.Name, serviceName)
		}
	}

	argsName := fmt.Sprintf("%s_%s_request", serviceName, fn.Name)
	argFields, err := compileFieldBlock(argsName, fn.Parameters, false)
	if err != nil {
		return nil, err
	}
	args := &StructTypeSpec{
		StructName: argsName,
		fields:     argFields,
		isRequest:  true,
		oneway:     fn.OneWay,
		funcName:   fn.Name,
		Line:       fn.Line,
	}

	spec := &FunctionSpec{
		Name:     fn.Name,
		ArgsSpec: args,
		OneWay:   fn.OneWay,
		Line:     fn.Line,
	}
	if fn.OneWay {
		return spec, nil
	}

	resultName := fmt.Sprintf("%s_%s_response", serviceName, fn.Name)
	var resultFields []*FieldSpec
	var returnSpec TypeSpec
	if fn.ReturnType != nil {
		returnSpec = TypeSpecOrRef(fn.ReturnType)
		resultFields = append(resultFields, &FieldSpec{
			ID:   0,
			Name: "success",
			Spec: returnSpec,
			Line: fn.Line,
		})
	}
	excFields, err := compileFieldBlock(resultName, fn.Exceptions, false)
	if err != nil {
		return nil, err
	}
	resultFields = append(resultFields, excFields...)

	spec.ResultSpec = &UnionTypeSpec{
		UnionName: resultName,
		fields:    resultFields,
		// An empty result union means "void success".
		AllowEmpty: fn.ReturnType == nil,
		isResponse: true,
		funcName:   fn.Name,
		returnSpec: returnSpec,
		Line:       fn.Line,
	}
	return spec, nil
}

// Link resolves the function's argument and result specs.
func (f *FunctionSpec) Link(scope *Scope) error {
	if f.linked {
		return nil
	}
	f.linked = true

	if _, err := f.ArgsSpec.Link(scope); err != nil {
		return err
	}
	if f.ResultSpec != nil {
		if _, err := f.ResultSpec.Link(scope); err != nil {
			return err
		}
	}
	return nil
}

// ServiceSpec is the specification of a service: an ordered
// collection of functions, optionally inheriting from one parent
// service.
type ServiceSpec struct {
	// Name is the declared service name.
	Name string

	// Parent is the linked parent service, or nil.
	Parent *ServiceSpec

	functions  []*FunctionSpec
	index      map[string]*FunctionSpec
	parentName string

	Line   int
	linked bool
}

// CompileService builds a ServiceSpec from its AST node, rejecting
// duplicate function names.
func CompileService(d *idl.Service) (*ServiceSpec, error) {
	functions := make([]*FunctionSpec, 0, len(d.Functions))
	names := make(map[string]bool, len(d.Functions))
	for _, fn := range d.Functions {
		if names[fn.Name] {
			return nil, compileErrorf(fn.Line,
				"function %q of service %q cannot be defined; that name is already taken",
				fn.Name, d.Name)
		}
		names[fn.Name] = true
		spec, err := CompileFunction(fn, d.Name)
		if err != nil {
			return nil, err
		}
		functions = append(functions, spec)
	}
	return &ServiceSpec{
		Name:       d.Name,
		functions:  functions,
		parentName: d.Parent,
		Line:       d.Line,
	}, nil
}

// Functions returns the service's own functions in declaration order.
func (s *ServiceSpec) Functions() []*FunctionSpec {
	return s.functions
}

// Function returns the function with the given name, searching
// inherited functions too.
func (s *ServiceSpec) Function(name string) (*FunctionSpec, bool) {
	f, ok := s.index[name]
	return f, ok
}

// Link resolves the service: the parent first (which may recurse),
// then every function, and finally the function lookup table.
func (s *ServiceSpec) Link(scope *Scope) (*ServiceSpec, error) {
	if s.linked {
		return s, nil
	}
	s.linked = true

	if s.parentName != "" {
		parent, err := scope.ResolveServiceSpec(s.parentName, s.Line)
		if err != nil {
			return nil, compileErrorf(s.Line,
				"service %q inherits from unknown service %q",
				s.Name, s.parentName)
		}
		s.Parent = parent
	}

	for _, fn := range s.functions {
		if err := fn.Link(scope); err != nil {
			return nil, err
		}
	}

	s.index = make(map[string]*FunctionSpec)
	if s.Parent != nil {
		for name, fn := range s.Parent.index {
			s.index[name] = fn
		}
	}
	for _, fn := range s.functions {
		if _, inherited := s.index[fn.Name]; inherited {
			return nil, compileErrorf(fn.Line,
				"function %q of service %q is already inherited from %q",
				fn.Name, s.Name, s.parentName)
		}
		s.index[fn.Name] = fn
	}
	return s, nil
}
