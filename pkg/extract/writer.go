package extract

import (
	"io"

	"github.com/iancoleman/strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/blockberries/huckleberry/pkg/idl"
	"github.com/blockberries/huckleberry/pkg/render"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// exportedName canonicalizes a Go type name into a Thrift struct
// name. Unexported names are title-cased so the IDL name is usable
// from other languages.
func exportedName(name string) string {
	return titleCaser.String(name)
}

// fieldName canonicalizes a Go field name into the conventional
// Thrift snake_case spelling.
func fieldName(name string) string {
	return strcase.ToSnake(name)
}

// Program builds an IDL document from the collected types.
func Program(types []*TypeInfo) *idl.Program {
	program := &idl.Program{}
	for _, t := range types {
		s := &idl.Struct{Name: t.Name}
		for _, f := range t.Fields {
			field := &idl.Field{
				ID:    f.ID,
				HasID: true,
				Name:  f.Name,
				Type:  f.Type,
			}
			if f.Required {
				field.Requiredness = idl.Required
			} else {
				field.Requiredness = idl.Optional
			}
			s.Fields = append(s.Fields, field)
		}
		program.Definitions = append(program.Definitions, s)
	}
	return program
}

// Write extracts struct definitions from the Go packages matching the
// patterns and renders them as Thrift IDL.
func Write(w io.Writer, cfg *Config, patterns ...string) error {
	pkgs, err := NewPackageLoader().Load(patterns...)
	if err != nil {
		return err
	}
	collector := NewCollector(cfg)
	if err := collector.Collect(pkgs); err != nil {
		return err
	}
	return render.Write(w, Program(collector.Types()), render.DefaultOptions())
}
