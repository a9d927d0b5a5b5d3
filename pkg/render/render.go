// Package render formats Thrift IDL documents into a canonical form.
// It drives the fmt command of the huckleberry CLI.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/blockberries/huckleberry/pkg/idl"
)

// Options configures rendering.
type Options struct {
	// Indent is the indentation unit. Defaults to four spaces.
	Indent string
}

// DefaultOptions returns the default rendering options.
func DefaultOptions() Options {
	return Options{Indent: "    "}
}

// Program renders a parsed document into canonical IDL text.
func Program(p *idl.Program) string {
	var b strings.Builder
	_ = Write(&b, p, DefaultOptions())
	return b.String()
}

// Write renders a parsed document to the writer.
func Write(w io.Writer, p *idl.Program, opts Options) error {
	if opts.Indent == "" {
		opts.Indent = "    "
	}
	r := &renderer{w: w, opts: opts}

	for _, h := range p.Headers {
		switch h := h.(type) {
		case *idl.Include:
			r.printf("include %q\n", h.Path)
		case *idl.Namespace:
			r.printf("namespace %s %s\n", h.Scope, h.Name)
		}
	}
	if len(p.Headers) > 0 && len(p.Definitions) > 0 {
		r.printf("\n")
	}

	for i, def := range p.Definitions {
		if i > 0 {
			r.printf("\n")
		}
		r.definition(def)
	}
	return r.err
}

type renderer struct {
	w    io.Writer
	opts Options
	err  error
}

func (r *renderer) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, r.err = fmt.Fprintf(r.w, format, args...)
}

func (r *renderer) definition(def idl.Definition) {
	switch d := def.(type) {
	case *idl.Typedef:
		r.printf("typedef %s %s\n", typeName(d.Target), d.Name)
	case *idl.Enum:
		r.enum(d)
	case *idl.Struct:
		r.fieldsBlock("struct", d.Name, d.Fields)
	case *idl.Union:
		r.fieldsBlock("union", d.Name, d.Fields)
	case *idl.Exception:
		r.fieldsBlock("exception", d.Name, d.Fields)
	case *idl.Const:
		r.printf("const %s %s = %s\n", typeName(d.Type), d.Name, constValue(d.Value))
	case *idl.Service:
		r.service(d)
	}
}

func (r *renderer) enum(d *idl.Enum) {
	r.printf("enum %s {\n", d.Name)
	for _, item := range d.Items {
		if item.Value != nil {
			r.printf("%s%s = %d\n", r.opts.Indent, item.Name, *item.Value)
		} else {
			r.printf("%s%s\n", r.opts.Indent, item.Name)
		}
	}
	r.printf("}\n")
}

func (r *renderer) fieldsBlock(kind, name string, fields []*idl.Field) {
	r.printf("%s %s {\n", kind, name)
	for _, f := range fields {
		r.printf("%s%s\n", r.opts.Indent, fieldDecl(f))
	}
	r.printf("}\n")
}

func (r *renderer) service(d *idl.Service) {
	if d.Parent != "" {
		r.printf("service %s extends %s {\n", d.Name, d.Parent)
	} else {
		r.printf("service %s {\n", d.Name)
	}
	for _, fn := range d.Functions {
		r.function(fn)
	}
	r.printf("}\n")
}

func (r *renderer) function(fn *idl.Function) {
	var b strings.Builder
	if fn.OneWay {
		b.WriteString("oneway ")
	}
	if fn.ReturnType != nil {
		b.WriteString(typeName(fn.ReturnType))
	} else {
		b.WriteString("void")
	}
	b.WriteByte(' ')
	b.WriteString(fn.Name)
	b.WriteByte('(')
	for i, p := range fn.Parameters {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fieldDecl(p))
	}
	b.WriteByte(')')
	if len(fn.Exceptions) > 0 {
		b.WriteString(" throws (")
		for i, e := range fn.Exceptions {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(fieldDecl(e))
		}
		b.WriteByte(')')
	}
	r.printf("%s%s\n", r.opts.Indent, b.String())
}

func fieldDecl(f *idl.Field) string {
	var b strings.Builder
	if f.HasID {
		fmt.Fprintf(&b, "%d: ", f.ID)
	}
	switch f.Requiredness {
	case idl.Required:
		b.WriteString("required ")
	case idl.Optional:
		b.WriteString("optional ")
	}
	b.WriteString(typeName(f.Type))
	b.WriteByte(' ')
	b.WriteString(f.Name)
	if f.Default != nil {
		b.WriteString(" = ")
		b.WriteString(constValue(f.Default))
	}
	return b.String()
}

func typeName(t idl.Type) string {
	return t.String()
}

func constValue(v idl.ConstValue) string {
	switch v := v.(type) {
	case *idl.ConstBool:
		return strconv.FormatBool(v.Value)
	case *idl.ConstInt:
		return strconv.FormatInt(v.Value, 10)
	case *idl.ConstDouble:
		return strconv.FormatFloat(v.Value, 'g', -1, 64)
	case *idl.ConstString:
		return strconv.Quote(v.Value)
	case *idl.ConstRef:
		return v.Name
	case *idl.ConstList:
		parts := make([]string, len(v.Values))
		for i, e := range v.Values {
			parts[i] = constValue(e)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *idl.ConstMap:
		parts := make([]string, len(v.Pairs))
		for i, p := range v.Pairs {
			parts[i] = constValue(p.Key) + ": " + constValue(p.Value)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return ""
	}
}
