package idl

import (
	"errors"
	"fmt"
	"strconv"
)

// ParseError represents a parsing error.
type ParseError struct {
	Position Position
	Message  string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Position, e.Message)
}

// Parser parses Thrift IDL source into an AST.
type Parser struct {
	lexer   *Lexer
	current Token
	errors  []ParseError
}

// NewParser creates a new parser for the given input.
func NewParser(filename, input string) *Parser {
	p := &Parser{
		lexer: NewLexer(filename, input),
	}
	p.advance() // Load first token
	return p
}

// Parse parses a complete Thrift document and returns the AST along
// with any parse errors. The AST may be partially populated when
// errors are present.
func Parse(filename, input string) (*Program, error) {
	program, parseErrors := NewParser(filename, input).Parse()
	if len(parseErrors) > 0 {
		errs := make([]error, len(parseErrors))
		for i, e := range parseErrors {
			errs[i] = e
		}
		return program, errors.Join(errs...)
	}
	return program, nil
}

// Parse parses the entire document.
func (p *Parser) Parse() (*Program, []ParseError) {
	program := &Program{}

	// Headers must precede definitions.
	for {
		switch p.current.Type {
		case TokenInclude:
			if inc := p.parseInclude(); inc != nil {
				program.Headers = append(program.Headers, inc)
			}
			continue
		case TokenNamespace:
			if ns := p.parseNamespace(); ns != nil {
				program.Headers = append(program.Headers, ns)
			}
			continue
		}
		break
	}

	for p.current.Type != TokenEOF {
		var def Definition
		switch p.current.Type {
		case TokenTypedef:
			def = p.parseTypedef()
		case TokenEnum:
			def = p.parseEnum()
		case TokenStruct:
			def = p.parseStruct()
		case TokenUnion:
			def = p.parseUnion()
		case TokenException:
			def = p.parseException()
		case TokenConst:
			def = p.parseConst()
		case TokenService:
			def = p.parseService()
		case TokenError:
			p.errorf("%s", p.current.Value)
			p.advance()
			continue
		default:
			p.errorf("unexpected token %s", p.current.Type)
			p.synchronize()
			continue
		}
		if def == nil {
			p.synchronize()
			continue
		}
		program.Definitions = append(program.Definitions, def)
	}

	return program, p.errors
}

func (p *Parser) advance() {
	p.current = p.lexer.Next()
}

func (p *Parser) check(typ TokenType) bool {
	return p.current.Type == typ
}

// accept consumes the current token if it has the given type.
func (p *Parser) accept(typ TokenType) (Token, bool) {
	if p.current.Type != typ {
		return Token{}, false
	}
	tok := p.current
	p.advance()
	return tok, true
}

// expect consumes a token of the given type or records an error.
func (p *Parser) expect(typ TokenType, context string) (Token, bool) {
	if tok, ok := p.accept(typ); ok {
		return tok, true
	}
	p.errorf("expected %s %s, found %s", typ, context, p.describeCurrent())
	return Token{}, false
}

func (p *Parser) describeCurrent() string {
	switch p.current.Type {
	case TokenIdent, TokenInt, TokenFloat:
		return fmt.Sprintf("%q", p.current.Value)
	case TokenError:
		return p.current.Value
	default:
		return p.current.Type.String()
	}
}

func (p *Parser) errorf(format string, args ...any) {
	p.errors = append(p.errors, ParseError{
		Position: p.current.Position,
		Message:  fmt.Sprintf(format, args...),
	})
}

// synchronize skips tokens until the start of the next definition so
// one error does not cascade.
func (p *Parser) synchronize() {
	for {
		switch p.current.Type {
		case TokenEOF, TokenTypedef, TokenEnum, TokenStruct, TokenUnion,
			TokenException, TokenConst, TokenService:
			return
		}
		p.advance()
	}
}

// skipSeparator consumes an optional list separator (, or ;).
func (p *Parser) skipSeparator() {
	for p.check(TokenComma) || p.check(TokenSemicolon) {
		p.advance()
	}
}

// parseInclude parses: 'include' string
func (p *Parser) parseInclude() *Include {
	line := p.current.Position.Line
	p.advance()
	path, ok := p.expect(TokenString, "after include")
	if !ok {
		p.synchronize()
		return nil
	}
	p.skipSeparator()
	return &Include{Path: path.Value, Line: line}
}

// parseNamespace parses: 'namespace' scope name
func (p *Parser) parseNamespace() *Namespace {
	line := p.current.Position.Line
	p.advance()

	var scope string
	if tok, ok := p.accept(TokenStar); ok {
		scope = tok.Value
	} else if tok, ok := p.accept(TokenIdent); ok {
		scope = tok.Value
	} else {
		p.errorf("expected namespace scope, found %s", p.describeCurrent())
		p.synchronize()
		return nil
	}

	name, ok := p.expect(TokenIdent, "as namespace name")
	if !ok {
		p.synchronize()
		return nil
	}
	p.skipSeparator()
	return &Namespace{Scope: scope, Name: name.Value, Line: line}
}

// parseTypedef parses: 'typedef' type ident
func (p *Parser) parseTypedef() Definition {
	line := p.current.Position.Line
	p.advance()

	target := p.parseType()
	if target == nil {
		return nil
	}
	name, ok := p.expect(TokenIdent, "as typedef name")
	if !ok {
		return nil
	}
	p.skipSeparator()
	return &Typedef{Name: name.Value, Target: target, Line: line}
}

// parseEnum parses: 'enum' ident '{' (ident ('=' int)? sep?)* '}'
func (p *Parser) parseEnum() Definition {
	line := p.current.Position.Line
	p.advance()

	name, ok := p.expect(TokenIdent, "as enum name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(TokenLBrace, "to begin enum body"); !ok {
		return nil
	}

	enum := &Enum{Name: name.Value, Line: line}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		itemLine := p.current.Position.Line
		itemName, ok := p.expect(TokenIdent, "as enum item")
		if !ok {
			p.synchronize()
			return enum
		}
		item := &EnumItem{Name: itemName.Value, Line: itemLine}
		if _, ok := p.accept(TokenEquals); ok {
			tok, ok := p.expect(TokenInt, "as enum item value")
			if !ok {
				p.synchronize()
				return enum
			}
			v, err := parseInt(tok.Value)
			if err != nil || v < -2147483648 || v > 2147483647 {
				p.errorf("enum item value %q is not a valid i32", tok.Value)
			} else {
				value := int32(v)
				item.Value = &value
			}
		}
		enum.Items = append(enum.Items, item)
		p.skipSeparator()
	}
	p.expect(TokenRBrace, "to end enum body")
	return enum
}

func (p *Parser) parseStruct() Definition {
	name, fields, line, ok := p.parseFieldsBlock("struct")
	if !ok {
		return nil
	}
	return &Struct{Name: name, Fields: fields, Line: line}
}

func (p *Parser) parseUnion() Definition {
	name, fields, line, ok := p.parseFieldsBlock("union")
	if !ok {
		return nil
	}
	return &Union{Name: name, Fields: fields, Line: line}
}

func (p *Parser) parseException() Definition {
	name, fields, line, ok := p.parseFieldsBlock("exception")
	if !ok {
		return nil
	}
	return &Exception{Name: name, Fields: fields, Line: line}
}

// parseFieldsBlock parses: kind ident '{' field* '}' for struct-shaped
// definitions.
func (p *Parser) parseFieldsBlock(kind string) (string, []*Field, int, bool) {
	line := p.current.Position.Line
	p.advance()

	name, ok := p.expect(TokenIdent, "as "+kind+" name")
	if !ok {
		return "", nil, 0, false
	}
	if _, ok := p.expect(TokenLBrace, "to begin "+kind+" body"); !ok {
		return "", nil, 0, false
	}

	var fields []*Field
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		field := p.parseField()
		if field == nil {
			p.synchronize()
			return name.Value, fields, line, true
		}
		fields = append(fields, field)
		p.skipSeparator()
	}
	p.expect(TokenRBrace, "to end "+kind+" body")
	return name.Value, fields, line, true
}

// parseField parses: (int ':')? ('required'|'optional')? type ident
// ('=' constvalue)?
func (p *Parser) parseField() *Field {
	field := &Field{Line: p.current.Position.Line}

	if tok, ok := p.accept(TokenInt); ok {
		id, err := parseInt(tok.Value)
		if err != nil || id < -32768 || id > 32767 {
			p.errorf("field ID %q is not a valid i16", tok.Value)
			return nil
		}
		field.ID = int(id)
		field.HasID = true
		if _, ok := p.expect(TokenColon, "after field ID"); !ok {
			return nil
		}
	}

	if _, ok := p.accept(TokenRequired); ok {
		field.Requiredness = Required
	} else if _, ok := p.accept(TokenOptional); ok {
		field.Requiredness = Optional
	}

	field.Type = p.parseType()
	if field.Type == nil {
		return nil
	}

	name, ok := p.expect(TokenIdent, "as field name")
	if !ok {
		return nil
	}
	field.Name = name.Value

	if _, ok := p.accept(TokenEquals); ok {
		field.Default = p.parseConstValue()
		if field.Default == nil {
			return nil
		}
	}
	return field
}

// parseConst parses: 'const' type ident '=' constvalue
func (p *Parser) parseConst() Definition {
	line := p.current.Position.Line
	p.advance()

	typ := p.parseType()
	if typ == nil {
		return nil
	}
	name, ok := p.expect(TokenIdent, "as constant name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(TokenEquals, "after constant name"); !ok {
		return nil
	}
	value := p.parseConstValue()
	if value == nil {
		return nil
	}
	p.skipSeparator()
	return &Const{Name: name.Value, Type: typ, Value: value, Line: line}
}

// parseService parses:
// 'service' ident ('extends' ident)? '{' function* '}'
func (p *Parser) parseService() Definition {
	line := p.current.Position.Line
	p.advance()

	name, ok := p.expect(TokenIdent, "as service name")
	if !ok {
		return nil
	}
	service := &Service{Name: name.Value, Line: line}

	if _, ok := p.accept(TokenExtends); ok {
		parent, ok := p.expect(TokenIdent, "as parent service")
		if !ok {
			return nil
		}
		service.Parent = parent.Value
	}

	if _, ok := p.expect(TokenLBrace, "to begin service body"); !ok {
		return nil
	}
	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		fn := p.parseFunction()
		if fn == nil {
			p.synchronize()
			return service
		}
		service.Functions = append(service.Functions, fn)
		p.skipSeparator()
	}
	p.expect(TokenRBrace, "to end service body")
	return service
}

// parseFunction parses:
// 'oneway'? ('void'|type) ident '(' field* ')' ('throws' '(' field* ')')?
func (p *Parser) parseFunction() *Function {
	fn := &Function{Line: p.current.Position.Line}

	if _, ok := p.accept(TokenOneway); ok {
		fn.OneWay = true
	}

	if _, ok := p.accept(TokenVoid); !ok {
		fn.ReturnType = p.parseType()
		if fn.ReturnType == nil {
			return nil
		}
	}

	name, ok := p.expect(TokenIdent, "as function name")
	if !ok {
		return nil
	}
	fn.Name = name.Value

	params, ok := p.parseFieldList("parameter list")
	if !ok {
		return nil
	}
	fn.Parameters = params

	if _, ok := p.accept(TokenThrows); ok {
		excs, ok := p.parseFieldList("throws clause")
		if !ok {
			return nil
		}
		fn.Exceptions = excs
	}
	return fn
}

func (p *Parser) parseFieldList(context string) ([]*Field, bool) {
	if _, ok := p.expect(TokenLParen, "to begin "+context); !ok {
		return nil, false
	}
	var fields []*Field
	for !p.check(TokenRParen) && !p.check(TokenEOF) {
		field := p.parseField()
		if field == nil {
			return nil, false
		}
		fields = append(fields, field)
		p.skipSeparator()
	}
	if _, ok := p.expect(TokenRParen, "to end "+context); !ok {
		return nil, false
	}
	return fields, true
}

// parseType parses a type reference: a container, a base type, or a
// named reference.
func (p *Parser) parseType() Type {
	line := p.current.Position.Line
	switch p.current.Type {
	case TokenMap:
		p.advance()
		if _, ok := p.expect(TokenLAngle, "after map"); !ok {
			return nil
		}
		key := p.parseType()
		if key == nil {
			return nil
		}
		if _, ok := p.expect(TokenComma, "between map key and value types"); !ok {
			return nil
		}
		value := p.parseType()
		if value == nil {
			return nil
		}
		if _, ok := p.expect(TokenRAngle, "to close map type"); !ok {
			return nil
		}
		return &MapType{Key: key, Value: value, Line: line}
	case TokenList:
		return p.parseContainerType(line, func(elem Type) Type {
			return &ListType{Value: elem, Line: line}
		})
	case TokenSet:
		return p.parseContainerType(line, func(elem Type) Type {
			return &SetType{Value: elem, Line: line}
		})
	case TokenIdent:
		name := p.current.Value
		p.advance()
		if isBaseTypeName(name) {
			return &BaseType{Name: name, Line: line}
		}
		return &TypeRef{Name: name, Line: line}
	default:
		p.errorf("expected type, found %s", p.describeCurrent())
		return nil
	}
}

func (p *Parser) parseContainerType(line int, build func(Type) Type) Type {
	kind := p.current.Type
	p.advance()
	if _, ok := p.expect(TokenLAngle, "after "+kind.String()); !ok {
		return nil
	}
	elem := p.parseType()
	if elem == nil {
		return nil
	}
	if _, ok := p.expect(TokenRAngle, "to close "+kind.String()+" type"); !ok {
		return nil
	}
	return build(elem)
}

func isBaseTypeName(name string) bool {
	switch name {
	case "bool", "byte", "i8", "i16", "i32", "i64", "double", "string", "binary":
		return true
	default:
		return false
	}
}

// parseConstValue parses a constant value: a literal, a reference, a
// list, or a map.
func (p *Parser) parseConstValue() ConstValue {
	line := p.current.Position.Line
	switch p.current.Type {
	case TokenInt:
		tok := p.current
		p.advance()
		v, err := parseInt(tok.Value)
		if err != nil {
			p.errorf("invalid integer literal %q", tok.Value)
			return nil
		}
		return &ConstInt{Value: v, Line: line}
	case TokenFloat:
		tok := p.current
		p.advance()
		v, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			p.errorf("invalid float literal %q", tok.Value)
			return nil
		}
		return &ConstDouble{Value: v, Line: line}
	case TokenString:
		tok := p.current
		p.advance()
		return &ConstString{Value: tok.Value, Line: line}
	case TokenTrue:
		p.advance()
		return &ConstBool{Value: true, Line: line}
	case TokenFalse:
		p.advance()
		return &ConstBool{Value: false, Line: line}
	case TokenIdent:
		tok := p.current
		p.advance()
		return &ConstRef{Name: tok.Value, Line: line}
	case TokenLBracket:
		p.advance()
		list := &ConstList{Line: line}
		for !p.check(TokenRBracket) && !p.check(TokenEOF) {
			v := p.parseConstValue()
			if v == nil {
				return nil
			}
			list.Values = append(list.Values, v)
			p.skipSeparator()
		}
		if _, ok := p.expect(TokenRBracket, "to close constant list"); !ok {
			return nil
		}
		return list
	case TokenLBrace:
		p.advance()
		m := &ConstMap{Line: line}
		for !p.check(TokenRBrace) && !p.check(TokenEOF) {
			k := p.parseConstValue()
			if k == nil {
				return nil
			}
			if _, ok := p.expect(TokenColon, "between constant map key and value"); !ok {
				return nil
			}
			v := p.parseConstValue()
			if v == nil {
				return nil
			}
			m.Pairs = append(m.Pairs, ConstPair{Key: k, Value: v})
			p.skipSeparator()
		}
		if _, ok := p.expect(TokenRBrace, "to close constant map"); !ok {
			return nil
		}
		return m
	default:
		p.errorf("expected constant value, found %s", p.describeCurrent())
		return nil
	}
}

// parseInt parses decimal and hexadecimal integer literals.
func parseInt(s string) (int64, error) {
	sign, digits := "", s
	if digits != "" && (digits[0] == '+' || digits[0] == '-') {
		sign, digits = digits[:1], digits[1:]
	}
	if len(digits) > 1 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return strconv.ParseInt(sign+digits[2:], 16, 64)
	}
	return strconv.ParseInt(s, 10, 64)
}
