package slice

import (
	"strconv"

	"icelink/ice"
)

var builtinTypes = map[string]bool{
	"void": true, "bool": true, "byte": true, "short": true, "int": true,
	"long": true, "float": true, "double": true, "string": true,
}

// Parser consumes a Lexer's token stream and builds a File.
type Parser struct {
	lex *Lexer
	tok Token
}

// Parse parses one .ice source file's contents into a File.
func Parse(src string) (*File, error) {
	p := &Parser{lex: NewLexer(src)}
	if err := p.next(); err != nil {
		return nil, err
	}

	f := &File{}
	for p.tok.Kind != TokenEOF {
		if p.tok.Kind == TokenDirective {
			// #include and #pragma once lines are skipped: they add
			// nothing to the module tree, and the files an #include
			// names are not read.
			if err := p.next(); err != nil {
				return nil, err
			}
			continue
		}
		mod, err := p.parseModule()
		if err != nil {
			return nil, err
		}
		f.Modules = append(f.Modules, mod)
	}
	return f, nil
}

func (p *Parser) next() error {
	tok, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	args = append(args, p.tok.Line)
	return ice.NewParsingFault(format+" (line %d)", args...)
}

func (p *Parser) expectIdent(text string) error {
	if p.tok.Kind != TokenIdent || p.tok.Text != text {
		return p.errorf("expected %q, got %q", text, p.tok.Text)
	}
	return p.next()
}

func (p *Parser) expectPunct(text string) error {
	if p.tok.Kind != TokenPunct || p.tok.Text != text {
		return p.errorf("expected %q, got %q", text, p.tok.Text)
	}
	return p.next()
}

func (p *Parser) identName() (string, error) {
	if p.tok.Kind != TokenIdent {
		return "", p.errorf("expected identifier, got %q", p.tok.Text)
	}
	name := p.tok.Text
	if err := p.next(); err != nil {
		return "", err
	}
	return name, nil
}

func (p *Parser) atIdent(text string) bool {
	return p.tok.Kind == TokenIdent && p.tok.Text == text
}

func (p *Parser) atPunct(text string) bool {
	return p.tok.Kind == TokenPunct && p.tok.Text == text
}

func (p *Parser) parseModule() (*Module, error) {
	if err := p.expectIdent("module"); err != nil {
		return nil, err
	}
	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	mod := &Module{Name: name}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}

	for !p.atPunct("}") {
		if p.tok.Kind == TokenEOF {
			return nil, p.errorf("unterminated module %q", name)
		}
		switch {
		case p.atIdent("enum"):
			e, err := p.parseEnum()
			if err != nil {
				return nil, err
			}
			mod.Enums = append(mod.Enums, e)
		case p.atIdent("struct"):
			s, err := p.parseStruct()
			if err != nil {
				return nil, err
			}
			mod.Structs = append(mod.Structs, s)
		case p.atIdent("class"):
			c, err := p.parseClass()
			if err != nil {
				return nil, err
			}
			mod.Classes = append(mod.Classes, c)
		case p.atIdent("exception"):
			e, err := p.parseException()
			if err != nil {
				return nil, err
			}
			mod.Exceptions = append(mod.Exceptions, e)
		case p.atIdent("interface"):
			i, err := p.parseInterface()
			if err != nil {
				return nil, err
			}
			mod.Interfaces = append(mod.Interfaces, i)
		case p.atIdent("typedef"):
			td, err := p.parseTypedef()
			if err != nil {
				return nil, err
			}
			mod.Typedefs = append(mod.Typedefs, td)
		default:
			return nil, p.errorf("unexpected token %q inside module %q", p.tok.Text, name)
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return mod, p.expectPunct(";")
}

func (p *Parser) parseEnum() (*Enum, error) {
	if err := p.expectIdent("enum"); err != nil {
		return nil, err
	}
	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	e := &Enum{Name: name}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		variant, err := p.identName()
		if err != nil {
			return nil, err
		}
		e.Variants = append(e.Variants, variant)
		if p.atPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return e, p.expectPunct(";")
}

func (p *Parser) parseStruct() (*Struct, error) {
	if err := p.expectIdent("struct"); err != nil {
		return nil, err
	}
	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	s := &Struct{Name: name}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, field)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return s, p.expectPunct(";")
}

func (p *Parser) parseClass() (*Class, error) {
	if err := p.expectIdent("class"); err != nil {
		return nil, err
	}
	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	c := &Class{Name: name}
	if p.atIdent("extends") {
		if err := p.next(); err != nil {
			return nil, err
		}
		base, err := p.identName()
		if err != nil {
			return nil, err
		}
		c.Extends = base
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		c.Fields = append(c.Fields, field)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return c, p.expectPunct(";")
}

func (p *Parser) parseException() (*Exception, error) {
	if err := p.expectIdent("exception"); err != nil {
		return nil, err
	}
	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	e := &Exception{Name: name}
	if p.atIdent("extends") {
		if err := p.next(); err != nil {
			return nil, err
		}
		base, err := p.identName()
		if err != nil {
			return nil, err
		}
		e.Extends = base
	}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		field, err := p.parseField()
		if err != nil {
			return nil, err
		}
		e.Fields = append(e.Fields, field)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return e, p.expectPunct(";")
}

// parseField parses `[optional(tag)] type name;`.
func (p *Parser) parseField() (Field, error) {
	typ, err := p.parseType()
	if err != nil {
		return Field{}, err
	}
	name, err := p.identName()
	if err != nil {
		return Field{}, err
	}
	if err := p.expectPunct(";"); err != nil {
		return Field{}, err
	}
	return Field{Name: name, Type: typ}, nil
}

func (p *Parser) parseTypedef() (*Typedef, error) {
	if err := p.expectIdent("typedef"); err != nil {
		return nil, err
	}
	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	return &Typedef{Name: name, Type: typ}, p.expectPunct(";")
}

func (p *Parser) parseInterface() (*Interface, error) {
	if err := p.expectIdent("interface"); err != nil {
		return nil, err
	}
	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	iface := &Interface{Name: name}
	if err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	for !p.atPunct("}") {
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		iface.Functions = append(iface.Functions, fn)
	}
	if err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return iface, p.expectPunct(";")
}

func (p *Parser) parseFunction() (*Function, error) {
	fn := &Function{}
	if p.atIdent("idempotent") {
		fn.Idempotent = true
		if err := p.next(); err != nil {
			return nil, err
		}
	}
	retType, err := p.parseType()
	if err != nil {
		return nil, err
	}
	fn.ReturnType = retType

	name, err := p.identName()
	if err != nil {
		return nil, err
	}
	fn.Name = name

	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	for !p.atPunct(")") {
		arg, err := p.parseArgument()
		if err != nil {
			return nil, err
		}
		fn.Args = append(fn.Args, arg)
		if p.atPunct(",") {
			if err := p.next(); err != nil {
				return nil, err
			}
		}
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}

	if p.atIdent("throws") {
		if err := p.next(); err != nil {
			return nil, err
		}
		for {
			excName, err := p.identName()
			if err != nil {
				return nil, err
			}
			fn.Throws = append(fn.Throws, excName)
			if p.atPunct(",") {
				if err := p.next(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
	}

	return fn, p.expectPunct(";")
}

func (p *Parser) parseArgument() (Argument, error) {
	arg := Argument{}
	if p.atIdent("out") {
		arg.Out = true
		if err := p.next(); err != nil {
			return arg, err
		}
	}
	typ, err := p.parseType()
	if err != nil {
		return arg, err
	}
	arg.Type = typ
	name, err := p.identName()
	if err != nil {
		return arg, err
	}
	arg.Name = name
	return arg, nil
}

// parseType parses a TypeRef: a builtin, sequence<T>, dictionary<K,V>,
// optional(tag) T, or a named user type.
func (p *Parser) parseType() (TypeRef, error) {
	if p.atIdent("optional") {
		if err := p.next(); err != nil {
			return TypeRef{}, err
		}
		if err := p.expectPunct("("); err != nil {
			return TypeRef{}, err
		}
		if p.tok.Kind != TokenNumber {
			return TypeRef{}, p.errorf("expected a tag number, got %q", p.tok.Text)
		}
		tag, err := strconv.Atoi(p.tok.Text)
		if err != nil {
			return TypeRef{}, p.errorf("invalid optional tag %q", p.tok.Text)
		}
		if err := p.next(); err != nil {
			return TypeRef{}, err
		}
		if err := p.expectPunct(")"); err != nil {
			return TypeRef{}, err
		}
		inner, err := p.parseType()
		if err != nil {
			return TypeRef{}, err
		}
		inner.Optional = true
		inner.OptionalTag = tag
		return inner, nil
	}

	if p.atIdent("sequence") {
		if err := p.next(); err != nil {
			return TypeRef{}, err
		}
		if err := p.expectPunct("<"); err != nil {
			return TypeRef{}, err
		}
		elem, err := p.parseType()
		if err != nil {
			return TypeRef{}, err
		}
		if err := p.expectPunct(">"); err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: KindSequence, Elem: &elem}, nil
	}

	if p.atIdent("dictionary") {
		if err := p.next(); err != nil {
			return TypeRef{}, err
		}
		if err := p.expectPunct("<"); err != nil {
			return TypeRef{}, err
		}
		key, err := p.parseType()
		if err != nil {
			return TypeRef{}, err
		}
		if err := p.expectPunct(","); err != nil {
			return TypeRef{}, err
		}
		val, err := p.parseType()
		if err != nil {
			return TypeRef{}, err
		}
		if err := p.expectPunct(">"); err != nil {
			return TypeRef{}, err
		}
		return TypeRef{Kind: KindDictionary, Key: &key, Elem: &val}, nil
	}

	name, err := p.identName()
	if err != nil {
		return TypeRef{}, err
	}
	if builtinTypes[name] {
		return TypeRef{Kind: KindBuiltin, Builtin: name}, nil
	}
	return TypeRef{Kind: KindNamed, Named: name}, nil
}
