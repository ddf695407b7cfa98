// Package slice defines the Slice interface-definition-language module
// tree and a hand-written lexer/parser that builds it.
package slice

// TypeRef names a reference to a type: a built-in scalar, a
// sequence/dictionary of other TypeRefs, a user-defined name (resolved
// against the module tree by the generator), or an optional wrapper.
type TypeRef struct {
	// Builtin is one of "void","bool","byte","short","int","long",
	// "float","double","string" when Kind == KindBuiltin.
	Builtin string

	Kind TypeRefKind

	// Named is the referenced type's name when Kind == KindNamed.
	Named string

	// Sequence/Dictionary element types when Kind is KindSequence or
	// KindDictionary.
	Elem *TypeRef
	Key  *TypeRef // dictionary key type; nil unless KindDictionary

	// Optional wraps another TypeRef with a presence tag.
	Optional    bool
	OptionalTag int
}

// TypeRefKind discriminates TypeRef's variant.
type TypeRefKind int

const (
	KindBuiltin TypeRefKind = iota
	KindNamed
	KindSequence
	KindDictionary
)

// Module is one `module Name { ... }` block: a named namespace holding
// enums, structs, classes, exceptions, and interfaces.
type Module struct {
	Name       string
	Enums      []*Enum
	Structs    []*Struct
	Classes    []*Class
	Exceptions []*Exception
	Interfaces []*Interface
	Typedefs   []*Typedef
}

// Enum is an integer-backed enumeration.
type Enum struct {
	Name     string
	Variants []string
}

// Field is one struct/class/exception member.
type Field struct {
	Name string
	Type TypeRef
}

// Struct is a plain value type: members in declaration order, no framing.
type Struct struct {
	Name   string
	Fields []Field
}

// Class is a sliced, possibly-derived reference type.
type Class struct {
	Name    string
	Extends string // base class name; empty if none
	Fields  []Field
}

// Exception is a sliced, possibly-derived error type (same layout as a
// class slice, no leading marker byte).
type Exception struct {
	Name    string
	Extends string
	Fields  []Field
}

// Argument is one function parameter.
type Argument struct {
	Name string
	Type TypeRef
	Out  bool
}

// Function is one interface operation.
type Function struct {
	Name        string
	ReturnType  TypeRef
	Args        []Argument
	Idempotent  bool
	Throws      []string // exception type names
}

// Interface is a named set of remotely-invocable operations.
type Interface struct {
	Name      string
	Functions []*Function
}

// Typedef is a `typedef <type> <name>` alias.
type Typedef struct {
	Name string
	Type TypeRef
}

// File is the parsed result of one .ice source file: a flat list of
// top-level modules in source order. Modules that share a name are not
// merged, here or in the generator: Generate renders each module to its
// own <lowercase name>.go, so a later module with the same name replaces
// the output of an earlier one.
type File struct {
	Modules []*Module
}
