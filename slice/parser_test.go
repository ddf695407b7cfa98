package slice

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const demoSource = `
#pragma once

module Demo {

enum Color { Red, Green, Blue };

struct Point {
    int x;
    int y;
};

exception HelloError {
    string reason;
};

class Greeting {
    string text;
    optional(1) int priority;
};

interface Hello {
    idempotent string sayHello(string name, optional(1) int count) throws HelloError;
    void shutdown();
};

};
`

func TestParseDemoModule(t *testing.T) {
	f, err := Parse(demoSource)
	require.NoError(t, err)
	require.Len(t, f.Modules, 1)

	mod := f.Modules[0]
	require.Equal(t, "Demo", mod.Name)

	require.Len(t, mod.Enums, 1)
	require.Equal(t, []string{"Red", "Green", "Blue"}, mod.Enums[0].Variants)

	require.Len(t, mod.Structs, 1)
	require.Equal(t, "Point", mod.Structs[0].Name)
	require.Len(t, mod.Structs[0].Fields, 2)
	require.Equal(t, "x", mod.Structs[0].Fields[0].Name)
	require.Equal(t, KindBuiltin, mod.Structs[0].Fields[0].Type.Kind)
	require.Equal(t, "int", mod.Structs[0].Fields[0].Type.Builtin)

	require.Len(t, mod.Exceptions, 1)
	require.Equal(t, "reason", mod.Exceptions[0].Fields[0].Name)

	require.Len(t, mod.Classes, 1)
	require.Equal(t, "priority", mod.Classes[0].Fields[1].Name)
	require.True(t, mod.Classes[0].Fields[1].Type.Optional)
	require.Equal(t, 1, mod.Classes[0].Fields[1].Type.OptionalTag)

	require.Len(t, mod.Interfaces, 1)
	iface := mod.Interfaces[0]
	require.Equal(t, "Hello", iface.Name)
	require.Len(t, iface.Functions, 2)

	sayHello := iface.Functions[0]
	require.True(t, sayHello.Idempotent)
	require.Equal(t, KindBuiltin, sayHello.ReturnType.Kind)
	require.Equal(t, "string", sayHello.ReturnType.Builtin)
	require.Len(t, sayHello.Args, 2)
	require.Equal(t, "name", sayHello.Args[0].Name)
	require.True(t, sayHello.Args[1].Type.Optional)
	require.Equal(t, []string{"HelloError"}, sayHello.Throws)

	shutdown := iface.Functions[1]
	require.False(t, shutdown.Idempotent)
	require.Equal(t, "void", shutdown.ReturnType.Builtin)
	require.Empty(t, shutdown.Args)
}

func TestParseSequenceAndDictionary(t *testing.T) {
	src := `
module M {
struct S {
    sequence<string> names;
    dictionary<string, int> counts;
};
};
`
	f, err := Parse(src)
	require.NoError(t, err)
	s := f.Modules[0].Structs[0]
	require.Equal(t, KindSequence, s.Fields[0].Type.Kind)
	require.Equal(t, KindDictionary, s.Fields[1].Type.Kind)
	require.Equal(t, "string", s.Fields[1].Type.Key.Builtin)
	require.Equal(t, "int", s.Fields[1].Type.Elem.Builtin)
}

func TestParseRejectsInvalidSyntax(t *testing.T) {
	_, err := Parse(`module M { struct S int x; }; };`)
	require.Error(t, err)
}

func TestParseClassExtends(t *testing.T) {
	src := `
module M {
class Base { int id; };
class Derived extends Base { string name; };
};
`
	f, err := Parse(src)
	require.NoError(t, err)
	require.Equal(t, "Base", f.Modules[0].Classes[1].Extends)
}
