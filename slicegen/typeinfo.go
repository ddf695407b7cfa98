package slicegen

import (
	"fmt"

	"icelink/slice"
)

// goType returns the Go type used to hold a Slice TypeRef's decoded
// value. Optionality is expressed as a pointer to the base type, for
// every kind of type including sequences and dictionaries.
func goType(t slice.TypeRef) string {
	base := goBaseType(t)
	if t.Optional {
		return "*" + base
	}
	return base
}

func goBaseType(t slice.TypeRef) string {
	switch t.Kind {
	case slice.KindBuiltin:
		return builtinGoType(t.Builtin)
	case slice.KindNamed:
		return t.Named
	case slice.KindSequence:
		return "[]" + goType(*t.Elem)
	case slice.KindDictionary:
		return fmt.Sprintf("map[%s]%s", goType(*t.Key), goType(*t.Elem))
	default:
		return "interface{}"
	}
}

func builtinGoType(name string) string {
	switch name {
	case "void":
		return ""
	case "bool":
		return "bool"
	case "byte":
		return "byte"
	case "short":
		return "int16"
	case "int":
		return "int32"
	case "long":
		return "int64"
	case "float":
		return "float32"
	case "double":
		return "float64"
	case "string":
		return "string"
	default:
		return name
	}
}

// encodeCall returns a Go expression that appends the encoding of
// valueExpr (of type t) to a []byte named buf, used as the right-hand
// side of `buf = <expr>`.
func encodeCall(t slice.TypeRef, bufVar, valueExpr string) string {
	if t.Optional {
		// The value is dereferenced unconditionally. renderClass,
		// renderClientMethod and renderDispatchReplyBody wrap this call
		// in a non-nil check; renderException does not.
		inner := t
		inner.Optional = false
		return encodeCall(inner, bufVar, "*"+valueExpr)
	}
	switch t.Kind {
	case slice.KindBuiltin:
		return fmt.Sprintf("%s(%s, %s)", builtinEncodeFunc(t.Builtin), bufVar, valueExpr)
	case slice.KindSequence:
		elemEncoder := elemEncodeFuncLiteral(*t.Elem)
		return fmt.Sprintf("ice.EncodeSeq(%s, %s, %s)", bufVar, valueExpr, elemEncoder)
	case slice.KindDictionary:
		keyEncoder := elemEncodeFuncLiteral(*t.Key)
		valEncoder := elemEncodeFuncLiteral(*t.Elem)
		return fmt.Sprintf("ice.EncodeDict(%s, %s, %s, %s)", bufVar, valueExpr, keyEncoder, valEncoder)
	case slice.KindNamed:
		return fmt.Sprintf("Encode%s(%s, %s)", t.Named, bufVar, valueExpr)
	default:
		return bufVar
	}
}

// decodeCall returns a Go expression decoding one value of type t from
// (buf, pos), used as the right-hand side of `v, err := <expr>`.
func decodeCall(t slice.TypeRef, bufVar, posVar string) string {
	if t.Optional {
		inner := t
		inner.Optional = false
		return decodeCall(inner, bufVar, posVar)
	}
	switch t.Kind {
	case slice.KindBuiltin:
		return fmt.Sprintf("%s(%s, %s)", builtinDecodeFunc(t.Builtin), bufVar, posVar)
	case slice.KindSequence:
		elemDecoder := elemDecodeFuncLiteral(*t.Elem)
		return fmt.Sprintf("ice.DecodeSeq(%s, %s, %s)", bufVar, posVar, elemDecoder)
	case slice.KindDictionary:
		keyDecoder := elemDecodeFuncLiteral(*t.Key)
		valDecoder := elemDecodeFuncLiteral(*t.Elem)
		return fmt.Sprintf("ice.DecodeDict(%s, %s, %s, %s)", bufVar, posVar, keyDecoder, valDecoder)
	case slice.KindNamed:
		return fmt.Sprintf("Decode%s(%s, %s)", t.Named, bufVar, posVar)
	default:
		return ""
	}
}

func builtinEncodeFunc(name string) string {
	switch name {
	case "bool":
		return "ice.EncodeBool"
	case "byte":
		return "ice.EncodeByte"
	case "short":
		return "ice.EncodeShort"
	case "int":
		return "ice.EncodeInt"
	case "long":
		return "ice.EncodeLong"
	case "float":
		return "ice.EncodeFloat"
	case "double":
		return "ice.EncodeDouble"
	case "string":
		return "ice.EncodeString"
	default:
		return "ice.EncodeByte"
	}
}

func builtinDecodeFunc(name string) string {
	switch name {
	case "bool":
		return "ice.DecodeBool"
	case "byte":
		return "ice.DecodeByte"
	case "short":
		return "ice.DecodeShort"
	case "int":
		return "ice.DecodeInt"
	case "long":
		return "ice.DecodeLong"
	case "float":
		return "ice.DecodeFloat"
	case "double":
		return "ice.DecodeDouble"
	case "string":
		return "ice.DecodeString"
	default:
		return "ice.DecodeByte"
	}
}

// elemEncodeFuncLiteral/elemDecodeFuncLiteral produce a func literal or
// func reference suitable as the per-element callback argument to
// ice.EncodeSeq/DecodeSeq/EncodeDict/DecodeDict.
func elemEncodeFuncLiteral(t slice.TypeRef) string {
	if t.Kind == slice.KindBuiltin {
		return builtinEncodeFunc(t.Builtin)
	}
	if t.Kind == slice.KindNamed {
		return "Encode" + t.Named
	}
	return fmt.Sprintf("func(buf []byte, v %s) []byte { return %s }", goType(t), encodeCall(t, "buf", "v"))
}

func elemDecodeFuncLiteral(t slice.TypeRef) string {
	if t.Kind == slice.KindBuiltin {
		return builtinDecodeFunc(t.Builtin)
	}
	if t.Kind == slice.KindNamed {
		return "Decode" + t.Named
	}
	return fmt.Sprintf("func(buf []byte, pos *int) (%s, error) { return %s }", goType(t), decodeCall(t, "buf", "pos"))
}
