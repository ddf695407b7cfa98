// Package slicegen generates Go source from a parsed Slice module tree:
// plain data records, encode/decode routines, proxy stubs, server
// traits, and checked/unchecked cast helpers.
package slicegen

import (
	"fmt"
	"strings"

	"icelink/slice"
)

// Generate renders one Go source file per module in f, keyed by the
// file name slice2go would write it to.
func Generate(f *slice.File, packageName string) (map[string]string, error) {
	out := make(map[string]string)
	for _, mod := range f.Modules {
		body, err := renderModule(mod)
		if err != nil {
			return nil, err
		}
		content, err := renderFile(fileData{
			Package:       packageName,
			HasInterfaces: len(mod.Interfaces) > 0,
			Body:          body,
		})
		if err != nil {
			return nil, err
		}
		out[strings.ToLower(mod.Name)+".go"] = content
	}
	return out, nil
}

func renderModule(mod *slice.Module) (string, error) {
	var sb strings.Builder
	for _, e := range mod.Enums {
		sb.WriteString(renderEnum(e))
	}
	for _, s := range mod.Structs {
		sb.WriteString(renderStruct(s))
	}
	for _, e := range mod.Exceptions {
		sb.WriteString(renderException(e))
	}
	for _, c := range mod.Classes {
		sb.WriteString(renderClass(c))
	}
	for _, i := range mod.Interfaces {
		sb.WriteString(renderInterface(i))
	}
	return sb.String(), nil
}

func renderEnum(e *slice.Enum) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s is a generated Slice enumeration.\n", e.Name)
	fmt.Fprintf(&sb, "type %s int\n\nconst (\n", e.Name)
	for i, v := range e.Variants {
		fmt.Fprintf(&sb, "\t%s%s %s = %d\n", e.Name, v, e.Name, i)
	}
	sb.WriteString(")\n\n")

	fmt.Fprintf(&sb, "func (v %s) String() string {\n\tswitch v {\n", e.Name)
	for _, v := range e.Variants {
		fmt.Fprintf(&sb, "\tcase %s%s:\n\t\treturn %q\n", e.Name, v, v)
	}
	sb.WriteString("\tdefault:\n\t\treturn \"Unknown\"\n\t}\n}\n\n")

	fmt.Fprintf(&sb, "func Encode%s(buf []byte, v %s) []byte {\n\treturn ice.EncodeEnum(buf, int(v))\n}\n\n", e.Name, e.Name)
	fmt.Fprintf(&sb, "func Decode%s(buf []byte, pos *int) (%s, error) {\n", e.Name, e.Name)
	fmt.Fprintf(&sb, "\tn, err := ice.DecodeEnum(buf, pos, func(n int) bool { return n >= 0 && n < %d })\n", len(e.Variants))
	fmt.Fprintf(&sb, "\treturn %s(n), err\n}\n\n", e.Name)
	return sb.String()
}

func renderStruct(s *slice.Struct) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s is a generated Slice struct.\ntype %s struct {\n", s.Name, s.Name)
	for _, field := range s.Fields {
		fmt.Fprintf(&sb, "\t%s %s\n", exportedName(field.Name), goType(field.Type))
	}
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "func Encode%s(buf []byte, v %s) []byte {\n", s.Name, s.Name)
	for _, field := range s.Fields {
		fmt.Fprintf(&sb, "\tbuf = %s\n", encodeCall(field.Type, "buf", "v."+exportedName(field.Name)))
	}
	sb.WriteString("\treturn buf\n}\n\n")

	fmt.Fprintf(&sb, "func Decode%s(buf []byte, pos *int) (%s, error) {\n\tvar v %s\n\tvar err error\n", s.Name, s.Name, s.Name)
	for _, field := range s.Fields {
		fmt.Fprintf(&sb, "\tif v.%s, err = %s; err != nil {\n\t\treturn v, err\n\t}\n", exportedName(field.Name), decodeCall(field.Type, "buf", "pos"))
	}
	sb.WriteString("\treturn v, nil\n}\n\n")
	return sb.String()
}

func renderException(e *slice.Exception) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s is a generated Slice exception; it implements error.\ntype %s struct {\n", e.Name, e.Name)
	for _, field := range e.Fields {
		fmt.Fprintf(&sb, "\t%s %s\n", exportedName(field.Name), goType(field.Type))
	}
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "func (e *%s) Error() string { return %q }\n\n", e.Name, e.Name)

	fmt.Fprintf(&sb, "func Encode%s(buf []byte, v %s) []byte {\n", e.Name, e.Name)
	fmt.Fprintf(&sb, "\tbuf = ice.EncodeSliceFlags(buf, ice.SliceFlags{TypeIDKind: ice.TypeIDString, IsLastSlice: true})\n")
	fmt.Fprintf(&sb, "\tbuf = ice.EncodeString(buf, %q)\n", "::"+e.Name)
	for _, field := range e.Fields {
		fmt.Fprintf(&sb, "\tbuf = %s\n", encodeCall(field.Type, "buf", "v."+exportedName(field.Name)))
	}
	sb.WriteString("\treturn buf\n}\n\n")

	fmt.Fprintf(&sb, "func Decode%s(buf []byte, pos *int) (%s, error) {\n\tvar v %s\n", e.Name, e.Name, e.Name)
	sb.WriteString("\t_, _, err := ice.DecodeExceptionSliceHeader(buf, pos)\n\tif err != nil {\n\t\treturn v, err\n\t}\n")
	for _, field := range e.Fields {
		fmt.Fprintf(&sb, "\tif v.%s, err = %s; err != nil {\n\t\treturn v, err\n\t}\n", exportedName(field.Name), decodeCall(field.Type, "buf", "pos"))
	}
	sb.WriteString("\treturn v, nil\n}\n\n")
	return sb.String()
}

// renderClass generates a single-slice class type: required fields in
// declaration order, then any optional fields as a tagged, 0xFF
// terminated trailer.
func renderClass(c *slice.Class) string {
	var required, optional []slice.Field
	for _, f := range c.Fields {
		if f.Type.Optional {
			optional = append(optional, f)
		} else {
			required = append(required, f)
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s is a generated Slice class.\ntype %s struct {\n", c.Name, c.Name)
	for _, field := range c.Fields {
		fmt.Fprintf(&sb, "\t%s %s\n", exportedName(field.Name), goType(field.Type))
	}
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "func Encode%s(buf []byte, v %s) []byte {\n", c.Name, c.Name)
	sb.WriteString("\tbuf = ice.EncodeClassHead(buf)\n")
	fmt.Fprintf(&sb, "\tbuf = ice.EncodeSliceFlags(buf, ice.SliceFlags{TypeIDKind: ice.TypeIDString, HasOptionalMembers: %t, IsLastSlice: true})\n", len(optional) > 0)
	fmt.Fprintf(&sb, "\tbuf = ice.EncodeString(buf, %q)\n", "::"+c.Name)
	for _, field := range required {
		fmt.Fprintf(&sb, "\tbuf = %s\n", encodeCall(field.Type, "buf", "v."+exportedName(field.Name)))
	}
	for _, field := range optional {
		tag := field.Type.OptionalTag
		typ := optionalStorageClass(field.Type)
		fmt.Fprintf(&sb, "\tif v.%s != nil {\n", exportedName(field.Name))
		fmt.Fprintf(&sb, "\t\tbuf = ice.EncodeOptionalFlag(buf, %d, %s)\n", tag, typ)
		fmt.Fprintf(&sb, "\t\tbuf = %s\n\t}\n", encodeCall(field.Type, "buf", "v."+exportedName(field.Name)))
	}
	if len(optional) > 0 {
		sb.WriteString("\tbuf = ice.EncodeOptionalEnd(buf)\n")
	}
	sb.WriteString("\treturn buf\n}\n\n")

	fmt.Fprintf(&sb, "func Decode%s(buf []byte, pos *int) (%s, error) {\n\tvar v %s\n", c.Name, c.Name, c.Name)
	sb.WriteString("\tok, err := ice.DecodeClassHead(buf, pos)\n\tif err != nil {\n\t\treturn v, err\n\t}\n")
	fmt.Fprintf(&sb, "\tif !ok {\n\t\treturn v, ice.NewDecodingFault(\"%s: expected class instance\")\n\t}\n", c.Name)
	sb.WriteString("\tflags, _, err := ice.DecodeClassSliceHeader(buf, pos)\n\tif err != nil {\n\t\treturn v, err\n\t}\n")
	for _, field := range required {
		fmt.Fprintf(&sb, "\tif v.%s, err = %s; err != nil {\n\t\treturn v, err\n\t}\n", exportedName(field.Name), decodeCall(field.Type, "buf", "pos"))
	}
	if len(optional) > 0 {
		sb.WriteString("\tif flags.HasOptionalMembers {\n")
		sb.WriteString("\t\thandlers := map[uint8]ice.OptionalMemberHandler{\n")
		for _, field := range optional {
			tag := field.Type.OptionalTag
			fmt.Fprintf(&sb, "\t\t\t%d: func(buf []byte, pos *int, typ uint8) error {\n", tag)
			fmt.Fprintf(&sb, "\t\t\t\tval, err := %s\n", decodeCall(field.Type, "buf", "pos"))
			fmt.Fprintf(&sb, "\t\t\t\tv.%s = &val\n\t\t\t\treturn err\n\t\t\t},\n", exportedName(field.Name))
		}
		sb.WriteString("\t\t}\n")
		sb.WriteString("\t\tif err := ice.DecodeOptionalMembers(buf, pos, handlers); err != nil {\n\t\t\treturn v, err\n\t\t}\n")
		sb.WriteString("\t}\n")
	}
	sb.WriteString("\treturn v, nil\n}\n\n")
	return sb.String()
}

func optionalStorageClass(t slice.TypeRef) string {
	if t.Kind == slice.KindBuiltin {
		switch t.Builtin {
		case "bool", "byte":
			return "ice.OptionalTypeByte1"
		case "short":
			return "ice.OptionalTypeByte2"
		case "int", "float":
			return "ice.OptionalTypeByte4"
		case "long", "double":
			return "ice.OptionalTypeByte8"
		case "string":
			return "ice.OptionalTypeSize"
		}
	}
	return "ice.OptionalTypeSize"
}

func exportedName(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
