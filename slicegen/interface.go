package slicegen

import (
	"fmt"
	"strings"

	"icelink/slice"
)

// renderInterface emits a <Iface>Prx client stub, an <Iface>I server
// trait, an <Iface>Server dispatch shim, and checked/unchecked cast
// helpers.
func renderInterface(iface *slice.Interface) string {
	var sb strings.Builder

	prxName := iface.Name + "Prx"
	serverTraitName := iface.Name + "I"
	serverName := iface.Name + "Server"
	typeID := "::" + iface.Name

	fmt.Fprintf(&sb, "// %s is the client-side proxy stub for the %s interface.\n", prxName, iface.Name)
	fmt.Fprintf(&sb, "type %s struct {\n\t*proxy.Proxy\n}\n\n", prxName)

	fmt.Fprintf(&sb, "// Unchecked%s wraps p without verifying the remote type.\n", iface.Name)
	fmt.Fprintf(&sb, "func Unchecked%s(p *proxy.Proxy) %s {\n\treturn %s{Proxy: p}\n}\n\n", iface.Name, prxName, prxName)

	fmt.Fprintf(&sb, "// Checked%s calls ice_isA(%q) and only returns a proxy if it answers true.\n", iface.Name, typeID)
	fmt.Fprintf(&sb, "func Checked%s(p *proxy.Proxy) (%s, error) {\n", iface.Name, prxName)
	fmt.Fprintf(&sb, "\tok, err := p.IceIsA(%q)\n\tif err != nil {\n\t\treturn %s{}, err\n\t}\n", typeID, prxName)
	fmt.Fprintf(&sb, "\tif !ok {\n\t\treturn %s{}, ice.NewProtocolFault(\"%s: remote object does not implement %s\")\n\t}\n", prxName, iface.Name, typeID)
	fmt.Fprintf(&sb, "\treturn %s{Proxy: p}, nil\n}\n\n", prxName)

	for _, fn := range iface.Functions {
		sb.WriteString(renderClientMethod(prxName, fn))
	}

	fmt.Fprintf(&sb, "// %s is the user-supplied handler set a server registers for %s.\n", serverTraitName, iface.Name)
	fmt.Fprintf(&sb, "type %s interface {\n", serverTraitName)
	for _, fn := range iface.Functions {
		fmt.Fprintf(&sb, "\t%s\n", serverMethodSignature(fn))
	}
	sb.WriteString("}\n\n")

	fmt.Fprintf(&sb, "// %s dispatches incoming requests to a %s implementation.\n", serverName, serverTraitName)
	fmt.Fprintf(&sb, "type %s struct {\n\tImpl %s\n}\n\n", serverName, serverTraitName)
	fmt.Fprintf(&sb, "func (s %s) Dispatch(operation string, mode uint8, params ice.Encapsulation, context map[string]string) (ice.ReplyData, error) {\n", serverName)
	sb.WriteString("\tswitch operation {\n")
	for _, fn := range iface.Functions {
		sb.WriteString(renderDispatchCase(fn))
	}
	sb.WriteString("\tdefault:\n\t\treturn ice.ReplyData{}, ice.NewProtocolFault(\"unknown operation %s\", operation)\n")
	sb.WriteString("\t}\n}\n\n")

	return sb.String()
}

// clientArgType is the Go type an argument takes in a generated method
// signature: an out argument is a pointer the out-value is written
// through, an optional in argument is a pointer whose nil means absent.
func clientArgType(a slice.Argument) string {
	if a.Out {
		base := a.Type
		base.Optional = false
		return "*" + goBaseType(base)
	}
	return goType(a.Type)
}

func renderClientMethod(prxName string, fn *slice.Function) string {
	var sb strings.Builder

	argList := make([]string, 0, len(fn.Args))
	var outArgs []slice.Argument
	for _, a := range fn.Args {
		argList = append(argList, fmt.Sprintf("%s %s", a.Name, clientArgType(a)))
		if a.Out {
			outArgs = append(outArgs, a)
		}
	}
	ret := ""
	if fn.ReturnType.Kind != slice.KindBuiltin || fn.ReturnType.Builtin != "void" {
		ret = goType(fn.ReturnType) + ", "
	}
	results := "error"
	if ret != "" {
		results = "(" + ret + "error)"
	}
	fmt.Fprintf(&sb, "func (p %s) %s(%s) %s {\n", prxName, exportedName(fn.Name), strings.Join(argList, ", "), results)

	// Out arguments carry no request input; only in arguments are
	// encoded, required ones first, optional ones as a tagged trailer.
	sb.WriteString("\tvar buf []byte\n")
	for _, a := range fn.Args {
		if a.Out || a.Type.Optional {
			continue
		}
		fmt.Fprintf(&sb, "\tbuf = %s\n", encodeCall(a.Type, "buf", a.Name))
	}
	hasOptional := false
	for _, a := range fn.Args {
		if a.Out || !a.Type.Optional {
			continue
		}
		hasOptional = true
		typ := optionalStorageClass(a.Type)
		fmt.Fprintf(&sb, "\tif %s != nil {\n\t\tbuf = ice.EncodeOptionalFlag(buf, %d, %s)\n\t\tbuf = %s\n\t}\n",
			a.Name, a.Type.OptionalTag, typ, encodeCall(a.Type, "buf", a.Name))
	}
	if hasOptional {
		sb.WriteString("\tbuf = ice.EncodeOptionalEnd(buf)\n")
	}

	mode := "ice.ModeNormal"
	if fn.Idempotent {
		mode = "ice.ModeIdempotent"
	}
	// A void method with no throws clause and no out arguments never
	// inspects the reply; bind it to the blank identifier so the
	// generated code compiles.
	replyVar := "reply"
	if ret == "" && len(fn.Throws) == 0 && len(outArgs) == 0 {
		replyVar = "_"
	}
	fmt.Fprintf(&sb, "\t%s, err := p.Dispatch(%q, %s, ice.NewEncapsulation(buf), nil)\n", replyVar, fn.Name, mode)
	errRet := "err"
	if ret != "" {
		errRet = zeroValueExpr(fn.ReturnType) + ", err"
	}
	fmt.Fprintf(&sb, "\tif err != nil {\n\t\treturn %s\n\t}\n", errRet)

	if len(fn.Throws) > 0 {
		fmt.Fprintf(&sb, "\tif reply.Status == ice.StatusUserException {\n")
		fmt.Fprintf(&sb, "\t\tpos := 0\n\t\texc, excErr := Decode%s(reply.Body.Data, &pos)\n", fn.Throws[0])
		userErrRet := "&exc"
		if ret != "" {
			userErrRet = zeroValueExpr(fn.ReturnType) + ", &exc"
		}
		fmt.Fprintf(&sb, "\t\tif excErr != nil {\n\t\t\treturn %s\n\t\t}\n\t\treturn %s\n\t}\n", errRetWithZero(ret, fn.ReturnType, "excErr"), userErrRet)
	}

	if ret == "" && len(outArgs) == 0 {
		sb.WriteString("\treturn nil\n}\n\n")
		return sb.String()
	}

	sb.WriteString("\tpos := 0\n")
	// The reply body carries the out-values first, in declaration order,
	// ahead of the return value.
	for _, a := range outArgs {
		base := a.Type
		base.Optional = false
		fmt.Fprintf(&sb, "\t%sOut, err := %s\n", a.Name, decodeCall(base, "reply.Body.Data", "&pos"))
		fmt.Fprintf(&sb, "\tif err != nil {\n\t\treturn %s\n\t}\n", errRetWithZero(ret, fn.ReturnType, "err"))
		fmt.Fprintf(&sb, "\t*%s = %sOut\n", a.Name, a.Name)
	}

	if ret == "" {
		sb.WriteString("\treturn nil\n}\n\n")
		return sb.String()
	}

	// An optional return travels as either nothing (absent) or the plain
	// encoding; the stub maps that onto a nil / non-nil pointer.
	if fn.ReturnType.Optional {
		sb.WriteString("\tif pos == len(reply.Body.Data) {\n\t\treturn nil, nil\n\t}\n")
	}
	fmt.Fprintf(&sb, "\tresult, err := %s\n", decodeCall(fn.ReturnType, "reply.Body.Data", "&pos"))
	fmt.Fprintf(&sb, "\tif err != nil {\n\t\treturn %s\n\t}\n", errRetWithZero(ret, fn.ReturnType, "err"))
	if fn.ReturnType.Optional {
		sb.WriteString("\treturn &result, nil\n}\n\n")
	} else {
		sb.WriteString("\treturn result, nil\n}\n\n")
	}
	return sb.String()
}

// errRetWithZero builds a `return <zero>, <errVar>` expression using
// the return type's actual zero value, not a blind composite literal
// (which doesn't parse for builtin return types like string or int32).
func errRetWithZero(ret string, t slice.TypeRef, errVar string) string {
	if ret == "" {
		return errVar
	}
	return zeroValueExpr(t) + ", " + errVar
}

func zeroValueExpr(t slice.TypeRef) string {
	if t.Optional {
		return "nil"
	}
	switch t.Kind {
	case slice.KindBuiltin:
		switch t.Builtin {
		case "bool":
			return "false"
		case "string":
			return `""`
		case "byte", "short", "int", "long", "float", "double":
			return "0"
		}
	}
	return goType(t) + "{}"
}

func serverMethodSignature(fn *slice.Function) string {
	argList := make([]string, 0, len(fn.Args))
	for _, a := range fn.Args {
		argList = append(argList, clientArgType(a))
	}
	ret := "error"
	if !(fn.ReturnType.Kind == slice.KindBuiltin && fn.ReturnType.Builtin == "void") {
		ret = fmt.Sprintf("(%s, error)", goType(fn.ReturnType))
	}
	return fmt.Sprintf("%s(%s) %s", exportedName(fn.Name), strings.Join(argList, ", "), ret)
}

func renderDispatchCase(fn *slice.Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "\tcase %q:\n", fn.Name)

	var requiredIn, optionalIn, outArgs []slice.Argument
	for _, a := range fn.Args {
		switch {
		case a.Out:
			outArgs = append(outArgs, a)
		case a.Type.Optional:
			optionalIn = append(optionalIn, a)
		default:
			requiredIn = append(requiredIn, a)
		}
	}

	// pos only exists when there is a request argument to decode; an
	// operation taking none would otherwise declare it unused.
	if len(requiredIn)+len(optionalIn) > 0 {
		sb.WriteString("\t\tpos := 0\n")
	}
	for _, a := range requiredIn {
		fmt.Fprintf(&sb, "\t\t%s, err := %s\n", a.Name, decodeCall(a.Type, "params.Data", "&pos"))
		sb.WriteString("\t\tif err != nil {\n\t\t\treturn ice.ReplyData{}, err\n\t\t}\n")
	}
	if len(optionalIn) > 0 {
		for _, a := range optionalIn {
			fmt.Fprintf(&sb, "\t\tvar %s %s\n", a.Name, goType(a.Type))
		}
		sb.WriteString("\t\thandlers := map[uint8]ice.OptionalMemberHandler{\n")
		for _, a := range optionalIn {
			base := a.Type
			base.Optional = false
			fmt.Fprintf(&sb, "\t\t\t%d: func(buf []byte, pos *int, typ uint8) error {\n", a.Type.OptionalTag)
			fmt.Fprintf(&sb, "\t\t\t\tval, err := %s\n", decodeCall(base, "buf", "pos"))
			fmt.Fprintf(&sb, "\t\t\t\t%s = &val\n\t\t\t\treturn err\n\t\t\t},\n", a.Name)
		}
		sb.WriteString("\t\t}\n")
		sb.WriteString("\t\tif err := ice.DecodeOptionalMembers(params.Data, &pos, handlers); err != nil {\n\t\t\treturn ice.ReplyData{}, err\n\t\t}\n")
	}
	for _, a := range outArgs {
		base := a.Type
		base.Optional = false
		fmt.Fprintf(&sb, "\t\tvar %s %s\n", a.Name, goBaseType(base))
	}

	callArgs := make([]string, 0, len(fn.Args))
	for _, a := range fn.Args {
		if a.Out {
			callArgs = append(callArgs, "&"+a.Name)
			continue
		}
		callArgs = append(callArgs, a.Name)
	}

	isVoid := fn.ReturnType.Kind == slice.KindBuiltin && fn.ReturnType.Builtin == "void"
	if isVoid {
		fmt.Fprintf(&sb, "\t\tif err := s.Impl.%s(%s); err != nil {\n", exportedName(fn.Name), strings.Join(callArgs, ", "))
		sb.WriteString(renderDispatchErrorReturn(fn))
		sb.WriteString("\t\t}\n")
		if len(outArgs) == 0 {
			sb.WriteString("\t\treturn ice.ReplyData{Status: ice.StatusOk, Body: ice.EmptyEncapsulation()}, nil\n")
			return sb.String()
		}
		sb.WriteString(renderDispatchReplyBody(fn, outArgs))
		return sb.String()
	}

	fmt.Fprintf(&sb, "\t\tresult, err := s.Impl.%s(%s)\n", exportedName(fn.Name), strings.Join(callArgs, ", "))
	sb.WriteString("\t\tif err != nil {\n")
	sb.WriteString(renderDispatchErrorReturn(fn))
	sb.WriteString("\t\t}\n")
	if len(outArgs) == 0 && !fn.ReturnType.Optional {
		fmt.Fprintf(&sb, "\t\tbody := %s\n", encodeCall(fn.ReturnType, "nil", "result"))
		sb.WriteString("\t\treturn ice.ReplyData{Status: ice.StatusOk, Body: ice.NewEncapsulation(body)}, nil\n")
		return sb.String()
	}
	sb.WriteString(renderDispatchReplyBody(fn, outArgs))
	return sb.String()
}

// renderDispatchReplyBody assembles a reply encapsulation mirroring the
// client stub's decode order: out-values in declaration order, then the
// return value (guarded when the return is optional).
func renderDispatchReplyBody(fn *slice.Function, outArgs []slice.Argument) string {
	var sb strings.Builder
	sb.WriteString("\t\tvar body []byte\n")
	for _, a := range outArgs {
		base := a.Type
		base.Optional = false
		fmt.Fprintf(&sb, "\t\tbody = %s\n", encodeCall(base, "body", a.Name))
	}
	isVoid := fn.ReturnType.Kind == slice.KindBuiltin && fn.ReturnType.Builtin == "void"
	if !isVoid {
		if fn.ReturnType.Optional {
			fmt.Fprintf(&sb, "\t\tif result != nil {\n\t\t\tbody = %s\n\t\t}\n", encodeCall(fn.ReturnType, "body", "result"))
		} else {
			fmt.Fprintf(&sb, "\t\tbody = %s\n", encodeCall(fn.ReturnType, "body", "result"))
		}
	}
	sb.WriteString("\t\treturn ice.ReplyData{Status: ice.StatusOk, Body: ice.NewEncapsulation(body)}, nil\n")
	return sb.String()
}

// renderDispatchErrorReturn, given a handler error already bound to
// `err`, type-switches it against fn's declared throws clause so a
// matching user exception is encoded as a StatusUserException reply
// (matching the client stub's StatusUserException decode in
// renderClientMethod) instead of surfacing as a Dispatch error.
func renderDispatchErrorReturn(fn *slice.Function) string {
	var sb strings.Builder
	for _, excName := range fn.Throws {
		fmt.Fprintf(&sb, "\t\t\tif exc, ok := err.(*%s); ok {\n", excName)
		fmt.Fprintf(&sb, "\t\t\t\treturn ice.ReplyData{Status: ice.StatusUserException, Body: ice.NewEncapsulation(Encode%s(nil, *exc))}, nil\n", excName)
		sb.WriteString("\t\t\t}\n")
	}
	sb.WriteString("\t\t\treturn ice.ReplyData{}, err\n")
	return sb.String()
}
