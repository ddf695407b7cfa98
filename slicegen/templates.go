package slicegen

import (
	"strings"
	"text/template"
)

// fileTemplate is the top-level skeleton every generated module file is
// rendered through; the heavy lifting (per-type encode/decode bodies)
// is built as plain Go source strings in generate.go and dropped into
// the Body field, leaving text/template to handle final assembly.
var fileTemplate = template.Must(template.New("file").Parse(`// Code generated by slice2go from a Slice source file. DO NOT EDIT.

package {{.Package}}

import (
	"icelink/ice"
{{- if .HasInterfaces}}
	"icelink/proxy"
{{- end}}
)

{{.Body}}
`))

type fileData struct {
	Package       string
	HasInterfaces bool
	Body          string
}

func renderFile(data fileData) (string, error) {
	var sb strings.Builder
	if err := fileTemplate.Execute(&sb, data); err != nil {
		return "", err
	}
	return sb.String(), nil
}
