package mermaid

import "strings"

// EscapeLabel makes label text safe to quote inside flowchart statements:
// backslashes are doubled and double quotes become the #quot; entity, so
// label content can never terminate the surrounding quoted string.
func EscapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, "#quot;")
	return s
}

// UnescapeLabel inverts EscapeLabel for labels that did not already contain
// the #quot; entity.
func UnescapeLabel(s string) string {
	s = strings.ReplaceAll(s, "#quot;", `"`)
	s = strings.ReplaceAll(s, `\\`, `\`)
	return s
}
