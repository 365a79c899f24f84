// Package templating renders email templates by naive {{variable}}
// substitution. It deliberately does NOT use html/template: the contract is a
// global string replace per variable with unmatched placeholders left
// verbatim (partial previews are valid output), and variable values are not
// HTML-escaped to preserve the legacy behavior.
package templating

import "strings"

// Render replaces every occurrence of {{name}} with vars[name]. Placeholders
// without a matching key are left untouched, so re-rendering with the same
// map is idempotent.
func Render(tmpl string, vars map[string]string) string {
	out := tmpl
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{{"+name+"}}", value)
	}
	return out
}

// Wrap sandwiches a template body between the global branding header and
// footer fragments. Empty fragments contribute nothing.
func Wrap(header, body, footer string) string {
	return header + body + footer
}

// Placeholder returns the literal placeholder token for a variable name.
func Placeholder(name string) string {
	return "{{" + name + "}}"
}
