package template

import "strings"

// Render substitutes {placeholder} occurrences with the given values.
// Unknown placeholders are left as-is so an operator can spot a template
// typo in the delivered text instead of silently losing it.
func Render(tmpl string, values map[string]string) string {
	if tmpl == "" || len(values) == 0 {
		return tmpl
	}
	pairs := make([]string, 0, len(values)*2)
	for k, v := range values {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}
