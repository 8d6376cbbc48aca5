// internal/snippet/registry.go
package snippet

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

// Registry maps trigger words to template bodies, per language. Template
// bodies are kept as source text; parsing happens at insertion so a broken
// user-supplied template fails the insertion, not the load.
type Registry struct {
	byLang map[string]map[string]string
}

// NewRegistry returns a registry pre-loaded with the built-in templates.
func NewRegistry() *Registry {
	r := &Registry{byLang: make(map[string]map[string]string)}
	for lang, triggers := range builtinTemplates {
		for trigger, body := range triggers {
			r.Add(lang, trigger, body)
		}
	}
	return r
}

// Add registers a template, replacing any existing binding for the trigger.
func (r *Registry) Add(lang, trigger, body string) {
	m, ok := r.byLang[lang]
	if !ok {
		m = make(map[string]string)
		r.byLang[lang] = m
	}
	m[trigger] = body
}

// Lookup returns the template body bound to a trigger for a language.
func (r *Registry) Lookup(lang, trigger string) (string, bool) {
	body, ok := r.byLang[lang][trigger]
	return body, ok
}

// Triggers lists a language's trigger words in sorted order.
func (r *Registry) Triggers(lang string) []string {
	m := r.byLang[lang]
	out := make([]string, 0, len(m))
	for trigger := range m {
		out = append(out, trigger)
	}
	sort.Strings(out)
	return out
}

// LoadFile merges user templates from a TOML file, one table per language:
//
//	[python]
//	for = "for ${1:item} in ${2:items}:\n    ${3:pass}"
//
// User entries override built-ins with the same trigger.
func (r *Registry) LoadFile(path string) error {
	var loaded map[string]map[string]string
	if _, err := toml.DecodeFile(path, &loaded); err != nil {
		return fmt.Errorf("loading snippet file %s: %w", path, err)
	}
	for lang, triggers := range loaded {
		for trigger, body := range triggers {
			r.Add(lang, trigger, body)
		}
	}
	return nil
}

var builtinTemplates = map[string]map[string]string{
	"python": {
		"for":  "for ${1:item} in ${2:items}:\n    ${3:pass}",
		"if":   "if ${1:condition}:\n    ${2:pass}",
		"def":  "def ${1:name}(${2}):\n    ${3:pass}",
		"main": "if __name__ == \"__main__\":\n    ${1:main()}",
	},
	"go": {
		"for":  "for ${1:i} := 0; $1 < ${2:n}; $1++ {\n\t$0\n}",
		"if":   "if ${1:condition} {\n\t$0\n}",
		"func": "func ${1:name}(${2}) ${3:error} {\n\t$0\n}",
		"iferr": "if err != nil {\n\treturn ${1:err}\n}",
	},
}
