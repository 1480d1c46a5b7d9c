// Package names maps language codes to human-readable names for progress
// and summary output. Output files always use bare codes; the names exist
// so "jawiki" reads as "Japanese" in a terminal.
package names

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// builtin covers the editions the tool is commonly pointed at. Anything
// else falls back to the upper-cased code.
var builtin = map[string]string{
	"en": "English",
	"ja": "Japanese",
	"de": "German",
	"fr": "French",
	"es": "Spanish",
	"it": "Italian",
	"pt": "Portuguese",
	"ru": "Russian",
	"zh": "Chinese",
	"ko": "Korean",
	"ar": "Arabic",
	"la": "Latin",
	"nl": "Dutch",
	"pl": "Polish",
	"sv": "Swedish",
	"he": "Hebrew",
	"tr": "Turkish",
	"cs": "Czech",
	"el": "Greek",
	"fi": "Finnish",
}

// Registry resolves codes to display names.
type Registry struct {
	names map[string]string
}

// Builtin returns a registry with only the built-in names.
func Builtin() *Registry {
	return &Registry{names: builtin}
}

// Load returns the built-in registry extended (and overridden) by a YAML
// file of the form:
//
//	eo: Esperanto
//	la: Church Latin
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	extra := make(map[string]string)
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("names file %s: %w", path, err)
	}

	merged := make(map[string]string, len(builtin)+len(extra))
	for code, name := range builtin {
		merged[code] = name
	}
	for code, name := range extra {
		code = strings.ToLower(strings.TrimSpace(code))
		name = strings.TrimSpace(name)
		if code == "" || name == "" {
			continue
		}
		merged[code] = name
	}
	return &Registry{names: merged}, nil
}

// Name returns the display name for code, falling back to the upper-cased
// code itself.
func (r *Registry) Name(code string) string {
	if n, ok := r.names[code]; ok {
		return n
	}
	return strings.ToUpper(code)
}

// Describe renders "Japanese (ja)" style labels for a code list.
func (r *Registry) Describe(codes []string) string {
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s (%s)", r.Name(code), code))
	}
	return strings.Join(parts, ", ")
}

// Known lists the codes with built-in names, sorted, for help text.
func Known() []string {
	codes := make([]string, 0, len(builtin))
	for code := range builtin {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
