package config

import (
	"bytes"
	"os"
	"strings"
	"text/template"
)

// ExpandEnv expands {{.VAR_NAME}} references in YAML content with values
// from the environment. The template syntax leaves literal $ untouched, so
// passwords like p@ss$word and ${VAR} survive as written.
//
// Missing variables expand to the empty string. Content that fails to parse
// as a template is returned unchanged and left for the YAML parser to report.
func ExpandEnv(data []byte) []byte {
	tmpl, err := template.New("site").Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return data
	}

	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok && key != "" {
			env[key] = value
		}
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, env); err != nil {
		return data
	}
	return buf.Bytes()
}
