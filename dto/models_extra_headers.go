package dto

import (
	"encoding/json"
	"strings"
)

// ExtraHeaders is a comma separated key=value string defined for use with
// env/flag parsing, applied to every outgoing request.
type ExtraHeaders map[string]string

func (e ExtraHeaders) String() string {
	data, _ := json.MarshalIndent(e, "", "  ")
	return string(data)
}

// Set parses a comma separated key=value string. Malformed pairs are skipped.
func (e ExtraHeaders) Set(s string) error {
	for _, header := range strings.Split(s, ",") {
		key, value, ok := strings.Cut(header, "=")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		e[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return nil
}

func (e ExtraHeaders) Type() string {
	return "ExtraHeaders"
}
