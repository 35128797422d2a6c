package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"sigs.k8s.io/yaml"

	"github.com/custodia-labs/polydb-cli/internal/core/domain"
)

type format string

const (
	formatText format = "text"
	formatJSON format = "json"
	formatYAML format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(s)); f {
	case formatText, formatJSON, formatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown output format %q (text, json, yaml)", domain.ErrInvalidInput, s)
	}
}

// currentFormat returns the validated --output format.
func currentFormat() format {
	f, err := parseFormat(outputFormat)
	if err != nil {
		return formatText
	}
	return f
}

// render prints v as JSON or YAML, or calls text for the text format.
func render(cmd *cobra.Command, v any, text func()) error {
	switch currentFormat() {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		cmd.Println(string(data))
	case formatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		cmd.Print(string(data))
	default:
		if text != nil {
			text()
		}
	}
	return nil
}

// compactJSON renders v on a single line.
func compactJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding JSON: %w", err)
	}
	return string(data), nil
}

// parseJSONObject parses a JSON object flag value. Integral numbers become
// int64 so that they compare as integers on the server.
func parseJSONObject(flag, s string) (map[string]any, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: --%s must be a JSON object: %v", domain.ErrInvalidInput, flag, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: --%s has trailing data", domain.ErrInvalidInput, flag)
	}
	return numbers(m).(map[string]any), nil
}

func numbers(v any) any {
	switch x := v.(type) {
	case map[string]any:
		for k, e := range x {
			x[k] = numbers(e)
		}
		return x
	case []any:
		for i, e := range x {
			x[i] = numbers(e)
		}
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	default:
		return v
	}
}

// parseSort accepts either "FIELD,-FIELD" or an ordered JSON object
// {"FIELD": 1, "FIELD": -1}.
func parseSort(s string) ([]domain.SortField, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return domain.ParseSort(s)
	}

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: --sort: %v", domain.ErrInvalidInput, err)
	}
	var fields []domain.SortField
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: --sort: %v", domain.ErrInvalidInput, err)
		}
		key, _ := tok.(string)
		var dir json.Number
		if err := dec.Decode(&dir); err != nil {
			return nil, fmt.Errorf("%w: --sort direction of %s: %v", domain.ErrInvalidInput, key, err)
		}
		n, err := dir.Int64()
		if err != nil || (n != 1 && n != -1) {
			return nil, fmt.Errorf("%w: --sort direction of %s must be 1 or -1", domain.ErrInvalidInput, key)
		}
		fields = append(fields, domain.SortField{Field: key, Descending: n < 0})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%w: --sort: %v", domain.ErrInvalidInput, err)
	}
	return fields, nil
}

// indentJSON pretty-prints raw JSON for text output.
func indentJSON(raw []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if isTerminal(os.Stdin) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
