package html

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Global is one window property assigned by the inline script.
// Value must be JSON-serializable.
type Global struct {
	Name  string
	Value any
}

// Slots holds the encoded assets of one bundle variant.
// A nil PthreadWorker is serialized as null.
type Slots struct {
	MainModule    string  `json:"mainModule"`
	MainWorker    string  `json:"mainWorker"`
	PthreadWorker *string `json:"pthreadWorker"`
}

// Variant is a named entry of a Descriptor.
type Variant struct {
	Name  string
	Slots Slots
}

// Descriptor maps variant names to their slots. It serializes as a JSON
// object whose keys keep the slice order.
type Descriptor []Variant

// MarshalJSON writes the variants as an object in declaration order.
func (d Descriptor) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, v := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(v.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.Slots)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// assignmentLine matches one statement written by ComposeInlineScript.
var assignmentLine = regexp.MustCompile(`^window\.([A-Za-z_$][A-Za-z0-9_$]*) = (.*);$`)

// ComposeInlineScript renders one `window.<name> = <json>;` statement per
// global, in order, inside a single <script> element.
//
// encoding/json escapes '<', '>', '&', U+2028 and U+2029 in every string, so
// no value can terminate the script element early or open an HTML comment.
func ComposeInlineScript(globals []Global) (string, error) {
	lines := make([]string, 0, len(globals))
	for _, g := range globals {
		if !identifier.MatchString(g.Name) {
			return "", fmt.Errorf("invalid global name %q", g.Name)
		}
		data, err := json.Marshal(g.Value)
		if err != nil {
			return "", fmt.Errorf("encoding %s: %w", g.Name, err)
		}
		lines = append(lines, "window."+g.Name+" = "+string(data)+";")
	}
	return "<script>" + strings.Join(lines, "\n") + "</script>", nil
}

// Assignment is a global recovered from an inline script.
type Assignment struct {
	Name  string
	Value json.RawMessage
}

// ParseAssignments reverses ComposeInlineScript for the body of a script
// element. Lines that are not assignments are ignored.
func ParseAssignments(body string) []Assignment {
	var out []Assignment
	for _, line := range strings.Split(body, "\n") {
		m := assignmentLine.FindStringSubmatch(line)
		if m == nil || !json.Valid([]byte(m[2])) {
			continue
		}
		out = append(out, Assignment{Name: m[1], Value: json.RawMessage(m[2])})
	}
	return out
}
