package html

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func TestEncodeDataURL(t *testing.T) {
	tests := []struct {
		data     []byte
		mime     string
		expected string
	}{
		{[]byte("postMessage(1)"), "text/javascript", "data:text/javascript;base64,cG9zdE1lc3NhZ2UoMSk="},
		{[]byte{0x00, 0x61, 0x73, 0x6d}, "application/wasm", "data:application/wasm;base64,AGFzbQ=="},
		{nil, "application/wasm", "data:application/wasm;base64,"},
	}

	for _, tt := range tests {
		if got := EncodeDataURL(tt.data, tt.mime); got != tt.expected {
			t.Errorf("EncodeDataURL(%q) = %q, want %q", tt.data, got, tt.expected)
		}
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	data := make([]byte, 100_003)
	for i := range data {
		data[i] = byte(i * 7)
	}

	mime, decoded, err := DecodeDataURL(EncodeDataURL(data, "application/wasm"))
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if mime != "application/wasm" {
		t.Errorf("mime: got %q", mime)
	}
	if !bytes.Equal(decoded, data) {
		t.Error("decoded bytes differ from source")
	}

	for _, bad := range []string{"http://x", "data:text/plain,hello", "data:text/plain;base64,!!"} {
		if _, _, err := DecodeDataURL(bad); err == nil {
			t.Errorf("DecodeDataURL(%q): expected error", bad)
		}
	}
}

func TestComposeInlineScript(t *testing.T) {
	eh := "data:text/javascript;base64,eA=="
	script, err := ComposeInlineScript([]Global{
		{Name: "__A__", Value: "export const a = 1;"},
		{Name: "__B__", Value: Descriptor{
			{Name: "mvp", Slots: Slots{MainModule: "m1", MainWorker: "w1"}},
			{Name: "eh", Slots: Slots{MainModule: "m2", MainWorker: "w2", PthreadWorker: &eh}},
		}},
		{Name: "__C__", Value: "c"},
	})
	if err != nil {
		t.Fatalf("ComposeInlineScript: %v", err)
	}

	expected := `<script>window.__A__ = "export const a = 1;";
window.__B__ = {"mvp":{"mainModule":"m1","mainWorker":"w1","pthreadWorker":null},"eh":{"mainModule":"m2","mainWorker":"w2","pthreadWorker":"data:text/javascript;base64,eA=="}};
window.__C__ = "c";</script>`
	if script != expected {
		t.Errorf("got:\n%s\nwant:\n%s", script, expected)
	}
}

func TestComposeInlineScriptEscaping(t *testing.T) {
	hostile := "const s = \"</script><script>alert(1)</script>\";\n<!-- x --> &amp; \u2028"
	script, err := ComposeInlineScript([]Global{{Name: "M", Value: hostile}})
	if err != nil {
		t.Fatalf("ComposeInlineScript: %v", err)
	}

	body := strings.TrimSuffix(strings.TrimPrefix(script, "<script>"), "</script>")
	for _, forbidden := range []string{"</script", "<!--", "<script", "\u2028", "\n"} {
		if strings.Contains(strings.ToLower(body), forbidden) {
			t.Errorf("script body contains %q", forbidden)
		}
	}

	// The payload still decodes to the original text
	assignments := ParseAssignments(body)
	if len(assignments) != 1 {
		t.Fatalf("assignments: got %d, want 1", len(assignments))
	}
	var decoded string
	if err := json.Unmarshal(assignments[0].Value, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != hostile {
		t.Errorf("decoded %q, want %q", decoded, hostile)
	}
}

func TestComposeInlineScriptInvalidName(t *testing.T) {
	for _, name := range []string{"", "a.b", "1abc", "x;alert(1)"} {
		if _, err := ComposeInlineScript([]Global{{Name: name, Value: 1}}); err == nil {
			t.Errorf("name %q: expected error", name)
		}
	}
}

func TestPatchTemplate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		expected string
	}{
		{
			name:     "bare module tag",
			tmpl:     `<script type="module"></script>`,
			expected: "<script>X</script>\n<script type=\"module\"></script>",
		},
		{
			name:     "first of two",
			tmpl:     "<body><script type=\"module\" src=\"a.js\"></script><script type=\"module\"></script></body>",
			expected: "<body><script>X</script>\n<script type=\"module\" src=\"a.js\"></script><script type=\"module\"></script></body>",
		},
		{
			name:     "classic script before module",
			tmpl:     "<script>var s = '<script type=\"module\">';</script>\n<SCRIPT TYPE='Module'>go()</SCRIPT>",
			expected: "<script>var s = '<script type=\"module\">';</script>\n<script>X</script>\n<SCRIPT TYPE='Module'>go()</SCRIPT>",
		},
		{
			name:     "commented out tag ignored",
			tmpl:     "<!-- <script type=\"module\"></script> -->\n<p>hi</p>\n<script type=\"module\">run()</script>",
			expected: "<!-- <script type=\"module\"></script> -->\n<p>hi</p>\n<script>X</script>\n<script type=\"module\">run()</script>",
		},
		{
			name:     "duplicate type attribute keeps the first",
			tmpl:     "<script type=\"text/javascript\" type=\"module\">classic()</script><script type=\"module\">m()</script>",
			expected: "<script type=\"text/javascript\" type=\"module\">classic()</script><script>X</script>\n<script type=\"module\">m()</script>",
		},
		{
			name:     "module type first then duplicate",
			tmpl:     "<p></p><script type=\"module\" type=\"text/javascript\">m()</script>",
			expected: "<p></p><script>X</script>\n<script type=\"module\" type=\"text/javascript\">m()</script>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PatchTemplate(tt.tmpl, "<script>X</script>")
			if err != nil {
				t.Fatalf("PatchTemplate: %v", err)
			}
			if got != tt.expected {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.expected)
			}
		})
	}
}

func TestPatchTemplatePreservesRest(t *testing.T) {
	prefix := "<!doctype html>\n<html><head><title>t &amp; u</title></head>\n<body>\n  "
	suffix := "<script type=\"module\">\n  import './app.js';\n</script>\n</body></html>\n"

	got, err := PatchTemplate(prefix+suffix, "<script>S</script>")
	if err != nil {
		t.Fatalf("PatchTemplate: %v", err)
	}
	if got != prefix+"<script>S</script>\n"+suffix {
		t.Errorf("unexpected output:\n%s", got)
	}
}

func TestPatchTemplateMarkerNotFound(t *testing.T) {
	templates := []string{
		"",
		"<html><body><script src=\"app.js\"></script></body></html>",
		"<!-- <script type=\"module\"></script> -->",
		"<script type=\"text/javascript\">module()</script>",
	}

	for _, tmpl := range templates {
		_, err := PatchTemplate(tmpl, "<script></script>")
		if !errors.Is(err, ErrTemplateMarkerNotFound) {
			t.Errorf("template %q: expected ErrTemplateMarkerNotFound, got %v", tmpl, err)
		}
	}
}

func TestInlineScripts(t *testing.T) {
	script, err := ComposeInlineScript([]Global{
		{Name: "A", Value: "a"},
		{Name: "B", Value: map[string]int{"n": 1}},
	})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := PatchTemplate("<head><script>var early = 1;</script></head><script type=\"module\">x()</script><script>late()</script>", script)
	if err != nil {
		t.Fatal(err)
	}

	bodies, err := InlineScripts(doc)
	if err != nil {
		t.Fatalf("InlineScripts: %v", err)
	}
	if len(bodies) != 2 {
		t.Fatalf("bodies: got %d, want 2", len(bodies))
	}

	var names []string
	for _, body := range bodies {
		for _, a := range ParseAssignments(body) {
			names = append(names, a.Name)
		}
	}
	if strings.Join(names, ",") != "A,B" {
		t.Errorf("assignments: got %v, want [A B]", names)
	}
}
