package normalize

import (
	"strings"
	"testing"

	"github.com/gaurav-prasanna/bookpipe/core"
)

func TestNormalizeDefaults(t *testing.T) {
	html := `<h1>Title</h1><p>It was <em>bright</em> and <strong>cold</strong>.</p>
<ul><li>one</li><li>two</li></ul><pre><code>x := 1</code></pre><hr/>`

	got, err := New(core.NormalizeOptions{}).Normalize(html)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, want := range []string{
		"# Title",
		"It was *bright* and **cold**.",
		"- one",
		"- two",
		"```\nx := 1\n```",
		"* * *",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestNormalizeOptions(t *testing.T) {
	opts := core.NormalizeOptions{
		HeadingStyle:    core.HeadingStyleSetext,
		CodeBlockFence:  "~~~",
		EmDelimiter:     "_",
		StrongDelimiter: "__",
		BulletMarker:    "+",
	}
	html := `<h1>Title</h1><p><em>a</em> <strong>b</strong></p><ul><li>item</li></ul><pre><code>code</code></pre>`

	got, err := New(opts).Normalize(html)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	for _, want := range []string{"Title\n=", "_a_", "__b__", "+ item", "~~~"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
}

func TestNormalizeTable(t *testing.T) {
	html := `<table><thead><tr><th>Name</th><th>Pages</th></tr></thead><tbody><tr><td>Intro</td><td>3</td></tr></tbody></table>`
	got, _ := New(core.NormalizeOptions{}).Normalize(html)
	if !strings.Contains(got, "| Name") || !strings.Contains(got, "| Intro") {
		t.Errorf("table not converted:\n%s", got)
	}
}

func TestNormalizeDropsNoise(t *testing.T) {
	html := `<html><head><title>t</title></head><body><p>Body</p><script>alert("x")</script><img src="a.png" alt="pic"/></body></html>`
	got, _ := New(core.NormalizeOptions{}).Normalize(html)
	if got != "Body" {
		t.Errorf("Normalize = %q, want %q", got, "Body")
	}
}

func TestNormalizeNeverFails(t *testing.T) {
	for _, in := range []string{"", "   ", "<p>unclosed <b>tags", "plain text", "<<<>>>", "</div></div>"} {
		if _, err := New(core.NormalizeOptions{}).Normalize(in); err != nil {
			t.Errorf("Normalize(%q) error: %v", in, err)
		}
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	n := New(core.NormalizeOptions{})
	html := `<h2>Sec</h2><p>Line <a href="#x">link</a></p><blockquote><p>quoted</p></blockquote>`
	a, _ := n.Normalize(html)
	b, _ := n.Normalize(html)
	if a != b {
		t.Errorf("outputs differ:\n%s\n---\n%s", a, b)
	}
	if !strings.Contains(a, "[link](#x)") || !strings.Contains(a, "> quoted") {
		t.Errorf("unexpected output:\n%s", a)
	}
}

func TestOptionsDefaults(t *testing.T) {
	got := New(core.NormalizeOptions{EmDelimiter: "_"}).Options()
	want := core.DefaultNormalizeOptions()
	want.EmDelimiter = "_"
	if got != want {
		t.Errorf("Options = %+v, want %+v", got, want)
	}
}
