package sanitize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscape(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"script", `<script>alert("x")</script>`, "&lt;script&gt;alert(&quot;x&quot;)&lt;&#x2F;script&gt;"},
		{"ampersand first", "a & b", "a &amp; b"},
		{"single quote", "it's", "it&#x27;s"},
		{"url", "https://x.io/a", "https:&#x2F;&#x2F;x.io&#x2F;a"},
		{"existing entity escaped again", "&lt;", "&amp;lt;"},
		{"unicode untouched", "héllo ✓", "héllo ✓"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.in))
		})
	}
}

func TestEscape_NotIdempotent(t *testing.T) {
	once := Escape("<")
	assert.Equal(t, "&lt;", once)
	assert.Equal(t, "&amp;lt;", Escape(once))
}

func TestEscape_OutputHasNoRawSpecials(t *testing.T) {
	out := Escape(`<a href='/x?a=1&b="2"'>`)
	assert.NotContains(t, out, "<")
	assert.NotContains(t, out, ">")
	assert.NotContains(t, out, `"`)
	assert.NotContains(t, out, "'")
	assert.NotContains(t, out, "/")
}

func TestSanitizer(t *testing.T) {
	plain := New(false)
	assert.Equal(t, "&lt;b&gt;hi&lt;&#x2F;b&gt;", plain.Sanitize("<b>hi</b>"))

	strip := New(true)
	assert.Equal(t, "hi", strip.Sanitize("<b>hi</b>"))
	assert.Equal(t, "a &amp; b", strip.Sanitize("a & b"))
	assert.Equal(t, "", strip.Sanitize("<script>alert(1)</script>"))
}
