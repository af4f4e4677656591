package document

import "testing"

func TestContentHashHex_KnownValues(t *testing.T) {
	if got := ContentHashHex([]byte("hello world")); got != "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9" {
		t.Errorf("unexpected hash %q", got)
	}
	if got := ContentHashHex(nil); got != "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855" {
		t.Errorf("unexpected empty hash %q", got)
	}
}

func TestDocument_ContentHashTracksText(t *testing.T) {
	a := &Document{Title: "a", Text: "same"}
	b := &Document{Title: "b", Text: "same"}
	c := &Document{Title: "a", Text: "different"}
	if a.ContentHash() != b.ContentHash() {
		t.Error("expected title not to affect the hash")
	}
	if a.ContentHash() == c.ContentHash() {
		t.Error("expected different text to hash differently")
	}
}

func TestDocument_Preview(t *testing.T) {
	d := &Document{Text: "abcdef"}
	if d.Preview(3) != "abc" {
		t.Errorf("unexpected preview %q", d.Preview(3))
	}
	if d.Preview(10) != "abcdef" {
		t.Errorf("unexpected preview %q", d.Preview(10))
	}
}
