package hashid

import (
	"strings"
	"testing"
)

func TestFromContentStable(t *testing.T) {
	a := FromContent([]byte("hello"))
	b := FromContent([]byte("hello"))
	if a != b {
		t.Errorf("same content hashed differently: %s vs %s", a, b)
	}
	if !strings.HasPrefix(string(a), "sha256:") {
		t.Errorf("hash missing prefix: %s", a)
	}
	if a == FromContent([]byte("hello!")) {
		t.Error("different content must not collide trivially")
	}
}

func TestFromContentBinary(t *testing.T) {
	withNul := []byte{0x00, 0x01, 0x02}
	if FromContent(withNul) == FromContent([]byte{0x00, 0x01, 0x03}) {
		t.Error("binary content must hash byte-exactly")
	}
}

func TestParse(t *testing.T) {
	h := FromContent([]byte("x"))
	parsed, ok := Parse(string(h))
	if !ok || parsed != h {
		t.Errorf("Parse(%s) = %s, %v", h, parsed, ok)
	}

	for _, bad := range []string{"", "sha256:", "sha256:zz", "md5:abc", string(h)[:20]} {
		if _, ok := Parse(bad); ok {
			t.Errorf("Parse(%q) should fail", bad)
		}
	}
}

func TestMatches(t *testing.T) {
	content := []byte("body\n")
	h := FromContent(content)
	if !h.Matches(content) {
		t.Error("hash should match its own content")
	}
	if h.Matches([]byte("body")) {
		t.Error("trailing newline is part of the identity")
	}
}
