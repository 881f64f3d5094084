package safepath

import "testing"

func TestNewValid(t *testing.T) {
	cases := []struct{ in, want string }{
		{"a/b/c.md", "a/b/c.md"},
		{`a\b\c.md`, "a/b/c.md"},
		{"./a/b.md", "a/b.md"},
		{"a//b.md", "a/b.md"},
		{".cursor/rules/x/RULE.md", ".cursor/rules/x/RULE.md"},
	}
	for _, c := range cases {
		p, err := New(c.in)
		if err != nil {
			t.Errorf("New(%q): %v", c.in, err)
			continue
		}
		if p.String() != c.want {
			t.Errorf("New(%q) = %q, want %q", c.in, p, c.want)
		}
	}
}

func TestNewRejectsUnsafe(t *testing.T) {
	for _, in := range []string{"", "/abs/path.md", "../escape.md", "a/../../b.md", `..\win.md`} {
		if p, err := New(in); err == nil {
			t.Errorf("New(%q) = %q, want error", in, p)
		}
	}
}

func TestJoin(t *testing.T) {
	p, err := New("a/b")
	if err != nil {
		t.Fatal(err)
	}
	joined, err := p.Join("c.md")
	if err != nil || joined.String() != "a/b/c.md" {
		t.Errorf("Join = %q, %v", joined, err)
	}
	if _, err := p.Join("../../escape"); err == nil {
		t.Error("Join must re-validate")
	}
}
