package cmd

import (
	"reflect"
	"testing"
)

func TestSplitTargets(t *testing.T) {
	if got := splitTargets(""); got != nil {
		t.Errorf("empty flag must mean no override, got %v", got)
	}
	got := splitTargets("cursor, claude-code ,")
	want := []string{"cursor", "claude-code"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("splitTargets = %v, want %v", got, want)
	}
}

func TestSplitRemote(t *testing.T) {
	host, path := splitRemote("devbox:~/work/app")
	if host != "devbox" || path != "~/work/app" {
		t.Errorf("got %q %q", host, path)
	}
	host, path = splitRemote("devbox")
	if host != "devbox" || path != "~" {
		t.Errorf("bare host should default to remote home, got %q %q", host, path)
	}
}
