package buildconfig

import (
	"strings"
	"testing"
)

func TestVersionInfo(t *testing.T) {
	info := VersionInfo()
	if info["version"] != Version() {
		t.Errorf("version = %q, want %q", info["version"], Version())
	}
	if info["commit"] != Commit() {
		t.Errorf("commit = %q, want %q", info["commit"], Commit())
	}
	if info["name"] != Name {
		t.Errorf("name = %q, want %q", info["name"], Name)
	}
}

func TestString(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, Name+" "+Version()) {
		t.Errorf("String() = %q", s)
	}
}
