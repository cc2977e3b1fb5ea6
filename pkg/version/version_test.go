package version

import (
	"strings"
	"testing"
)

func TestInfoString(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	defer func() { Version = orig }()

	s := Get().String()
	if !strings.HasPrefix(s, "gdxfer 1.2.3 (") {
		t.Errorf("unexpected version string %q", s)
	}
	if !strings.Contains(s, Get().Platform) {
		t.Errorf("version string %q lacks platform", s)
	}
}
