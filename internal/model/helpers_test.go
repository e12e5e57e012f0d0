package model

import (
	"testing"

	"github.com/dlclark/regexp2"
)

func mustCompileForTest(t *testing.T, pattern string) *regexp2.Regexp {
	t.Helper()
	re, err := regexp2.Compile(pattern, regexp2.ECMAScript|regexp2.IgnoreCase)
	if err != nil {
		t.Fatalf("compile %q: %v", pattern, err)
	}
	return re
}
