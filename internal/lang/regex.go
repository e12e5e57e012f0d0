package lang

import "github.com/dlclark/regexp2"

// CompileWindowRegex compiles a window class/title pattern with
// ECMAScript semantics and default case-insensitivity (the original
// implementation's window matcher is case-insensitive unless the
// pattern itself narrows it). Ordinary regexp/RE2 cannot express the
// back-references some real-world .mayu configs use for class/title
// matching, hence the dlclark/regexp2 dependency instead of stdlib
// regexp.
func CompileWindowRegex(pattern string) (*regexp2.Regexp, error) {
	return regexp2.Compile(pattern, regexp2.ECMAScript|regexp2.IgnoreCase)
}
