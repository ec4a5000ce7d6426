package matlab

import (
	"regexp"
	"strings"
)

// declRe matches the recognized declaration shapes on a joined line:
//
//	function name(p1, p2)
//	function out = name(p1)
//	function [out1, out2] = name(p1)
//
// The parameter list is optional: MATLAB also allows `function foo` and
// `function out = foo` for zero-argument functions.
var declRe = regexp.MustCompile(`^function\s+(?:(\[[^\]]*\]|[A-Za-z_]\w*)\s*=\s*)?([A-Za-z_]\w*)\s*(?:\(([^)]*)\))?\s*$`)

// Signature is the parsed form of one declaration line. Identifiers are
// preserved verbatim, in declaration order.
type Signature struct {
	Outputs     []string
	Name        string
	Params      []string
	HasVarargin bool
}

// ParseSignature parses a continuation-joined declaration line. ok is false
// when the line matches none of the recognized shapes; callers record the
// function as malformed and keep going.
//
// `~` placeholders are not identifiers and are skipped; `varargin` ends the
// positional list and is reported via HasVarargin, since everything behind
// it arrives as name-value pairs rather than positional parameters.
func ParseSignature(decl string) (Signature, bool) {
	var sig Signature
	m := declRe.FindStringSubmatch(strings.TrimSpace(decl))
	if m == nil {
		return sig, false
	}

	outs := m[1]
	outs = strings.TrimPrefix(outs, "[")
	outs = strings.TrimSuffix(outs, "]")
	for _, o := range strings.Split(outs, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			sig.Outputs = append(sig.Outputs, o)
		}
	}

	sig.Name = m[2]

	for _, p := range strings.Split(m[3], ",") {
		p = strings.TrimSpace(p)
		if p == "" || p == "~" {
			continue
		}
		if p == "varargin" {
			sig.HasVarargin = true
			break
		}
		sig.Params = append(sig.Params, p)
	}

	return sig, true
}
