package matlab

import (
	"fmt"
	"regexp"
	"strings"

	"mlcatalog/internal/domain"
)

// classification is one strategy's verdict on one parameter.
type classification struct {
	Optional bool
	Default  string
}

// inputParser registrations, both call styles. Defaults are captured as raw
// unevaluated text up to the next top-level comma or closing paren, the way
// they appear in the source.
var (
	methodRequiredRe = regexp.MustCompile(`(?i)\b[A-Za-z_]\w*\.addRequired\s*\(\s*['"](\w+)['"]`)
	funcRequiredRe   = regexp.MustCompile(`(?i)\baddRequired\s*\(\s*[A-Za-z_]\w*\s*,\s*['"](\w+)['"]`)
	methodOptionalRe = regexp.MustCompile(`(?i)\b[A-Za-z_]\w*\.addOptional\s*\(\s*['"](\w+)['"]\s*,\s*([^,)]+)`)
	funcOptionalRe   = regexp.MustCompile(`(?i)\baddOptional\s*\(\s*[A-Za-z_]\w*\s*,\s*['"](\w+)['"]\s*,\s*([^,)]+)`)
	methodParamRe    = regexp.MustCompile(`(?i)\b[A-Za-z_]\w*\.add(?:Parameter|ParamValue)\s*\(\s*['"](\w+)['"]\s*,\s*([^,)]+)`)
	funcParamRe      = regexp.MustCompile(`(?i)\badd(?:Parameter|ParamValue)\s*\(\s*[A-Za-z_]\w*\s*,\s*['"](\w+)['"]\s*,\s*([^,)]+)`)

	inputParserRe = regexp.MustCompile(`(?i)\b[A-Za-z_]\w*\s*=\s*inputParser\b`)

	narginGuardRe = regexp.MustCompile(`(?i)^\s*(?:els)?if\s*\(?\s*nargin\s*(<=?)\s*(\d+)`)
	assignRe      = regexp.MustCompile(`(?:^|[,;])\s*([A-Za-z_]\w*)\s*=\s*([^;,]+)`)
)

// detectInputParser implements the inputParser strategy: scan the body for
// addRequired/addOptional registrations against a parser object, in either
// the method-call or the function-call style. Parameters never registered
// stay unresolved under this strategy. Name-value registrations
// (addParameter/addParamValue) are returned separately: they are not
// positional parameters and must never be merged into the declared list.
func detectInputParser(body string) (map[string]classification, []domain.ParameterRecord) {
	if !inputParserRe.MatchString(body) {
		return nil, nil
	}

	out := make(map[string]classification)
	for _, re := range []*regexp.Regexp{methodRequiredRe, funcRequiredRe} {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			name := m[1]
			if _, seen := out[name]; !seen {
				out[name] = classification{Optional: false}
			}
		}
	}
	for _, re := range []*regexp.Regexp{methodOptionalRe, funcOptionalRe} {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			name := m[1]
			if _, seen := out[name]; !seen {
				out[name] = classification{Optional: true, Default: strings.TrimSpace(m[2])}
			}
		}
	}

	var nameValues []domain.ParameterRecord
	seenNV := make(map[string]bool)
	for _, re := range []*regexp.Regexp{methodParamRe, funcParamRe} {
		for _, m := range re.FindAllStringSubmatch(body, -1) {
			name := m[1]
			if seenNV[name] {
				continue
			}
			seenNV[name] = true
			nameValues = append(nameValues, domain.ParameterRecord{
				Name:            name,
				Required:        false,
				DefaultValue:    strings.TrimSpace(m[2]),
				DetectionMethod: domain.DetectInputParser,
			})
		}
	}

	return out, nameValues
}

// detectNargin implements the nargin strategy: find conditional blocks
// guarded by a comparison against nargin and treat any parameter assigned
// inside such a block as optional, with the assignment's raw right-hand
// side as its default. Parameters never assigned under a guard stay
// unresolved under this strategy.
func detectNargin(bodyLines []string, params []string) map[string]classification {
	declared := make(map[string]bool, len(params))
	for _, p := range params {
		declared[p] = true
	}

	// Depth counting needs strings blanked; default extraction needs them
	// intact. Keep both views line by line.
	blanked := make([]string, len(bodyLines))
	kept := make([]string, len(bodyLines))
	for i, l := range bodyLines {
		blanked[i], _ = stripLine(l, true)
		kept[i], _ = stripLine(l, false)
	}

	out := make(map[string]classification)
	for i := range blanked {
		if !narginGuardRe.MatchString(blanked[i]) {
			continue
		}
		end := guardedRegionEnd(blanked, i)
		for j := i; j <= end && j < len(kept); j++ {
			line := kept[j]
			if j == i {
				// Skip past the guard itself so `nargin < 2` is not read
				// as an assignment.
				if idx := strings.IndexAny(line, ",;"); idx >= 0 {
					line = line[idx:]
				} else {
					continue
				}
			}
			for _, m := range assignRe.FindAllStringSubmatch(line, -1) {
				name := m[1]
				rhs := strings.TrimSpace(m[2])
				if !declared[name] || rhs == "" || strings.HasPrefix(rhs, "=") {
					continue
				}
				if _, seen := out[name]; !seen {
					out[name] = classification{Optional: true, Default: rhs}
				}
			}
		}
	}
	return out
}

// guardedRegionEnd returns the index of the line whose end closes the guard
// block starting at start. Single-line guards (`if nargin < 2, x = 1; end`)
// close on their own line.
func guardedRegionEnd(blanked []string, start int) int {
	depth := 0
	for i := start; i < len(blanked); i++ {
		depth += blockDelta(blanked[i])
		if depth <= 0 {
			return i
		}
	}
	return len(blanked) - 1
}

// blockDelta counts block openers minus ends on one cleaned line, using the
// same statement-position rules as the boundary scanner.
func blockDelta(code string) int {
	delta := 0
	i := 0
	parenDepth := 0
	stmtStart := true
	for i < len(code) {
		c := code[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '(' || c == '[' || c == '{':
			parenDepth++
			stmtStart = false
			i++
		case c == ')' || c == ']' || c == '}':
			if parenDepth > 0 {
				parenDepth--
			}
			stmtStart = false
			i++
		case c == ';' || c == ',':
			if parenDepth == 0 {
				stmtStart = true
			}
			i++
		case isIdentStart(c):
			j := i
			for j < len(code) && isIdentChar(code[j]) {
				j++
			}
			word := code[i:j]
			if stmtStart && parenDepth == 0 {
				switch word {
				case "if", "for", "while", "switch", "try", "parfor":
					delta++
				case "end":
					delta--
				}
			}
			stmtStart = false
			i = j
		default:
			stmtStart = false
			i++
		}
	}
	return delta
}

// Reconcile merges the two strategies' partial classifications into final
// parameter records, in declaration order. Precedence is documented and
// fixed: input_parser beats nargin, and an unclassified parameter defaults
// to required because MATLAB binds positionally.
func Reconcile(params []string, byParser, byNargin map[string]classification, fnName, path string) ([]domain.ParameterRecord, []domain.Diagnostic) {
	var records []domain.ParameterRecord
	var diags []domain.Diagnostic

	for _, name := range params {
		a, inA := byParser[name]
		b, inB := byNargin[name]

		rec := domain.ParameterRecord{Name: name}
		switch {
		case inA && inB:
			rec.Required = !a.Optional
			rec.DefaultValue = a.Default
			rec.DetectionMethod = domain.DetectInputParser
			if a.Optional != b.Optional {
				diags = append(diags, domain.Diagnostic{
					Code:     domain.DiagStrategyConflict,
					Path:     path,
					Function: fnName,
					Param:    name,
					Message: fmt.Sprintf("inputParser says optional=%v, nargin says optional=%v; inputParser wins",
						a.Optional, b.Optional),
				})
			} else if a.Optional && a.Default != b.Default {
				diags = append(diags, domain.Diagnostic{
					Code:     domain.DiagStrategyConflict,
					Path:     path,
					Function: fnName,
					Param:    name,
					Message: fmt.Sprintf("default differs between strategies: inputParser=%q nargin=%q; keeping inputParser",
						a.Default, b.Default),
				})
			}
		case inA:
			rec.Required = !a.Optional
			rec.DefaultValue = a.Default
			rec.DetectionMethod = domain.DetectInputParser
		case inB:
			rec.Required = !b.Optional
			rec.DefaultValue = b.Default
			rec.DetectionMethod = domain.DetectNargin
		default:
			rec.Required = true
			rec.DetectionMethod = domain.DetectNone
			diags = append(diags, domain.Diagnostic{
				Code:     domain.DiagUnresolvedParameter,
				Path:     path,
				Function: fnName,
				Param:    name,
				Message:  "classified by neither strategy; defaulting to required",
			})
		}
		records = append(records, rec)
	}

	return records, diags
}
