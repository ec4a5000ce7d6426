package matlab

import (
	"strings"
)

// Span marks one function definition found by the boundary scanner.
// Lines are 1-indexed and inclusive; Decl is the continuation-joined
// declaration text with comments removed. DeclLine is the last physical
// line of the declaration, past any continuations.
type Span struct {
	Decl      string
	StartLine int
	DeclLine  int
	EndLine   int
	Nested    bool
	InMethods bool
}

// ClassDecl describes a classdef declaration found in the file.
type ClassDecl struct {
	Name      string
	Parent    string
	StartLine int
	DeclLine  int
	EndLine   int
}

// ScanResult is the output of a boundary scan over one file.
type ScanResult struct {
	Spans []Span
	Class *ClassDecl
}

// Scanner locates function definition spans in MATLAB source text without a
// full grammar. It is a forward line scanner with explicit nesting depth and
// character-level quote/comment state.
type Scanner struct{}

func NewScanner() *Scanner {
	return &Scanner{}
}

// Scan finds all function spans in declaration order. It first assumes the
// file terminates every function with a matching end; if the ends do not
// balance, it rescans in legacy script style where a function runs until the
// next declaration or end-of-file. MATLAB forbids mixing the two styles
// within one file, so the two passes cover both.
func (s *Scanner) Scan(content string) ScanResult {
	lines := cleanLines(content)

	raw := strings.Split(content, "\n")
	lastLine := len(raw)
	for lastLine > 1 && strings.TrimSpace(raw[lastLine-1]) == "" {
		lastLine--
	}

	res, balanced := s.scanPass(lines, true, lastLine)
	if !balanced {
		res, _ = s.scanPass(lines, false, lastLine)
	}
	return res
}

// blockKind tracks what an eventual end will close.
type blockKind int

const (
	blockControl blockKind = iota
	blockFunction
	blockClassdef
	blockMethods
)

func (s *Scanner) scanPass(lines []logicalLine, terminated bool, lastLine int) (ScanResult, bool) {
	var res ScanResult
	var stack []blockKind
	var openFns []int // indexes into res.Spans

	inClassdef := func() bool {
		for _, k := range stack {
			if k == blockClassdef {
				return true
			}
		}
		return false
	}
	inMethods := func() bool {
		for _, k := range stack {
			if k == blockMethods {
				return true
			}
		}
		return false
	}

	for _, ll := range lines {
		code := ll.code
		i := 0
		parenDepth := 0
		stmtStart := true

	lineLoop:
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
				atStmt := stmtStart && parenDepth == 0
				stmtStart = false

				if !atStmt {
					i = j
					continue
				}

				switch word {
				case "function":
					sp := Span{
						Decl:      strings.TrimSpace(code[i:]),
						StartLine: ll.line,
						DeclLine:  ll.last,
						EndLine:   ll.last,
					}
					if !terminated && len(openFns) > 0 {
						// Script style: the previous function ends just
						// before this declaration.
						top := openFns[len(openFns)-1]
						res.Spans[top].EndLine = ll.line - 1
						openFns = openFns[:len(openFns)-1]
						stack = popKind(stack, blockFunction)
					}
					sp.Nested = len(openFns) > 0
					sp.InMethods = inMethods()
					res.Spans = append(res.Spans, sp)
					openFns = append(openFns, len(res.Spans)-1)
					stack = append(stack, blockFunction)
					break lineLoop // declaration consumes the line

				case "classdef":
					if res.Class == nil {
						name, parent := parseClassdef(code[i:])
						if name != "" {
							res.Class = &ClassDecl{
								Name:      name,
								Parent:    parent,
								StartLine: ll.line,
								DeclLine:  ll.last,
								EndLine:   ll.last,
							}
						}
					}
					stack = append(stack, blockClassdef)
					break lineLoop

				case "if", "for", "while", "switch", "try", "parfor":
					stack = append(stack, blockControl)

				case "methods":
					if inClassdef() && !followedByAssign(code[j:]) {
						stack = append(stack, blockMethods)
					}

				case "properties", "events", "enumeration":
					if inClassdef() && !followedByAssign(code[j:]) {
						stack = append(stack, blockControl)
					}

				case "arguments":
					if len(stack) > 0 && stack[len(stack)-1] == blockFunction && !followedByAssign(code[j:]) {
						stack = append(stack, blockControl)
					}

				case "end":
					if len(stack) > 0 {
						kind := stack[len(stack)-1]
						stack = stack[:len(stack)-1]
						switch kind {
						case blockFunction:
							if len(openFns) > 0 {
								top := openFns[len(openFns)-1]
								res.Spans[top].EndLine = ll.last
								openFns = openFns[:len(openFns)-1]
							}
						case blockClassdef:
							if res.Class != nil && res.Class.EndLine < ll.last {
								res.Class.EndLine = ll.last
							}
						}
					}
				}
				i = j
			default:
				stmtStart = false
				i++
			}
		}
	}

	balanced := len(openFns) == 0
	for _, idx := range openFns {
		res.Spans[idx].EndLine = lastLine
	}
	return res, balanced
}

// popKind removes the innermost block of the given kind from the stack.
func popKind(stack []blockKind, kind blockKind) []blockKind {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == kind {
			return append(stack[:i], stack[i+1:]...)
		}
	}
	return stack
}

// followedByAssign reports whether rest begins with a plain assignment,
// which rules out contextual block keywords used as variable names.
func followedByAssign(rest string) bool {
	rest = strings.TrimLeft(rest, " \t")
	return strings.HasPrefix(rest, "=") && !strings.HasPrefix(rest, "==")
}

// parseClassdef extracts the class name and optional parent from a cleaned
// classdef declaration line.
func parseClassdef(decl string) (name, parent string) {
	rest := strings.TrimSpace(strings.TrimPrefix(decl, "classdef"))
	// Optional attribute list: classdef (Sealed) Name < Parent
	if strings.HasPrefix(rest, "(") {
		if idx := strings.Index(rest, ")"); idx >= 0 {
			rest = strings.TrimSpace(rest[idx+1:])
		}
	}
	if idx := strings.Index(rest, "<"); idx >= 0 {
		parent = strings.TrimSpace(rest[idx+1:])
		rest = strings.TrimSpace(rest[:idx])
	}
	fields := strings.Fields(rest)
	if len(fields) > 0 && isIdentifier(fields[0]) {
		name = fields[0]
	}
	return name, parent
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isIdentifier(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}
