package matlab

import "strings"

// logicalLine is one continuation-joined line of code with comments removed
// and string literal contents blanked out.
type logicalLine struct {
	code string
	line int // first physical line, 1-indexed
	last int // last physical line
}

// cleanLines splits content into logical lines suitable for keyword
// scanning: block comments dropped, trailing comments stripped, string
// interiors replaced by spaces, and `...` continuations joined.
func cleanLines(content string) []logicalLine {
	raw := strings.Split(content, "\n")
	var out []logicalLine
	inBlock := false
	blockDepth := 0
	pending := false
	var cur logicalLine

	for i, line := range raw {
		trimmed := strings.TrimSpace(line)
		if inBlock {
			// Block comment markers must stand alone on their line.
			if trimmed == "%{" {
				blockDepth++
			} else if trimmed == "%}" {
				blockDepth--
				if blockDepth == 0 {
					inBlock = false
				}
			}
			continue
		}
		if trimmed == "%{" {
			inBlock = true
			blockDepth = 1
			continue
		}

		code, cont := stripLine(line, true)
		if pending {
			cur.code += " " + strings.TrimSpace(code)
			cur.last = i + 1
		} else {
			cur = logicalLine{code: code, line: i + 1, last: i + 1}
		}
		if cont {
			pending = true
			continue
		}
		pending = false
		if strings.TrimSpace(cur.code) != "" {
			out = append(out, cur)
		}
	}
	if pending && strings.TrimSpace(cur.code) != "" {
		out = append(out, cur)
	}
	return out
}

// stripLine removes the comment portion of one physical line, tracking
// quote state character by character so a % inside a string literal is not
// treated as a comment. When blankStrings is set, string interiors are
// replaced with spaces so their contents never look like keywords. The
// second result reports a `...` line continuation.
func stripLine(line string, blankStrings bool) (string, bool) {
	var b strings.Builder
	b.Grow(len(line))
	inSingle := false
	inDouble := false
	var lastCode byte

	write := func(c byte) {
		b.WriteByte(c)
		if c != ' ' && c != '\t' {
			lastCode = c
		}
	}

	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case inSingle:
			if c == '\'' {
				if i+1 < len(line) && line[i+1] == '\'' {
					// Escaped quote inside the literal.
					if blankStrings {
						b.WriteString("  ")
					} else {
						b.WriteString("''")
					}
					i += 2
					continue
				}
				inSingle = false
				write('\'')
			} else if blankStrings {
				b.WriteByte(' ')
			} else {
				b.WriteByte(c)
			}
			i++
		case inDouble:
			if c == '"' {
				if i+1 < len(line) && line[i+1] == '"' {
					if blankStrings {
						b.WriteString("  ")
					} else {
						b.WriteString(`""`)
					}
					i += 2
					continue
				}
				inDouble = false
				write('"')
			} else if blankStrings {
				b.WriteByte(' ')
			} else {
				b.WriteByte(c)
			}
			i++
		case c == '%':
			return b.String(), false
		case c == '.' && strings.HasPrefix(line[i:], "..."):
			return b.String(), true
		case c == '\'':
			// A quote after an identifier, closing bracket, or another
			// quote is the transpose operator, not a string start.
			if isTransposeContext(lastCode) {
				write('\'')
			} else {
				inSingle = true
				write('\'')
			}
			i++
		case c == '"':
			inDouble = true
			write('"')
			i++
		default:
			write(c)
			i++
		}
	}
	return b.String(), false
}

func isTransposeContext(last byte) bool {
	return last == ')' || last == ']' || last == '}' || last == '\'' || last == '.' ||
		isIdentChar(last)
}
