package driver

// BindMarkers returns the number of bind markers in a CQL statement and the
// names of named markers, in order. Positional markers get an empty name.
// Markers inside string literals, quoted identifiers and comments are
// ignored.
func BindMarkers(stmt string) (int, []string) {
	var (
		names []string
		count int
		depth int
	)
	for i := 0; i < len(stmt); i++ {
		switch c := stmt[i]; {
		case c == '\'' || c == '"':
			i = skipQuoted(stmt, i, c)
		case c == '-' && i+1 < len(stmt) && stmt[i+1] == '-',
			c == '/' && i+1 < len(stmt) && stmt[i+1] == '/':
			for i < len(stmt) && stmt[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(stmt) && stmt[i+1] == '*':
			i += 2
			for i+1 < len(stmt) && !(stmt[i] == '*' && stmt[i+1] == '/') {
				i++
			}
			i++
		case c == '$' && i+1 < len(stmt) && stmt[i+1] == '$':
			i += 2
			for i+1 < len(stmt) && !(stmt[i] == '$' && stmt[i+1] == '$') {
				i++
			}
			i++
		case c == '{':
			depth++
		case c == '}' && depth > 0:
			depth--
		case c == '?':
			count++
			names = append(names, "")
		case c == ':' && i+1 < len(stmt) && isIdentStart(stmt[i+1]) && (i == 0 || (!isIdentPart(stmt[i-1]) && stmt[i-1] != ':')) && !(depth > 0 && endsTerm(stmt[:i])):
			j := i + 1
			for j < len(stmt) && isIdentPart(stmt[j]) {
				j++
			}
			count++
			names = append(names, stmt[i+1:j])
			i = j - 1
		}
	}
	return count, names
}

// endsTerm reports whether s ends with a literal, identifier or closed
// group, making a following ':' a map or UDT separator.
func endsTerm(s string) bool {
	for i := len(s) - 1; i >= 0; i-- {
		switch c := s[i]; c {
		case ' ', '\t', '\n', '\r':
			continue
		case '\'', '"', ')', ']', '}', '?':
			return true
		default:
			return isIdentPart(c)
		}
	}
	return false
}

func skipQuoted(s string, i int, q byte) int {
	for i++; i < len(s); i++ {
		if s[i] != q {
			continue
		}
		// A doubled quote is an escaped quote.
		if i+1 < len(s) && s[i+1] == q {
			i++
			continue
		}
		return i
	}
	return i
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
