package protocol

import (
	"strconv"
	"strings"
)

const (
	codeAuthFailure = "530"
	codeHelp        = "214"
)

// ReplyCode returns the leading three digit status of a reply line.
func ReplyCode(line string) (int, bool) {
	if len(line) < 3 {
		return 0, false
	}
	code, err := strconv.Atoi(line[:3])
	if err != nil || code < 100 || code > 599 {
		return 0, false
	}
	return code, true
}

// IsAuthFailure reports whether the reply rejects the credentials.
func IsAuthFailure(line string) bool {
	return strings.HasPrefix(line, codeAuthFailure)
}

func isPreliminary(line string) bool {
	code, ok := ReplyCode(line)
	return ok && code < 200
}

func isNegative(line string) bool {
	code, ok := ReplyCode(line)
	return ok && code >= 400
}

// continues reports whether line opens a multi-line reply ("NNN-").
func continues(line string) bool {
	_, ok := ReplyCode(line)
	return ok && len(line) > 3 && line[3] == '-'
}

// ends reports whether line closes a multi-line reply opened with code.
func ends(line, code string) bool {
	return strings.HasPrefix(line, code) && (len(line) == 3 || line[3] == ' ')
}

// QuotedPath extracts the text between the first pair of double quotes,
// as found in a 257 reply to PWD.
func QuotedPath(line string) (string, error) {
	start := strings.IndexByte(line, '"')
	if start < 0 {
		return "", &ParseError{What: "PWD", Line: line}
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end < 0 {
		return "", &ParseError{What: "PWD", Line: line}
	}
	return line[start+1 : start+1+end], nil
}
