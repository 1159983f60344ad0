// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"strings"
)

// MaxHeaderLength is the soft line length limit for folded header lines
// as specified in RFC 5322, not including the CRLF terminator.
const MaxHeaderLength = 78

// MaxLineLength is the hard line length limit from RFC 5322/5321, not
// including the CRLF terminator. A header line that cannot be folded
// below this limit makes the whole encode fail.
const MaxLineLength = 998

// foldHeader renders a header field into a sequence of folded lines. The
// first line carries the field name, continuation lines start with the
// whitespace the fold happened at, so unfolding restores the exact field
// body. Folds only happen at whitespace outside quoted strings; encoded
// words contain no whitespace and can therefore never be split. If even
// the first unit does not fit next to the field name, the name goes on a
// line of its own and the body starts on a continuation line, with the
// separating space serving as the folding whitespace.
func foldHeader(name Header, body string) ([]string, error) {
	units := splitFoldUnits(body)
	lines := make([]string, 0, 1)
	cur := string(name) + ":"
	for i, unit := range units {
		sep := ""
		if i == 0 {
			sep = " "
		}
		if len(cur)+len(sep)+len(unit) > MaxHeaderLength {
			lines = append(lines, cur)
			if i == 0 {
				cur = " " + unit
				continue
			}
			cur = unit
			continue
		}
		cur += sep + unit
	}
	lines = append(lines, cur)

	for _, line := range lines {
		if len(line) > MaxLineLength {
			return nil, encodeErr(ErrHardLineLimit, string(name))
		}
	}
	return lines, nil
}

// splitFoldUnits splits a field body into units that must stay on one
// line. Every unit after the first begins with the whitespace run that
// precedes it, which becomes the leading whitespace of a continuation
// line if a fold is placed there. Whitespace inside quoted strings is
// never a fold point.
func splitFoldUnits(body string) []string {
	var units []string
	var cur strings.Builder
	inQuote := false
	escaped := false
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inQuote:
			escaped = true
		case c == '"':
			inQuote = !inQuote
		case (c == ' ' || c == '\t') && !inQuote:
			if i > 0 && cur.Len() > 0 && !isFoldWS(body[i-1]) {
				units = append(units, cur.String())
				cur.Reset()
			}
		}
		cur.WriteByte(c)
	}
	if cur.Len() > 0 {
		units = append(units, cur.String())
	}
	return units
}

// isFoldWS reports whether b is folding whitespace.
func isFoldWS(b byte) bool {
	return b == ' ' || b == '\t'
}
