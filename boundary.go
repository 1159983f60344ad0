// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"bytes"
	"fmt"
)

// boundaryLength is the default boundary length. With 66 characters a
// quoted boundary parameter still fits a 78 character header line on its
// own folded line.
const boundaryLength = 66

// boundaryHardMax is the upper bound for boundary tokens from RFC 2046.
const boundaryHardMax = 70

// maxBoundaryAttempts bounds the collision retry loop. Exhausting it is
// fatal for the encode attempt.
const maxBoundaryAttempts = 8

// boundaryChars are the characters allowed by the RFC 2046 boundary
// grammar, without the space character.
const boundaryChars = "'()+,-./0123456789:=?ABCDEFGHIJKLMNOPQRSTUVWXYZ_abcdefghijklmnopqrstuvwxyz"

// boundaryPrefix starts every generated boundary with a sequence that is
// valid in neither base64 nor quoted-printable output, which rules out
// collisions with the overwhelmingly common transfer encodings up front.
const boundaryPrefix = "=_^"

// randomBoundary generates one boundary candidate from the per-encode
// counter, the retry attempt and a random character sequence. Retries
// produce longer, differently salted candidates.
func randomBoundary(count, attempt int) (string, error) {
	prefix := fmt.Sprintf("%s%x.", boundaryPrefix, count)
	if attempt > 0 {
		prefix = fmt.Sprintf("%s%x.%x.", boundaryPrefix, count, attempt)
	}
	length := boundaryLength + attempt
	if length > boundaryHardMax {
		length = boundaryHardMax
	}
	rem := length - len(prefix)
	if rem < 16 {
		rem = 16
	}
	suffix, err := randomStringFromRange(rem, boundaryChars)
	if err != nil {
		return "", err
	}
	return prefix + suffix, nil
}

// generateBoundary returns a boundary token that does not occur as a
// line-start substring in any of the given encoded body sections. The
// collision scan is mandatory: an undetected collision would silently
// truncate a sub-body at the decoding side.
func generateBoundary(count int, sections [][]byte) (string, error) {
	for attempt := 0; attempt < maxBoundaryAttempts; attempt++ {
		candidate, err := randomBoundary(count, attempt)
		if err != nil {
			return "", encodeErr(ErrBoundaryExhausted, "", err)
		}
		if !boundaryCollides(candidate, sections) {
			return candidate, nil
		}
	}
	return "", encodeErr(ErrBoundaryExhausted, "")
}

// boundaryCollides reports whether the candidate token or its delimiter
// form occurs at the start of any line of any section.
func boundaryCollides(candidate string, sections [][]byte) bool {
	token := []byte(candidate)
	delim := append([]byte("--"), token...)
	for _, section := range sections {
		start := 0
		for start <= len(section) {
			rest := section[start:]
			if bytes.HasPrefix(rest, token) || bytes.HasPrefix(rest, delim) {
				return true
			}
			nl := bytes.IndexByte(rest, '\n')
			if nl < 0 {
				break
			}
			start += nl + 1
		}
	}
	return false
}
