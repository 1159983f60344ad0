// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"errors"
	"io"
)

// MaxBodyLength is the maximum number of base64 characters per body line
// as suggested by RFC 2045.
const MaxBodyLength = 76

// lineBreak is the network line terminator used in the encoded output.
const lineBreak = "\r\n"

// newlineBytes is a byte slice representation of the lineBreak constant
// used during line breaking.
var newlineBytes = []byte(lineBreak)

// ErrNoOutWriter is returned when no io.Writer is set for Base64LineBreaker.
var ErrNoOutWriter = errors.New("no io.Writer set for Base64LineBreaker")

// Base64LineBreaker wraps base64 output at MaxBodyLength characters,
// terminating each full line with CRLF.
//
// It satisfies the io.WriteCloser interface.
type Base64LineBreaker struct {
	line [MaxBodyLength]byte
	used int
	out  io.Writer
}

// Write writes data to the Base64LineBreaker, ensuring lines do not exceed
// MaxBodyLength. It handles continuation if data length exceeds the limit
// and writes new lines accordingly.
func (l *Base64LineBreaker) Write(data []byte) (numBytes int, err error) {
	if l.out == nil {
		err = ErrNoOutWriter
		return
	}
	if l.used+len(data) < MaxBodyLength {
		copy(l.line[l.used:], data)
		l.used += len(data)
		return len(data), nil
	}

	numBytes, err = l.out.Write(l.line[0:l.used])
	if err != nil {
		return
	}
	excess := MaxBodyLength - l.used
	l.used = 0

	numBytes, err = l.out.Write(data[0:excess])
	if err != nil {
		return
	}

	numBytes, err = l.out.Write(newlineBytes)
	if err != nil {
		return
	}

	return l.Write(data[excess:])
}

// Close finalizes the Base64LineBreaker, writing any remaining buffered
// data followed by a final line terminator.
func (l *Base64LineBreaker) Close() (err error) {
	if l.used > 0 {
		_, err = l.out.Write(l.line[0:l.used])
		if err != nil {
			return
		}
		_, err = l.out.Write(newlineBytes)
	}

	return
}
