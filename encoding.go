// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime/quotedprintable"
	"unicode/utf8"
)

// Encoding represents a MIME content-transfer-encoding scheme like
// quoted-printable or base64.
type Encoding string

const (
	// EncodingB64 represents the Base64 encoding as specified in RFC 2045.
	EncodingB64 Encoding = "base64"

	// EncodingQP represents the "quoted-printable" encoding as specified
	// in RFC 2045.
	EncodingQP Encoding = "quoted-printable"

	// Encoding7Bit is the identity encoding for payloads that are already
	// 7-bit safe and line-length safe.
	Encoding7Bit Encoding = "7bit"

	// Encoding8Bit is the identity encoding for raw 8-bit payloads, only
	// transmissible when the negotiated mail type supports 8-bit bodies.
	Encoding8Bit Encoding = "8bit"

	// EncodingUnset lets the encoder pick the transfer encoding based on
	// the payload and the negotiated mail type.
	EncodingUnset Encoding = ""
)

// String satisfies the fmt.Stringer interface for the Encoding type.
func (e Encoding) String() string {
	return string(e)
}

// payloadTraits is the result of a single scan over a body payload,
// feeding both transfer-encoding selection and mail-type negotiation.
type payloadTraits struct {
	has8bit     bool
	hasNul      bool
	maxLineLen  int
	unsafeBytes int
}

// scanPayload analyzes a payload in one pass.
func scanPayload(data []byte) payloadTraits {
	var t payloadTraits
	lineLen := 0
	for i := 0; i < len(data); i++ {
		b := data[i]
		switch {
		case b == '\n':
			if lineLen > t.maxLineLen {
				t.maxLineLen = lineLen
			}
			lineLen = 0
			continue
		case b == '\r':
			continue
		case b == 0:
			t.hasNul = true
			t.unsafeBytes++
		case b > 0x7f:
			t.has8bit = true
			t.unsafeBytes++
		case b < 0x20 && b != '\t':
			t.unsafeBytes++
		}
		lineLen++
	}
	if lineLen > t.maxLineLen {
		t.maxLineLen = lineLen
	}
	return t
}

// selectEncoding picks the content-transfer-encoding for a payload under
// the negotiated mail type: identity if the payload already satisfies the
// line-length and byte-safety constraints of the mail type,
// quoted-printable for mostly-ASCII text, base64 for everything else.
// Identity 8bit is reserved for textual payloads: raw bytes that do not
// form valid UTF-8 always go through base64.
func selectEncoding(data []byte, mt MailType) Encoding {
	t := scanPayload(data)
	lineSafe := t.maxLineLen <= MaxLineLength
	switch {
	case !t.has8bit && !t.hasNul && lineSafe && t.unsafeBytes == 0:
		return Encoding7Bit
	case t.has8bit && !t.hasNul && lineSafe && mt.Supports8BitBodies() && utf8.Valid(data):
		return Encoding8Bit
	case !t.hasNul && mostlyASCIIText(data):
		return EncodingQP
	default:
		return EncodingB64
	}
}

// mostlyASCIIText reports whether a payload is text that quoted-printable
// can represent compactly: at most a third of its characters need
// escaping. Characters are counted per rune, not per byte, so multi-byte
// UTF-8 text does not get over-weighted.
func mostlyASCIIText(data []byte) bool {
	runes, escaped := 0, 0
	for i := 0; i < len(data); {
		b := data[i]
		if b < 0x80 {
			if b == 0 {
				return false
			}
			if b < 0x20 && b != '\t' && b != '\r' && b != '\n' {
				escaped++
			}
			runes++
			i++
			continue
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			// A raw byte outside UTF-8 counts as one escaped character.
			escaped++
			runes++
			i++
			continue
		}
		escaped++
		runes++
		i += size
	}
	return escaped <= runes/3
}

// encodingPermitted reports whether a caller-pinned encoding can actually
// represent the payload under the negotiated mail type.
func encodingPermitted(enc Encoding, data []byte, mt MailType) error {
	t := scanPayload(data)
	switch enc {
	case Encoding7Bit:
		if t.has8bit || t.hasNul {
			return fmt.Errorf("payload contains non 7-bit bytes")
		}
		if t.maxLineLen > MaxLineLength {
			return fmt.Errorf("payload line exceeds %d characters", MaxLineLength)
		}
	case Encoding8Bit:
		if t.hasNul {
			return fmt.Errorf("payload contains NUL bytes")
		}
		if t.maxLineLen > MaxLineLength {
			return fmt.Errorf("payload line exceeds %d characters", MaxLineLength)
		}
		if t.has8bit && !mt.Supports8BitBodies() {
			return fmt.Errorf("8-bit payload not transmissible under mail type %s", mt)
		}
	case EncodingQP:
		if t.hasNul {
			return fmt.Errorf("quoted-printable cannot carry NUL bytes")
		}
	case EncodingB64:
	default:
		return fmt.Errorf("unknown transfer encoding %q", string(enc))
	}
	return nil
}

// transferEncode writes the payload transfer-encoded with the given
// scheme. Identity encodings normalize bare line feeds to CRLF, base64 is
// wrapped at 76 columns.
func transferEncode(w io.Writer, data []byte, enc Encoding) error {
	switch enc {
	case EncodingQP:
		qp := quotedprintable.NewWriter(w)
		if _, err := qp.Write(data); err != nil {
			return err
		}
		return qp.Close()
	case EncodingB64:
		lb := &Base64LineBreaker{out: w}
		b64 := base64.NewEncoder(base64.StdEncoding, lb)
		if _, err := b64.Write(data); err != nil {
			return err
		}
		if err := b64.Close(); err != nil {
			return err
		}
		return lb.Close()
	case Encoding7Bit, Encoding8Bit, EncodingUnset:
		_, err := w.Write(normalizeCRLF(data))
		return err
	default:
		return fmt.Errorf("unknown transfer encoding %q", string(enc))
	}
}

// normalizeCRLF converts bare LF and bare CR line terminators to CRLF
// without touching already well-formed CRLF pairs.
func normalizeCRLF(data []byte) []byte {
	if !bytes.ContainsAny(data, "\r\n") {
		return data
	}
	var out bytes.Buffer
	out.Grow(len(data) + len(data)/16)
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\r':
			out.WriteString(lineBreak)
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
		case '\n':
			out.WriteString(lineBreak)
		default:
			out.WriteByte(data[i])
		}
	}
	return out.Bytes()
}
