// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime/quotedprintable"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanPayload(t *testing.T) {
	tests := []struct {
		name       string
		data       string
		has8bit    bool
		hasNul     bool
		maxLineLen int
	}{
		{"empty", "", false, false, 0},
		{"plain ascii", "hello world", false, false, 11},
		{"multi line", "ab\r\ncdef\r\n", false, false, 4},
		{"utf-8 text", "Grüße", true, false, 7},
		{"nul byte", "a\x00b", false, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := scanPayload([]byte(tt.data))
			assert.Equal(t, tt.has8bit, tr.has8bit, "has8bit")
			assert.Equal(t, tt.hasNul, tr.hasNul, "hasNul")
			assert.Equal(t, tt.maxLineLen, tr.maxLineLen, "maxLineLen")
		})
	}
}

func TestSelectEncoding(t *testing.T) {
	tests := []struct {
		name string
		data string
		mt   MailType
		want Encoding
	}{
		{"clean ascii", "Hello\r\nWorld\r\n", TypeASCII, Encoding7Bit},
		{"utf-8 under ascii", "Grüße aus Köln\r\n", TypeASCII, EncodingQP},
		{"utf-8 under 8bit", "Grüße aus Köln\r\n", Type8Bit, Encoding8Bit},
		{"utf-8 under internationalized", "Grüße\r\n", TypeInternationalized, Encoding8Bit},
		{"overlong ascii line", strings.Repeat("a", MaxLineLength+1), TypeASCII, EncodingQP},
		{"nul bytes", "\x00\x01\x02binary", TypeASCII, EncodingB64},
		{"mostly binary", strings.Repeat("\xff", 100), Type8Bit, EncodingB64},
		{"non-utf8 bytes never go 8bit", "\xff\xfe\xfd ok\r\n", Type8Bit, EncodingB64},
		{"german text stays qp", "Grüße aus Köln, Grüße aus Bonn\r\n", TypeASCII, EncodingQP},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectEncoding([]byte(tt.data), tt.mt))
		})
	}
}

func TestEncodingPermitted(t *testing.T) {
	tests := []struct {
		name    string
		enc     Encoding
		data    string
		mt      MailType
		wantErr bool
	}{
		{"7bit clean", Encoding7Bit, "hello", TypeASCII, false},
		{"7bit with 8-bit byte", Encoding7Bit, "Grüße", TypeASCII, true},
		{"7bit overlong line", Encoding7Bit, strings.Repeat("a", MaxLineLength+1), TypeASCII, true},
		{"8bit under ascii mail type", Encoding8Bit, "Grüße", TypeASCII, true},
		{"8bit under 8bit mail type", Encoding8Bit, "Grüße", Type8Bit, false},
		{"8bit with nul", Encoding8Bit, "a\x00b", Type8Bit, true},
		{"qp with nul", EncodingQP, "a\x00b", TypeASCII, true},
		{"base64 carries anything", EncodingB64, "\x00\xff", TypeASCII, false},
		{"unknown scheme", Encoding("uuencode"), "x", TypeASCII, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := encodingPermitted(tt.enc, []byte(tt.data), tt.mt)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// The quoted-printable threshold counts characters, not bytes: multi-byte
// UTF-8 text with a modest share of non-ASCII runes must stay QP-eligible.
func TestMostlyASCIIText(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{"empty", "", true},
		{"pure ascii", "hello world", true},
		{"german text", "Grüße aus Köln", true},
		{"dense non-ascii", "日本語のテスト", false},
		{"raw binary", strings.Repeat("\xff", 10), false},
		{"nul byte", "a\x00b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mostlyASCIIText([]byte(tt.data)))
		})
	}
}

func TestTransferEncodeQuotedPrintable(t *testing.T) {
	payload := []byte("Grüße aus Köln.\r\nZweite Zeile mit Ümlauten.\r\n")
	var buf bytes.Buffer
	require.NoError(t, transferEncode(&buf, payload, EncodingQP))

	assert.True(t, isASCII(buf.String()))
	for _, line := range strings.Split(buf.String(), lineBreak) {
		assert.LessOrEqual(t, len(line), MaxBodyLength)
	}

	decoded, err := io.ReadAll(quotedprintable.NewReader(&buf))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestTransferEncodeBase64(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}
	var buf bytes.Buffer
	require.NoError(t, transferEncode(&buf, payload, EncodingB64))

	for _, line := range strings.Split(strings.TrimRight(buf.String(), "\r\n"), lineBreak) {
		require.NotEmpty(t, line)
		assert.LessOrEqual(t, len(line), MaxBodyLength)
	}

	compact := strings.ReplaceAll(buf.String(), lineBreak, "")
	decoded, err := base64.StdEncoding.DecodeString(compact)
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)
}

func TestTransferEncodeIdentity(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, transferEncode(&buf, []byte("one\ntwo\nthree"), Encoding8Bit))
	assert.Equal(t, "one\r\ntwo\r\nthree", buf.String())
}

func TestNormalizeCRLF(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no terminators", "abc", "abc"},
		{"bare lf", "a\nb", "a\r\nb"},
		{"bare cr", "a\rb", "a\r\nb"},
		{"well formed", "a\r\nb\r\n", "a\r\nb\r\n"},
		{"mixed", "a\nb\r\nc\rd", "a\r\nb\r\nc\r\nd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(normalizeCRLF([]byte(tt.in))))
		})
	}
}
