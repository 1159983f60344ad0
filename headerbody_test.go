// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"mime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnstructuredValidate(t *testing.T) {
	assert.NoError(t, Unstructured("hello").Validate())
	assert.ErrorIs(t, Unstructured("").Validate(), ErrEmptyHeaderValue)
	assert.ErrorIs(t, Unstructured("   ").Validate(), ErrEmptyHeaderValue)
}

func TestParseAddressList(t *testing.T) {
	al, err := ParseAddressList("Toni Tester <toni@example.com>", "valid@example.com")
	require.NoError(t, err)
	require.Len(t, al, 2)
	assert.Equal(t, "Toni Tester", al[0].Name)
	assert.Equal(t, "toni@example.com", al[0].Address)

	_, err = ParseAddressList("invalid-address")
	assert.Error(t, err)
}

func TestAddressListEncodeBody(t *testing.T) {
	t.Run("ascii addresses", func(t *testing.T) {
		al, err := ParseAddressList("Toni Tester <toni@example.com>", "plain@example.com")
		require.NoError(t, err)
		body, err := al.EncodeBody(TypeASCII)
		require.NoError(t, err)
		assert.Equal(t, `"Toni Tester" <toni@example.com>, <plain@example.com>`, body)
	})
	t.Run("non-ascii address requires internationalized", func(t *testing.T) {
		al := AddressList{{Name: "", Address: "dörte@example.com"}}
		_, err := al.EncodeBody(TypeASCII)
		assert.ErrorIs(t, err, ErrNonASCIIHeaderValue)

		body, err := al.EncodeBody(TypeInternationalized)
		require.NoError(t, err)
		assert.Equal(t, "<dörte@example.com>", body)
		assert.True(t, al.RequiresInternationalized())
	})
	t.Run("non-ascii display name is escaped", func(t *testing.T) {
		al := AddressList{{Name: "Jörg Müller", Address: "jm@example.com"}}
		body, err := al.EncodeBody(TypeASCII)
		require.NoError(t, err)
		assert.True(t, isASCII(body))
		assert.Contains(t, body, "<jm@example.com>")
		assert.False(t, al.RequiresInternationalized())
	})
}

func TestIDList(t *testing.T) {
	t.Run("encode", func(t *testing.T) {
		body, err := IDList{"a@example.com", "b@example.com"}.EncodeBody(TypeASCII)
		require.NoError(t, err)
		assert.Equal(t, "<a@example.com> <b@example.com>", body)
	})
	t.Run("validate", func(t *testing.T) {
		assert.ErrorIs(t, IDList{}.Validate(), ErrEmptyHeaderValue)
		assert.ErrorIs(t, IDList{""}.Validate(), ErrEmptyHeaderValue)
		assert.Error(t, IDList{"<oops@example.com>"}.Validate())
		assert.Error(t, IDList{"white space@example.com"}.Validate())
		assert.NoError(t, IDList{"ok@example.com"}.Validate())
	})
}

func TestDateTime(t *testing.T) {
	ts := time.Date(2024, 5, 17, 14, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	body, err := DateTime(ts).EncodeBody(TypeASCII)
	require.NoError(t, err)
	assert.Equal(t, "Fri, 17 May 2024 14:30:00 +0200", body)

	assert.ErrorIs(t, DateTime(time.Time{}).Validate(), ErrEmptyHeaderValue)
}

func TestMediaType(t *testing.T) {
	t.Run("encode with params", func(t *testing.T) {
		mt := NewMediaType("text/plain").WithParam("charset", "utf-8")
		body, err := mt.EncodeBody(TypeASCII)
		require.NoError(t, err)
		assert.Equal(t, "text/plain; charset=utf-8", body)
	})
	t.Run("with param does not mutate the receiver", func(t *testing.T) {
		base := NewMediaType("text/plain").WithParam("charset", "utf-8")
		derived := base.WithParam("format", "flowed")
		assert.NotContains(t, base.Params, "format")
		assert.Contains(t, derived.Params, "format")
	})
	t.Run("multipart detection", func(t *testing.T) {
		assert.True(t, NewMediaType("multipart/mixed").IsMultipart())
		assert.True(t, NewMediaType("Multipart/Alternative").IsMultipart())
		assert.False(t, NewMediaType("text/plain").IsMultipart())
	})
	t.Run("validate", func(t *testing.T) {
		assert.ErrorIs(t, NewMediaType("").Validate(), ErrEmptyHeaderValue)
		assert.NoError(t, NewMediaType("application/pdf").Validate())
	})
}

func TestDispositionBody(t *testing.T) {
	mod := time.Date(2024, 5, 17, 14, 30, 0, 0, time.UTC)
	d := DispositionBody{
		Kind:     DispositionAttachment,
		Filename: "report.pdf",
		Size:     2048,
		ModTime:  mod,
	}
	body, err := d.EncodeBody(TypeASCII)
	require.NoError(t, err)

	kind, params, err := mime.ParseMediaType(body)
	require.NoError(t, err)
	assert.Equal(t, "attachment", kind)
	assert.Equal(t, "report.pdf", params["filename"])
	assert.Equal(t, "2048", params["size"])
	assert.Contains(t, params["modification-date"], "2024")

	assert.Error(t, DispositionBody{Kind: "banana"}.Validate())
	assert.NoError(t, DispositionBody{Kind: DispositionInline}.Validate())
}

func TestRaw(t *testing.T) {
	assert.NoError(t, Raw("1.0").Validate())
	assert.ErrorIs(t, Raw("").Validate(), ErrEmptyHeaderValue)
	assert.Error(t, Raw("a\r\nb").Validate())

	_, err := Raw("rohwert mit Umläuten").EncodeBody(TypeASCII)
	assert.ErrorIs(t, err, ErrNonASCIIHeaderValue)

	body, err := Raw("plain").EncodeBody(TypeASCII)
	require.NoError(t, err)
	assert.Equal(t, "plain", body)
}

func TestWordEncoderSelection(t *testing.T) {
	assert.Equal(t, mime.QEncoding, wordEncoderFor("Grüße aus Köln"))
	assert.Equal(t, mime.BEncoding, wordEncoderFor("日本語のテスト"))
}

func TestQuotePhrase(t *testing.T) {
	assert.Equal(t, "Toni Tester", quotePhrase("Toni Tester"))
	assert.Equal(t, `"Tester, Toni"`, quotePhrase("Tester, Toni"))
	assert.True(t, strings.HasPrefix(quotePhrase(`say "hi"`), `"`))
}
