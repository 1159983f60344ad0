// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomBoundary(t *testing.T) {
	b, err := randomBoundary(0, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b, boundaryPrefix))
	assert.Len(t, b, boundaryLength)

	for _, c := range strings.TrimPrefix(b, boundaryPrefix) {
		assert.Contains(t, boundaryChars+".", string(c),
			"boundary contains character outside the RFC 2046 grammar")
	}
}

func TestRandomBoundaryRetriesDiffer(t *testing.T) {
	b0, err := randomBoundary(0, 0)
	require.NoError(t, err)
	b3, err := randomBoundary(0, 3)
	require.NoError(t, err)

	assert.NotEqual(t, b0, b3)
	assert.Greater(t, len(b3), len(b0))
	assert.LessOrEqual(t, len(b3), boundaryHardMax)
}

func TestRandomBoundaryCounterPrefix(t *testing.T) {
	b, err := randomBoundary(10, 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(b, boundaryPrefix+"a."))
}

func TestGenerateBoundary(t *testing.T) {
	sections := [][]byte{
		[]byte("plain body text\r\nwith two lines\r\n"),
		[]byte("SGVsbG8gV29ybGQ=\r\n"),
	}
	b, err := generateBoundary(0, sections)
	require.NoError(t, err)
	assert.False(t, boundaryCollides(b, sections))
	assert.LessOrEqual(t, len(b), boundaryHardMax)
}

func TestGenerateBoundaryUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		b, err := generateBoundary(i, nil)
		require.NoError(t, err)
		_, dup := seen[b]
		assert.False(t, dup, "boundary %q generated twice", b)
		seen[b] = struct{}{}
	}
}

func TestBoundaryCollides(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		section   string
		want      bool
	}{
		{"token at line start", "=_^abc", "first line\r\n=_^abc tail\r\n", true},
		{"delimiter at line start", "=_^abc", "body\r\n--=_^abc\r\n", true},
		{"token at section start", "=_^abc", "=_^abc", true},
		{"token mid line", "=_^abc", "text =_^abc text\r\n", false},
		{"no occurrence", "=_^abc", "entirely unrelated body\r\n", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := boundaryCollides(tt.candidate, [][]byte{[]byte(tt.section)})
			assert.Equal(t, tt.want, got)
		})
	}
}
