// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/mimebuild/mimebuild/log"
)

// seedLength is the number of random characters in the per-Context seed
// that salts every generated identifier.
const seedLength = 12

var (
	// ErrNoDomain is returned when a Context is created without a domain
	ErrNoDomain = errors.New("context requires a non-empty domain")

	// ErrInvalidInstanceID is returned when the instance identifier of a
	// Context contains characters illegal in a message identifier
	ErrInvalidInstanceID = errors.New("instance identifier contains invalid characters")
)

// ContextOption is a function type used to modify properties of a Context.
type ContextOption func(*Context)

// Context is the process or session scoped environment for mail
// generation. It is created once, shared by reference across concurrent
// resolutions and repeated encodes, and holds no per-mail state except
// the monotonically advancing identifier counter.
//
// Generated identifiers are unique for the lifetime of one Context.
// Cross-Context or cross-process uniqueness is the caller's business,
// typically via the domain choice.
type Context struct {
	domain   string
	instance string
	seed     string
	counter  atomic.Uint64
	loader   Loader
	hint     MailType
	logger   log.Logger
}

// NewContext returns a new Context for the given identifier domain and
// instance token.
func NewContext(domain, instance string, opts ...ContextOption) (*Context, error) {
	if domain == "" {
		return nil, ErrNoDomain
	}
	if strings.ContainsAny(instance, "<>@ \t\r\n") {
		return nil, ErrInvalidInstanceID
	}
	seed, err := randomStringSecure(seedLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate context seed: %w", err)
	}
	c := &Context{
		domain:   domain,
		instance: instance,
		seed:     seed,
		loader:   &FSLoader{},
		hint:     TypeASCII,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c, nil
}

// WithLoader overrides the default filesystem loader backend.
func WithLoader(l Loader) ContextOption {
	return func(c *Context) {
		if l != nil {
			c.loader = l
		}
	}
}

// WithMailTypeHint sets the capability hint the encoder starts its
// mail-type negotiation from. The hint is advisory: content requirements
// can escalate above it but never downgrade below it.
func WithMailTypeHint(mt MailType) ContextOption {
	return func(c *Context) {
		c.hint = mt
	}
}

// WithLogger attaches a logger receiving the encode trace.
func WithLogger(l log.Logger) ContextOption {
	return func(c *Context) {
		c.logger = l
	}
}

// GenerateMessageID generates a message identifier of the form
// <locally-unique-token>@<domain>. The token combines the per-Context
// counter with the per-Context random seed, guaranteeing no collision for
// the lifetime of this Context.
func (c *Context) GenerateMessageID() string {
	return c.generateID("m")
}

// GenerateContentID generates a content identifier with the same
// uniqueness guarantees as GenerateMessageID.
func (c *Context) GenerateContentID() string {
	return c.generateID("c")
}

// generateID builds one identifier from the tag, the advancing counter,
// the random seed and the instance token.
func (c *Context) generateID(tag string) string {
	n := c.counter.Add(1)
	if c.instance != "" {
		return fmt.Sprintf("%s%x.%s.%s@%s", tag, n, c.seed, c.instance, c.domain)
	}
	return fmt.Sprintf("%s%x.%s@%s", tag, n, c.seed, c.domain)
}

// SuggestMailType returns the advisory mail type for the encoder's
// negotiation, based on the configured capability hint.
func (c *Context) SuggestMailType() MailType {
	return c.hint
}

// Loader returns the resource loading backend of the Context.
func (c *Context) Loader() Loader {
	return c.loader
}

// Logger returns the attached logger, or nil if tracing is disabled.
func (c *Context) Logger() log.Logger {
	return c.logger
}

// Domain returns the identifier domain of the Context.
func (c *Context) Domain() string {
	return c.domain
}
