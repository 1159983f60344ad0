// SPDX-FileCopyrightText: The mimebuild Authors
//
// SPDX-License-Identifier: MIT

package mimebuild

import (
	"context"

	"golang.org/x/sync/errgroup"

	mblog "github.com/mimebuild/mimebuild/log"
)

// Resolve loads every deferred resource of the tree through the Context's
// loader backend and returns a new, fully resolved tree. The unresolved
// input tree is never mutated.
//
// All loads run concurrently with no ordering guarantee among them; each
// load writes into its own slot of the fresh tree. The first failure
// cancels all in-flight loads and the whole operation fails, partial
// results are discarded wholesale. Distinct leaves sharing the same
// Resource value are loaded once.
//
// The tree is validated with the default policy before any load starts;
// fatal violations abort the resolution, warnings are only logged.
func (m *Mail) Resolve(ctx context.Context, mctx *Context) (*Mail, error) {
	return m.ResolveWithPolicy(ctx, mctx, DefaultValidationPolicy())
}

// ResolveWithPolicy behaves like Resolve with a caller supplied
// validation policy.
func (m *Mail) ResolveWithPolicy(ctx context.Context, mctx *Context, policy ValidationPolicy) (*Mail, error) {
	result := m.Validate(policy)
	if logger := mctx.Logger(); logger != nil {
		for _, w := range result.Warnings() {
			logger.Warnf(mblog.Log{
				Phase:    mblog.PhaseValidate,
				Format:   "%s",
				Messages: []interface{}{w.String()},
			})
		}
	}
	if err := result.Err(); err != nil {
		return nil, err
	}

	resolved := m.cloneStructure()

	// One load per distinct deferred resource; leaves sharing a resource
	// share the loaded result.
	pending := make(map[*Resource][]*Mail)
	resolved.eachLeaf(func(leaf *Mail) {
		if !leaf.resource.IsResolved() {
			pending[leaf.resource] = append(pending[leaf.resource], leaf)
		}
	})
	if len(pending) == 0 {
		return resolved, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for res, leaves := range pending {
		res, leaves := res, leaves
		g.Go(func() error {
			ref := *res.Source()
			if logger := mctx.Logger(); logger != nil {
				logger.Debugf(mblog.Log{
					Phase:    mblog.PhaseResolve,
					Format:   "loading resource %q",
					Messages: []interface{}{ref.Ref},
				})
			}
			payload, err := mctx.Loader().Load(gctx, ref)
			if err != nil {
				return &ResolveError{Ref: ref, cause: err}
			}
			loaded := res.resolveWith(payload)
			for _, leaf := range leaves {
				leaf.resource = loaded
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved, nil
}
