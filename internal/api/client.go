// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/apex/log"

	"github.com/staranto/procurectl/internal/cache"
	"github.com/staranto/procurectl/internal/transport"
)

const (
	DefaultProcurementService = "procurement"
	DefaultIdentityService    = "identity"
)

var ErrMissingID = errors.New("an identifier is required")

// Client is the entry point for every feature. It is safe for concurrent use.
type Client struct {
	caller      transport.Caller
	cache       cache.Provider[[]byte]
	procurement string
	identity    string
}

type Option func(*Client)

// WithProcurementService names the configured service procurement paths are
// sent to.
func WithProcurementService(name string) Option {
	return func(c *Client) { c.procurement = name }
}

// WithIdentityService names the service employee lookups are sent to.
func WithIdentityService(name string) Option {
	return func(c *Client) { c.identity = name }
}

// New builds a Client on top of caller, caching reads in p.
func New(caller transport.Caller, p cache.Provider[[]byte], opts ...Option) *Client {
	c := &Client{
		caller:      caller,
		cache:       p,
		procurement: DefaultProcurementService,
		identity:    DefaultIdentityService,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Cache exposes the provider so workflows can invalidate after success.
func (c *Client) Cache() cache.Provider[[]byte] {
	return c.cache
}

// Key joins an operation name and its parameters into a cache key, e.g.
// Key("prDetails", "PR001") is "prDetails_PR001".
func Key(op string, params ...string) string {
	if len(params) == 0 {
		return op
	}
	return op + "_" + strings.Join(params, "_")
}

// read fetches path through the cache. The server body is cached as is.
func (c *Client) read(ctx context.Context, service, key string, class cache.TTLClass, path string) ([]byte, error) {
	return c.cache.GetOrFetch(ctx, key, class, func(ctx context.Context) ([]byte, error) {
		body, err := c.caller.Call(ctx, service, path, http.MethodGet, nil)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return body, nil
	})
}

// readOptional is read for sub-resources that may legitimately not exist. A
// 404 is cached as an empty result and reported as nil, nil.
func (c *Client) readOptional(ctx context.Context, service, key string, class cache.TTLClass, path string) ([]byte, error) {
	body, err := c.cache.GetOrFetch(ctx, key, class, func(ctx context.Context) ([]byte, error) {
		body, err := c.caller.Call(ctx, service, path, http.MethodGet, nil)
		if transport.IsNotFound(err) {
			log.WithField("key", key).Debug("optional resource absent")
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		return body, nil
	})
	if err != nil || body == nil {
		return nil, err
	}
	return body, nil
}

// write sends a mutation once, never through the cache. On success every key
// mentioning entityID, and every listing named in lists, is invalidated.
func (c *Client) write(ctx context.Context, service, path string, body any, entityID string, lists ...string) ([]byte, error) {
	resp, err := c.caller.Call(ctx, service, path, http.MethodPost, body)
	if err != nil {
		return nil, err
	}

	n := c.cache.InvalidateMatching(entityID)
	for _, l := range lists {
		n += c.cache.InvalidateMatching(l + "_")
	}
	log.WithFields(log.Fields{"entity": entityID, "keys": n}).Debug("invalidated after write")

	return Unwrap(resp), nil
}

func requireID(kind, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%s: %w", kind, ErrMissingID)
	}
	return id, nil
}
