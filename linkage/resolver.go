/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package linkage

import (
	"context"
	"math/rand"
	"net"
	"sync"
	"time"
)

// ResolvePolicy selects how Resolver picks among several addresses
// returned for one hostname.
type ResolvePolicy uint8

const (
	// ResolveFirst always returns the first address in lookup order.
	ResolveFirst ResolvePolicy = iota
	// ResolveRandom returns a uniformly random address among the non-blacklisted ones.
	ResolveRandom
	// ResolveSequential round-robins across the non-blacklisted addresses.
	ResolveSequential
)

type resolverEntry struct {
	addrs     []string
	expiresAt time.Time
	next      int
	blacklist map[string]time.Time
}

// Resolver is a hostname-to-IP cache with TTL-based aging and a per-address
// blacklist with expiry, consumed by EasyServer's outgoing-connect path.
type Resolver struct {
	ttl  time.Duration
	mu   sync.Mutex
	seed *rand.Rand
	byHost map[string]*resolverEntry
}

// NewResolver returns a Resolver caching lookups for ttl.
func NewResolver(ttl time.Duration) *Resolver {
	return &Resolver{
		ttl:    ttl,
		seed:   rand.New(rand.NewSource(time.Now().UnixNano())),
		byHost: make(map[string]*resolverEntry),
	}
}

// candidates refreshes the cache entry for hostname if needed and returns
// every non-blacklisted address currently known for it.
func (r *Resolver) candidates(ctx context.Context, hostname string) ([]string, error) {
	r.mu.Lock()
	entry, ok := r.byHost[hostname]
	needsLookup := !ok || time.Now().After(entry.expiresAt)
	r.mu.Unlock()

	if needsLookup {
		addrs, err := net.DefaultResolver.LookupHost(ctx, hostname)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		entry = &resolverEntry{
			addrs:     addrs,
			expiresAt: time.Now().Add(r.ttl),
			blacklist: map[string]time.Time{},
		}
		r.byHost[hostname] = entry
		r.mu.Unlock()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(entry.addrs))
	now := time.Now()
	for _, a := range entry.addrs {
		if until, blocked := entry.blacklist[a]; blocked && now.Before(until) {
			continue
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		out = entry.addrs
	}
	return out, nil
}

// Candidates returns every address currently eligible for hostname, in
// lookup order, for callers that want to try more than one on failure.
func (r *Resolver) Candidates(ctx context.Context, hostname string) ([]string, error) {
	addrs, err := r.candidates(ctx, hostname)
	if err != nil {
		return nil, err
	}
	if len(addrs) == 0 {
		return nil, ErrorResolveFailed.Error(nil)
	}
	return addrs, nil
}

// Resolve returns one IP address for hostname chosen per policy, performing
// a fresh DNS lookup when the cache entry is absent or expired.
func (r *Resolver) Resolve(ctx context.Context, hostname string, policy ResolvePolicy) (string, error) {
	candidates, err := r.candidates(ctx, hostname)
	if err != nil {
		return "", err
	}
	if len(candidates) == 0 {
		return "", ErrorResolveFailed.Error(nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	entry := r.byHost[hostname]

	switch policy {
	case ResolveRandom:
		return candidates[r.seed.Intn(len(candidates))], nil
	case ResolveSequential:
		idx := entry.next % len(candidates)
		entry.next++
		return candidates[idx], nil
	default:
		return candidates[0], nil
	}
}

// Invalidate blacklists addr for hostname for duration, so subsequent
// Resolve calls skip it until the blacklist entry expires.
func (r *Resolver) Invalidate(hostname, addr string, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.byHost[hostname]
	if !ok {
		return
	}
	entry.blacklist[addr] = time.Now().Add(duration)
}

// Clear empties the entire cache.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byHost = make(map[string]*resolverEntry)
}
