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
	"crypto/sha256"
	"crypto/tls"
	"sync"
)

const (
	ticketKeyLen128 = 48 // name[16] || hmac_key[16] || enc_key[16]
	ticketKeyLen256 = 80 // name[16] || hmac_key[32] || enc_key[32]
	ticketKeyMaxAge = 3  // keys kept in rotation: current + two previous
)

// TicketKeyring holds the TLS session-ticket keys currently in rotation for
// a listener. Keys roll over one at a time: Rotate prepends a freshly
// loaded key and drops the oldest once more than ticketKeyMaxAge are held,
// so tickets issued under a key retired one or two rotations ago can still
// be resumed.
type TicketKeyring struct {
	mu   sync.Mutex
	keys [][32]byte
}

// NewTicketKeyring returns an empty keyring; session tickets stay disabled
// until the first successful Rotate.
func NewTicketKeyring() *TicketKeyring {
	return &TicketKeyring{}
}

// Rotate parses raw as a 48-byte (128-bit) or 80-byte (256-bit) ticket key
// file, derives a 32-byte key for crypto/tls from its hmac and encryption
// halves, and pushes it to the front of the rotation.
func (k *TicketKeyring) Rotate(raw []byte) error {
	var hmacKey, encKey []byte
	switch len(raw) {
	case ticketKeyLen128:
		hmacKey, encKey = raw[16:32], raw[32:48]
	case ticketKeyLen256:
		hmacKey, encKey = raw[16:48], raw[48:80]
	default:
		return ErrorTicketKeyLength.Error(nil)
	}

	derived := sha256.Sum256(append(append([]byte{}, hmacKey...), encKey...))

	k.mu.Lock()
	defer k.mu.Unlock()
	k.keys = append([][32]byte{derived}, k.keys...)
	if len(k.keys) > ticketKeyMaxAge {
		k.keys = k.keys[:ticketKeyMaxAge]
	}
	return nil
}

// Apply installs the current rotation, most-recent first, onto cfg. It is
// safe to call repeatedly, e.g. after every Rotate.
func (k *TicketKeyring) Apply(cfg *tls.Config) {
	k.mu.Lock()
	keys := append([][32]byte{}, k.keys...)
	k.mu.Unlock()
	if len(keys) == 0 {
		return
	}
	cfg.SetSessionTicketKeys(keys)
}
