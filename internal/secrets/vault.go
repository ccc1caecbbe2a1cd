// Package secrets holds API credentials in RAM only. Values never touch
// the Ray folder or any other durable store; the vault is wiped on
// shutdown.
package secrets

import (
	"log/slog"
	"sort"
	"sync"
)

// Vault is an explicitly owned, process-scoped secret container. Pass it
// by reference to the collaborators that need credentials and wire Wipe
// into the shutdown path.
type Vault struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewVault() *Vault {
	return &Vault{
		values: make(map[string][]byte),
	}
}

func (v *Vault) Set(key, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.values[key] = []byte(value)
}

func (v *Vault) Get(key string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	b, ok := v.values[key]
	if !ok {
		return "", false
	}
	return string(b), true
}

func (v *Vault) Exists(key string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.values[key]
	return ok
}

// Keys lists stored secret identifiers, never values.
func (v *Vault) Keys() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	keys := make([]string, 0, len(v.values))
	for k := range v.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Wipe overwrites every stored value with zeros before dropping it. The
// vault stays usable afterwards but is empty. Safe to call more than
// once.
func (v *Vault) Wipe() {
	v.mu.Lock()
	defer v.mu.Unlock()

	for k, b := range v.values {
		for i := range b {
			b[i] = 0
		}
		delete(v.values, k)
	}
	slog.Info("secrets vault wiped")
}

func (v *Vault) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.values)
}
