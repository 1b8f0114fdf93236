package utils

import (
	"sync"
)

// OptionalMutex is a mutex that can be switched off at construction time, for pools that the
// consumer has promised to synchronize externally
type OptionalMutex struct {
	Mutex    sync.Mutex
	UseMutex bool
}

func NewOptionalMutex(useMutex bool) OptionalMutex {
	return OptionalMutex{UseMutex: useMutex}
}

func (m *OptionalMutex) Lock() {
	if m.UseMutex {
		m.Mutex.Lock()
	}
}

func (m *OptionalMutex) Unlock() {
	if m.UseMutex {
		m.Mutex.Unlock()
	}
}

// Locked runs fn while holding the mutex
func (m *OptionalMutex) Locked(fn func()) {
	m.Lock()
	defer m.Unlock()

	fn()
}
