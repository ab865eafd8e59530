//go:build integration

// Package containers manages shared test containers for integration suites.
//
// Containers are started lazily and reused for the lifetime of the test
// binary so every suite does not pay the startup cost again. Cleanup is
// delegated to Ryuk, the testcontainers reaper.
package containers

import (
	"sync"
	"testing"
)

// Manager hands out the shared containers, starting each at most once.
type Manager struct {
	mu       sync.Mutex
	postgres *PostgresContainer
	mongo    *MongoContainer
}

var (
	manager     *Manager
	managerOnce sync.Once
)

// GetManager returns the process-wide container manager.
func GetManager() *Manager {
	managerOnce.Do(func() {
		manager = &Manager{}
	})
	return manager
}

// GetPostgres returns the shared PostgreSQL container, starting it and
// applying migrations on first use.
func (m *Manager) GetPostgres(t *testing.T) *PostgresContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.postgres == nil {
		m.postgres = NewPostgresContainer(t)
	}
	return m.postgres
}

// GetMongo returns the shared MongoDB container, starting it on first use.
func (m *Manager) GetMongo(t *testing.T) *MongoContainer {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.mongo == nil {
		m.mongo = NewMongoContainer(t)
	}
	return m.mongo
}
