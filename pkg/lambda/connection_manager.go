package lambda

import (
	"context"
	"sync"
	"time"

	"demographics-api/internal/config"
	"demographics-api/pkg/server"
)

// ConnectionManager keeps the table and mailer clients warm across invocations
type ConnectionManager struct {
	container   *server.Container
	lastUsed    time.Time
	mu          sync.RWMutex
	initialized bool
	config      *config.Config
	newFn       func(ctx context.Context, cfg *config.Config) (*server.Container, error)
}

var (
	globalConnectionManager *ConnectionManager
	connectionManagerOnce   sync.Once
)

// GetConnectionManager returns the global connection manager instance
func GetConnectionManager() *ConnectionManager {
	connectionManagerOnce.Do(func() {
		globalConnectionManager = NewConnectionManager()
	})
	return globalConnectionManager
}

// NewConnectionManager creates an uninitialized connection manager
func NewConnectionManager() *ConnectionManager {
	return &ConnectionManager{newFn: server.NewContainer}
}

// Initialize builds the container from cfg. Later calls are no-ops until Cleanup.
func (cm *ConnectionManager) Initialize(ctx context.Context, cfg *config.Config) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.initialized {
		return nil
	}

	container, err := cm.newFn(ctx, cfg)
	if err != nil {
		return err
	}

	cm.config = cfg
	cm.container = container
	cm.lastUsed = time.Now()
	cm.initialized = true
	return nil
}

// GetContainer returns the service container, initializing if necessary
func (cm *ConnectionManager) GetContainer(ctx context.Context) (*server.Container, error) {
	cm.mu.Lock()
	if cm.initialized && cm.container != nil {
		cm.lastUsed = time.Now()
		container := cm.container
		cm.mu.Unlock()
		return container, nil
	}
	cfg := cm.config
	cm.mu.Unlock()

	// Need to initialize
	if cfg == nil {
		var err error
		cfg, err = config.GetOptimizedConfig()
		if err != nil {
			return nil, err
		}
	}
	if err := cm.Initialize(ctx, cfg); err != nil {
		return nil, err
	}

	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.container, nil
}

// IsHealthy checks if the connection manager is healthy
func (cm *ConnectionManager) IsHealthy() bool {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	if !cm.initialized || cm.container == nil {
		return false
	}

	// Check if connection is stale (older than 5 minutes)
	return time.Since(cm.lastUsed) < 5*time.Minute
}

// Cleanup closes the container; the next GetContainer call rebuilds it
func (cm *ConnectionManager) Cleanup() error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.container != nil {
		if err := cm.container.Close(); err != nil {
			return err
		}
		cm.container = nil
	}

	cm.initialized = false
	return nil
}
