package mcp

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"txagent/internal/config"
	"txagent/internal/tool"
)

// Manager connects to the configured MCP servers and registers their tools
type Manager struct {
	clients  map[string]*Client
	registry *tool.Registry
	dial     func(context.Context, config.MCPServerConfig) (*Client, error)
	mu       sync.RWMutex
}

func NewManager(registry *tool.Registry) *Manager {
	return &Manager{
		clients:  make(map[string]*Client),
		registry: registry,
		dial:     Dial,
	}
}

// Initialize starts all enabled servers concurrently. It fails only when
// every server failed; a partial failure is returned as an error alongside
// the servers that did load, so the caller can log it and continue.
func (m *Manager) Initialize(ctx context.Context, cfg config.MCPConfig) error {
	var enabled []config.MCPServerConfig
	for _, serverCfg := range cfg.Servers {
		if !serverCfg.Disabled {
			enabled = append(enabled, serverCfg)
		}
	}
	if len(enabled) == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, len(enabled))

	for i, serverCfg := range enabled {
		wg.Add(1)
		go func(i int, cfg config.MCPServerConfig) {
			defer wg.Done()
			if err := m.startServer(ctx, cfg); err != nil {
				errs[i] = fmt.Errorf("server %s: %w", cfg.Name, err)
			}
		}(i, serverCfg)
	}
	wg.Wait()

	err := errors.Join(errs...)
	if err == nil {
		return nil
	}
	if m.ServerCount() == 0 {
		return fmt.Errorf("all MCP servers failed to initialize: %w", err)
	}
	return fmt.Errorf("some MCP servers failed (loaded %d/%d): %w", m.ServerCount(), len(enabled), err)
}

func (m *Manager) startServer(ctx context.Context, cfg config.MCPServerConfig) error {
	client, err := m.dial(ctx, cfg)
	if err != nil {
		return err
	}
	if err := m.attach(client); err != nil {
		client.Close()
		return err
	}
	return nil
}

// attach registers every tool of client and keeps the client for Close.
func (m *Manager) attach(client *Client) error {
	for _, mcpTool := range client.Tools() {
		adapter := NewToolAdapter(client, mcpTool)
		if err := m.registry.Register(adapter); err != nil {
			return fmt.Errorf("failed to register tool %s: %w", adapter.Name(), err)
		}
	}

	m.mu.Lock()
	m.clients[client.Name()] = client
	m.mu.Unlock()
	return nil
}

// Close shuts down all MCP sessions
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for name, client := range m.clients {
		if err := client.Close(); err != nil {
			errs = append(errs, fmt.Errorf("server %s: %w", name, err))
		}
	}
	m.clients = make(map[string]*Client)

	if len(errs) > 0 {
		return fmt.Errorf("errors closing servers: %w", errors.Join(errs...))
	}
	return nil
}

// ListServers returns the connected server names, sorted
func (m *Manager) ListServers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Manager) ServerCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}
