// Package di provides a minimal dependency injection container with typed tokens.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry provides read access to registered services.
type ServiceRegistry interface {
	// Get returns the service registered under key, resolving lazy factories
	// on first access. It panics if the key is unknown.
	Get(key string) any
}

// Container extends ServiceRegistry with registration.
type Container interface {
	ServiceRegistry

	// Register stores an already-constructed service under key.
	Register(key string, svc any)

	// RegisterFactory stores a factory invoked once, on first Get.
	RegisterFactory(key string, factory func(ServiceRegistry) any)
}

// NewContainer creates an empty Container.
func NewContainer() Container {
	return &container{
		services:  make(map[string]any),
		factories: make(map[string]func(ServiceRegistry) any),
	}
}

type container struct {
	mu        sync.Mutex
	services  map[string]any
	factories map[string]func(ServiceRegistry) any
}

func (c *container) Register(key string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.services[key] = svc
}

func (c *container) RegisterFactory(key string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[key] = factory
}

func (c *container) Get(key string) any {
	c.mu.Lock()
	if svc, ok := c.services[key]; ok {
		c.mu.Unlock()
		return svc
	}
	factory, ok := c.factories[key]
	c.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("di: unknown service %q", key))
	}

	// Resolve outside the lock so factories can Get their own dependencies.
	svc := factory(c)

	c.mu.Lock()
	c.services[key] = svc
	delete(c.factories, key)
	c.mu.Unlock()

	return svc
}

// Token is a typed handle for a registered service.
type Token[T any] struct {
	key string
}

// NewToken creates a typed token with a unique key.
func NewToken[T any](key string) Token[T] {
	return Token[T]{key: key}
}

// Key returns the underlying registry key.
func (t Token[T]) Key() string {
	return t.key
}

// RegisterToken registers a typed factory for the token.
func RegisterToken[T any](c Container, token Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(token.key, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a typed service for the token.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	svc := sr.Get(token.key)
	typed, ok := svc.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token.key, svc))
	}
	return typed
}
