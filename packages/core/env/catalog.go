package env

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// CatalogKey is the key under which the catalog is persisted.
const CatalogKey = "environments"

var ErrEnvironmentNotFound = errors.New("environment not found")

// KV is the persistence boundary the catalog writes through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Catalog holds the workspace environments and the single active selection.
type Catalog struct {
	mu           sync.RWMutex
	environments []*Environment
	activeID     string
	store        KV
}

type catalogDocument struct {
	Environments []*Environment `json:"environments"`
	ActiveID     string         `json:"activeId,omitempty"`
}

type CatalogOption func(*Catalog)

// WithStore persists the catalog on every mutation.
func WithStore(kv KV) CatalogOption {
	return func(c *Catalog) {
		c.store = kv
	}
}

func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the in-memory catalog with the persisted one, if any.
func (c *Catalog) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	data, ok, err := c.store.Get(ctx, CatalogKey)
	if err != nil {
		return fmt.Errorf("loading environments: %w", err)
	}
	if !ok {
		return nil
	}

	var doc catalogDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("decoding environments: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.environments = doc.Environments
	c.activeID = doc.ActiveID
	if c.indexOf(c.activeID) < 0 {
		c.activeID = ""
	}
	return nil
}

// Add stores a copy of e, assigning an ID when it has none, and returns the ID.
func (c *Catalog) Add(ctx context.Context, e Environment) (string, error) {
	stored := e.Clone()
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexOf(stored.ID) >= 0 {
		return "", fmt.Errorf("environment %s already exists", stored.ID)
	}
	c.environments = append(c.environments, stored)
	return stored.ID, c.persist(ctx)
}

// Update replaces the environment with the same ID.
func (c *Catalog) Update(ctx context.Context, e Environment) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(e.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEnvironmentNotFound, e.ID)
	}
	c.environments[i] = e.Clone()
	return c.persist(ctx)
}

// Remove deletes an environment. Removing the active one clears the selection.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrEnvironmentNotFound, id)
	}
	c.environments = append(c.environments[:i], c.environments[i+1:]...)
	if c.activeID == id {
		c.activeID = ""
	}
	return c.persist(ctx)
}

// SetActive selects the active environment. An empty id clears it.
func (c *Catalog) SetActive(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id != "" && c.indexOf(id) < 0 {
		return fmt.Errorf("%w: %s", ErrEnvironmentNotFound, id)
	}
	c.activeID = id
	return c.persist(ctx)
}

// Active returns a snapshot of the active environment, or nil. Later edits
// to the catalog do not affect a snapshot already handed out.
func (c *Catalog) Active() *Environment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOf(c.activeID)
	if i < 0 {
		return nil
	}
	return c.environments[i].Clone()
}

func (c *Catalog) Get(id string) (*Environment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := c.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return c.environments[i].Clone(), true
}

// FindByName returns the first environment with the given name.
func (c *Catalog) FindByName(name string) (*Environment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, e := range c.environments {
		if e.Name == name {
			return e.Clone(), true
		}
	}
	return nil, false
}

func (c *Catalog) List() []*Environment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]*Environment, len(c.environments))
	for i, e := range c.environments {
		result[i] = e.Clone()
	}
	return result
}

func (c *Catalog) ActiveID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.activeID
}

func (c *Catalog) indexOf(id string) int {
	if id == "" {
		return -1
	}
	for i, e := range c.environments {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// persist must be called with c.mu held.
func (c *Catalog) persist(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	data, err := json.Marshal(catalogDocument{
		Environments: c.environments,
		ActiveID:     c.activeID,
	})
	if err != nil {
		return fmt.Errorf("encoding environments: %w", err)
	}
	if err := c.store.Put(ctx, CatalogKey, data); err != nil {
		return fmt.Errorf("saving environments: %w", err)
	}
	return nil
}
