package credentials

import (
	"sync"
)

type Name string

const (
	// AdminToken is the operator bearer credential.
	AdminToken Name = "adminToken"
)

// Persister saves the credential map somewhere that outlives the process.
type Persister interface {
	Load() (map[Name]string, error)
	Save(map[Name]string) error
}

type Credentials struct {
	Store     map[Name]string
	lock      sync.RWMutex
	persister Persister
}

func NewCredentials() *Credentials {
	return &Credentials{
		Store: make(map[Name]string),
	}
}

// NewPersistedCredentials loads whatever the persister holds. Every mutation
// is written back before it returns.
func NewPersistedCredentials(p Persister) (*Credentials, error) {
	stored, err := p.Load()
	if err != nil {
		return nil, err
	}
	c := NewCredentials()
	for k, v := range stored {
		if v != "" {
			c.Store[k] = v
		}
	}
	c.persister = p
	return c, nil
}

func (c *Credentials) Get(key Name) string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.Store[key]
}

func (c *Credentials) IsEmpty(key Name) bool {
	return c.Get(key) == ""
}

func (c *Credentials) Set(key Name, value string) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	if value == "" {
		delete(c.Store, key)
	} else {
		c.Store[key] = value
	}
	return c.save()
}

func (c *Credentials) Delete(key Name) error {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.Store, key)
	return c.save()
}

func (c *Credentials) Clear() error {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.Store = make(map[Name]string)
	return c.save()
}

// save must be called with the write lock held.
func (c *Credentials) save() error {
	if c.persister == nil {
		return nil
	}
	snapshot := make(map[Name]string, len(c.Store))
	for k, v := range c.Store {
		snapshot[k] = v
	}
	return c.persister.Save(snapshot)
}
