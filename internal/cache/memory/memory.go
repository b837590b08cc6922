// Package memory implementa cache.Cache in-process sobre patrickmn/go-cache.
package memory

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/dropDatabas3/scopegate/internal/cache"
)

type Mem struct{ c *gocache.Cache }

func New(defaultTTL time.Duration) cache.Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *Mem) Set(k string, v []byte, ttl time.Duration) { m.c.Set(k, v, ttl) }
func (m *Mem) Delete(k string)                           { m.c.Delete(k) }

// DeletePrefix recorre el snapshot de items y borra las keys que matchean.
// go-cache no indexa por prefijo; para el tamaño de catálogo esperado el
// scan es barato.
func (m *Mem) DeletePrefix(prefix string) {
	for k := range m.c.Items() {
		if strings.HasPrefix(k, prefix) {
			m.c.Delete(k)
		}
	}
}
