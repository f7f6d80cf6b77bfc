package anim

import (
	"log"
	"sort"

	"nifri2/emotipet/storage"
)

// Catalog caches clip metadata. A clip whose header could not be read is not
// cached, so it is only retried when it is next requested.
type Catalog struct {
	fsys   storage.FS
	clips  map[string]Clip
	failed map[string]error
}

func NewCatalog(fsys storage.FS) *Catalog {
	return &Catalog{
		fsys:   fsys,
		clips:  make(map[string]Clip),
		failed: make(map[string]error),
	}
}

// Preload reads the metadata of every manifest entry once.
func (c *Catalog) Preload(entries []ManifestEntry, logger *log.Logger) {
	for _, e := range entries {
		if _, err := c.Clip(e.Key); err != nil && logger != nil {
			logger.Printf("[anim] %s unavailable: %v", e.Key, err)
		}
	}
}

// Clip returns the metadata for key, loading it if it is not cached.
func (c *Catalog) Clip(key string) (Clip, error) {
	if clip, ok := c.clips[key]; ok {
		return clip, nil
	}
	clip, err := LoadMetadata(c.fsys, key, "")
	if err != nil {
		c.failed[key] = err
		return Clip{}, err
	}
	delete(c.failed, key)
	c.clips[key] = clip
	return clip, nil
}

// Failed lists keys whose last load failed.
func (c *Catalog) Failed() []string {
	keys := make([]string, 0, len(c.failed))
	for k := range c.failed {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
