package texture

import (
	"image"

	"go.uber.org/zap"

	"github.com/Faultbox/mcassets/internal/cache"
	"github.com/Faultbox/mcassets/internal/logger"
	"github.com/Faultbox/mcassets/pkg/resource"
)

// DefaultCapacity is the decoded-texture cache size used when none is given.
const DefaultCapacity = 512

// Loader reads the raw bytes of a texture id.
type Loader interface {
	ReadTexture(loc resource.Location) ([]byte, error)
}

// Cache is a concurrency-safe decoded-texture cache. Missing or undecodable
// textures are cached as misses so they are only attempted once.
type Cache struct {
	src Loader
	lru *cache.LRU[resource.Location, *image.NRGBA]
}

// NewCache creates a texture cache over src.
func NewCache(src Loader, capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{
		src: src,
		lru: cache.NewLRU[resource.Location, *image.NRGBA](capacity),
	}
}

// Resolve returns the decoded first frame of a texture.
func (c *Cache) Resolve(loc resource.Location) (*image.NRGBA, bool) {
	img, _ := c.lru.GetOrCompute(loc, func() (*image.NRGBA, bool) {
		data, err := c.src.ReadTexture(loc)
		if err != nil {
			logger.Debug("texture unavailable", zap.Stringer("texture", loc), zap.Error(err))
			return nil, true
		}
		img, err := Decode(data)
		if err != nil {
			logger.Debug("texture undecodable", zap.Stringer("texture", loc), zap.Error(err))
			return nil, true
		}
		return img, true
	})
	return img, img != nil
}

// Stats returns cache statistics.
func (c *Cache) Stats() cache.Stats {
	return c.lru.Stats()
}

// Clear drops all decoded textures.
func (c *Cache) Clear() {
	c.lru.Clear()
}
