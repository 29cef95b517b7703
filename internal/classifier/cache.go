package classifier

import (
	"fmt"
	"io/fs"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the number of remembered verdicts.
const DefaultCacheSize = 4096

const (
	createCacheFormat = "create classification cache: %w"
	statFileFormat    = "stat %s: %w"
)

type cacheKey struct {
	path         string
	sizeBytes    int64
	modifiedUnix int64
}

// CachedClassifier remembers verdicts keyed by path, size and modification
// time, so an edited file is always classified again. Failed classifications
// are not cached. It is safe for concurrent use.
type CachedClassifier struct {
	inner FileClassifier
	cache *lru.Cache[cacheKey, Inspection]
}

// NewCachedClassifier wraps inner with an LRU cache of the given size.
func NewCachedClassifier(inner FileClassifier, size int) (*CachedClassifier, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, cacheErr := lru.New[cacheKey, Inspection](size)
	if cacheErr != nil {
		return nil, fmt.Errorf(createCacheFormat, cacheErr)
	}
	return &CachedClassifier{inner: inner, cache: cache}, nil
}

// ClassifyFile returns the cached inspection when path is unchanged.
func (cached *CachedClassifier) ClassifyFile(path string, info fs.FileInfo) (Inspection, error) {
	if info == nil {
		statInfo, statErr := os.Stat(path)
		if statErr != nil {
			return Inspection{}, fmt.Errorf(statFileFormat, path, statErr)
		}
		info = statInfo
	}
	key := cacheKey{path: path, sizeBytes: info.Size(), modifiedUnix: info.ModTime().UnixNano()}
	if inspection, found := cached.cache.Get(key); found {
		return inspection, nil
	}
	inspection, classifyErr := cached.inner.ClassifyFile(path, info)
	if classifyErr != nil {
		return Inspection{}, classifyErr
	}
	cached.cache.Add(key, inspection)
	return inspection, nil
}

// Len reports the number of cached verdicts.
func (cached *CachedClassifier) Len() int {
	return cached.cache.Len()
}
