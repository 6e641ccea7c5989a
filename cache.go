package forecaster

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	"github.com/gamyers/solar-697/timedataset"
	lru "github.com/hashicorp/golang-lru/v2"
)

// SplitKey identifies a train/test split. The fingerprint changes whenever any timestamp or
// value of the series changes so stale splits are never served.
type SplitKey struct {
	Zipcode     string
	Feature     string
	Horizon     int
	Fingerprint uint64
}

// SplitCache memoizes train/test splits. It is owned by the caller and shared between
// Forecasters only if the caller does so. A nil *SplitCache disables caching.
type SplitCache struct {
	cache *lru.Cache[SplitKey, *timedataset.Split]
}

// NewSplitCache creates a cache holding at most size splits
func NewSplitCache(size int) (*SplitCache, error) {
	cache, err := lru.New[SplitKey, *timedataset.Split](size)
	if err != nil {
		return nil, err
	}
	return &SplitCache{cache: cache}, nil
}

// Fingerprint hashes the timestamps and values of the series
func Fingerprint(td *timedataset.TimeDataset) uint64 {
	h := xxhash.New()
	var buf [16]byte
	for i := 0; i < td.Len(); i++ {
		binary.LittleEndian.PutUint64(buf[:8], uint64(td.T[i].UnixNano()))
		binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(td.Y[i]))
		_, _ = h.Write(buf[:])
	}
	return h.Sum64()
}

// Split returns the split of td at horizon h, computing and storing it on a miss. The
// returned datasets are copies the caller may modify.
func (c *SplitCache) Split(zipcode, feature string, td *timedataset.TimeDataset, h int) (*timedataset.Split, error) {
	if c == nil {
		return td.Split(h)
	}
	key := SplitKey{
		Zipcode:     zipcode,
		Feature:     feature,
		Horizon:     h,
		Fingerprint: Fingerprint(td),
	}
	split, ok := c.cache.Get(key)
	if !ok {
		var err error
		split, err = td.Split(h)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, split)
	}
	return &timedataset.Split{
		Train: split.Train.Copy(),
		Test:  split.Test.Copy(),
	}, nil
}

// Len returns the number of cached splits
func (c *SplitCache) Len() int {
	if c == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge removes every cached split
func (c *SplitCache) Purge() {
	if c == nil {
		return
	}
	c.cache.Purge()
}
