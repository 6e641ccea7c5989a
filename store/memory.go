package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	forecaster "github.com/gamyers/solar-697"
	"github.com/gamyers/solar-697/timedataset"
)

// MemoryStore holds series in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	series  map[string]map[string]*timedataset.TimeDataset
	locales map[string]forecaster.Locale
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		series:  make(map[string]map[string]*timedataset.TimeDataset),
		locales: make(map[string]forecaster.Locale),
	}
}

// Add stores a copy of the series under the zipcode and feature, replacing any previous one
func (s *MemoryStore) Add(zipcode, feature string, td *timedataset.TimeDataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	features, exists := s.series[zipcode]
	if !exists {
		features = make(map[string]*timedataset.TimeDataset)
		s.series[zipcode] = features
	}
	features[feature] = td.Copy()
}

func (s *MemoryStore) SetLocale(locale forecaster.Locale) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locales[locale.Zipcode] = locale
}

// Series returns a copy of the stored series
func (s *MemoryStore) Series(ctx context.Context, zipcode, feature string) (*timedataset.TimeDataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	features, exists := s.series[zipcode]
	if !exists {
		return nil, fmt.Errorf("zipcode %s, %w", zipcode, forecaster.ErrUnknownLocation)
	}
	td, exists := features[feature]
	if !exists {
		return nil, fmt.Errorf("feature %s, %w", feature, forecaster.ErrUnknownFeature)
	}
	return td.Copy(), nil
}

// FeatureNames lists the stored features of a zipcode in lexical order
func (s *MemoryStore) FeatureNames(ctx context.Context, zipcode string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	features, exists := s.series[zipcode]
	if !exists {
		return nil, fmt.Errorf("zipcode %s, %w", zipcode, forecaster.ErrUnknownLocation)
	}
	names := make([]string, 0, len(features))
	for name := range features {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) Locale(ctx context.Context, zipcode string) (forecaster.Locale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	locale, exists := s.locales[zipcode]
	if !exists {
		return forecaster.Locale{}, fmt.Errorf("zipcode %s, %w", zipcode, forecaster.ErrUnknownLocation)
	}
	return locale, nil
}

// Zipcodes lists every zipcode with at least one series in lexical order
func (s *MemoryStore) Zipcodes(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	zipcodes := make([]string, 0, len(s.series))
	for z := range s.series {
		zipcodes = append(zipcodes, z)
	}
	sort.Strings(zipcodes)
	return zipcodes, nil
}
