package engine

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/pageforge/backend/analyzer"
	"github.com/pageforge/backend/extractor"
	"github.com/pageforge/backend/stats"
)

// Cache entries with expiration
type analysisEntry struct {
	analysis  *analyzer.SEOAnalysis
	timestamp time.Time
}

type extractEntry struct {
	components []extractor.ExtractedComponent
	timestamp  time.Time
}

// CacheStats provides statistics about the service's caches
type CacheStats struct {
	AnalysisEntries     int           `json:"analysisEntries"`
	ExtractEntries      int           `json:"extractEntries"`
	AnalysisCacheHits   int           `json:"analysisCacheHits"`
	ExtractCacheHits    int           `json:"extractCacheHits"`
	AnalysisCacheMisses int           `json:"analysisCacheMisses"`
	ExtractCacheMisses  int           `json:"extractCacheMisses"`
	AnalysisCacheTTL    time.Duration `json:"analysisCacheTTL"`
	ExtractCacheTTL     time.Duration `json:"extractCacheTTL"`
}

// FixResult is the outcome of an analyze-and-fix round trip.
type FixResult struct {
	HTML         string `json:"html"`
	ScoreBefore  int    `json:"scoreBefore"`
	ScoreAfter   int    `json:"scoreAfter"`
	FixesApplied int    `json:"fixesApplied"`
}

// Service wraps the pure analysis, fix and extraction functions with
// result caching keyed by a digest of the input document. The underlying
// functions stay pure; identical inputs always produce identical results,
// which is what makes caching them safe.
type Service struct {
	cache             map[string]analysisEntry
	cacheMutex        sync.RWMutex
	cacheTTL          time.Duration
	extractCache      map[string]extractEntry
	extractCacheMutex sync.RWMutex
	extractCacheTTL   time.Duration
	maxCacheSize      int
	maxExtractSize    int
	lastCleanup       time.Time
	cleanupInterval   time.Duration
	stats             *stats.Storage
	done              chan struct{}
}

// New creates a new Service instance with statistics persisted under dataDir.
func New(dataDir string) (*Service, error) {
	statsStorage, err := stats.NewStorage(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize stats storage: %w", err)
	}

	svc := &Service{
		cache:           make(map[string]analysisEntry),
		cacheTTL:        30 * time.Minute,
		extractCache:    make(map[string]extractEntry),
		extractCacheTTL: 30 * time.Minute,
		maxCacheSize:    1000,
		maxExtractSize:  1000,
		cleanupInterval: 5 * time.Minute,
		lastCleanup:     time.Now(),
		stats:           statsStorage,
		done:            make(chan struct{}),
	}

	go svc.periodicCleanup()

	return svc, nil
}

// periodicCleanup removes expired entries from both caches periodically
func (s *Service) periodicCleanup() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.done:
			return
		}
	}
}

// cleanup removes expired entries and ensures cache size limits
func (s *Service) cleanup() {
	now := time.Now()

	s.cacheMutex.Lock()
	for key, entry := range s.cache {
		if now.Sub(entry.timestamp) > s.cacheTTL {
			delete(s.cache, key)
		}
	}
	if len(s.cache) > s.maxCacheSize {
		timestamps := make(map[string]time.Time, len(s.cache))
		for key, entry := range s.cache {
			timestamps[key] = entry.timestamp
		}
		for _, key := range oldestKeys(timestamps, len(s.cache)-s.maxCacheSize) {
			delete(s.cache, key)
		}
	}
	s.cacheMutex.Unlock()

	s.extractCacheMutex.Lock()
	for key, entry := range s.extractCache {
		if now.Sub(entry.timestamp) > s.extractCacheTTL {
			delete(s.extractCache, key)
		}
	}
	if len(s.extractCache) > s.maxExtractSize {
		timestamps := make(map[string]time.Time, len(s.extractCache))
		for key, entry := range s.extractCache {
			timestamps[key] = entry.timestamp
		}
		for _, key := range oldestKeys(timestamps, len(s.extractCache)-s.maxExtractSize) {
			delete(s.extractCache, key)
		}
	}
	s.extractCacheMutex.Unlock()

	s.cacheMutex.Lock()
	s.lastCleanup = now
	s.cacheMutex.Unlock()
}

// oldestKeys returns the n keys with the oldest timestamps
func oldestKeys(timestamps map[string]time.Time, n int) []string {
	keys := make([]string, 0, len(timestamps))
	for key := range timestamps {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return timestamps[keys[i]].Before(timestamps[keys[j]])
	})
	if n > len(keys) {
		n = len(keys)
	}
	return keys[:n]
}

// SetMaxCacheSize sets the maximum number of entries in the analysis cache
func (s *Service) SetMaxCacheSize(size int) {
	s.cacheMutex.Lock()
	s.maxCacheSize = size
	s.cacheMutex.Unlock()
	s.cleanup() // Run cleanup immediately if new size is smaller
}

// SetCacheTTL sets the TTL for both caches
func (s *Service) SetCacheTTL(ttl time.Duration) {
	s.cacheMutex.Lock()
	s.cacheTTL = ttl
	s.cacheMutex.Unlock()

	s.extractCacheMutex.Lock()
	s.extractCacheTTL = ttl
	s.extractCacheMutex.Unlock()
}

// ClearCache clears both result caches
func (s *Service) ClearCache() {
	s.cacheMutex.Lock()
	s.cache = make(map[string]analysisEntry)
	s.cacheMutex.Unlock()

	s.extractCacheMutex.Lock()
	s.extractCache = make(map[string]extractEntry)
	s.extractCacheMutex.Unlock()
}

// generateCacheKey creates a unique key for a document
func generateCacheKey(html string) string {
	hash := md5.Sum([]byte(html))
	return hex.EncodeToString(hash[:])
}

// IsCached checks if a document's analysis is in the cache and not expired
func (s *Service) IsCached(html string) bool {
	cacheKey := generateCacheKey(html)
	s.cacheMutex.RLock()
	defer s.cacheMutex.RUnlock()

	entry, found := s.cache[cacheKey]
	return found && time.Since(entry.timestamp) < s.cacheTTL
}

// Analyze returns the SEO analysis for the document, from cache when the
// same input was analyzed recently.
func (s *Service) Analyze(html string) *analyzer.SEOAnalysis {
	s.cacheMutex.RLock()
	stale := time.Since(s.lastCleanup) > s.cleanupInterval
	s.cacheMutex.RUnlock()
	if stale {
		go s.cleanup() // Run cleanup in background
	}

	cacheKey := generateCacheKey(html)
	s.cacheMutex.RLock()
	if entry, found := s.cache[cacheKey]; found {
		if time.Since(entry.timestamp) < s.cacheTTL {
			s.stats.IncrementStats(1, 0, 0, 0)
			s.cacheMutex.RUnlock()
			return entry.analysis
		}
	}
	s.cacheMutex.RUnlock()

	s.stats.IncrementStats(0, 1, 0, 0)

	analysis := analyzer.Analyze(html)

	s.cacheMutex.Lock()
	s.cache[cacheKey] = analysisEntry{
		analysis:  analysis,
		timestamp: time.Now(),
	}
	s.cacheMutex.Unlock()

	return analysis
}

// Fix analyzes the document, applies every available automatic fix and
// re-analyzes the result to report the score delta.
func (s *Service) Fix(html string) FixResult {
	before := s.Analyze(html)

	applied := 0
	for _, issue := range before.Issues {
		if issue.FixID != "" {
			applied++
		}
	}

	fixed := analyzer.ApplyFixes(html, before)
	after := s.Analyze(fixed)

	s.stats.IncrementFixes(applied)

	return FixResult{
		HTML:         fixed,
		ScoreBefore:  before.Score,
		ScoreAfter:   after.Score,
		FixesApplied: applied,
	}
}

// Extract returns the extracted components for the document, from cache
// when the same input was extracted recently.
func (s *Service) Extract(html string) []extractor.ExtractedComponent {
	cacheKey := generateCacheKey(html)
	s.extractCacheMutex.RLock()
	if entry, found := s.extractCache[cacheKey]; found {
		if time.Since(entry.timestamp) < s.extractCacheTTL {
			s.stats.IncrementStats(0, 0, 1, 0)
			s.extractCacheMutex.RUnlock()
			return entry.components
		}
	}
	s.extractCacheMutex.RUnlock()

	s.stats.IncrementStats(0, 0, 0, 1)

	components := extractor.Extract(html)

	s.extractCacheMutex.Lock()
	s.extractCache[cacheKey] = extractEntry{
		components: components,
		timestamp:  time.Now(),
	}
	s.extractCacheMutex.Unlock()

	return components
}

// GetCacheStats returns statistics about both caches
func (s *Service) GetCacheStats() CacheStats {
	currentStats := s.stats.GetCurrentStats()

	s.cacheMutex.RLock()
	analysisEntries := len(s.cache)
	analysisTTL := s.cacheTTL
	s.cacheMutex.RUnlock()

	s.extractCacheMutex.RLock()
	extractEntries := len(s.extractCache)
	extractTTL := s.extractCacheTTL
	s.extractCacheMutex.RUnlock()

	return CacheStats{
		AnalysisEntries:     analysisEntries,
		ExtractEntries:      extractEntries,
		AnalysisCacheHits:   currentStats.AnalysisCacheHits,
		ExtractCacheHits:    currentStats.ExtractCacheHits,
		AnalysisCacheMisses: currentStats.AnalysisCacheMisses,
		ExtractCacheMisses:  currentStats.ExtractCacheMisses,
		AnalysisCacheTTL:    analysisTTL,
		ExtractCacheTTL:     extractTTL,
	}
}

// GetStats returns the statistics storage instance
func (s *Service) GetStats() *stats.Storage {
	return s.stats
}

// Shutdown stops the cleanup goroutine, flushes statistics and drops the
// caches.
func (s *Service) Shutdown() error {
	if s == nil {
		return nil
	}

	if s.done != nil {
		close(s.done)
		s.done = nil
	}

	if s.stats != nil {
		if err := s.stats.Shutdown(); err != nil {
			return fmt.Errorf("failed to shutdown stats storage: %w", err)
		}
	}

	s.cacheMutex.Lock()
	s.cache = nil
	s.cacheMutex.Unlock()

	s.extractCacheMutex.Lock()
	s.extractCache = nil
	s.extractCacheMutex.Unlock()

	return nil
}
