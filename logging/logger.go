package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"
)

// Environment variable name for controlling statistics visibility
const ENV_DEV_MODE = "DEV_MODE"

// Statistics represents the collected request statistics
type Statistics struct {
	UniqueVisitors map[string]time.Time `json:"uniqueVisitors"` // IP -> Last Visit Time
	Requests       map[string]int       `json:"requests"`       // Operation -> Count
	ErrorCount     int                  `json:"errorCount"`     // Number of failed requests
	AverageInput   float64              `json:"averageInputBytes"`
	AverageHandle  float64              `json:"averageHandleTime"` // Milliseconds
	TotalInput     float64              `json:"-"`
	TotalHandle    float64              `json:"-"`
	RequestCount   int                  `json:"-"`
	LastPersisted  time.Time            `json:"lastPersisted"`
	mutex          sync.RWMutex         `json:"-"`
}

var (
	stats *Statistics
	once  sync.Once
)

// Initialize creates or loads the statistics
func Initialize() *Statistics {
	once.Do(func() {
		stats = &Statistics{
			UniqueVisitors: make(map[string]time.Time),
			Requests:       make(map[string]int),
			LastPersisted:  time.Now(),
		}

		// Try to load existing statistics
		if err := stats.Load(); err != nil {
			fmt.Printf("Could not load existing statistics: %v\n", err)
		}
	})
	return stats
}

// TrackVisitor records a unique visitor
func (s *Statistics) TrackVisitor(ip string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.UniqueVisitors[ip] = time.Now()
}

// TrackRequest records one engine request: which operation ran, how large
// the submitted document was, how long handling took and whether it failed
func (s *Statistics) TrackRequest(operation string, inputBytes int, handleTime float64, hasError bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.Requests == nil {
		s.Requests = make(map[string]int)
	}
	s.Requests[operation]++

	if hasError {
		s.ErrorCount++
	}

	s.TotalInput += float64(inputBytes)
	s.TotalHandle += handleTime
	s.RequestCount++
	s.AverageInput = s.TotalInput / float64(s.RequestCount)
	s.AverageHandle = s.TotalHandle / float64(s.RequestCount)
}

// GetUniqueVisitorsCount returns the number of unique visitors in the last 24 hours
func (s *Statistics) GetUniqueVisitorsCount() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.recentVisitors()
}

// recentVisitors counts visitors seen in the last 24 hours; caller holds the lock
func (s *Statistics) recentVisitors() int {
	count := 0
	cutoff := time.Now().Add(-24 * time.Hour)

	for _, lastVisit := range s.UniqueVisitors {
		if lastVisit.After(cutoff) {
			count++
		}
	}

	return count
}

// GetTotalRequests returns the total number of engine requests tracked
func (s *Statistics) GetTotalRequests() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.RequestCount
}

// GetErrorRate returns the error rate as a percentage
func (s *Statistics) GetErrorRate() float64 {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.errorRate()
}

// errorRate computes the error percentage; caller holds the lock
func (s *Statistics) errorRate() float64 {
	if s.RequestCount == 0 {
		return 0
	}

	return (float64(s.ErrorCount) / float64(s.RequestCount)) * 100
}

// Save persists the statistics to a file
func (s *Statistics) Save() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.LastPersisted = time.Now()

	file, err := os.Create("statistics.json")
	if err != nil {
		return fmt.Errorf("could not create statistics file: %v", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode statistics: %v", err)
	}

	return nil
}

// Load reads the statistics from a file
func (s *Statistics) Load() error {
	file, err := os.Open("statistics.json")
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Not an error if file doesn't exist yet
		}
		return fmt.Errorf("could not open statistics file: %v", err)
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	if err := decoder.Decode(s); err != nil {
		return fmt.Errorf("could not decode statistics: %v", err)
	}

	return nil
}

// GetStatistics returns a copy of the current statistics. Per-operation
// counts are only exposed in development mode.
func (s *Statistics) GetStatistics() map[string]interface{} {
	if os.Getenv(ENV_DEV_MODE) != "true" {
		// In production, return limited statistics without per-operation detail
		s.mutex.RLock()
		defer s.mutex.RUnlock()

		return map[string]interface{}{
			"uniqueVisitors24h": s.recentVisitors(),
			"totalRequests":     s.RequestCount,
			"errorRate":         s.errorRate(),
			"averageInputBytes": s.AverageInput,
			"averageHandleTime": s.AverageHandle,
		}
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	requests := make(map[string]int, len(s.Requests))
	for op, count := range s.Requests {
		requests[op] = count
	}

	return map[string]interface{}{
		"uniqueVisitors24h": s.recentVisitors(),
		"totalRequests":     s.RequestCount,
		"errorRate":         s.errorRate(),
		"averageInputBytes": s.AverageInput,
		"averageHandleTime": s.AverageHandle,
		"requests":          requests,
	}
}
