package models

import "time"

// SystemMetrics is a lightweight snapshot of service counters for the metrics summary endpoint.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	RemoteCalls              uint64    `json:"remoteCalls"`
	RemoteFailures           uint64    `json:"remoteFailures"`
	Transitions              uint64    `json:"transitions"`
	NotificationFailures     uint64    `json:"notificationFailures"`
	CacheHits                uint64    `json:"cacheHits"`
	CacheMisses              uint64    `json:"cacheMisses"`
	CacheHitRatio            float64   `json:"cacheHitRatio"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}
