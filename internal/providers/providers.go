// Package providers defines the external capability interfaces the planner
// consumes — elevation, weather, and no-fly-zone data — plus the
// process-wide caches and snapshotting around them.
//
// The elevation cache mirrors the original's per-process
// @lru_cache(maxsize=200000) over get_elevation; Go has no stdlib LRU, so
// this is backed by hashicorp/golang-lru/v2, the one cache library anywhere
// in the retrieved corpus (sourced from the mmp-vice example's go.mod).
package providers

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"

	"github.com/PossumXI/Asgard/Condor/internal/geom"
)

// ElevationProvider returns the elevation in meters above the ellipsoid for
// a geographic point. Implementations should return 0 on failure rather
// than propagating an error (spec §7: provider failure is recoverable).
type ElevationProvider interface {
	Elevation(lat, lon float64) float64
}

// WeatherSnapshot is the external weather read at a point.
type WeatherSnapshot struct {
	TempC       float64
	WindSpeedMs float64
	WindDegFrom float64
	HumidityPct float64
	Description string
	VisibilityM float64
}

// WeatherProvider returns the current weather at a point, or ok=false if
// unavailable.
type WeatherProvider interface {
	At(lat, lon float64) (snap WeatherSnapshot, ok bool)
}

// NoFlyProvider fetches obstacle polygons for a bounding box. Used only to
// populate PlanRequest inputs ahead of a plan call; never invoked from the
// planner's core pipeline (spec §6).
type NoFlyProvider interface {
	Fetch(minLat, minLon, maxLat, maxLon float64) []geom.Ring
}

const elevationCacheCapacity = 200_000

// ElevationCache memoizes elevation lookups across the process, keyed on
// rounded lat/lon, matching the original's process-wide lru_cache semantics.
// Safe for concurrent use.
type ElevationCache struct {
	mu       sync.Mutex
	cache    *lru.Cache[elevationKey, float64]
	upstream ElevationProvider
	log      *logrus.Logger
}

type elevationKey struct {
	lat, lon float64
}

// NewElevationCache wraps upstream with a process-wide memoization layer.
func NewElevationCache(upstream ElevationProvider, log *logrus.Logger) *ElevationCache {
	c, err := lru.New[elevationKey, float64](elevationCacheCapacity)
	if err != nil {
		// Capacity is a positive compile-time constant; New only fails on
		// non-positive size, so this branch is unreachable in practice.
		panic(fmt.Sprintf("providers: elevation cache init: %v", err))
	}
	return &ElevationCache{cache: c, upstream: upstream, log: log}
}

// Elevation returns the cached (or freshly fetched) elevation for (lat,
// lon), rounded to six decimal places (~0.1m) for cache-key stability. A nil
// upstream yields 0; a panicking upstream is not recovered here — the
// upstream provider itself is responsible for returning 0 on failure per the
// ElevationProvider contract.
func (c *ElevationCache) Elevation(lat, lon float64) float64 {
	key := elevationKey{lat: round6(lat), lon: round6(lon)}

	c.mu.Lock()
	if v, ok := c.cache.Get(key); ok {
		c.mu.Unlock()
		return v
	}
	c.mu.Unlock()

	var v float64
	if c.upstream != nil {
		v = c.upstream.Elevation(lat, lon)
	}

	c.mu.Lock()
	c.cache.Add(key, v)
	c.mu.Unlock()
	return v
}

func round6(v float64) float64 {
	const scale = 1e6
	return float64(int64(v*scale+sign(v)*0.5)) / scale
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

// WindState is the process-wide live wind reading, versioned so a plan can
// snapshot it once at start and ignore subsequent updates unless dynamic
// weather refresh is enabled (spec §5).
type WindState struct {
	mu      sync.RWMutex
	speedMs float64
	fromDeg float64
	version uint64
}

// Update sets the current wind reading and bumps the version.
func (w *WindState) Update(speedMs, fromDeg float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.speedMs = speedMs
	w.fromDeg = fromDeg
	w.version++
}

// Snapshot captures the current wind reading and its version.
type Snapshot struct {
	SpeedMs float64
	FromDeg float64
	Version uint64
}

// Snapshot returns the current wind state.
func (w *WindState) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return Snapshot{SpeedMs: w.speedMs, FromDeg: w.fromDeg, Version: w.version}
}
