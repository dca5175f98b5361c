package workouts

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/2beens/gymbalance/internal/telemetry/metrics"
	"github.com/2beens/gymbalance/pkg"

	"github.com/coocood/freecache"
	log "github.com/sirupsen/logrus"
)

const (
	megabyte        = 1024 * 1024
	summaryCacheTTL = 60 * 60 // seconds
)

// SummaryCache keeps marshalled summaries keyed by range and store version.
type SummaryCache struct {
	cache          *freecache.Cache
	metricsManager *metrics.Manager
}

func NewSummaryCache(sizeMegabytes int, metricsManager *metrics.Manager) *SummaryCache {
	return &SummaryCache{
		cache:          freecache.NewCache(sizeMegabytes * megabyte),
		metricsManager: metricsManager,
	}
}

func summaryCacheKey(start, end time.Time, storeVersion string) []byte {
	return []byte(fmt.Sprintf(
		"summary::%s::%s::%s",
		start.Format(pkg.DateLayout), end.Format(pkg.DateLayout), storeVersion,
	))
}

func (c *SummaryCache) Get(start, end time.Time, storeVersion string) (*Summary, bool) {
	summaryBytes, err := c.cache.Get(summaryCacheKey(start, end, storeVersion))
	if err != nil {
		c.count("miss")
		return nil, false
	}

	var summary Summary
	if err := json.Unmarshal(summaryBytes, &summary); err != nil {
		log.Errorf("summary cache: unmarshal cached summary: %s", err)
		c.count("miss")
		return nil, false
	}

	c.count("hit")
	return &summary, true
}

func (c *SummaryCache) Set(start, end time.Time, storeVersion string, summary *Summary) {
	summaryBytes, err := json.Marshal(summary)
	if err != nil {
		log.Errorf("summary cache: marshal summary: %s", err)
		return
	}
	if err := c.cache.Set(summaryCacheKey(start, end, storeVersion), summaryBytes, summaryCacheTTL); err != nil {
		log.Warnf("summary cache: set: %s", err)
	}
}

func (c *SummaryCache) Clear() {
	c.cache.Clear()
}

func (c *SummaryCache) count(result string) {
	if c.metricsManager != nil {
		c.metricsManager.CounterSummaryCache.WithLabelValues(result).Inc()
	}
}
