package saga

import (
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/pressureprofile/rma-starter/internal/models"
)

// TicketCache holds parsed ticket summaries for the duration of a form
// session, so the live preview and the eventual submission don't each
// refetch the ticket from the tracker.
type TicketCache struct {
	cache *ttlcache.Cache[string, models.SupportTicketSummary]
}

// NewTicketCache creates a cache whose entries expire after ttl.
func NewTicketCache(ttl time.Duration) *TicketCache {
	return &TicketCache{
		cache: ttlcache.New(
			ttlcache.WithTTL[string, models.SupportTicketSummary](ttl),
		),
	}
}

// Start launches the background expiry loop.
func (t *TicketCache) Start() {
	go t.cache.Start()
}

// Stop halts the background expiry loop.
func (t *TicketCache) Stop() {
	t.cache.Stop()
}

// Get returns the cached summary for a ticket id, if present and not
// expired.
func (t *TicketCache) Get(ticketID string) (models.SupportTicketSummary, bool) {
	item := t.cache.Get(ticketID)
	if item == nil {
		return models.SupportTicketSummary{}, false
	}
	return item.Value(), true
}

// Put caches the summary for a ticket id.
func (t *TicketCache) Put(ticketID string, summary models.SupportTicketSummary) {
	t.cache.Set(ticketID, summary, ttlcache.DefaultTTL)
}
