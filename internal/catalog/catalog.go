// Package catalog maintains the ordered in-memory collection of internship
// listings: the seeded read path for everyone and the administrator write
// path. Administrator mutations live only for the lifetime of the process.
package catalog

import (
	"sync"
	"time"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

// Catalog is an ordered collection of listings keyed by id.
// New listings are prepended, matching the original portal behavior.
type Catalog struct {
	mu       sync.RWMutex
	listings []*models.Listing
	lastID   int64
	now      func() time.Time
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithListings replaces the default seed with the given listings.
func WithListings(listings []*models.Listing) Option {
	return func(c *Catalog) {
		c.listings = c.listings[:0]
		for _, listing := range listings {
			c.listings = append(c.listings, listing.Clone())
		}
	}
}

// WithClock overrides the time source used for id generation.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// New returns a catalog seeded with the canonical listings unless
// WithListings overrides them.
func New(optionsProto ...Option) *Catalog {
	c := &Catalog{
		listings: DefaultListings(),
		now:      time.Now,
	}
	for _, protoOption := range optionsProto {
		protoOption(c)
	}

	for _, listing := range c.listings {
		if listing.ID > c.lastID {
			c.lastID = listing.ID
		}
	}

	return c
}

// List returns the listings in collection order.
func (c *Catalog) List() []*models.Listing {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]*models.Listing, 0, len(c.listings))
	for _, listing := range c.listings {
		result = append(result, listing.Clone())
	}

	return result
}

// Find returns the listing with the given id.
func (c *Catalog) Find(id int64) (*models.Listing, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, listing := range c.listings {
		if listing.ID == id {
			return listing.Clone(), true
		}
	}

	return nil, false
}

// Exists reports whether a listing with the given id is in the catalog.
func (c *Catalog) Exists(id int64) bool {
	_, found := c.Find(id)
	return found
}

// Count returns the number of listings.
func (c *Catalog) Count() int64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return int64(len(c.listings))
}

// Create assigns a fresh id to the payload fields and prepends the listing.
func (c *Catalog) Create(payload models.ListingPayload) *models.Listing {
	c.mu.Lock()
	defer c.mu.Unlock()

	listing := &models.Listing{
		ID:          c.nextID(),
		Title:       payload.Title,
		Domain:      payload.Domain,
		Description: payload.Description,
		Duration:    payload.Duration,
		Stipend:     payload.Stipend,
		Skills:      models.NormalizeSkills(payload.Skills),
	}

	c.listings = append([]*models.Listing{listing}, c.listings...)

	return listing.Clone()
}

// Edit replaces all mutable fields of the listing with the given id.
// The id itself is immutable.
func (c *Catalog) Edit(id int64, payload models.ListingPayload) (*models.Listing, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, listing := range c.listings {
		if listing.ID != id {
			continue
		}
		listing.Title = payload.Title
		listing.Domain = payload.Domain
		listing.Description = payload.Description
		listing.Duration = payload.Duration
		listing.Stipend = payload.Stipend
		listing.Skills = models.NormalizeSkills(payload.Skills)

		return listing.Clone(), nil
	}

	return nil, models.ErrListingNotFound
}

// Delete removes the listing with the given id. Confirmation is the caller's
// concern; once invoked the removal is unconditional.
func (c *Catalog) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, listing := range c.listings {
		if listing.ID == id {
			c.listings = append(c.listings[:i], c.listings[i+1:]...)
			return nil
		}
	}

	return models.ErrListingNotFound
}

// nextID derives a unique id from the current timestamp, bumped past the
// last issued id so that ids stay unique within a single millisecond.
// Callers must hold the write lock.
func (c *Catalog) nextID() int64 {
	id := c.now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id

	return id
}
