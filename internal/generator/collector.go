package generator

import "quizforge/internal/domain"

// pairCollector accumulates at most limit pairs. Producers check Full before
// issuing another inference call, which bounds the work done per request.
type pairCollector struct {
	limit int
	pairs []domain.QAPair
	seen  map[domain.QAPair]struct{}
}

func newPairCollector(limit int) *pairCollector {
	if limit < 0 {
		limit = 0
	}
	return &pairCollector{
		limit: limit,
		pairs: make([]domain.QAPair, 0, limit),
		seen:  make(map[domain.QAPair]struct{}, limit),
	}
}

// Add appends p unless the collector is full. It reports whether p was kept.
func (c *pairCollector) Add(p domain.QAPair) bool {
	if c.Full() {
		return false
	}
	c.pairs = append(c.pairs, p)
	c.seen[p] = struct{}{}
	return true
}

// AddUnique is Add for pairs not collected before.
func (c *pairCollector) AddUnique(p domain.QAPair) bool {
	if _, dup := c.seen[p]; dup {
		return false
	}
	return c.Add(p)
}

func (c *pairCollector) Full() bool { return len(c.pairs) >= c.limit }

func (c *pairCollector) Remaining() int { return c.limit - len(c.pairs) }

func (c *pairCollector) Pairs() []domain.QAPair { return c.pairs }
