package mpd

// Counter issues monotonically increasing ids. The builder shares
// one counter between all its periods so numbering stays unique
// across the whole manifest.
type Counter struct {
	next uint32
}

// NewCounter returns a counter starting from zero.
func NewCounter() *Counter {
	return &Counter{}
}

// Next returns the next id.
func (c *Counter) Next() uint32 {
	v := c.next
	c.next++

	return v
}
