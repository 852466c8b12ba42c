package avcodec

// cached holds a lazily read field value. The zero value is empty.
type cached[T any] struct {
	v  T
	ok bool
}

func (c *cached[T]) get(load func() T) T {
	if !c.ok {
		c.v = load()
		c.ok = true
	}
	return c.v
}

func (c *cached[T]) set(v T) {
	c.v = v
	c.ok = true
}

func (c *cached[T]) reset() {
	var zero T
	c.v = zero
	c.ok = false
}
