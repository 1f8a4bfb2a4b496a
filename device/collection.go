package device

import (
	"strings"

	"pinhal/errcode"
)

// Named is implemented by every device type kept in a Collection.
type Named interface {
	Name() string
	Address() int
}

// Collection is an insertion-ordered registry of devices, keyed by both
// symbolic name (case-insensitive) and hardware address (used by the
// switch pipeline to resolve an incoming platform event back to its
// Switch). Registration rejects a duplicate on either key.
type Collection[T Named] struct {
	byName map[string]T
	byAddr map[int]T
	order  []T
}

// NewCollection returns an empty registry.
func NewCollection[T Named]() *Collection[T] {
	return &Collection[T]{
		byName: make(map[string]T),
		byAddr: make(map[int]T),
	}
}

// Add registers d, rejecting a duplicate name or a duplicate address.
// Registration happens during machine configuration, before
// machine.Config.Configure closes it; there is no Remove.
func (c *Collection[T]) Add(d T) error {
	key := strings.ToLower(d.Name())
	if _, exists := c.byName[key]; exists {
		return errcode.New(errcode.DuplicateDevice, "device.Add", "duplicate device name: "+d.Name())
	}
	if _, exists := c.byAddr[d.Address()]; exists {
		return errcode.New(errcode.DuplicateAddress, "device.Add", "duplicate hardware address for "+d.Name())
	}
	c.byName[key] = d
	c.byAddr[d.Address()] = d
	c.order = append(c.order, d)
	return nil
}

// ByName looks up a device by symbolic name, case-insensitively.
func (c *Collection[T]) ByName(name string) (T, bool) {
	d, ok := c.byName[strings.ToLower(name)]
	return d, ok
}

// ByAddress looks up a device by hardware address.
func (c *Collection[T]) ByAddress(addr int) (T, bool) {
	d, ok := c.byAddr[addr]
	return d, ok
}

// All returns every registered device in registration order.
func (c *Collection[T]) All() []T {
	out := make([]T, len(c.order))
	copy(out, c.order)
	return out
}

// Len reports how many devices are registered.
func (c *Collection[T]) Len() int { return len(c.order) }
