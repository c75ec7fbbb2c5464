// Package overlay tracks which panels are shown over the marketplace and
// derives the page scroll lock from them.
package overlay

import "sync"

type Name string

const (
	ProductDetail Name = "product"
	Checkout      Name = "checkout"
	Intent        Name = "intent"
	Dashboard     Name = "dashboard"
)

var All = []Name{ProductDetail, Checkout, Intent, Dashboard}

type State struct {
	Visible      map[Name]bool `json:"visible"`
	ScrollLocked bool          `json:"scroll_locked"`
}

// Controller keeps one independent flag per overlay. Overlays stack:
// opening one never closes another.
type Controller struct {
	mu      sync.Mutex
	visible map[Name]bool
	locked  bool
	onLock  func(locked bool)
}

// NewController calls onLock, if set, each time the scroll lock flips.
// It runs under the controller's lock and must not call back into it.
func NewController(onLock func(locked bool)) *Controller {
	return &Controller{
		visible: make(map[Name]bool, len(All)),
		onLock:  onLock,
	}
}

func (c *Controller) Open(n Name) {
	c.set(n, true)
}

// Close is a no-op for an overlay that is not open.
func (c *Controller) Close(n Name) {
	c.set(n, false)
}

func (c *Controller) set(n Name, open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.visible[n] = open
	c.syncLock()
}

func (c *Controller) IsOpen(n Name) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible[n]
}

func (c *Controller) AnyOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.anyOpen()
}

func (c *Controller) ScrollLocked() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.locked
}

// CloseAll hides every overlay and releases the scroll lock.
func (c *Controller) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, n := range All {
		c.visible[n] = false
	}
	c.syncLock()
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible := make(map[Name]bool, len(All))
	for _, n := range All {
		visible[n] = c.visible[n]
	}
	return State{Visible: visible, ScrollLocked: c.locked}
}

func (c *Controller) anyOpen() bool {
	for _, open := range c.visible {
		if open {
			return true
		}
	}
	return false
}

func (c *Controller) syncLock() {
	locked := c.anyOpen()
	if locked == c.locked {
		return
	}
	c.locked = locked
	if c.onLock != nil {
		c.onLock(locked)
	}
}
