package shell

import (
	"sync"
	"time"
)

// Tab identifies one of the five bottom-navigation pages.
type Tab string

const (
	TabHome      Tab = "home"
	TabRecipes   Tab = "recipes"
	TabRequests  Tab = "requests"
	TabBookmarks Tab = "bookmarks"
	TabProfile   Tab = "profile"
)

// TabOrder is the fixed left-to-right order of the bottom navigation.
var TabOrder = []Tab{TabHome, TabRecipes, TabRequests, TabBookmarks, TabProfile}

const (
	tabSwapDelay   = 150 * time.Millisecond
	tabSettleDelay = 50 * time.Millisecond
)

// Tabs is the bottom-tab switcher. A tab change is a two-stage animated
// swap: mark transitioning, wait, swap the active tab, wait again, clear
// transitioning. The sequencing is cosmetic, not a correctness boundary;
// a change requested mid-swap restarts the sequence against the new
// target (last write wins).
type Tabs struct {
	// SwapDelay and SettleDelay override the animation timings when set
	// before the first Change call. Zero means the defaults.
	SwapDelay   time.Duration
	SettleDelay time.Duration

	mu            sync.Mutex
	current       Tab
	transitioning bool
	gen           uint64 // bumped on every restart; stale timer callbacks check it
	swapTimer     *time.Timer
	settleTimer   *time.Timer
	onChange      func()
}

// NewTabs creates a Tabs controller resting on the home tab.
func NewTabs() *Tabs {
	return &Tabs{current: TabHome}
}

// SetOnChange registers a hook invoked after every visible state change.
func (t *Tabs) SetOnChange(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onChange = fn
}

// Current returns the active tab.
func (t *Tabs) Current() Tab {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Transitioning reports whether a swap is mid-flight.
func (t *Tabs) Transitioning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transitioning
}

// Change requests a switch to target. No-op when target is already the
// active tab or is not a known tab.
func (t *Tabs) Change(target Tab) {
	if !validTab(target) {
		return
	}

	t.mu.Lock()
	if target == t.current {
		t.mu.Unlock()
		return
	}

	// Restart any in-flight sequence against the new target. Stop cannot
	// retract a timer that has already fired, so each sequence also carries
	// the generation it was armed under; a callback from a superseded
	// sequence sees the mismatch and drops out.
	t.stopTimersLocked()
	t.gen++
	gen := t.gen
	t.transitioning = true

	swap := t.SwapDelay
	if swap == 0 {
		swap = tabSwapDelay
	}
	settle := t.SettleDelay
	if settle == 0 {
		settle = tabSettleDelay
	}

	t.swapTimer = time.AfterFunc(swap, func() {
		t.mu.Lock()
		if gen != t.gen {
			t.mu.Unlock()
			return
		}
		t.current = target
		t.settleTimer = time.AfterFunc(settle, func() {
			t.mu.Lock()
			if gen != t.gen {
				t.mu.Unlock()
				return
			}
			t.transitioning = false
			t.mu.Unlock()
			t.notify()
		})
		t.mu.Unlock()
		t.notify()
	})
	t.mu.Unlock()
	t.notify()
}

// Close cancels pending transition timers so they cannot fire against a
// torn-down shell.
func (t *Tabs) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimersLocked()
	t.gen++
	t.transitioning = false
}

func (t *Tabs) stopTimersLocked() {
	if t.swapTimer != nil {
		t.swapTimer.Stop()
		t.swapTimer = nil
	}
	if t.settleTimer != nil {
		t.settleTimer.Stop()
		t.settleTimer = nil
	}
}

func (t *Tabs) notify() {
	t.mu.Lock()
	fn := t.onChange
	t.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func validTab(tab Tab) bool {
	for _, known := range TabOrder {
		if tab == known {
			return true
		}
	}
	return false
}
