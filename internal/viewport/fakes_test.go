package viewport

import (
	"image"
	"sync"
	"time"
)

// fakeClock is a manually stepped time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) step(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// fakeTimer is a scheduler entry. Stop only marks it; the scheduler
// skips stopped entries when firing.
type fakeTimer struct {
	mu      sync.Mutex
	due     time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// fakeScheduler collects deferred callbacks and fires them when the
// test advances the clock. Callbacks run without the scheduler lock
// held, since they reschedule through AfterFunc.
type fakeScheduler struct {
	clk      *fakeClock
	mu       sync.Mutex
	timers   []*fakeTimer
	afterCnt int
}

func newFakeScheduler(clk *fakeClock) *fakeScheduler {
	return &fakeScheduler{clk: clk}
}

func (s *fakeScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &fakeTimer{due: s.clk.Now().Add(d), fn: fn}
	s.timers = append(s.timers, t)
	s.afterCnt++
	return t
}

// advance steps the clock and fires every due, unstopped timer in due
// order, including timers scheduled by the fired callbacks themselves.
func (s *fakeScheduler) advance(d time.Duration) {
	s.clk.step(d)
	for {
		t := s.takeDue()
		if t == nil {
			return
		}
		t.fn()
	}
}

func (s *fakeScheduler) takeDue() *fakeTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clk.Now()

	var best *fakeTimer
	for _, t := range s.timers {
		t.mu.Lock()
		ok := !t.stopped && !t.fired && !t.due.After(now)
		t.mu.Unlock()
		if !ok {
			continue
		}
		if best == nil || t.due.Before(best.due) {
			best = t
		}
	}
	if best != nil {
		best.mu.Lock()
		best.fired = true
		best.mu.Unlock()
	}
	return best
}

// pendingCount reports timers that are neither fired nor stopped.
func (s *fakeScheduler) pendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, t := range s.timers {
		t.mu.Lock()
		if !t.stopped && !t.fired {
			n++
		}
		t.mu.Unlock()
	}
	return n
}

// fakeCompositor records the layers it receives.
type fakeCompositor struct {
	mu sync.Mutex

	sharp          *image.RGBA
	sharpX, sharpY float64
	sharpSets      int

	preview     *image.RGBA
	previewSets int
	clears      int

	scrollX, scrollY float64
	regionW, regionH float64
}

func (c *fakeCompositor) SetSharp(img *image.RGBA, wx, wy float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sharp, c.sharpX, c.sharpY = img, wx, wy
	c.sharpSets++
}

func (c *fakeCompositor) SetPreview(img *image.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = img
	c.previewSets++
}

func (c *fakeCompositor) ClearPreview() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preview = nil
	c.clears++
}

func (c *fakeCompositor) SetScroll(x, y, rw, rh float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scrollX, c.scrollY = x, y
	c.regionW, c.regionH = rw, rh
}

// newTestViewport wires a viewport to fakes and a w x h gradient image.
func newTestViewport(imgW, imgH, canvasW, canvasH int) (*Viewport, *fakeCompositor, *fakeScheduler, *fakeClock) {
	clk := newFakeClock()
	sched := newFakeScheduler(clk)
	comp := &fakeCompositor{}

	v := New(comp, sched)
	v.SetClock(clk.Now)
	v.Resize(canvasW, canvasH)
	v.SetImage(gradientImage(imgW, imgH), true)
	return v, comp, sched, clk
}

func gradientImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(x)
			img.Pix[i+1] = uint8(y)
			img.Pix[i+2] = uint8(x ^ y)
			img.Pix[i+3] = 255
		}
	}
	return img
}
