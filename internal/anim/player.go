package anim

import (
	"image"
	"sync"
	"time"
)

// FPS limits for playback.
const (
	MinFPS     = 0.5
	MaxFPS     = 60.0
	DefaultFPS = 8.0
)

// Player steps through a frame list on a timer and hands the current
// frame to a sink callback. The sink is invoked from a timer goroutine;
// UI callers are expected to marshal onto their event loop themselves.
type Player struct {
	mu      sync.Mutex
	frames  []*image.RGBA
	idx     int
	fps     float64
	loop    bool
	playing bool
	timer   *time.Timer
	sink    func(frame *image.RGBA, idx int)
}

// NewPlayer creates a stopped player delivering frames to sink.
func NewPlayer(sink func(frame *image.RGBA, idx int)) *Player {
	return &Player{fps: DefaultFPS, loop: true, sink: sink}
}

// SetFrames replaces the frame list, stops playback, and clamps the
// current index into the new list.
func (p *Player) SetFrames(frames []*image.RGBA) {
	p.mu.Lock()
	p.stopLocked()
	p.frames = frames
	if p.idx >= len(frames) {
		p.idx = 0
	}
	p.mu.Unlock()
}

// SetFPS sets the playback rate, clamped to [MinFPS, MaxFPS].
func (p *Player) SetFPS(fps float64) {
	if fps < MinFPS {
		fps = MinFPS
	}
	if fps > MaxFPS {
		fps = MaxFPS
	}
	p.mu.Lock()
	p.fps = fps
	p.mu.Unlock()
}

// SetLoop controls whether playback wraps at the last frame.
func (p *Player) SetLoop(loop bool) {
	p.mu.Lock()
	p.loop = loop
	p.mu.Unlock()
}

// Playing reports whether the player is advancing frames.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing
}

// Index returns the current frame index.
func (p *Player) Index() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}

// Play starts (or resumes) playback.
func (p *Player) Play() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.playing || len(p.frames) == 0 {
		return
	}
	p.playing = true
	p.scheduleLocked()
}

// Pause stops playback, keeping the current frame.
func (p *Player) Pause() {
	p.mu.Lock()
	p.stopLocked()
	p.mu.Unlock()
}

// Scrub jumps to frame i and delivers it immediately.
func (p *Player) Scrub(i int) {
	p.mu.Lock()
	if len(p.frames) == 0 {
		p.mu.Unlock()
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(p.frames) {
		i = len(p.frames) - 1
	}
	p.idx = i
	frame, idx, sink := p.frames[p.idx], p.idx, p.sink
	p.mu.Unlock()

	if sink != nil {
		sink(frame, idx)
	}
}

func (p *Player) stopLocked() {
	p.playing = false
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
}

func (p *Player) scheduleLocked() {
	delay := time.Duration(float64(time.Second) / p.fps)
	p.timer = time.AfterFunc(delay, p.tick)
}

func (p *Player) tick() {
	p.mu.Lock()
	if !p.playing || len(p.frames) == 0 {
		p.mu.Unlock()
		return
	}

	next := p.idx + 1
	if next >= len(p.frames) {
		if !p.loop {
			p.stopLocked()
			p.mu.Unlock()
			return
		}
		next = 0
	}
	p.idx = next
	frame, idx, sink := p.frames[p.idx], p.idx, p.sink
	p.scheduleLocked()
	p.mu.Unlock()

	if sink != nil {
		sink(frame, idx)
	}
}
