// Package app holds the shared application state: loaded TIM files,
// their extracted CLUTs, the current selection, and the rendered sheet
// and animation frames derived from it.
package app

import (
	"fmt"
	goimage "image"
	"image/png"
	"os"
	"sync"

	"timview/internal/anim"
	"timview/internal/tim"
)

// EventType identifies application events.
type EventType int

const (
	EventFilesChanged EventType = iota
	EventFileSelected
	EventCLUTApplied
	EventSheetChanged
	EventFramesChanged
	EventFileSaved
	EventIndicesImported
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// State is the application model. Fields are guarded by mu; UI code
// reads through the accessor methods.
type State struct {
	mu sync.RWMutex

	// Loaded files and the CLUT rows extracted from all of them. A CLUT
	// from one file may be applied to another; mismatched depths render
	// with out-of-range markers rather than failing.
	Files []*tim.Image
	CLUTs []*tim.CLUT

	Current *tim.Image
	Applied *tim.CLUT

	// Rendered sheet and the frame slicing derived from it.
	Sheet  *goimage.RGBA
	Layout anim.Layout
	Frames []*goimage.RGBA

	listeners map[EventType][]EventListener
}

// NewState creates an empty application state.
func NewState() *State {
	return &State{
		listeners: make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// LoadFiles parses the given TIM files and replaces the loaded set.
// Files that fail to parse are skipped; the first error is returned
// after the rest have loaded. The first file becomes current.
func (s *State) LoadFiles(paths []string) error {
	var files []*tim.Image
	var firstErr error

	for _, path := range paths {
		img, err := tim.ParseFile(path)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("load %s: %w", path, err)
			}
			continue
		}
		files = append(files, img)
	}

	s.mu.Lock()
	s.Files = files
	s.rebuildCLUTListLocked()
	s.mu.Unlock()

	s.Emit(EventFilesChanged, len(files))

	if len(files) > 0 {
		if err := s.SelectFile(0); err != nil && firstErr == nil {
			firstErr = err
		}
	} else {
		s.clearSelection()
	}
	return firstErr
}

// AddFile parses one TIM file and appends it to the loaded set.
func (s *State) AddFile(path string) error {
	img, err := tim.ParseFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	s.mu.Lock()
	s.Files = append(s.Files, img)
	s.rebuildCLUTListLocked()
	idx := len(s.Files) - 1
	s.mu.Unlock()

	s.Emit(EventFilesChanged, idx+1)
	return s.SelectFile(idx)
}

// SelectFile makes the file at index current, applies its first own
// CLUT (if any), and rebuilds the sheet and frames.
func (s *State) SelectFile(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.Files) {
		s.mu.Unlock()
		return fmt.Errorf("file index %d out of range", index)
	}
	s.Current = s.Files[index]
	s.Applied = firstOwnCLUT(s.Current, s.CLUTs)
	err := s.rebuildLocked()
	s.mu.Unlock()

	s.Emit(EventFileSelected, index)
	s.emitRebuilt()
	return err
}

// ApplyCLUT applies the CLUT at index (into the global CLUT list) to
// the current file and re-renders.
func (s *State) ApplyCLUT(index int) error {
	s.mu.Lock()
	if s.Current == nil {
		s.mu.Unlock()
		return fmt.Errorf("no file selected")
	}
	if index < 0 || index >= len(s.CLUTs) {
		s.mu.Unlock()
		return fmt.Errorf("clut index %d out of range", index)
	}
	s.Applied = s.CLUTs[index]
	err := s.rebuildLocked()
	s.mu.Unlock()

	s.Emit(EventCLUTApplied, index)
	s.emitRebuilt()
	return err
}

// Rebuild re-renders the sheet and frames for the current file, e.g.
// after its indices were edited in place.
func (s *State) Rebuild() error {
	s.mu.Lock()
	err := s.rebuildLocked()
	s.mu.Unlock()
	s.emitRebuilt()
	return err
}

// CurrentFile returns the selected TIM, or nil.
func (s *State) CurrentFile() *tim.Image {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Current
}

// AppliedCLUT returns the CLUT currently applied, or nil.
func (s *State) AppliedCLUT() *tim.CLUT {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Applied
}

// SheetImage returns the rendered sheet, or nil.
func (s *State) SheetImage() *goimage.RGBA {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Sheet
}

// FrameImages returns the sliced animation frames and their layout.
func (s *State) FrameImages() ([]*goimage.RGBA, anim.Layout) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Frames, s.Layout
}

// FileLabels returns display labels for the file list.
func (s *State) FileLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels := make([]string, len(s.Files))
	for i, f := range s.Files {
		labels[i] = fmt.Sprintf("%s (%s %dx%d)", f.Path, f.Mode, f.PixelWidth(), f.Height)
	}
	return labels
}

// CLUTLabels returns display labels for the CLUT list.
func (s *State) CLUTLabels() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels := make([]string, len(s.CLUTs))
	for i, c := range s.CLUTs {
		labels[i] = c.Label()
	}
	return labels
}

// SaveCurrentAs rebuilds the current TIM and writes it to path.
func (s *State) SaveCurrentAs(path string) error {
	s.mu.RLock()
	cur := s.Current
	s.mu.RUnlock()
	if cur == nil {
		return fmt.Errorf("no file selected")
	}

	data, err := cur.EncodeBytes()
	if err != nil {
		return fmt.Errorf("encode %s: %w", cur.Path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	s.Emit(EventFileSaved, path)
	return nil
}

// ExportSheetPNG writes the rendered sheet as a PNG.
func (s *State) ExportSheetPNG(path string) error {
	s.mu.RLock()
	sheet := s.Sheet
	s.mu.RUnlock()
	if sheet == nil {
		return fmt.Errorf("nothing rendered")
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, sheet)
}

// ExportIndices writes the current file's raw indices as an editable
// indexed PNG plus a JSON sidecar, returning the sidecar path.
func (s *State) ExportIndices(pngPath string) (string, error) {
	s.mu.RLock()
	cur := s.Current
	s.mu.RUnlock()
	if cur == nil {
		return "", fmt.Errorf("no file selected")
	}
	return cur.ExportIndices(pngPath)
}

// ImportIndices reads an edited indexed PNG back into the current file
// and re-renders.
func (s *State) ImportIndices(pngPath, metaPath string) error {
	s.mu.Lock()
	cur := s.Current
	s.mu.Unlock()
	if cur == nil {
		return fmt.Errorf("no file selected")
	}
	if err := cur.ImportIndices(pngPath, metaPath); err != nil {
		return err
	}
	s.Emit(EventIndicesImported, pngPath)
	return s.Rebuild()
}

// ImportTrueColor quantizes an arbitrary RGBA edit down to the current
// file's palette depth, rebuilds its CLUT, and re-renders.
func (s *State) ImportTrueColor(img goimage.Image) error {
	s.mu.Lock()
	cur := s.Current
	s.mu.Unlock()
	if cur == nil {
		return fmt.Errorf("no file selected")
	}
	if err := cur.ImportTrueColor(img); err != nil {
		return err
	}

	// The synthesized CLUT replaces the file's old rows.
	s.mu.Lock()
	s.rebuildCLUTListLocked()
	s.Applied = firstOwnCLUT(cur, s.CLUTs)
	s.mu.Unlock()

	s.Emit(EventIndicesImported, cur.Path)
	return s.Rebuild()
}

// rebuildCLUTListLocked regenerates the global CLUT list from all
// loaded files.
func (s *State) rebuildCLUTListLocked() {
	s.CLUTs = s.CLUTs[:0]
	for _, f := range s.Files {
		s.CLUTs = append(s.CLUTs, f.CLUTs()...)
	}
}

// rebuildLocked renders the sheet for the current selection and slices
// it into frames.
func (s *State) rebuildLocked() error {
	if s.Current == nil {
		s.Sheet = nil
		s.Frames = nil
		s.Layout = anim.Layout{}
		return nil
	}

	sheet, err := s.Current.Render(s.Applied)
	if err != nil {
		s.Sheet = nil
		s.Frames = nil
		s.Layout = anim.Layout{}
		return fmt.Errorf("render %s: %w", s.Current.Path, err)
	}
	s.Sheet = sheet
	s.Layout = anim.BestLayout(sheet)
	s.Frames = anim.Slice(sheet, s.Layout)
	return nil
}

func (s *State) emitRebuilt() {
	s.Emit(EventSheetChanged, s.SheetImage())
	frames, _ := s.FrameImages()
	s.Emit(EventFramesChanged, len(frames))
}

func (s *State) clearSelection() {
	s.mu.Lock()
	s.Current = nil
	s.Applied = nil
	s.Sheet = nil
	s.Frames = nil
	s.Layout = anim.Layout{}
	s.mu.Unlock()
	s.emitRebuilt()
}

// firstOwnCLUT picks the first CLUT extracted from the given file.
func firstOwnCLUT(img *tim.Image, cluts []*tim.CLUT) *tim.CLUT {
	for _, c := range cluts {
		if c.Source == img.Path {
			return c
		}
	}
	return nil
}
