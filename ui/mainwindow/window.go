// Package mainwindow provides the main application window.
package mainwindow

import (
	"fmt"
	goimage "image"
	_ "image/png"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"timview/internal/anim"
	"timview/internal/app"
	"timview/ui/prefs"
	"timview/ui/viewcanvas"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	_ "golang.org/x/image/tiff"
)

const zoomStep = 1.25

const maxRecentFiles = 8

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app    fyne.App
	state  *app.State
	prefs  *prefs.Prefs
	canvas *viewcanvas.ViewCanvas
	player *anim.Player

	fileList    *widget.List
	clutList    *widget.List
	playBtn     *widget.Button
	frameSlider *widget.Slider
	fpsSlider   *widget.Slider
	loopCheck   *widget.Check
	statusBar   *widget.Label

	watcher      *app.ExportWatcher
	showingFrame bool
}

// New creates the main window.
func New(fyneApp fyne.App, state *app.State, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("timview")

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.SetCloseIntercept(func() {
		mw.shutdown()
		win.Close()
	})
	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = viewcanvas.New()
	mw.canvas.OnZoomChange(func(zoom float64) {
		mw.updateStatus(fmt.Sprintf("Zoom %.2fx", zoom))
	})
	mw.canvas.OnPixel(func(ix, iy float64) {
		mw.updateStatus(fmt.Sprintf("Pixel (%d, %d)", int(ix), int(iy)))
	})

	mw.player = anim.NewPlayer(func(frame *goimage.RGBA, idx int) {
		// Recenter only when switching from the sheet to frame display;
		// later frames keep the user's scroll.
		recenter := !mw.showingFrame
		mw.showingFrame = true
		mw.canvas.SetImage(frame, recenter)
		// Track the slider without re-triggering a scrub.
		mw.frameSlider.Value = float64(idx)
		mw.frameSlider.Refresh()
	})
	mw.player.SetFPS(mw.prefs.AnimationFPS(anim.DefaultFPS))
	mw.player.SetLoop(mw.prefs.AnimationLoop(true))

	mw.fileList = widget.NewList(
		func() int { return len(mw.state.FileLabels()) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(mw.state.FileLabels()[i])
		},
	)
	mw.fileList.OnSelected = func(i widget.ListItemID) {
		if err := mw.state.SelectFile(i); err != nil {
			mw.updateStatus(err.Error())
		}
	}

	mw.clutList = widget.NewList(
		func() int { return len(mw.state.CLUTLabels()) },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(i widget.ListItemID, o fyne.CanvasObject) {
			o.(*widget.Label).SetText(mw.state.CLUTLabels()[i])
		},
	)
	mw.clutList.OnSelected = func(i widget.ListItemID) {
		if err := mw.state.ApplyCLUT(i); err != nil {
			mw.updateStatus(err.Error())
		}
	}

	mw.statusBar = widget.NewLabel("Ready")

	lists := container.NewVSplit(
		container.NewBorder(widget.NewLabel("Files"), nil, nil, nil, mw.fileList),
		container.NewBorder(widget.NewLabel("CLUTs"), nil, nil, nil, mw.clutList),
	)

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		mw.createAnimBar(),
		nil,
		nil,
		mw.canvas,
	)

	split := container.NewHSplit(lists, canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
	mw.Resize(fyne.NewSize(1100, 750))
}

// createToolbar creates the zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	zoomOutBtn := widget.NewButton("-", mw.onZoomOut)
	zoomInBtn := widget.NewButton("+", mw.onZoomIn)
	fitBtn := widget.NewButton("Fit", mw.onZoomFit)
	actualBtn := widget.NewButton("1:1", mw.onActualSize)

	return container.NewHBox(
		widget.NewLabel("Zoom:"),
		zoomOutBtn,
		zoomInBtn,
		fitBtn,
		actualBtn,
	)
}

// createAnimBar creates the animation transport controls.
func (mw *MainWindow) createAnimBar() fyne.CanvasObject {
	mw.playBtn = widget.NewButton("Play", mw.onTogglePlay)
	sheetBtn := widget.NewButton("Sheet", mw.onShowSheet)

	mw.frameSlider = widget.NewSlider(0, 0)
	mw.frameSlider.Step = 1
	mw.frameSlider.OnChanged = func(v float64) {
		if mw.player.Playing() {
			return
		}
		mw.player.Scrub(int(v))
	}

	mw.fpsSlider = widget.NewSlider(anim.MinFPS, anim.MaxFPS)
	mw.fpsSlider.Step = 0.5
	mw.fpsSlider.Value = mw.prefs.AnimationFPS(anim.DefaultFPS)
	mw.fpsSlider.OnChanged = func(v float64) {
		mw.player.SetFPS(v)
		mw.prefs.SetAnimationFPS(v)
	}

	mw.loopCheck = widget.NewCheck("Loop", func(on bool) {
		mw.player.SetLoop(on)
		mw.prefs.SetAnimationLoop(on)
	})
	mw.loopCheck.Checked = mw.prefs.AnimationLoop(true)

	return container.NewBorder(nil, nil,
		container.NewHBox(mw.playBtn, sheetBtn),
		container.NewHBox(widget.NewLabel("FPS"), mw.fpsSlider, mw.loopCheck),
		mw.frameSlider,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	openRecent := fyne.NewMenuItem("Open Recent", nil)
	openRecent.ChildMenu = mw.recentMenu()

	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open TIM...", mw.onOpenTIM),
		fyne.NewMenuItem("Add TIM...", mw.onAddTIM),
		openRecent,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save TIM As...", mw.onSaveTIMAs),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Sheet PNG...", mw.onExportSheetPNG),
		fyne.NewMenuItem("Export Indices PNG...", mw.onExportIndices),
		fyne.NewMenuItem("Import Indices PNG...", mw.onImportIndices),
		fyne.NewMenuItem("Import True-Color Image...", mw.onImportTrueColor),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() {
			mw.shutdown()
			mw.app.Quit()
		}),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.onZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.onZoomOut),
		fyne.NewMenuItem("Zoom to Fit", mw.onZoomFit),
		fyne.NewMenuItem("Actual Size", mw.onActualSize),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// recentMenu builds the Open Recent submenu from the preferences.
func (mw *MainWindow) recentMenu() *fyne.Menu {
	recent := mw.prefs.RecentFiles()
	if len(recent) == 0 {
		empty := fyne.NewMenuItem("(empty)", nil)
		empty.Disabled = true
		return fyne.NewMenu("", empty)
	}

	items := make([]*fyne.MenuItem, 0, len(recent))
	for _, path := range recent {
		p := path
		items = append(items, fyne.NewMenuItem(filepath.Base(p), func() {
			mw.openPath(p)
		}))
	}
	return fyne.NewMenu("", items...)
}

// openPath loads one TIM as the new file set, recording it as recent.
func (mw *MainWindow) openPath(path string) {
	mw.prefs.AddRecentFile(path, maxRecentFiles)
	mw.setupMenus()
	if err := mw.state.LoadFiles([]string{path}); err != nil {
		dialog.ShowError(err, mw.Window)
	}
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventFilesChanged, func(interface{}) {
		mw.fileList.Refresh()
		mw.clutList.Refresh()
	})

	mw.state.On(app.EventFileSelected, func(data interface{}) {
		if i, ok := data.(int); ok {
			labels := mw.state.FileLabels()
			if i >= 0 && i < len(labels) {
				mw.updateStatus(labels[i])
			}
		}
	})

	mw.state.On(app.EventSheetChanged, func(data interface{}) {
		sheet, _ := data.(*goimage.RGBA)
		mw.player.Pause()
		mw.showingFrame = false
		mw.playBtn.SetText("Play")
		mw.canvas.SetImage(sheet, true)
		mw.canvas.ZoomFit()
	})

	mw.state.On(app.EventFramesChanged, func(data interface{}) {
		frames, layout := mw.state.FrameImages()
		mw.player.SetFrames(frames)
		mw.frameSlider.Max = float64(maxFrameIndex(len(frames)))
		mw.frameSlider.Refresh()
		if layout.Count > 1 {
			mw.updateStatus(fmt.Sprintf("%d frames of %dx%d", layout.Count, layout.FrameW, layout.FrameH))
		}
	})

	mw.state.On(app.EventIndicesImported, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Imported " + filepath.Base(path))
		}
	})

	mw.state.On(app.EventFileSaved, func(data interface{}) {
		if path, ok := data.(string); ok {
			mw.updateStatus("Saved " + path)
		}
	})
}

func maxFrameIndex(n int) int {
	if n <= 1 {
		return 0
	}
	return n - 1
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

// getLastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) getLastDir() fyne.ListableURI {
	path := mw.prefs.LastDirectory()
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}

// saveLastDir saves the directory of the given file path.
func (mw *MainWindow) saveLastDir(filePath string) {
	mw.prefs.SetLastDirectory(filepath.Dir(filePath))
}

func (mw *MainWindow) shutdown() {
	mw.player.Pause()
	mw.stopWatcher()
	if err := mw.prefs.Save(); err != nil {
		log.Printf("save preferences: %v", err)
	}
}

func (mw *MainWindow) stopWatcher() {
	if mw.watcher != nil {
		mw.watcher.Stop()
		mw.watcher = nil
	}
}

// Menu action handlers

func (mw *MainWindow) onOpenTIM() {
	mw.pickTIM(mw.openPath)
}

func (mw *MainWindow) onAddTIM() {
	mw.pickTIM(func(path string) {
		mw.prefs.AddRecentFile(path, maxRecentFiles)
		mw.setupMenus()
		if err := mw.state.AddFile(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	})
}

func (mw *MainWindow) pickTIM(open func(path string)) {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)
		open(path)
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".tim", ".TIM"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onSaveTIMAs() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		if !strings.EqualFold(filepath.Ext(path), ".tim") {
			path += ".tim"
		}
		mw.saveLastDir(path)
		if err := mw.state.SaveCurrentAs(path); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFileName("edited.tim")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onExportSheetPNG() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)
		if err := mw.state.ExportSheetPNG(path); err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.updateStatus("Exported " + path)
	}, mw.Window)
	fd.SetFileName("sheet.png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// onExportIndices exports the raw indices and then watches the PNG so
// saves from an external editor are pulled back in automatically.
func (mw *MainWindow) onExportIndices() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		writer.Close()
		path := writer.URI().Path()
		mw.saveLastDir(path)

		metaPath, err := mw.state.ExportIndices(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		mw.watchExport(path, metaPath)
		mw.updateStatus("Exported indices; watching for edits")
	}, mw.Window)
	fd.SetFileName("indices.png")
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) watchExport(pngPath, metaPath string) {
	mw.stopWatcher()
	w, err := app.NewExportWatcher(pngPath, 500*time.Millisecond)
	if err != nil {
		log.Printf("watch %s: %v", pngPath, err)
		return
	}
	w.OnChange(func(path string) {
		if err := mw.state.ImportIndices(path, metaPath); err != nil {
			log.Printf("re-import %s: %v", path, err)
		}
	})
	w.Start()
	mw.watcher = w
}

func (mw *MainWindow) onImportIndices() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		// The sidecar sits next to the PNG; importing works without it.
		metaPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
		if _, statErr := os.Stat(metaPath); statErr != nil {
			metaPath = ""
		}
		if err := mw.state.ImportIndices(path, metaPath); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onImportTrueColor() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		path := reader.URI().Path()
		mw.saveLastDir(path)

		f, err := os.Open(path)
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		img, _, err := goimage.Decode(f)
		f.Close()
		if err != nil {
			dialog.ShowError(err, mw.Window)
			return
		}
		if err := mw.state.ImportTrueColor(img); err != nil {
			dialog.ShowError(err, mw.Window)
		}
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png", ".tif", ".tiff"}))
	if loc := mw.getLastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onTogglePlay() {
	if mw.player.Playing() {
		mw.player.Pause()
		mw.playBtn.SetText("Play")
		return
	}
	frames, _ := mw.state.FrameImages()
	if len(frames) == 0 {
		mw.updateStatus("No frames to play")
		return
	}
	mw.player.Play()
	mw.playBtn.SetText("Pause")
}

func (mw *MainWindow) onShowSheet() {
	mw.player.Pause()
	mw.playBtn.SetText("Play")
	mw.showingFrame = false
	mw.canvas.SetImage(mw.state.SheetImage(), true)
}

func (mw *MainWindow) onZoomIn() {
	mw.canvas.SetZoom(mw.canvas.Zoom() * zoomStep)
}

func (mw *MainWindow) onZoomOut() {
	mw.canvas.SetZoom(mw.canvas.Zoom() / zoomStep)
}

func (mw *MainWindow) onZoomFit() {
	mw.canvas.ZoomFit()
}

func (mw *MainWindow) onActualSize() {
	mw.canvas.SetZoom(1.0)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About timview",
		"timview\n\n"+
			"A viewer and index editor for PlayStation TIM images.\n\n"+
			"Pan with the mouse, zoom with the wheel; export indices\n"+
			"as an indexed PNG, edit externally, and save to re-import.",
		mw.Window)
}
