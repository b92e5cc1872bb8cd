// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"path/filepath"

	"fspdf/internal/app"
	"fspdf/internal/log"
	"fspdf/internal/version"
	"fspdf/ui/canvas"
	"fspdf/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
)

const (
	defaultWidth  = 900
	defaultHeight = 1000
)

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app     fyne.App
	session *app.Session
	prefs   *prefs.Prefs

	canvas    *canvas.PageCanvas
	modes     *widget.RadioGroup
	text      *widget.Entry
	pageLabel *widget.Label
	statusBar *widget.Label
	prevBtn   *widget.Button
	nextBtn   *widget.Button

	// dirty is set by edits and cleared by a successful save.
	dirty bool
}

// New creates a new main window for session.
func New(fyneApp fyne.App, session *app.Session, p *prefs.Prefs) *MainWindow {
	win := fyneApp.NewWindow("fspdf - " + filepath.Base(session.PDFPath()))

	mw := &MainWindow{
		Window:  win,
		app:     fyneApp,
		session: session,
		prefs:   p,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.restorePrefs()
	mw.updatePageLabel(session.PageIndex())

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.New(mw.session)
	mw.canvas.OnError(func(err error) {
		dialog.ShowError(err, mw.Window)
	})

	labels := make([]string, len(app.Modes))
	for i, m := range app.Modes {
		labels[i] = m.String()
	}
	mw.modes = widget.NewRadioGroup(labels, mw.onModeSelected)
	mw.modes.Required = true
	mw.modes.SetSelected(app.ModeOff.String())

	mw.text = widget.NewMultiLineEntry()
	mw.text.SetPlaceHolder("Text to place in Fill mode")
	mw.text.SetMinRowsVisible(3)
	mw.text.OnChanged = func(s string) {
		mw.canvas.Do(func(s2 *app.Session) { s2.SetPendingText(s) })
	}

	mw.pageLabel = widget.NewLabel("")
	mw.prevBtn = widget.NewButton("Previous", mw.onPrevious)
	mw.nextBtn = widget.NewButton("Next", mw.onNext)
	saveBtn := widget.NewButton("Save", mw.onSave)
	saveBtn.Importance = widget.HighImportance

	side := container.NewVBox(
		widget.NewLabelWithStyle("Mode", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		mw.modes,
		widget.NewSeparator(),
		widget.NewLabelWithStyle("Text", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		mw.text,
		widget.NewSeparator(),
		mw.pageLabel,
		container.NewGridWithColumns(2, mw.prevBtn, mw.nextBtn),
		widget.NewSeparator(),
		saveBtn,
	)

	mw.statusBar = widget.NewLabel("Ready")

	split := container.NewHSplit(
		container.NewPadded(side),
		mw.canvas,
	)
	split.SetOffset(0.2)

	content := container.NewBorder(
		nil,                               // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		split,                             // center
	)

	mw.SetContent(content)
	mw.Canvas().SetOnTypedKey(mw.onKey)
	mw.SetCloseIntercept(mw.onClose)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Save", mw.onSave),
	)

	editMenu := fyne.NewMenu("Edit",
		fyne.NewMenuItem("Delete Selected", mw.onDeleteSelected),
	)

	pageMenu := fyne.NewMenu("Page",
		fyne.NewMenuItem("Previous", mw.onPrevious),
		fyne.NewMenuItem("Next", mw.onNext),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, editMenu, pageMenu, helpMenu))
}

// setupEventHandlers registers for session events. They fire on the
// goroutine that changed the session, which is always a UI callback.
func (mw *MainWindow) setupEventHandlers() {
	mw.session.On(app.EventPageChanged, func(data interface{}) {
		if index, ok := data.(int); ok {
			mw.updatePageLabel(index)
		}
	})
	mw.session.On(app.EventAnnotationsChanged, func(data interface{}) {
		mw.dirty = true
		mw.statusBar.SetText(fmt.Sprintf("Page %d: %d annotations", mw.session.PageIndex()+1, mw.session.Page().Len()))
	})
	mw.session.On(app.EventModeChanged, func(data interface{}) {
		if m, ok := data.(app.Mode); ok {
			mw.statusBar.SetText("Mode: " + m.String())
		}
	})
	mw.session.On(app.EventSaved, func(data interface{}) {
		mw.dirty = false
		if path, ok := data.(string); ok {
			mw.statusBar.SetText("Saved " + path)
		}
	})
}

func (mw *MainWindow) restorePrefs() {
	w := mw.prefs.FloatWithFallback(prefs.KeyWindowWidth, defaultWidth)
	h := mw.prefs.FloatWithFallback(prefs.KeyWindowHeight, defaultHeight)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))

	if m, ok := app.ParseMode(mw.prefs.String(prefs.KeyMode)); ok {
		mw.modes.SetSelected(m.String())
	}
	mw.text.SetText(mw.prefs.String(prefs.KeyLastText))
}

// SavePreferences stores the window geometry, mode and text.
func (mw *MainWindow) SavePreferences() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	mw.prefs.SetString(prefs.KeyMode, mw.modes.Selected)
	mw.prefs.SetString(prefs.KeyLastText, mw.text.Text)
	if err := mw.prefs.Save(); err != nil {
		log.Warning.Printf("save preferences %s: %v", mw.prefs.Path(), err)
	}
}

// updatePageLabel must not take the canvas lock: it runs from session
// events.
func (mw *MainWindow) updatePageLabel(index int) {
	count := len(mw.session.Pages())
	mw.pageLabel.SetText(fmt.Sprintf("Page %d of %d", index+1, count))
	setEnabled(mw.prevBtn, index > 0)
	setEnabled(mw.nextBtn, index < count-1)
}

func setEnabled(b *widget.Button, enabled bool) {
	if enabled {
		b.Enable()
	} else {
		b.Disable()
	}
}

func (mw *MainWindow) onModeSelected(label string) {
	m, ok := app.ParseMode(label)
	if !ok {
		return
	}
	mw.canvas.Do(func(s *app.Session) { s.SetMode(m) })
}

func (mw *MainWindow) onPrevious() {
	mw.canvas.Do(func(s *app.Session) { s.PreviousPage() })
}

func (mw *MainWindow) onNext() {
	mw.canvas.Do(func(s *app.Session) { s.NextPage() })
}

func (mw *MainWindow) onDeleteSelected() {
	mw.canvas.Do(func(s *app.Session) { s.DeleteSelected() })
}

func (mw *MainWindow) onKey(ev *fyne.KeyEvent) {
	switch ev.Name {
	case fyne.KeyDelete, fyne.KeyBackspace:
		mw.onDeleteSelected()
	case fyne.KeyPageUp, fyne.KeyLeft:
		mw.onPrevious()
	case fyne.KeyPageDown, fyne.KeyRight:
		mw.onNext()
	}
}

func (mw *MainWindow) onSave() {
	var (
		out string
		err error
	)
	mw.statusBar.SetText("Saving...")
	mw.canvas.Do(func(s *app.Session) {
		out, err = s.Save(context.Background())
	})
	if err != nil {
		log.Error.Printf("save: %v", err)
		mw.statusBar.SetText("Save failed")
		dialog.ShowError(err, mw.Window)
		return
	}
	dialog.ShowInformation("Saved", "Signed PDF written to\n"+out, mw.Window)
}

func (mw *MainWindow) onClose() {
	mw.SavePreferences()
	if !mw.dirty {
		mw.Close()
		return
	}
	dialog.ShowConfirm("Unsaved changes",
		"The annotations have not been saved. Quit anyway?",
		func(quit bool) {
			if quit {
				mw.Close()
			}
		}, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About fspdf",
		fmt.Sprintf("fspdf v%s\n\n"+
			"Fill and sign PDF documents.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
