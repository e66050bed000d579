// Package ui renders display events in a terminal chat layout.
package ui

import (
	"fmt"

	"github.com/jroimartin/gocui"

	"github.com/yuuma-dev/translachat/internal/display"
)

const (
	outputViewName = "output_view"
	inputViewName  = "input_view"

	idleHint = " Type message and press Enter to send. Ctrl+C to quit. "
)

// GUI is the terminal chat interface. Rendered events append to the output
// view; lines typed into the input view are delivered on Input.
type GUI struct {
	gui    *gocui.Gui
	sender chan string
	title  string
}

// New creates a GUI for the local identity.
func New(name, lang string) (*GUI, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}

	return &GUI{
		gui:    g,
		sender: make(chan string, 16),
		title:  fmt.Sprintf(" TranslaChat - %s (%s) ", name, lang),
	}, nil
}

// Close releases the terminal.
func (ui *GUI) Close() {
	ui.gui.Close()
}

// Init sets up views and keybindings.
func (ui *GUI) Init() error {
	ui.gui.Highlight = true
	ui.gui.Cursor = true
	ui.gui.SelFgColor = gocui.ColorGreen

	ui.gui.SetManagerFunc(ui.layout)

	return ui.initKeybindings(ui.gui)
}

// MainLoop runs the UI until quit. It must run on the main goroutine.
func (ui *GUI) MainLoop() error {
	if err := ui.gui.MainLoop(); err != nil && err != gocui.ErrQuit {
		return err
	}
	return nil
}

// Stop asks the main loop to exit.
func (ui *GUI) Stop() {
	ui.gui.Update(func(g *gocui.Gui) error {
		return gocui.ErrQuit
	})
}

// Input returns the stream of lines typed by the user.
func (ui *GUI) Input() <-chan string {
	return ui.sender
}

// Render appends a display event to the output view.
func (ui *GUI) Render(ev display.Event) {
	var lines string
	switch ev.Kind {
	case display.KindOwn:
		lines = fmt.Sprintf("You: %s", ev.OriginalText)
	case display.KindPeer:
		lines = fmt.Sprintf("%s: %s", ev.Name, ev.TranslatedText)
		if ev.OriginalText != "" {
			lines += fmt.Sprintf("\n    (%s) %s", ev.SourceLang, ev.OriginalText)
		}
	case display.KindSystem:
		lines = fmt.Sprintf("--- %s ---", ev.TranslatedText)
	}

	ui.gui.Update(func(g *gocui.Gui) error {
		v, err := g.View(outputViewName)
		if err != nil {
			return err
		}
		fmt.Fprintln(v, lines)
		return nil
	})
}

// SetTranslating toggles the translating-in-progress indicator.
func (ui *GUI) SetTranslating(on bool) {
	ui.gui.Update(func(g *gocui.Gui) error {
		v, err := g.View(inputViewName)
		if err != nil {
			return err
		}
		if on {
			v.Title = " Translating... "
		} else {
			v.Title = idleHint
		}
		return nil
	})
}

func (ui *GUI) initKeybindings(g *gocui.Gui) error {
	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return err
	}

	if err := g.SetKeybinding(inputViewName, gocui.KeyEnter, gocui.ModNone, ui.submitInput()); err != nil {
		return err
	}

	return nil
}

func (ui *GUI) layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	outputViewSizeY := maxY - 4

	if v, err := g.SetView(outputViewName, 0, 0, maxX-1, outputViewSizeY); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}

		v.Autoscroll = true
		v.Title = ui.title
		v.Wrap = true
	}

	if v, err := g.SetView(inputViewName, 0, outputViewSizeY+1, maxX-1, maxY-1); err != nil {
		if err != gocui.ErrUnknownView {
			return err
		}

		if _, err := g.SetCurrentView(inputViewName); err != nil {
			return err
		}

		v.Title = idleHint
		v.Editable = true
		v.Wrap = true
	}

	return nil
}

func (ui *GUI) submitInput() func(g *gocui.Gui, v *gocui.View) error {
	return func(g *gocui.Gui, v *gocui.View) error {
		ui.sender <- v.Buffer()

		if err := v.SetCursor(0, 0); err != nil {
			return err
		}
		if err := v.SetOrigin(0, 0); err != nil {
			return err
		}
		v.Clear()

		return nil
	}
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}
