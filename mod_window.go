package atrium

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
)

// Platform callbacks never mutate game state directly: they append to the
// WindowState mailbox, and the input pump drains it once per tick. That
// pins all platform-driven mutation to one point in the frame and keeps the
// arrival order of key, button, cursor and resize events.

type windowEventKind int

const (
	eventKeyDown windowEventKind = iota
	eventKeyUp
	eventCursorMove
	eventResize
	eventCloseRequest
)

type windowEvent struct {
	kind   windowEventKind
	key    Key
	x, y   float64
	width  int
	height int
}

var errPointerUnavailable = errors.New("pointer capture unavailable")

type WindowState struct {
	win   *glfw.Window
	title string

	Width  int
	Height int

	// Resized is set by the pump when a resize event drains and cleared by
	// the renderer once the surface matches again.
	Resized bool

	events    []windowEvent
	captured  bool
	destroyed bool

	cursorSeen bool
}

// Capture grabs the pointer for look input. Fails once the window is gone;
// callers treat a failure as retryable and stay unlocked.
func (s *WindowState) Capture() error {
	if s.destroyed || s.win == nil {
		return errPointerUnavailable
	}
	s.win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	s.captured = true
	// Forget the last cursor position so the first captured sample does not
	// turn into a huge look delta.
	s.cursorSeen = false
	return nil
}

func (s *WindowState) Release() {
	if s.win != nil && !s.destroyed {
		s.win.SetInputMode(glfw.CursorMode, glfw.CursorNormal)
	}
	s.captured = false
}

func (s *WindowState) Captured() bool {
	return s.captured
}

func (s *WindowState) enqueue(ev windowEvent) {
	s.events = append(s.events, ev)
}

func (s *WindowState) drainEvents() []windowEvent {
	evs := s.events
	s.events = nil
	return evs
}

func (s *WindowState) bindCallbacks() {
	s.win.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		k, ok := translateGlfwKey(key)
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			s.enqueue(windowEvent{kind: eventKeyDown, key: k})
		case glfw.Release:
			s.enqueue(windowEvent{kind: eventKeyUp, key: k})
		}
	})
	s.win.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		k, ok := translateGlfwButton(button)
		if !ok {
			return
		}
		switch action {
		case glfw.Press:
			s.enqueue(windowEvent{kind: eventKeyDown, key: k})
		case glfw.Release:
			s.enqueue(windowEvent{kind: eventKeyUp, key: k})
		}
	})
	s.win.SetCursorPosCallback(func(w *glfw.Window, x float64, y float64) {
		s.enqueue(windowEvent{kind: eventCursorMove, x: x, y: y})
	})
	s.win.SetFramebufferSizeCallback(func(w *glfw.Window, width int, height int) {
		s.enqueue(windowEvent{kind: eventResize, width: width, height: height})
	})
}

func (s *WindowState) unbindCallbacks() {
	s.win.SetKeyCallback(nil)
	s.win.SetMouseButtonCallback(nil)
	s.win.SetCursorPosCallback(nil)
	s.win.SetFramebufferSizeCallback(nil)
}

// teardown releases the pointer, unbinds every callback and destroys the
// window. Safe to call more than once; later calls are no-ops.
func (s *WindowState) teardown() {
	if s.destroyed {
		return
	}
	if s.win != nil {
		s.Release()
		s.unbindCallbacks()
		s.win.Destroy()
		s.win = nil
		glfw.Terminate()
	}
	s.destroyed = true
	s.captured = false
	s.events = nil
}

func createWindowState(width int, height int, title string) *WindowState {
	// glfw and wgpu surfaces are main-thread only.
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		panic(fmt.Errorf("init glfw: %w", err))
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		panic(fmt.Errorf("create window: %w", err))
	}

	s := &WindowState{
		win:    win,
		title:  title,
		Width:  width,
		Height: height,
	}
	s.bindCallbacks()
	return s
}

// PlatformWindowModule owns the single shared glfw window. Install is
// idempotent: an existing WindowState resource is reused so renderer and
// input modules can both pull the window in.
type PlatformWindowModule struct {
	Width  int
	Height int
	Title  string
}

func NewPlatformWindow(width, height int, title string) *PlatformWindowModule {
	if width <= 0 {
		width = 1280
	}
	if height <= 0 {
		height = 720
	}
	if title == "" {
		title = "Atrium"
	}
	return &PlatformWindowModule{Width: width, Height: height, Title: title}
}

func (m PlatformWindowModule) Install(app *App, cmd *Commands) {
	t := reflect.TypeOf((*WindowState)(nil)).Elem()
	if _, ok := app.resources[t]; ok {
		return
	}

	app.addResources(createWindowState(m.Width, m.Height, m.Title))
	app.UseSystem(System(pollWindowSystem).InStage(PreUpdate).RunAlways())
	if app.stateful {
		app.UseSystem(System(windowTeardownSystem).InStage(Finale).InState(OnExit(ModeShutdown)))
	}
}

func pollWindowSystem(s *WindowState) {
	if s.destroyed || s.win == nil {
		return
	}
	glfw.PollEvents()
	if s.win.ShouldClose() {
		s.enqueue(windowEvent{kind: eventCloseRequest})
	}
}

func windowTeardownSystem(s *WindowState) {
	s.teardown()
}
