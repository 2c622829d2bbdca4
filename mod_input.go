package atrium

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

type Key int

const (
	KeyA Key = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeySpace
	KeyEnter
	KeyEscape
	KeyTab
	KeyBackspace
	KeyRight
	KeyLeft
	KeyDown
	KeyUp
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyShift
	KeyControl
	KeyLeftAlt
	MouseButtonLeft
	MouseButtonRight
	MouseButtonMiddle
	keyCount
)

// Input is the per-tick view of the keyboard and mouse, rebuilt by the pump
// from the window event mailbox. JustPressed/JustReleased hold edges for
// exactly one tick.
type Input struct {
	Pressed      [keyCount]bool
	JustPressed  [keyCount]bool
	JustReleased [keyCount]bool

	MouseX, MouseY           float64
	MouseDeltaX, MouseDeltaY float64
	MouseCaptured            bool

	WindowWidth, WindowHeight int

	CloseRequested bool
}

// Consume clears the press edge for a key so systems later in the frame
// treat the gesture as already handled. HUD widgets claim clicks this way.
func (in *Input) Consume(k Key) {
	in.JustPressed[k] = false
}

// WalkIntent is the four-direction movement state derived from held keys.
// It is the only thing the integrator reads from input.
type WalkIntent struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
}

type InputModule struct{}

func (mod InputModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Input{}, &WalkIntent{})
	app.UseSystem(
		System(inputPumpSystem).
			InStage(PreUpdate).
			RunAlways(),
	)
	if app.stateful {
		app.UseSystem(System(inputTeardownSystem).InStage(Finale).InState(OnExit(ModeShutdown)))
	}
}

// inputPumpSystem drains the window mailbox into Input and WalkIntent.
// Unrecognized keys never reach the mailbox, so every event here maps to a
// known control. Cursor deltas only accumulate while the pointer is
// captured, and only once a first captured sample anchors them.
func inputPumpSystem(s *WindowState, input *Input, intent *WalkIntent) {
	for k := Key(0); k < keyCount; k++ {
		input.JustPressed[k] = false
		input.JustReleased[k] = false
	}
	input.MouseDeltaX = 0
	input.MouseDeltaY = 0
	input.CloseRequested = false

	for _, ev := range s.drainEvents() {
		switch ev.kind {
		case eventKeyDown:
			if !input.Pressed[ev.key] {
				input.JustPressed[ev.key] = true
			}
			input.Pressed[ev.key] = true

		case eventKeyUp:
			if input.Pressed[ev.key] {
				input.JustReleased[ev.key] = true
			}
			input.Pressed[ev.key] = false

		case eventCursorMove:
			if s.captured && s.cursorSeen {
				input.MouseDeltaX += ev.x - input.MouseX
				input.MouseDeltaY += ev.y - input.MouseY
			}
			input.MouseX = ev.x
			input.MouseY = ev.y
			s.cursorSeen = true

		case eventResize:
			s.Width = ev.width
			s.Height = ev.height
			s.Resized = true

		case eventCloseRequest:
			input.CloseRequested = true
		}
	}

	input.MouseCaptured = s.captured
	input.WindowWidth = s.Width
	input.WindowHeight = s.Height

	intent.Forward = input.Pressed[KeyW] || input.Pressed[KeyUp]
	intent.Backward = input.Pressed[KeyS] || input.Pressed[KeyDown]
	intent.Left = input.Pressed[KeyA] || input.Pressed[KeyLeft]
	intent.Right = input.Pressed[KeyD] || input.Pressed[KeyRight]
}

func inputTeardownSystem(input *Input, intent *WalkIntent) {
	*input = Input{}
	*intent = WalkIntent{}
}

func translateGlfwKey(key glfw.Key) (Key, bool) {
	k, ok := glfwToKey[key]
	return k, ok
}

func translateGlfwButton(button glfw.MouseButton) (Key, bool) {
	switch button {
	case glfw.MouseButtonLeft:
		return MouseButtonLeft, true
	case glfw.MouseButtonRight:
		return MouseButtonRight, true
	case glfw.MouseButtonMiddle:
		return MouseButtonMiddle, true
	}
	return 0, false
}

var glfwToKey = map[glfw.Key]Key{
	glfw.KeyA:           KeyA,
	glfw.KeyB:           KeyB,
	glfw.KeyC:           KeyC,
	glfw.KeyD:           KeyD,
	glfw.KeyE:           KeyE,
	glfw.KeyF:           KeyF,
	glfw.KeyG:           KeyG,
	glfw.KeyH:           KeyH,
	glfw.KeyI:           KeyI,
	glfw.KeyJ:           KeyJ,
	glfw.KeyK:           KeyK,
	glfw.KeyL:           KeyL,
	glfw.KeyM:           KeyM,
	glfw.KeyN:           KeyN,
	glfw.KeyO:           KeyO,
	glfw.KeyP:           KeyP,
	glfw.KeyQ:           KeyQ,
	glfw.KeyR:           KeyR,
	glfw.KeyS:           KeyS,
	glfw.KeyT:           KeyT,
	glfw.KeyU:           KeyU,
	glfw.KeyV:           KeyV,
	glfw.KeyW:           KeyW,
	glfw.KeyX:           KeyX,
	glfw.KeyY:           KeyY,
	glfw.KeyZ:           KeyZ,
	glfw.Key0:           Key0,
	glfw.Key1:           Key1,
	glfw.Key2:           Key2,
	glfw.Key3:           Key3,
	glfw.Key4:           Key4,
	glfw.Key5:           Key5,
	glfw.Key6:           Key6,
	glfw.Key7:           Key7,
	glfw.Key8:           Key8,
	glfw.Key9:           Key9,
	glfw.KeySpace:       KeySpace,
	glfw.KeyEnter:       KeyEnter,
	glfw.KeyEscape:      KeyEscape,
	glfw.KeyTab:         KeyTab,
	glfw.KeyBackspace:   KeyBackspace,
	glfw.KeyRight:       KeyRight,
	glfw.KeyLeft:        KeyLeft,
	glfw.KeyDown:        KeyDown,
	glfw.KeyUp:          KeyUp,
	glfw.KeyF1:          KeyF1,
	glfw.KeyF2:          KeyF2,
	glfw.KeyF3:          KeyF3,
	glfw.KeyF4:          KeyF4,
	glfw.KeyF5:          KeyF5,
	glfw.KeyF6:          KeyF6,
	glfw.KeyF7:          KeyF7,
	glfw.KeyF8:          KeyF8,
	glfw.KeyF9:          KeyF9,
	glfw.KeyF10:         KeyF10,
	glfw.KeyF11:         KeyF11,
	glfw.KeyF12:         KeyF12,
	glfw.KeyLeftShift:   KeyShift,
	glfw.KeyLeftControl: KeyControl,
	glfw.KeyLeftAlt:     KeyLeftAlt,
}
