package atrium

import (
	"reflect"
)

// The interaction modes double as the app states, so mode-gated systems
// (walking, picking consumption, HUD layout) hang off the scheduler instead
// of re-checking a flag. ModeShutdown is the final state: reaching it ends
// the run loop after the teardown systems fire.
const (
	ModeUnlocked State = iota
	ModeLocked
	ModeInspecting
	ModeShutdown
)

// PointerPort is the capture surface the session drives. The glfw window
// implements it; tests substitute fakes, including ones that deny capture.
type PointerPort interface {
	Capture() error
	Release()
	Captured() bool
}

// nopPointer always grants capture. Used when no window exists (headless
// runs) so the mode machine still works.
type nopPointer struct{ captured bool }

func (p *nopPointer) Capture() error { p.captured = true; return nil }
func (p *nopPointer) Release()       { p.captured = false }
func (p *nopPointer) Captured() bool { return p.captured }

// Session is the interaction core: current mode, what the gaze is on, and
// which exhibit is open. All transitions are synchronous methods on it, so
// the whole machine tests without a window; the ECS systems only feed it
// events and mirror Mode into the app state.
//
// Invariant: ActiveExhibit is non-nil exactly while Mode is ModeInspecting.
type Session struct {
	Mode          State
	HoveredId     string
	ActiveExhibit *Exhibit

	pointer PointerPort
	catalog *ExhibitCatalog
	log     Logger
}

func NewSession(pointer PointerPort, catalog *ExhibitCatalog, log Logger) *Session {
	if pointer == nil {
		pointer = &nopPointer{}
	}
	if log == nil {
		log = NewNopLogger()
	}
	return &Session{Mode: ModeUnlocked, pointer: pointer, catalog: catalog, log: log}
}

// AttemptActivate handles the primary gesture for the current mode.
//
// Unlocked: try to capture the pointer and lock. A platform that denies
// capture leaves the session unlocked - the warn is the only trace, and the
// next gesture simply retries. While an exhibit is still open the gesture
// is ignored; the modal owns the click until it is closed explicitly.
//
// Locked: open the hovered exhibit, if any. Opening releases the pointer
// deliberately, so the cursor is free for the modal.
//
// Inspecting: ignored. Clicks there belong to the HUD widgets.
func (s *Session) AttemptActivate() {
	switch s.Mode {
	case ModeUnlocked:
		if s.ActiveExhibit != nil {
			return
		}
		if err := s.pointer.Capture(); err != nil {
			s.log.Warnf("pointer capture denied: %v", err)
			return
		}
		s.Mode = ModeLocked

	case ModeLocked:
		if s.HoveredId == "" {
			return
		}
		ex, ok := s.catalog.ById(s.HoveredId)
		if !ok {
			s.log.Errorf("hovered exhibit %q not in catalog", s.HoveredId)
			s.HoveredId = ""
			return
		}
		s.ActiveExhibit = ex
		s.HoveredId = ""
		s.pointer.Release()
		s.Mode = ModeInspecting
	}
}

// HandleUnlockSignal reacts to the platform releasing the pointer lock
// (escape). Only meaningful while locked: in Inspecting the pointer was
// released deliberately and the open exhibit keeps the mode.
func (s *Session) HandleUnlockSignal() {
	if s.Mode != ModeLocked {
		return
	}
	s.pointer.Release()
	s.HoveredId = ""
	s.Mode = ModeUnlocked
}

// CloseInspection dismisses the open exhibit and returns to Unlocked with
// the cursor free. Re-locking takes a fresh activation gesture.
func (s *Session) CloseInspection() {
	if s.Mode != ModeInspecting {
		return
	}
	s.ActiveExhibit = nil
	s.Mode = ModeUnlocked
}

// RequestShutdown moves to the terminal mode from anywhere, dropping
// capture, hover and any open exhibit.
func (s *Session) RequestShutdown() {
	if s.Mode == ModeShutdown {
		return
	}
	s.pointer.Release()
	s.HoveredId = ""
	s.ActiveExhibit = nil
	s.Mode = ModeShutdown
}

// SetHover updates what the gaze is on. Hover only exists while locked;
// anything else ignores it.
func (s *Session) SetHover(id string) {
	if s.Mode != ModeLocked {
		return
	}
	s.HoveredId = id
}

// InteractionModule wires the session between the input pump, the picker
// and the app state machine. Install it after InputModule, PickingModule
// and the gallery (it needs the catalog).
type InteractionModule struct {
	// Pointer overrides the capture surface; default is the WindowState
	// resource, or an always-granting fake when no window exists.
	Pointer PointerPort
}

func (m InteractionModule) Install(app *App, cmd *Commands) {
	pointer := m.Pointer
	if pointer == nil {
		if ws := resourceOf[WindowState](app); ws != nil {
			pointer = ws
		}
	}
	catalog := resourceOf[ExhibitCatalog](app)
	if catalog == nil {
		panic("InteractionModule requires an ExhibitCatalog resource; install the gallery first")
	}

	cmd.AddResources(NewSession(pointer, catalog, app.Logger()))

	app.UseSystem(
		System(interactionSystem).
			InStage(PreRender).
			RunAlways(),
	)
	app.UseSystem(
		System(sessionSyncSystem).
			InStage(PostRender).
			RunAlways(),
	)
}

// interactionSystem feeds the session: hover from this frame's pick, then
// the drained input edges. Hover first, so a click opens exactly what the
// reticle shows this frame.
func interactionSystem(cmd *Commands, session *Session, input *Input, pick *PickResult) {
	if session.Mode == ModeLocked {
		if pick.Hit {
			session.SetHover(pick.ExhibitId)
		} else {
			session.SetHover("")
		}
	}

	if input.JustPressed[KeyEscape] {
		session.HandleUnlockSignal()
	}
	if input.JustPressed[MouseButtonLeft] {
		session.AttemptActivate()
	}
	if input.CloseRequested {
		session.RequestShutdown()
	}
}

// sessionSyncSystem mirrors the session mode into the app state machine at
// the end of the frame.
func sessionSyncSystem(cmd *Commands, session *Session) {
	if session.Mode != cmd.app.state {
		cmd.ChangeState(session.Mode)
	}
}

// resourceOf fetches an installed resource by type, or nil. For module
// installs that depend on earlier modules' resources.
func resourceOf[T any](app *App) *T {
	var zero T
	if r, ok := app.resources[reflect.TypeOf(zero)]; ok {
		return r.(*T)
	}
	return nil
}
