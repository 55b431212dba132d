package behavior

// Mode identifies the single behavior a chaser runs at any moment.
type Mode uint8

const (
	ModePatrol Mode = iota
	ModePursuit
	ModeEvasion
	ModeReturning
)

func (m Mode) String() string {
	switch m {
	case ModePatrol:
		return "patrol"
	case ModePursuit:
		return "pursuit"
	case ModeEvasion:
		return "evasion"
	case ModeReturning:
		return "returning"
	default:
		return "unknown"
	}
}

// ParseMode maps the textual form used by level files back to a Mode.
// Only the ambient modes are authorable.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "patrol":
		return ModePatrol, true
	case "pursuit":
		return ModePursuit, true
	default:
		return ModePatrol, false
	}
}

// Controller tracks one chaser's behavior mode. Exactly one mode is
// active at a time; entering a mode leaves whichever was active.
// Ambient is the externally decided baseline (patrol or pursuit) the
// chaser falls back to when an override ends.
type Controller struct {
	mode    Mode
	resume  Mode // mode to restore when evasion ends
	ambient Mode
}

// NewController starts a chaser on the ambient baseline. Values other
// than ModePatrol and ModePursuit fall back to ModePatrol.
func NewController(ambient Mode) *Controller {
	if ambient != ModePatrol && ambient != ModePursuit {
		ambient = ModePatrol
	}
	return &Controller{mode: ambient, resume: ambient, ambient: ambient}
}

// Mode reports the active behavior mode.
func (c *Controller) Mode() Mode {
	if c == nil {
		return ModePatrol
	}
	return c.mode
}

// Ambient reports the externally decided baseline mode.
func (c *Controller) Ambient() Mode {
	if c == nil {
		return ModePatrol
	}
	return c.ambient
}

// SetAmbient records the externally decided baseline and reports
// whether the active mode switched because of it. A chaser running the
// other baseline switches immediately; an evading chaser updates its
// restore target instead, and a returning chaser adopts the baseline
// when it completes.
func (c *Controller) SetAmbient(mode Mode) bool {
	if c == nil || (mode != ModePatrol && mode != ModePursuit) {
		return false
	}
	c.ambient = mode
	switch c.mode {
	case ModePatrol, ModePursuit:
		if c.mode == mode {
			return false
		}
		c.mode = mode
		return true
	case ModeEvasion:
		c.resume = mode
	}
	return false
}

// EnterEvasion switches a patrolling or pursuing chaser into evasion,
// remembering which mode to restore afterwards. It reports whether the
// chaser is evading after the call: re-entering while already evading
// keeps the original restore target, and returning chasers refuse.
func (c *Controller) EnterEvasion() bool {
	if c == nil {
		return false
	}
	switch c.mode {
	case ModePatrol, ModePursuit:
		c.resume = c.mode
		c.mode = ModeEvasion
		return true
	case ModeEvasion:
		return true
	default:
		return false
	}
}

// ExitEvasion restores the mode recorded when evasion began. It is a
// no-op unless the chaser is evading, so a timer firing after a catch
// already redirected the chaser home cannot double-fire.
func (c *Controller) ExitEvasion() bool {
	if c == nil || c.mode != ModeEvasion {
		return false
	}
	c.mode = c.resume
	return true
}

// EnterReturning sends the chaser home unconditionally. Catches outrank
// evasion timers, so no mode blocks this transition.
func (c *Controller) EnterReturning() {
	if c == nil {
		return
	}
	c.mode = ModeReturning
}

// CompleteReturn puts a returning chaser back on the ambient baseline
// and reports whether it did so.
func (c *Controller) CompleteReturn() bool {
	if c == nil || c.mode != ModeReturning {
		return false
	}
	c.mode = c.ambient
	return true
}
