package model

// Clock holds a countdown per side in whole seconds. Only one side runs at a
// time. A clock created with zero seconds is unlimited and never expires.
// It is not safe for concurrent use; Game serialises access.
type Clock struct {
	initial   int
	timeLeft  map[Color]int
	active    Color
	isRunning bool
}

type ClockState struct {
	White  *int   `json:"white"`
	Black  *int   `json:"black"`
	Active *Color `json:"active"`
}

func NewClock(seconds int) *Clock {
	c := &Clock{initial: seconds}
	c.Reset()
	return c
}

func (c *Clock) Unlimited() bool {
	return c.initial <= 0
}

func (c *Clock) Reset() {
	c.timeLeft = map[Color]int{White: c.initial, Black: c.initial}
	c.active = ""
	c.isRunning = false
}

// Start runs color's countdown and halts the other. No-op when unlimited.
func (c *Clock) Start(color Color) {
	if c.Unlimited() {
		return
	}
	c.active = color
	c.isRunning = true
}

func (c *Clock) Stop() {
	c.isRunning = false
	c.active = ""
}

func (c *Clock) IsRunning() bool {
	return c.isRunning
}

// Tick removes one second from the running side. expired is true when that
// second brought it to zero; the clock stops itself in that case.
func (c *Clock) Tick() (color Color, expired bool) {
	if !c.isRunning {
		return "", false
	}
	color = c.active
	if c.timeLeft[color] > 0 {
		c.timeLeft[color]--
	}
	if c.timeLeft[color] == 0 {
		c.Stop()
		return color, true
	}
	return color, false
}

// GetTimeLeft returns the seconds left for color; ok is false when unlimited.
func (c *Clock) GetTimeLeft(color Color) (seconds int, ok bool) {
	if c.Unlimited() {
		return 0, false
	}
	return c.timeLeft[color], true
}

func (c *Clock) State() ClockState {
	var st ClockState
	if w, ok := c.GetTimeLeft(White); ok {
		st.White = &w
	}
	if b, ok := c.GetTimeLeft(Black); ok {
		st.Black = &b
	}
	if c.isRunning {
		active := c.active
		st.Active = &active
	}
	return st
}
