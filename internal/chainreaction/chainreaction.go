package chainreaction

import (
	"time"

	"github.com/oda-midichan/midichan/internal/launchpadx"
	"github.com/oda-midichan/midichan/internal/message"
)

const (
	minPlayers = 2
	maxPlayers = 5

	defaultTickInterval  = 600 * time.Millisecond
	defaultSpeedInterval = 50 * time.Millisecond
	pollInterval         = 50 * time.Millisecond
)

// Phase is the game's top-level state.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseStarting
	PhaseInProgress
	PhaseGameOver
)

// State is the game's current phase plus the player it refers to: the next
// player to move for Starting/InProgress, the winner for GameOver.
type State struct {
	Phase  Phase
	Player byte
}

var defaultPalette = [][]launchpadx.Color{
	{solid(0)},
	{solid(0), solid(7), solid(6), solid(5)},
	{solid(0), solid(43), solid(42), solid(41)},
	{solid(0), solid(27), solid(26), solid(25)},
	{solid(0), solid(15), solid(14), solid(13)},
	{solid(0), solid(55), solid(54), solid(53)},
}

func solid(index byte) launchpadx.Color {
	return launchpadx.Color{Index: index, Mode: launchpadx.Static}
}

// Game is the Chain Reaction reference app.
type Game struct {
	board       Board
	palette     [][]launchpadx.Color
	nextPlayer  byte
	playerCount byte
	hasBoom     bool
	alive       map[byte]bool
	state       State
	speedHeld   bool

	tickInterval  time.Duration
	speedInterval time.Duration

	lp *launchpadx.Driver
}

// New builds a Chain Reaction app driving lp. The game starts idle
// (PhaseEmpty) until the reset button is pressed for the first time.
func New(lp *launchpadx.Driver) *Game {
	return &Game{
		palette:       defaultPalette,
		playerCount:   minPlayers,
		state:         State{Phase: PhaseEmpty},
		tickInterval:  defaultTickInterval,
		speedInterval: defaultSpeedInterval,
		lp:            lp,
	}
}

// Run implements app.App: it switches the device into programmer mode,
// drives the game loop until the exit button is pressed, and restores the
// device's screen on the way out.
func (g *Game) Run() error {
	midiIn := g.lp.Input()
	g.lp.SetProgrammerMode(true)
	g.renderMenu()

	lastTick := time.Now()

	for {
		select {
		case msg, ok := <-midiIn:
			if !ok {
				return nil
			}
			if g.handleMessage(msg) {
				g.lp.Clear()
				g.lp.SetProgrammerMode(false)
				return nil
			}
		case <-time.After(pollInterval):
		}

		interval := g.tickInterval
		if g.speedHeld {
			interval = g.speedInterval
		}
		if time.Since(lastTick) >= interval {
			lastTick = time.Now()
			g.tick()
		}
	}
}

// gridCoord maps a raw MIDI key to the 9x9 (row, col) coordinate it
// addresses, mirroring the driver's ledIndex encoding in reverse.
func gridCoord(key byte) (row, col int, ok bool) {
	r := int(key / 10)
	c := int(key % 10)
	if r == 0 || r > 9 || c == 0 || c > 9 {
		return 0, 0, false
	}
	return r - 1, c - 1, true
}

// handleMessage processes one inbound message and reports whether the app
// should exit.
func (g *Game) handleMessage(msg message.Message) bool {
	row, col, ok := gridCoord(msg.Key)
	if !ok {
		return false
	}

	switch {
	case row == 8 && col == 8:
		return msg.Kind == message.ControlChange && msg.Velocity > 0

	case row == 8:
		g.handleTopRow(msg, col)
		return false

	case col == 8:
		return false

	case msg.Kind == message.NoteOn:
		g.handlePad(row, col, msg.Velocity)
		return false

	default:
		return false
	}
}

func (g *Game) handleTopRow(msg message.Message, col int) {
	if msg.Kind != message.ControlChange {
		return
	}

	switch col {
	case 0:
		if msg.Velocity > 0 {
			g.handleReset()
		}
	case 1:
		g.speedHeld = msg.Velocity > 0
	case 2:
		if msg.Velocity > 0 && g.state.Phase == PhaseEmpty {
			g.cyclePlayerCount()
		}
	}
}

func (g *Game) handlePad(row, col int, velocity byte) {
	if g.hasBoom {
		return
	}

	if velocity == 0 {
		g.render(row, col)
		return
	}

	if g.state.Phase != PhaseStarting && g.state.Phase != PhaseInProgress {
		return
	}

	if !g.step(row, col) {
		return
	}

	g.tick()
	g.renderMenu()
}

// step places the current player's marker at (row, col) if it is empty or
// already theirs, then advances the turn. Returns whether the placement
// happened.
func (g *Game) step(row, col int) bool {
	item := &g.board[row][col]
	player := item.Player()
	if player != 0 && player != g.nextPlayer {
		return false
	}

	item.AddCount(1)
	item.SetPlayer(g.nextPlayer)
	g.render(row, col)

	g.advanceTurn()
	return true
}

// advanceTurn moves to the next player modulo playerCount, skipping dead
// players once the alive set is known, and resolves the Starting->
// InProgress transition when the player order wraps back to 1. Dead-player
// skipping is withheld during Starting: every player must place an opening
// marker before elimination applies, and g.alive only reflects board
// occupancy, which would otherwise treat an as-yet-unplaced player as dead.
func (g *Game) advanceTurn() {
	skipDead := g.state.Phase != PhaseStarting

	wrapped := false
	for {
		g.nextPlayer = g.nextPlayer%g.playerCount + 1
		if g.nextPlayer == 1 {
			wrapped = true
		}
		if !skipDead || len(g.alive) == 0 || g.alive[g.nextPlayer] {
			break
		}
	}

	switch g.state.Phase {
	case PhaseStarting:
		if wrapped {
			g.state = State{Phase: PhaseInProgress, Player: g.nextPlayer}
		} else {
			g.state.Player = g.nextPlayer
		}
	case PhaseInProgress:
		g.state.Player = g.nextPlayer
	}
}

func (g *Game) tick() {
	result := g.board.tick()
	g.board = result.board
	g.hasBoom = result.hasBoom

	for _, c := range result.changed {
		g.renderField(c.row, c.col, c.field)
	}

	g.recomputeAlive()
}

func (g *Game) recomputeAlive() {
	g.alive = g.board.playersAlive(g.playerCount)

	if g.state.Phase == PhaseInProgress && len(g.alive) == 1 {
		var winner byte
		for p := range g.alive {
			winner = p
		}
		g.state = State{Phase: PhaseGameOver, Player: winner}
		g.renderMenu()
	}
}

func (g *Game) handleReset() {
	g.board = Board{}
	for row := 0; row < boardSize; row++ {
		for col := 0; col < boardSize; col++ {
			g.render(row, col)
		}
	}

	g.nextPlayer = 1
	g.hasBoom = false
	g.alive = nil
	g.state = State{Phase: PhaseStarting, Player: 1}
	g.renderMenu()
}

func (g *Game) cyclePlayerCount() {
	g.playerCount++
	if g.playerCount > maxPlayers {
		g.playerCount = minPlayers
	}
	g.renderMenu()
}

// render repaints one board cell from current state.
func (g *Game) render(row, col int) {
	g.renderField(row, col, g.board[row][col])
}

func (g *Game) renderField(row, col int, item Field) {
	idx := int(item.Count())
	if idx > 3 {
		idx = 3
	}

	c := g.palette[item.Player()][idx]
	if item.Player() != 0 && item.Count() >= threshold(row, col)-1 {
		c.Mode = launchpadx.Pulse
	}

	g.lp.Set(byte(col), byte(row), c)
}

// renderMenu repaints the top-row controls and the right-column player
// strip. Called after every state change.
func (g *Game) renderMenu() {
	g.lp.Set(0, 8, solid(21))

	speedColor := byte(21)
	if g.speedHeld {
		speedColor = 5
	}
	g.lp.Set(1, 8, solid(speedColor))

	playerCountColor := launchpadx.Color{Index: byte(20 + g.playerCount)}
	if g.state.Phase == PhaseEmpty {
		playerCountColor.Mode = launchpadx.Pulse
	}
	g.lp.Set(2, 8, playerCountColor)

	g.lp.Set(8, 8, solid(5))

	for y := byte(0); y < boardSize; y++ {
		player := y + 1
		if player > g.playerCount {
			g.lp.Set(8, y, solid(0))
			continue
		}

		c := g.palette[player][3]
		if g.currentPlayer() == player {
			c.Mode = launchpadx.Pulse
		}
		g.lp.Set(8, y, c)
	}
}

func (g *Game) currentPlayer() byte {
	switch g.state.Phase {
	case PhaseStarting, PhaseInProgress, PhaseGameOver:
		return g.state.Player
	default:
		return 0
	}
}

// State exposes the game's current phase/player, primarily for tests.
func (g *Game) State() State { return g.state }

// Board exposes a copy of the current board, primarily for tests.
func (g *Game) Board() Board { return g.board }
