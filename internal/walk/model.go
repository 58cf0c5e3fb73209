// Package walk is the interactive decision tree walk: a Bubble Tea model that
// stacks one box per visited step, joins consecutive boxes with animated
// connectors, and shows the resolved article once the walk ends.
//
// Layout is two-phase. A mutation of the history schedules a render pass that
// measures every box, and, after a settle delay, a layout pass that reads
// those measurements. A layout pass that finds a box still unmeasured defers
// itself and retries.
package walk

import (
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/branchwalk/internal/config"
	"github.com/smileynet/branchwalk/internal/connector"
	"github.com/smileynet/branchwalk/internal/history"
	"github.com/smileynet/branchwalk/internal/layout"
	"github.com/smileynet/branchwalk/internal/result"
)

// minBoxWidth is the narrowest a step box is drawn, even on tiny terminals.
const minBoxWidth = 16

// Model is the root Bubble Tea model for a walk.
type Model struct {
	cfg     config.Config
	history *history.Store
	catalog *result.Catalog
	engine  *layout.Engine
	canvas  *connector.Canvas
	conns   *connector.Renderer
	boxes   *boxCache
	log     *slog.Logger
	now     func() time.Time
	seed    uint64

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	scroll   scroller
	burst    *burst

	width  int
	height int
	focus  int // Focused step.
	cursor int // Option under the cursor on the focused step.

	gen        int  // Bumped by every mutation; stale passes are ignored.
	retries    int  // Deferred layout passes in the current generation.
	stalled    bool // Retries ran out before the render pass arrived.
	fullRedraw bool // Next complete layout pass redraws every connector.
	ticking    bool // A frame tick is in flight.

	article result.Article
	panel   string
	style   string
	md      *result.Renderer
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger for the model and its layout components.
func WithLogger(l *slog.Logger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// WithClock sets the time source for animations.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithSeed fixes the random seed of the end-of-walk celebration.
func WithSeed(seed uint64) Option {
	return func(m *Model) {
		m.seed = seed
	}
}

// WithMarkdownStyle sets the glamour style of result articles. The style is
// fixed for the life of the program so rendering never queries the terminal.
func WithMarkdownStyle(style string) Option {
	return func(m *Model) {
		m.style = style
	}
}

// NewModel creates a walk positioned on the store's current history.
// A nil catalog resolves every walk to a generated article.
func NewModel(store *history.Store, catalog *result.Catalog, cfg config.Config, opts ...Option) Model {
	m := Model{
		cfg:      cfg,
		history:  store,
		catalog:  catalog,
		log:      slog.New(slog.DiscardHandler),
		now:      time.Now,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
		scroll:   newScroller(cfg.Scroll.Step),
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.seed == 0 {
		m.seed = uint64(m.now().UnixNano())
	}
	m.md = result.NewRenderer(m.style)

	m.engine = layout.NewEngine(cfg.Layout.Gap, layout.WithLogger(m.log))
	m.engine.Invalidate()
	m.canvas = connector.NewCanvas(
		connector.WithDuration(cfg.Connector.Duration),
		connector.WithClock(m.now),
	)
	m.conns = connector.NewRenderer(m.canvas, connector.WithLogger(m.log))
	m.boxes = newBoxCache(cfg.Layout.Margin, m.engine)

	m.focus = store.Len() - 1
	m.cursor = m.cursorFor(m.focus)
	if store.State() == history.Ended {
		m.enterEnded(true)
	}
	return m
}

// Init requests the first render and layout passes.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.renderCmd(), m.layoutCmd())
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case renderedMsg:
		return m.handleRendered(msg)

	case layoutMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.runLayout()

	case reloadMsg:
		return m.reload(msg)

	case frameMsg:
		m.ticking = false
		m.scroll.advance()
		m.refresh()
		cmd := m.nextFrame()
		return m, cmd
	}
	return m, nil
}

// handleKey processes key messages.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layoutViewport()
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.setFocus(m.focus - 1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.setFocus(m.focus + 1)
		return m, nil

	case key.Matches(msg, m.keys.Left):
		if m.cursor > 0 {
			m.cursor--
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Right):
		if m.cursor < len(m.history.Step(m.focus).Node.Options)-1 {
			m.cursor++
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Select):
		return m.selectOption(m.focus, m.cursor)

	case key.Matches(msg, m.keys.Reset):
		return m.reset()

	case key.Matches(msg, m.keys.PgUp), key.Matches(msg, m.keys.PgDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.scroll.jump(m.viewport.YOffset)
		return m, cmd
	}

	if s := msg.String(); len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
		return m.selectOption(m.focus, int(s[0]-'1'))
	}
	return m, nil
}

// selectOption answers step with option and starts a render/layout cycle.
// Out-of-range indices are logged and ignored; the history is unchanged.
func (m Model) selectOption(step, option int) (tea.Model, tea.Cmd) {
	parentHeight, measured := m.boxes.height(step)

	ch, err := m.history.Select(step, option)
	if err != nil {
		m.log.Error("select rejected", "step", step, "option", option, "error", err)
		return m, nil
	}
	m.log.Info("option selected",
		"step", step, "option", option, "steps", ch.Len, "state", ch.State)

	m.conns.Invalidate(ch.Invalidate)
	m.engine.Truncate(step + 1)
	m.boxes.truncate(step + 1)
	if ch.Appended && measured {
		m.engine.Place(ch.Len-1, parentHeight)
	}

	m.focus = ch.Len - 1
	m.cursor = m.cursorFor(m.focus)
	switch {
	case ch.State == history.Ended:
		// Revising the final answer swaps the article without another burst.
		m.enterEnded(ch.Transitioned())
	case ch.Transitioned():
		m.leaveEnded()
	}
	return m.beginCycle()
}

// reset returns the walk to an unanswered root.
func (m Model) reset() (tea.Model, tea.Cmd) {
	ch := m.history.Reset()
	m.log.Info("walk reset", "from", ch.Prev)

	m.conns.Reset()
	m.engine.Truncate(1)
	m.boxes.truncate(1)
	m.leaveEnded()
	m.focus = 0
	m.cursor = 0
	m.scroll.aim(0)
	return m.beginCycle()
}

// reload starts a fresh walk over new content.
func (m Model) reload(msg reloadMsg) (tea.Model, tea.Cmd) {
	m.log.Info("content reloaded", "articles", msg.catalog.Len())
	m.history = history.New(msg.root)
	m.catalog = msg.catalog

	m.conns.Reset()
	m.engine.Invalidate()
	m.boxes.clear()
	m.leaveEnded()
	m.focus = 0
	m.cursor = 0
	m.scroll.aim(0)
	return m.beginCycle()
}

// beginCycle starts a new generation: a render pass now and a layout pass
// after the settle delay.
func (m Model) beginCycle() (tea.Model, tea.Cmd) {
	m.gen++
	m.retries = 0
	m.stalled = false
	m.refresh()
	return m, tea.Batch(m.renderCmd(), m.layoutCmd())
}

// renderCmd measures the current steps off the update loop.
func (m Model) renderCmd() tea.Cmd {
	steps := m.history.Steps()
	width := m.boxWidth()
	gen := m.gen
	return func() tea.Msg {
		return renderedMsg{gen: gen, width: width, sizes: measureSteps(steps, width)}
	}
}

// layoutCmd schedules a layout pass after the settle delay.
func (m Model) layoutCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.cfg.Layout.SettleDelay, func(time.Time) tea.Msg {
		return layoutMsg{gen: gen}
	})
}

func (m Model) handleRendered(msg renderedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || msg.width != m.boxWidth() {
		m.log.Debug("stale render dropped", "gen", msg.gen, "current", m.gen)
		return m, nil
	}
	m.boxes.store(msg.sizes)
	if m.stalled {
		m.stalled = false
		m.retries = 0
		return m, m.layoutCmd()
	}
	return m, nil
}

// runLayout resolves step offsets and reconciles connectors. When a box is
// not yet measured the pass defers and retries, up to the configured limit.
func (m Model) runLayout() (tea.Model, tea.Cmd) {
	n := m.history.Len()
	if _, ok := m.boxes.Measure(n - 1); !ok {
		return m.deferLayout(n, 0)
	}
	pass := m.engine.Recompute(n, m.boxes)
	if !pass.Complete {
		return m.deferLayout(n, pass.Resolved)
	}
	m.retries = 0

	var cp connector.Pass
	if m.fullRedraw {
		cp = m.conns.Redraw(n, m.boxes)
		m.fullRedraw = false
	} else {
		cp = m.conns.Reconcile(n, m.boxes)
	}
	m.log.Debug("layout pass",
		"steps", n, "tops", pass.Tops, "drawn", cp.Drawn, "retargeted", cp.Retargeted)

	m.refresh()
	m.scroll.aim(scrollTarget(m.ended(), m.viewport.TotalLineCount(), m.viewport.Height))
	cmd := m.nextFrame()
	return m, cmd
}

// deferLayout schedules another layout pass, or stalls until the next
// render pass once retries are used up.
func (m Model) deferLayout(n, resolved int) (tea.Model, tea.Cmd) {
	m.retries++
	if m.retries > m.cfg.Layout.MaxRetries {
		m.log.Warn("layout gave up waiting for measurements",
			"steps", n, "resolved", resolved, "retries", m.cfg.Layout.MaxRetries)
		m.stalled = true
		m.refresh()
		return m, nil
	}
	m.log.Debug("layout deferred", "steps", n, "resolved", resolved, "retry", m.retries)
	m.refresh()
	return m, m.layoutCmd()
}

// nextFrame schedules a frame while anything is still moving.
func (m *Model) nextFrame() tea.Cmd {
	if m.ticking {
		return nil
	}
	now := m.now()
	if !m.canvas.Animating(now) && !m.scroll.moving() && !m.burst.active(now) {
		return nil
	}
	m.ticking = true
	return tea.Tick(m.cfg.Connector.FrameInterval, func(time.Time) tea.Msg {
		return frameMsg{}
	})
}

// setFocus moves focus to step i, clamped to the history.
func (m *Model) setFocus(i int) {
	i = max(0, min(i, m.history.Len()-1))
	if i == m.focus {
		return
	}
	m.focus = i
	m.cursor = m.cursorFor(i)
	m.refresh()
}

// cursorFor places the cursor on a step's selection, or its first option.
func (m Model) cursorFor(i int) int {
	if s := m.history.Step(i); s.Answered() {
		return s.Selected
	}
	return 0
}

func (m Model) ended() bool {
	return m.history.State() == history.Ended
}

// enterEnded resolves the article for the current selection and starts the
// celebration.
func (m *Model) enterEnded(celebrate bool) {
	names := m.history.Names()
	m.article = m.catalog.Resolve(names)
	m.panel = m.renderPanel()
	m.log.Info("walk ended", "names", names, "article", m.article.Title)
	if celebrate && m.cfg.Effects.Celebrate {
		m.burst = newBurst(m.now(), m.cfg.Layout.Margin+m.boxWidth()/2, 2, m.seed)
	}
}

func (m *Model) leaveEnded() {
	m.article = result.Article{}
	m.panel = ""
	m.burst = nil
}

// boxWidth is the fixed width of every step box at the current terminal
// width.
func (m Model) boxWidth() int {
	w := m.cfg.Layout.MaxWidth
	if m.width > 0 {
		w = min(w, m.width-2*m.cfg.Layout.Margin)
	}
	return max(w, minBoxWidth)
}

func (m *Model) layoutViewport() {
	h := m.height - lineCount(m.help.View(m.keys))
	m.viewport.Width = m.width
	m.viewport.Height = max(h, 1)
}

// refresh recomposes the viewport content at the current instant.
func (m *Model) refresh() {
	m.viewport.SetContent(m.compose(m.now()))
	m.scroll.clamp(m.viewport.TotalLineCount() - m.viewport.Height)
	m.viewport.SetYOffset(m.scroll.offset)
}

// compose draws the result panel, when the walk has ended, above the step
// boxes and their connectors.
func (m Model) compose(now time.Time) string {
	var g grid
	header := 0
	if m.panel != "" {
		g.paint(m.cfg.Layout.Margin, 0, m.panel)
		header = lineCount(m.panel) + 1
		g.grow(header)
	}

	ended := m.ended()
	width := m.boxWidth()
	for i, step := range m.history.Steps() {
		top, ok := m.engine.Top(i)
		if !ok {
			continue
		}
		focused := i == m.focus
		cursor := -1
		if focused {
			cursor = m.cursor
		}
		box := renderStep(step, stepView{
			index:   i,
			width:   width,
			cursor:  cursor,
			focused: focused,
			dimmed:  ended,
		})
		g.paint(m.boxes.x, header+top, box)
	}

	cells := m.canvas.Cells(now)
	for i := range cells {
		cells[i].Y += header
	}
	ink := connectorInk
	if ended {
		ink = mutedText
	}
	g.cells(cells, func(s string) string { return ink.Render(s) })

	if m.burst.active(now) {
		g.cells(m.burst.cells(now, m.width, header), func(s string) string { return sparkInk.Render(s) })
	}
	return g.String()
}

// View renders the walk and the help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}
	return m.viewport.View() + "\n" + m.help.View(m.keys)
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
