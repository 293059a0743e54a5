package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/wreath/internal/logging"
	"github.com/five82/wreath/internal/memorial"
	"github.com/five82/wreath/internal/prefs"
	"github.com/five82/wreath/internal/state"
)

// Store is the part of *state.Store the UI drives.
type Store interface {
	Snapshot() state.Snapshot
	CreateFlower(ctx context.Context, content string) (memorial.Envelope[memorial.Flower], error)
	CreateLeaf(ctx context.Context) (memorial.Envelope[memorial.Leaf], error)
	Invalidate(ctx context.Context, v memorial.Variant) error
	Dismiss(id int)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     Store
	Log       logging.Logger
	APIBase   string
	PollEvery time.Duration
	UITick    time.Duration
	Prefs     prefs.Prefs
	PrefsPath string
	LogPath   string // shown in the activity overlay; empty when not logging to a file
	Stats     StatsFunc
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     Store
	log       logging.Logger
	apiBase   string
	pollEvery time.Duration
	uiTick    time.Duration
	prefsPath string
	logPath   string
	stats     StatsFunc

	// UI state
	keys    keyMap
	theme   Theme
	glyphs  string
	width   int
	height  int
	ready   bool
	spinner spinner.Model

	// Data state
	snapshot state.Snapshot
	selected int

	// Requests started from this model that have not reported back yet.
	sendingFlower bool
	sendingLeaf   bool

	// Overlays
	modal    Modal
	showHelp bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	log := opts.Log
	if log == nil {
		log = logging.Discard()
	}

	uiTick := opts.UITick
	if uiTick <= 0 {
		uiTick = DefaultUIInterval
	}

	pollEvery := opts.PollEvery
	if pollEvery <= 0 {
		pollEvery = 30 * time.Second
	}

	p := opts.Prefs
	if p.Theme == "" {
		p = prefs.Default()
	}

	return Model{
		ctx:       ctx,
		store:     opts.Store,
		log:       log,
		apiBase:   opts.APIBase,
		pollEvery: pollEvery,
		uiTick:    uiTick,
		prefsPath: opts.PrefsPath,
		logPath:   opts.LogPath,
		stats:     opts.Stats,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(p.Theme),
		glyphs:    p.Glyphs,
		spinner:   spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.uiTick),
		m.spinner.Tick,
		fetchSnapshotCmd(m.store),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tickMsg:
		return m, tea.Batch(fetchSnapshotCmd(m.store), tickCmd(m.uiTick))

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		m.clampSelection()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case submitFlowerMsg:
		if m.store == nil {
			return m, nil
		}
		m.sendingFlower = true
		return m, createFlowerCmd(m.ctx, m.store, msg.content)

	case actionDoneMsg:
		m.finishAction(msg)
		return m, fetchSnapshotCmd(m.store)

	case activityLoadedMsg:
		if m.modal == nil {
			m.modal = &activityModal{path: m.logPath, stats: msg.stats, entries: msg.entries, err: msg.err}
		}
		return m, nil
	}

	// Cursor blinks and other component messages belong to the open modal.
	if m.modal != nil {
		var cmd tea.Cmd
		m.modal, cmd, _ = m.modal.Update(msg, m.keys)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		modal, cmd, done := m.modal.Update(msg, m.keys)
		if done {
			m.modal = nil
		} else {
			m.modal = modal
		}
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.ToggleGlyphs):
		if m.glyphs == prefs.GlyphsASCII {
			m.glyphs = prefs.GlyphsUnicode
		} else {
			m.glyphs = prefs.GlyphsASCII
		}
		m.savePrefs()

	case key.Matches(msg, m.keys.NewFlower):
		if m.store == nil || m.sendingFlower || m.snapshot.IsCreatingFlower {
			return m, nil
		}
		m.modal = newComposeModal(m.theme)
		return m, textinput.Blink

	case key.Matches(msg, m.keys.NewLeaf):
		if m.store == nil || m.sendingLeaf || m.snapshot.IsCreatingLeaf {
			return m, nil
		}
		m.sendingLeaf = true
		return m, createLeafCmd(m.ctx, m.store)

	case key.Matches(msg, m.keys.Refresh):
		if m.store == nil {
			return m, nil
		}
		return m, tea.Batch(
			invalidateCmd(m.ctx, m.store, memorial.VariantFlower),
			invalidateCmd(m.ctx, m.store, memorial.VariantLeaf),
		)

	case key.Matches(msg, m.keys.Dismiss):
		toasts := visibleToasts(m.snapshot.Notifications)
		if m.store == nil || len(toasts) == 0 {
			return m, nil
		}
		m.store.Dismiss(toasts[0].ID)
		return m, fetchSnapshotCmd(m.store)

	case key.Matches(msg, m.keys.Activity):
		return m, loadActivityCmd(m.ctx, m.logPath, m.stats)

	case key.Matches(msg, m.keys.Next):
		m.moveSelection(1)
	case key.Matches(msg, m.keys.Prev):
		m.moveSelection(-1)
	case key.Matches(msg, m.keys.First):
		m.selected = 0
	case key.Matches(msg, m.keys.Last):
		m.selected = len(tributes(m.snapshot)) - 1
		m.clampSelection()
	}

	return m, nil
}

func (m *Model) finishAction(msg actionDoneMsg) {
	switch msg.action {
	case actionCreateFlower:
		m.sendingFlower = false
	case actionCreateLeaf:
		m.sendingLeaf = false
	}
	if msg.err != nil && !errors.Is(msg.err, context.Canceled) && !errors.Is(msg.err, state.ErrClosed) {
		m.log.Warn(m.ctx, "board action failed", "action", string(msg.action), "error", msg.err)
	}
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, Glyphs: m.glyphs}); err != nil {
		m.log.Warn(m.ctx, "save preferences failed", "path", m.prefsPath, "error", err)
	}
}

// moveSelection steps through tributes and wraps at both ends.
func (m *Model) moveSelection(delta int) {
	n := len(tributes(m.snapshot))
	if n == 0 {
		m.selected = 0
		return
	}
	m.selected = ((m.selected+delta)%n + n) % n
}

func (m *Model) clampSelection() {
	n := len(tributes(m.snapshot))
	switch {
	case n == 0 || m.selected < 0:
		m.selected = 0
	case m.selected >= n:
		m.selected = n - 1
	}
}

func (m Model) selectedTribute() (tribute, bool) {
	all := tributes(m.snapshot)
	if m.selected < 0 || m.selected >= len(all) {
		return tribute{}, false
	}
	return all[m.selected], true
}

// renderMain renders the board: header, command bar, canvas, toasts and
// tooltip.
func (m Model) renderMain() string {
	toasts := m.renderToasts()
	toastLines := 0
	if toasts != "" {
		toastLines = strings.Count(toasts, "\n") + 1
	}
	canvasHeight := max(m.height-chromeHeight-tooltipHeight-toastLines, minCanvasHeight)

	sections := []string{
		m.renderHeader(),
		m.renderCommandBar(),
		m.renderCanvas(m.width, canvasHeight),
	}
	if toasts != "" {
		sections = append(sections, toasts)
	}
	sections = append(sections, m.renderTooltip())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type submitFlowerMsg struct {
	content string
}

type boardAction string

const (
	actionCreateFlower boardAction = "create_flower"
	actionCreateLeaf   boardAction = "create_leaf"
	actionRefresh      boardAction = "refresh"
)

type actionDoneMsg struct {
	action boardAction
	err    error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store Store) tea.Cmd {
	if store == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func submitFlowerCmd(content string) tea.Cmd {
	return func() tea.Msg {
		return submitFlowerMsg{content: content}
	}
}

func createFlowerCmd(ctx context.Context, store Store, content string) tea.Cmd {
	return func() tea.Msg {
		_, err := store.CreateFlower(ctx, content)
		return actionDoneMsg{action: actionCreateFlower, err: err}
	}
}

func createLeafCmd(ctx context.Context, store Store) tea.Cmd {
	return func() tea.Msg {
		_, err := store.CreateLeaf(ctx)
		return actionDoneMsg{action: actionCreateLeaf, err: err}
	}
}

func invalidateCmd(ctx context.Context, store Store, v memorial.Variant) tea.Cmd {
	return func() tea.Msg {
		return actionDoneMsg{action: actionRefresh, err: store.Invalidate(ctx, v)}
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
