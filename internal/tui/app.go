package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jask/a11ycoord/core"
	"github.com/jask/a11ycoord/internal/nav"
	"github.com/jask/a11ycoord/internal/prefs"
	"github.com/jask/a11ycoord/internal/voice"
)

// statusTTL is how long a status line stays up when motion is allowed.
// With reduce motion on, status text stays until replaced.
const statusTTL = 3 * time.Second

const (
	screenSettings = "settings"
	screenCommands = "commands"

	resetID      = "settings.reset"
	closeHelpID  = "commands.close"
	closeHelpRef = nav.ElementRef(1000)
)

var flagLabels = map[prefs.Flag]string{
	prefs.LargeText:         "Large text",
	prefs.BoldText:          "Bold text",
	prefs.HighContrast:      "High contrast",
	prefs.ReduceMotion:      "Reduce motion",
	prefs.Grayscale:         "Grayscale",
	prefs.InvertColors:      "Invert colors",
	prefs.ScreenReaderHints: "Screen reader hints",
}

type row struct {
	id    string
	ref   nav.ElementRef
	flag  prefs.Flag // empty for the reset button
	label string
}

type Options struct {
	Coordinator *core.Coordinator
	// Elements must be the Focuser of the coordinator's graph.
	Elements *Elements
	Keys     *core.KeyRegistry
	Logger   *zap.Logger
}

// App is the accessibility settings screen. Every toggle is a navigation
// node and has a spoken command; the theme follows effective preferences.
type App struct {
	ctx    context.Context
	coord  *core.Coordinator
	els    *Elements
	keys   *core.KeyRegistry
	logger *zap.Logger
	send   func(tea.Msg)

	stack       core.ScreenStack
	rows        []row
	pending     []tea.Cmd
	returnFocus string

	input     textinput.Model
	listening bool

	theme     core.Theme
	status    string
	statusErr bool
	statusSeq int
	width     int
	height    int
}

func New(ctx context.Context, opts Options) *App {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Elements == nil {
		opts.Elements = NewElements()
	}
	if opts.Keys == nil {
		opts.Keys = core.NewKeyRegistry(core.DefaultKeyBindings())
	}
	in := textinput.New()
	in.Prompt = "say> "
	in.Placeholder = "toggle high contrast"
	in.CharLimit = 80
	a := &App{
		ctx:    ctx,
		coord:  opts.Coordinator,
		els:    opts.Elements,
		keys:   opts.Keys,
		logger: opts.Logger,
		rows:   buildRows(),
		input:  in,
	}
	a.refreshTheme()
	return a
}

func buildRows() []row {
	flags := prefs.AllFlags()
	rows := make([]row, 0, len(flags)+1)
	for i, f := range flags {
		rows = append(rows, row{id: "settings." + string(f), ref: nav.ElementRef(i + 1), flag: f, label: flagLabels[f]})
	}
	return append(rows, row{id: resetID, ref: nav.ElementRef(len(flags) + 1), label: "Reset to defaults"})
}

func (a *App) Init() tea.Cmd {
	a.mountSettings()
	return nil
}

// Close unmounts every screen.
func (a *App) Close() {
	a.stack.CloseAll()
}

func (a *App) mountSettings() {
	s := a.coord.Mount(screenSettings)
	nodes := make([]nav.Node, 0, len(a.rows))
	for _, r := range a.rows {
		a.els.Mount(r.ref)
		s.OnClose(func() { a.els.Unmount(r.ref) })
		nodes = append(nodes, nav.Node{ID: r.id, Target: r.ref, OnFocus: func() { a.announce(r) }})
	}
	s.RegisterNodes(nodes...)

	for _, r := range a.rows {
		if r.flag == "" {
			continue
		}
		s.RegisterCommand(voice.Binding{
			Phrase:      "toggle " + r.label,
			Description: "turn " + strings.ToLower(r.label) + " on or off",
			Handler:     func() { a.queue(a.toggle(r.flag)) },
		})
	}
	s.RegisterCommand(voice.Binding{Phrase: "reset settings", Description: "restore default preferences", Handler: func() { a.queue(a.reset()) }})
	s.RegisterCommand(voice.Binding{Phrase: "next", Description: "move focus forward", Handler: func() { a.move(nav.Next) }})
	s.RegisterCommand(voice.Binding{Phrase: "previous", Description: "move focus back", Handler: func() { a.move(nav.Prev) }})
	s.RegisterCommand(voice.Binding{Phrase: "select", Description: "activate the focused item", Handler: func() { a.queue(a.activate()) }})
	s.RegisterCommand(voice.Binding{Phrase: "show commands", Description: "list everything you can say", Handler: a.openHelp})
	s.OnPreferences(func(prefs.Preferences) { a.post(prefsChangedMsg{}) })

	a.stack.Push(s)
	s.FocusInitial(a.rows[0].id)
}

func (a *App) openHelp() {
	if a.onHelp() {
		return
	}
	if r, ok := a.focusedRow(); ok {
		a.returnFocus = r.id
	}
	s := a.coord.Mount(screenCommands)
	a.els.Mount(closeHelpRef)
	s.OnClose(func() { a.els.Unmount(closeHelpRef) })
	s.RegisterNode(nav.Node{ID: closeHelpID, Target: closeHelpRef})
	s.RegisterCommand(voice.Binding{Phrase: "close commands", Description: "return to settings", Handler: a.closeHelp})
	a.stack.Push(s)
	s.FocusInitial(closeHelpID)
}

func (a *App) closeHelp() {
	if !a.onHelp() {
		return
	}
	a.stack.Pop()
	if a.returnFocus != "" {
		a.coord.Focus(a.returnFocus)
	}
}

func (a *App) onHelp() bool {
	top := a.stack.Top()
	return top != nil && top.Screen() == screenCommands
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.input.Width = max(10, m.Width-12)
	case tea.KeyMsg:
		return a, a.handleKey(m)
	case runMsg:
		m.fn()
	case prefsChangedMsg:
		a.refreshTheme()
	case savedMsg:
		return a, a.handleSaved(m)
	case clearStatusMsg:
		if m.seq == a.statusSeq {
			a.status, a.statusErr = "", false
		}
	default:
		if a.listening {
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) keyScope() string {
	switch {
	case a.listening:
		return core.ScopeVoice
	case a.onHelp():
		return core.ScopeHelp
	default:
		return core.ScopeNavigate
	}
}

func (a *App) handleKey(m tea.KeyMsg) tea.Cmd {
	action, ok := a.keys.ActionFor(m, a.keyScope())
	if a.listening {
		switch {
		case ok && action == core.ActionActivate:
			return a.submitVoice()
		case ok && action == core.ActionBack:
			a.closeVoice()
			return nil
		case ok && action == core.ActionQuit:
			return tea.Quit
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(m)
		return cmd
	}
	if !ok {
		return nil
	}
	switch action {
	case core.ActionQuit:
		return tea.Quit
	case core.ActionFocusNext:
		a.move(nav.Next)
	case core.ActionFocusPrev:
		a.move(nav.Prev)
	case core.ActionActivate:
		return a.activate()
	case core.ActionReset:
		return a.reset()
	case core.ActionVoice:
		return a.openVoice()
	case core.ActionHelp:
		a.openHelp()
	case core.ActionBack:
		a.closeHelp()
	}
	return nil
}

func (a *App) focusedRow() (row, bool) {
	ref := a.els.Focused()
	for _, r := range a.rows {
		if r.ref == ref {
			return r, true
		}
	}
	return row{}, false
}

// move follows the graph from the focused row. With nothing focused yet,
// the first row takes focus.
func (a *App) move(d nav.Direction) {
	cur, ok := a.focusedRow()
	if !ok {
		a.coord.Focus(a.rows[0].id)
		return
	}
	a.coord.MoveFocus(cur.id, d)
}

func (a *App) activate() tea.Cmd {
	r, ok := a.focusedRow()
	if !ok {
		return nil
	}
	if r.flag == "" {
		return a.reset()
	}
	return a.toggle(r.flag)
}

func (a *App) toggle(f prefs.Flag) tea.Cmd {
	if a.coord.Toggle(f).Locked {
		return a.setStatus(flagLabels[f]+" is controlled by system settings", true)
	}
	patch := prefs.Patch{f: !a.coord.Preferences().Get(f)}
	return func() tea.Msg {
		return savedMsg{flag: f, err: a.coord.UpdatePreferences(a.ctx, patch)}
	}
}

func (a *App) reset() tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: a.coord.ResetPreferences(a.ctx)}
	}
}

func (a *App) handleSaved(m savedMsg) tea.Cmd {
	a.refreshTheme()
	switch {
	case errors.Is(m.err, prefs.ErrPersist):
		a.logger.Warn("preferences not saved", zap.Error(m.err))
		return a.setStatus("Applied for this session only: "+m.err.Error(), true)
	case m.err != nil:
		return a.setStatus("Could not apply: "+m.err.Error(), true)
	case m.flag == "":
		return a.setStatus("Preferences reset", false)
	default:
		return a.setStatus(fmt.Sprintf("%s %s", flagLabels[m.flag], onOff(a.coord.Effective(m.flag))), false)
	}
}

func (a *App) openVoice() tea.Cmd {
	a.listening = true
	a.input.Reset()
	return a.input.Focus()
}

func (a *App) closeVoice() {
	a.listening = false
	a.input.Blur()
	a.input.Reset()
}

func (a *App) submitVoice() tea.Cmd {
	text := a.input.Value()
	a.closeVoice()
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if !a.coord.Dispatch(text) {
		return a.setStatus(fmt.Sprintf("No command matches %q, say \"show commands\"", text), true)
	}
	cmds := a.pending
	a.pending = nil
	return tea.Batch(cmds...)
}

// queue holds commands produced by voice handlers until Dispatch returns.
func (a *App) queue(cmd tea.Cmd) {
	if cmd != nil {
		a.pending = append(a.pending, cmd)
	}
}

// announce writes a spoken-style description of r to the status line when
// screen reader hints are on.
func (a *App) announce(r row) {
	if !a.coord.Effective(prefs.ScreenReaderHints) {
		return
	}
	hint := r.label + ", button"
	if r.flag != "" {
		ts := a.coord.Toggle(r.flag)
		hint = r.label + ", switch, " + onOff(ts.Value)
		if ts.Locked {
			hint += ", set by system"
		}
	}
	a.statusSeq++
	a.status, a.statusErr = hint, false
}

func (a *App) setStatus(msg string, isErr bool) tea.Cmd {
	a.statusSeq++
	a.status, a.statusErr = msg, isErr
	if !a.theme.Animate {
		return nil
	}
	seq := a.statusSeq
	return tea.Tick(statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (a *App) refreshTheme() {
	a.theme = core.NewTheme(a.coord.EffectivePreferences())
	if a.theme.Animate {
		a.input.Cursor.SetMode(cursor.CursorBlink)
	} else {
		a.input.Cursor.SetMode(cursor.CursorStatic)
	}
}

// post delivers msg to the running program without blocking the caller,
// which may be the event loop itself.
func (a *App) post(msg tea.Msg) {
	if a.send == nil {
		return
	}
	go a.send(msg)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// Run drives app until the user quits or ctx ends. A non-nil sched is
// attached so deferred focus runs on the event loop.
func Run(ctx context.Context, app *App, sched *LoopScheduler) error {
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	app.send = p.Send
	if sched != nil {
		sched.Attach(p.Send)
	}
	defer app.Close()
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
