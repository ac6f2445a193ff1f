package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"uitest/internal/driver"
)

// fileState is where a file stands in a check run, as shown by the view.
type fileState uint8

const (
	stateQueued fileState = iota
	stateLoading
	stateParsing
	stateVerifying
	stateDone
	stateCached
	stateError
)

var stateLabels = [...]string{
	stateQueued:    "queued",
	stateLoading:   "loading",
	stateParsing:   "parsing",
	stateVerifying: "verifying",
	stateDone:      "done",
	stateCached:    "cached",
	stateError:     "error",
}

// weight is the share of a file's work finished on entering the state.
var weight = [...]float64{
	stateQueued:    0,
	stateLoading:   0.1,
	stateParsing:   0.4,
	stateVerifying: 0.8,
	stateDone:      1,
	stateCached:    1,
	stateError:     1,
}

var stateStyles = [...]lipgloss.Style{
	stateQueued:    lipgloss.NewStyle().Foreground(lipgloss.Color("7")),
	stateLoading:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	stateParsing:   lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	stateVerifying: lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
	stateDone:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	stateCached:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	stateError:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

func (s fileState) String() string { return stateLabels[s] }

func (s fileState) final() bool { return s >= stateDone }

// stateOf maps a driver event to a view state; ok is false for events the
// view ignores.
func stateOf(ev driver.Event) (fileState, bool) {
	switch ev.Status {
	case driver.StatusQueued:
		return stateQueued, true
	case driver.StatusDone:
		return stateDone, true
	case driver.StatusCached:
		return stateCached, true
	case driver.StatusError:
		return stateError, true
	case driver.StatusWorking:
		switch ev.Stage {
		case driver.StageLoad:
			return stateLoading, true
		case driver.StageParse:
			return stateParsing, true
		case driver.StageVerify:
			return stateVerifying, true
		}
	}
	return stateQueued, false
}

type fileRow struct {
	path    string
	state   fileState
	errors  int
	elapsed time.Duration
}

type progressModel struct {
	title   string
	events  <-chan driver.Event
	spinner spinner.Model
	bar     progress.Model
	rows    []fileRow
	byPath  map[string]int
	width   int
	done    bool
}

type eventMsg driver.Event
type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model showing one row per file of a
// check run. It quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = 76

	m := &progressModel{
		title:   title,
		events:  events,
		spinner: sp,
		bar:     bar,
		rows:    make([]fileRow, len(files)),
		byPath:  make(map[string]int, len(files)),
		width:   80,
	}
	for i, file := range files {
		m.rows[i] = fileRow{path: file}
		m.byPath[file] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for one driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-m.events
		if !ok {
			return doneMsg{}
		}
		return eventMsg(ev)
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	state, ok := stateOf(ev)
	if !ok {
		return nil
	}
	row := &m.rows[i]
	row.state = state
	row.errors = ev.Errors
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}

	var sum float64
	for _, r := range m.rows {
		sum += weight[r.state]
	}
	return m.bar.SetPercent(sum / float64(len(m.rows)))
}

func (m *progressModel) finished() int {
	n := 0
	for _, r := range m.rows {
		if r.state.final() {
			n++
		}
	}
	return n
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	header := fmt.Sprintf("%s (%d/%d)", m.title, m.finished(), len(m.rows))
	if m.done {
		header = "done: " + header
	} else {
		header = m.spinner.View() + " " + header
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7")).Render(header))
	b.WriteString("\n\n")

	const stateWidth = 12
	nameWidth := max(m.width-stateWidth-14, 20)
	failed, errs := 0, 0
	for _, r := range m.rows {
		label := r.state.String()
		if r.errors > 0 {
			label = fmt.Sprintf("%s(%d)", label, r.errors)
			failed++
			errs += r.errors
		}
		fmt.Fprintf(&b, "  %s %s", stateStyles[r.state].Render(fmt.Sprintf("%*s", stateWidth, label)), truncate(r.path, nameWidth))
		if r.state.final() && r.elapsed > 0 {
			fmt.Fprintf(&b, " %s", r.elapsed.Round(time.Microsecond))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteString("\n")
	if errs > 0 {
		fmt.Fprintf(&b, "%s\n", stateStyles[stateError].Render(fmt.Sprintf("%d errors in %d files", errs, failed)))
	}
	return b.String()
}

// truncate shortens value to width terminal cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
