package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	taskListWidthRatio = 0.3
	logPaneBorderWidth = 4
	footerHeight       = 1
)

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting to start.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusDone indicates the task completed successfully.
	StatusDone TaskStatus = "Done"
	// StatusError indicates the task failed.
	StatusError TaskStatus = "Error"
)

// TaskNode represents a single task in the UI list.
type TaskNode struct {
	Name      string
	Status    TaskStatus
	Log       *LogTail
	StartTime time.Time
	Elapsed   time.Duration
	Err       error
}

// RunSummary is the outcome of the latest build run.
type RunSummary struct {
	ID      string
	Elapsed time.Duration
	Err     error
}

// Model represents the TUI state.
type Model struct {
	Tasks   []*TaskNode
	TaskMap map[string]*TaskNode
	SpanMap map[string]*TaskNode

	ActiveTaskName string
	SelectedIdx    int
	ListOffset     int
	ListHeight     int
	LogWidth       int
	LogHeight      int
	FollowMode     bool

	LastRun      *RunSummary
	Runs         int
	TickInterval time.Duration
	Now          time.Time
}

// Init starts the clock that refreshes running task timers.
func (m *Model) Init() tea.Cmd {
	return m.tick()
}

func (m *Model) tick() tea.Cmd {
	if m.TickInterval <= 0 {
		return nil
	}
	return tea.Tick(m.TickInterval, func(t time.Time) tea.Msg { return msgTick(t) })
}

// Update handles incoming messages and updates the model state.
//
//nolint:cyclop // one branch per message type
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case msgTick:
		m.Now = time.Time(msg)
		return m, m.tick()

	case MsgInitTasks:
		m.initTasks(msg.Tasks)

	case MsgTaskStart:
		node, ok := m.TaskMap[msg.Name]
		if !ok {
			return m, nil
		}
		node.Status = StatusRunning
		node.StartTime = msg.StartTime
		m.SpanMap[msg.SpanID] = node
		if m.FollowMode {
			m.selectTask(msg.Name)
		}

	case MsgTaskLog:
		if node, ok := m.SpanMap[msg.SpanID]; ok {
			_, _ = node.Log.Write(msg.Data)
		}

	case MsgTaskComplete:
		node, ok := m.SpanMap[msg.SpanID]
		if !ok {
			return m, nil
		}
		node.Elapsed = msg.EndTime.Sub(node.StartTime)
		node.Err = msg.Err
		node.Status = StatusDone
		if msg.Err != nil {
			node.Status = StatusError
			m.selectTask(node.Name)
		}

	case MsgRunComplete:
		m.Runs++
		m.LastRun = &RunSummary{ID: msg.RunID, Elapsed: msg.Elapsed, Err: msg.Err}
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "k", "up":
		if m.SelectedIdx > 0 {
			m.SelectedIdx--
			m.FollowMode = false
			m.ensureVisible()
			m.updateActiveView()
		}
	case "j", "down":
		if m.SelectedIdx < len(m.Tasks)-1 {
			m.SelectedIdx++
			m.FollowMode = false
			m.ensureVisible()
			m.updateActiveView()
		}
	case "esc":
		m.FollowMode = true
		for _, t := range m.Tasks {
			if t.Status == StatusRunning {
				m.selectTask(t.Name)
				break
			}
		}
	default:
		if node, ok := m.TaskMap[m.ActiveTaskName]; ok {
			node.Log.Update(msg)
		}
	}
	return nil
}

// initTasks replaces the task list with the tasks of a new run.
func (m *Model) initTasks(names []string) {
	m.Tasks = make([]*TaskNode, len(names))
	m.TaskMap = make(map[string]*TaskNode, len(names))
	m.SpanMap = make(map[string]*TaskNode)
	m.SelectedIdx = 0
	m.ListOffset = 0
	m.ActiveTaskName = ""

	for i, name := range names {
		log := NewLogTail(DefaultLogLines)
		if m.LogWidth > 0 && m.LogHeight > 0 {
			log.SetSize(m.LogWidth, m.LogHeight)
		}
		m.Tasks[i] = &TaskNode{Name: name, Status: StatusPending, Log: log}
		m.TaskMap[name] = m.Tasks[i]
	}
}

func (m *Model) resize(width, height int) {
	listWidth := int(float64(width) * taskListWidthRatio)
	headerHeight := lipgloss.Height(titleStyle.Render("LOGS"))

	m.LogWidth = max(1, width-listWidth-logPaneBorderWidth)
	m.LogHeight = max(1, height-headerHeight-footerHeight)
	m.ListHeight = max(1, height-lipgloss.Height(titleStyle.Render("TASKS")+"\n\n")-footerHeight)
	m.ensureVisible()

	for _, node := range m.Tasks {
		node.Log.SetSize(m.LogWidth, m.LogHeight)
	}
}

func (m *Model) selectTask(name string) {
	for i, t := range m.Tasks {
		if t.Name == name {
			m.SelectedIdx = i
			break
		}
	}
	m.ensureVisible()
	m.updateActiveView()
}

func (m *Model) ensureVisible() {
	if m.ListHeight <= 0 {
		return
	}
	if m.SelectedIdx < m.ListOffset {
		m.ListOffset = m.SelectedIdx
	} else if m.SelectedIdx >= m.ListOffset+m.ListHeight {
		m.ListOffset = m.SelectedIdx - m.ListHeight + 1
	}
}

func (m *Model) updateActiveView() {
	if m.SelectedIdx < 0 || m.SelectedIdx >= len(m.Tasks) {
		return
	}
	node := m.Tasks[m.SelectedIdx]
	m.ActiveTaskName = node.Name
	if m.FollowMode {
		node.Log.Update(tea.KeyMsg{Type: tea.KeyEnd})
	}
}
