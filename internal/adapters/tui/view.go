package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/forge/internal/ui/style"
)

// View renders the task list, the log pane of the active task and the run footer.
func (m *Model) View() string {
	if m.ListHeight == 0 {
		return "Initializing..."
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.taskList(), m.logPane())
	return lipgloss.JoinVertical(lipgloss.Left, body, m.footer())
}

func (m *Model) taskList() string {
	var s strings.Builder
	s.WriteString(titleStyle.Render("TASKS") + "\n\n")

	end := min(len(m.Tasks), m.ListOffset+m.ListHeight)
	start := min(m.ListOffset, end)
	for i := start; i < end; i++ {
		s.WriteString(m.renderTaskRow(i, m.Tasks[i]) + "\n")
	}

	return listStyle.Render(s.String())
}

func (m *Model) renderTaskRow(index int, task *TaskNode) string {
	rowStyle := taskStyle(task)

	cursor := "  "
	if index == m.SelectedIdx {
		cursor = selectedStyle.Render("> ")
		if task.Status != StatusDone && task.Status != StatusError {
			rowStyle = selectedStyle
		}
	}

	row := rowStyle.Render(taskIcon(task) + " " + task.Name)
	if elapsed := m.elapsed(task); elapsed > 0 {
		row += " " + faintStyle.Render(formatElapsed(elapsed))
	}
	return cursor + row
}

func (m *Model) elapsed(task *TaskNode) time.Duration {
	switch task.Status {
	case StatusRunning:
		if m.Now.After(task.StartTime) && !task.StartTime.IsZero() {
			return m.Now.Sub(task.StartTime)
		}
		return 0
	case StatusDone, StatusError:
		return task.Elapsed
	default:
		return 0
	}
}

func taskIcon(task *TaskNode) string {
	switch task.Status {
	case StatusRunning:
		return style.Dot
	case StatusDone:
		return style.Check
	case StatusError:
		return style.Cross
	default:
		return style.Circle
	}
}

func taskStyle(task *TaskNode) lipgloss.Style {
	switch task.Status {
	case StatusRunning:
		return taskRunningStyle
	case StatusDone:
		return taskDoneStyle
	case StatusError:
		return taskErrorStyle
	default:
		return taskPendingStyle
	}
}

func (m *Model) logPane() string {
	header := titleStyle.Render("LOGS (waiting...)")
	var content string

	if node, ok := m.TaskMap[m.ActiveTaskName]; ok {
		mode := "following"
		if !m.FollowMode {
			mode = "manual"
		}
		title := titleStyle
		if node.Status == StatusError {
			title = failureTitleStyle
		}
		header = title.Render(fmt.Sprintf("LOGS: %s (%s)", node.Name, mode))
		content = node.Log.View()
		if node.Err != nil {
			content = strings.TrimRight(content+"\n"+taskErrorStyle.Render(node.Err.Error()), "\n")
		}
	}

	return logStyle.Render(lipgloss.JoinVertical(lipgloss.Left, header, content))
}

func (m *Model) footer() string {
	keys := faintStyle.Render("↑/↓ select  esc follow  pgup/pgdn scroll  q quit")
	if m.LastRun == nil {
		return keys
	}

	summary := taskDoneStyle.Render(fmt.Sprintf("%s run %s finished in %s",
		style.Check, m.LastRun.ID, formatElapsed(m.LastRun.Elapsed)))
	if m.LastRun.Err != nil {
		summary = taskErrorStyle.Render(fmt.Sprintf("%s run %s failed after %s",
			style.Cross, m.LastRun.ID, formatElapsed(m.LastRun.Elapsed)))
	}
	return summary + "  " + keys
}

func formatElapsed(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
