package ui

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"buildtrack/internal/telemetry"
)

// The progress renderer tracks tasks of a telemetry plan (not to be
// confused with build steps, which are what the tasks operate on).

type taskStatus string

const (
	taskPending taskStatus = "pending"
	taskRunning taskStatus = "running"
	taskDone    taskStatus = "done"
	taskFailed  taskStatus = "failed"
)

type taskState struct {
	ID       string
	ParentID string
	Title    string
	Status   taskStatus
	Message  string

	synthetic bool
}

type progressSnapshot struct {
	Tasks []taskState
}

// progressTracker folds plan and span events into ordered task snapshots.
// Child tasks may appear dynamically with "parent/child" ids; parents that
// were never planned are synthesized so fanout still renders as a tree.
type progressTracker struct {
	mu       sync.Mutex
	tasks    map[string]taskState
	order    []string
	reporter func(progressSnapshot)
}

func newProgressTracker(reporter func(progressSnapshot)) *progressTracker {
	return &progressTracker{
		tasks:    make(map[string]taskState),
		order:    make([]string, 0, 8),
		reporter: reporter,
	}
}

func (p *progressTracker) onPlan(plan telemetry.Plan) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, planned := range plan.Steps {
		taskID := strings.TrimSpace(planned.ID)
		if taskID == "" {
			continue
		}

		task, exists := p.tasks[taskID]
		if !exists {
			p.order = append(p.order, taskID)
			task = taskState{ID: taskID, Status: taskPending}
		}
		task.ParentID = strings.TrimSpace(planned.ParentID)
		task.Title = strings.TrimSpace(planned.Title)
		if task.Title == "" {
			task.Title = taskID
		}
		task.synthetic = false
		p.tasks[taskID] = task
	}

	p.emitLocked()
}

func (p *progressTracker) onTaskStart(taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task := p.ensureTaskLocked(taskID)
	task.Status = taskRunning
	task.Message = ""
	task.synthetic = false
	p.tasks[task.ID] = task
	p.emitLocked()
}

func (p *progressTracker) onTaskEnd(taskID string, failed bool, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	task := p.ensureTaskLocked(taskID)
	task.synthetic = false
	if failed {
		task.Status = taskFailed
		task.Message = strings.TrimSpace(message)
	} else {
		task.Status = taskDone
		task.Message = ""
	}
	p.tasks[task.ID] = task
	p.emitLocked()
}

func (p *progressTracker) ensureTaskLocked(taskID string) taskState {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		taskID = "unnamed"
	}

	if task, exists := p.tasks[taskID]; exists {
		return task
	}

	parentID := ""
	if idx := strings.LastIndex(taskID, "/"); idx > 0 {
		parentID = strings.TrimSpace(taskID[:idx])
		p.ensureParentLocked(parentID)
	}

	p.order = append(p.order, taskID)
	return taskState{ID: taskID, ParentID: parentID, Title: taskID, Status: taskPending}
}

func (p *progressTracker) ensureParentLocked(parentID string) {
	parentID = strings.TrimSpace(parentID)
	if parentID == "" {
		return
	}
	if _, exists := p.tasks[parentID]; exists {
		return
	}

	ancestorID := ""
	if idx := strings.LastIndex(parentID, "/"); idx > 0 {
		ancestorID = strings.TrimSpace(parentID[:idx])
		p.ensureParentLocked(ancestorID)
	}

	p.order = append(p.order, parentID)
	p.tasks[parentID] = taskState{
		ID:        parentID,
		ParentID:  ancestorID,
		Title:     parentID,
		Status:    taskPending,
		synthetic: true,
	}
}

func (p *progressTracker) emitLocked() {
	if p.reporter == nil {
		return
	}

	childrenByParent := make(map[string][]taskState, len(p.tasks))
	for _, task := range p.tasks {
		parentID := strings.TrimSpace(task.ParentID)
		if parentID == "" {
			continue
		}
		childrenByParent[parentID] = append(childrenByParent[parentID], task)
	}

	tasks := make([]taskState, 0, len(p.order))
	for _, taskID := range p.order {
		task, exists := p.tasks[taskID]
		if !exists {
			continue
		}

		children := childrenByParent[task.ID]
		if len(children) > 0 {
			if task.synthetic {
				task.Status = deriveParentStatus(children)
			}
			summary := summarizeFanout(children)
			if strings.TrimSpace(summary) != "" {
				if strings.TrimSpace(task.Message) == "" {
					task.Message = summary
				} else if task.Status == taskFailed && !strings.Contains(task.Message, summary) {
					task.Message = summary + "; " + task.Message
				}
			}
		}

		tasks = append(tasks, task)
	}
	p.reporter(progressSnapshot{Tasks: tasks})
}

func summarizeFanout(children []taskState) string {
	total := len(children)
	if total == 0 {
		return ""
	}

	doneCount := 0
	failedCount := 0
	for _, child := range children {
		switch child.Status {
		case taskDone:
			doneCount++
		case taskFailed:
			failedCount++
		}
	}

	if failedCount > 0 {
		return fmt.Sprintf("%d/%d done, %d failed", doneCount, total, failedCount)
	}
	if doneCount == 0 {
		return fmt.Sprintf("%d discovered", total)
	}
	return fmt.Sprintf("%d/%d done", doneCount, total)
}

func deriveParentStatus(children []taskState) taskStatus {
	if len(children) == 0 {
		return taskPending
	}

	hasRunning := false
	hasFailed := false
	doneCount := 0
	for _, child := range children {
		switch child.Status {
		case taskFailed:
			hasFailed = true
		case taskRunning:
			hasRunning = true
		case taskDone:
			doneCount++
		}
	}

	if hasFailed {
		return taskFailed
	}
	if doneCount == len(children) {
		return taskDone
	}
	if hasRunning || doneCount > 0 {
		return taskRunning
	}
	return taskPending
}

// lineProgress prints one status line per task transition. Used when the
// terminal is non-interactive and the checklist cannot redraw in place.
type lineProgress struct {
	mu       sync.Mutex
	status   map[string]taskStatus
	messages map[string]string
}

func newLineProgress() *lineProgress {
	return &lineProgress{
		status:   make(map[string]taskStatus),
		messages: make(map[string]string),
	}
}

func (l *lineProgress) OnSnapshot(snapshot progressSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, task := range snapshot.Tasks {
		if task.Status == taskPending {
			continue
		}

		taskID := strings.TrimSpace(task.ID)
		if taskID == "" {
			taskID = strings.TrimSpace(task.Title)
		}
		if taskID == "" {
			continue
		}

		msg := strings.TrimSpace(task.Message)
		prevStatus, hasStatus := l.status[taskID]
		prevMsg := l.messages[taskID]
		if hasStatus && prevStatus == task.Status && prevMsg == msg {
			continue
		}

		l.status[taskID] = task.Status
		l.messages[taskID] = msg
		fmt.Fprintln(os.Stderr, formatTaskLine(task, msg))
	}
}

func formatTaskLine(task taskState, msg string) string {
	prefix := "[..]"
	switch task.Status {
	case taskRunning:
		prefix = "[->]"
	case taskDone:
		prefix = "[ok]"
	case taskFailed:
		prefix = "[x]"
	}

	indent := "  "
	if strings.TrimSpace(task.ParentID) != "" {
		indent = "    "
	}

	title := strings.TrimSpace(task.Title)
	if title == "" {
		title = strings.TrimSpace(task.ID)
	}
	if msg != "" {
		return fmt.Sprintf("%s%s %s (%s)", indent, prefix, title, msg)
	}
	return fmt.Sprintf("%s%s %s", indent, prefix, title)
}
