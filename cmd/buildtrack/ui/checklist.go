package ui

import (
	"fmt"
	"os"
	"sync"
	"time"
)

var spinFrames = [...]string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Checklist renders progress snapshots as a terminal checklist.
// Pending tasks are muted, running tasks show a braille spinner,
// done tasks show a checkmark, failed tasks show a red x.
type Checklist struct {
	tasks         []taskState
	renderedLines int
	mu            sync.Mutex
	stop          chan struct{}
	frame         int
	once          sync.Once
}

// NewChecklist creates a Checklist ready to receive progress snapshots.
func NewChecklist() *Checklist {
	return &Checklist{stop: make(chan struct{})}
}

// OnSnapshot updates the checklist on each progress snapshot.
func (c *Checklist) OnSnapshot(snap progressSnapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	first := c.tasks == nil
	c.tasks = snap.Tasks

	if first {
		for _, task := range c.tasks {
			icon, label := c.taskStyle(task)
			fmt.Fprintf(os.Stderr, "%s%s %s\n", taskIndent(task), icon, label)
		}
		c.renderedLines = len(c.tasks)
		go c.spin()
		return
	}
	c.redraw()
}

// Close stops the spinner.
func (c *Checklist) Close() {
	c.once.Do(func() {
		close(c.stop)
	})
}

func (c *Checklist) spin() {
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			c.frame = (c.frame + 1) % len(spinFrames)
			c.redraw()
			c.mu.Unlock()
		}
	}
}

// redraw reprints all task lines in place. Caller must hold c.mu.
func (c *Checklist) redraw() {
	if len(c.tasks) == 0 && c.renderedLines == 0 {
		return
	}
	if c.renderedLines > 0 {
		fmt.Fprintf(os.Stderr, "\033[%dA", c.renderedLines)
	}
	for _, task := range c.tasks {
		icon, label := c.taskStyle(task)
		line := fmt.Sprintf("%s%s %s", taskIndent(task), icon, label)
		if task.Message != "" {
			line += " " + Muted(task.Message)
		}
		fmt.Fprintf(os.Stderr, "\r%s\033[K\n", line)
	}
	for i := len(c.tasks); i < c.renderedLines; i++ {
		fmt.Fprint(os.Stderr, "\r\033[K\n")
	}
	c.renderedLines = len(c.tasks)
}

func (c *Checklist) taskStyle(task taskState) (icon, label string) {
	switch task.Status {
	case taskRunning:
		return Accent(spinFrames[c.frame]), task.Title
	case taskDone:
		return Success("✓"), task.Title
	case taskFailed:
		return ErrorStyle.Render("✗"), ErrorStyle.Render(task.Title)
	default:
		return Muted("●"), Muted(task.Title)
	}
}

func taskIndent(task taskState) string {
	if task.ParentID != "" {
		return "    "
	}
	return "  "
}
