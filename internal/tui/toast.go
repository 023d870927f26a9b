package tui

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	lipgloss "charm.land/lipgloss/v2"

	"github.com/colonyops/patchview/internal/core/render/termrender"
	"github.com/colonyops/patchview/internal/core/styles"
)

const (
	defaultToastTTL   = 4 * time.Second
	defaultMaxToasts  = 3
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 44
)

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastWarning
	toastError
)

type toast struct {
	level     toastLevel
	message   string
	remaining time.Duration
}

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

// Toasts holds short-lived notices shown over the lower right corner. The
// results region stays reserved for diff output and its errors.
type Toasts struct {
	toasts  []toast
	ticking bool
}

// Push adds a notice and returns the tick command when the countdown is
// not already running. The oldest notice is evicted past the limit.
func (c *Toasts) Push(level toastLevel, message string) tea.Cmd {
	c.toasts = append(c.toasts, toast{
		level:     level,
		message:   termrender.Sanitize(message),
		remaining: defaultToastTTL,
	})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}

	if c.ticking {
		return nil
	}
	c.ticking = true
	return scheduleToastTick()
}

// Tick decrements the remaining TTL on all toasts by d, drops expired
// ones and returns the next tick while any are left.
func (c *Toasts) Tick(d time.Duration) tea.Cmd {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive

	if len(c.toasts) == 0 {
		c.ticking = false
		return nil
	}
	return scheduleToastTick()
}

// Dismiss removes the newest toast.
func (c *Toasts) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// Len returns the number of visible toasts.
func (c *Toasts) Len() int {
	return len(c.toasts)
}

// View renders the stack, oldest at the top.
func (c *Toasts) View() string {
	if len(c.toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(c.toasts))
	for _, t := range c.toasts {
		rendered = append(rendered, renderToast(t))
	}
	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	icon, style := styles.IconNotifyInfo, styles.ToastInfoStyle
	switch t.level {
	case toastWarning:
		icon, style = styles.IconNotifyWarning, styles.ToastWarningStyle
	case toastError:
		icon, style = styles.IconNotifyError, styles.ToastErrorStyle
	}
	return style.Width(toastWidth).Render(icon + " " + t.message)
}

// Overlay composites the toast stack over background in the lower-right corner.
func (c *Toasts) Overlay(background string, width, height int) string {
	content := c.View()
	if content == "" {
		return background
	}

	bgLayer := lipgloss.NewLayer(background)
	toastLayer := lipgloss.NewLayer(content)

	rightX := max(width-lipgloss.Width(content)-1, 0)
	bottomY := max(height-lipgloss.Height(content)-1, 0)
	toastLayer.X(rightX).Y(bottomY).Z(2)

	return lipgloss.NewCompositor(bgLayer, toastLayer).Render()
}
