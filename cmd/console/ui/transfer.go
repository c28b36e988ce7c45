package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"filepower/explorer"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
)

type downloadProgressMsg struct {
	Done  int64
	Total int64
}

type downloadDoneMsg struct {
	Path string
	Size int64
	Err  error
}

// transfer is a running download. Progress arrives on ch; cancel aborts it.
type transfer struct {
	Name   string
	Done   int64
	Total  int64
	Bar    progress.Model
	ch     chan tea.Msg
	cancel context.CancelFunc
}

func (t *transfer) wait() tea.Cmd {
	ch := t.ch
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (t *transfer) View() string {
	pct := 0.0
	if t.Total > 0 {
		pct = float64(t.Done) / float64(t.Total)
	}
	size := explorer.HumanSize(t.Done)
	if t.Total > 0 {
		size += " / " + explorer.HumanSize(t.Total)
	}
	return fmt.Sprintf("Downloading %s  %s  %s  %s", t.Name, t.Bar.ViewAs(pct), size, blurredStyle.Render("esc to cancel"))
}

func (m FilesModel) startDownload(e explorer.Entry) (FilesModel, tea.Cmd) {
	dest, err := uniquePath(m.DownloadDir, e.Name, time.Now())
	if err != nil {
		m.Err = err
		return m, nil
	}
	f, err := os.Create(dest)
	if err != nil {
		m.Err = err
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &transfer{
		Name:   e.Name,
		Total:  e.Size,
		Bar:    progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		ch:     make(chan tea.Msg, 16),
		cancel: cancel,
	}
	m.Transfer = t
	m.Err = nil
	m.Status = ""

	c, id, ch := m.Client, e.ID, t.ch
	go func() {
		defer close(ch)
		var last time.Time
		n, err := c.Download(ctx, id, f, func(done, total int64) {
			if time.Since(last) < 100*time.Millisecond && done != total {
				return
			}
			last = time.Now()
			select {
			case ch <- downloadProgressMsg{Done: done, Total: total}:
			default:
			}
		})
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dest)
		}
		ch <- downloadDoneMsg{Path: dest, Size: n, Err: err}
	}()
	return m, t.wait()
}

func (m FilesModel) updateTransfer(msg tea.Msg) (FilesModel, tea.Cmd) {
	t := m.Transfer
	if t == nil {
		return m, nil
	}
	switch msg := msg.(type) {
	case downloadProgressMsg:
		t.Done = msg.Done
		if msg.Total > 0 {
			t.Total = msg.Total
		}
		return m, t.wait()
	case downloadDoneMsg:
		t.cancel()
		m.Transfer = nil
		switch {
		case errors.Is(msg.Err, context.Canceled):
			m.Status = "Download cancelled"
		case msg.Err != nil:
			m.Err = fmt.Errorf("download %s: %w", t.Name, msg.Err)
		default:
			m.Status = fmt.Sprintf("Saved %s (%s)", msg.Path, explorer.HumanSize(msg.Size))
		}
	}
	return m, nil
}

// uniquePath picks a destination in dir that does not overwrite an existing
// file, falling back to the keep-both naming.
func uniquePath(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name = filepath.Base(name)
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); errors.Is(err, os.ErrNotExist) {
		return dest, nil
	}
	return filepath.Join(dir, explorer.KeepBothName(name, now)), nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

func baseName(path string) string { return filepath.Base(path) }
