package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filepower/backend/app/dto"
	"filepower/explorer"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/gabriel-vasile/mimetype"
)

// previewLimit bounds how much of a file the viewer reads.
const previewLimit = 64 << 10

type openViewerMsg struct {
	File dto.FileResponse
}

type previewMsg struct {
	Seq   int
	Data  []byte
	Total int64
	Err   error
}

type ViewerModel struct {
	Client   *Client
	Timeout  time.Duration
	File     dto.FileResponse
	Viewport viewport.Model

	Kind      string
	Binary    bool
	Truncated bool
	Loading   bool
	Err       error
	seq       int
}

func NewViewerModel(c *Client, timeout time.Duration, file dto.FileResponse, width, height int) ViewerModel {
	if width <= 0 {
		width = 80
	}
	return ViewerModel{
		Client:   c,
		Timeout:  timeout,
		File:     file,
		Viewport: viewport.New(width, tableHeight(height, 8)),
		Loading:  true,
	}
}

func (m ViewerModel) Init() tea.Cmd {
	return m.fetch(m.seq)
}

func (m *ViewerModel) reload() tea.Cmd {
	m.seq++
	m.Loading = true
	m.Err = nil
	return m.fetch(m.seq)
}

func (m ViewerModel) fetch(seq int) tea.Cmd {
	c, timeout, id := m.Client, m.Timeout, m.File.ID
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		data, total, err := c.Preview(ctx, id, previewLimit)
		return previewMsg{Seq: seq, Data: data, Total: total, Err: err}
	}
}

// isText reports whether the sniffed type is plain text or derives from it.
func isText(mt *mimetype.MIME) bool {
	for ; mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

func (m *ViewerModel) apply(msg previewMsg) {
	m.Loading = false
	if msg.Err != nil {
		m.Err = msg.Err
		return
	}
	size := msg.Total
	if size < 0 {
		size = m.File.Size
	}
	mt := mimetype.Detect(msg.Data)
	m.Kind = mt.String()
	m.Binary = !isText(mt)
	m.Truncated = int64(len(msg.Data)) < size

	if m.Binary {
		m.Viewport.SetContent(fmt.Sprintf("binary file (%s, %s)\n\nOpen it in a browser: %s",
			m.Kind, explorer.HumanSize(size), m.Client.ContentURL(m.File.ID)))
		m.Viewport.GotoTop()
		return
	}
	content := strings.ReplaceAll(string(msg.Data), "\t", "    ")
	if m.Truncated {
		content += fmt.Sprintf("\n\n[showing the first %s of %s]", explorer.HumanSize(int64(len(msg.Data))), explorer.HumanSize(size))
	}
	m.Viewport.SetContent(content)
	m.Viewport.GotoTop()
}

func (m ViewerModel) Update(msg tea.Msg) (ViewerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Viewport.Width = msg.Width
		m.Viewport.Height = tableHeight(msg.Height, 8)
		return m, nil

	case previewMsg:
		if msg.Seq == m.seq {
			m.apply(msg)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return backMsg{} }
		case "r", "ctrl+r":
			cmd := m.reload()
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.Viewport, cmd = m.Viewport.Update(msg)
	return m, cmd
}

func (m ViewerModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.File.Name) + "  " + blurredStyle.Render(m.Kind) + "\n")
	b.WriteString(blurredStyle.Render(m.Client.ContentURL(m.File.ID)) + "\n\n")
	switch {
	case m.Err != nil:
		b.WriteString(errorMessageStyle("! "+m.Err.Error()) + "\n")
	case m.Loading:
		b.WriteString(blurredStyle.Render("loading...") + "\n")
	default:
		b.WriteString(m.Viewport.View() + "\n")
		if !m.Binary {
			b.WriteString(blurredStyle.Render(fmt.Sprintf("%3.f%%", m.Viewport.ScrollPercent()*100)) + "\n")
		}
	}
	b.WriteString("\n" + blurredStyle.Render("up/down scroll  r reload  esc back"))
	return b.String()
}
