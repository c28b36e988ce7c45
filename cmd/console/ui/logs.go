package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"filepower/backend/app/dto"
	"filepower/explorer"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type logsLoadedMsg struct {
	Seq  int
	Resp dto.ActivityResponse
	Err  error
}

// backMsg returns from a secondary screen to the browser.
type backMsg struct{}

// actionFilters is the cycle order of the action filter.
var actionFilters = append([]explorer.Action{explorer.ActionAll}, explorer.Actions...)

type LogsModel struct {
	Client    *Client
	Timeout   time.Duration
	Table     table.Model
	Rows      []dto.ActivityRow
	Stats     map[string]int64
	FilterIdx int
	Search    textinput.Model
	Searching bool
	Shown     int
	Loading   bool
	Err       error
	seq       int
	height    int
}

func NewLogsModel(c *Client, timeout time.Duration, height int) LogsModel {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "file, user, action or date"
	columns := []table.Column{
		{Title: "When", Width: 16},
		{Title: "User", Width: 20},
		{Title: "Action", Width: 14},
		{Title: "File", Width: 30},
		{Title: "Details", Width: 36},
	}
	return LogsModel{
		Client:  c,
		Timeout: timeout,
		Table:   newTable(columns, tableHeight(height, 12)),
		Search:  search,
		Shown:   explorer.PageStep,
		Loading: true,
		height:  height,
	}
}

func (m LogsModel) Init() tea.Cmd {
	return m.fetch(m.seq)
}

func (m LogsModel) filter() explorer.Action { return actionFilters[m.FilterIdx] }

func (m *LogsModel) load() tea.Cmd {
	m.seq++
	m.Loading = true
	return m.fetch(m.seq)
}

func (m LogsModel) fetch(seq int) tea.Cmd {
	c, timeout := m.Client, m.Timeout
	action, query := string(m.filter()), strings.TrimSpace(m.Search.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		resp, err := c.Logs(ctx, action, query)
		return logsLoadedMsg{Seq: seq, Resp: resp, Err: err}
	}
}

func details(r dto.ActivityRow) string {
	switch explorer.Action(r.Action) {
	case explorer.ActionRename, explorer.ActionRenameFolder:
		return r.OldFileName + " → " + r.NewFileName
	case explorer.ActionMove:
		return "from " + r.OldFileName + " to " + r.NewFileName
	case explorer.ActionCreateFolder, explorer.ActionDeleteFolder:
		return "in " + r.FilePath
	}
	return r.FileType
}

func (m *LogsModel) render() {
	page := explorer.Page(m.Rows, m.Shown)
	rows := make([]table.Row, 0, len(page))
	for _, r := range page {
		rows = append(rows, table.Row{explorer.Ago(r.CreatedAt), r.UserName, r.Action, r.FileName, details(r)})
	}
	m.Table.SetRows(rows)
	if m.Table.Cursor() >= len(rows) {
		m.Table.SetCursor(0)
	}
}

func (m LogsModel) Update(msg tea.Msg) (LogsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.Table.SetHeight(tableHeight(msg.Height, 12))
		return m, nil

	case logsLoadedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.Loading = false
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.Rows = msg.Resp.Data
		m.Stats = msg.Resp.Stats
		m.Shown = explorer.PageStep
		m.render()
		return m, nil

	case tea.KeyMsg:
		if m.Searching {
			switch msg.Type {
			case tea.KeyEnter, tea.KeyEsc:
				m.Searching = false
				m.Search.Blur()
				if msg.Type == tea.KeyEsc {
					m.Search.SetValue("")
				}
				cmd := m.load()
				return m, cmd
			}
			var cmd tea.Cmd
			m.Search, cmd = m.Search.Update(msg)
			return m, cmd
		}
		switch msg.String() {
		case "esc", "q":
			return m, func() tea.Msg { return backMsg{} }
		case "/":
			m.Searching = true
			cmd := m.Search.Focus()
			return m, cmd
		case "tab":
			m.FilterIdx = (m.FilterIdx + 1) % len(actionFilters)
			cmd := m.load()
			return m, cmd
		case "shift+tab":
			m.FilterIdx = (m.FilterIdx - 1 + len(actionFilters)) % len(actionFilters)
			cmd := m.load()
			return m, cmd
		case "m":
			if m.Shown < len(m.Rows) {
				m.Shown += explorer.PageStep
				m.render()
			}
			return m, nil
		case "ctrl+r":
			cmd := m.load()
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m LogsModel) statsLine() string {
	keys := make([]string, 0, len(m.Stats))
	for k := range m.Stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %d", k, m.Stats[k]))
	}
	return strings.Join(parts, "  ")
}

func (m LogsModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Activity log") + "\n\n")
	b.WriteString(blurredStyle.Render("Totals: "+m.statsLine()) + "\n")
	b.WriteString(fmt.Sprintf("Action: %s   showing %d of %d", crumbStyle.Render(string(m.filter())), len(explorer.Page(m.Rows, m.Shown)), len(m.Rows)))
	if m.Loading {
		b.WriteString(blurredStyle.Render("   loading..."))
	}
	b.WriteString("\n")
	if m.Searching || m.Search.Value() != "" {
		b.WriteString(m.Search.View() + "\n")
	}
	b.WriteString("\n" + m.Table.View() + "\n")
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()) + "\n")
	}
	b.WriteString("\n" + blurredStyle.Render("tab action filter  / search  m load more  ctrl+r refresh  esc back"))
	return b.String()
}
