package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filepower/backend/app/dto"
	"filepower/explorer"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type usersLoadedMsg struct {
	Seq    int
	People []dto.PersonResponse
	Err    error
}

type UsersModel struct {
	Client    *Client
	Timeout   time.Duration
	Table     table.Model
	People    []dto.PersonResponse
	Search    textinput.Model
	Searching bool
	Detail    *dto.PersonResponse
	Loading   bool
	Err       error
	seq       int
}

func NewUsersModel(c *Client, timeout time.Duration, height int) UsersModel {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "name, email, department"
	columns := []table.Column{
		{Title: "Name", Width: 24},
		{Title: "Email", Width: 30},
		{Title: "Department", Width: 18},
		{Title: "Role", Width: 8},
		{Title: "Status", Width: 10},
	}
	return UsersModel{
		Client:  c,
		Timeout: timeout,
		Table:   newTable(columns, tableHeight(height, 14)),
		Search:  search,
		Loading: true,
	}
}

func (m UsersModel) Init() tea.Cmd { return m.fetch(m.seq) }

func (m *UsersModel) load() tea.Cmd {
	m.seq++
	m.Loading = true
	return m.fetch(m.seq)
}

func (m UsersModel) fetch(seq int) tea.Cmd {
	c, timeout, q := m.Client, m.Timeout, strings.TrimSpace(m.Search.Value())
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		people, err := c.Users(ctx, q)
		return usersLoadedMsg{Seq: seq, People: people, Err: err}
	}
}

func label(p dto.PersonResponse) string {
	return explorer.Person{FullName: p.FullName, Email: p.Email}.Label()
}

func (m UsersModel) Update(msg tea.Msg) (UsersModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Table.SetHeight(tableHeight(msg.Height, 14))
		return m, nil

	case usersLoadedMsg:
		if msg.Seq != m.seq {
			return m, nil
		}
		m.Loading = false
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.People = msg.People
		rows := make([]table.Row, 0, len(msg.People))
		for _, p := range msg.People {
			status := "active"
			if p.Deleted {
				status = "deleted"
			}
			rows = append(rows, table.Row{label(p), p.Email, p.Department, p.Role, status})
		}
		m.Table.SetRows(rows)
		m.Table.SetCursor(0)
		m.Detail = nil
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
			if m.Detail != nil {
				m.Detail = nil
				return m, nil
			}
			return m, func() tea.Msg { return backMsg{} }
		case "/":
			m.Searching = true
			cmd := m.Search.Focus()
			return m, cmd
		case "enter":
			if i := m.Table.Cursor(); i >= 0 && i < len(m.People) {
				p := m.People[i]
				m.Detail = &p
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m UsersModel) detail() string {
	p := *m.Detail
	var lines []string
	add := func(k, v string) {
		if v != "" {
			lines = append(lines, fmt.Sprintf("%-12s %s", k+":", v))
		}
	}
	add("Name", label(p))
	add("Email", p.Email)
	add("Phone", p.Phone)
	add("Address", p.Address)
	add("Grid", p.GridAddress)
	add("Department", p.Department)
	add("BPS", p.BPS)
	add("Role", p.Role)
	if p.CreatedAt != nil {
		add("Joined", explorer.ShortDate(*p.CreatedAt))
	}
	if p.DeletedAt != nil {
		add("Deleted", explorer.ShortDate(*p.DeletedAt)+" ("+explorer.Ago(*p.DeletedAt)+")")
	}
	return strings.Join(lines, "\n")
}

func (m UsersModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Users") + "\n\n")
	b.WriteString(fmt.Sprintf("%d user(s)", len(m.People)))
	if m.Loading {
		b.WriteString(blurredStyle.Render("   loading..."))
	}
	b.WriteString("\n")
	if m.Searching || m.Search.Value() != "" {
		b.WriteString(m.Search.View() + "\n")
	}
	b.WriteString("\n" + m.Table.View() + "\n")
	if m.Detail != nil {
		b.WriteString(panelStyle.Render(m.detail()) + "\n")
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()) + "\n")
	}
	b.WriteString("\n" + blurredStyle.Render("/ search  enter details  esc back"))
	return b.String()
}
