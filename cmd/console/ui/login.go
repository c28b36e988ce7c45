package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"filepower/backend/app/dto"
	"filepower/lockout"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

const (
	inputEmail = iota
	inputPassword
)

type loginResultMsg struct {
	User dto.UserResponse
	Err  error
}

// loginSuccessMsg moves the root model to the files screen.
type loginSuccessMsg struct{ User dto.UserResponse }

type LoginModel struct {
	Client   *Client
	Guard    *lockout.Guard
	Timeout  time.Duration
	Inputs   []textinput.Model
	FocusIdx int
	Busy     bool
	Err      error
	Notice   string
}

func NewLoginModel(c *Client, guard *lockout.Guard, timeout time.Duration) LoginModel {
	inputs := make([]textinput.Model, 2)

	inputs[inputEmail] = textinput.New()
	inputs[inputEmail].Placeholder = "you@example.com"
	inputs[inputEmail].Prompt = "Email:    "
	inputs[inputEmail].Focus()

	inputs[inputPassword] = textinput.New()
	inputs[inputPassword].Placeholder = "password"
	inputs[inputPassword].EchoMode = textinput.EchoPassword
	inputs[inputPassword].Prompt = "Password: "

	return LoginModel{Client: c, Guard: guard, Timeout: timeout, Inputs: inputs}
}

func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m LoginModel) Update(msg tea.Msg) (LoginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		switch msg.Type {
		case tea.KeyEnter:
			if m.FocusIdx == len(m.Inputs)-1 {
				return m.submit()
			}
			m.nextInput()
			return m, nil
		case tea.KeyTab, tea.KeyDown:
			m.nextInput()
			return m, nil
		case tea.KeyShiftTab, tea.KeyUp:
			m.prevInput()
			return m, nil
		}

	case loginResultMsg:
		m.Busy = false
		return m.finish(msg)
	}

	cmds := make([]tea.Cmd, len(m.Inputs))
	for i := range m.Inputs {
		m.Inputs[i], cmds[i] = m.Inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *LoginModel) nextInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx = (m.FocusIdx + 1) % len(m.Inputs)
	m.Inputs[m.FocusIdx].Focus()
}

func (m *LoginModel) prevInput() {
	m.Inputs[m.FocusIdx].Blur()
	m.FocusIdx = (m.FocusIdx - 1 + len(m.Inputs)) % len(m.Inputs)
	m.Inputs[m.FocusIdx].Focus()
}

func (m LoginModel) key() string {
	return strings.ToLower(strings.TrimSpace(m.Inputs[inputEmail].Value()))
}

func (m LoginModel) submit() (LoginModel, tea.Cmd) {
	email := strings.TrimSpace(m.Inputs[inputEmail].Value())
	password := m.Inputs[inputPassword].Value()
	m.Notice = ""
	if email == "" || password == "" {
		m.Err = errors.New("email and password are required")
		return m, nil
	}
	if err := m.Guard.Check(context.Background(), m.key()); err != nil {
		m.Err = err
		return m, nil
	}
	m.Busy = true
	m.Err = nil
	c, timeout := m.Client, m.Timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		u, err := c.Login(ctx, email, password)
		return loginResultMsg{User: u, Err: err}
	}
}

func (m LoginModel) finish(res loginResultMsg) (LoginModel, tea.Cmd) {
	ctx := context.Background()
	if res.Err == nil {
		_ = m.Guard.Reset(ctx, m.key())
		m.Inputs[inputPassword].SetValue("")
		m.Err = nil
		user := res.User
		return m, func() tea.Msg { return loginSuccessMsg{User: user} }
	}

	var apiErr *APIError
	if !errors.As(res.Err, &apiErr) {
		m.Err = fmt.Errorf("cannot reach server: %w", res.Err)
		return m, nil
	}
	switch apiErr.Status {
	case http.StatusTooManyRequests:
		m.Err = fmt.Errorf("too many attempts, try again in %s", apiErr.RetryAfter)
	case http.StatusUnauthorized:
		m.Inputs[inputPassword].SetValue("")
		left, err := m.Guard.Fail(ctx, m.key())
		if err != nil {
			m.Err = err
			return m, nil
		}
		if apiErr.Remaining >= 0 && apiErr.Remaining < left {
			left = apiErr.Remaining
		}
		m.Err = errors.New("invalid email or password")
		m.Notice = fmt.Sprintf("%d attempt(s) left", left)
	default:
		m.Err = apiErr
	}
	return m, nil
}

func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("FilePower - Sign in") + "\n\n")
	for i := range m.Inputs {
		b.WriteString(m.Inputs[i].View())
		if i < len(m.Inputs)-1 {
			b.WriteRune('\n')
		}
	}
	b.WriteString("\n\n")
	if m.Busy {
		b.WriteString(blurredStyle.Render("Signing in..."))
	} else {
		b.WriteString(blurredStyle.Render("Tab to change fields, Enter to submit, Ctrl+C to quit"))
	}
	if m.Err != nil {
		b.WriteString("\n\n" + errorMessageStyle(m.Err.Error()))
	}
	if m.Notice != "" {
		b.WriteString("\n" + blurredStyle.Render(m.Notice))
	}
	return b.String()
}
