package ui

import (
	"net/http"
	"time"

	"filepower/lockout"

	tea "github.com/charmbracelet/bubbletea"
)

type state int

const (
	stateLogin state = iota
	stateFiles
	stateMove
	stateLogs
	stateUsers
	stateViewer
)

type Options struct {
	Server      string
	Timeout     time.Duration
	DownloadDir string
}

type RootModel struct {
	State    state
	Client   *Client
	Opts     Options
	Login    LoginModel
	Files    FilesModel
	Move     MoveModel
	Logs     LogsModel
	Users    UsersModel
	Viewer   ViewerModel
	Quitting bool
	width    int
	height   int
}

func NewRootModel(opts Options) RootModel {
	c := NewClient(opts.Server, opts.Timeout)
	guard := lockout.New(lockout.NewMemoryStore(), lockout.DefaultMaxAttempts, lockout.DefaultCooldown)
	return RootModel{
		State:  stateLogin,
		Client: c,
		Opts:   opts,
		Login:  NewLoginModel(c, guard, opts.Timeout),
	}
}

func (m RootModel) Init() tea.Cmd {
	return m.Login.Init()
}

func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			if m.Files.Transfer != nil {
				m.Files.Transfer.cancel()
			}
			return m, tea.Quit
		}

	case loginSuccessMsg:
		m.State = stateFiles
		m.Files = NewFilesModel(m.Client, m.Opts.Timeout, m.Opts.DownloadDir, m.width, m.height)
		return m, m.Files.Init()

	case openMoveMsg:
		m.State = stateMove
		m.Move = NewMoveModel(m.Client, m.Opts.Timeout, msg.File, msg.Current)
		return m, m.Move.Init()

	case moveDoneMsg:
		m.State = stateFiles
		var cmd tea.Cmd
		m.Files, cmd = m.Files.Update(msg.Result)
		return m, cmd

	case openViewerMsg:
		m.State = stateViewer
		m.Viewer = NewViewerModel(m.Client, m.Opts.Timeout, msg.File, m.width, m.height)
		return m, m.Viewer.Init()

	case openLogsMsg:
		m.State = stateLogs
		m.Logs = NewLogsModel(m.Client, m.Opts.Timeout, m.height)
		return m, m.Logs.Init()

	case openUsersMsg:
		m.State = stateUsers
		m.Users = NewUsersModel(m.Client, m.Opts.Timeout, m.height)
		return m, m.Users.Init()

	case backMsg:
		m.State = stateFiles
		return m, nil

	case downloadProgressMsg, downloadDoneMsg:
		// downloads keep running while another screen is open
		var cmd tea.Cmd
		m.Files, cmd = m.Files.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.State {
	case stateLogin:
		m.Login, cmd = m.Login.Update(msg)
	case stateFiles:
		m.Files, cmd = m.Files.Update(msg)
	case stateMove:
		m.Move, cmd = m.Move.Update(msg)
	case stateLogs:
		m.Logs, cmd = m.Logs.Update(msg)
	case stateUsers:
		m.Users, cmd = m.Users.Update(msg)
	case stateViewer:
		m.Viewer, cmd = m.Viewer.Update(msg)
	}
	if m.State != stateLogin && StatusOf(m.activeErr()) == http.StatusUnauthorized {
		return m.signedOut("Session expired, sign in again")
	}
	return m, cmd
}

func (m RootModel) activeErr() error {
	switch m.State {
	case stateFiles:
		return m.Files.Err
	case stateMove:
		return m.Move.Err
	case stateLogs:
		return m.Logs.Err
	case stateUsers:
		return m.Users.Err
	case stateViewer:
		return m.Viewer.Err
	}
	return nil
}

// signedOut drops the session and shows the login form with notice.
func (m RootModel) signedOut(notice string) (tea.Model, tea.Cmd) {
	if m.Files.Transfer != nil {
		m.Files.Transfer.cancel()
	}
	m.Client.Logout()
	m.State = stateLogin
	m.Login = NewLoginModel(m.Client, m.Login.Guard, m.Opts.Timeout)
	m.Login.Notice = notice
	return m, m.Login.Init()
}

func (m RootModel) View() string {
	if m.Quitting {
		return "Bye!\n"
	}
	switch m.State {
	case stateLogin:
		return m.Login.View()
	case stateFiles:
		return m.Files.View()
	case stateMove:
		return m.Move.View()
	case stateLogs:
		return m.Logs.View()
	case stateUsers:
		return m.Users.View()
	case stateViewer:
		return m.Viewer.View()
	}
	return "Unknown state"
}
