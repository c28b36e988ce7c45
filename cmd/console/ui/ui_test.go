package ui

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"filepower/backend/app/dto"
	"filepower/backend/config"
	"filepower/backend/initialize"
	"filepower/explorer"
	"filepower/lockout"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminEmail    = "admin@console.test"
	adminPassword = "admin-pass"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Log.Level = "error"
	cfg.DB.Driver = "sqlite"
	cfg.DB.Path = ":memory:"
	cfg.Storage.URI = "mem://" + uuid.NewString() + "/objects/"
	cfg.Admin.Email = adminEmail
	cfg.Admin.Password = adminPassword
	app, err := initialize.BuildWithConfig(cfg)
	require.NoError(t, err)
	srv := httptest.NewServer(app.Router)
	t.Cleanup(func() {
		srv.Close()
		app.Close()
	})
	return srv
}

func signedIn(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.Login(context.Background(), adminEmail, adminPassword)
	require.NoError(t, err)
	return c
}

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestClient_FileRoundTrip(t *testing.T) {
	srv := newBackend(t)
	c := signedIn(t, srv)
	ctx := context.Background()
	assert.Equal(t, "admin", c.User.Role)

	folder, err := c.CreateFolder(ctx, "Reports", nil)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "q1.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b\n1,2\n"), 0o600))
	up, err := c.Upload(ctx, path, nil, "new")
	require.NoError(t, err)
	assert.Equal(t, "q1.csv", up.Data.Name)

	exists, err := c.FileExists(ctx, "q1.csv", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = c.Upload(ctx, path, nil, "new")
	assert.Equal(t, http.StatusConflict, StatusOf(err))

	var buf bytes.Buffer
	var calls int
	n, err := c.Download(ctx, up.Data.ID, &buf, func(done, total int64) {
		calls++
		assert.Equal(t, int64(8), total)
	})
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "a,b\n1,2\n", buf.String())
	assert.Positive(t, calls)

	moved, err := c.MoveFile(ctx, up.Data.ID, &folder.Data.ID)
	require.NoError(t, err)
	assert.Len(t, moved.Affected, 2)

	files, err := c.ListFiles(ctx, &folder.Data.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)

	found, err := c.SearchFiles(ctx, "Q1")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	logs, err := c.Logs(ctx, "MOVE", "")
	require.NoError(t, err)
	require.Len(t, logs.Data, 1)
	assert.Equal(t, "root", logs.Data[0].OldFileName)
	assert.Equal(t, "Reports", logs.Data[0].NewFileName)

	people, err := c.Users(ctx, "")
	require.NoError(t, err)
	assert.Len(t, people, 1)
	p, err := c.Lookup(ctx, adminEmail)
	require.NoError(t, err)
	assert.Equal(t, adminEmail, p.Email)
}

func TestClient_LoginFailureCarriesAttempts(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.Login(context.Background(), adminEmail, "nope")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, lockout.DefaultMaxAttempts-1, apiErr.Remaining)
	assert.Empty(t, c.Token)

	_, err = c.ListFolders(context.Background(), nil)
	assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
}

func TestLoginModel_Success(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, 5*time.Second)
	m := NewLoginModel(c, lockout.New(lockout.NewMemoryStore(), 3, time.Minute), 5*time.Second)
	m.Inputs[inputEmail].SetValue(adminEmail)
	m.Inputs[inputPassword].SetValue(adminPassword)
	m.FocusIdx = inputPassword

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.Busy)

	m, cmd = m.Update(cmd())
	require.NotNil(t, cmd)
	assert.False(t, m.Busy)
	assert.NoError(t, m.Err)
	done, ok := cmd().(loginSuccessMsg)
	require.True(t, ok)
	assert.Equal(t, adminEmail, done.User.Email)
	assert.NotEmpty(t, c.Token)
}

func TestLoginModel_LocalLockout(t *testing.T) {
	srv := newBackend(t)
	c := NewClient(srv.URL, 5*time.Second)
	m := NewLoginModel(c, lockout.New(lockout.NewMemoryStore(), 2, time.Minute), 5*time.Second)
	m.FocusIdx = inputPassword

	attempt := func() LoginModel {
		m.Inputs[inputEmail].SetValue(adminEmail)
		m.Inputs[inputPassword].SetValue("wrong")
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		if cmd == nil {
			return next
		}
		next, _ = next.Update(cmd())
		return next
	}

	m = attempt()
	require.Error(t, m.Err)
	assert.Equal(t, "1 attempt(s) left", m.Notice)

	m = attempt()
	assert.ErrorIs(t, m.Err, lockout.ErrLocked)

	// the guard refuses without asking the server
	m.Inputs[inputPassword].SetValue(adminPassword)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.Err, lockout.ErrLocked)
}

func listing() loadedMsg {
	day := func(d int) time.Time { return time.Date(2024, 12, d, 10, 0, 0, 0, time.UTC) }
	projects := "f1"
	return loadedMsg{
		Folders: []dto.FolderResponse{{ID: projects, Name: "Projects", CreatedAt: day(1)}},
		Files: []dto.FileResponse{
			{ID: "a", Name: "report.pdf", UploadedAt: day(2), UploaderEmail: "ann@example.com"},
			{ID: "b", Name: "report (1).pdf", UploadedAt: day(5), UploaderEmail: "bob@example.com"},
			{ID: "c", Name: "notes.txt", UploadedAt: day(3), UploaderEmail: "ann@example.com"},
		},
	}
}

func TestFilesModel_ListingDuplicatesAndSort(t *testing.T) {
	m := NewFilesModel(NewClient("http://unused", time.Second), time.Second, t.TempDir(), 120, 40)
	m, _ = m.Update(listing())

	require.Len(t, m.Rows, 4)
	assert.True(t, m.Rows[0].Folder, "folders come first")
	assert.Equal(t, []string{"b", "c", "a"}, []string{m.Rows[1].ID, m.Rows[2].ID, m.Rows[3].ID})
	assert.Equal(t, "Duplicate (2)", m.Dups.Tag("b"))
	assert.Contains(t, m.Table.Rows()[1][1], "[Duplicate (2)]")

	m, _ = m.Update(keys("s"))
	assert.Equal(t, explorer.SortAsc, m.Order)
	assert.Equal(t, []string{"a", "c", "b"}, []string{m.Rows[1].ID, m.Rows[2].ID, m.Rows[3].ID})

	m.Table.SetCursor(1)
	m, _ = m.Update(keys("d"))
	assert.Equal(t, "a", m.ActiveDup)
	assert.Contains(t, m.Table.Rows()[3][1], "*Duplicate (2)")
	m, _ = m.Update(keys("d"))
	assert.Empty(t, m.ActiveDup)

	m, _ = m.Update(keys("/"))
	assert.Equal(t, modeSearch, m.Mode)
	for _, r := range "dec 3" {
		m, _ = m.Update(keys(string(r)))
	}
	require.Len(t, m.Rows, 1)
	assert.Equal(t, "c", m.Rows[0].ID)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Len(t, m.Rows, 4)
}

func TestFilesModel_Navigation(t *testing.T) {
	m := NewFilesModel(NewClient("http://unused", time.Second), time.Second, t.TempDir(), 120, 40)
	m, _ = m.Update(listing())
	m.Scope = explorer.ScopeAll

	m.Table.SetCursor(0)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Equal(t, "Projects", m.Nav.Current().Name)
	assert.Equal(t, explorer.ScopeCurrent, m.Scope, "global scope is dropped below the root")
	assert.True(t, m.Loading)

	// a stale listing is ignored
	stale := listing()
	stale.Seq = m.seq - 1
	m, _ = m.Update(stale)
	assert.True(t, m.Loading)

	assert.Contains(t, m.breadcrumbs(), "1:Home")

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	require.NotNil(t, cmd)
	assert.True(t, m.Nav.AtRoot())

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	assert.Nil(t, cmd)
}

func TestFilesModel_FolderNameValidatedLocally(t *testing.T) {
	m := NewFilesModel(NewClient("http://unused", time.Second), time.Second, t.TempDir(), 120, 40)
	m, _ = m.Update(listing())

	m, _ = m.Update(keys("n"))
	require.Equal(t, modePrompt, m.Mode)
	m.Prompt.Input.SetValue("projects")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.Err, explorer.ErrNameTaken)
	assert.Equal(t, modeBrowse, m.Mode)
}

func TestFilesModel_MutationsAgainstBackend(t *testing.T) {
	srv := newBackend(t)
	c := signedIn(t, srv)
	m := NewFilesModel(c, 5*time.Second, t.TempDir(), 120, 40)

	// run feeds command results back into the model, skipping cursor blinks
	run := func(cmd tea.Cmd) {
		t.Helper()
		for cmd != nil {
			switch msg := cmd().(type) {
			case loadedMsg, mutationMsg, uploadCheckMsg:
				m, cmd = m.Update(msg)
			default:
				return
			}
		}
	}
	run(m.Init())
	assert.Empty(t, m.Rows)

	m, _ = m.Update(keys("n"))
	m.Prompt.Input.SetValue("Inbox")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	require.NoError(t, m.Err)
	assert.Equal(t, "Created folder Inbox", m.Status)
	require.Len(t, m.Rows, 1)

	path := filepath.Join(t.TempDir(), "memo.txt")
	require.NoError(t, os.WriteFile(path, []byte("memo"), 0o600))
	m, _ = m.Update(keys("u"))
	m.Prompt.Input.SetValue(path)
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	require.NoError(t, m.Err)
	require.Len(t, m.Rows, 2)

	// same name again asks to keep both
	m, _ = m.Update(keys("u"))
	m.Prompt.Input.SetValue(path)
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	require.NotNil(t, m.Prompt)
	assert.Equal(t, promptKeepBoth, m.Prompt.Kind)
	m.Prompt.Input.SetValue("y")
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(cmd)
	require.Len(t, m.Rows, 3)
	assert.NotEmpty(t, m.Dups, "the keep-both copy groups with the original")
}

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	now := time.Unix(1700000000, 0)

	p, err := uniquePath(dir, "a.txt", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a.txt"), p)

	require.NoError(t, os.WriteFile(p, nil, 0o600))
	p, err = uniquePath(dir, "a.txt", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "a (1700000000).txt"), p)

	p, err = uniquePath(dir, "../escape.txt", now)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p, dir))
}

func TestMoveModel_DisablesSourceAndCurrent(t *testing.T) {
	folder := "f1"
	m := NewMoveModel(NewClient("http://unused", time.Second), time.Second, dto.FileResponse{ID: "x", Name: "x.txt", FolderID: &folder}, nil)

	assert.True(t, m.Disabled(explorer.Root()))
	assert.True(t, m.Disabled(explorer.FolderRef{ID: &folder, Name: "F1"}))
	other := "f2"
	assert.False(t, m.Disabled(explorer.FolderRef{ID: &other, Name: "F2"}))

	m, _ = m.Update(childrenMsg{Key: "", Folders: []dto.FolderResponse{{ID: "f1", Name: "F1"}, {ID: "f2", Name: "F2"}}})
	require.Len(t, m.visible(), 3)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Error(t, m.Err)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd, "expanding fetches children")
	assert.True(t, m.visible()[2].Loading)
}

func TestRootModel_ExpiredSessionReturnsToLogin(t *testing.T) {
	root := NewRootModel(Options{Server: "http://unused", Timeout: time.Second, DownloadDir: t.TempDir()})
	root.Client.Token = "stale"
	root.State = stateFiles
	root.Files = NewFilesModel(root.Client, time.Second, t.TempDir(), 120, 40)

	next, cmd := root.Update(mutationMsg{Err: &APIError{Status: http.StatusUnauthorized}})
	require.NotNil(t, cmd)
	m := next.(RootModel)
	assert.Equal(t, stateLogin, m.State)
	assert.Empty(t, m.Client.Token)
	assert.Equal(t, "Session expired, sign in again", m.Login.Notice)
}

func TestFilesModel_GlobalSearchMatchesUploadDate(t *testing.T) {
	srv := newBackend(t)
	c := signedIn(t, srv)
	ctx := context.Background()

	folder, err := c.CreateFolder(ctx, "Deep", nil)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "memo.txt")
	require.NoError(t, os.WriteFile(path, []byte("memo"), 0o600))
	_, err = c.Upload(ctx, path, &folder.Data.ID, "new")
	require.NoError(t, err)

	m := NewFilesModel(c, 5*time.Second, t.TempDir(), 120, 40)
	m.Scope = explorer.ScopeAll
	m.Search.SetValue(time.Now().Format("January 2, 2006"))
	msg := m.reload()()
	m, _ = m.Update(msg)

	require.NoError(t, m.Err)
	var names []string
	for _, e := range m.Rows {
		names = append(names, e.Name)
	}
	assert.Contains(t, names, "memo.txt", "a date-only query finds files in other folders")
}

func TestRootModel_ViewOpensInAppViewer(t *testing.T) {
	srv := newBackend(t)
	c := signedIn(t, srv)
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("line one\n\tline two\n"), 0o600))
	_, err := c.Upload(context.Background(), path, nil, "new")
	require.NoError(t, err)

	root := NewRootModel(Options{Server: srv.URL, Timeout: 5 * time.Second, DownloadDir: t.TempDir()})
	root.Client = c
	root.State = stateFiles
	root.Files = NewFilesModel(c, 5*time.Second, t.TempDir(), 120, 40)
	root.Files, _ = root.Files.Update(root.Files.Init()())
	require.Len(t, root.Files.Rows, 1)

	next, cmd := root.Update(keys("v"))
	require.NotNil(t, cmd)
	next, cmd = next.Update(cmd())
	m := next.(RootModel)
	require.Equal(t, stateViewer, m.State)
	assert.True(t, m.Viewer.Loading)

	next, _ = m.Update(cmd())
	m = next.(RootModel)
	require.NoError(t, m.Viewer.Err)
	assert.False(t, m.Viewer.Binary)
	assert.False(t, m.Viewer.Truncated)
	assert.Equal(t, "text/plain; charset=utf-8", m.Viewer.Kind)
	view := m.Viewer.View()
	assert.Contains(t, view, "line one")
	assert.Contains(t, view, "    line two")
	assert.Contains(t, view, srv.URL+"/api/files/")

	next, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	next, _ = next.Update(cmd())
	assert.Equal(t, stateFiles, next.(RootModel).State)
}

func TestViewerModel_BinaryAndTruncated(t *testing.T) {
	c := NewClient("http://files.local", time.Second)

	m := NewViewerModel(c, time.Second, dto.FileResponse{ID: "p1", Name: "logo.png", Size: 5000}, 100, 30)
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	m, _ = m.Update(previewMsg{Data: png, Total: 5000})
	assert.True(t, m.Binary)
	assert.Equal(t, "image/png", m.Kind)
	assert.Contains(t, m.Viewport.View(), "binary file (image/png, 5.0 kB)")
	assert.Contains(t, m.Viewport.View(), "http://files.local/api/files/p1/content?inline=1")

	m = NewViewerModel(c, time.Second, dto.FileResponse{ID: "l1", Name: "big.log", Size: 200000}, 100, 30)
	m, _ = m.Update(previewMsg{Data: bytes.Repeat([]byte("log line\n"), 100), Total: 200000})
	assert.False(t, m.Binary)
	assert.True(t, m.Truncated)

	// a reply for an earlier request is dropped
	m, _ = m.Update(previewMsg{Seq: 7, Err: &APIError{Status: http.StatusNotFound}})
	assert.NoError(t, m.Err)

	m, cmd := m.Update(keys("r"))
	require.NotNil(t, cmd)
	assert.True(t, m.Loading)
}

func TestFilesModel_ShareBuildsMessage(t *testing.T) {
	var copied string
	copyText = func(s string) error { copied = s; return nil }
	t.Cleanup(func() { copyText = clipboard.WriteAll })

	srv := newBackend(t)
	c := signedIn(t, srv)
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plan.txt")
	require.NoError(t, os.WriteFile(path, []byte("plan"), 0o600))
	up, err := c.Upload(ctx, path, nil, "new")
	require.NoError(t, err)
	owner, err := c.Lookup(ctx, adminEmail)
	require.NoError(t, err)

	m := NewFilesModel(c, 5*time.Second, t.TempDir(), 120, 40)
	m, _ = m.Update(m.Init()())
	m, cmd := m.Update(keys("S"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	require.NotNil(t, m.Shared)
	text := m.Shared.Share.Text()
	assert.Equal(t, text, copied)
	assert.Equal(t, "Share details copied to the clipboard", m.Status)
	assert.Contains(t, text, "File Name: plan.txt")
	assert.Contains(t, text, "Shared By: "+explorer.SharerName(explorer.Person{FullName: owner.FullName, Email: owner.Email}))
	assert.Contains(t, text, "Type: TXT")
	assert.Contains(t, text, "Size: 4 B")
	link := srv.URL + "/api/files/" + up.Data.ID + "/content?inline=1"
	assert.Contains(t, text, "File Link: "+link)
	assert.Contains(t, m.View(), "plan.txt - Shared by")

	data, total, err := c.Preview(ctx, up.Data.ID, 1<<10)
	require.NoError(t, err)
	assert.Equal(t, "plan", string(data))
	assert.Equal(t, int64(4), total)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, m.Shared)
}

func TestFilesModel_ShareWithoutDirectoryOrClipboard(t *testing.T) {
	copyText = func(string) error { return errors.New("no clipboard") }
	t.Cleanup(func() { copyText = clipboard.WriteAll })

	m := NewFilesModel(NewClient("http://127.0.0.1:1", time.Second), time.Second, t.TempDir(), 120, 40)
	m, _ = m.Update(listing())
	m.Table.SetCursor(1)
	m, cmd := m.Update(keys("S"))
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())

	require.NotNil(t, m.Shared)
	assert.Equal(t, "b", m.Shared.ID)
	assert.Equal(t, "Unknown User", m.Shared.Share.Sharer)
	assert.Equal(t, "Share details ready", m.Status)

	// folders are not shared
	m.Table.SetCursor(0)
	_, cmd = m.Update(keys("S"))
	assert.Nil(t, cmd)
}
