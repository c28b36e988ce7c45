package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"filepower/backend/app/dto"
	"filepower/explorer"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type filesMode int

const (
	modeBrowse filesMode = iota
	modeSearch
	modePrompt
)

type promptKind int

const (
	promptNewFolder promptKind = iota
	promptRename
	promptUpload
	promptDeleteFolder // type the folder name to confirm
	promptDeleteFile   // y/n
	promptKeepBoth     // y/n after an upload name clash
)

type prompt struct {
	Kind   promptKind
	Label  string
	Input  textinput.Model
	Target explorer.Entry
	Path   string
}

// messages

type loadedMsg struct {
	Seq     int
	Folders []dto.FolderResponse
	Files   []dto.FileResponse
	Err     error
}

// mutationMsg is the outcome of a create, rename, move, delete or upload.
type mutationMsg struct {
	Status   string
	Affected []*string
	Err      error
}

type uploadCheckMsg struct {
	Path   string
	Exists bool
	Err    error
}

type ownerMsg struct {
	ID     string
	Person dto.PersonResponse
	Err    error
}

type openMoveMsg struct {
	File    dto.FileResponse
	Current *string
}

type shareMsg struct {
	ID     string
	Share  explorer.Share
	Copied bool
}

// copyText puts text on the system clipboard.
var copyText = clipboard.WriteAll

type openLogsMsg struct{}
type openUsersMsg struct{}

type FilesModel struct {
	Client      *Client
	Timeout     time.Duration
	DownloadDir string
	Nav         *explorer.Navigator

	Table   table.Model
	all     []explorer.Entry
	Rows    []explorer.Entry
	Dups    explorer.Duplicates
	folders map[string]dto.FolderResponse
	files   map[string]dto.FileResponse

	Scope     explorer.Scope
	Order     explorer.SortOrder
	ActiveDup string
	Search    textinput.Model
	Mode      filesMode
	Prompt    *prompt

	Props      *explorer.Entry
	PropsOwner *dto.PersonResponse
	Shared     *shareMsg
	Transfer   *transfer

	Loading bool
	Status  string
	Err     error
	seq     int
	width   int
	height  int
}

func NewFilesModel(c *Client, timeout time.Duration, downloadDir string, width, height int) FilesModel {
	search := textinput.New()
	search.Placeholder = "name, email or date"
	search.Prompt = "Search: "
	search.CharLimit = 128

	columns := []table.Column{
		{Title: " ", Width: 2},
		{Title: "Name", Width: 40},
		{Title: "Owner", Width: 26},
		{Title: "Size", Width: 10},
		{Title: "Date", Width: 18},
	}
	return FilesModel{
		Client:      c,
		Timeout:     timeout,
		DownloadDir: downloadDir,
		Nav:         explorer.NewNavigator(),
		Table:       newTable(columns, tableHeight(height, 12)),
		Dups:        explorer.Duplicates{},
		folders:     map[string]dto.FolderResponse{},
		files:       map[string]dto.FileResponse{},
		Scope:       explorer.ScopeCurrent,
		Order:       explorer.SortDesc,
		Search:      search,
		Loading:     true,
		width:       width,
		height:      height,
	}
}

func (m FilesModel) Init() tea.Cmd {
	return m.fetch(m.seq)
}

func (m FilesModel) effectiveScope() explorer.Scope {
	return explorer.EffectiveScope(m.Scope, m.Nav.AtRoot())
}

// reload fetches the listing for the current folder, or runs a global
// search when the scope is All and there is a query.
func (m *FilesModel) reload() tea.Cmd {
	m.seq++
	m.Loading = true
	return m.fetch(m.seq)
}

func (m FilesModel) fetch(seq int) tea.Cmd {
	c, timeout := m.Client, m.Timeout
	current := m.Nav.Current()
	query := strings.TrimSpace(m.Search.Value())
	global := m.effectiveScope() == explorer.ScopeAll && query != ""
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		msg := loadedMsg{Seq: seq}
		msg.Folders, msg.Err = c.ListFolders(ctx, current.ID)
		if msg.Err != nil {
			return msg
		}
		if global {
			files, err := c.SearchFiles(ctx, query)
			if err != nil {
				// search failures show an empty result
				files = nil
			}
			msg.Files = files
			return msg
		}
		msg.Files, msg.Err = c.ListFiles(ctx, current.ID)
		return msg
	}
}

func folderEntry(f dto.FolderResponse) explorer.Entry {
	return explorer.Entry{
		ID:          f.ID,
		Name:        f.Name,
		Folder:      true,
		Email:       f.CreatedByEmail,
		Timestamp:   f.CreatedAt,
		FolderID:    f.ParentID,
		FileCount:   f.FileCount,
		FolderCount: f.FolderCount,
	}
}

func fileEntry(f dto.FileResponse) explorer.Entry {
	return explorer.Entry{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.UploaderEmail,
		Timestamp: f.UploadedAt,
		Size:      f.Size,
		MimeType:  f.MimeType,
		FolderID:  f.FolderID,
	}
}

func (m *FilesModel) apply(msg loadedMsg) {
	m.Loading = false
	if msg.Err != nil {
		m.Err = msg.Err
		return
	}
	m.folders = make(map[string]dto.FolderResponse, len(msg.Folders))
	m.files = make(map[string]dto.FileResponse, len(msg.Files))
	entries := make([]explorer.Entry, 0, len(msg.Folders)+len(msg.Files))
	for _, f := range msg.Folders {
		m.folders[f.ID] = f
		entries = append(entries, folderEntry(f))
	}
	for _, f := range msg.Files {
		m.files[f.ID] = f
		entries = append(entries, fileEntry(f))
	}
	m.Dups = explorer.DetectDuplicates(entries)
	if _, ok := m.Dups[m.ActiveDup]; !ok {
		m.ActiveDup = ""
	}
	m.all = entries
	m.compose()
}

// compose reapplies the query and sort order to the last listing.
func (m *FilesModel) compose() {
	m.Rows = explorer.Compose(m.all, explorer.ComposeOptions{
		Query: m.Search.Value(),
		Order: m.Order,
	})
	rows := make([]table.Row, 0, len(m.Rows))
	for _, e := range m.Rows {
		rows = append(rows, m.row(e))
	}
	cursor := m.Table.Cursor()
	m.Table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.Table.SetCursor(cursor)
}

func (m FilesModel) row(e explorer.Entry) table.Row {
	if e.Folder {
		return table.Row{"▸", e.Name, e.Email, fmt.Sprintf("%d items", e.FileCount+e.FolderCount), explorer.ShortDate(e.Timestamp)}
	}
	name := e.Name
	if tag := m.Dups.Tag(e.ID); tag != "" {
		label := tag
		if m.Dups.Related(m.ActiveDup, e.ID) {
			label = "*" + tag
		}
		name = name + "  [" + label + "]"
	}
	return table.Row{" ", name, e.Email, explorer.HumanSize(e.Size), explorer.ShortDate(e.Timestamp)}
}

func (m FilesModel) selected() (explorer.Entry, bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.Rows) {
		return explorer.Entry{}, false
	}
	return m.Rows[i], true
}

func (m FilesModel) Update(msg tea.Msg) (FilesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.Table.SetHeight(tableHeight(msg.Height, 12))
		return m, nil

	case loadedMsg:
		if msg.Seq == m.seq {
			m.apply(msg)
		}
		return m, nil

	case mutationMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			m.Status = ""
			return m, nil
		}
		m.Err = nil
		m.Status = msg.Status
		cmd := m.reload()
		return m, cmd

	case uploadCheckMsg:
		return m.afterUploadCheck(msg)

	case ownerMsg:
		if m.Props != nil && m.Props.ID == msg.ID && msg.Err == nil {
			p := msg.Person
			m.PropsOwner = &p
		}
		return m, nil

	case shareMsg:
		if e, ok := m.selected(); ok && e.ID == msg.ID {
			m.Shared = &msg
			m.Props, m.PropsOwner = nil, nil
			m.Status = "Share details ready"
			if msg.Copied {
				m.Status = "Share details copied to the clipboard"
			}
		}
		return m, nil

	case downloadProgressMsg, downloadDoneMsg:
		return m.updateTransfer(msg)

	case tea.KeyMsg:
		switch m.Mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modePrompt:
			return m.updatePrompt(msg)
		}
		return m.updateBrowse(msg)
	}

	var cmd tea.Cmd
	if m.Mode == modePrompt && m.Prompt != nil {
		m.Prompt.Input, cmd = m.Prompt.Input.Update(msg)
	}
	return m, cmd
}

func (m FilesModel) updateBrowse(msg tea.KeyMsg) (FilesModel, tea.Cmd) {
	m.Err = nil
	switch msg.String() {
	case "enter":
		e, ok := m.selected()
		if !ok || !e.Folder {
			return m, nil
		}
		id := e.ID
		m.Nav.NavigateToFolder(&id, e.Name)
		return m.navigated()
	case "backspace":
		if m.Nav.NavigateBack() {
			return m.navigated()
		}
		return m, nil
	case "h", "home":
		if m.Nav.AtRoot() {
			return m, nil
		}
		m.Nav.Reset()
		return m.navigated()
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		if m.Nav.NavigateToBreadcrumb(int(msg.Runes[0] - '1')) {
			return m.navigated()
		}
		return m, nil
	case "/":
		m.Mode = modeSearch
		cmd := m.Search.Focus()
		return m, cmd
	case "tab":
		m.Scope = m.Scope.Toggle(m.Nav.AtRoot())
		m.Status = "Search scope: " + string(m.effectiveScope())
		cmd := m.reload()
		return m, cmd
	case "s":
		m.Order = m.Order.Toggle()
		m.compose()
		return m, nil
	case "d":
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		if _, dup := m.Dups[e.ID]; !dup {
			m.ActiveDup = ""
		} else if m.Dups.Related(m.ActiveDup, e.ID) {
			m.ActiveDup = ""
		} else {
			m.ActiveDup = e.ID
		}
		m.compose()
		return m, nil
	case "ctrl+r":
		cmd := m.reload()
		return m, cmd
	case "n":
		return m.openPrompt(promptNewFolder, "New folder name: ", "", explorer.Entry{}), textinput.Blink
	case "r":
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		value := e.Name
		if !e.Folder {
			value, _ = explorer.SplitExt(e.Name)
		}
		return m.openPrompt(promptRename, "Rename to: ", value, e), textinput.Blink
	case "m":
		e, ok := m.selected()
		if !ok || e.Folder {
			return m, nil
		}
		file := m.files[e.ID]
		current := m.Nav.Current().ID
		return m, func() tea.Msg { return openMoveMsg{File: file, Current: current} }
	case "x", "delete":
		e, ok := m.selected()
		if !ok {
			return m, nil
		}
		if e.Folder {
			return m.openPrompt(promptDeleteFolder, fmt.Sprintf("Type %q to delete it and everything inside: ", e.Name), "", e), textinput.Blink
		}
		if m.Client.User.Role != "admin" {
			m.Err = fmt.Errorf("only admins can delete files")
			return m, nil
		}
		return m.openPrompt(promptDeleteFile, fmt.Sprintf("Delete %s? (y/n) ", e.Name), "", e), textinput.Blink
	case "u":
		return m.openPrompt(promptUpload, "File to upload: ", "", explorer.Entry{}), textinput.Blink
	case "g":
		e, ok := m.selected()
		if !ok || e.Folder || m.Transfer != nil {
			return m, nil
		}
		return m.startDownload(e)
	case "i":
		e, ok := m.selected()
		if !ok || (m.Props != nil && m.Props.ID == e.ID) {
			m.Props, m.PropsOwner = nil, nil
			return m, nil
		}
		m.Props, m.PropsOwner = &e, nil
		if e.Email == "" {
			return m, nil
		}
		c, timeout, id, email := m.Client, m.Timeout, e.ID, e.Email
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			p, err := c.Lookup(ctx, email)
			return ownerMsg{ID: id, Person: p, Err: err}
		}
	case "v":
		e, ok := m.selected()
		if !ok || e.Folder {
			return m, nil
		}
		file := m.files[e.ID]
		return m, func() tea.Msg { return openViewerMsg{File: file} }
	case "S":
		e, ok := m.selected()
		if !ok || e.Folder {
			return m, nil
		}
		return m, m.share(e)
	case "l":
		return m, func() tea.Msg { return openLogsMsg{} }
	case "U":
		return m, func() tea.Msg { return openUsersMsg{} }
	case "esc":
		if m.Transfer != nil {
			m.Transfer.cancel()
			return m, nil
		}
		m.Props, m.PropsOwner = nil, nil
		m.Shared = nil
		if m.ActiveDup != "" {
			m.ActiveDup = ""
			m.compose()
		}
		m.Status = ""
		return m, nil
	case "q":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

// share builds the share message for e. A failed uploader lookup still
// shares, naming an unknown user.
func (m FilesModel) share(e explorer.Entry) tea.Cmd {
	c, timeout := m.Client, m.Timeout
	return func() tea.Msg {
		var owner explorer.Person
		if e.Email != "" {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			p, err := c.Lookup(ctx, e.Email)
			if err == nil {
				owner = explorer.Person{FullName: p.FullName, Email: p.Email}
			}
		}
		s := explorer.Share{
			Name:       e.Name,
			Sharer:     explorer.SharerName(owner),
			Size:       e.Size,
			UploadedAt: e.Timestamp,
			Link:       c.ContentURL(e.ID),
		}
		return shareMsg{ID: e.ID, Share: s, Copied: copyText(s.Text()) == nil}
	}
}

// navigated resets per-folder state after the navigator moved.
func (m FilesModel) navigated() (FilesModel, tea.Cmd) {
	m.Props, m.PropsOwner = nil, nil
	m.Shared = nil
	m.ActiveDup = ""
	m.Search.SetValue("")
	m.Scope = explorer.EffectiveScope(m.Scope, m.Nav.AtRoot())
	m.Table.SetCursor(0)
	cmd := m.reload()
	return m, cmd
}

func (m FilesModel) updateSearch(msg tea.KeyMsg) (FilesModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.Mode = modeBrowse
		m.Search.Blur()
		if m.effectiveScope() == explorer.ScopeAll {
			cmd := m.reload()
			return m, cmd
		}
		return m, nil
	case tea.KeyEsc:
		m.Mode = modeBrowse
		m.Search.Blur()
		m.Search.SetValue("")
		if m.effectiveScope() == explorer.ScopeAll {
			cmd := m.reload()
			return m, cmd
		}
		m.compose()
		return m, nil
	}
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	m.compose()
	return m, cmd
}

func (m FilesModel) openPrompt(kind promptKind, label, value string, target explorer.Entry) FilesModel {
	in := textinput.New()
	in.Prompt = label
	in.CharLimit = 255
	in.SetValue(value)
	in.Focus()
	m.Prompt = &prompt{Kind: kind, Label: label, Input: in, Target: target}
	m.Mode = modePrompt
	m.Err = nil
	return m
}

func (m FilesModel) closePrompt() FilesModel {
	m.Prompt = nil
	m.Mode = modeBrowse
	return m
}

func (m FilesModel) updatePrompt(msg tea.KeyMsg) (FilesModel, tea.Cmd) {
	p := m.Prompt
	switch msg.Type {
	case tea.KeyEsc:
		m.Status = "Cancelled"
		return m.closePrompt(), nil
	case tea.KeyEnter:
		return m.submitPrompt(strings.TrimSpace(p.Input.Value()))
	}
	var cmd tea.Cmd
	p.Input, cmd = p.Input.Update(msg)
	return m, cmd
}

func (m FilesModel) submitPrompt(value string) (FilesModel, tea.Cmd) {
	p := *m.Prompt
	m = m.closePrompt()
	c, timeout := m.Client, m.Timeout
	run := func(fn func(ctx context.Context) mutationMsg) tea.Cmd {
		return func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			return fn(ctx)
		}
	}

	switch p.Kind {
	case promptNewFolder:
		if err := explorer.ValidateFolderName(value, "", m.folderNames("")); err != nil {
			m.Err = err
			return m, nil
		}
		parent := m.Nav.Current().ID
		return m, run(func(ctx context.Context) mutationMsg {
			res, err := c.CreateFolder(ctx, value, parent)
			return mutationMsg{Status: "Created folder " + res.Data.Name, Affected: res.Affected, Err: err}
		})

	case promptRename:
		id := p.Target.ID
		if p.Target.Folder {
			err := explorer.ValidateFolderName(value, p.Target.Name, m.folderNames(id))
			if errors.Is(err, explorer.ErrNameUnchanged) {
				return m, nil
			}
			if err != nil {
				m.Err = err
				return m, nil
			}
			return m, run(func(ctx context.Context) mutationMsg {
				res, err := c.RenameFolder(ctx, id, value)
				return mutationMsg{Status: "Renamed folder to " + res.Data.Name, Affected: res.Affected, Err: err}
			})
		}
		name, err := explorer.RenameKeepingExt(p.Target.Name, value)
		if err != nil {
			m.Err = err
			return m, nil
		}
		if name == p.Target.Name {
			return m, nil
		}
		return m, run(func(ctx context.Context) mutationMsg {
			res, err := c.RenameFile(ctx, id, name)
			return mutationMsg{Status: "Renamed to " + res.Data.Name, Affected: res.Affected, Err: err}
		})

	case promptDeleteFolder:
		if value != p.Target.Name {
			m.Err = fmt.Errorf("folder name does not match, nothing deleted")
			return m, nil
		}
		id, name := p.Target.ID, p.Target.Name
		return m, run(func(ctx context.Context) mutationMsg {
			res, err := c.DeleteFolder(ctx, id)
			return mutationMsg{Status: "Deleted folder " + name, Affected: res.Affected, Err: err}
		})

	case promptDeleteFile:
		if !isYes(value) {
			m.Status = "Cancelled"
			return m, nil
		}
		id, name := p.Target.ID, p.Target.Name
		return m, run(func(ctx context.Context) mutationMsg {
			res, err := c.DeleteFile(ctx, id)
			return mutationMsg{Status: "Deleted " + name, Affected: res.Affected, Err: err}
		})

	case promptUpload:
		if value == "" {
			return m, nil
		}
		path := expandHome(value)
		folder := m.Nav.Current().ID
		return m, func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()
			exists, err := c.FileExists(ctx, baseName(path), folder)
			return uploadCheckMsg{Path: path, Exists: exists, Err: err}
		}

	case promptKeepBoth:
		if !isYes(value) {
			m.Status = "Upload cancelled"
			return m, nil
		}
		m.Status = "Uploading " + baseName(p.Path)
		return m, m.upload(p.Path, "keep_both")
	}
	return m, nil
}

func (m FilesModel) afterUploadCheck(msg uploadCheckMsg) (FilesModel, tea.Cmd) {
	if msg.Err != nil {
		m.Err = msg.Err
		return m, nil
	}
	if msg.Exists {
		m = m.openPrompt(promptKeepBoth, fmt.Sprintf("%s already exists here. Keep both? (y/n) ", baseName(msg.Path)), "", explorer.Entry{})
		m.Prompt.Path = msg.Path
		return m, textinput.Blink
	}
	m.Status = "Uploading " + baseName(msg.Path)
	return m, m.upload(msg.Path, "new")
}

func (m FilesModel) upload(path, mode string) tea.Cmd {
	c := m.Client
	folder := m.Nav.Current().ID
	return func() tea.Msg {
		// uploads are bounded by the server limit, not the request timeout
		res, err := c.Upload(context.Background(), path, folder, mode)
		return mutationMsg{Status: "Uploaded " + res.Data.Name, Affected: res.Affected, Err: err}
	}
}

// folderNames lists the folder names of the current listing except id.
func (m FilesModel) folderNames(except string) []string {
	names := make([]string, 0, len(m.folders))
	for id, f := range m.folders {
		if id != except && sameParent(f.ParentID, m.Nav.Current().ID) {
			names = append(names, f.Name)
		}
	}
	return names
}

func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func isYes(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "y" || v == "yes"
}

func (m FilesModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("FilePower") + "  " + blurredStyle.Render(m.Client.User.Email) + "\n\n")
	b.WriteString(m.breadcrumbs() + "\n")

	scope := m.effectiveScope()
	b.WriteString(blurredStyle.Render(fmt.Sprintf("Scope: %s   Sort: date %s   %d item(s)", scope, m.Order, len(m.Rows))))
	if m.Loading {
		b.WriteString(blurredStyle.Render("   loading..."))
	}
	b.WriteString("\n")
	if m.Mode == modeSearch || m.Search.Value() != "" {
		b.WriteString(m.Search.View() + "\n")
	}
	b.WriteString("\n" + m.Table.View() + "\n")

	if m.Props != nil {
		b.WriteString(panelStyle.Render(m.properties()) + "\n")
	}
	if m.Shared != nil {
		b.WriteString(panelStyle.Render(m.Shared.Share.Title()+"\n\n"+m.Shared.Share.Text()) + "\n")
	}
	if m.Transfer != nil {
		b.WriteString(m.Transfer.View() + "\n")
	}
	if m.Prompt != nil {
		b.WriteString("\n" + focusedStyle.Render(m.Prompt.Input.View()) + "\n")
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle("! "+m.Err.Error()) + "\n")
	} else if m.Status != "" {
		b.WriteString("\n" + statusMessageStyle(m.Status) + "\n")
	}

	b.WriteString("\n" + blurredStyle.Render("enter open  backspace back  h home  1-9 crumb  / search  tab scope  s sort  d duplicates"))
	b.WriteString("\n" + blurredStyle.Render("n folder  r rename  m move  x delete  u upload  g download  v view  S share  i info  l logs  U users  q quit"))
	return b.String()
}

func (m FilesModel) breadcrumbs() string {
	crumbs := m.Nav.Breadcrumbs()
	parts := make([]string, 0, len(crumbs))
	for i, c := range crumbs {
		label := c.Name
		if i < 9 && i < len(crumbs)-1 {
			label = fmt.Sprintf("%d:%s", i+1, c.Name)
		}
		if i == len(crumbs)-1 {
			label = crumbStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, " / ")
}

func (m FilesModel) properties() string {
	e := *m.Props
	var lines []string
	add := func(k, v string) { lines = append(lines, fmt.Sprintf("%-14s %s", k+":", v)) }
	add("Name", e.Name)
	if e.Folder {
		f := m.folders[e.ID]
		add("Type", "Folder")
		add("Created by", e.Email)
		add("Created", explorer.ShortDate(e.Timestamp)+" ("+explorer.Ago(e.Timestamp)+")")
		add("Contents", fmt.Sprintf("%d file(s), %d folder(s)", e.FileCount, e.FolderCount))
		if f.OriginalName != "" && f.OriginalName != f.Name {
			add("Created as", f.OriginalName)
		}
		if f.LastRenamedAt != nil {
			add("Renamed", explorer.Ago(*f.LastRenamedAt))
		}
		return strings.Join(lines, "\n")
	}
	f := m.files[e.ID]
	add("Type", e.MimeType)
	add("Size", explorer.HumanSize(e.Size))
	uploader := e.Email
	if m.PropsOwner != nil {
		uploader = explorer.Person{FullName: m.PropsOwner.FullName, Email: m.PropsOwner.Email}.Label() + " <" + e.Email + ">"
		if m.PropsOwner.Deleted {
			uploader += " (deleted user)"
		}
	}
	add("Uploaded by", uploader)
	add("Uploaded", explorer.ShortDate(e.Timestamp)+" ("+explorer.Ago(e.Timestamp)+")")
	add("Folder", m.folderLabel(e.FolderID))
	if f.LastRenamedAt != nil {
		add("Renamed", explorer.Ago(*f.LastRenamedAt))
	}
	if f.LastMovedAt != nil {
		add("Moved", explorer.Ago(*f.LastMovedAt))
	}
	if d, ok := m.Dups[e.ID]; ok {
		add("Duplicates", fmt.Sprintf("copy %d of %d", d.Index, d.Total))
	}
	return strings.Join(lines, "\n")
}

func (m FilesModel) folderLabel(id *string) string {
	if id == nil {
		return explorer.RootName
	}
	if cur := m.Nav.Current(); cur.ID != nil && *cur.ID == *id {
		return cur.Name
	}
	if f, ok := m.folders[*id]; ok {
		return f.Name
	}
	return "another folder"
}
