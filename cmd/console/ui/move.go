package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"filepower/backend/app/dto"
	"filepower/explorer"

	tea "github.com/charmbracelet/bubbletea"
)

// treeNode is a folder in the move picker. Children are fetched the first
// time the node is expanded.
type treeNode struct {
	Ref      explorer.FolderRef
	Depth    int
	Expanded bool
	Loaded   bool
	Loading  bool
	Children []*treeNode
}

type childrenMsg struct {
	Key     string
	Folders []dto.FolderResponse
	Err     error
}

// moveDoneMsg returns to the browser with the outcome of a move.
type moveDoneMsg struct{ Result mutationMsg }

type MoveModel struct {
	Client  *Client
	Timeout time.Duration
	File    dto.FileResponse
	Current *string // folder open in the browser
	Root    *treeNode
	Cursor  int
	Busy    bool
	Err     error
}

func NewMoveModel(c *Client, timeout time.Duration, file dto.FileResponse, current *string) MoveModel {
	return MoveModel{
		Client:  c,
		Timeout: timeout,
		File:    file,
		Current: current,
		Root:    &treeNode{Ref: explorer.Root(), Expanded: true, Loading: true},
	}
}

func (m MoveModel) Init() tea.Cmd {
	return m.fetch(m.Root)
}

func (m MoveModel) fetch(n *treeNode) tea.Cmd {
	c, timeout, ref := m.Client, m.Timeout, n.Ref
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		folders, err := c.ListFolders(ctx, ref.ID)
		return childrenMsg{Key: ref.Key(), Folders: folders, Err: err}
	}
}

// visible flattens the expanded part of the tree.
func (m MoveModel) visible() []*treeNode {
	var out []*treeNode
	var walk func(n *treeNode)
	walk = func(n *treeNode) {
		out = append(out, n)
		if !n.Expanded {
			return
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(m.Root)
	return out
}

func findNode(n *treeNode, key string) *treeNode {
	if n.Ref.Key() == key {
		return n
	}
	for _, c := range n.Children {
		if found := findNode(c, key); found != nil {
			return found
		}
	}
	return nil
}

// Disabled reports whether ref cannot be picked: the folder open in the
// browser and the folder the file is already in.
func (m MoveModel) Disabled(ref explorer.FolderRef) bool {
	return sameParent(ref.ID, m.Current) || sameParent(ref.ID, m.File.FolderID)
}

func (m MoveModel) Update(msg tea.Msg) (MoveModel, tea.Cmd) {
	switch msg := msg.(type) {
	case childrenMsg:
		n := findNode(m.Root, msg.Key)
		if n == nil {
			return m, nil
		}
		n.Loading = false
		if msg.Err != nil {
			n.Expanded = false
			m.Err = msg.Err
			return m, nil
		}
		n.Loaded = true
		n.Children = n.Children[:0]
		for _, f := range msg.Folders {
			id := f.ID
			n.Children = append(n.Children, &treeNode{Ref: explorer.FolderRef{ID: &id, Name: f.Name}, Depth: n.Depth + 1})
		}
		return m, nil

	case mutationMsg:
		m.Busy = false
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		return m, func() tea.Msg { return moveDoneMsg{Result: msg} }

	case tea.KeyMsg:
		if m.Busy {
			return m, nil
		}
		nodes := m.visible()
		switch msg.String() {
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < len(nodes)-1 {
				m.Cursor++
			}
		case "right", "l", " ":
			n := nodes[m.Cursor]
			if n.Expanded {
				return m, nil
			}
			n.Expanded = true
			if !n.Loaded && !n.Loading {
				n.Loading = true
				return m, m.fetch(n)
			}
		case "left", "h":
			n := nodes[m.Cursor]
			if n.Expanded && n != m.Root {
				n.Expanded = false
			}
		case "enter":
			n := nodes[m.Cursor]
			if m.Disabled(n.Ref) {
				m.Err = fmt.Errorf("%s is not a valid destination", n.Ref.Name)
				return m, nil
			}
			m.Busy = true
			m.Err = nil
			c, timeout, id, dest, name := m.Client, m.Timeout, m.File.ID, n.Ref.ID, n.Ref.Name
			return m, func() tea.Msg {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				res, err := c.MoveFile(ctx, id, dest)
				return mutationMsg{Status: "Moved to " + name, Affected: res.Affected, Err: err}
			}
		case "esc":
			return m, func() tea.Msg { return moveDoneMsg{Result: mutationMsg{Status: "Move cancelled"}} }
		}
	}
	return m, nil
}

func (m MoveModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Move "+m.File.Name) + "\n\n")
	for i, n := range m.visible() {
		marker := "▸"
		switch {
		case n.Loading:
			marker = "…"
		case n.Expanded:
			marker = "▾"
		case n.Loaded && len(n.Children) == 0:
			marker = " "
		}
		line := strings.Repeat("  ", n.Depth) + marker + " " + n.Ref.Name
		switch {
		case i == m.Cursor:
			line = focusedStyle.Render("> " + line)
		case m.Disabled(n.Ref):
			line = blurredStyle.Render("  " + line)
		default:
			line = "  " + line
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + blurredStyle.Render("up/down select  right expand  left collapse  enter move here  esc cancel"))
	if m.Busy {
		b.WriteString("\n" + blurredStyle.Render("Moving..."))
	}
	if m.Err != nil {
		b.WriteString("\n" + errorMessageStyle(m.Err.Error()))
	}
	return b.String()
}
