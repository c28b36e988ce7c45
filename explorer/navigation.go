package explorer

import "sync"

// RootName is the display name of the top level.
const RootName = "Home"

// FolderRef identifies a folder by id and display name. A nil ID is the root.
type FolderRef struct {
	ID   *string
	Name string
}

func Root() FolderRef { return FolderRef{Name: RootName} }

func (f FolderRef) IsRoot() bool { return f.ID == nil }

// Key returns the folder id, or "" for the root.
func (f FolderRef) Key() string {
	if f.ID == nil {
		return ""
	}
	return *f.ID
}

func (f FolderRef) clone() FolderRef {
	if f.ID == nil {
		return f
	}
	id := *f.ID
	return FolderRef{ID: &id, Name: f.Name}
}

// Location is a snapshot of the navigator published to subscribers.
type Location struct {
	Current FolderRef
	Stack   []FolderRef
}

// Navigator tracks the open folder and the trail of folders above it.
// Changes are pushed to OnChange subscribers.
type Navigator struct {
	mu        sync.Mutex
	current   FolderRef
	stack     []FolderRef
	listeners map[int]func(Location)
	nextID    int
}

func NewNavigator() *Navigator {
	return &Navigator{current: Root(), listeners: make(map[int]func(Location))}
}

func (n *Navigator) Current() FolderRef {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current.clone()
}

func (n *Navigator) Stack() []FolderRef {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.copyStack()
}

func (n *Navigator) Location() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.snapshot()
}

func (n *Navigator) AtRoot() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current.IsRoot()
}

// Breadcrumbs returns the trail followed by the current folder.
func (n *Navigator) Breadcrumbs() []FolderRef {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append(n.copyStack(), n.current.clone())
}

// NavigateToFolder opens a folder below the current one. A nil id goes home
// and clears the trail.
func (n *Navigator) NavigateToFolder(id *string, name string) {
	n.mu.Lock()
	if id == nil {
		n.current = Root()
		n.stack = nil
	} else {
		v := *id
		n.stack = append(n.stack, n.current)
		n.current = FolderRef{ID: &v, Name: name}
	}
	loc := n.snapshot()
	n.mu.Unlock()
	n.publish(loc)
}

// NavigateBack returns to the parent folder. It reports false when already at
// the top of the trail.
func (n *Navigator) NavigateBack() bool {
	n.mu.Lock()
	if len(n.stack) == 0 {
		n.mu.Unlock()
		return false
	}
	n.current = n.stack[len(n.stack)-1]
	n.stack = n.stack[:len(n.stack)-1]
	loc := n.snapshot()
	n.mu.Unlock()
	n.publish(loc)
	return true
}

// NavigateToBreadcrumb jumps to stack entry index. -1 is home; an index past
// the end of the trail is ignored.
func (n *Navigator) NavigateToBreadcrumb(index int) bool {
	n.mu.Lock()
	switch {
	case index == -1:
		n.current = Root()
		n.stack = nil
	case index < -1 || index >= len(n.stack):
		n.mu.Unlock()
		return false
	default:
		n.stack = n.stack[:index+1]
		n.current = n.stack[index]
		n.stack = n.stack[:index]
	}
	loc := n.snapshot()
	n.mu.Unlock()
	n.publish(loc)
	return true
}

func (n *Navigator) Reset() { n.NavigateToFolder(nil, "") }

// OnChange registers fn to be called after every navigation. The returned
// func removes it.
func (n *Navigator) OnChange(fn func(Location)) (unsubscribe func()) {
	n.mu.Lock()
	id := n.nextID
	n.nextID++
	n.listeners[id] = fn
	n.mu.Unlock()
	return func() {
		n.mu.Lock()
		delete(n.listeners, id)
		n.mu.Unlock()
	}
}

func (n *Navigator) publish(loc Location) {
	n.mu.Lock()
	fns := make([]func(Location), 0, len(n.listeners))
	for i := 0; i < n.nextID; i++ {
		if fn, ok := n.listeners[i]; ok {
			fns = append(fns, fn)
		}
	}
	n.mu.Unlock()
	for _, fn := range fns {
		fn(loc)
	}
}

func (n *Navigator) snapshot() Location {
	return Location{Current: n.current.clone(), Stack: n.copyStack()}
}

func (n *Navigator) copyStack() []FolderRef {
	out := make([]FolderRef, len(n.stack))
	for i, f := range n.stack {
		out[i] = f.clone()
	}
	return out
}
