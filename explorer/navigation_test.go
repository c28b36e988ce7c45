package explorer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestNavigator_StartsAtRoot(t *testing.T) {
	n := NewNavigator()

	assert.True(t, n.AtRoot())
	assert.Equal(t, RootName, n.Current().Name)
	assert.Empty(t, n.Stack())
}

func TestNavigator_BackRestoresPreviousFolder(t *testing.T) {
	n := NewNavigator()
	n.NavigateToFolder(ptr("a"), "A")
	n.NavigateToFolder(ptr("b"), "B")
	before := n.Current()
	depth := len(n.Stack())

	n.NavigateToFolder(ptr("c"), "C")
	require.True(t, n.NavigateBack())

	assert.Equal(t, before, n.Current())
	assert.Len(t, n.Stack(), depth)
}

func TestNavigator_BackOnEmptyStackIsNoop(t *testing.T) {
	n := NewNavigator()

	assert.False(t, n.NavigateBack())
	assert.True(t, n.AtRoot())
}

func TestNavigator_NilFolderGoesHome(t *testing.T) {
	n := NewNavigator()
	n.NavigateToFolder(ptr("a"), "A")
	n.NavigateToFolder(ptr("b"), "B")

	n.NavigateToFolder(nil, "ignored")

	assert.True(t, n.AtRoot())
	assert.Empty(t, n.Stack())
}

func TestNavigator_Breadcrumb(t *testing.T) {
	setup := func() *Navigator {
		n := NewNavigator()
		n.NavigateToFolder(ptr("a"), "A")
		n.NavigateToFolder(ptr("b"), "B")
		n.NavigateToFolder(ptr("c"), "C")
		return n
	}

	t.Run("minus one is a root reset", func(t *testing.T) {
		n := setup()
		require.True(t, n.NavigateToBreadcrumb(-1))
		assert.Equal(t, Location{Current: Root(), Stack: []FolderRef{}}, n.Location())
	})

	t.Run("jumps to an ancestor", func(t *testing.T) {
		n := setup()
		// stack: Home, A, B
		require.True(t, n.NavigateToBreadcrumb(1))
		assert.Equal(t, "a", n.Current().Key())
		stack := n.Stack()
		require.Len(t, stack, 1)
		assert.True(t, stack[0].IsRoot())
	})

	t.Run("index zero lands on home", func(t *testing.T) {
		n := setup()
		require.True(t, n.NavigateToBreadcrumb(0))
		assert.True(t, n.AtRoot())
		assert.Empty(t, n.Stack())
	})

	t.Run("out of range is ignored", func(t *testing.T) {
		n := setup()
		before := n.Location()
		assert.False(t, n.NavigateToBreadcrumb(3))
		assert.False(t, n.NavigateToBreadcrumb(-2))
		assert.Equal(t, before, n.Location())
	})
}

func TestNavigator_CurrentNeverInStack(t *testing.T) {
	n := NewNavigator()
	n.NavigateToFolder(ptr("a"), "A")
	n.NavigateToFolder(ptr("b"), "B")
	n.NavigateBack()
	n.NavigateToFolder(ptr("c"), "C")

	cur := n.Current()
	for _, f := range n.Stack() {
		assert.NotEqual(t, cur.Key(), f.Key())
	}
	crumbs := n.Breadcrumbs()
	require.Len(t, crumbs, 3)
	assert.Equal(t, []string{"Home", "A", "C"}, []string{crumbs[0].Name, crumbs[1].Name, crumbs[2].Name})
}

func TestNavigator_ReturnedRefsAreCopies(t *testing.T) {
	n := NewNavigator()
	id := "a"
	n.NavigateToFolder(&id, "A")
	id = "changed"

	cur := n.Current()
	*cur.ID = "mutated"

	assert.Equal(t, "a", n.Current().Key())
}

func TestNavigator_OnChange(t *testing.T) {
	n := NewNavigator()
	var got []Location
	unsubscribe := n.OnChange(func(l Location) { got = append(got, l) })

	n.NavigateToFolder(ptr("a"), "A")
	n.NavigateBack()
	n.NavigateBack()
	unsubscribe()
	n.NavigateToFolder(ptr("b"), "B")

	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].Current.Key())
	assert.Len(t, got[0].Stack, 1)
	assert.True(t, got[1].Current.IsRoot())
}
