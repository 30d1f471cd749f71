package xmlnode_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmkhr/mpdgen/internal/lib/xmlnode"
)

func TestAddChild(t *testing.T) {
	parent := xmlnode.New("MPD")

	child := xmlnode.New("BaseURL")
	child.SetContent("http://cdn.example.com/")

	require.NoError(t, parent.AddChild(child))
	assert.Len(t, parent.Element().ChildElements(), 1)
}

func TestAddChildNil(t *testing.T) {
	parent := xmlnode.New("MPD")

	err := parent.AddChild(nil)
	assert.ErrorIs(t, err, xmlnode.ErrNilChild)
}

func TestAddChildInvalidContent(t *testing.T) {
	parent := xmlnode.New("MPD")

	child := xmlnode.New("BaseURL")
	child.SetContent("bad\x00content")

	err := parent.AddChild(child)
	assert.ErrorIs(t, err, xmlnode.ErrInvalidContent)
}

func TestSerializeCommentBeforeRoot(t *testing.T) {
	doc := xmlnode.NewDocument()
	doc.AddComment("provenance")

	root := xmlnode.New("MPD")
	root.SetAttr("type", "static")
	doc.SetRoot(root)

	out, err := doc.Serialize()
	require.NoError(t, err)

	assert.Contains(t, out, `<?xml version="1.0" encoding="UTF-8"?>`)

	commentIdx := strings.Index(out, "<!--provenance-->")
	rootIdx := strings.Index(out, "<MPD")
	require.GreaterOrEqual(t, commentIdx, 0)
	require.GreaterOrEqual(t, rootIdx, 0)
	assert.Less(t, commentIdx, rootIdx)
}
