// Package doc reads and writes block documents as JSON files.
//
// The on-disk format is a flat block table plus a root pointer, so order
// and nesting survive round trips without relying on map iteration:
//
//	{
//	  "version": 1,
//	  "root": "<id>",
//	  "blocks": [
//	    {"id": "...", "type": "paragraph", "parent": "...",
//	     "content": "...", "children": ["..."]}
//	  ]
//	}
package doc

import (
	"errors"
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/dshills/blocktree/internal/engine/block"
)

// Version is the current document format version.
const Version = 1

// Format errors.
var (
	ErrBadFormat          = errors.New("malformed document")
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// Load reads a document file into a tree.
func Load(path string) (*block.Tree, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document %s: %w", path, err)
	}
	return Decode(data)
}

// Decode parses document JSON into a validated tree.
func Decode(data []byte) (*block.Tree, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrBadFormat)
	}

	if v := gjson.GetBytes(data, "version"); v.Exists() && v.Int() != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v.Int())
	}

	rootID := block.ID(gjson.GetBytes(data, "root").String())
	if rootID.IsNone() {
		return nil, fmt.Errorf("%w: missing root", ErrBadFormat)
	}

	blocks := gjson.GetBytes(data, "blocks")
	if !blocks.IsArray() {
		return nil, fmt.Errorf("%w: blocks must be an array", ErrBadFormat)
	}

	var nodes []*block.Node
	var decodeErr error
	blocks.ForEach(func(_, b gjson.Result) bool {
		n := &block.Node{
			ID:       block.ID(b.Get("id").String()),
			Type:     block.Type(b.Get("type").String()),
			ParentID: block.ID(b.Get("parent").String()),
			Content:  b.Get("content").String(),
		}
		if n.ID.IsNone() {
			decodeErr = fmt.Errorf("%w: block without id", ErrBadFormat)
			return false
		}
		if !n.Type.Valid() {
			decodeErr = fmt.Errorf("%w: block %s has unknown type %q", ErrBadFormat, n.ID, n.Type)
			return false
		}
		for _, c := range b.Get("children").Array() {
			n.Children = append(n.Children, block.ID(c.String()))
		}
		nodes = append(nodes, n)
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	tree, err := block.FromNodes(rootID, nodes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadFormat, err)
	}
	return tree, nil
}

// Save writes the tree to path, replacing the file atomically via a
// temporary sibling.
func Save(tree *block.Tree, path string) error {
	data, err := Encode(tree)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("writing document %s: %w", path, err)
	}
	return nil
}

// jsonBlock is the serialized form of one node.
type jsonBlock struct {
	ID       block.ID   `json:"id"`
	Type     block.Type `json:"type"`
	Parent   block.ID   `json:"parent,omitempty"`
	Content  string     `json:"content,omitempty"`
	Children []block.ID `json:"children,omitempty"`
}

// Encode serializes the tree, root first then body blocks in document
// order.
func Encode(tree *block.Tree) ([]byte, error) {
	out := []byte("{}")

	out, err := sjson.SetBytes(out, "version", Version)
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetBytes(out, "root", string(tree.RootID()))
	if err != nil {
		return nil, err
	}
	out, err = sjson.SetRawBytes(out, "blocks", []byte("[]"))
	if err != nil {
		return nil, err
	}

	ids := append([]block.ID{tree.RootID()}, tree.DocumentOrder()...)
	for _, id := range ids {
		n, ok := tree.Get(id)
		if !ok {
			continue
		}
		out, err = sjson.SetBytes(out, "blocks.-1", jsonBlock{
			ID:       n.ID,
			Type:     n.Type,
			Parent:   n.ParentID,
			Content:  n.Content,
			Children: n.Children,
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
