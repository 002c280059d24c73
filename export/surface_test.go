package export

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// scriptedSurface is an in-memory Surface over a hand-built tree, so the
// engine is testable without a live page. Behavior knobs mirror the
// failure modes of real surfaces: containers that refuse to expand,
// viewers that show boilerplate, clipboard access gated on focus.
type scriptedSurface struct {
	nodes  map[NodeID]*scriptedNode
	order  []NodeID
	region map[string]NodeID // region id -> owning container

	selected  NodeID
	focused   bool
	clipboard string

	// per-leaf content scripts
	viewerText map[NodeID]string
	copyText   map[NodeID]string
	preview    map[NodeID]string

	// counters for precedence assertions
	enumerates     int
	clipboardReads int
	copyCalls      int
}

type scriptedNode struct {
	node   Node
	parent NodeID // "" = root
	refuse bool   // stays Collapsed after Trigger(Expand)
}

func newScriptedSurface() *scriptedSurface {
	return &scriptedSurface{
		nodes:      make(map[NodeID]*scriptedNode),
		region:     make(map[string]NodeID),
		viewerText: make(map[NodeID]string),
		copyText:   make(map[NodeID]string),
		preview:    make(map[NodeID]string),
		focused:    true,
	}
}

func (f *scriptedSurface) addContainer(id NodeID, name string, parent NodeID) {
	region := "rgn-" + string(id)
	f.nodes[id] = &scriptedNode{
		node:   Node{ID: id, Kind: KindContainer, Name: name, State: StateCollapsed, RegionRef: region},
		parent: parent,
	}
	f.region[region] = id
	f.order = append(f.order, id)
}

func (f *scriptedSurface) addLeaf(id NodeID, name string, parent NodeID) {
	f.nodes[id] = &scriptedNode{
		node:   Node{ID: id, Kind: KindLeaf, Name: name},
		parent: parent,
	}
	f.order = append(f.order, id)
}

// visible reports whether every ancestor container is expanded.
func (f *scriptedSurface) visible(id NodeID) bool {
	n := f.nodes[id]
	for n.parent != "" {
		p := f.nodes[n.parent]
		if p.node.State != StateExpanded {
			return false
		}
		n = p
	}
	return true
}

func (f *scriptedSurface) Enumerate(ctx context.Context) ([]Node, error) {
	f.enumerates++
	var out []Node
	for _, id := range f.order {
		if f.visible(id) {
			out = append(out, f.nodes[id].node)
		}
	}
	return out, nil
}

func (f *scriptedSurface) Trigger(ctx context.Context, id NodeID, action Action) error {
	n, ok := f.nodes[id]
	if !ok {
		return errors.New("scripted: no such node")
	}
	switch action {
	case ActionExpand:
		if n.node.Kind == KindContainer && !n.refuse {
			n.node.State = StateExpanded
		}
	case ActionSelect:
		f.selected = id
	}
	return nil
}

func (f *scriptedSurface) EnclosingRegion(ctx context.Context, id NodeID) (string, bool, error) {
	n, ok := f.nodes[id]
	if !ok {
		return "", false, errors.New("scripted: no such node")
	}
	if n.parent == "" {
		return "", false, nil
	}
	return f.nodes[n.parent].node.RegionRef, true, nil
}

func (f *scriptedSurface) RegionOwner(ctx context.Context, region string) (Node, bool, error) {
	id, ok := f.region[region]
	if !ok {
		return Node{}, false, nil
	}
	return f.nodes[id].node, true, nil
}

func (f *scriptedSurface) DisplayedText(ctx context.Context) (string, error) {
	return f.viewerText[f.selected], nil
}

func (f *scriptedSurface) PreviewPayload(ctx context.Context) (string, bool, error) {
	p, ok := f.preview[f.selected]
	return p, ok, nil
}

func (f *scriptedSurface) CopyToClipboard(ctx context.Context, id NodeID) error {
	f.copyCalls++
	f.clipboard = f.copyText[id]
	return nil
}

func (f *scriptedSurface) ReadClipboard(ctx context.Context) (string, error) {
	f.clipboardReads++
	if !f.focused {
		return "", errors.New("scripted: clipboard requires focus")
	}
	return f.clipboard, nil
}

func (f *scriptedSurface) Focused(ctx context.Context) (bool, error) {
	return f.focused, nil
}

// testConfig keeps settle delays negligible so tests run instantly.
func testConfig() Config {
	return Config{
		ExpandSettle:    Duration(time.Nanosecond),
		BatchSettle:     Duration(time.Nanosecond),
		DisplaySettle:   Duration(time.Nanosecond),
		ClipboardSettle: Duration(time.Nanosecond),
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}
