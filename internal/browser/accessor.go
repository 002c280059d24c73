// CLAUDE:SUMMARY Implements the engine's Surface capability over a live Rod page via an injected selector-driven helper.
package browser

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/atotto/clipboard"

	"github.com/hazyhaar/arbex/export"
)

//go:embed accessor.js
var accessorJS string

// Selectors locates the surface's tree widget. Defaults follow WAI-ARIA
// tree semantics, which is what most rendered file trees expose.
type Selectors struct {
	// ItemSelector matches every tree node (containers and leaves).
	ItemSelector string `yaml:"item"`
	// ExpandedAttr is the attribute whose presence marks a container and
	// whose value ("true"/"false") encodes its expansion state.
	ExpandedAttr string `yaml:"expanded_attr"`
	// NameAttr carries a node's display name; falls back to text content.
	NameAttr string `yaml:"name_attr"`
	// RegionSelector matches the content regions containers own.
	RegionSelector string `yaml:"region"`
	// RegionAttr is the container attribute declaring region ownership.
	// This indirect relation, not DOM nesting, is what encodes hierarchy.
	RegionAttr string `yaml:"region_attr"`
	// ViewerSelector matches the content viewer for the selected leaf.
	ViewerSelector string `yaml:"viewer"`
	// PreviewSelector matches the rendered preview carrying a data URI.
	PreviewSelector string `yaml:"preview"`
	// CopySelector matches the surface's copy-to-clipboard control.
	CopySelector string `yaml:"copy"`
}

func (s *Selectors) defaults() {
	if s.ItemSelector == "" {
		s.ItemSelector = `[role="treeitem"]`
	}
	if s.ExpandedAttr == "" {
		s.ExpandedAttr = "aria-expanded"
	}
	if s.NameAttr == "" {
		s.NameAttr = "aria-label"
	}
	if s.RegionSelector == "" {
		s.RegionSelector = `[role="group"]`
	}
	if s.RegionAttr == "" {
		s.RegionAttr = "aria-controls"
	}
	if s.ViewerSelector == "" {
		s.ViewerSelector = `[data-content-viewer]`
	}
	if s.PreviewSelector == "" {
		s.PreviewSelector = `[data-content-viewer] img[src^="data:"]`
	}
	if s.CopySelector == "" {
		s.CopySelector = `[data-copy-content]`
	}
}

// Accessor implements export.Surface against a live page. Every method
// resolves elements fresh through the injected helper; no node reference
// survives on the Go side, matching the engine's no-caching contract.
type Accessor struct {
	tab     *Tab
	sel     Selectors
	headful bool
	logger  *slog.Logger
}

// NewAccessor injects the helper script into the tab and returns the
// Surface implementation.
func NewAccessor(ctx context.Context, tab *Tab, sel Selectors, headful bool, logger *slog.Logger) (*Accessor, error) {
	sel.defaults()
	if logger == nil {
		logger = slog.Default()
	}
	a := &Accessor{tab: tab, sel: sel, headful: headful, logger: logger}
	if err := a.inject(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *Accessor) inject(ctx context.Context) error {
	cfg, err := json.Marshal(map[string]string{
		"itemSelector":    a.sel.ItemSelector,
		"expandedAttr":    a.sel.ExpandedAttr,
		"nameAttr":        a.sel.NameAttr,
		"regionSelector":  a.sel.RegionSelector,
		"regionAttr":      a.sel.RegionAttr,
		"viewerSelector":  a.sel.ViewerSelector,
		"previewSelector": a.sel.PreviewSelector,
		"copySelector":    a.sel.CopySelector,
	})
	if err != nil {
		return fmt.Errorf("browser: marshal selectors: %w", err)
	}

	page := a.tab.Page.Context(ctx)
	if _, err := page.Eval(fmt.Sprintf("() => { window.__arbex_selectors = %s; }", cfg)); err != nil {
		return fmt.Errorf("browser: set selectors: %w", err)
	}
	if _, err := page.Eval(accessorJS); err != nil {
		return fmt.Errorf("browser: inject accessor: %w", err)
	}
	return nil
}

// ensure re-injects the helper if a navigation or hard re-render wiped it.
func (a *Accessor) ensure(ctx context.Context) error {
	res, err := a.tab.Page.Context(ctx).Eval(`() => typeof window.__arbex !== "undefined"`)
	if err != nil {
		return fmt.Errorf("browser: probe helper: %w", err)
	}
	if res.Value.Bool() {
		return nil
	}
	a.logger.Debug("browser: accessor helper lost, re-injecting")
	return a.inject(ctx)
}

// jsNode mirrors the helper's node shape.
type jsNode struct {
	ID     string `json:"id"`
	Kind   string `json:"kind"`
	Name   string `json:"name"`
	State  string `json:"state"`
	Region string `json:"region"`
}

func (n jsNode) toNode() export.Node {
	kind := export.KindLeaf
	if n.Kind == "container" {
		kind = export.KindContainer
	}
	state := export.StateNotExpandable
	switch n.State {
	case "expanded":
		state = export.StateExpanded
	case "collapsed":
		state = export.StateCollapsed
	}
	return export.Node{
		ID:        export.NodeID(n.ID),
		Kind:      kind,
		Name:      n.Name,
		State:     state,
		RegionRef: n.Region,
	}
}

// Enumerate returns every currently rendered tree node, fresh.
func (a *Accessor) Enumerate(ctx context.Context) ([]export.Node, error) {
	if err := a.ensure(ctx); err != nil {
		return nil, err
	}
	res, err := a.tab.Page.Context(ctx).Eval(`() => JSON.stringify(__arbex.enumerate())`)
	if err != nil {
		return nil, fmt.Errorf("browser: enumerate: %w", err)
	}
	var raw []jsNode
	if err := json.Unmarshal([]byte(res.Value.Str()), &raw); err != nil {
		return nil, fmt.Errorf("browser: decode enumeration: %w", err)
	}
	nodes := make([]export.Node, 0, len(raw))
	for _, n := range raw {
		nodes = append(nodes, n.toNode())
	}
	return nodes, nil
}

// Trigger clicks a node. Expand and Select are the same gesture on tree
// widgets; what differs is the state the engine reads back afterwards.
func (a *Accessor) Trigger(ctx context.Context, id export.NodeID, action export.Action) error {
	if err := a.ensure(ctx); err != nil {
		return err
	}
	res, err := a.tab.Page.Context(ctx).Eval(`(id) => __arbex.click(id)`, string(id))
	if err != nil {
		return fmt.Errorf("browser: %s %s: %w", action, id, err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("browser: %s %s: node vanished", action, id)
	}
	return nil
}

// EnclosingRegion returns the id of the nearest region enclosing the node.
func (a *Accessor) EnclosingRegion(ctx context.Context, id export.NodeID) (string, bool, error) {
	if err := a.ensure(ctx); err != nil {
		return "", false, err
	}
	res, err := a.tab.Page.Context(ctx).Eval(`(id) => __arbex.enclosingRegion(id)`, string(id))
	if err != nil {
		return "", false, fmt.Errorf("browser: enclosing region of %s: %w", id, err)
	}
	region := res.Value.Str()
	return region, region != "", nil
}

// RegionOwner returns the container declaring ownership of the region.
func (a *Accessor) RegionOwner(ctx context.Context, region string) (export.Node, bool, error) {
	if err := a.ensure(ctx); err != nil {
		return export.Node{}, false, err
	}
	res, err := a.tab.Page.Context(ctx).Eval(`(r) => JSON.stringify(__arbex.regionOwner(r))`, region)
	if err != nil {
		return export.Node{}, false, fmt.Errorf("browser: owner of region %q: %w", region, err)
	}
	s := res.Value.Str()
	if s == "" || s == "null" {
		return export.Node{}, false, nil
	}
	var raw jsNode
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return export.Node{}, false, fmt.Errorf("browser: decode region owner: %w", err)
	}
	return raw.toNode(), true, nil
}

// DisplayedText reads the content viewer's current text.
func (a *Accessor) DisplayedText(ctx context.Context) (string, error) {
	if err := a.ensure(ctx); err != nil {
		return "", err
	}
	res, err := a.tab.Page.Context(ctx).Eval(`() => __arbex.displayedText()`)
	if err != nil {
		return "", fmt.Errorf("browser: displayed text: %w", err)
	}
	return res.Value.Str(), nil
}

// PreviewPayload returns the rendered preview's data URI, if any.
func (a *Accessor) PreviewPayload(ctx context.Context) (string, bool, error) {
	if err := a.ensure(ctx); err != nil {
		return "", false, err
	}
	res, err := a.tab.Page.Context(ctx).Eval(`() => __arbex.previewPayload()`)
	if err != nil {
		return "", false, fmt.Errorf("browser: preview payload: %w", err)
	}
	if res.Value.Nil() {
		return "", false, nil
	}
	return res.Value.Str(), true, nil
}

// CopyToClipboard triggers the surface's copy control for the currently
// selected node.
func (a *Accessor) CopyToClipboard(ctx context.Context, id export.NodeID) error {
	if err := a.ensure(ctx); err != nil {
		return err
	}
	res, err := a.tab.Page.Context(ctx).Eval(`() => __arbex.copy()`)
	if err != nil {
		return fmt.Errorf("browser: copy %s: %w", id, err)
	}
	if !res.Value.Bool() {
		return fmt.Errorf("browser: copy %s: no copy control rendered", id)
	}
	return nil
}

// ReadClipboard reads the page clipboard. navigator.clipboard refuses
// reads from an unfocused context; in headful mode the OS clipboard (which
// the browser's copy control also writes) is tried as a fallback before
// giving up. Errors here are always leaf-level for the engine.
func (a *Accessor) ReadClipboard(ctx context.Context) (string, error) {
	res, err := a.tab.Page.Context(ctx).Eval(`() => navigator.clipboard.readText()`)
	if err == nil {
		return res.Value.Str(), nil
	}
	if a.headful {
		if text, osErr := clipboard.ReadAll(); osErr == nil {
			return text, nil
		}
	}
	return "", fmt.Errorf("browser: read clipboard: %w", err)
}

// Focused reports whether the page's execution context has input focus.
func (a *Accessor) Focused(ctx context.Context) (bool, error) {
	res, err := a.tab.Page.Context(ctx).Eval(`() => document.hasFocus()`)
	if err != nil {
		return false, fmt.Errorf("browser: focus probe: %w", err)
	}
	return res.Value.Bool(), nil
}
