package export

import "context"

// NodeID is an opaque handle to a node rendered by the external surface.
// It is only valid until the next expansion step: triggering an expansion
// may re-render the surface and invalidate every prior handle, so IDs must
// be re-obtained via Enumerate and never cached across Trigger(Expand).
type NodeID string

// Kind distinguishes tree nodes.
type Kind int

const (
	KindContainer Kind = iota // holds children, toggles expanded/collapsed
	KindLeaf                  // one unit of content (text or binary)
)

func (k Kind) String() string {
	if k == KindContainer {
		return "container"
	}
	return "leaf"
}

// State is a container's expansion state. Only meaningful for containers.
type State int

const (
	StateNotExpandable State = iota
	StateCollapsed
	StateExpanded
)

func (s State) String() string {
	switch s {
	case StateCollapsed:
		return "collapsed"
	case StateExpanded:
		return "expanded"
	default:
		return "not-expandable"
	}
}

// Node is a per-call observation of one rendered tree node. The engine
// never owns a Node; the surface creates and destroys them freely.
type Node struct {
	ID        NodeID
	Kind      Kind
	Name      string // display string, may contain path-illegal characters
	State     State
	RegionRef string // id of the content region this container owns, "" for leaves
}

// Action is a UI state change the engine can trigger on a node.
type Action int

const (
	ActionExpand Action = iota
	ActionSelect
)

func (a Action) String() string {
	if a == ActionExpand {
		return "expand"
	}
	return "select"
}

// Surface is the capability the engine consumes to observe and drive the
// external tree. internal/browser implements it against a live page; tests
// substitute a scripted in-memory implementation.
type Surface interface {
	// Enumerate returns every currently rendered node, fresh.
	Enumerate(ctx context.Context) ([]Node, error)

	// Trigger fires an action on a node. The surface renders asynchronously;
	// callers must settle-wait before reading anything back.
	Trigger(ctx context.Context, id NodeID, action Action) error

	// EnclosingRegion returns the id of the nearest content region enclosing
	// the node, or ok=false when the node sits at the root.
	EnclosingRegion(ctx context.Context, id NodeID) (region string, ok bool, err error)

	// RegionOwner returns the container node that declares ownership of the
	// given region. This is the indirect "controls" relation, not visual
	// parentage; it is the only way hierarchy can be reconstructed.
	RegionOwner(ctx context.Context, region string) (Node, bool, error)

	// DisplayedText reads the content viewer's current text.
	DisplayedText(ctx context.Context) (string, error)

	// PreviewPayload returns the rendered preview's embedded payload (a data
	// URI) for the currently selected leaf, or ok=false when no preview
	// element is rendered.
	PreviewPayload(ctx context.Context) (payload string, ok bool, err error)

	// CopyToClipboard triggers the surface's copy action for a node.
	CopyToClipboard(ctx context.Context, id NodeID) error

	// ReadClipboard reads the clipboard. Fails when the execution context
	// lacks input focus; such errors are always leaf-level, never fatal.
	ReadClipboard(ctx context.Context) (string, error)

	// Focused reports whether the execution context has input focus.
	Focused(ctx context.Context) (bool, error)
}

// ResultKind classifies an extraction outcome.
type ResultKind int

const (
	ResultText ResultKind = iota
	ResultBinary
	ResultPlaceholder
)

func (k ResultKind) String() string {
	switch k {
	case ResultText:
		return "text"
	case ResultBinary:
		return "binary"
	default:
		return "placeholder"
	}
}

// Result is the outcome of extracting one leaf's content.
type Result struct {
	Text     string     // set for ResultText and ResultPlaceholder
	Data     []byte     // set for ResultBinary
	Kind     ResultKind
	Strategy string // which attempt produced it, diagnostics only
	Note     string // placeholder sub-case, diagnostics only
}

// Payload returns the bytes that go into the archive for this result.
func (r Result) Payload() []byte {
	if r.Kind == ResultBinary {
		return r.Data
	}
	return []byte(r.Text)
}

// Entry is one archive entry: a fully resolved path plus its payload.
type Entry struct {
	FullPath string // "/"-joined, no leading separator
	Payload  []byte
	Kind     ResultKind
}
