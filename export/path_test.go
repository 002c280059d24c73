package export

import (
	"context"
	"reflect"
	"testing"
)

func deepTree() *scriptedSurface {
	f := newScriptedSurface()
	f.addContainer("root", "root", "")
	f.addContainer("src", "src", "root")
	f.addContainer("lib", "lib", "src")
	f.addLeaf("app", "app.ts", "lib")
	for _, id := range []NodeID{"root", "src", "lib"} {
		f.nodes[id].node.State = StateExpanded
	}
	return f
}

func TestResolvePath_DeepLeaf(t *testing.T) {
	f := deepTree()
	segs, err := ResolvePath(context.Background(), f, f.nodes["app"].node, 0)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	want := []string{"root", "src", "lib"}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("segs: got %v, want %v", segs, want)
	}
	if got := JoinPath(segs, "app.ts"); got != "root/src/lib/app.ts" {
		t.Errorf("JoinPath: got %q", got)
	}
}

func TestResolvePath_Idempotent(t *testing.T) {
	f := deepTree()
	leaf := f.nodes["app"].node
	first, err := ResolvePath(context.Background(), f, leaf, 0)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := ResolvePath(context.Background(), f, leaf, 0)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("not idempotent: %v vs %v", first, second)
	}
}

func TestResolvePath_RootLeaf(t *testing.T) {
	f := newScriptedSurface()
	f.addLeaf("y", "y.png", "")
	segs, err := ResolvePath(context.Background(), f, f.nodes["y"].node, 0)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	if len(segs) != 0 {
		t.Fatalf("segs: got %v, want empty", segs)
	}
	if got := JoinPath(segs, "y.png"); got != "y.png" {
		t.Errorf("JoinPath: got %q", got)
	}
}

func TestResolvePath_UnnamedContainer(t *testing.T) {
	// A container whose label cannot be read still resolves: placeholder
	// segment instead of an abort.
	f := newScriptedSurface()
	f.addContainer("anon", "", "")
	f.addLeaf("z", "z.md", "anon")
	f.nodes["anon"].node.State = StateExpanded

	segs, err := ResolvePath(context.Background(), f, f.nodes["z"].node, 0)
	if err != nil {
		t.Fatalf("ResolvePath: %v", err)
	}
	want := []string{UnnamedSegment}
	if !reflect.DeepEqual(segs, want) {
		t.Fatalf("segs: got %v, want %v", segs, want)
	}
}

func TestResolvePath_DepthCap(t *testing.T) {
	// A self-owning region would loop; the depth cap converts it into a
	// partial path plus an error.
	f := newScriptedSurface()
	f.addContainer("loop", "loop", "loop")
	f.addLeaf("l", "l.txt", "loop")
	f.nodes["loop"].node.State = StateExpanded

	segs, err := ResolvePath(context.Background(), f, f.nodes["l"].node, 5)
	if err == nil {
		t.Fatal("ResolvePath: want depth cap error")
	}
	if len(segs) == 0 {
		t.Error("ResolvePath: want partial segments alongside the error")
	}
}
