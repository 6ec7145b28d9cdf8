package commands

import (
	"context"
	"io"
	"testing"

	"github.com/obentoo/ebuildkit/pkg/buildstate"
	"github.com/obentoo/ebuildkit/pkg/eapi"
	"github.com/obentoo/ebuildkit/pkg/shell"
	"github.com/obentoo/ebuildkit/pkg/version"
)

func newState(t *testing.T, useFlags map[string]bool) *buildstate.BuildState {
	t.Helper()
	e, err := eapi.Get("8")
	if err != nil {
		t.Fatal(err)
	}
	v, err := version.Parse("1.0")
	if err != nil {
		t.Fatal(err)
	}
	return buildstate.New(e, buildstate.PackageIdentity{Category: "app-misc", Package: "foo", Version: v}, useFlags, io.Discard, io.Discard)
}

func TestInstallCommandsRecordIntent(t *testing.T) {
	bs := newState(t, nil)
	if _, err := dobin(context.Background(), bs, []string{"mybin"}); err != nil {
		t.Fatal(err)
	}
	if len(bs.Installed) != 1 || bs.Installed[0].Dest != "/usr/bin" {
		t.Fatalf("got %+v", bs.Installed)
	}
}

func TestUseCommand(t *testing.T) {
	bs := newState(t, map[string]bool{"foo": true})
	status, err := use(context.Background(), bs, []string{"foo"})
	if err != nil || status != 0 {
		t.Fatalf("status=%d err=%v", status, err)
	}
	status, err = use(context.Background(), bs, []string{"!foo"})
	if err != nil || status != 1 {
		t.Fatalf("status=%d err=%v", status, err)
	}
}

func TestDieProducesBail(t *testing.T) {
	bs := newState(t, nil)
	_, err := die(context.Background(), bs, []string{"boom"})
	bail, ok := err.(*shell.Bail)
	if !ok {
		t.Fatalf("expected *shell.Bail, got %T", err)
	}
	if bail.Message != "boom" {
		t.Fatalf("got message %q", bail.Message)
	}
}

func TestHasCommand(t *testing.T) {
	bs := newState(t, nil)
	status, err := has(context.Background(), bs, []string{"b", "a", "b", "c"})
	if err != nil || status != 0 {
		t.Fatalf("status=%d err=%v", status, err)
	}
	status, err = has(context.Background(), bs, []string{"z", "a", "b", "c"})
	if err != nil || status != 1 {
		t.Fatalf("status=%d err=%v", status, err)
	}
}
