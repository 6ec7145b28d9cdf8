package ebuild

import (
	"strings"
	"testing"

	"github.com/obentoo/ebuildkit/pkg/eapi"
)

func mustEapi(t *testing.T, id string) *eapi.Eapi {
	t.Helper()
	e, err := eapi.Get(id)
	if err != nil {
		t.Fatalf("eapi.Get(%q): %v", id, err)
	}
	return e
}

func TestSniffEAPIFromComment(t *testing.T) {
	src := "# Copyright\n# Distributed under the GPL\n\nEAPI=8\n\nDESCRIPTION=\"foo\"\n"
	if got := SniffEAPI(src); got != "8" {
		t.Fatalf("got %q", got)
	}
}

func TestSniffEAPIDefaultsToZero(t *testing.T) {
	src := "# Copyright\n\nDESCRIPTION=\"foo\"\n"
	if got := SniffEAPI(src); got != "0" {
		t.Fatalf("got %q", got)
	}
}

func TestSniffEAPIQuoted(t *testing.T) {
	if got := SniffEAPI(`EAPI="7"`); got != "7" {
		t.Fatalf("got %q", got)
	}
}

func TestFromRawMissingMandatory(t *testing.T) {
	e := mustEapi(t, "8")
	_, err := FromRaw(RawMetadata{EAPI: e, Vars: map[string]string{}})
	if err == nil || !strings.Contains(err.Error(), "missing mandatory variable") {
		t.Fatalf("expected missing-mandatory error, got %v", err)
	}
}

func TestFromRawFullScenario(t *testing.T) {
	e := mustEapi(t, "8")
	raw := RawMetadata{
		EAPI: e,
		Vars: map[string]string{
			"DESCRIPTION":  "a test package",
			"SLOT":         "0/2",
			"KEYWORDS":     "amd64 ~x86",
			"IUSE":         "foo bar",
			"LICENSE":      "GPL-2",
			"DEPEND":       "dev-libs/foo",
			"RDEPEND":      "dev-libs/foo dev-libs/bar",
			"SRC_URI":      "https://example.org/foo-1.tar.gz -> foo-1.tar.gz",
			"REQUIRED_USE": "foo? ( bar )",
		},
	}
	m, err := FromRaw(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Description != "a test package" {
		t.Fatalf("got description %q", m.Description)
	}
	if m.Slot.Slot != "0" || m.Slot.Subslot != "2" {
		t.Fatalf("got slot %+v", m.Slot)
	}
	if m.Depend.String() != "dev-libs/foo" {
		t.Fatalf("got depend %q", m.Depend.String())
	}
	if m.SrcURI.String() != "https://example.org/foo-1.tar.gz -> foo-1.tar.gz" {
		t.Fatalf("got src_uri %q", m.SrcURI.String())
	}
}

func TestFromRawBadRequiredUse(t *testing.T) {
	e := mustEapi(t, "8")
	raw := RawMetadata{
		EAPI: e,
		Vars: map[string]string{
			"DESCRIPTION":  "d",
			"SLOT":         "0",
			"REQUIRED_USE": "( )",
		},
	}
	if _, err := FromRaw(raw); err == nil {
		t.Fatalf("expected parse error for empty group")
	}
}
