package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/pkg/adapters/memory"
	"github.com/aretw0/patchbay/pkg/backend"
	"github.com/aretw0/patchbay/pkg/catalog"
	"github.com/aretw0/patchbay/pkg/domain"
	"github.com/aretw0/patchbay/pkg/library"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEditor(t *testing.T) (*patchbay.Editor, *library.Manager) {
	t.Helper()
	lib := library.NewManager(memory.NewStore())
	hub := backend.NewHub(catalog.Default(), lib)
	t.Cleanup(func() { _ = hub.Close() })

	local, remote := memory.Pipe(64)
	go func() { _ = hub.Serve(context.Background(), remote) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ed, err := patchbay.Connect(ctx, "", patchbay.WithTransport(local))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ed.Close() })
	return ed, lib
}

func TestRepl_Commands(t *testing.T) {
	ed, _ := newEditor(t)
	var out bytes.Buffer
	r := NewRepl(ed.Session, strings.NewReader(""), &out, false)

	require.NoError(t, r.Exec("new sin 10 20"))
	require.NoError(t, r.Exec("new value"))
	require.NoError(t, r.Exec("set value1 a4"))
	require.NoError(t, r.Exec("connect value1 sin1 pitch"))
	require.NoError(t, r.Exec("connect sin1 engine root"))
	require.NoError(t, r.Exec("move sin1 30 40"))
	require.NoError(t, r.Exec("# comments are ignored"))
	require.NoError(t, r.Exec(""))

	assert.Contains(t, out.String(), "created sin1\n")
	assert.Contains(t, out.String(), "created value1\n")

	sin, ok := ed.Object("sin1")
	require.True(t, ok)
	assert.Equal(t, domain.Display{Top: 30, Left: 40}, sin.Display)
	value, _ := ed.Object("value1")
	assert.Equal(t, "a4", value.Display.Label)

	out.Reset()
	require.NoError(t, r.Exec("ls"))
	assert.Contains(t, out.String(), "value1 -> sin1.pitch")
	assert.Contains(t, out.String(), "sin1 -> engine.root")
	assert.Contains(t, out.String(), "[a4]")

	out.Reset()
	require.NoError(t, r.Exec("dup sin1 value1"))
	assert.Equal(t, "created sin2 value2\n", out.String())

	require.NoError(t, r.Exec("rm sin2 value2 engine"))
	_, ok = ed.Object("sin2")
	assert.False(t, ok)
	_, ok = ed.Object(domain.EngineName)
	assert.True(t, ok, "engine survives a selection delete")

	out.Reset()
	require.NoError(t, r.Exec("status"))
	assert.Equal(t, "patch (untitled) *, 3 objects\n", out.String())
}

func TestRepl_Errors(t *testing.T) {
	ed, _ := newEditor(t)
	r := NewRepl(ed.Session, strings.NewReader(""), &bytes.Buffer{}, false)

	assert.ErrorIs(t, r.Exec("new nosuchkind"), domain.ErrUnknownKind)
	assert.ErrorIs(t, r.Exec("rm engine-less"), domain.ErrUnknownObject)
	assert.ErrorContains(t, r.Exec("connect a b"), "usage")
	assert.ErrorContains(t, r.Exec("move x 1 y"), "bad left")
	assert.ErrorContains(t, r.Exec("frobnicate"), "unknown command")
	assert.ErrorIs(t, r.Exec("quit"), errQuit)
	assert.Equal(t, "rejected: unknown kind: x", describe(fmt.Errorf("%w: x", domain.ErrUnknownKind)))
	assert.Equal(t, "error: boom", describe(errors.New("boom")))
}

func TestRepl_RunSavesAndLoads(t *testing.T) {
	ed, lib := newEditor(t)
	script := strings.Join([]string{
		"new noise",
		"connect noise1 engine root",
		"save hiss",
		"quit",
	}, "\n")
	var out bytes.Buffer
	require.NoError(t, NewRepl(ed.Session, strings.NewReader(script), &out, false).Run(context.Background()))
	assert.Contains(t, out.String(), "saving hiss")

	require.Eventually(t, func() bool {
		names, _ := lib.List(context.Background())
		return len(names) == 1
	}, 2*time.Second, 10*time.Millisecond)

	_, err := ed.Create("value", domain.Display{})
	require.NoError(t, err)
	assert.True(t, ed.IsDirty())

	// Refusing the confirmation keeps the unsaved graph.
	r := NewRepl(ed.Session, strings.NewReader("n\n"), &out, false)
	assert.Error(t, r.Exec("load hiss"))
	_, ok := ed.Object("value1")
	assert.True(t, ok)

	r = NewRepl(ed.Session, strings.NewReader("y\n"), &out, false)
	require.NoError(t, r.Exec("load hiss"))
	require.Eventually(t, func() bool {
		_, ok := ed.Object("value1")
		return !ok && ed.Current() == "hiss"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []domain.Connection{{From: "noise1", To: domain.EngineName, Input: "root"}}, ed.Connections())
}
