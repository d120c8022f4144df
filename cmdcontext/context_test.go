package cmdcontext

import (
	"testing"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/vtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreGet(t *testing.T) {
	ctx := New("sender", "cmd 4")
	intType := vtype.Of[int]()

	_, ok := ctx.Get("n", intType)
	assert.False(t, ok)

	ctx.Store("n", intType, 4)
	v, ok := ctx.Get("n", intType)
	require.True(t, ok)
	assert.Equal(t, 4, v)

	vt, ok := ctx.TypeOf("n")
	require.True(t, ok)
	assert.True(t, vt.Equal(intType))
	_, ok = ctx.TypeOf("missing")
	assert.False(t, ok)
}

func TestGetOrDefault(t *testing.T) {
	ctx := New("sender", "")
	strType := vtype.Of[string]()
	assert.Equal(t, "x", ctx.GetOrDefault("s", strType, "x"))
	ctx.Store("s", strType, "y")
	assert.Equal(t, "y", ctx.GetOrDefault("s", strType, "x"))
}

func TestComputeIfAbsent(t *testing.T) {
	ctx := New("sender", "")
	strType := vtype.Of[string]()
	calls := 0
	compute := func() any {
		calls++
		return "computed"
	}
	assert.Equal(t, "computed", ctx.ComputeIfAbsent("s", strType, compute))
	assert.Equal(t, "computed", ctx.ComputeIfAbsent("s", strType, compute))
	assert.Equal(t, 1, calls)
}

func TestDeepestFailureKeepsFurthestAdvance(t *testing.T) {
	ctx := New("sender", "cmd 99")
	shallow := cerr.New(cerr.ArgumentParse, "shallow").WithAdvance(2)
	deep := cerr.New(cerr.ArgumentParse, "deep").WithAdvance(5)

	ctx.NoteFailure(shallow)
	ctx.NoteFailure(deep)
	ctx.NoteFailure(shallow)

	assert.Same(t, deep, ctx.DeepestFailure())
}

func TestFlagContextSingleAndRepeatable(t *testing.T) {
	fc := newFlagContext()
	assert.False(t, fc.Present("verbose"))

	fc.Add("verbose", Present)
	assert.True(t, fc.Present("verbose"))
	assert.Equal(t, 1, fc.Count("verbose"))

	fc.Add("tag", "x")
	fc.Add("tag", "y")
	assert.Equal(t, []any{"x", "y"}, fc.Values("tag"))
	assert.Equal(t, "x", fc.Value("tag"))
	assert.Equal(t, 2, fc.Count("tag"))
}
