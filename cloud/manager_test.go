package cloud

import (
	"context"
	"testing"

	"github.com/cloudcmd/cloud/caption"
	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/parser"
	"github.com/cloudcmd/cloud/tree"
	"github.com/cloudcmd/cloud/vtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strParser() parser.Parser { return parser.Erase(parser.NewStringParser(parser.WordMode)) }

func TestManagerRegisterExecuteSuggest(t *testing.T) {
	m := New()

	var captured *cmdcontext.Context
	b := tree.NewBuilder().LiteralStep("greet").
		Required("name", strParser()).
		Handler(func(ctx *cmdcontext.Context) error { captured = ctx; return nil })
	_, err := m.Register(b)
	require.NoError(t, err)

	out, ferr := m.Execute(context.Background(), "sender", "greet Alice")
	require.Nil(t, ferr)
	require.NotNil(t, out)
	name, ok := captured.Get("name", vtype.Of[string]())
	require.True(t, ok)
	assert.Equal(t, "Alice", name)

	suggestions := m.Suggest("sender", "gr")
	var texts []string
	for _, s := range suggestions {
		texts = append(texts, s.Text)
	}
	assert.Contains(t, texts, "greet")
}

func TestManagerDuplicateCommandRejectedUnlessOverride(t *testing.T) {
	h := func(ctx *cmdcontext.Context) error { return nil }

	m := New()
	_, err := m.Register(tree.NewBuilder().LiteralStep("ping").Handler(h))
	require.NoError(t, err)
	_, err = m.Register(tree.NewBuilder().LiteralStep("ping").Handler(h))
	assert.Error(t, err)

	m2 := New(WithOverrideExistingCommands(true))
	_, err = m2.Register(tree.NewBuilder().LiteralStep("ping").Handler(h))
	require.NoError(t, err)
	_, err = m2.Register(tree.NewBuilder().LiteralStep("ping").Handler(h))
	assert.NoError(t, err)
}

func TestManagerPermissionCheckerGatesExecution(t *testing.T) {
	m := New(WithPermissionChecker(func(sender any, permission string) bool { return false }))
	_, err := m.Register(tree.NewBuilder().LiteralStep("secret").Permission("admin").
		Handler(func(ctx *cmdcontext.Context) error { return nil }))
	require.NoError(t, err)

	_, ferr := m.Execute(context.Background(), "sender", "secret")
	require.NotNil(t, ferr)
	assert.Equal(t, cerr.NoPermission, ferr.Kind)
}

func TestManagerForceSuggestionReturnsEmptyCandidate(t *testing.T) {
	m := New(WithForceSuggestion(true))
	_, err := m.Register(tree.NewBuilder().LiteralStep("known").
		Handler(func(ctx *cmdcontext.Context) error { return nil }))
	require.NoError(t, err)

	out := m.Suggest("sender", "totally-unrelated-prefix")
	require.Len(t, out, 1)
	assert.Equal(t, "", out[0].Text)
}

func TestManagerRenderUsesCaptionProvider(t *testing.T) {
	m := New(WithCaptionProvider(caption.MapProvider{
		"cmd.argument-parse": "bad value <input>",
	}))
	err := cerr.New(cerr.ArgumentParse, "out of range").WithVars(map[string]string{"input": "99"})
	err.CaptionKey = "cmd.argument-parse"

	msg, ok := m.Render(err, "sender")
	require.True(t, ok)
	assert.Equal(t, "bad value 99", msg)
}

func TestManagerSetStateSealsRegistration(t *testing.T) {
	m := New()
	m.SetState(tree.Sealed)
	_, err := m.Register(tree.NewBuilder().LiteralStep("x").Handler(func(ctx *cmdcontext.Context) error { return nil }))
	assert.Error(t, err)

	m.SetState(tree.Registering)
	_, err = m.Register(tree.NewBuilder().LiteralStep("x").Handler(func(ctx *cmdcontext.Context) error { return nil }))
	assert.NoError(t, err)
}

func TestManagerExceptionHandlerRewritesFailure(t *testing.T) {
	m := New(WithExceptionHandler(cerr.NoSuchCommand, func(ctx *cmdcontext.Context, err *cerr.Error) *cerr.Error {
		return nil
	}))
	_, ferr := m.Execute(context.Background(), "sender", "nope")
	assert.Nil(t, ferr)
}
