package exec

import (
	"context"
	"testing"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/parser"
	"github.com/cloudcmd/cloud/tree"
	"github.com/cloudcmd/cloud/vtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strParser() parser.Parser { return parser.Erase(parser.NewStringParser(parser.WordMode)) }

func newEngine(t *testing.T) (*tree.CommandTree, *Engine) {
	t.Helper()
	ct := tree.New()
	return ct, &Engine{Tree: ct, Coordinator: Simple{}}
}

// cmd <n:int(0..10)> [s:string="x"], "cmd 4" -> success {n=4, s="x"}.
func TestRequiredPlusOptionalDefault(t *testing.T) {
	ct, e := newEngine(t)
	ip := parser.Erase(parser.NewIntegerParser(cursor.Range[int]{Min: 0, Max: 10, HasMin: true, HasMax: true}))
	var captured *cmdcontext.Context
	b := tree.NewBuilder().LiteralStep("cmd").
		Required("n", ip).
		Optional("s", strParser(), "x").
		Handler(func(ctx *cmdcontext.Context) error { captured = ctx; return nil })
	_, err := ct.Register(b)
	require.NoError(t, err)

	out, ferr := e.Execute(context.Background(), "sender", "cmd 4", nil)
	require.Nil(t, ferr)
	require.NotNil(t, out)

	n, ok := captured.Get("n", vtype.Of[int]())
	require.True(t, ok)
	assert.Equal(t, 4, n)

	s, ok := captured.Get("s", vtype.Of[string]())
	require.True(t, ok)
	assert.Equal(t, "x", s)
}

// "cmd 99" -> ArgumentParse, out-of-range vars.
func TestOutOfRangeArgumentParse(t *testing.T) {
	ct, e := newEngine(t)
	ip := parser.Erase(parser.NewIntegerParser(cursor.Range[int]{Min: 0, Max: 10, HasMin: true, HasMax: true}))
	b := tree.NewBuilder().LiteralStep("cmd").Required("n", ip).Handler(func(ctx *cmdcontext.Context) error { return nil })
	_, err := ct.Register(b)
	require.NoError(t, err)

	_, ferr := e.Execute(context.Background(), "sender", "cmd 99", nil)
	require.NotNil(t, ferr)
	assert.Equal(t, cerr.ArgumentParse, ferr.Kind)
	assert.Equal(t, "99", ferr.Vars["input"])
	assert.Equal(t, "0", ferr.Vars["min"])
	assert.Equal(t, "10", ferr.Vars["max"])
	assert.Equal(t, "argument.parse.failure.integer", ferr.CaptionKey)
}

// give <player> <item> [amount:int(1..)=1] with flag --silent/-s;
// "give Alice stone -s" -> success, silent present, amount=1.
func TestFlagAfterOptionalDefault(t *testing.T) {
	ct, e := newEngine(t)
	silent, err := flag.New("silent", []rune{'s'}, nil, flag.Single)
	require.NoError(t, err)
	group, err := flag.NewGroup(silent)
	require.NoError(t, err)

	amountParser := parser.Erase(parser.NewIntegerParser(cursor.Range[int]{Min: 1, HasMin: true}))
	var captured *cmdcontext.Context
	b := tree.NewBuilder().LiteralStep("give").
		Required("player", strParser()).
		Required("item", strParser()).
		Optional("amount", amountParser, 1).
		FlagGroupStep(group).
		Handler(func(ctx *cmdcontext.Context) error { captured = ctx; return nil })
	_, rerr := ct.Register(b)
	require.NoError(t, rerr)

	_, ferr := e.Execute(context.Background(), "sender", "give Alice stone -s", nil)
	require.Nil(t, ferr)

	assert.True(t, captured.Flags().Present("silent"))
	amount, ok := captured.Get("amount", vtype.Of[int]())
	require.True(t, ok)
	assert.Equal(t, 1, amount)
}

func packGroup(t *testing.T) *flag.Group {
	t.Helper()
	file, err := flag.New("file", nil, strParser(), flag.Single)
	require.NoError(t, err)
	verbose, err := flag.New("verbose", nil, nil, flag.Single)
	require.NoError(t, err)
	tag, err := flag.New("tag", nil, strParser(), flag.Repeatable)
	require.NoError(t, err)
	group, err := flag.NewGroup(file, verbose, tag)
	require.NoError(t, err)
	return group
}

// pack --file <f> --verbose, repeatable --tag <t>;
// "pack --verbose --file a.txt --tag x --tag y" -> success.
func TestRepeatableAndOrderlessFlags(t *testing.T) {
	ct, e := newEngine(t)
	var captured *cmdcontext.Context
	b := tree.NewBuilder().LiteralStep("pack").FlagGroupStep(packGroup(t)).
		Handler(func(ctx *cmdcontext.Context) error { captured = ctx; return nil })
	_, err := ct.Register(b)
	require.NoError(t, err)

	_, ferr := e.Execute(context.Background(), "sender", "pack --verbose --file a.txt --tag x --tag y", nil)
	require.Nil(t, ferr)

	fc := captured.Flags()
	assert.Equal(t, "a.txt", fc.Value("file"))
	assert.True(t, fc.Present("verbose"))
	assert.Equal(t, []any{"x", "y"}, fc.Values("tag"))
}

// Same flags; "pack --tag x --file" -> FlagParse/MISSING_ARGUMENT for file.
func TestMissingFlagArgument(t *testing.T) {
	ct, e := newEngine(t)
	b := tree.NewBuilder().LiteralStep("pack").FlagGroupStep(packGroup(t)).
		Handler(func(ctx *cmdcontext.Context) error { return nil })
	_, err := ct.Register(b)
	require.NoError(t, err)

	_, ferr := e.Execute(context.Background(), "sender", "pack --tag x --file", nil)
	require.NotNil(t, ferr)
	assert.Equal(t, cerr.FlagParse, ferr.Kind)
	assert.Equal(t, cerr.MissingArgument, ferr.FlagReason)
	assert.Equal(t, "file", ferr.FlagName)
}

// "op literal" + "op <user>" siblings; literals are tried
// before variables, so "op literal" takes the literal branch.
func TestLiteralBeforeVariable(t *testing.T) {
	ct, e := newEngine(t)
	var literalHit, variableHit bool

	b1 := tree.NewBuilder().LiteralStep("op").LiteralStep("literal").
		Handler(func(ctx *cmdcontext.Context) error { literalHit = true; return nil })
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := tree.NewBuilder().LiteralStep("op").Required("user", strParser()).
		Handler(func(ctx *cmdcontext.Context) error { variableHit = true; return nil })
	_, err = ct.Register(b2)
	require.NoError(t, err)

	_, ferr := e.Execute(context.Background(), "sender", "op literal", nil)
	require.Nil(t, ferr)
	assert.True(t, literalHit)
	assert.False(t, variableHit)
}

func TestNoSuchCommandForUnknownTopLevelLiteral(t *testing.T) {
	ct, e := newEngine(t)
	b := tree.NewBuilder().LiteralStep("known").Handler(func(ctx *cmdcontext.Context) error { return nil })
	_, err := ct.Register(b)
	require.NoError(t, err)

	_, ferr := e.Execute(context.Background(), "sender", "unknown arg", nil)
	require.NotNil(t, ferr)
	assert.Equal(t, cerr.NoSuchCommand, ferr.Kind)
}

func TestPermissionGateRejectsNode(t *testing.T) {
	ct := tree.New()
	e := &Engine{
		Tree:        ct,
		Coordinator: Simple{},
		Permission:  func(sender any, permission string) bool { return false },
	}
	b := tree.NewBuilder().LiteralStep("secret").Permission("admin").
		Handler(func(ctx *cmdcontext.Context) error { return nil })
	_, err := ct.Register(b)
	require.NoError(t, err)

	_, ferr := e.Execute(context.Background(), "sender", "secret", nil)
	require.NotNil(t, ferr)
	assert.Equal(t, cerr.NoPermission, ferr.Kind)
}

func TestLiberalFlagParsingAbsorbsFlagsBeforePositionals(t *testing.T) {
	ct := tree.New()
	e := &Engine{Tree: ct, Coordinator: Simple{}, LiberalFlagParsing: true}

	silent, err := flag.New("silent", []rune{'s'}, nil, flag.Single)
	require.NoError(t, err)
	group, err := flag.NewGroup(silent)
	require.NoError(t, err)

	var captured *cmdcontext.Context
	b := tree.NewBuilder().LiteralStep("give").
		Required("player", strParser()).
		FlagGroupStep(group).
		Handler(func(ctx *cmdcontext.Context) error { captured = ctx; return nil })
	_, rerr := ct.Register(b)
	require.NoError(t, rerr)

	_, ferr := e.Execute(context.Background(), "sender", "give -s Alice", nil)
	require.Nil(t, ferr)
	assert.True(t, captured.Flags().Present("silent"))
	player, _ := captured.Get("player", vtype.Of[string]())
	assert.Equal(t, "Alice", player)
}
