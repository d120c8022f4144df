package tree

import (
	"testing"

	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intParser() parser.Parser {
	return parser.Erase(parser.NewIntegerParser(parser.Unbounded[int]()))
}

func strParser() parser.Parser {
	return parser.Erase(parser.NewStringParser(parser.WordMode))
}

func noop(ctx *cmdcontext.Context) error { return nil }

func newTestGroup() (*flag.Group, error) {
	f, err := flag.New("verbose", []rune{'v'}, nil, flag.Single)
	if err != nil {
		return nil, err
	}
	return flag.NewGroup(f)
}

func TestRegisterSimpleLiteralChain(t *testing.T) {
	ct := New()
	b := NewBuilder().LiteralStep("give").Required("player", strParser()).Handler(noop)
	_, err := ct.Register(b)
	require.NoError(t, err)

	giveNode, ok := ct.Root().LiteralChild("give")
	require.True(t, ok)
	assert.Equal(t, Literal, giveNode.Kind)
	assert.Len(t, giveNode.VariableChildren(), 1)
}

func TestDuplicateSiblingLiteralNamesRejected(t *testing.T) {
	ct := New()
	b1 := NewBuilder().LiteralStep("give", "g").Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("grab", "g").Handler(noop)
	_, err = ct.Register(b2)
	require.Error(t, err, "alias 'g' collides with existing literal 'give'")
}

func TestTwoVariableSiblingsSameTypeIsAmbiguous(t *testing.T) {
	ct := New()
	root := NewBuilder().LiteralStep("cmd")
	b1 := root
	b1.Required("a", strParser()).Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("cmd").Required("b", strParser()).Handler(noop)
	_, err = ct.Register(b2)
	require.Error(t, err)
}

func TestTwoVariableSiblingsDifferentTypeAllowed(t *testing.T) {
	ct := New()
	b1 := NewBuilder().LiteralStep("cmd").Required("a", strParser()).Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("cmd").Required("b", intParser()).Handler(noop)
	_, err = ct.Register(b2)
	require.NoError(t, err)
}

func TestRequiredCannotFollowOptionalSibling(t *testing.T) {
	ct := New()
	b1 := NewBuilder().LiteralStep("cmd").Optional("a", strParser(), "x").Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("cmd").Required("b", intParser()).Handler(noop)
	_, err = ct.Register(b2)
	require.Error(t, err)
}

func TestLiteralAndVariableSiblingsCoexist(t *testing.T) {
	ct := New()
	b1 := NewBuilder().LiteralStep("op").LiteralStep("literal").Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("op").Required("user", strParser()).Handler(noop)
	_, err = ct.Register(b2)
	require.NoError(t, err)

	opNode, _ := ct.Root().LiteralChild("op")
	assert.Len(t, opNode.LiteralChildren(), 1)
	assert.Len(t, opNode.VariableChildren(), 1)
}

func TestFlagGroupIsTerminalNoChildrenPast(t *testing.T) {
	ct := New()
	group, err := newTestGroup()
	require.NoError(t, err)

	b := NewBuilder().LiteralStep("pack").FlagGroupStep(group).LiteralStep("illegal")
	_, err = ct.Register(b)
	require.Error(t, err)
}

func TestOverrideExistingCommandsSetting(t *testing.T) {
	ct := New()
	b1 := NewBuilder().LiteralStep("cmd").Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("cmd").Handler(noop)
	_, err = ct.Register(b2)
	require.Error(t, err, "without OverrideExistingCommands, re-registering must fail")

	ct.OverrideExistingCommands = true
	_, err = ct.Register(b2)
	require.NoError(t, err)
}

func TestSealedTreeRejectsRegistration(t *testing.T) {
	ct := New()
	ct.SetState(Sealed)
	b := NewBuilder().LiteralStep("cmd").Handler(noop)
	_, err := ct.Register(b)
	require.Error(t, err)
}

func TestAllowUnsafeRegistrationSkipsAmbiguityCheck(t *testing.T) {
	ct := New()
	ct.AllowUnsafeRegistration = true

	b1 := NewBuilder().LiteralStep("cmd").Required("a", strParser()).Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("cmd").Required("b", strParser()).Handler(noop)
	_, err = ct.Register(b2)
	require.NoError(t, err, "unsafe registration must bypass the ambiguity invariant")
}

func TestFailedSpliceLeavesTreeUnchanged(t *testing.T) {
	ct := New()
	group, err := newTestGroup()
	require.NoError(t, err)

	b := NewBuilder().LiteralStep("pack").FlagGroupStep(group).LiteralStep("illegal").Handler(noop)
	_, err = ct.Register(b)
	require.Error(t, err)

	_, ok := ct.Root().LiteralChild("pack")
	assert.False(t, ok, "the half-spliced chain must be rolled back")
	assert.Empty(t, ct.Root().Children)
}

func TestFailedSpliceKeepsExistingPrefix(t *testing.T) {
	ct := New()
	b1 := NewBuilder().LiteralStep("op").LiteralStep("list").Handler(noop)
	_, err := ct.Register(b1)
	require.NoError(t, err)

	b2 := NewBuilder().LiteralStep("op").LiteralStep("grant", "list").Handler(noop)
	_, err = ct.Register(b2)
	require.Error(t, err)

	opNode, ok := ct.Root().LiteralChild("op")
	require.True(t, ok, "nodes shared with earlier registrations survive the rollback")
	assert.Len(t, opNode.Children, 1)
	_, ok = opNode.LiteralChild("grant")
	assert.False(t, ok)
}
