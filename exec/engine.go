package exec

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/flag"
	"github.com/cloudcmd/cloud/tree"
)

// Verdict is returned by a Preprocessor/Postprocessor to accept or
// reject the execution in progress.
type Verdict int

const (
	Accepted Verdict = iota
	Rejected
)

// Preprocessor runs before dispatch begins, seeing the fresh Context and
// the not-yet-walked Input Cursor. A Rejected verdict short-circuits
// with a NoSuchCommand failure.
type Preprocessor func(ctx *cmdcontext.Context, cur *cursor.Cursor) Verdict

// Postprocessor runs after the command tree has been matched but before
// the handler is invoked, seeing the matched node and filled Context,
// for example an external permission gate.
type Postprocessor func(ctx *cmdcontext.Context, node *tree.Node) Verdict

// PermissionChecker reports whether sender may use permission. An empty
// permission string is always allowed.
type PermissionChecker func(sender any, permission string) bool

// ExceptionHandler is consulted for a given error Kind before the
// engine returns that failure to the caller. Returning a non-nil error
// replaces the one the engine was about to return; nil suppresses it
// and the execution is treated as having been fully handled.
type ExceptionHandler func(ctx *cmdcontext.Context, err *cerr.Error) *cerr.Error

// Outcome is the result of a successful Execute: the terminal node that
// was reached and the Context the handler ran with.
type Outcome struct {
	Node    *tree.Node
	Context *cmdcontext.Context
}

// Engine drives the tree traversal against a sealed (or registering)
// CommandTree, wrapped by the preprocess/dispatch/postprocess/invoke
// pipeline.
type Engine struct {
	Tree        *tree.CommandTree
	Coordinator Coordinator
	Permission  PermissionChecker

	Preprocessors  []Preprocessor
	Postprocessors []Postprocessor

	// LiberalFlagParsing, when true, absorbs flag tokens out of order as
	// soon as the literal prefix of a command is matched, rather than
	// only once all preceding positional variables have been satisfied.
	LiberalFlagParsing bool

	ExceptionHandlers map[cerr.Kind]ExceptionHandler
}

// state threads per-execution bookkeeping through the recursive walk
// without widening every method signature.
type state struct {
	sender      any
	cc          *cmdcontext.Context
	cur         *cursor.Cursor
	liberalDone bool
}

// Execute runs the full pipeline for one input line: preprocess,
// dispatch, postprocess, invoke.
func (e *Engine) Execute(ctx context.Context, sender any, line string, init func(*cmdcontext.Context)) (*Outcome, *cerr.Error) {
	cc := cmdcontext.New(sender, line)
	if init != nil {
		init(cc)
	}
	cur := cursor.New(line)

	for _, pp := range e.Preprocessors {
		if pp(cc, cur) == Rejected {
			return nil, e.fail(cc, cerr.New(cerr.NoSuchCommand, "rejected by preprocessor"))
		}
	}

	if cur.IsEmpty(true) {
		return nil, e.fail(cc, cerr.New(cerr.NoSuchCommand, "empty input"))
	}

	firstTok := cur.PeekString()
	if _, ok := e.Tree.Root().LiteralChild(firstTok); !ok {
		return nil, e.fail(cc, cerr.Newf(cerr.NoSuchCommand, "no such command: %s", firstTok))
	}

	st := &state{sender: sender, cc: cc, cur: cur}

	var node *tree.Node
	var werr *cerr.Error
	runErr := e.Coordinator.Run(func() error {
		node, werr = e.walkChildren(ctx, st, e.Tree.Root())
		if werr != nil {
			return werr
		}
		return nil
	})
	if werr != nil {
		return nil, e.fail(cc, werr)
	}
	if runErr != nil {
		if ce, ok := runErr.(*cerr.Error); ok {
			return nil, e.fail(cc, ce)
		}
		return nil, e.fail(cc, cerr.Wrap(cerr.CommandExecution, "dispatch failed", runErr))
	}

	for _, pp := range e.Postprocessors {
		if pp(cc, node) == Rejected {
			return nil, e.fail(cc, cerr.New(cerr.NoPermission, "rejected by postprocessor"))
		}
	}

	if node.Handler == nil {
		return nil, e.fail(cc, cerr.New(cerr.InvalidSyntax, "matched node has no handler"))
	}

	if herr := e.invoke(cc, node); herr != nil {
		return nil, e.fail(cc, herr)
	}
	return &Outcome{Node: node, Context: cc}, nil
}

// fail runs err through any registered ExceptionHandler for its Kind.
func (e *Engine) fail(cc *cmdcontext.Context, err *cerr.Error) *cerr.Error {
	if h, ok := e.ExceptionHandlers[err.Kind]; ok {
		return h(cc, err)
	}
	return err
}

// invoke runs node's Handler under the Coordinator, recovering a panic
// into a CommandExecution failure with the original cause retained.
func (e *Engine) invoke(cc *cmdcontext.Context, node *tree.Node) (result *cerr.Error) {
	err := e.Coordinator.Run(func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return node.Handler(cc)
	})
	if err == nil {
		return nil
	}
	if ctxErr, ok := err.(*cerr.Error); ok {
		return ctxErr
	}
	return cerr.Wrap(cerr.CommandExecution, "handler returned an error", err)
}

// checkGates applies the permission and sender-type gates on entering
// node. Neither failure is retried against siblings.
func (e *Engine) checkGates(sender any, node *tree.Node) *cerr.Error {
	if node.Sender != nil && !node.Sender.Check(sender) {
		return cerr.Newf(cerr.InvalidSender, "invalid sender for this command: requires %s", node.Sender.Name)
	}
	if node.Permission != "" && e.Permission != nil && !e.Permission(sender, node.Permission) {
		return cerr.Newf(cerr.NoPermission, "no permission for this node: requires %s", node.Permission)
	}
	return nil
}

// walk runs the per-node matching algorithm once inside node, after it
// has already been matched by its parent (gates not yet applied).
func (e *Engine) walk(ctx context.Context, st *state, node *tree.Node) (*tree.Node, *cerr.Error) {
	select {
	case <-ctx.Done():
		return nil, cerr.Wrap(cerr.Cancellation, "execution cancelled", ctx.Err())
	default:
	}

	if gerr := e.checkGates(st.sender, node); gerr != nil {
		return nil, gerr
	}

	st.cur.SkipWhitespace()

	// Step 1: input exhausted and this node may terminate here.
	if st.cur.IsEmpty(true) && node.IsTerminal() {
		return node, nil
	}

	// Step 2: flag-group child takes priority over ordinary matching.
	// An empty cursor also delegates (zero flags supplied is a valid,
	// trivial AWAIT_FLAG success), so a command whose last step is a
	// flag-group can still terminate without ever typing one.
	if fg, ok := node.FlagGroupChild(); ok {
		tok := st.cur.PeekString()
		if tok == "" || strings.HasPrefix(tok, "-") {
			return e.enterFlagGroup(st, fg)
		}
	}

	if e.LiberalFlagParsing && !st.liberalDone {
		if fg := findReachableFlagGroup(node); fg != nil {
			st.liberalDone = true
			if n, err := e.absorbLiberalFlags(st, node, fg); err != nil || n != nil {
				return n, err
			}
		}
	}

	return e.walkChildren(ctx, st, node)
}

// walkChildren matches node's children: literal children first (in
// insertion order, committing on a name/alias match), then variable
// children (each tried in order, restoring the cursor on failure and
// remembering the deepest one), then default synthesis for an optional
// variable child that was never reached.
func (e *Engine) walkChildren(ctx context.Context, st *state, node *tree.Node) (*tree.Node, *cerr.Error) {
	tok := st.cur.PeekString()
	if tok != "" {
		if child, ok := node.LiteralChild(tok); ok {
			save := st.cur.Save()
			st.cur.ReadString()
			n, err := e.walk(ctx, st, child)
			if err != nil {
				st.cc.NoteFailure(err.WithAdvance(st.cur.Save()))
				st.cur.Restore(save)
			}
			return n, err
		}
	}

	var deepest *cerr.Error
	for _, vchild := range node.VariableChildren() {
		save := st.cur.Save()
		v, perr := vchild.VarParser.Parse(st.cc, st.cur)
		if perr != nil {
			st.cur.Restore(save)
			deepest = cerr.Deepest(deepest, perr.WithAdvance(save))
			continue
		}
		st.cc.Store(vchild.Name, vchild.VarParser.ValueType(), v)
		n, werr := e.walk(ctx, st, vchild)
		if werr == nil {
			return n, nil
		}
		deepest = cerr.Deepest(deepest, werr)
		st.cur.Restore(save)
	}

	for _, vchild := range node.VariableChildren() {
		if vchild.Required || !vchild.HasDefault {
			continue
		}
		st.cc.Store(vchild.Name, vchild.VarParser.ValueType(), vchild.Default)
		n, werr := e.walk(ctx, st, vchild)
		if werr == nil {
			return n, nil
		}
		deepest = cerr.Deepest(deepest, werr)
	}

	if deepest != nil {
		st.cc.NoteFailure(deepest)
		return nil, deepest
	}

	var expected []string
	for _, c := range node.LiteralChildren() {
		expected = append(expected, c.Name)
	}
	for _, v := range node.VariableChildren() {
		expected = append(expected, "<"+v.Name+">")
	}
	return nil, cerr.New(cerr.InvalidSyntax, "no matching command for remaining input").
		WithCaption("invalid.syntax").
		WithVars(map[string]string{
			"prefix":   st.cur.Consumed(),
			"input":    st.cur.Remainder(),
			"expected": strings.Join(expected, "|"),
		})
}

// enterFlagGroup delegates the remainder of the line to the Flag
// Sub-Parser, gated by fg's own permission/sender requirements.
func (e *Engine) enterFlagGroup(st *state, fg *tree.Node) (*tree.Node, *cerr.Error) {
	if gerr := e.checkGates(st.sender, fg); gerr != nil {
		return nil, gerr
	}
	allowed := func(permission string) bool {
		return permission == "" || e.Permission == nil || e.Permission(st.sender, permission)
	}
	if ferr := flag.Parse(st.cc, st.cur, fg.Flags, allowed); ferr != nil {
		return nil, ferr
	}
	if fg.IsTerminal() {
		return fg, nil
	}
	return nil, cerr.New(cerr.InvalidSyntax, "flag group has no terminal handler")
}
