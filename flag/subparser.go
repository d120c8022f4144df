package flag

import (
	"strings"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
)

// PermissionChecker reports whether the current sender may use the flag
// identified by permission (empty permission always allowed). The
// sub-parser never talks to a sender directly; it is pre-bound by the
// execution engine to the sender under traversal.
type PermissionChecker func(permission string) bool

// flagFail builds a FlagParse failure for the given reason and flag name.
func flagFail(reason cerr.FlagReason, name string) *cerr.Error {
	return &cerr.Error{
		Kind:       cerr.FlagParse,
		Message:    string(reason) + ": " + name,
		CaptionKey: "flag.parse.failure." + strings.ToLower(string(reason)),
		Vars:       map[string]string{"flag": name},
		FlagName:   name,
		FlagReason: reason,
	}
}

// Parse runs the flag sub-parser state machine over the
// remaining tokens in cur, storing results into ctx.Flags(). It
// terminates cleanly when AWAIT_FLAG is reached with an empty cursor;
// any other terminal condition returns the corresponding FlagParse (or
// wrapped ArgumentParse) failure.
func Parse(ctx *cmdcontext.Context, cur *cursor.Cursor, group *Group, allowed PermissionChecker) *cerr.Error {
	fc := ctx.Flags()

	for {
		cur.SkipWhitespace()
		if cur.IsEmpty(true) {
			return nil // AWAIT_FLAG + empty cursor: clean success
		}

		tok := cur.PeekString()
		if !strings.HasPrefix(tok, "-") {
			// DONE with unconsumed, non-flag input: no one claims it.
			return flagFail(cerr.NoFlagStarted, tok)
		}
		cur.ReadString()

		switch {
		case strings.HasPrefix(tok, "--"):
			name := tok[2:]
			f, ok := group.ByLong(name)
			if !ok {
				return flagFail(cerr.UnknownFlag, name)
			}
			if err := consumeFlag(ctx, cur, f, allowed, fc); err != nil {
				return err
			}

		case len(tok) == 2:
			alias := rune(tok[1])
			f, ok := group.ByAlias(alias)
			if !ok {
				return flagFail(cerr.UnknownFlag, tok)
			}
			if err := consumeFlag(ctx, cur, f, allowed, fc); err != nil {
				return err
			}

		default:
			for _, ch := range tok[1:] {
				f, ok := group.ByAlias(ch)
				if !ok {
					return flagFail(cerr.UnknownFlag, "-"+string(ch))
				}
				if f.ValueParser != nil {
					return flagFail(cerr.UnknownFlag, "-"+string(ch)+" (value-bearing flags cannot combine)")
				}
				if !allowed(f.Permission) {
					return flagFail(cerr.FlagNoPerm, f.Long)
				}
				if fc.Present(f.Long) && f.Mode != Repeatable {
					return flagFail(cerr.DuplicateFlag, f.Long)
				}
				fc.Add(f.Long, cmdcontext.Present)
			}
		}
	}
}

// consumeFlag implements the AWAIT_FLAG -> (present | AWAIT_VALUE) ->
// AWAIT_FLAG transitions for one resolved --long or -x token.
func consumeFlag(ctx *cmdcontext.Context, cur *cursor.Cursor, f *Flag, allowed PermissionChecker, fc *cmdcontext.FlagContext) *cerr.Error {
	if !allowed(f.Permission) {
		return flagFail(cerr.FlagNoPerm, f.Long)
	}
	if fc.Present(f.Long) && f.Mode != Repeatable {
		return flagFail(cerr.DuplicateFlag, f.Long)
	}
	if f.ValueParser == nil {
		fc.Add(f.Long, cmdcontext.Present)
		return nil
	}

	cur.SkipWhitespace()
	if cur.IsEmpty(true) {
		return flagFail(cerr.MissingArgument, f.Long)
	}
	v, err := f.ValueParser.Parse(ctx, cur)
	if err != nil {
		return &cerr.Error{
			Kind:       cerr.FlagParse,
			Message:    "invalid value for --" + f.Long,
			FlagName:   f.Long,
			FlagReason: cerr.MissingArgument,
			Cause:      err,
		}
	}
	fc.Add(f.Long, v)
	return nil
}
