// Package cloud wires the command tree, execution engine, suggestion
// engine, and caption registry into the single entry point a host
// embeds. It owns no domain logic of its own; it is configuration and
// delegation.
package cloud

import (
	"context"

	"github.com/cloudcmd/cloud/caption"
	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/exec"
	"github.com/cloudcmd/cloud/suggest"
	"github.com/cloudcmd/cloud/suggestion"
	"github.com/cloudcmd/cloud/tree"
)

// Manager is the root object a host constructs once and calls Register
// against during its startup window, then Execute/Suggest against for
// the lifetime of the process.
type Manager struct {
	tree      *tree.CommandTree
	engine    *exec.Engine
	suggester *suggest.Engine
	captions  *caption.Registry

	permission exec.PermissionChecker
	sinks      []RegistrationSink
}

// RegistrationSink is notified on each Register call so platform
// adapters can mirror commands into an external dispatcher. A non-nil
// error rejects the registration: the builder is never spliced and
// Register fails with that error as the cause.
type RegistrationSink interface {
	OnRegister(name string, b *tree.Builder) error
}

// SinkFunc adapts a function to RegistrationSink.
type SinkFunc func(name string, b *tree.Builder) error

func (f SinkFunc) OnRegister(name string, b *tree.Builder) error { return f(name, b) }

// Option configures a Manager at construction time.
type Option func(*Manager)

// New builds a Manager in the Registering state, ready to accept
// Register calls.
func New(opts ...Option) *Manager {
	t := tree.New()
	m := &Manager{
		tree:     t,
		captions: caption.NewRegistry(),
		engine: &exec.Engine{
			Tree:              t,
			Coordinator:       exec.Simple{},
			ExceptionHandlers: map[cerr.Kind]exec.ExceptionHandler{},
		},
		suggester: &suggest.Engine{Tree: t},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// WithAllowUnsafeRegistration implements the ALLOW_UNSAFE_REGISTRATION
// setting: disables the ambiguity/ordering invariant checks at
// splice time.
func WithAllowUnsafeRegistration(allow bool) Option {
	return func(m *Manager) { m.tree.AllowUnsafeRegistration = allow }
}

// WithOverrideExistingCommands implements OVERRIDE_EXISTING_COMMANDS:
// a later Register call replaces an earlier handler at the same
// terminal instead of being rejected as a DuplicateCommand.
func WithOverrideExistingCommands(override bool) Option {
	return func(m *Manager) { m.tree.OverrideExistingCommands = override }
}

// WithForceSuggestion implements FORCE_SUGGESTION: Suggest returns
// a single empty Suggestion instead of none when no candidate matches.
func WithForceSuggestion(force bool) Option {
	return func(m *Manager) { m.suggester.ForceSuggestion = force }
}

// WithLiberalFlagParsing implements LIBERAL_FLAG_PARSING: flag
// tokens are absorbed out of order as soon as a command's literal
// prefix is matched.
func WithLiberalFlagParsing(liberal bool) Option {
	return func(m *Manager) { m.engine.LiberalFlagParsing = liberal }
}

// WithCoordinator installs the scheduling contract Execute uses
// for dispatch and handler invocation. Defaults to exec.Simple.
func WithCoordinator(c exec.Coordinator) Option {
	return func(m *Manager) { m.engine.Coordinator = c }
}

// WithPermissionChecker installs the PermissionChecker both the
// execution and suggestion engines gate nodes and flags against.
func WithPermissionChecker(check func(sender any, permission string) bool) Option {
	return func(m *Manager) {
		m.permission = check
		m.engine.Permission = exec.PermissionChecker(check)
		m.suggester.Permission = suggest.PermissionChecker(check)
	}
}

// WithPreprocessor appends a Preprocessor run before dispatch begins,
// installed on both the execution and suggestion engines so a
// rejection (e.g. a muted sender) short-circuits both.
func WithPreprocessor(pp exec.Preprocessor, sp suggest.Preprocessor) Option {
	return func(m *Manager) {
		m.engine.Preprocessors = append(m.engine.Preprocessors, pp)
		if sp != nil {
			m.suggester.Preprocessors = append(m.suggester.Preprocessors, sp)
		}
	}
}

// WithPostprocessor appends a Postprocessor run after the tree has
// matched a node but before its handler runs.
func WithPostprocessor(pp exec.Postprocessor) Option {
	return func(m *Manager) {
		m.engine.Postprocessors = append(m.engine.Postprocessors, pp)
	}
}

// WithExceptionHandler registers a handler consulted for failures of
// the given Kind before Execute returns them to the caller.
func WithExceptionHandler(kind cerr.Kind, h exec.ExceptionHandler) Option {
	return func(m *Manager) { m.engine.ExceptionHandlers[kind] = h }
}

// WithCaptionProvider appends a caption.Provider to the registry used
// to render a failure's caption key into a message.
func WithCaptionProvider(p caption.Provider) Option {
	return func(m *Manager) { m.captions.Add(p) }
}

// WithSuggestionFilter installs the filter Suggest narrows raw
// candidates through. Defaults to suggestion.DefaultFilter.
func WithSuggestionFilter(f suggestion.Filter) Option {
	return func(m *Manager) { m.suggester.Filter = f }
}

// WithRegistrationSink appends a sink notified on each Register call,
// before the builder is spliced, so a rejection leaves the tree
// unchanged.
func WithRegistrationSink(s RegistrationSink) Option {
	return func(m *Manager) { m.sinks = append(m.sinks, s) }
}

// Register splices b into the command tree. The tree must
// be in the Registering state. Registration sinks are consulted first;
// a sink rejection fails the call without touching the tree.
func (m *Manager) Register(b *tree.Builder) (*tree.Node, error) {
	for _, s := range m.sinks {
		if err := s.OnRegister(b.Name(), b); err != nil {
			return nil, cerr.Wrap(cerr.DuplicateCommand, "registration rejected by sink", err)
		}
	}
	return m.tree.Register(b)
}

// SetState transitions the tree's lifecycle state.
func (m *Manager) SetState(s tree.State) {
	m.tree.SetState(s)
}

// State returns the tree's current lifecycle state.
func (m *Manager) State() tree.State {
	return m.tree.State()
}

// Execute runs the full dispatch pipeline for one input line.
func (m *Manager) Execute(ctx context.Context, sender any, line string) (*exec.Outcome, *cerr.Error) {
	return m.engine.Execute(ctx, sender, line, nil)
}

// Suggest computes the candidate completion list for line as typed so
// far by sender. It never mutates the tree, the Manager, or any
// caption provider.
func (m *Manager) Suggest(sender any, line string) []suggestion.Suggestion {
	return m.suggester.Suggest(sender, line)
}

// Render resolves err's caption key (if any) against the installed
// caption providers, substituting err's Vars. ok is false when
// err carries no caption key or no provider recognises it; callers
// should fall back to err.Message in that case.
func (m *Manager) Render(err *cerr.Error, sender any) (string, bool) {
	if err == nil || err.CaptionKey == "" {
		return "", false
	}
	return m.captions.Render(err.CaptionKey, sender, err.Vars)
}
