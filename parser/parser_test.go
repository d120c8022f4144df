package parser

import (
	"strconv"
	"testing"

	"github.com/cloudcmd/cloud/cerr"
	"github.com/cloudcmd/cloud/cmdcontext"
	"github.com/cloudcmd/cloud/cursor"
	"github.com/cloudcmd/cloud/vtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntegerParserRange(t *testing.T) {
	ctx := cmdcontext.New("sender", "4")
	cur := cursor.New("4")
	p := NewIntegerParser(cursor.Range[int]{Min: 0, Max: 10, HasMin: true, HasMax: true})
	v, err := p.Parse(ctx, cur)
	require.Nil(t, err)
	assert.Equal(t, 4, v)

	cur2 := cursor.New("99")
	_, err = p.Parse(ctx, cur2)
	require.NotNil(t, err)
	assert.Equal(t, cerr.ArgumentParse, err.Kind)
}

func TestMapPreservesAdvanceOnSuccess(t *testing.T) {
	ctx := cmdcontext.New("sender", "")
	cur := cursor.New("4")

	doubled := Map(NewIntegerParser(Unbounded[int]()), vtype.Of[int](), func(n int) (int, *cerr.Error) {
		return n * 2, nil
	})
	v, err := doubled.Parse(ctx, cur)
	require.Nil(t, err)
	assert.Equal(t, 8, v)
	assert.True(t, cur.IsEmpty(true))
}

func TestMapNeverConsumesOnFailure(t *testing.T) {
	ctx := cmdcontext.New("sender", "")
	cur := cursor.New("notanumber")
	save := cur.Save()

	doubled := Map(NewIntegerParser(Unbounded[int]()), vtype.Of[int](), func(n int) (int, *cerr.Error) {
		return n * 2, nil
	})
	_, err := doubled.Parse(ctx, cur)
	require.NotNil(t, err)
	assert.Equal(t, save, cur.Save())
}

func TestMapTransformFailureDoesNotConsume(t *testing.T) {
	ctx := cmdcontext.New("sender", "")
	cur := cursor.New("4 rest")
	save := cur.Save()

	alwaysFails := Map(NewIntegerParser(Unbounded[int]()), vtype.Of[int](), func(n int) (int, *cerr.Error) {
		return 0, cerr.New(cerr.ArgumentParse, "transform rejected")
	})
	_, err := alwaysFails.Parse(ctx, cur)
	require.NotNil(t, err)
	assert.Equal(t, save, cur.Save())
}

func TestEitherTriesFallbackAgainstPreCursor(t *testing.T) {
	ctx := cmdcontext.New("sender", "")
	cur := cursor.New("hello")

	combined := Either[any](
		asAny(NewIntegerParser(Unbounded[int]())),
		asAny(NewStringParser(WordMode)),
	)
	v, err := combined.Parse(ctx, cur)
	require.Nil(t, err)
	assert.Equal(t, "hello", v)
}

func TestEitherBothFailReturnsCompound(t *testing.T) {
	ctx := cmdcontext.New("sender", "")
	cur := cursor.New("")

	combined := Either[any](
		asAny(NewIntegerParser(Unbounded[int]())),
		asAny(NewBooleanParser(false)),
	)
	_, err := combined.Parse(ctx, cur)
	require.NotNil(t, err)
	var compound *cerr.Compound
	require.ErrorAs(t, err, &compound)
	assert.Equal(t, "int", compound.PrimaryType)
}

// asAny adapts a concrete Typed[T] into Typed[any] for combinator tests
// that need a common result type.
type anyAdapter[T any] struct{ inner Typed[T] }

func asAny[T any](p Typed[T]) Typed[any] { return anyAdapter[T]{inner: p} }

func (a anyAdapter[T]) ValueType() vtype.Type { return a.inner.ValueType() }

func (a anyAdapter[T]) Parse(ctx *cmdcontext.Context, cur *cursor.Cursor) (any, *cerr.Error) {
	return a.inner.Parse(ctx, cur)
}

func TestRegistryDefaultResolvesBuiltins(t *testing.T) {
	r := NewDefault()
	p, ok := r.Resolve(vtype.Of[int]())
	require.True(t, ok)
	assert.Equal(t, vtype.Of[int](), p.ValueType())
}

func TestRegistryRejectsDuplicateRegistration(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(vtype.Of[int](), func() Parser { return Erase(NewIntegerParser(Unbounded[int]())) }))
	err := r.Register(vtype.Of[int](), func() Parser { return Erase(NewIntegerParser(Unbounded[int]())) })
	require.Error(t, err)
}

func TestNumericSuggestionDigitExtensions(t *testing.T) {
	p := NewIntegerParser(cursor.Range[int]{Min: 0, Max: 99, HasMin: true, HasMax: true})
	got := p.Suggest(nil, nil, "4")
	var texts []string
	for _, s := range got {
		texts = append(texts, s.Text)
	}
	assert.Contains(t, texts, "4")
	assert.Contains(t, texts, "40")
	assert.Contains(t, texts, "49")
	assert.NotContains(t, texts, strconv.Itoa(400))
}
