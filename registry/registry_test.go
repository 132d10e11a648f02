package registry

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type englishGreeter struct{}

func (englishGreeter) Greet() string { return "hello" }

func TestResolveNotFound(t *testing.T) {
	r := New()

	_, err := r.Resolve("builtin/missing")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "builtin/missing", nf.Location)
}

func TestResolveInvokesFactoryFreshEachTime(t *testing.T) {
	r := New()

	calls := 0
	r.Register("builtin/greeter", func() (any, error) {
		calls++
		return englishGreeter{}, nil
	})

	_, err := r.Resolve("builtin/greeter")
	require.NoError(t, err)
	_, err = r.Resolve("builtin/greeter")
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestResolveFactoryError(t *testing.T) {
	r := New()
	r.Register("builtin/broken", func() (any, error) {
		return nil, fmt.Errorf("boom")
	})

	_, err := r.Resolve("builtin/broken")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestResolveAs(t *testing.T) {
	r := New()
	r.Register("builtin/greeter", func() (any, error) {
		return englishGreeter{}, nil
	})

	g, err := ResolveAs[greeter](r, "builtin/greeter", "Greet")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())
}

func TestResolveAsContractError(t *testing.T) {
	r := New()
	r.Register("builtin/mute", func() (any, error) {
		return struct{}{}, nil
	})

	_, err := ResolveAs[greeter](r, "builtin/mute", "Greet")

	var ce *ContractError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "builtin/mute", ce.Location)
	assert.Equal(t, "Greet", ce.Want)
}

func TestResolveAsPropagatesNotFound(t *testing.T) {
	r := New()

	_, err := ResolveAs[greeter](r, "builtin/missing", "Greet")

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestRegisterReplaces(t *testing.T) {
	r := New()
	r.Register("builtin/greeter", func() (any, error) { return 1, nil })
	r.Register("builtin/greeter", func() (any, error) { return 2, nil })

	v, err := r.Resolve("builtin/greeter")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Len(t, r.Locations(), 1)
}
