package datapost

import (
	"testing"

	"datapost/internal/codec"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{"csv", "json", "txt", "yaml", "yml"}, r.Types())

	k, err := r.Lookup("JSON")
	require.NoError(t, err)
	assert.Equal(t, "json", k.Type)
	assert.IsType(t, codec.JSON{}, k.Codec)
	assert.NotNil(t, k.New)
}

func TestRegistry_Lookup_Unknown(t *testing.T) {
	_, err := NewRegistry().Lookup("json")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Register("Conf", codec.YAML{}, nil))

	k, err := r.Lookup("conf")
	require.NoError(t, err)
	assert.Equal(t, "conf", k.Type)
	assert.NotNil(t, k.New, "nil factory defaults to FileDocument")

	assert.ErrorIs(t, r.Register("CONF", codec.JSON{}, nil), ErrTypeRegistered)
	assert.Error(t, r.Register("", codec.JSON{}, nil))
	assert.Error(t, r.Register("bin", nil, nil))
}
