package util

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomToken(t *testing.T) {
	a, err := RandomToken(16)
	require.NoError(t, err)
	b, err := RandomToken(16)
	require.NoError(t, err)

	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestOptionalJSON(t *testing.T) {
	type payload struct {
		Name Optional[string] `json:"name"`
	}

	out, err := json.Marshal(payload{Name: Some("alice")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"alice"}`, string(out))

	out, err = json.Marshal(payload{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":null}`, string(out))

	var in payload
	require.NoError(t, json.Unmarshal([]byte(`{"name":null}`), &in))
	assert.False(t, in.Name.IsSet)

	require.NoError(t, json.Unmarshal([]byte(`{"name":"bob"}`), &in))
	assert.Equal(t, Some("bob"), in.Name)
}

func TestOptionalSQL(t *testing.T) {
	var o Optional[string]
	require.NoError(t, o.Scan(nil))
	assert.False(t, o.IsSet)

	require.NoError(t, o.Scan("hello"))
	assert.Equal(t, Some("hello"), o)

	v, err := o.Value()
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = None[string]().Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
