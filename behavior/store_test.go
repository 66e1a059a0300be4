package behavior

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore()

	assert.True(t, s.Bool(Global, EnableReserve))
	assert.False(t, s.Bool(Global, AllowNonPrimaryReserve))
	assert.Equal(t, 10.0, s.Float(Global, ReserveBasePercentage))
	assert.Equal(t, 2, s.Int(Global, CautionThreshold))
	assert.Equal(t, 0, s.Int(Global, "int_never_set"))
}

func TestStoreUnitScopeOverridesGlobal(t *testing.T) {
	s := NewStore()
	s.Set(7, EnableReserve, false)

	assert.False(t, s.Bool(7, EnableReserve))
	assert.True(t, s.Bool(8, EnableReserve), "other units fall back to global")

	s.ClearUnit(7)
	assert.True(t, s.Bool(7, EnableReserve))
}

func TestStoreNumericCoercion(t *testing.T) {
	s := NewStore()
	s.SetGlobal("float_from_int", 4)
	s.SetGlobal("int_from_float", 3.9)
	s.Set(Global, "bool_wrong_type", "yes")

	assert.Equal(t, 4.0, s.Float(1, "float_from_int"))
	assert.Equal(t, 3, s.Int(1, "int_from_float"))
	assert.False(t, s.Bool(1, "bool_wrong_type"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "behavior.yaml")
	doc := `
global:
  float_reserve_base_percentage: 25
  bool_allow_non_primary_reserve: true
units:
  12:
    bool_enable_reserve: false
    float_overkill_factor: 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, s.Float(Global, ReserveBasePercentage))
	assert.True(t, s.Bool(3, AllowNonPrimaryReserve))
	assert.False(t, s.Bool(12, EnableReserve))
	assert.Equal(t, 0.5, s.Float(12, OverkillFactor))
	assert.Equal(t, 1.0, s.Float(3, OverkillFactor), "defaults survive for unlisted keys")
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("global: [unclosed"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}
