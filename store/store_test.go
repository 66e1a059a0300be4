package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nstehr/vimy/tactics-core/model"
)

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sides.db")
	s, err := Open(path)
	require.NoError(t, err)

	side := model.NewSide("ai")
	side.IsComplete = false
	side.LastActivatedRound = 4
	side.InspirationWindow = 15
	side.InspirationTargetDamage = 85
	require.NoError(t, s.Save(side))

	side.LastActivatedRound = 5
	require.NoError(t, s.Save(side), "save is an upsert")
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got := model.NewSide("ai")
	ok, err := s.Load(got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, got.IsComplete)
	assert.Equal(t, 5, got.LastActivatedRound)
	assert.Equal(t, 15.0, got.InspirationWindow)
	assert.Equal(t, 85.0, got.InspirationTargetDamage)
	assert.NotNil(t, got.ECMProtected, "transient state untouched")
}

func TestLoadMissing(t *testing.T) {
	s, err := Open("")
	require.NoError(t, err)
	defer s.Close()

	side := model.NewSide("nobody")
	ok, err := s.Load(side)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, -1, side.LastActivatedRound)
}
