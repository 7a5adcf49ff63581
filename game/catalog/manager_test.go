package catalog

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wricardo/superslide/game/engine"
)

const levelOneYAML = `number: 1
name: One Slide
par: 1
rows:
  - "...."
  - "...."
  - "...."
  - "BB.."
  - "BB.."
`

const levelTwoJSON = `{
  "number": 2,
  "name": "Colors",
  "cells": [
    "yellow", "", "", "yellow",
    "blue", "red", "red", "blue",
    "blue", "red", "red", "blue",
    "", "green", "green", "",
    "yellow", "", "", "yellow"
  ]
}`

func TestBuiltInCatalog(t *testing.T) {
	m := Default()
	require.Equal(t, 11, m.Count())

	levels, err := m.ListLevels()
	require.NoError(t, err)
	require.Len(t, levels, 11)
	for i, info := range levels {
		assert.Equal(t, i+1, info.Number)
		assert.NotEmpty(t, info.Name)
		assert.Positive(t, info.Par)
		assert.Len(t, info.Rows, engine.Rows)
		assert.Len(t, info.Layout, engine.CellCount)
	}

	first, err := m.Level(1)
	require.NoError(t, err)
	assert.Equal(t, "Warm Up", first.Name)
	assert.Equal(t, []string{"UU..", "UUUU", "UUUU", "BBVU", "BBVU"}, first.Layout().Rows())
}

func TestBuiltInLevelsMatchPar(t *testing.T) {
	if testing.Short() {
		t.Skip("solves every level")
	}

	m := Default()
	for n := 1; n <= m.Count(); n++ {
		level, err := m.Level(n)
		require.NoError(t, err)

		solution, err := engine.Solve(level.Layout(), 0)
		require.NoError(t, err, "level %d", n)
		assert.Equal(t, level.Par, solution.Moves(), "level %d (%s)", n, level.Name)
	}
}

func TestLevelNotFound(t *testing.T) {
	m := Default()
	for _, n := range []int{0, -1, m.Count() + 1} {
		_, err := m.Layout(n)
		assert.ErrorIs(t, err, ErrLevelNotFound, "level %d", n)
	}
}

func TestLayoutIsACopy(t *testing.T) {
	m := Default()
	layout, err := m.Layout(1)
	require.NoError(t, err)
	layout[0] = engine.Red

	again, err := m.Layout(1)
	require.NoError(t, err)
	assert.Equal(t, engine.Yellow, again[0])
}

func TestNewManagerFS(t *testing.T) {
	fsys := fstest.MapFS{
		"levels/01.yaml":    {Data: []byte(levelOneYAML)},
		"levels/02.json":    {Data: []byte(levelTwoJSON)},
		"levels/README.md":  {Data: []byte("not a level")},
		"levels/extra/x.go": {Data: []byte("package x")},
	}

	m, err := NewManagerFS(fsys, "levels")
	require.NoError(t, err)
	require.Equal(t, 2, m.Count())

	two, err := m.Level(2)
	require.NoError(t, err)
	assert.Equal(t, "Colors", two.Name)
	assert.Equal(t, 0, two.Par)
	assert.Equal(t, []string{"U..U", "VBBV", "VBBV", ".HH.", "U..U"}, two.Layout().Rows())

	info := Info(two)
	assert.Equal(t, 8, info.Pieces)
}

func TestNewManagerFSErrors(t *testing.T) {
	twoBlocks := `number: 1
rows: ["BB..", "BB..", "..BB", "..BB", "...."]
`
	gap := `number: 3
rows: ["....", "....", "....", "BB..", "BB.."]
`
	noLayout := `number: 1
name: Empty
`

	tests := []struct {
		name    string
		files   fstest.MapFS
		wantErr error
	}{
		{"no levels", fstest.MapFS{"levels/notes.txt": {Data: []byte("hi")}}, ErrEmptyCatalog},
		{"two blocks", fstest.MapFS{"levels/01.yaml": {Data: []byte(twoBlocks)}}, ErrInvalidLevel},
		{"numbering gap", fstest.MapFS{
			"levels/01.yaml": {Data: []byte(levelOneYAML)},
			"levels/03.yaml": {Data: []byte(gap)},
		}, ErrInvalidLevel},
		{"no layout", fstest.MapFS{"levels/01.yaml": {Data: []byte(noLayout)}}, ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewManagerFS(tt.files, "levels")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, err := NewManagerFS(fstest.MapFS{"levels/01.yaml": {Data: []byte("number: [")}}, "levels")
	assert.Error(t, err)
}

func TestNewManagerDirAndRefresh(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "01.yaml"), []byte(levelOneYAML), 0644))

	m, err := NewManager(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, m.Count())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "02.json"), []byte(levelTwoJSON), 0644))
	assert.Equal(t, 1, m.Count(), "cached until refreshed")

	require.NoError(t, m.RefreshCache())
	assert.Equal(t, 2, m.Count())

	_, err = NewManager(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
