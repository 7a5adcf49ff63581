package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/wricardo/superslide/game/catalog"
)

func levelFile(number, par int, rows ...string) []byte {
	var b strings.Builder
	b.WriteString("number: ")
	b.WriteString(string(rune('0' + number)))
	b.WriteString("\nname: Test\n")
	if par > 0 {
		b.WriteString("par: ")
		b.WriteString(string(rune('0' + par)))
		b.WriteString("\n")
	}
	b.WriteString("rows:\n")
	for _, r := range rows {
		b.WriteString("  - \"" + r + "\"\n")
	}
	return []byte(b.String())
}

func loadLevel(t *testing.T, data []byte) *catalog.Level {
	t.Helper()
	fsys := fstest.MapFS{"levels/01.yaml": &fstest.MapFile{Data: data}}
	manager, err := catalog.NewManagerFS(fsys, "levels")
	if err != nil {
		t.Fatalf("Failed to load level: %v", err)
	}
	level, err := manager.Level(1)
	if err != nil {
		t.Fatalf("Failed to get level: %v", err)
	}
	return level
}

func TestCheckLevel(t *testing.T) {
	tests := []struct {
		name      string
		data      []byte
		limit     int
		wantValid bool
		wantMoves int
		wantError string
	}{
		{
			name:      "matches par",
			data:      levelFile(1, 1, "....", "....", "....", "BB..", "BB.."),
			wantValid: true,
			wantMoves: 1,
		},
		{
			name:      "no par declared",
			data:      levelFile(1, 0, "BB..", "BB..", "....", "....", "...."),
			wantValid: true,
			wantMoves: 3,
		},
		{
			name:      "par mismatch",
			data:      levelFile(1, 2, "....", "....", "....", "BB..", "BB.."),
			wantValid: false,
			wantMoves: 1,
			wantError: "par is 2 but the shortest solution takes 1",
		},
		{
			name:      "unsolvable",
			data:      levelFile(1, 0, "VUUV", "VUUV", "UUUU", "BBUU", "BBUU"),
			wantValid: false,
			wantMoves: -1,
			wantError: "no sequence of slides reaches the exit",
		},
		{
			name:      "search limit",
			data:      levelFile(1, 0, "BB..", "BB..", "....", "....", "...."),
			limit:     2,
			wantValid: false,
			wantMoves: -1,
			wantError: "search gave up after 2 positions",
		},
		{
			name:      "already won",
			data:      levelFile(1, 0, "....", "....", "....", ".BB.", ".BB."),
			wantValid: false,
			wantMoves: 0,
			wantError: "block already sits on the exit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := checkLevel(loadLevel(t, tt.data), tt.limit)

			if report.Valid != tt.wantValid {
				t.Errorf("Expected valid=%v, got %v (errors: %v)", tt.wantValid, report.Valid, report.Errors)
			}
			if report.Moves != tt.wantMoves {
				t.Errorf("Expected %d moves, got %d", tt.wantMoves, report.Moves)
			}
			if tt.wantError != "" {
				found := false
				for _, e := range report.Errors {
					if e == tt.wantError {
						found = true
					}
				}
				if !found {
					t.Errorf("Expected error %q, got %v", tt.wantError, report.Errors)
				}
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	reports := []LevelReport{
		{Number: 1, Name: "Easy", Par: 1, Moves: 1, Visited: 4, Valid: true},
		{Number: 2, Name: "Broken", Moves: -1, Errors: []string{"no sequence of slides reaches the exit"}},
	}

	var buf bytes.Buffer
	if printReport(&buf, reports, false) {
		t.Error("Expected report with an invalid level to fail")
	}

	out := buf.String()
	for _, want := range []string{
		"1. Easy",
		"✅ VALID",
		"Moves: 1 (par 1, 4 positions searched)",
		"2. Broken",
		"❌ INVALID",
		"  ❌ no sequence of slides reaches the exit",
		"❌ Some levels have errors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Moves: -1") {
		t.Error("Unsolved level should not print a move count")
	}
}

func TestPrintReport_Verbose(t *testing.T) {
	report := checkLevel(loadLevel(t, levelFile(1, 1, "....", "....", "....", "BB..", "BB..")), 0)

	var buf bytes.Buffer
	if !printReport(&buf, []LevelReport{report}, true) {
		t.Fatalf("Expected valid report, got errors %v", report.Errors)
	}

	out := buf.String()
	if !strings.Contains(out, " 1. piece 1 right 1") {
		t.Errorf("Expected the solution step, got:\n%s", out)
	}
	if !strings.Contains(out, "✅ All 1 levels are solvable at par!") {
		t.Errorf("Expected success summary, got:\n%s", out)
	}
}

func TestCommand_LevelsDir(t *testing.T) {
	dir := t.TempDir()
	files := map[string][]byte{
		"01.yaml": levelFile(1, 1, "....", "....", "....", "BB..", "BB.."),
		"02.yaml": levelFile(2, 3, "BB..", "BB..", "....", "....", "...."),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatalf("Failed to write level: %v", err)
		}
	}

	var buf bytes.Buffer
	err := newCommand(&buf).Run(context.Background(), []string{"levelcheck", "--levels-dir", dir})
	if err != nil {
		t.Fatalf("Command failed: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "✅ All 2 levels are solvable at par!") {
		t.Errorf("Unexpected output:\n%s", buf.String())
	}
}

func TestCommand_BuiltInCatalog(t *testing.T) {
	if testing.Short() {
		t.Skip("solves every built-in level")
	}

	var buf bytes.Buffer
	if err := newCommand(&buf).Run(context.Background(), []string{"levelcheck"}); err != nil {
		t.Fatalf("Built-in catalog failed the check: %v\n%s", err, buf.String())
	}
	if !strings.Contains(buf.String(), "11. Long Way Down") {
		t.Errorf("Expected the last built-in level in the report:\n%s", buf.String())
	}
}
