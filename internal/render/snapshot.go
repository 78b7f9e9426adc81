package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elbionredenica/simchess/internal/archive"
)

// WriteFile renders fen and writes it to path, creating parent directories.
func WriteFile(ctx context.Context, path, fen string, opts Options) error {
	data, err := RenderPNG(ctx, fen, opts)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// SnapshotArchiver writes the final position of every finished game to Dir.
type SnapshotArchiver struct {
	Dir string
}

func (s SnapshotArchiver) Archive(ctx context.Context, g archive.Game) error {
	if strings.TrimSpace(s.Dir) == "" || strings.TrimSpace(g.FinalFEN) == "" {
		return nil
	}
	opts := Options{
		Orientation: g.Color,
		Header:      fmt.Sprintf("Game %s | %s", g.GameID, g.PGNResult()),
		Footer:      fmt.Sprintf("white %ds  black %ds  turns %d", g.Clocks.White, g.Clocks.Black, g.Turns),
	}
	return WriteFile(ctx, SnapshotPath(s.Dir, g.GameID), g.FinalFEN, opts)
}

// SnapshotPath is where SnapshotArchiver puts a game's image.
func SnapshotPath(dir, gameID string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, gameID)
	if name == "" {
		name = "game"
	}
	return filepath.Join(dir, name+".png")
}
