package level

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/systems"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestDefaultLevel(t *testing.T) {
	lvl, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	g := lvl.Grid()
	if g.Width() != 16 || g.Height() != 16 {
		t.Errorf("grid %dx%d, want 16x16", g.Width(), g.Height())
	}
	if len(lvl.HostileSpawns()) != 7 {
		t.Errorf("got %d hostile spawns, want 7", len(lvl.HostileSpawns()))
	}
	if got := lvl.HostileSpawns()[3].Kind; got != components.HostileTrooper {
		t.Errorf("spawn 3 kind = %v, want trooper", got)
	}
	if len(lvl.PickupSpawns()) != 5 {
		t.Errorf("got %d pickup spawns, want 5", len(lvl.PickupSpawns()))
	}
	f := lvl.Player.Facing()
	if math.Abs(f.X) > 1e-6 || math.Abs(f.Y+1) > 1e-6 {
		t.Errorf("player facing = %v, want (0,-1)", f)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "empty grid",
			doc:  "player: {x: 1.5, y: 1.5}",
			want: systems.ErrEmptyGrid,
		},
		{
			name: "ragged grid",
			doc:  "grid: ['###', '#.', '###']\nplayer: {x: 1.5, y: 1.5}",
			want: systems.ErrRaggedGrid,
		},
		{
			name: "player in wall",
			doc:  "grid: ['###', '#.#', '###']\nplayer: {x: 0.5, y: 0.5}",
			want: ErrSpawnInWall,
		},
		{
			name: "hostile in wall",
			doc:  "grid: ['####', '#..#', '####']\nplayer: {x: 1.5, y: 1.5}\nhostiles: [{kind: imp, x: 3.5, y: 1.5}]",
			want: ErrSpawnInWall,
		},
		{
			name: "unknown hostile",
			doc:  "grid: ['####', '#..#', '####']\nplayer: {x: 1.5, y: 1.5}\nhostiles: [{kind: baron, x: 2.5, y: 1.5}]",
			want: ErrUnknownKind,
		},
		{
			name: "unknown pickup",
			doc:  "grid: ['####', '#..#', '####']\nplayer: {x: 1.5, y: 1.5}\npickups: [{kind: key, x: 2.5, y: 1.5}]",
			want: ErrUnknownKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestWriteAndLoad(t *testing.T) {
	lvl, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "level.yaml")
	if err := lvl.WriteYAML(path); err != nil {
		t.Fatal(err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if back.String() != lvl.String() {
		t.Errorf("grid changed on reload:\n%s\nwant\n%s", back, lvl)
	}
	if len(back.HostileSpawns()) != len(lvl.HostileSpawns()) {
		t.Errorf("hostile count %d, want %d", len(back.HostileSpawns()), len(lvl.HostileSpawns()))
	}
}

func defaultArena(t *testing.T) config.ArenaConfig {
	t.Helper()
	cfg, err := config.Parse(nil)
	if err != nil {
		t.Fatal(err)
	}
	return cfg.Arena
}

func TestGenerate(t *testing.T) {
	arena := defaultArena(t)

	for _, seed := range []int64{1, 7, 42, 1234} {
		lvl, err := Generate(arena, seed)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		g := lvl.Grid()
		if g.Width() != arena.Width || g.Height() != arena.Height {
			t.Fatalf("seed %d: grid %dx%d", seed, g.Width(), g.Height())
		}

		for x := 0; x < g.Width(); x++ {
			if !g.CellSolid(x, 0) || !g.CellSolid(x, g.Height()-1) {
				t.Errorf("seed %d: border open at column %d", seed, x)
			}
		}
		for y := 0; y < g.Height(); y++ {
			if !g.CellSolid(0, y) || !g.CellSolid(g.Width()-1, y) {
				t.Errorf("seed %d: border open at row %d", seed, y)
			}
		}

		start := lvl.Player.Pos()
		for _, s := range lvl.HostileSpawns() {
			if d := r2.Sub(s.Pos, start); math.Hypot(d.X, d.Y) < arena.ClearRadius {
				t.Errorf("seed %d: %v spawned %.2f from the start", seed, s.Kind, math.Hypot(d.X, d.Y))
			}
		}

		wantHostiles := 0
		for _, n := range arena.Hostiles {
			wantHostiles += n
		}
		if len(lvl.HostileSpawns()) != wantHostiles {
			t.Errorf("seed %d: %d hostiles, want %d", seed, len(lvl.HostileSpawns()), wantHostiles)
		}
	}
}

func TestGenerateDeterministic(t *testing.T) {
	arena := defaultArena(t)
	a, err := Generate(arena, 99)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Generate(arena, 99)
	if err != nil {
		t.Fatal(err)
	}
	if a.String() != b.String() {
		t.Error("same seed produced different grids")
	}
	for i := range a.Hostiles {
		if a.Hostiles[i] != b.Hostiles[i] {
			t.Errorf("hostile %d differs: %+v vs %+v", i, a.Hostiles[i], b.Hostiles[i])
		}
	}
}

func TestGenerateUnknownKind(t *testing.T) {
	arena := defaultArena(t)
	arena.Hostiles = map[string]int{"baron": 1}
	if _, err := Generate(arena, 1); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("Generate() error = %v, want ErrUnknownKind", err)
	}
}

func TestGenerateNoSpace(t *testing.T) {
	arena := config.ArenaConfig{Width: 5, Height: 5, ClearRadius: 10, Hostiles: map[string]int{"imp": 1}}
	if _, err := Generate(arena, 1); !errors.Is(err, ErrNoSpace) {
		t.Errorf("Generate() error = %v, want ErrNoSpace", err)
	}
}
