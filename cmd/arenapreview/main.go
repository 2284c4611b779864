// Arena generator preview tool - interactive level.Generate with sliders.
//
// Usage: go run ./cmd/arenapreview [-config path] [-out arena.yaml]
package main

import (
	"flag"
	"fmt"
	"log"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/gridfire/components"
	"github.com/pthm-cable/gridfire/config"
	"github.com/pthm-cable/gridfire/level"
)

const (
	windowWidth  = 1000
	windowHeight = 720
	previewSize  = 600
	panelWidth   = windowWidth - previewSize - 30
)

var (
	floorColor  = rl.Color{R: 40, G: 40, B: 44, A: 255}
	borderColor = rl.Color{R: 110, G: 110, B: 120, A: 255}
	pillarTwo   = rl.Color{R: 140, G: 90, B: 60, A: 255}
	pillarThree = rl.Color{R: 70, G: 110, B: 140, A: 255}
)

func main() {
	configPath := flag.String("config", "", "Config YAML whose arena section seeds the sliders")
	outPath := flag.String("out", "arena.yaml", "Where Save writes the generated level")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	defaults := cfg.Arena
	arena := defaults
	var seed int64 = 12345

	rl.InitWindow(windowWidth, windowHeight, "Arena Preview")
	defer rl.CloseWindow()
	rl.SetTargetFPS(30)

	var lvl *level.Level
	var genErr error
	status := ""
	needsRegen := true

	for !rl.WindowShouldClose() {
		if needsRegen {
			lvl, genErr = level.Generate(arena, seed)
			needsRegen = false
		}

		rl.BeginDrawing()
		rl.ClearBackground(rl.RayWhite)

		if genErr != nil {
			rl.DrawRectangle(10, 10, previewSize, previewSize, rl.LightGray)
			rl.DrawText(genErr.Error(), 20, previewSize/2, 16, rl.Maroon)
		} else {
			drawLevel(lvl, 10, 10, previewSize)
			statsY := int32(previewSize + 25)
			rl.DrawText(fmt.Sprintf("Open cells: %.0f%%  Hostiles: %d  Pickups: %d",
				openFraction(lvl)*100, len(lvl.HostileSpawns()), len(lvl.PickupSpawns())), 15, statsY, 16, rl.DarkGray)
		}

		panelX := float32(previewSize + 20)
		panelY := float32(10)

		rl.DrawText("Arena Parameters", int32(panelX), int32(panelY), 20, rl.DarkGray)
		panelY += 35

		slider := func(label, minLabel, maxLabel string, value, lo, hi float32, format string) float32 {
			rl.DrawText(label, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 18
			v := gui.SliderBar(
				rl.Rectangle{X: panelX, Y: panelY, Width: float32(panelWidth - 80), Height: 20},
				minLabel, maxLabel,
				value, lo, hi,
			)
			rl.DrawText(fmt.Sprintf(format, value), int32(panelX+float32(panelWidth-70)), int32(panelY+2), 16, rl.DarkGray)
			panelY += 35
			return v
		}

		if w := int(slider("Width (cells)", "12", "48", float32(arena.Width), 12, 48, "%.0f")); w != arena.Width {
			arena.Width = w
			needsRegen = true
		}
		if h := int(slider("Height (cells)", "12", "48", float32(arena.Height), 12, 48, "%.0f")); h != arena.Height {
			arena.Height = h
			needsRegen = true
		}
		if s := slider("Noise scale (pillar frequency)", "0.05", "0.5", float32(arena.NoiseScale), 0.05, 0.5, "%.2f"); s != float32(arena.NoiseScale) {
			arena.NoiseScale = float64(s)
			needsRegen = true
		}
		if th := slider("Pillar threshold (higher = sparser)", "-0.5", "0.9", float32(arena.PillarThreshold), -0.5, 0.9, "%.2f"); th != float32(arena.PillarThreshold) {
			arena.PillarThreshold = float64(th)
			needsRegen = true
		}
		if r := slider("Clear radius around start", "1", "8", float32(arena.ClearRadius), 1, 8, "%.1f"); r != float32(arena.ClearRadius) {
			arena.ClearRadius = float64(r)
			needsRegen = true
		}
		if s := int64(slider("Seed", "0", "99999", float32(seed), 0, 99999, "%.0f")); s != seed {
			seed = s
			needsRegen = true
		}
		panelY += 10

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 120, Height: 30}, "Random Seed") {
			seed = int64(rl.GetRandomValue(0, 99999))
			needsRegen = true
		}
		if gui.Button(rl.Rectangle{X: panelX + 130, Y: panelY, Width: 120, Height: 30}, "Reset All") {
			arena = defaults
			seed = 12345
			needsRegen = true
		}
		panelY += 45

		if gui.Button(rl.Rectangle{X: panelX, Y: panelY, Width: 250, Height: 30}, "Save Level") && genErr == nil {
			if err := lvl.WriteYAML(*outPath); err != nil {
				status = err.Error()
			} else {
				status = "saved " + *outPath
			}
		}
		panelY += 45

		rl.DrawText("YAML Config:", int32(panelX), int32(panelY), 16, rl.DarkGray)
		panelY += 25
		for _, line := range arenaYAML(arena) {
			rl.DrawText(line, int32(panelX), int32(panelY), 14, rl.Gray)
			panelY += 16
		}

		if status != "" {
			rl.DrawText(status, int32(panelX), int32(windowHeight-50), 12, rl.DarkGray)
		}
		rl.DrawText("Press C to copy YAML to clipboard", int32(panelX), int32(windowHeight-30), 12, rl.LightGray)

		if rl.IsKeyPressed(rl.KeyC) {
			text := ""
			for _, line := range arenaYAML(arena) {
				text += line + "\n"
			}
			rl.SetClipboardText(text)
		}

		rl.EndDrawing()
	}
}

func arenaYAML(a config.ArenaConfig) []string {
	return []string{
		"arena:",
		fmt.Sprintf("  width: %d", a.Width),
		fmt.Sprintf("  height: %d", a.Height),
		fmt.Sprintf("  noise_scale: %.2f", a.NoiseScale),
		fmt.Sprintf("  pillar_threshold: %.2f", a.PillarThreshold),
		fmt.Sprintf("  clear_radius: %.1f", a.ClearRadius),
	}
}

// drawLevel fits the level's grid into a size x size square.
func drawLevel(lvl *level.Level, x, y, size int32) {
	grid := lvl.Grid()
	cell := float32(size) / float32(max(grid.Width(), grid.Height()))

	for gy := 0; gy < grid.Height(); gy++ {
		for gx := 0; gx < grid.Width(); gx++ {
			c := floorColor
			switch grid.CellType(gx, gy) {
			case 0:
			case 2:
				c = pillarTwo
			case 3:
				c = pillarThree
			default:
				c = borderColor
			}
			rl.DrawRectangleV(
				rl.Vector2{X: float32(x) + float32(gx)*cell, Y: float32(y) + float32(gy)*cell},
				rl.Vector2{X: cell - 1, Y: cell - 1},
				c,
			)
		}
	}

	toScreen := func(px, py float64) rl.Vector2 {
		return rl.Vector2{X: float32(x) + float32(px)*cell, Y: float32(y) + float32(py)*cell}
	}
	for _, p := range lvl.PickupSpawns() {
		c := rl.Gold
		if p.Kind == components.PickupMedkit {
			c = rl.White
		}
		rl.DrawCircleV(toScreen(p.Pos.X, p.Pos.Y), cell*0.2, c)
	}
	for _, h := range lvl.HostileSpawns() {
		rl.DrawCircleV(toScreen(h.Pos.X, h.Pos.Y), cell*0.3, rl.Red)
	}
	start := lvl.Player
	head := toScreen(start.X+0.6*math.Cos(start.Angle), start.Y+0.6*math.Sin(start.Angle))
	rl.DrawLineEx(toScreen(start.X, start.Y), head, 2, rl.Lime)
	rl.DrawCircleV(toScreen(start.X, start.Y), cell*0.3, rl.Lime)
}

// openFraction is the share of non-solid cells.
func openFraction(lvl *level.Level) float64 {
	grid := lvl.Grid()
	open := 0
	for gy := 0; gy < grid.Height(); gy++ {
		for gx := 0; gx < grid.Width(); gx++ {
			if !grid.CellSolid(gx, gy) {
				open++
			}
		}
	}
	return float64(open) / float64(grid.Width()*grid.Height())
}
