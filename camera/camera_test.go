package camera

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"
)

func TestNewNormalizesDirection(t *testing.T) {
	cam := New(r2.Vec{X: 2, Y: 2}, r2.Vec{X: 0, Y: -3}, DefaultFOV)

	if math.Abs(r2.Norm(cam.Dir)-1) > 1e-9 {
		t.Errorf("expected unit direction, got %v", cam.Dir)
	}
	if math.Abs(r2.Dot(cam.Dir, cam.Plane)) > 1e-9 {
		t.Errorf("plane %v not perpendicular to dir %v", cam.Plane, cam.Dir)
	}
	want := math.Tan(DefaultFOV / 2)
	if math.Abs(r2.Norm(cam.Plane)-want) > 1e-9 {
		t.Errorf("expected plane length %f, got %f", want, r2.Norm(cam.Plane))
	}
}

func TestPlanePointsRight(t *testing.T) {
	// Facing north (row index decreasing), the right hand side is +X.
	cam := New(r2.Vec{}, r2.Vec{X: 0, Y: -1}, DefaultFOV)
	if cam.Plane.X <= 0 || math.Abs(cam.Plane.Y) > 1e-9 {
		t.Errorf("expected plane along +X, got %v", cam.Plane)
	}
}

func TestZeroDirectionFallsBack(t *testing.T) {
	cam := New(r2.Vec{}, r2.Vec{}, 0)
	if cam.Dir != (r2.Vec{X: 1}) {
		t.Errorf("expected +X fallback, got %v", cam.Dir)
	}
	if cam.FOV != DefaultFOV {
		t.Errorf("expected default fov, got %f", cam.FOV)
	}
}

func TestRotate(t *testing.T) {
	cam := New(r2.Vec{}, r2.Vec{X: 1}, DefaultFOV)
	cam.Rotate(math.Pi / 2)

	if math.Abs(cam.Dir.X) > 1e-9 || math.Abs(cam.Dir.Y-1) > 1e-9 {
		t.Errorf("expected dir (0,1) after quarter turn, got %v", cam.Dir)
	}
	if math.Abs(cam.Angle()-math.Pi/2) > 1e-9 {
		t.Errorf("expected angle pi/2, got %f", cam.Angle())
	}
}

func TestColumnX(t *testing.T) {
	tests := []struct {
		col, columns int
		want         float64
	}{
		{0, 1, 0},
		{0, 5, -1},
		{2, 5, 0},
		{4, 5, 1},
		{1, 3, 0},
	}
	for _, tt := range tests {
		if got := ColumnX(tt.col, tt.columns); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("ColumnX(%d, %d) = %f, want %f", tt.col, tt.columns, got, tt.want)
		}
	}
}

func TestWorldToScreen(t *testing.T) {
	cam := New(r2.Vec{X: 1, Y: 1}, r2.Vec{X: 1}, DefaultFOV)
	const w = 640.0

	t.Run("ahead maps to center", func(t *testing.T) {
		sx, depth, ok := cam.WorldToScreen(r2.Vec{X: 4, Y: 1}, w)
		if !ok {
			t.Fatal("expected point ahead to be visible")
		}
		if math.Abs(sx-w/2) > 0.01 || math.Abs(depth-3) > 1e-9 {
			t.Errorf("expected (320, 3), got (%f, %f)", sx, depth)
		}
	})

	t.Run("right of view maps right of center", func(t *testing.T) {
		sx, _, ok := cam.WorldToScreen(r2.Vec{X: 3, Y: 1.5}, w)
		if !ok || sx <= w/2 {
			t.Errorf("expected visible point right of center, got %f (visible=%v)", sx, ok)
		}
	})

	t.Run("behind is not visible", func(t *testing.T) {
		if _, _, ok := cam.WorldToScreen(r2.Vec{X: 0, Y: 1}, w); ok {
			t.Error("expected point behind camera to be hidden")
		}
	})
}
