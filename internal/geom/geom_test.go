package geom

import "testing"

func TestParseShapeAndOverlaps(t *testing.T) {
	a := ParseShape([]string{"##", ".#"})
	if a.Side != 2 {
		t.Fatalf("side = %d, want 2", a.Side)
	}
	if !a.Cells[0][0] || !a.Cells[0][1] || a.Cells[1][0] || !a.Cells[1][1] {
		t.Fatalf("unexpected cell mask: %+v", a.Cells)
	}

	b := ParseShape([]string{"#"})
	if !a.Overlaps(0, 0, b, 0, 0) {
		t.Fatal("expected overlap at shared origin cell")
	}
	if a.Overlaps(0, 0, b, 0, 1) {
		t.Fatal("expected no overlap: (0,1) is unoccupied in a")
	}
	if !a.Overlaps(0, 0, b, 1, 1) {
		t.Fatal("expected overlap at (1,1)")
	}
}

func TestOverlapsSymmetric(t *testing.T) {
	a := ParseShape([]string{"##", "##"})
	b := ParseShape([]string{"#"})
	if a.Overlaps(0, 0, b, 5, 5) != b.Overlaps(5, 5, a, 0, 0) {
		t.Fatal("Overlaps should be symmetric in its two shapes")
	}
}

func TestCircleSegmentHitMiss(t *testing.T) {
	hit := CircleSegmentHit(Vec2{X: 0, Y: -100}, Vec2{X: 0, Y: -50}, Vec2{X: 0, Y: 0}, 10)
	if hit.Hit {
		t.Fatalf("expected a miss, got hit at t=%v", hit.T)
	}
}

func TestCircleSegmentHitThrough(t *testing.T) {
	hit := CircleSegmentHit(Vec2{X: -100, Y: 0}, Vec2{X: 100, Y: 0}, Vec2{X: 0, Y: 0}, 10)
	if !hit.Hit {
		t.Fatal("expected a hit")
	}
	// segment enters the circle at x=-10, i.e. t=(-10-(-100))/200=0.45
	want := 0.45
	if diff := hit.T - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("t = %v, want %v", hit.T, want)
	}
}

func TestCircleSegmentHitFullyInside(t *testing.T) {
	hit := CircleSegmentHit(Vec2{X: -1, Y: 0}, Vec2{X: 1, Y: 0}, Vec2{X: 0, Y: 0}, 100)
	if !hit.Hit || hit.T != 0 {
		t.Fatalf("expected hit at t=0 for a segment fully inside the circle, got %+v", hit)
	}
}

func TestCircleSegmentHitTangent(t *testing.T) {
	hit := CircleSegmentHit(Vec2{X: -100, Y: 10}, Vec2{X: 100, Y: 10}, Vec2{X: 0, Y: 0}, 10)
	if !hit.Hit {
		t.Fatal("expected a tangent hit")
	}
	if diff := hit.T - 0.5; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("t = %v, want 0.5 at the tangent point", hit.T)
	}
}

func TestBeamHitsNearestFirst(t *testing.T) {
	shape := ParseShape([]string{"#", "#"}) // two stacked occupied cells
	start := Vec2{X: -1000, Y: 24}
	end := Vec2{X: 1000, Y: 24}
	origin := Vec2{X: 0, Y: 0}

	var seenT []float64
	best, found := BeamHits(start, end, shape, origin, func(_ Vec2, tVal float64) {
		seenT = append(seenT, tVal)
	})
	if !found {
		t.Fatal("expected at least one hit")
	}
	if len(seenT) == 0 {
		t.Fatal("expected the callback to fire")
	}
	for _, tVal := range seenT {
		if best.T > tVal {
			t.Fatalf("BeamHits did not return the nearest hit: best=%v saw=%v", best.T, tVal)
		}
	}
}

func TestBeamHitsNoOccupiedCells(t *testing.T) {
	shape := ParseShape([]string{"."})
	_, found := BeamHits(Vec2{X: -10, Y: 0}, Vec2{X: 10, Y: 0}, shape, Vec2{}, nil)
	if found {
		t.Fatal("expected no hit against an empty shape")
	}
}

func TestBeamTickRange(t *testing.T) {
	if got := BeamTick(0); got != 20 {
		t.Fatalf("BeamTick(0) = %d, want 20", got)
	}
	if got := BeamTick(1); got != 60 {
		t.Fatalf("BeamTick(1) = %d, want 60", got)
	}
	if got := BeamTick(0.5); got != 40 {
		t.Fatalf("BeamTick(0.5) = %d, want 40", got)
	}
}
