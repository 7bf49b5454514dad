package types

import (
	"testing"
)

func TestLookAt(t *testing.T) {
	eye := XYZ(-1, 1, -1)
	target := XYZ(9, 1, -1)
	up := XYZ(0, 1, 0)

	m, ok := LookAt(eye, target, up)
	if !ok {
		t.Fatal("expected a valid look-at transform")
	}

	// The camera origin maps to the eye position
	if got := m.MulPoint(Vec3{}); !got.ApproxEqual(eye, 1e-12) {
		t.Fatalf("expected origin to map to %v; got %v", eye, got)
	}

	// The camera forward axis (+Z) points at the target
	if got := m.MulDir(XYZ(0, 0, 1)); !got.ApproxEqual(XYZ(1, 0, 0), 1e-12) {
		t.Fatalf("expected forward axis (1, 0, 0); got %v", got)
	}

	// The camera up axis stays aligned with world up
	if got := m.MulDir(XYZ(0, 1, 0)); !got.ApproxEqual(up, 1e-12) {
		t.Fatalf("expected up axis %v; got %v", up, got)
	}
}

func TestLookAtDegenerate(t *testing.T) {
	type spec struct {
		eye, target, up Vec3
	}
	specs := []spec{
		{XYZ(1, 1, 1), XYZ(1, 1, 1), XYZ(0, 1, 0)},
		{XYZ(0, 0, 0), XYZ(0, 5, 0), XYZ(0, 1, 0)},
		{XYZ(0, 0, 0), XYZ(1, 0, 0), XYZ(0, 0, 0)},
	}

	for index, s := range specs {
		if _, ok := LookAt(s.eye, s.target, s.up); ok {
			t.Fatalf("[spec %d] expected degenerate look-at to be reported", index)
		}
	}
}

func TestVectorOps(t *testing.T) {
	a := XYZ(1, 0, 0)
	b := XYZ(0, 1, 0)

	if got := a.Cross(b); got != XYZ(0, 0, 1) {
		t.Fatalf("expected cross product (0, 0, 1); got %v", got)
	}
	if got := a.Dot(b); got != 0 {
		t.Fatalf("expected dot product 0; got %f", got)
	}
	if got := XYZ(3, 0, 4).Normalize(); !got.ApproxEqual(XYZ(0.6, 0, 0.8), 1e-12) {
		t.Fatalf("expected normalized vector (0.6, 0, 0.8); got %v", got)
	}
	if got := (Vec3{}).Normalize(); got != (Vec3{}) {
		t.Fatalf("expected zero vector to normalize to zero; got %v", got)
	}
	if got := XYZ(-1, 1, -1).String(); got != "-1, 1, -1" {
		t.Fatalf("unexpected string format %q", got)
	}
}
