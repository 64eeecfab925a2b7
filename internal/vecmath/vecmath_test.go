package vecmath

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name string
		a    Vec3
		b    Vec3
		want float64
	}{
		{
			name: "parallel",
			a:    Vec3{1, 2, 3},
			b:    Vec3{1, 2, 3},
			want: 14,
		},
		{
			name: "orthogonal",
			a:    Vec3{1, 0, 0},
			b:    Vec3{0, 1, 0},
			want: 0,
		},
		{
			name: "opposite",
			a:    Vec3{1, 2, 3},
			b:    Vec3{-1, -2, -3},
			want: -14,
		},
		{
			name: "z contributes",
			a:    Vec3{0, 0, 2},
			b:    Vec3{0, 0, 5},
			want: 10,
		},
		{
			name: "zero vector",
			a:    Vec3{},
			b:    Vec3{4, 5, 6},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Dot(tt.a, tt.b), 1e-12)
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name       string
		vec        Vec3
		wantLength float64
		wantNorm   float64 // expected L2 norm after normalization
	}{
		{
			name:       "3-4-0 triangle",
			vec:        Vec3{3, 4, 0},
			wantLength: 5,
			wantNorm:   1,
		},
		{
			name:       "already normalized",
			vec:        Vec3{1, 0, 0},
			wantLength: 1,
			wantNorm:   1,
		},
		{
			name:       "integer wish direction",
			vec:        Vec3{100, 0, 0},
			wantLength: 100,
			wantNorm:   1,
		},
		{
			name:       "all components",
			vec:        Vec3{-2, 3, 6},
			wantLength: 7,
			wantNorm:   1,
		},
		{
			name:       "zero vector unchanged",
			vec:        Vec3{0, 0, 0},
			wantLength: 0,
			wantNorm:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.vec
			length := Normalize(&v)
			assert.InDelta(t, tt.wantLength, length, 1e-9)
			assert.InDelta(t, tt.wantNorm, v.Len(), 1e-9)
			if tt.wantLength == 0 {
				assert.Equal(t, tt.vec, v, "zero vector must not be modified")
				return
			}
			// Direction is preserved.
			assert.InDelta(t, tt.wantLength, Dot(v, tt.vec), 1e-9)
		})
	}
}

func TestNormalize_NoNaNOnZero(t *testing.T) {
	v := Vec3{}
	Normalize(&v)
	for i, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			t.Fatalf("component %d = %v after normalizing zero vector", i, c)
		}
	}
}

func TestPerpendicularHorizontal(t *testing.T) {
	vectors := []Vec3{
		{320, 0, 0},
		{0, 320, 0},
		{3, -4, 7},
		{-12.5, 8.25, 0},
		{0, 0, 9},
	}

	for _, v := range vectors {
		n := PerpendicularHorizontal(v)
		assert.InDelta(t, 0, v[0]*n[0]+v[1]*n[1], 1e-9, "not orthogonal in the horizontal plane: %v %v", v, n)
		assert.InDelta(t, HorizontalSpeed(v), HorizontalSpeed(n), 1e-9)
		assert.Equal(t, v[2], n[2], "z must be preserved")
	}
}

func TestPerpendicularHorizontal_CounterClockwise(t *testing.T) {
	assert.Equal(t, Vec3{0, 1, 0}, PerpendicularHorizontal(Vec3{1, 0, 0}))
	assert.Equal(t, Vec3{-1, 0, 0}, PerpendicularHorizontal(Vec3{0, 1, 0}))
}

func TestHorizontalSpeed_IgnoresZ(t *testing.T) {
	assert.InDelta(t, 5.0, HorizontalSpeed(Vec3{3, 4, 100}), 1e-12)
	assert.Equal(t, 0.0, HorizontalSpeed(Vec3{0, 0, -3}))
}

func TestHorizontalDistance(t *testing.T) {
	assert.InDelta(t, 7.0, HorizontalDistance(Vec3{1, 2, 0}, Vec3{4, -2, 0}), 1e-12)
	assert.Equal(t, 0.0, HorizontalDistance(Vec3{1, 2, 3}, Vec3{1, 2, 50}))
}

func TestHorizontal(t *testing.T) {
	assert.Equal(t, Vec3{320, -5, 0}, Horizontal(320, -5))
}
