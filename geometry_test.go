package fractal

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

// block3 is a 3x3 block with distinct values 1..9.
func block3() *mat.Dense {
	return mat.NewDense(3, 3, []float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	})
}

// rampImage returns a size x size image with pixel (i, j) = i*size + j.
func rampImage(size int) *mat.Dense {
	data := make([]float64, size*size)
	for i := range data {
		data[i] = float64(i)
	}
	return mat.NewDense(size, size, data)
}

func TestResampleUniform(t *testing.T) {
	var uniform mat.Dense
	uniform.Apply(func(_, _ int, _ float64) float64 { return 7 }, mat.NewDense(8, 8, nil))

	for _, factor := range []int{1, 2, 4, 8} {
		got := Resample(&uniform, factor)
		r, c := got.Dims()
		if r != 8/factor || c != 8/factor {
			t.Fatalf("factor %d: expected %dx%d, got %dx%d", factor, 8/factor, 8/factor, r, c)
		}
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if got.At(i, j) != 7 {
					t.Errorf("factor %d: pixel (%d,%d) = %v, want 7", factor, i, j, got.At(i, j))
				}
			}
		}
	}
}

func TestResampleAverages(t *testing.T) {
	got := Resample(rampImage(4), 2)
	want := mat.NewDense(2, 2, []float64{
		2.5, 4.5,
		10.5, 12.5,
	})
	if !mat.Equal(got, want) {
		t.Errorf("Resample mismatch:\n got %v\nwant %v", mat.Formatted(got), mat.Formatted(want))
	}
}

func TestResampleView(t *testing.T) {
	img := rampImage(8)
	view := img.Slice(2, 6, 4, 8)
	got := Resample(view, 2)
	// Top-left cell holds 20, 21, 28, 29
	if got.At(0, 0) != 24.5 {
		t.Errorf("Expected 24.5, got %v", got.At(0, 0))
	}
}

func TestApplySymmetry(t *testing.T) {
	tests := []struct {
		sym  Symmetry
		want []float64
	}{
		{Identity, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9}},
		{Symmetry{FlipNone, Rotate90}, []float64{3, 6, 9, 2, 5, 8, 1, 4, 7}},
		{Symmetry{FlipNone, Rotate180}, []float64{9, 8, 7, 6, 5, 4, 3, 2, 1}},
		{Symmetry{FlipNone, Rotate270}, []float64{7, 4, 1, 8, 5, 2, 9, 6, 3}},
		{Symmetry{FlipVertical, Rotate0}, []float64{7, 8, 9, 4, 5, 6, 1, 2, 3}},
		{Symmetry{FlipHorizontal, Rotate0}, []float64{3, 2, 1, 6, 5, 4, 9, 8, 7}},
		{Symmetry{FlipVertical, Rotate90}, []float64{9, 6, 3, 8, 5, 2, 7, 4, 1}},
		{Symmetry{FlipHorizontal, Rotate90}, []float64{1, 4, 7, 2, 5, 8, 3, 6, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.sym.String(), func(t *testing.T) {
			b := block3()
			got := ApplySymmetry(b, tt.sym)
			want := mat.NewDense(3, 3, tt.want)
			if !mat.Equal(got, want) {
				t.Errorf("got\n%v\nwant\n%v", mat.Formatted(got), mat.Formatted(want))
			}
			if !mat.Equal(b, block3()) {
				t.Error("ApplySymmetry modified its input")
			}
		})
	}
}

func TestApplySymmetryInvolutions(t *testing.T) {
	b := rampImage(4)
	pairs := []struct {
		name        string
		first, then Symmetry
	}{
		{"180 twice", Symmetry{FlipNone, Rotate180}, Symmetry{FlipNone, Rotate180}},
		{"vertical twice", Symmetry{FlipVertical, Rotate0}, Symmetry{FlipVertical, Rotate0}},
		{"horizontal twice", Symmetry{FlipHorizontal, Rotate0}, Symmetry{FlipHorizontal, Rotate0}},
		{"90 then 270", Symmetry{FlipNone, Rotate90}, Symmetry{FlipNone, Rotate270}},
	}
	for _, p := range pairs {
		t.Run(p.name, func(t *testing.T) {
			got := ApplySymmetry(ApplySymmetry(b, p.first), p.then)
			if !mat.Equal(got, b) {
				t.Errorf("expected identity, got\n%v", mat.Formatted(got))
			}
		})
	}

	got := mat.DenseCopyOf(b)
	for i := 0; i < 4; i++ {
		got = ApplySymmetry(got, Symmetry{FlipNone, Rotate90})
	}
	if !mat.Equal(got, b) {
		t.Error("four quarter turns should be the identity")
	}
}

func TestApplyAffine(t *testing.T) {
	b := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	got := ApplyAffine(b, 2, 1)
	want := mat.NewDense(2, 2, []float64{3, 5, 7, 9})
	if !mat.Equal(got, want) {
		t.Errorf("got %v, want %v", mat.Formatted(got), mat.Formatted(want))
	}
}

func TestTransformBlock(t *testing.T) {
	got := TransformBlock(block3(), Symmetry{FlipNone, Rotate180}, 0.5, -1)
	want := mat.NewDense(3, 3, []float64{3.5, 3, 2.5, 2, 1.5, 1, 0.5, 0, -0.5})
	if !mat.Equal(got, want) {
		t.Errorf("got %v, want %v", mat.Formatted(got), mat.Formatted(want))
	}
}

func TestSymmetries(t *testing.T) {
	tests := []struct {
		rotate, flip bool
		want         []Symmetry
	}{
		{false, false, []Symmetry{Identity}},
		{true, false, []Symmetry{
			{FlipNone, Rotate0}, {FlipNone, Rotate90}, {FlipNone, Rotate180}, {FlipNone, Rotate270},
		}},
		{false, true, []Symmetry{{FlipVertical, Rotate0}, {FlipHorizontal, Rotate0}}},
	}
	for _, tt := range tests {
		got := Symmetries(tt.rotate, tt.flip)
		if len(got) != len(tt.want) {
			t.Fatalf("rotate=%v flip=%v: expected %d symmetries, got %d", tt.rotate, tt.flip, len(tt.want), len(got))
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("rotate=%v flip=%v: [%d] = %v, want %v", tt.rotate, tt.flip, i, got[i], tt.want[i])
			}
		}
	}

	all := Symmetries(true, true)
	if len(all) != 8 {
		t.Fatalf("Expected 8 symmetries, got %d", len(all))
	}
	if all[0] != (Symmetry{FlipVertical, Rotate0}) || all[7] != (Symmetry{FlipHorizontal, Rotate270}) {
		t.Errorf("Unexpected enumeration order: %v", all)
	}
}
