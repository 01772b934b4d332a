package serializer

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestAccessorClassification(t *testing.T) {
	var (
		f   float64
		u   uint16
		str string
		arr [5]int32
		sl  []float64
		pt  point
		cl  cloud
	)

	tests := []struct {
		name         string
		access       FieldAccessor
		wantKind     Kind
		wantTypeName string
		wantFixed    bool
		wantSize     int
	}{
		{"Float64", Float64(&f), KindNumeric, "float64", true, 8},
		{"Uint16", Uint16(&u), KindNumeric, "uint16", true, 2},
		{"String", String(&str), KindVariableContainer, "string", false, 0},
		{"FixedArray", FixedList(arr[:], Int32), KindFixedContainer, "int32[5]", true, 20},
		{"Slice", List(&sl, Float64), KindVariableContainer, "float64[]", false, 0},
		{"Composite", Object(&pt), KindComposite, "point", true, 16},
		{"VariableComposite", Object(&cl), KindComposite, "cloud", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.access.Kind(); got != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", got, tt.wantKind)
			}
			if got := tt.access.TypeName(); got != tt.wantTypeName {
				t.Errorf("TypeName() = %q, want %q", got, tt.wantTypeName)
			}
			fixed, size := tt.access.FixedSize()
			if fixed != tt.wantFixed {
				t.Errorf("FixedSize() fixed = %v, want %v", fixed, tt.wantFixed)
			}
			if fixed && size != tt.wantSize {
				t.Errorf("FixedSize() size = %d, want %d", size, tt.wantSize)
			}
		})
	}
}

// a fixed container poisoned by a variable element type stays variable
func TestFixedContainerOfVariableElements(t *testing.T) {
	var arr [3]cloud
	access := FixedList(arr[:], Object)

	if fixed, _ := access.FixedSize(); fixed {
		t.Error("fixed array of variable-size elements must not be fixed-size")
	}
	if got := access.Kind(); got != KindFixedContainer {
		t.Errorf("Kind() = %v, want %v", got, KindFixedContainer)
	}
}

func TestNumericAccessorDispatch(t *testing.T) {
	var (
		b  bool
		i8 int8
		u8 uint8
		f3 float32
		f6 float64
	)

	tests := []struct {
		name         string
		access       FieldAccessor
		wantTypeName string
		wantWidth    int
	}{
		{"Bool", NumericAccessor(&b), "bool", 1},
		{"Int8", NumericAccessor(&i8), "int8", 1},
		{"Uint8", NumericAccessor(&u8), "uint8", 1},
		{"Float32", NumericAccessor(&f3), "float32", 4},
		{"Float64", NumericAccessor(&f6), "float64", 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.access.TypeName(); got != tt.wantTypeName {
				t.Errorf("TypeName() = %q, want %q", got, tt.wantTypeName)
			}
			if got := tt.access.Size(); got != tt.wantWidth {
				t.Errorf("Size() = %d, want %d", got, tt.wantWidth)
			}
		})
	}
}

func TestStringAccessorRoundTrip(t *testing.T) {
	src := "hello recorder"
	buf := make([]byte, String(&src).Size())
	if n := String(&src).Write(buf); n != len(buf) {
		t.Fatalf("Write wrote %d bytes, want %d", n, len(buf))
	}

	var dst string
	n, err := String(&dst).Read(buf)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != len(buf) {
		t.Errorf("Read consumed %d bytes, want %d", n, len(buf))
	}
	if dst != src {
		t.Errorf("round trip mismatch: %q != %q", dst, src)
	}
}

// for variable-size elements the count cannot be validated up front, so the
// list must grow element by element instead of trusting the prefix
func TestListVariableElementsForgedCount(t *testing.T) {
	buf := make([]byte, lenPrefixSize)
	binary.LittleEndian.PutUint32(buf, math.MaxUint32)

	var dst []string
	if _, err := List(&dst, String).Read(buf); err == nil {
		t.Error("expected error for a length prefix exceeding the input")
	}
	if len(dst) != 0 {
		t.Errorf("forged record populated %d elements", len(dst))
	}
}

func TestListReusesBackingArray(t *testing.T) {
	src := []int32{1, 2, 3}
	access := List(&src, Int32)
	buf := make([]byte, access.Size())
	access.Write(buf)

	dst := make([]int32, 0, 8)
	backing := dst[:cap(dst)]
	if _, err := List(&dst, Int32).Read(buf); err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if len(dst) != 3 {
		t.Fatalf("len = %d, want 3", len(dst))
	}
	if &dst[0] != &backing[0] {
		t.Error("expected the pre-allocated backing array to be reused")
	}
}
