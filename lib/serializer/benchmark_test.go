package serializer

import (
	"testing"
)

// BenchmarkSerializedSize measures the size query on the recording hot path.
// For fixed-size types it must not inspect the instance at all.
func BenchmarkSerializedSize(b *testing.B) {
	registry := NewTypesRegistry()

	b.Run("Fixed", func(b *testing.B) {
		s := GetSerializer[pose](registry)
		instance := &pose{}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if s.SerializedSize(instance) != 56 {
				b.Fatal("unexpected size")
			}
		}
	})

	b.Run("Variable", func(b *testing.B) {
		s := GetSerializer[intSeries](registry)
		instance := &intSeries{Count: 64, Items: make([]int32, 64)}
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if s.SerializedSize(instance) != 4+4+64*4 {
				b.Fatal("unexpected size")
			}
		}
	})
}

func BenchmarkSerialize(b *testing.B) {
	registry := NewTypesRegistry()

	b.Run("FixedSmall", func(b *testing.B) {
		s := GetSerializer[sample](registry)
		instance := &sample{A: 3.5, B: 7}
		buf := make([]byte, s.SerializedSize(instance))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := s.Serialize(instance, buf); err != nil {
				b.Fatalf("Serialize failed: %v", err)
			}
		}
	})

	b.Run("FixedArrays", func(b *testing.B) {
		s := GetSerializer[pose](registry)
		instance := &pose{Pos: [3]float64{1, 2, 3}, Orient: [4]float64{0, 0, 0, 1}}
		buf := make([]byte, s.SerializedSize(instance))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := s.Serialize(instance, buf); err != nil {
				b.Fatalf("Serialize failed: %v", err)
			}
		}
	})

	b.Run("VariableLarge", func(b *testing.B) {
		s := GetSerializer[intSeries](registry)
		instance := &intSeries{Count: 1024, Items: make([]int32, 1024)}
		buf := make([]byte, s.SerializedSize(instance))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if err := s.Serialize(instance, buf); err != nil {
				b.Fatalf("Serialize failed: %v", err)
			}
		}
	})
}

func BenchmarkDeserialize(b *testing.B) {
	registry := NewTypesRegistry()
	s := GetSerializer[intSeries](registry)

	instance := &intSeries{Count: 64, Items: make([]int32, 64)}
	buf := make([]byte, s.SerializedSize(instance))
	if err := s.Serialize(instance, buf); err != nil {
		b.Fatalf("Serialize failed: %v", err)
	}

	var out intSeries
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := s.Deserialize(buf, &out); err != nil {
			b.Fatalf("Deserialize failed: %v", err)
		}
	}
}

func BenchmarkRegistryLookup(b *testing.B) {
	registry := NewTypesRegistry()
	GetSerializer[point](registry)

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if GetSerializer[point](registry) == nil {
				b.Fatal("lookup failed")
			}
		}
	})
}
