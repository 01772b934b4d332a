package serializer

import (
	"testing"
)

func TestGetSerializerCachesPerName(t *testing.T) {
	registry := NewTypesRegistry()

	first := GetSerializer[point](registry)
	second := GetSerializer[point](registry)

	if first == nil || second == nil {
		t.Fatal("GetSerializer returned nil")
	}
	if first != second {
		t.Error("expected both lookups to return the same shared instance")
	}
	if registry.Size() != 1 {
		t.Errorf("registry holds %d entries, want 1", registry.Size())
	}
	if first.TypeName() != "point" {
		t.Errorf("TypeName() = %q, want %q", first.TypeName(), "point")
	}
}

func TestGetSerializerSeparateNames(t *testing.T) {
	registry := NewTypesRegistry()

	a := GetSerializer[point](registry)
	b := GetSerializer[sample](registry)

	if a == b {
		t.Error("distinct types must get distinct serializers")
	}
	if registry.Size() != 2 {
		t.Errorf("registry holds %d entries, want 2", registry.Size())
	}
}

func TestAddTypeSkipIfPresent(t *testing.T) {
	registry := NewTypesRegistry()

	first := AddType[point](registry, "foo", true)
	if first == nil {
		t.Fatal("first registration must return the new serializer")
	}

	second := AddType[point](registry, "foo", true)
	if second != nil {
		t.Error("idempotent re-registration must return nil")
	}

	if registry.Size() != 1 {
		t.Errorf("registry holds %d entries, want 1", registry.Size())
	}

	// the existing entry is untouched
	cached, ok := registry.Lookup("foo")
	if !ok || cached != first {
		t.Error("existing entry must survive a skipped re-registration")
	}
}

func TestAddTypeOverwrite(t *testing.T) {
	registry := NewTypesRegistry()

	old := AddType[point](registry, "foo", false)
	replacement := AddType[sample](registry, "foo", false)

	if replacement == nil || replacement == old {
		t.Fatal("overwrite must install a fresh serializer")
	}
	current, ok := registry.Lookup("foo")
	if !ok || current != replacement {
		t.Error("last write must win")
	}

	// handles held before the overwrite keep referencing the old instance
	if old.TypeName() != "foo" || !old.IsFixedSize() {
		t.Error("replaced serializer handle must stay usable")
	}
	if old.SerializedSize(&point{}) != 16 {
		t.Error("replaced serializer must keep the old type's layout")
	}
}

func TestAddTypeCustomName(t *testing.T) {
	registry := NewTypesRegistry()

	s := AddType[point](registry, "waypoint", false)
	if s.TypeName() != "waypoint" {
		t.Errorf("TypeName() = %q, want %q", s.TypeName(), "waypoint")
	}

	// the declared name is still free
	if _, ok := registry.Lookup("point"); ok {
		t.Error("explicit registration must not claim the declared name")
	}
}

func TestLookupAbsent(t *testing.T) {
	registry := NewTypesRegistry()
	if _, ok := registry.Lookup("nope"); ok {
		t.Error("Lookup must report absent names")
	}
}
