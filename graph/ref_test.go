package graph

import "testing"

func TestKeyFormat(t *testing.T) {
	if got, want := Key("alpha", "1.0.0"), "alpha::1.0.0"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}

func TestSealDedupesDependencies(t *testing.T) {
	b1 := Seal("beta", "1.0.0", nil)
	b1Again := Seal("beta", "1.0.0", nil)

	r := Seal("alpha", "1.0.0", []*Ref{b1, b1Again, b1})
	if len(r.Dependencies()) != 1 {
		t.Fatalf("got %d dependencies, want 1 after dedup", len(r.Dependencies()))
	}
}

func TestSealSortsDependenciesByNameThenVersion(t *testing.T) {
	gamma := Seal("gamma", "1.0.0", nil)
	beta2 := Seal("beta", "2.0.0", nil)
	beta1 := Seal("beta", "1.0.0", nil)

	r := Seal("alpha", "1.0.0", []*Ref{gamma, beta2, beta1})
	deps := r.Dependencies()
	if len(deps) != 3 {
		t.Fatalf("got %d dependencies, want 3", len(deps))
	}
	want := []string{"beta::1.0.0", "beta::2.0.0", "gamma::1.0.0"}
	for i, w := range want {
		if deps[i].Key() != w {
			t.Errorf("deps[%d] = %q, want %q", i, deps[i].Key(), w)
		}
	}
}

func TestEqual(t *testing.T) {
	a := Seal("alpha", "1.0.0", nil)
	aSame := Seal("alpha", "1.0.0", nil)
	aOther := Seal("alpha", "2.0.0", nil)

	if !a.Equal(aSame) {
		t.Error("expected refs with the same (name, version) to be Equal")
	}
	if a.Equal(aOther) {
		t.Error("expected refs with differing versions not to be Equal")
	}
	if a.Equal(nil) {
		t.Error("expected a non-nil ref not to equal nil")
	}
}
