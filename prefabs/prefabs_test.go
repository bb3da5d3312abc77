package prefabs

import "testing"

func TestLoadAcceptsPrefixedNames(t *testing.T) {
	for _, name := range []string{"duel.yaml", "prefabs/duel.yaml"} {
		data, err := Load(name)
		if err != nil {
			t.Fatalf("Load(%q): %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("Load(%q) returned no data", name)
		}
	}
}

func TestLoadScript(t *testing.T) {
	for _, name := range []string{"shield_bash.tengo", "scripts/shield_bash.tengo", "prefabs/scripts/shield_bash.tengo"} {
		if _, err := LoadScript(name); err != nil {
			t.Fatalf("LoadScript(%q): %v", name, err)
		}
	}
	if _, err := LoadScript("missing.tengo"); err == nil {
		t.Fatalf("expected error for missing script")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		kind ChangeKind
		ok   bool
	}{
		{"prefabs/duel.yaml", SpecChanged, true},
		{"prefabs/settings.YML", SpecChanged, true},
		{"prefabs/scripts/shield_bash.tengo", ScriptChanged, true},
		{"prefabs/notes.txt", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := classify(tt.name)
			if ok != tt.ok || kind != tt.kind {
				t.Fatalf("classify(%q) = %v,%v, want %v,%v", tt.name, kind, ok, tt.kind, tt.ok)
			}
		})
	}
}

func TestLoadScenarioSpec(t *testing.T) {
	spec, err := LoadScenarioSpec("duel.yaml")
	if err != nil {
		t.Fatalf("LoadScenarioSpec: %v", err)
	}
	if spec.Name != "duel" {
		t.Fatalf("expected name duel, got %q", spec.Name)
	}
	if len(spec.Actors) == 0 {
		t.Fatalf("expected actors")
	}
}
