package minecraft

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// mapSource serves descriptors from memory
type mapSource map[string]*Manifest

func (s mapSource) Descriptor(ctx context.Context, id string) (*Manifest, error) {
	manifest, ok := s[id]
	if !ok {
		return nil, ErrDescriptorNotFound
	}
	// hand out a copy like a real source would
	clone := *manifest
	return &clone, nil
}

func lib(name string) Library {
	return Library{Name: name}
}

func gameArg(value string) Argument {
	return Argument{Value: StrArray{value}}
}

func TestResolve(t *testing.T) {
	source := mapSource{
		"1.20.4": {
			ID:        "1.20.4",
			MainClass: "net.minecraft.client.main.Main",
			Assets:    "12",
			Libraries: []Library{lib("org.lwjgl:lwjgl:3.3.2"), lib("com.mojang:brigadier:1.1.8")},
		},
		"1.20.4-fabric": {
			ID:           "1.20.4-fabric",
			InheritsFrom: "1.20.4",
			MainClass:    "net.fabricmc.loader.launch.knot.KnotClient",
			Libraries:    []Library{lib("net.fabricmc:fabric-loader:0.15.3")},
		},
	}

	resolved, err := Resolve(context.Background(), "1.20.4-fabric", source)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if !resolved.Resolved() {
		t.Error("resolved manifest still has a parent")
	}
	if resolved.MainClass != "net.fabricmc.loader.launch.knot.KnotClient" {
		t.Errorf("child main class should win, got %s", resolved.MainClass)
	}
	if resolved.Assets != "12" {
		t.Errorf("parent assets should fill the gap, got %q", resolved.Assets)
	}

	wantLibs := []string{
		"org.lwjgl:lwjgl:3.3.2",
		"com.mojang:brigadier:1.1.8",
		"net.fabricmc:fabric-loader:0.15.3",
	}
	gotLibs := make([]string, 0, len(resolved.Libraries))
	for _, l := range resolved.Libraries {
		gotLibs = append(gotLibs, l.Name)
	}
	if !reflect.DeepEqual(gotLibs, wantLibs) {
		t.Errorf("libraries = %v, want parent first then child %v", gotLibs, wantLibs)
	}
}

func TestResolve_argumentsConcatenate(t *testing.T) {
	source := mapSource{
		"parent": {ID: "parent", MainClass: "Main"},
		"child":  {ID: "child", InheritsFrom: "parent"},
	}
	source["parent"].Arguments.Game = []Argument{gameArg("--username"), gameArg("${auth_player_name}")}
	source["child"].Arguments.Game = []Argument{gameArg("--extra")}

	resolved, err := Resolve(context.Background(), "child", source)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	got := []string{}
	for _, arg := range resolved.Arguments.Game {
		got = append(got, arg.Value...)
	}
	want := []string{"--username", "${auth_player_name}", "--extra"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("game arguments = %v, want %v", got, want)
	}
}

func TestResolve_idempotent(t *testing.T) {
	source := mapSource{
		"parent": {
			ID:        "parent",
			MainClass: "Main",
			Libraries: []Library{lib("a:b:1")},
		},
		"child": {
			ID:           "child",
			InheritsFrom: "parent",
			Libraries:    []Library{lib("c:d:2")},
		},
	}

	once, err := Resolve(context.Background(), "child", source)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// resolving the already resolved descriptor must be a no-op
	again, err := Resolve(context.Background(), once.ID, mapSource{once.ID: once})
	if err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}
	if !reflect.DeepEqual(once, again) {
		t.Errorf("resolve is not idempotent:\nfirst  %+v\nsecond %+v", once, again)
	}
}

func TestResolve_cycles(t *testing.T) {
	tests := []struct {
		name   string
		source mapSource
		id     string
	}{
		{
			name: "self referential",
			source: mapSource{
				"a": {ID: "a", InheritsFrom: "a"},
			},
			id: "a",
		},
		{
			name: "mutual",
			source: mapSource{
				"a": {ID: "a", InheritsFrom: "b"},
				"b": {ID: "b", InheritsFrom: "a"},
			},
			id: "a",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(context.Background(), tt.id, tt.source)
			cyclic := &CyclicInheritanceError{}
			if !errors.As(err, &cyclic) {
				t.Errorf("Resolve() error = %v, want CyclicInheritanceError", err)
			}
		})
	}
}

func TestResolve_missingParent(t *testing.T) {
	source := mapSource{
		"child": {ID: "child", InheritsFrom: "gone"},
	}

	_, err := Resolve(context.Background(), "child", source)
	missing := &MissingParentError{}
	if !errors.As(err, &missing) {
		t.Fatalf("Resolve() error = %v, want MissingParentError", err)
	}
	if missing.ID != "gone" {
		t.Errorf("MissingParentError.ID = %s, want gone", missing.ID)
	}
}

func TestResolve_unknownRootVersion(t *testing.T) {
	_, err := Resolve(context.Background(), "nope", mapSource{})
	if !errors.Is(err, ErrDescriptorNotFound) {
		t.Errorf("Resolve() error = %v, want ErrDescriptorNotFound", err)
	}
}
