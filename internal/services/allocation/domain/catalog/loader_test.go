package catalog

import (
	"errors"
	"strings"
	"testing"
)

const sampleCatalog = `
powers:
  - id: jab
    name: Jab
    tier: skill
    unlock_cost: 2
    rank_up_cost: 1
    rank_up_cost_rank3: 2
    max_rank: 3
  - id: war_cry
    name: War Cry
    tier: ability
    scope: warrior
    unlock_cost: 3
    max_rank: 1
    prerequisite: jab
    min_level: 4
`

func TestLoadParsesCatalog(t *testing.T) {
	cat, err := Load(strings.NewReader(sampleCatalog))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("len = %d", cat.Len())
	}
	cry, err := cat.Get("war_cry")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cry.ScopeKey != "warrior" || cry.MinLevel != 4 || cry.Prerequisite != "jab" {
		t.Fatalf("war_cry = %+v", cry)
	}
	if cat.Powers()[0].ID != "jab" {
		t.Fatalf("expected skill tier first, got %s", cat.Powers()[0].ID)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	doc := "powers:\n  - id: jab\n    tier: skill\n    unlock_cost: 1\n    max_rank: 1\n    colour: red\n"
	if _, err := Load(strings.NewReader(doc)); err == nil {
		t.Fatal("expected unknown field error")
	}
}

func TestLoadValidatesEntries(t *testing.T) {
	doc := "powers:\n  - id: jab\n    tier: skill\n    unlock_cost: 0\n    max_rank: 1\n"
	if _, err := Load(strings.NewReader(doc)); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected invalid catalog, got %v", err)
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	cat, err := Load(strings.NewReader(""))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cat.Len() != 0 {
		t.Fatalf("len = %d", cat.Len())
	}
}
