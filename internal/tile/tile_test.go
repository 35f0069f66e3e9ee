package tile

import (
	"errors"
	"math/rand"
	"testing"
)

func TestParseTile(t *testing.T) {
	tests := []struct {
		id    string
		want  Tile
		joker bool
		err   bool
	}{
		{id: "R07", want: New(7, Red)},
		{id: "b13", want: New(13, Blue)},
		{id: "Y01-2", want: New(1, Yellow)},
		{id: "K10-1", want: New(10, Black)},
		{id: "JOKER", joker: true},
		{id: "JOKER-2", joker: true},
		{id: "G05", err: true},
		{id: "R14", err: true},
		{id: "R00", err: true},
		{id: "R5", err: true},
		{id: "", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, joker, err := ParseTile(tt.id)
			if tt.err {
				if !errors.Is(err, ErrBadTile) {
					t.Fatalf("expected ErrBadTile, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if joker != tt.joker {
				t.Errorf("joker = %v, want %v", joker, tt.joker)
			}
			if !joker && got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTileIDRoundTrip(t *testing.T) {
	for n := MinNumber; n <= MaxNumber; n++ {
		for c := Color(0); c < NumColors; c++ {
			want := New(n, c)
			got, joker, err := ParseTile(want.ID())
			if err != nil || joker {
				t.Fatalf("parse %s: joker=%v err=%v", want.ID(), joker, err)
			}
			if got != want {
				t.Errorf("round trip %s: got %v", want.ID(), got)
			}
		}
	}
}

func TestInventoryAddRemove(t *testing.T) {
	var inv Inventory
	if err := inv.Add(New(5, Red)); err != nil {
		t.Fatal(err)
	}
	if err := inv.Add(New(5, Red)); err != nil {
		t.Fatal(err)
	}
	if err := inv.AddJoker(); err != nil {
		t.Fatal(err)
	}

	if got := inv.Count(5, Red); got != 2 {
		t.Errorf("Count(5, Red) = %d, want 2", got)
	}
	if inv.RealCount() != 2 || inv.Jokers() != 1 || inv.Size() != 3 {
		t.Errorf("unexpected sizes: real=%d jokers=%d size=%d", inv.RealCount(), inv.Jokers(), inv.Size())
	}

	snapshot := inv
	inv.Remove(New(5, Red))
	inv.RemoveJoker()
	if snapshot.Count(5, Red) != 2 || snapshot.Jokers() != 1 {
		t.Error("mutating a copy changed the snapshot")
	}
	if inv.Count(5, Red) != 1 || inv.Jokers() != 0 {
		t.Errorf("after remove: count=%d jokers=%d", inv.Count(5, Red), inv.Jokers())
	}
}

func TestInventoryRemoveEmptyPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic removing from an empty cell")
		}
	}()
	var inv Inventory
	inv.Remove(New(3, Blue))
}

func TestInventoryCellBound(t *testing.T) {
	var inv Inventory
	for i := 0; i < MaxCopies; i++ {
		if err := inv.Add(New(1, Black)); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}
	if err := inv.Add(New(1, Black)); !errors.Is(err, ErrCellFull) {
		t.Errorf("expected ErrCellFull, got %v", err)
	}
}

func TestFullSet(t *testing.T) {
	inv, err := FullSet(2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if inv.Size() != 106 {
		t.Errorf("full set size = %d, want 106", inv.Size())
	}
	if _, err := FullSet(MaxCopies+1, 0); !errors.Is(err, ErrCellFull) {
		t.Errorf("expected ErrCellFull, got %v", err)
	}
}

func TestFromIDs(t *testing.T) {
	inv, err := FromIDs([]string{"R05", "B05", "Y05", "JOKER"})
	if err != nil {
		t.Fatal(err)
	}
	if inv.RealCount() != 3 || inv.Jokers() != 1 {
		t.Errorf("real=%d jokers=%d", inv.RealCount(), inv.Jokers())
	}
	ids := inv.IDs()
	want := []string{"R05", "B05", "Y05", "JOKER"}
	if len(ids) != len(want) {
		t.Fatalf("IDs() = %v", ids)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("IDs()[%d] = %s, want %s", i, ids[i], want[i])
		}
	}

	if _, err := FromIDs([]string{"R05", "X99"}); !errors.Is(err, ErrBadTile) {
		t.Errorf("expected ErrBadTile, got %v", err)
	}
}

func randomInventory(rng *rand.Rand, maxTiles, maxJokers int) Inventory {
	var inv Inventory
	n := rng.Intn(maxTiles + 1)
	for i := 0; i < n; i++ {
		_ = inv.Add(New(rng.Intn(MaxNumber)+1, Color(rng.Intn(NumColors))))
	}
	for j := rng.Intn(maxJokers + 1); j > 0; j-- {
		_ = inv.AddJoker()
	}
	return inv
}

func TestKeyRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 2000; i++ {
		inv := randomInventory(rng, 56, 2)
		if got := inv.Key().Inventory(); got != inv {
			t.Fatalf("decode(key) differs from inventory %v", inv.IDs())
		}
	}

	full, _ := FullSet(MaxCopies, MaxJokers)
	if full.Key().Inventory() != full {
		t.Error("saturated inventory does not round trip")
	}
}

func TestKeyInjectiveRandomPairs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	seen := make(map[Key]Inventory)
	for i := 0; i < 20000; i++ {
		inv := randomInventory(rng, 56, 2)
		k := inv.Key()
		if prev, ok := seen[k]; ok && prev != inv {
			t.Fatalf("key collision: %v vs %v", prev.IDs(), inv.IDs())
		}
		seen[k] = inv
	}
}

func TestKeySingleUnitDiffers(t *testing.T) {
	var base Inventory
	keys := map[Key]string{base.Key(): "empty"}
	for n := MinNumber; n <= MaxNumber; n++ {
		for c := Color(0); c < NumColors; c++ {
			inv := base
			_ = inv.Add(New(n, c))
			if prev, ok := keys[inv.Key()]; ok {
				t.Fatalf("%s collides with %s", New(n, c).ID(), prev)
			}
			keys[inv.Key()] = New(n, c).ID()
		}
	}
	inv := base
	_ = inv.AddJoker()
	if _, ok := keys[inv.Key()]; ok {
		t.Fatal("joker-only inventory collides")
	}
}

func FuzzKeyInjective(f *testing.F) {
	f.Add(int64(1), int64(2))
	f.Add(int64(0), int64(0))
	f.Add(int64(-5), int64(99))

	f.Fuzz(func(t *testing.T, seedA, seedB int64) {
		a := randomInventory(rand.New(rand.NewSource(seedA)), 56, 2)
		b := randomInventory(rand.New(rand.NewSource(seedB)), 56, 2)
		if (a == b) != (a.Key() == b.Key()) {
			t.Errorf("key equality disagrees with inventory equality: %v / %v", a.IDs(), b.IDs())
		}
	})
}
