package tile

import "fmt"

// Key packs an inventory into fixed, non-overlapping bit fields:
//
//	cell (number n, color c) -> 3 bits at offset 3*((n-1)*4+c), bits 0..155
//	joker count              -> 8 bits at offset 156, bits 156..163
//
// Every field is wide enough for the bounds Add enforces (MaxCopies,
// MaxJokers), so distinct inventories always get distinct keys. Decode
// with Inventory.
type Key [3]uint64

const (
	cellBits   = 3
	cellMask   = 1<<cellBits - 1
	jokerShift = MaxNumber * NumColors * cellBits
)

func setBits(k *Key, offset int, v uint64, width int) {
	for i := 0; i < width; i++ {
		if v&(1<<i) != 0 {
			pos := offset + i
			k[pos/64] |= 1 << (pos % 64)
		}
	}
}

func getBits(k Key, offset int, width int) uint64 {
	var v uint64
	for i := 0; i < width; i++ {
		pos := offset + i
		if k[pos/64]&(1<<(pos%64)) != 0 {
			v |= 1 << i
		}
	}
	return v
}

// Key returns the packed key of inv.
func (inv Inventory) Key() Key {
	var k Key
	for n := range inv.counts {
		for c, v := range inv.counts[n] {
			if v == 0 {
				continue
			}
			setBits(&k, (n*NumColors+c)*cellBits, uint64(v)&cellMask, cellBits)
		}
	}
	setBits(&k, jokerShift, uint64(inv.jokers), 8)
	return k
}

// Inventory decodes the key back into the inventory it was built from.
func (k Key) Inventory() Inventory {
	var inv Inventory
	for n := range inv.counts {
		for c := range inv.counts[n] {
			inv.counts[n][c] = uint8(getBits(k, (n*NumColors+c)*cellBits, cellBits))
		}
	}
	inv.jokers = uint8(getBits(k, jokerShift, 8))
	return inv
}

func (k Key) String() string {
	return fmt.Sprintf("%016x%016x%016x", k[2], k[1], k[0])
}
