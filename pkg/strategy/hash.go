package strategy

import (
	"encoding/binary"
	"hash/fnv"

	"bomberbot/pkg/core"
)

// cellHash mixes a unit id and a cell into a deterministic value.
// Strategies use it to break ties between equally good objectives so
// different units spread out instead of herding onto the same cell,
// without any cross-unit coordination or randomness.
func cellHash(unitID string, p core.Pos) uint64 {
	h := fnv.New64a()
	h.Write([]byte(unitID))
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.X))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.Y))
	h.Write(buf[:])
	return h.Sum64()
}
