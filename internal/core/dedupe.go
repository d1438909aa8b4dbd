package core

import (
	"encoding/binary"
	"math"

	"github.com/zeebo/xxh3"
)

// DropDuplicates removes rows identical to an earlier row in every column,
// keeping the first occurrence and the order of survivors.
// Null and "" compare equal.
func DropDuplicates(ds *Dataset) (*Dataset, int) {
	out := &Dataset{Columns: append([]string{}, ds.Columns...), Rows: make([][]Cell, 0, len(ds.Rows))}
	buckets := make(map[uint64][]int, len(ds.Rows))

	var buf []byte
	removed := 0
	for _, row := range ds.Rows {
		buf = encodeRow(buf[:0], row)
		h := xxh3.Hash(buf)

		dup := false
		for _, kept := range buckets[h] {
			if rowsEqual(out.Rows[kept], row) {
				dup = true
				break
			}
		}
		if dup {
			removed++
			continue
		}

		buckets[h] = append(buckets[h], len(out.Rows))
		newRow := make([]Cell, len(row))
		copy(newRow, row)
		out.Rows = append(out.Rows, newRow)
	}
	return out, removed
}

// encodeRow writes a canonical, length-prefixed encoding of row.
// Empty cells share one encoding so they hash alike, as do all NaNs.
func encodeRow(buf []byte, row []Cell) []byte {
	for _, c := range row {
		switch {
		case c.IsEmpty():
			buf = append(buf, 0)
		case c.Kind == KindNumber:
			n := c.Num
			switch {
			case n == 0:
				n = 0 // fold -0 into +0
			case math.IsNaN(n):
				n = math.NaN()
			}
			buf = append(buf, 1)
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(n))
		default:
			buf = append(buf, 2)
			buf = binary.LittleEndian.AppendUint32(buf, uint32(len(c.Str)))
			buf = append(buf, c.Str...)
		}
	}
	return buf
}

// dedupePass adapts DropDuplicates to the Pass interface.
type dedupePass struct{}

func (dedupePass) Name() string { return "drop_duplicates" }

func (p dedupePass) Apply(ds *Dataset) (*Dataset, PassReport, error) {
	out, removed := DropDuplicates(ds)
	return out, PassReport{Pass: p.Name(), Removed: removed}, nil
}
