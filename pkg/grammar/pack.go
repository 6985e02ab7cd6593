package grammar

import (
	"cmp"
	"slices"
)

// row is one sparse row of a table family before packing.
type row struct {
	keys []int
	vals []int32
	base int32
}

func (r *row) add(key int, val int32) {
	r.keys = append(r.keys, key)
	r.vals = append(r.vals, val)
}

func (r *row) sort() {
	idx := make([]int, len(r.keys))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return cmp.Compare(r.keys[a], r.keys[b]) })
	keys := make([]int, len(idx))
	vals := make([]int32, len(idx))
	for i, j := range idx {
		keys[i], vals[i] = r.keys[j], r.vals[j]
	}
	r.keys, r.vals = keys, vals
}

// pack overlays rows into one comb vector with first-fit placement. Larger
// rows go first; every non-empty row gets a distinct base. Empty rows get
// noRow.
func pack(rows []*row) (table, check []int32) {
	order := make([]int, len(rows))
	for i, r := range rows {
		r.sort()
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return cmp.Compare(len(rows[b].keys), len(rows[a].keys))
	})

	used := make(map[int]bool)
	lowFree := 0
	for _, i := range order {
		r := rows[i]
		if len(r.keys) == 0 {
			r.base = noRow
			continue
		}

		base := max(lowFree-r.keys[0], 0)
		for ; ; base++ {
			if used[base] {
				continue
			}
			if fits(check, base, r.keys) {
				break
			}
		}
		used[base] = true
		r.base = conv32(base)

		need := base + r.keys[len(r.keys)-1] + 1
		for len(check) < need {
			check = append(check, -1)
			table = append(table, 0)
		}
		for j, k := range r.keys {
			check[base+k] = conv32(k)
			table[base+k] = r.vals[j]
		}
		for lowFree < len(check) && check[lowFree] != -1 {
			lowFree++
		}
	}
	return table, check
}

func fits(check []int32, base int, keys []int) bool {
	for _, k := range keys {
		if p := base + k; p < len(check) && check[p] != -1 {
			return false
		}
	}
	return true
}

func bases(rows []*row) []int32 {
	out := make([]int32, len(rows))
	for i, r := range rows {
		out[i] = r.base
	}
	return out
}
