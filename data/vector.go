package data

import "sort"

// A Vector maps feature names to values.
type Vector map[string]float64

func (this Vector) Sum() float64 {
	var sum float64
	for _, k := range this.Keys() {
		sum += this[k]
	}
	return sum
}

// Keys returns the vector's feature names, sorted, so that sums are
// computed in the same order every time.
func (this Vector) Keys() []string {
	keys := make([]string, 0, len(this))
	for k := range this {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
