package extract

import "sort"

type stringSet map[string]struct{}

func (s stringSet) add(v string) {
	s[v] = struct{}{}
}

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Union merges sorted string sets into one sorted set.
func Union(sets ...[]string) []string {
	all := stringSet{}
	for _, set := range sets {
		for _, v := range set {
			all.add(v)
		}
	}
	return all.sorted()
}
