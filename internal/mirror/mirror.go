// Package mirror implements the Mirror Resolver (§4.3): it rewrites a
// canonical upstream URL into an ordered list of failover candidates.
package mirror

import "strings"

type substitution struct {
	host  string
	mirrors []string
}

// table is the closed substitution table from spec.md §4.3. Order
// matters: the first matching host wins.
var table = []substitution{
	{"piston-data.mojang.com", []string{"bmclapi2.bangbang93.com", "download.mcbbs.net"}},
	{"launchermeta.mojang.com", []string{"bmclapi2.bangbang93.com"}},
	{"launcher.mojang.com", []string{"bmclapi2.bangbang93.com"}},
	{"piston-meta.mojang.com", []string{"bmclapi2.bangbang93.com"}},
	{"resources.download.minecraft.net", []string{"bmclapi2.bangbang93.com/assets"}},
	{"libraries.minecraft.net", []string{"bmclapi2.bangbang93.com/maven"}},
}

// Candidates produces the failover sequence for url: mirror host(s) first,
// original url last, duplicates suppressed. An unrecognised host passes
// through unchanged as a single-element list.
func Candidates(url string) []string {
	for _, sub := range table {
		idx := strings.Index(url, sub.host)
		if idx == -1 {
			continue
		}

		out := make([]string, 0, len(sub.mirrors)+1)
		seen := map[string]struct{}{}
		for _, mirrorHost := range sub.mirrors {
			candidate := url[:idx] + mirrorHost + url[idx+len(sub.host):]
			if _, dup := seen[candidate]; dup {
				continue
			}
			seen[candidate] = struct{}{}
			out = append(out, candidate)
		}
		if _, dup := seen[url]; !dup {
			out = append(out, url)
		}
		return out
	}

	return []string{url}
}
