package topology

import (
	"sort"
	"strconv"
	"strings"

	"dockerdash/internal/domain"
)

// Canonicalize returns the connections with exact duplicates removed.
// The result is ordered by canonical key, so canonicalizing an already
// canonical list returns it unchanged.
func Canonicalize(conns []domain.Connection) []domain.Connection {
	if len(conns) == 0 {
		return conns
	}

	byKey := make(map[string]domain.Connection, len(conns))
	for _, c := range conns {
		key := CanonicalKey(c)
		if _, ok := byKey[key]; !ok {
			byKey[key] = c
		}
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.Connection, 0, len(keys))
	for _, k := range keys {
		out = append(out, byKey[k])
	}
	return out
}

// CanonicalKey is the order-independent identity of a connection record: the
// sorted set of its field=value pairs. Values are quoted so no value can
// imitate a field boundary.
func CanonicalKey(c domain.Connection) string {
	foreignDevice := "<nil>"
	if c.ForeignDevice != nil {
		foreignDevice = strconv.Quote(*c.ForeignDevice)
	}

	pairs := []string{
		"proto=" + strconv.Quote(c.Proto),
		"local_address=" + strconv.Quote(c.LocalAddress),
		"local_ip=" + strconv.Quote(c.LocalIP),
		"local_port=" + strconv.Itoa(int(c.LocalPort)),
		"foreign_address=" + strconv.Quote(c.ForeignAddress),
		"foreign_ip=" + strconv.Quote(c.ForeignIP),
		"foreign_port=" + strconv.Itoa(int(c.ForeignPort)),
		"state=" + strconv.Quote(c.State),
		"pid_program_name=" + strconv.Quote(c.Program),
		"foreign_device=" + foreignDevice,
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}
