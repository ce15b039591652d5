package topology

import (
	"net/netip"
	"strings"
)

// RedactedOctet replaces the host-identifying octet of an anonymized IPv4 label
const RedactedOctet = "X"

// AnonymizeIP redacts the last octet of a dotted-quad IPv4 label.
// IPv6, already-redacted and malformed labels are returned unchanged.
func AnonymizeIP(label string) string {
	addr, err := netip.ParseAddr(label)
	if err != nil || !addr.Is4() {
		return label
	}
	i := strings.LastIndexByte(label, '.')
	return label[:i+1] + RedactedOctet
}
