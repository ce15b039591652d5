package collector

import (
	"strconv"
	"strings"

	"dockerdash/internal/domain"
)

// splitHostPort splits "ip:port" at the last colon. Bracketed IPv6 hosts
// lose their brackets. An unparseable port such as "*" becomes 0.
func splitHostPort(addr string) (string, domain.Port) {
	i := strings.LastIndex(addr, ":")
	if i < 0 {
		return addr, 0
	}
	host := strings.TrimSuffix(strings.TrimPrefix(addr[:i], "["), "]")
	port, err := strconv.Atoi(addr[i+1:])
	if err != nil {
		return host, 0
	}
	return host, domain.Port(port)
}
