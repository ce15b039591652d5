package collector

import (
	"bufio"
	"bytes"
	"strings"

	"dockerdash/internal/domain"
)

// netstatStates are the values netstat prints in its State column
var netstatStates = map[string]bool{
	"CLOSE_WAIT":   true,
	"CLOSED":       true,
	"ESTABLISHED":  true,
	"FIN_WAIT_1":   true,
	"FIN_WAIT_2":   true,
	"LAST_ACK":     true,
	"LISTEN":       true,
	"SYN_RECEIVED": true,
	"SYN_SEND":     true,
	"TIME_WAIT":    true,
}

// ParseNetstat parses `netstat -anp` output from inside a container's network
// namespace. Loopback pairs and unconnected sockets are dropped.
func ParseNetstat(output []byte) []domain.Connection {
	conns := []domain.Connection{}

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 5 {
			continue
		}
		proto := fields[0]
		if !strings.HasPrefix(proto, "tcp") && !strings.HasPrefix(proto, "udp") {
			continue
		}

		var state, program string
		if len(fields) >= 6 {
			state = fields[5]
		}
		if len(fields) >= 7 {
			program = fields[6]
		} else if state != "" && !netstatStates[state] {
			// udp rows have no state column
			program, state = state, ""
		}
		if program == "-" {
			program = ""
		}

		localIP, localPort := netstatHostPort(fields[3])
		foreignIP, foreignPort := netstatHostPort(fields[4])
		if localIP == foreignIP || foreignIP == "0.0.0.0" {
			continue
		}

		conns = append(conns, domain.Connection{
			Proto:          proto,
			LocalAddress:   fields[3],
			LocalIP:        localIP,
			LocalPort:      localPort,
			ForeignAddress: fields[4],
			ForeignIP:      foreignIP,
			ForeignPort:    foreignPort,
			State:          state,
			Program:        program,
		})
	}

	return conns
}

// netstatHostPort collapses every IPv6 address starting with "::" to "::"
func netstatHostPort(addr string) (string, domain.Port) {
	ip, port := splitHostPort(addr)
	if strings.HasPrefix(addr, "::") {
		ip = "::"
	}
	return ip, port
}
