package collector

import (
	"bufio"
	"bytes"
	"regexp"
	"strings"

	"dockerdash/internal/domain"
)

// ephemeralPortStart is the bottom of the Linux ephemeral range. A local port
// at or above it is almost always the client side of an outbound connection.
const ephemeralPortStart = 32768

var ssProcessPattern = regexp.MustCompile(`\("([^"]+)",pid=(\d+),fd=\d+\)`)

// ssArgs lists established TCP sockets with their owning processes
var ssArgs = []string{"-tanp", "state", "established"}

// ParseSS parses `ss -tanp state established` output into processes keyed
// by name. A socket shared by several processes is recorded on each of them.
func ParseSS(output []byte) map[string]domain.Process {
	processes := make(map[string]domain.Process)
	seen := make(map[string]map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(output))
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			first = false
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}

		localIP, localPort := splitHostPort(fields[2])
		foreignIP, foreignPort := splitHostPort(fields[3])
		conn := domain.Connection{
			Proto:          "tcp",
			LocalAddress:   fields[2],
			LocalIP:        localIP,
			LocalPort:      localPort,
			ForeignAddress: fields[3],
			ForeignIP:      foreignIP,
			ForeignPort:    foreignPort,
		}
		key := conn.LocalAddress + "-" + conn.ForeignAddress

		for _, m := range ssProcessPattern.FindAllStringSubmatch(line, -1) {
			name := m[1]
			proc, ok := processes[name]
			if !ok {
				proc = domain.Process{
					ListenPorts: []domain.Port{},
					Connections: []domain.Connection{},
				}
				seen[name] = make(map[string]bool)
			}

			if !seen[name][key] {
				seen[name][key] = true
				proc.Connections = append(proc.Connections, conn)
			}
			if localPort < ephemeralPortStart && !domain.ContainsPort(proc.ListenPorts, localPort) {
				proc.ListenPorts = append(proc.ListenPorts, localPort)
			}
			processes[name] = proc
		}
	}

	return processes
}
