package collector

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"dockerdash/internal/domain"
)

const ssOutput = `Recv-Q Send-Q Local Address:Port  Peer Address:Port Process
0      0      192.168.1.10:22     192.168.1.50:53122 users:(("sshd",pid=812,fd=4),("sshd",pid=790,fd=4))
0      0      172.17.0.1:41234    172.17.0.2:5432    users:(("app",pid=1200,fd=12))
0      0      192.168.1.10:22     192.168.1.51:60001 users:(("sshd",pid=900,fd=4))
0      0      [::ffff:10.0.0.4]:443 [::ffff:10.0.0.9]:51000 users:(("caddy",pid=77,fd=9))

`

func TestParseSS(t *testing.T) {
	procs := ParseSS([]byte(ssOutput))

	if len(procs) != 3 {
		t.Fatalf("expected 3 processes, got %d: %v", len(procs), procs)
	}

	t.Run("shared socket recorded once per process", func(t *testing.T) {
		sshd := procs["sshd"]
		if len(sshd.Connections) != 2 {
			t.Fatalf("expected 2 sshd connections, got %d", len(sshd.Connections))
		}
		if diff := cmp.Diff([]domain.Port{22}, sshd.ListenPorts); diff != "" {
			t.Errorf("listen ports mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("ephemeral local port is not a listen port", func(t *testing.T) {
		app := procs["app"]
		if len(app.ListenPorts) != 0 {
			t.Errorf("expected no listen ports, got %v", app.ListenPorts)
		}
		want := domain.Connection{
			Proto:          "tcp",
			LocalAddress:   "172.17.0.1:41234",
			LocalIP:        "172.17.0.1",
			LocalPort:      41234,
			ForeignAddress: "172.17.0.2:5432",
			ForeignIP:      "172.17.0.2",
			ForeignPort:    5432,
		}
		if diff := cmp.Diff(want, app.Connections[0]); diff != "" {
			t.Errorf("connection mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("bracketed ipv6", func(t *testing.T) {
		conn := procs["caddy"].Connections[0]
		if conn.LocalIP != "::ffff:10.0.0.4" || conn.LocalPort != 443 || conn.ForeignPort != 51000 {
			t.Errorf("unexpected connection %+v", conn)
		}
	})
}

func TestParseSSHeaderOnly(t *testing.T) {
	procs := ParseSS([]byte("Recv-Q Send-Q Local Address:Port Peer Address:Port Process\n"))
	if len(procs) != 0 {
		t.Errorf("expected no processes, got %v", procs)
	}
}

const netstatOutput = `Active Internet connections (servers and established)
Proto Recv-Q Send-Q Local Address           Foreign Address         State       PID/Program name
tcp        0      0 0.0.0.0:80              0.0.0.0:*               LISTEN      1/nginx
tcp        0      0 172.18.0.3:80           172.18.0.1:50122        ESTABLISHED 1/nginx
tcp        0      0 172.18.0.3:44110        172.18.0.4:5432         ESTABLISHED -
tcp        0      0 127.0.0.1:9000          127.0.0.1:9000          ESTABLISHED 7/php
tcp6       0      0 :::80                   :::*                    LISTEN      1/nginx
udp        0      0 172.18.0.3:41000        8.8.8.8:53                          22/resolver
Active UNIX domain sockets (servers and established)
Proto RefCnt Flags       Type       State         I-Node   PID/Program name     Path
unix  2      [ ACC ]     STREAM     LISTENING     12345    1/nginx              /run/nginx.sock
`

func TestParseNetstat(t *testing.T) {
	conns := ParseNetstat([]byte(netstatOutput))

	want := []domain.Connection{
		{
			Proto: "tcp", LocalAddress: "172.18.0.3:80", LocalIP: "172.18.0.3", LocalPort: 80,
			ForeignAddress: "172.18.0.1:50122", ForeignIP: "172.18.0.1", ForeignPort: 50122,
			State: "ESTABLISHED", Program: "1/nginx",
		},
		{
			Proto: "tcp", LocalAddress: "172.18.0.3:44110", LocalIP: "172.18.0.3", LocalPort: 44110,
			ForeignAddress: "172.18.0.4:5432", ForeignIP: "172.18.0.4", ForeignPort: 5432,
			State: "ESTABLISHED",
		},
		{
			Proto: "udp", LocalAddress: "172.18.0.3:41000", LocalIP: "172.18.0.3", LocalPort: 41000,
			ForeignAddress: "8.8.8.8:53", ForeignIP: "8.8.8.8", ForeignPort: 53,
			Program: "22/resolver",
		},
	}
	if diff := cmp.Diff(want, conns); diff != "" {
		t.Errorf("connections mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitHostPort(t *testing.T) {
	tests := []struct {
		addr     string
		wantHost string
		wantPort domain.Port
	}{
		{"10.0.0.1:80", "10.0.0.1", 80},
		{"0.0.0.0:*", "0.0.0.0", 0},
		{"[::1]:8080", "::1", 8080},
		{"noport", "noport", 0},
	}

	for _, tt := range tests {
		t.Run(tt.addr, func(t *testing.T) {
			host, port := splitHostPort(tt.addr)
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("splitHostPort(%q) = %q, %d; want %q, %d", tt.addr, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestShellJoin(t *testing.T) {
	tests := []struct {
		cmd  string
		args []string
		want string
	}{
		{"ss", ssArgs, "ss -tanp state established"},
		{"echo", []string{"a b", "it's", ""}, `echo 'a b' 'it'\''s' ''`},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			if got := shellJoin(tt.cmd, tt.args); got != tt.want {
				t.Errorf("shellJoin() = %q, want %q", got, tt.want)
			}
		})
	}
}
