package source

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/lox/gdpdash/internal/metrics"
)

// ftpResponder is a single-session FTP server that serves one file over an
// extended passive data connection.
type ftpResponder struct {
	ln    net.Listener
	files map[string]string
	done  chan struct{}

	mu       sync.Mutex
	commands []string
}

func startFTPResponder(t *testing.T, files map[string]string) *ftpResponder {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	r := &ftpResponder{ln: ln, files: files, done: make(chan struct{})}
	t.Cleanup(func() { ln.Close() })
	go r.serve()
	return r
}

func (r *ftpResponder) Addr() string { return r.ln.Addr().String() }

// Commands waits for the session to end and returns the verbs it received.
func (r *ftpResponder) Commands(t *testing.T) []string {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("ftp session did not end")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.commands...)
}

func (r *ftpResponder) serve() {
	defer close(r.done)
	conn, err := r.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	reply := func(format string, args ...any) {
		fmt.Fprintf(conn, format+"\r\n", args...)
	}
	var data net.Listener
	defer func() {
		if data != nil {
			data.Close()
		}
	}()

	reply("220 gdpdash test server")
	rd := bufio.NewReader(conn)
	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimRight(line, "\r\n")
		verb, arg, _ := strings.Cut(line, " ")
		verb = strings.ToUpper(verb)

		r.mu.Lock()
		r.commands = append(r.commands, verb)
		r.mu.Unlock()

		switch verb {
		case "USER":
			reply("331 password required")
		case "PASS":
			if arg != "secret" && arg != "anonymous" {
				reply("530 login incorrect")
				continue
			}
			reply("230 logged in")
		case "TYPE":
			reply("200 type set")
		case "EPSV":
			data, err = net.Listen("tcp", "127.0.0.1:0")
			if err != nil {
				reply("425 cannot open data connection")
				continue
			}
			reply("229 Entering Extended Passive Mode (|||%d|)", data.Addr().(*net.TCPAddr).Port)
		case "RETR":
			body, ok := r.files[arg]
			if !ok || data == nil {
				reply("550 no such file")
				continue
			}
			reply("150 opening data connection")
			dc, err := data.Accept()
			if err != nil {
				return
			}
			io.WriteString(dc, body)
			dc.Close()
			reply("226 transfer complete")
		case "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 command not implemented")
		}
	}
}

func counterValue(t *testing.T, scheme, status string) float64 {
	t.Helper()
	var m dto.Metric
	if err := metrics.SourceFetchTotal.WithLabelValues(scheme, status).Write(&m); err != nil {
		t.Fatal(err)
	}
	return m.GetCounter().GetValue()
}

func TestFTP_Open(t *testing.T) {
	csv := "GEO,NA_ITEM,UNIT,TIME,Value\nFrance,GDP,EUR,2019,100\n"
	srv := startFTPResponder(t, map[string]string{"/pub/gdp.csv": csv})

	u, _ := url.Parse("ftp://user:secret@" + srv.Addr() + "/pub/gdp.csv")
	f := NewFTP(u)
	f.Timeout = 5 * time.Second

	rc, err := f.Open(context.Background())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	b, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := rc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if string(b) != csv {
		t.Errorf("body = %q, want %q", b, csv)
	}

	cmds := strings.Join(srv.Commands(t), " ")
	for _, want := range []string{"USER PASS", "RETR", "QUIT"} {
		if !strings.Contains(cmds, want) {
			t.Errorf("commands %q missing %q", cmds, want)
		}
	}
	if strings.Index(cmds, "RETR") > strings.Index(cmds, "QUIT") {
		t.Errorf("QUIT sent before RETR finished: %q", cmds)
	}
}

func TestFTP_OpenMissingFile(t *testing.T) {
	srv := startFTPResponder(t, nil)

	u, _ := url.Parse("ftp://" + srv.Addr() + "/pub/missing.csv")
	f := NewFTP(u)
	f.Timeout = 5 * time.Second

	_, err := f.Open(context.Background())
	if err == nil || !strings.Contains(err.Error(), "ftp retr:") {
		t.Fatalf("err = %v, want ftp retr error", err)
	}
}

func TestFTP_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	before := counterValue(t, "ftp", "error")

	f := &FTP{Addr: addr, Path: "/gdp.csv", User: "anonymous", Password: "anonymous", Timeout: time.Second}
	_, err = f.Open(context.Background())
	if err == nil || !strings.HasPrefix(err.Error(), "ftp dial:") {
		t.Fatalf("err = %v, want ftp dial error", err)
	}
	if got := counterValue(t, "ftp", "error"); got != before+1 {
		t.Errorf("ftp error count = %v, want %v", got, before+1)
	}
}
