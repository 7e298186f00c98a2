package cli

import (
	"bufio"
	"bytes"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCmd(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

// startFakeClamd serves PING/VERSION on a Unix socket for check tests.
func startFakeClamd(t *testing.T) string {
	t.Helper()

	sock := filepath.Join(t.TempDir(), "clamd.sock")
	ln, err := net.Listen("unix", sock)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(conn net.Conn) {
				defer conn.Close()
				cmd, err := bufio.NewReader(conn).ReadString('\x00')
				if err != nil {
					return
				}
				switch cmd {
				case "zPING\x00":
					conn.Write([]byte("PONG\x00"))
				case "zVERSION\x00":
					conn.Write([]byte("ClamAV 1.3.1/test\x00"))
				}
			}(conn)
		}
	}()

	return sock
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCmd("version")
	require.NoError(t, err)
	assert.Contains(t, out, "clamtap version dev")
}

func TestCheckCommand(t *testing.T) {
	sock := startFakeClamd(t)

	out, err := executeCmd("check", "--clamd-socket", sock)
	require.NoError(t, err)
	assert.Contains(t, out, "clamd reachable")
	assert.Contains(t, out, "ClamAV 1.3.1/test")
}

func TestCheckCommand_Unreachable(t *testing.T) {
	sock := filepath.Join(t.TempDir(), "missing.sock")

	out, err := executeCmd("check", "--clamd-socket", sock)
	assert.Error(t, err)
	assert.Contains(t, out, "cannot reach clamd")
}

func TestRunCommand_RequiresUpstream(t *testing.T) {
	_, err := executeCmd("run", "--upstream", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream URL is required")
}

func TestRootHelp(t *testing.T) {
	out, err := executeCmd("--help")
	require.NoError(t, err)
	assert.Contains(t, out, "clamtap")
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "check")
}
