package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attachbridge/internal/config"
	"attachbridge/internal/logging"
)

func freeAddr(t *testing.T) (string, int) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return ln.Addr().String(), port
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, "attachbridge version dev\n", out.String())
}

func TestStatusCmd_NotRunning(t *testing.T) {
	_, port := freeAddr(t)
	t.Setenv("PORT", strconv.Itoa(port))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"status"})

	err := cmd.Execute()
	assert.ErrorIs(t, err, errNotRunning)
	assert.Contains(t, out.String(), "not running on 127.0.0.1:"+strconv.Itoa(port))
}

func TestStatusCmd_BadConfig(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"status", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	assert.Error(t, cmd.Execute())
}

type lines struct {
	mu  sync.Mutex
	buf []string
}

func (l *lines) sink(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buf = append(l.buf, line)
}

func (l *lines) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.buf, "\n")
}

func TestRunServe(t *testing.T) {
	addr, port := freeAddr(t)

	cfg := config.Defaults()
	cfg.Server.Port = port
	cfg.OutputDir = t.TempDir()
	cfg.Automation.Platform = "plan9"

	rec := &lines{}
	logger := logging.New(cfg.Log, io.Discard, rec.sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, logger) }()

	require.Eventually(t, func() bool {
		var out bytes.Buffer
		return runStatus(context.Background(), &out, addr) == nil &&
			strings.Contains(out.String(), "Outlook Auto Attach Server is running")
	}, 5*time.Second, 20*time.Millisecond)

	resp, err := http.Post("http://"+addr+"/attach", "application/json", strings.NewReader(`{"filePath":"`+filepath.Join(t.TempDir(), "gone.pdf")+`"}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	// a second instance backs off
	second := &lines{}
	require.NoError(t, runServe(context.Background(), cfg, logging.New(cfg.Log, io.Discard, second.sink)))
	assert.Contains(t, second.String(), `msg="server already running"`)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}

	assert.Contains(t, rec.String(), "platform=Plan9")
	assert.Contains(t, rec.String(), `msg="server stopped"`)
}

func TestRootCmd_ServesByDefault(t *testing.T) {
	addr, port := freeAddr(t)
	dir := t.TempDir()
	mirror := filepath.Join(dir, "bridge.log")
	cfgPath := filepath.Join(dir, "attachbridge.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(
		"server:\n  port: %d\noutputDir: %s\nautomation:\n  platform: plan9\n", port, filepath.Join(dir, "out"),
	)), 0o600))

	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"--config", cfgPath, "--log-mirror", mirror})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return runStatus(context.Background(), io.Discard, addr) == nil
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("root command did not stop")
	}

	logged, err := os.ReadFile(mirror)
	require.NoError(t, err)
	assert.Contains(t, string(logged), `msg="server started"`)
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"bogus"})

	assert.Error(t, cmd.Execute())
}

func TestFileSink(t *testing.T) {
	var buf bytes.Buffer
	sink := fileSink(&buf)
	sink("one")
	sink("two\n")
	assert.Equal(t, "one\ntwo\n", buf.String())
}
