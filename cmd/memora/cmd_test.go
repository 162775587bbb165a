package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-memora/pkg/prompt"
)

type scriptedDriver struct {
	inputs    []string
	passwords []string
	selects   []int
	infos     []string
}

func (d *scriptedDriver) Text(_ context.Context, p prompt.TextPrompt) (string, error) {
	queue := &d.inputs
	if p.Secret {
		queue = &d.passwords
	}
	if len(*queue) == 0 {
		return "", errors.New("no answer scripted for " + p.Label)
	}
	val := (*queue)[0]
	*queue = (*queue)[1:]
	return val, nil
}

func (d *scriptedDriver) Choose(context.Context, prompt.ChoicePrompt) (int, error) {
	if len(d.selects) == 0 {
		return -1, errors.New("no choice scripted")
	}
	val := d.selects[0]
	d.selects = d.selects[1:]
	return val, nil
}

func (d *scriptedDriver) Pick(context.Context, prompt.PickPrompt) ([]int, error) {
	return nil, errors.New("no pick scripted")
}

func (d *scriptedDriver) Paths(context.Context, prompt.PathPrompt) ([]string, error) {
	return nil, errors.New("no paths scripted")
}

func (d *scriptedDriver) Show(_ context.Context, msg string) error {
	d.infos = append(d.infos, msg)
	return nil
}

// isolate points config and session storage at a temp dir.
func isolate(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("MEMORA_SESSION_PATH", filepath.Join(dir, "session.json"))
	t.Setenv("MEMORA_SESSION_DELAY", "false")
}

func run(t *testing.T, driver prompt.Driver, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	if driver == nil {
		driver = &scriptedDriver{}
	}
	root := newRootCmd(&out, driver)
	root.SetArgs(append(args, "--plain"))
	err := root.Execute()
	return out.String(), err
}

func TestSessionCommands(t *testing.T) {
	isolate(t)

	out, err := run(t, nil, "login", "--email", "ada@example.com", "--password", "secret1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as ada") {
		t.Fatalf("unexpected login output %q", out)
	}

	out, err = run(t, nil, "whoami")
	if err != nil || !strings.Contains(out, "ada <ada@example.com>") {
		t.Fatalf("whoami: %q %v", out, err)
	}

	if _, err := run(t, nil, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	out, _ = run(t, nil, "whoami")
	if !strings.Contains(out, "Not signed in") {
		t.Fatalf("expected signed out, got %q", out)
	}
}

func TestLoginPromptsForMissingFlags(t *testing.T) {
	isolate(t)

	driver := &scriptedDriver{inputs: []string{"bo@example.com"}, passwords: []string{"pw"}}
	out, err := run(t, driver, "login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Signed in as bo") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegisterShowsFailureMessage(t *testing.T) {
	isolate(t)

	_, err := run(t, nil, "register", "--name", "Ada", "--email", "ada@example.com", "--password", "123")
	if err == nil || err.Error() != "Password must be at least 6 characters" {
		t.Fatalf("expected password message, got %v", err)
	}
}

func TestAlbumRequiresSignIn(t *testing.T) {
	isolate(t)

	if _, err := run(t, nil, "album"); err == nil || !strings.Contains(err.Error(), "memora login") {
		t.Fatalf("expected sign-in error, got %v", err)
	}
}

func TestAlbumCancel(t *testing.T) {
	isolate(t)
	if _, err := run(t, nil, "login", "--email", "ada@example.com", "--password", "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}

	driver := &scriptedDriver{inputs: []string{"Trip", ""}, selects: []int{1}}
	out, err := run(t, driver, "album")
	if err != nil {
		t.Fatalf("album: %v", err)
	}
	if !strings.Contains(out, "Cancelled, nothing was submitted.") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAlbumsCommand(t *testing.T) {
	isolate(t)

	out, err := run(t, nil, "albums")
	if err != nil {
		t.Fatalf("albums: %v", err)
	}
	for _, want := range []string{"Your Albums", "Summer Memories", "Completed", "Birthday Celebration", "In Progress"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	out, err = run(t, nil, "albums", "album_demo_1")
	if err != nil || !strings.Contains(out, "Summer Memories") {
		t.Fatalf("album detail: %q %v", out, err)
	}

	if _, err := run(t, nil, "albums", "missing"); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestConfigShow(t *testing.T) {
	isolate(t)
	t.Setenv("MEMORA_GATEWAY_LATENCY", "2s")

	out, err := run(t, nil, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{"flow_ttl: 30m0s", "latency: 2s", "mode: mock"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestInvalidConfigFails(t *testing.T) {
	isolate(t)
	t.Setenv("MEMORA_GATEWAY_MODE", "carrier-pigeon")

	if _, err := run(t, nil, "albums"); err == nil || !strings.Contains(err.Error(), "gateway.mode") {
		t.Fatalf("expected gateway.mode validation error, got %v", err)
	}
}
