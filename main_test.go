package main

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"gravity-cluster/pkg/driver"
	"gravity-cluster/pkg/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	args = append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"}, args...)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("expected JSON, got %q", out)
	}
	if got["version"] != version {
		t.Errorf("expected version %q, got %q", version, got["version"])
	}
}

func TestScenariosCmd(t *testing.T) {
	out, err := execute(t, "scenarios", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var infos []scenarioInfo
	if err := json.Unmarshal([]byte(out), &infos); err != nil {
		t.Fatalf("expected JSON list, got %q", out)
	}
	if len(infos) == 0 {
		t.Fatal("expected built-in configurations")
	}
	for _, info := range infos {
		if info.Name == "" || info.Bodies == 0 || info.G <= 0 {
			t.Errorf("unexpected entry %+v", info)
		}
	}

	text, err := execute(t, "scenarios")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, infos[0].Name) {
		t.Errorf("expected %q in listing, got %q", infos[0].Name, text)
	}
}

func TestHeadlessCmd(t *testing.T) {
	out, err := execute(t, "headless", "--scenario", "Binary star", "--steps", "200", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var s driver.Snapshot
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("expected snapshot JSON, got %q", out)
	}
	if s.Step != 200 || s.Configuration != "Binary star" || !s.Finite {
		t.Errorf("unexpected snapshot %+v", s)
	}
	if s.Running {
		t.Error("expected driver paused after a headless run")
	}
}

func TestHeadlessUnknownScenario(t *testing.T) {
	if _, err := execute(t, "headless", "--scenario", "Nope", "--steps", "1"); err == nil {
		t.Error("expected error for unknown configuration")
	}
}

func TestHeadlessRejectsNegativeSteps(t *testing.T) {
	if _, err := execute(t, "headless", "--steps", "-1"); err == nil {
		t.Error("expected error for negative steps")
	}
}

func TestRecordCmd(t *testing.T) {
	db := filepath.Join(t.TempDir(), "traj.db")
	if _, err := execute(t, "record", "--scenario", "Binary star", "--steps", "50", "--every", "10", "--db", db); err != nil {
		t.Fatal(err)
	}

	rec, err := store.Open(db)
	if err != nil {
		t.Fatal(err)
	}
	defer rec.Close()
	ctx := context.Background()
	runs, err := rec.Runs(ctx)
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run, got %v (%v)", runs, err)
	}
	if runs[0].Configuration != "Binary star" {
		t.Errorf("unexpected run %+v", runs[0])
	}
	samples, err := rec.Samples(ctx, runs[0].ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(samples) != 6 {
		t.Errorf("expected 6 samples (step 0 and every 10th), got %d", len(samples))
	}
	if samples[len(samples)-1].Step != 50 {
		t.Errorf("expected last sample at step 50, got %d", samples[len(samples)-1].Step)
	}
}

func TestInvalidConfigFromEnv(t *testing.T) {
	t.Setenv("GRAVITY_DT", "-1")
	if _, err := execute(t, "scenarios"); err == nil {
		t.Error("expected validation error")
	}
}

func TestSubcommandsRegistered(t *testing.T) {
	root := newRootCmd()
	want := []string{"run", "headless", "record", "serve", "scenarios", "version"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected subcommand %q, got %v (%v)", name, cmd, err)
		}
	}
}
