package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/andrew-torda/mmtf/pkg/mmtf"
	"github.com/andrew-torda/mmtf/pkg/zwrap"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// twoWaters is the smallest structure worth printing.
func twoWaters() *mmtf.StructureData {
	sd := mmtf.NewStructureData()
	sd.StructureID = "2WAT"
	sd.Title = "two waters"
	sd.GroupList = []mmtf.GroupType{{
		FormalChargeList: []int32{0},
		AtomNameList:     []string{"O"},
		ElementList:      []string{"O"},
		GroupName:        "HOH",
		SingleLetterCode: '?',
		ChemCompType:     "NON-POLYMER",
	}}
	sd.GroupTypeList = []int32{0, 0}
	sd.GroupIDList = []int32{1, 2}
	sd.XCoordList = []float32{1.25, 2.5}
	sd.YCoordList = []float32{0, 0}
	sd.ZCoordList = []float32{0, 0}
	sd.ChainIDList = []string{"W"}
	sd.GroupsPerChain = []int32{2}
	sd.ChainsPerModel = []int32{1}
	sd.NumAtoms, sd.NumGroups, sd.NumChains, sd.NumModels = 2, 2, 1, 1
	return sd
}

// files writes a good file and a junk one.
func files(t *testing.T) (dir, good, junk string) {
	t.Helper()
	dir = t.TempDir()
	good = filepath.Join(dir, "2wat.mmtf")
	junk = filepath.Join(dir, "junk.mmtf")
	require.NoError(t, mmtf.EncodeFile(twoWaters(), good, mmtf.DefaultEncodeOptions(), false))
	require.NoError(t, os.WriteFile(junk, []byte("nothing here"), 0o600))
	return dir, good, junk
}

func run(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	err := execute(args, &out, &errOut)
	return out.String() + errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, err := run("--help")
	require.NoError(t, err)
	for _, s := range []string{"Usage:", "Available Commands:", "recode", "scan", "--log"} {
		if !strings.Contains(out, s) {
			t.Errorf("help does not mention %q", s)
		}
	}
}

func TestUsage(t *testing.T) {
	for _, args := range [][]string{
		{"print"},
		{"recode", "a"},
		{"info"},
		{"print", "--nonsense", "x"},
	} {
		_, err := run(args...)
		if !errors.Is(err, errUsage) {
			t.Errorf("%v: want usage error, got %v", args, err)
		}
	}
}

func TestInfo(t *testing.T) {
	_, good, junk := files(t)
	out, err := run("info", good)
	require.NoError(t, err)
	for _, s := range []string{`"2WAT"`, `"two waters"`, "atoms 2", "chains 1"} {
		if !strings.Contains(out, s) {
			t.Errorf("info output lacks %s:\n%s", s, out)
		}
	}
	_, err = run("info", good, junk)
	if !errors.Is(err, errFound) {
		t.Errorf("junk file gave %v", err)
	}
}

func TestCheck(t *testing.T) {
	dir, good, junk := files(t)
	out, err := run("check", good)
	require.NoError(t, err)
	if !strings.Contains(out, "ok") {
		t.Errorf("check output %q", out)
	}

	logFile := filepath.Join(dir, "check.log")
	_, err = run("--log", logFile, "check", good, junk)
	if !errors.Is(err, errFound) {
		t.Fatalf("want errFound, got %v", err)
	}
	logged, err := os.ReadFile(logFile)
	require.NoError(t, err)
	if !strings.Contains(string(logged), "check failed") || !strings.Contains(string(logged), "junk.mmtf") {
		t.Errorf("log file has %q", logged)
	}
}

func TestPrint(t *testing.T) {
	_, good, _ := files(t)
	out, err := run("print", "--delim", ",", good)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %q", out)
	}
	if !strings.HasPrefix(lines[0], "HETATM,.,O,.,HOH,.,1,.,   1.250,") {
		t.Errorf("first line %q", lines[0])
	}
}

// Flags can come from the environment or a config file.
func TestConfig(t *testing.T) {
	dir, good, _ := files(t)
	t.Setenv("MMTF_DELIM", ";")
	out, err := run("print", good)
	require.NoError(t, err)
	if !strings.HasPrefix(out, "HETATM;") {
		t.Errorf("environment ignored: %q", out)
	}
	out, err = run("print", "--delim", "|", good)
	require.NoError(t, err)
	if !strings.HasPrefix(out, "HETATM|") {
		t.Errorf("command line should beat environment: %q", out)
	}

	t.Setenv("MMTF_DELIM", "")
	os.Unsetenv("MMTF_DELIM")
	cfg := filepath.Join(dir, "mmtf.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("delim: \":\"\nlossy: true\n"), 0o600))
	out, err = run("--config", cfg, "print", good)
	require.NoError(t, err)
	if !strings.HasPrefix(out, "HETATM:") {
		t.Errorf("config file ignored: %q", out)
	}
	_, err = run("--config", filepath.Join(dir, "missing.yaml"), "print", good)
	if !errors.Is(err, errUsage) {
		t.Errorf("missing config file gave %v", err)
	}
}

func TestRecode(t *testing.T) {
	dir, good, _ := files(t)
	out := filepath.Join(dir, "out.mmtf.gz")
	_, err := run("recode", "--lossy", "--compress", good, out)
	require.NoError(t, err)
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	if !zwrap.IsGzip(raw) {
		t.Error("--compress did not compress")
	}
	sd, err := mmtf.DecodeFile(out)
	require.NoError(t, err)
	if sd.XCoordList[0] != 1.2 && sd.XCoordList[0] != 1.3 {
		t.Errorf("lossy x %g", sd.XCoordList[0])
	}

	plain := filepath.Join(dir, "out.mmtf")
	_, err = run("recode", "--coord-divider", "4", good, plain)
	require.NoError(t, err)
	sd, err = mmtf.DecodeFile(plain)
	require.NoError(t, err)
	if sd.XCoordList[0] != 1.25 {
		t.Errorf("x %g with divider 4", sd.XCoordList[0])
	}

	_, err = run("recode", "--coord-divider", "0", good, plain)
	if !errors.Is(err, errUsage) {
		t.Errorf("zero divider gave %v", err)
	}
}

func TestScan(t *testing.T) {
	dir, _, _ := files(t)
	out, err := run("scan", "-r", "2", dir)
	if !errors.Is(err, errFound) {
		t.Fatalf("junk file should be reported, got %v", err)
	}
	if !strings.Contains(out, "files 2 failed 1") || !strings.Contains(out, "junk.mmtf") {
		t.Errorf("scan output %q", out)
	}
}

func TestLogWhere(t *testing.T) {
	var buf bytes.Buffer
	log, done, err := logWhere("stdout", &buf)
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, done())
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("nothing logged, got %q", buf.String())
	}
	if _, _, err := logWhere(filepath.Join(t.TempDir(), "no", "such", "dir"), &buf); err == nil {
		t.Error("no error for a log file we cannot create")
	}
}

func TestFetch(t *testing.T) {
	dir, good, _ := files(t)
	body, err := os.ReadFile(good)
	require.NoError(t, err)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2WAT" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	out, err := run("fetch", "--base", srv.URL+"/", "2wat")
	require.NoError(t, err)
	if !strings.Contains(out, "two waters") {
		t.Errorf("fetch summary %q", out)
	}
	saved := filepath.Join(dir, "fetched.mmtf")
	_, err = run("fetch", "--base", srv.URL+"/", "2wat", saved)
	require.NoError(t, err)
	sd, err := mmtf.DecodeFile(saved)
	require.NoError(t, err)
	if sd.StructureID != "2WAT" {
		t.Errorf("saved file has id %q", sd.StructureID)
	}
	if _, err := run("fetch", "--base", srv.URL+"/", "9zzz"); err == nil {
		t.Error("no error for a missing entry")
	}
}
