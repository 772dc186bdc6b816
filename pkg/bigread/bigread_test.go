package bigread_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/andrew-torda/mmtf/pkg/bigread"
	"github.com/andrew-torda/mmtf/pkg/mmtf"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// waters gives n water molecules in one chain.
func waters(n int) *mmtf.StructureData {
	sd := mmtf.NewStructureData()
	sd.GroupList = []mmtf.GroupType{{
		FormalChargeList: []int32{0},
		AtomNameList:     []string{"O"},
		ElementList:      []string{"O"},
		GroupName:        "HOH",
		SingleLetterCode: '?',
		ChemCompType:     "NON-POLYMER",
	}}
	for i := 0; i < n; i++ {
		sd.GroupTypeList = append(sd.GroupTypeList, 0)
		sd.GroupIDList = append(sd.GroupIDList, int32(i+1))
		sd.XCoordList = append(sd.XCoordList, float32(i))
		sd.YCoordList = append(sd.YCoordList, 0)
		sd.ZCoordList = append(sd.ZCoordList, 0)
	}
	sd.ChainIDList = []string{"W"}
	sd.GroupsPerChain = []int32{int32(n)}
	sd.ChainsPerModel = []int32{1}
	sd.NumAtoms, sd.NumGroups, sd.NumChains, sd.NumModels = int32(n), int32(n), 1, 1
	return sd
}

// makeTree writes good files at the top and in two subdirectories,
// plus one file that is not MMTF.
func makeTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, sub := range []string{"ab", "cd"} {
		if err := os.Mkdir(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	good := []struct {
		name     string
		n        int
		compress bool
	}{
		{"top.mmtf", 1, false},
		{"ab/1ab1.mmtf.gz", 2, true},
		{"ab/2ab2.mmtf", 3, false},
		{"cd/3cd3.mmtf.gz", 4, true},
	}
	for _, g := range good {
		err := mmtf.EncodeFile(waters(g.n), filepath.Join(dir, g.name),
			mmtf.DefaultEncodeOptions(), g.compress)
		if err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "cd", "junk.mmtf"), []byte("not msgpack"), 0o600); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestScan(t *testing.T) {
	dir := makeTree(t)
	core, logs := observer.New(zapcore.WarnLevel)
	for _, nReader := range []int{0, 1, 4} {
		res, err := bigread.Scan(context.Background(), dir,
			bigread.Options{NReader: nReader, Check: true, Log: zap.New(core)})
		if err != nil {
			t.Fatal(err)
		}
		if res.NFile != 5 || res.NFail != 1 || res.NAtom != 10 || res.NInconsistent != 0 {
			t.Errorf("readers %d: got %+v", nReader, res)
		}
		if len(res.Failed) != 1 || filepath.Base(res.Failed[0]) != "junk.mmtf" {
			t.Errorf("failed files %v", res.Failed)
		}
		if res.NByte == 0 {
			t.Error("no bytes counted")
		}
	}
	if n := logs.FilterMessage("cannot read").Len(); n != 3 {
		t.Errorf("want one warning per scan, got %d", n)
	}
}

func TestScanMaxDir(t *testing.T) {
	dir := makeTree(t)
	res, err := bigread.Scan(context.Background(), dir, bigread.Options{MaxDir: 1})
	if err != nil {
		t.Fatal(err)
	}
	if res.NFile != 3 || res.NFail != 0 || res.NAtom != 6 {
		t.Errorf("only top and ab should be read, got %+v", res)
	}
}

func TestScanErrors(t *testing.T) {
	if _, err := bigread.Scan(context.Background(), filepath.Join(t.TempDir(), "nope"),
		bigread.Options{}); err == nil {
		t.Error("no error for a missing directory")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := bigread.Scan(ctx, makeTree(t), bigread.Options{}); err == nil {
		t.Error("no error with a cancelled context")
	}
}
