package mmtf_test

import (
	"testing"

	"github.com/andrew-torda/mmtf/pkg/mmtf"
	"github.com/andrew-torda/mmtf/pkg/mmtferr"
	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type bond struct {
	a1, a2 int32
	order  int8
}

// allBonds lists every bond with global atom indices. Bonds inside
// groups come first, in the order the groups are walked, then the
// global list.
func allBonds(sd *mmtf.StructureData) []bond {
	var out []bond
	var off int32
	for _, gt := range sd.GroupTypeList {
		g := &sd.GroupList[gt]
		for i := range g.BondOrderList {
			out = append(out, bond{off + g.BondAtomList[2*i], off + g.BondAtomList[2*i+1],
				g.BondOrderList[i]})
		}
		off += int32(g.NumAtoms())
	}
	for i := range sd.BondOrderList {
		out = append(out, bond{sd.BondAtomList[2*i], sd.BondAtomList[2*i+1], sd.BondOrderList[i]})
	}
	return out
}

func clearBonds(sd *mmtf.StructureData) {
	for i := range sd.GroupList {
		g := &sd.GroupList[i]
		g.BondAtomList, g.BondOrderList, g.BondResonanceList = nil, nil, nil
	}
	sd.BondAtomList, sd.BondOrderList, sd.BondResonanceList = nil, nil, nil
	sd.NumBonds = 0
}

func TestExpand(t *testing.T) {
	sd := testStructure()
	mmtf.ExpandGroupList(sd)
	if len(sd.GroupList) != nGroupFixture {
		t.Fatalf("want %d group types, got %d", nGroupFixture, len(sd.GroupList))
	}
	seen := make(map[int32]bool)
	for _, gt := range sd.GroupTypeList {
		if seen[gt] {
			t.Fatalf("group type %d still used twice in %v", gt, sd.GroupTypeList)
		}
		seen[gt] = true
	}
	require.NoError(t, sd.Check(mmtf.ChainNameMaxLength))

	// A bond added to one copy must not turn up in the other.
	sd.GroupList[sd.GroupTypeList[2]].BondOrderList[0] = 2
	if sd.GroupList[sd.GroupTypeList[0]].BondOrderList[0] != 1 {
		t.Error("expanded group types share storage")
	}
}

// Take the bonds out, put them back one at a time and compress. We
// should end where we started.
func TestBondAdderRebuild(t *testing.T) {
	orig := testStructure()
	sd := testStructure()
	mmtf.ExpandGroupList(sd)
	bonds := allBonds(sd)
	if len(bonds) != int(orig.NumBonds) {
		t.Fatalf("found %d bonds, numBonds is %d", len(bonds), orig.NumBonds)
	}
	clearBonds(sd)
	ba, err := mmtf.NewBondAdder(sd)
	require.NoError(t, err)
	if ba.NumAtoms() != nAtomFixture {
		t.Errorf("bond adder sees %d atoms", ba.NumAtoms())
	}
	nIntra := 0
	for _, b := range bonds {
		intra, err := ba.Add(b.a1, b.a2, b.order)
		require.NoError(t, err)
		if intra {
			nIntra++
		}
	}
	if nIntra != 11 {
		t.Errorf("%d bonds went into groups, want 11", nIntra)
	}
	if sd.NumBonds != orig.NumBonds {
		t.Errorf("numBonds %d, want %d", sd.NumBonds, orig.NumBonds)
	}
	mmtf.CompressGroupList(sd)
	if diff := cmp.Diff(orig, sd, equateEmpty); diff != "" {
		t.Errorf("rebuilt structure differs (-want +got):\n%s", diff)
	}
}

func TestBondAdderRefuses(t *testing.T) {
	if _, err := mmtf.NewBondAdder(testStructure()); err == nil {
		t.Error("bond adder accepted shared group types")
	} else {
		var ee *mmtferr.EncodeError
		if !errors.As(err, &ee) {
			t.Errorf("want EncodeError, got %T", err)
		}
	}
	sd := testStructure()
	mmtf.ExpandGroupList(sd)
	sd.GroupTypeList[1] = 9
	if _, err := mmtf.NewBondAdder(sd); err == nil {
		t.Error("bond adder accepted a group type outside groupList")
	}

	sd = testStructure()
	mmtf.ExpandGroupList(sd)
	ba, err := mmtf.NewBondAdder(sd)
	require.NoError(t, err)
	for _, pair := range [][2]int32{{0, nAtomFixture}, {-1, 3}} {
		if _, err := ba.Add(pair[0], pair[1], 1); err == nil {
			t.Errorf("bond %v accepted", pair)
		}
	}
	if sd.NumBonds != 13 || len(sd.BondAtomList) != 4 {
		t.Error("failed Add changed the structure")
	}
}

// wantEncodeError checks err is an EncodeError and that sd still
// matches want.
func wantEncodeError(t *testing.T, what string, err error, want, sd *mmtf.StructureData) {
	t.Helper()
	var ee *mmtferr.EncodeError
	if !errors.As(err, &ee) {
		t.Errorf("%s: want EncodeError, got %v", what, err)
	}
	if diff := cmp.Diff(want, sd, equateEmpty); diff != "" {
		t.Errorf("%s: structure changed (-want +got):\n%s", what, diff)
	}
}

var badBonds = []struct {
	name           string
	a1, a2         int32
	order, res     int8
	resonant       bool
	keepResonances bool // start from a structure with resonances everywhere
}{
	{"order zero", 0, 2, 0, 0, false, false},
	{"order seven", 0, 3, 7, 0, false, false},
	{"negative order", 14, 15, -1, 0, false, false},
	{"resonant order zero", 14, 15, 0, 0, true, true},
	{"resonance two", 0, 2, 1, 2, true, true},
	{"resonance minus two", 14, 15, 1, -2, true, true},
	{"resonance on group without", 0, 2, 1, 0, true, false},
	{"resonance on global without", 14, 15, 1, 0, true, false},
	{"no resonance on group with", 0, 2, 1, 0, false, true},
	{"no resonance on global with", 14, 15, 1, 0, false, true},
}

// withResonances gives every bond in sd a resonance of 0.
func withResonances(sd *mmtf.StructureData) {
	for i := range sd.GroupList {
		g := &sd.GroupList[i]
		g.BondResonanceList = make([]int8, len(g.BondOrderList))
	}
	sd.BondResonanceList = make([]int8, len(sd.BondOrderList))
}

func TestBondAdderBadValues(t *testing.T) {
	for _, bb := range badBonds {
		sd := testStructure()
		mmtf.ExpandGroupList(sd)
		if bb.keepResonances {
			withResonances(sd)
		}
		require.NoError(t, sd.Check(mmtf.ChainNameMaxLength), bb.name)
		want := testStructure()
		mmtf.ExpandGroupList(want)
		if bb.keepResonances {
			withResonances(want)
		}
		ba, err := mmtf.NewBondAdder(sd)
		require.NoError(t, err)
		if bb.resonant {
			_, err = ba.AddResonant(bb.a1, bb.a2, bb.order, bb.res)
		} else {
			_, err = ba.Add(bb.a1, bb.a2, bb.order)
		}
		wantEncodeError(t, bb.name, err, want, sd)
	}
}

// Whatever sequence of calls succeeds, the result must still pass Check.
func TestBondAdderInStep(t *testing.T) {
	sd := testStructure()
	mmtf.ExpandGroupList(sd)
	withResonances(sd)
	ba, err := mmtf.NewBondAdder(sd)
	require.NoError(t, err)
	_, err = ba.AddResonant(14, 15, 1, 1)
	require.NoError(t, err)
	_, err = ba.AddResonant(0, 2, 4, -1)
	require.NoError(t, err)
	require.NoError(t, sd.Check(mmtf.ChainNameMaxLength))
	if sd.NumBonds != 15 {
		t.Errorf("numBonds %d, want 15", sd.NumBonds)
	}

	// A group with atoms in its bond list but no orders cannot take an
	// ordered bond.
	sd = testStructure()
	mmtf.ExpandGroupList(sd)
	sd.GroupList[sd.GroupTypeList[0]].BondOrderList = nil
	require.NoError(t, sd.Check(mmtf.ChainNameMaxLength))
	want := testStructure()
	mmtf.ExpandGroupList(want)
	want.GroupList[want.GroupTypeList[0]].BondOrderList = nil
	ba, err = mmtf.NewBondAdder(sd)
	require.NoError(t, err)
	_, err = ba.Add(0, 2, 1)
	wantEncodeError(t, "group without orders", err, want, sd)

	// Plain and resonant bonds do not mix.
	sd = testStructure()
	mmtf.ExpandGroupList(sd)
	clearBonds(sd)
	ba, err = mmtf.NewBondAdder(sd)
	require.NoError(t, err)
	_, err = ba.AddResonant(14, 15, 1, 0)
	require.NoError(t, err)
	_, err = ba.Add(15, 14, 1)
	require.Error(t, err)
	require.NoError(t, sd.Check(mmtf.ChainNameMaxLength))
}

func TestAddResonant(t *testing.T) {
	sd := testStructure()
	mmtf.ExpandGroupList(sd)
	clearBonds(sd)
	ba, err := mmtf.NewBondAdder(sd)
	require.NoError(t, err)

	intra, err := ba.AddResonant(6, 7, 1, 1) // inside the glycine
	require.NoError(t, err)
	if !intra {
		t.Error("CA-C of one residue should be a group bond")
	}
	g := sd.GroupList[sd.GroupTypeList[1]]
	if len(g.BondAtomList) != 2 || g.BondAtomList[0] != 1 || g.BondAtomList[1] != 2 {
		t.Errorf("group bond atoms %v, want [1 2]", g.BondAtomList)
	}
	if len(g.BondResonanceList) != 1 || g.BondResonanceList[0] != 1 {
		t.Errorf("group resonances %v", g.BondResonanceList)
	}

	intra, err = ba.AddResonant(14, 15, 1, -1) // between the waters
	require.NoError(t, err)
	if intra {
		t.Error("a bond between two groups went into a group")
	}
	if len(sd.BondResonanceList) != 1 || sd.BondResonanceList[0] != -1 {
		t.Errorf("global resonances %v", sd.BondResonanceList)
	}
	if sd.NumBonds != 2 {
		t.Errorf("numBonds %d, want 2", sd.NumBonds)
	}
	require.NoError(t, sd.Check(mmtf.ChainNameMaxLength))
}

func TestCompress(t *testing.T) {
	sd := testStructure()
	extra := hoh()
	extra.GroupName = "DOD"
	sd.GroupList = append(sd.GroupList, extra)
	mmtf.CompressGroupList(sd)
	if len(sd.GroupList) != 4 {
		t.Errorf("unused but unique group type removed, %d left", len(sd.GroupList))
	}

	sd = testStructure()
	mmtf.ExpandGroupList(sd)
	mmtf.CompressGroupList(sd)
	once := testStructure()
	if diff := cmp.Diff(once, sd, equateEmpty); diff != "" {
		t.Errorf("expand then compress differs (-want +got):\n%s", diff)
	}
	mmtf.CompressGroupList(sd)
	if diff := cmp.Diff(once, sd, equateEmpty); diff != "" {
		t.Errorf("second compress changed something (-want +got):\n%s", diff)
	}

	// Two waters that differ stay apart.
	sd = testStructure()
	mmtf.ExpandGroupList(sd)
	sd.GroupList[sd.GroupTypeList[4]].FormalChargeList[0] = -1
	mmtf.CompressGroupList(sd)
	if len(sd.GroupList) != 4 {
		t.Errorf("want 4 group types, got %d", len(sd.GroupList))
	}
	if sd.GroupTypeList[3] == sd.GroupTypeList[4] {
		t.Error("different waters merged")
	}
}

func TestGroupEqual(t *testing.T) {
	a, b := ala(), ala()
	if !a.Equal(&b) {
		t.Fatal("two alanines differ")
	}
	b.BondOrderList[2] = 1
	if a.Equal(&b) {
		t.Error("bond order change not seen")
	}
	b = ala()
	b.SingleLetterCode = 'X'
	if a.Equal(&b) {
		t.Error("letter code change not seen")
	}
	if a.NumAtoms() != 5 || a.NumBonds() != 4 {
		t.Errorf("alanine has %d atoms %d bonds", a.NumAtoms(), a.NumBonds())
	}
}
