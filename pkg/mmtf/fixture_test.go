package mmtf_test

import (
	"github.com/andrew-torda/mmtf/pkg/mmtf"
)

// Three residue types, one peptide chain ALA GLY ALA and a chain with
// two waters. 16 atoms, 11 bonds inside groups and two peptide bonds in
// the global list.
// Coordinates and b-factors are chosen so they survive the default
// encoding without rounding.

func ala() mmtf.GroupType {
	return mmtf.GroupType{
		FormalChargeList: []int32{0, 0, 0, 0, 0},
		AtomNameList:     []string{"N", "CA", "C", "O", "CB"},
		ElementList:      []string{"N", "C", "C", "O", "C"},
		BondAtomList:     []int32{0, 1, 1, 2, 2, 3, 1, 4},
		BondOrderList:    []int8{1, 1, 2, 1},
		GroupName:        "ALA",
		SingleLetterCode: 'A',
		ChemCompType:     "L-PEPTIDE LINKING",
	}
}

func gly() mmtf.GroupType {
	return mmtf.GroupType{
		FormalChargeList: []int32{0, 0, 0, 0},
		AtomNameList:     []string{"N", "CA", "C", "O"},
		ElementList:      []string{"N", "C", "C", "O"},
		BondAtomList:     []int32{0, 1, 1, 2, 2, 3},
		BondOrderList:    []int8{1, 1, 2},
		GroupName:        "GLY",
		SingleLetterCode: 'G',
		ChemCompType:     "PEPTIDE LINKING",
	}
}

func hoh() mmtf.GroupType {
	return mmtf.GroupType{
		FormalChargeList: []int32{0},
		AtomNameList:     []string{"O"},
		ElementList:      []string{"O"},
		GroupName:        "HOH",
		SingleLetterCode: '?',
		ChemCompType:     "NON-POLYMER",
	}
}

const (
	nAtomFixture  = 16
	nGroupFixture = 5
)

func identity() [16]float32 {
	var m [16]float32
	for i := 0; i < 4; i++ {
		m[5*i] = 1
	}
	return m
}

// testStructure gives a fresh copy every time, so tests can break it.
func testStructure() *mmtf.StructureData {
	sd := mmtf.NewStructureData()
	sd.StructureID = "1TST"
	sd.Title = "made by hand"
	sd.SpaceGroup = "P 1"
	sd.UnitCell = []float32{10, 20, 30, 90, 90, 90}
	sd.DepositionDate = "2020-01-31"
	sd.ReleaseDate = "2020-06-30"
	sd.ExperimentalMethods = []string{"X-RAY DIFFRACTION"}
	sd.Resolution = 1.5
	id := identity()
	sd.NcsOperatorList = [][]float32{id[:]}
	sd.BioAssemblyList = []mmtf.BioAssembly{{
		Name:          "1",
		TransformList: []mmtf.Transform{{ChainIndexList: []int32{0, 1}, Matrix: identity()}},
	}}
	sd.EntityList = []mmtf.Entity{
		{ChainIndexList: []int32{0}, Description: "peptide", Type: "polymer", Sequence: "AGA"},
		{ChainIndexList: []int32{1}, Description: "water", Type: "water", Sequence: ""},
	}

	sd.GroupList = []mmtf.GroupType{ala(), gly(), hoh()}
	sd.GroupTypeList = []int32{0, 1, 0, 2, 2}
	sd.GroupIDList = []int32{1, 2, 3, 101, 102}
	sd.SecStructList = []int8{-1, -1, -1, -1, -1}
	sd.InsCodeList = []byte{' ', ' ', ' ', ' ', ' '}
	sd.SequenceIndexList = []int32{0, 1, 2, -1, -1}
	sd.GroupsPerChain = []int32{3, 2}
	sd.ChainsPerModel = []int32{2}
	sd.ChainIDList = []string{"A", "B"}
	sd.ChainNameList = []string{"A", "A"}

	sd.BondAtomList = []int32{2, 5, 7, 9}
	sd.BondOrderList = []int8{1, 1}

	for i := 0; i < nAtomFixture; i++ {
		x := float32(i)
		sd.XCoordList = append(sd.XCoordList, 1.5*x)
		sd.YCoordList = append(sd.YCoordList, -0.25*x)
		sd.ZCoordList = append(sd.ZCoordList, 10.125+0.5*x)
		sd.BFactorList = append(sd.BFactorList, 10+0.25*x)
		sd.AtomIDList = append(sd.AtomIDList, int32(i+1))
		sd.AltLocList = append(sd.AltLocList, ' ')
		sd.OccupancyList = append(sd.OccupancyList, 1)
	}
	sd.AltLocList[4] = 'A'
	sd.OccupancyList[14], sd.OccupancyList[15] = 0.5, 0.5

	sd.NumAtoms = nAtomFixture
	sd.NumGroups = nGroupFixture
	sd.NumChains = 2
	sd.NumModels = 1
	sd.NumBonds = 13

	if err := sd.ExtraProperties.Set("note", "not a real protein"); err != nil {
		panic(err)
	}
	return sd
}
