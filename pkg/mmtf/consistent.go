package mmtf

import (
	"github.com/pkg/errors"
)

// Largest bond order we accept (quadruple). Resonance is -1, 0 or 1.
const (
	maxBondOrder     = 4
	minBondResonance = -1
	maxBondResonance = 1
)

// HasConsistentData says if sd could be written out. It is
// Check(ChainNameMaxLength) == nil.
func (sd *StructureData) HasConsistentData() bool {
	return sd.Check(ChainNameMaxLength) == nil
}

// sizeOptional says if an optional list is unset or has n entries.
func sizeOptional(got, n int) bool { return got == 0 || got == n }

// validIndices checks that every value is in [0, n).
func validIndices(v []int32, n int) bool {
	for _, i := range v {
		if i < 0 || int(i) >= n {
			return false
		}
	}
	return true
}

// validDate accepts "" or something shaped like YYYY-MM-DD. We do not
// check that the date exists.
func validDate(s string) bool {
	if s == "" {
		return true
	}
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return false
	}
	for i, c := range []byte(s) {
		if i == 4 || i == 7 {
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// checkBonds is used for the global bond lists and for each group.
// nAtoms is the number of atoms the indices may point to.
func checkBonds(atoms []int32, orders, res []int8, nAtoms int) error {
	if len(atoms)%2 != 0 {
		return errors.Errorf("bondAtomList has odd length %d", len(atoms))
	}
	if len(orders) > 0 {
		if len(atoms) == 0 {
			return errors.New("bondOrderList set but bondAtomList empty")
		}
		if len(atoms) != 2*len(orders) {
			return errors.Errorf("bondAtomList has %d entries, want twice the %d bond orders",
				len(atoms), len(orders))
		}
	}
	if len(res) > 0 && len(res) != len(orders) {
		return errors.Errorf("%d bond resonances but %d bond orders", len(res), len(orders))
	}
	for i, o := range orders {
		if o < 1 || o > maxBondOrder {
			return errors.Errorf("bond order %d at %d not in 1..%d", o, i, maxBondOrder)
		}
	}
	for i, r := range res {
		if r < minBondResonance || r > maxBondResonance {
			return errors.Errorf("bond resonance %d at %d not -1, 0 or 1", r, i)
		}
	}
	if !validIndices(atoms, nAtoms) {
		return errors.Errorf("bond atom index outside 0..%d", nAtoms-1)
	}
	return nil
}

// Check returns nil if sd is consistent and can be encoded, otherwise
// an error naming the first problem found. Chain ids and names may be
// up to chainNameMaxLength long. sd is not changed.
func (sd *StructureData) Check(chainNameMaxLength int) error {
	if sd.NumAtoms < 0 || sd.NumGroups < 0 || sd.NumChains < 0 ||
		sd.NumModels < 0 || sd.NumBonds < 0 {
		return errors.New("negative count")
	}
	nAtom, nGroup := int(sd.NumAtoms), int(sd.NumGroups)
	nChain, nModel := int(sd.NumChains), int(sd.NumModels)

	if !sizeOptional(len(sd.UnitCell), 6) {
		return errors.Errorf("unitCell has %d values, want 6", len(sd.UnitCell))
	}
	if !validDate(sd.DepositionDate) {
		return errors.Errorf("depositionDate %q not YYYY-MM-DD", sd.DepositionDate)
	}
	if !validDate(sd.ReleaseDate) {
		return errors.Errorf("releaseDate %q not YYYY-MM-DD", sd.ReleaseDate)
	}
	for i, op := range sd.NcsOperatorList {
		if len(op) != 16 {
			return errors.Errorf("ncsOperatorList[%d] has %d values, want 16", i, len(op))
		}
	}
	for i := range sd.BioAssemblyList {
		for j, t := range sd.BioAssemblyList[i].TransformList {
			if !validIndices(t.ChainIndexList, nChain) {
				return errors.Errorf("bioAssemblyList[%d] transform %d has bad chain index", i, j)
			}
		}
	}
	owner := make(map[int32]int)
	for i, e := range sd.EntityList {
		if !validIndices(e.ChainIndexList, nChain) {
			return errors.Errorf("entityList[%d] has bad chain index", i)
		}
		for _, c := range e.ChainIndexList {
			if j, ok := owner[c]; ok && j != i {
				return errors.Errorf("chain %d in entityList[%d] and entityList[%d]", c, j, i)
			}
			owner[c] = i
		}
	}
	for i := range sd.GroupList {
		g := &sd.GroupList[i]
		n := len(g.FormalChargeList)
		if len(g.AtomNameList) != n || len(g.ElementList) != n {
			return errors.Errorf("groupList[%d] %s: %d charges, %d atom names, %d elements",
				i, g.GroupName, n, len(g.AtomNameList), len(g.ElementList))
		}
		if err := checkBonds(g.BondAtomList, g.BondOrderList, g.BondResonanceList, n); err != nil {
			return errors.WithMessagef(err, "groupList[%d] %s", i, g.GroupName)
		}
	}
	if err := checkBonds(sd.BondAtomList, sd.BondOrderList, sd.BondResonanceList, nAtom); err != nil {
		return errors.WithMessage(err, "global bonds")
	}

	perAtom := []struct {
		name     string
		n        int
		optional bool
	}{
		{"xCoordList", len(sd.XCoordList), false},
		{"yCoordList", len(sd.YCoordList), false},
		{"zCoordList", len(sd.ZCoordList), false},
		{"bFactorList", len(sd.BFactorList), true},
		{"atomIdList", len(sd.AtomIDList), true},
		{"altLocList", len(sd.AltLocList), true},
		{"occupancyList", len(sd.OccupancyList), true},
	}
	perGroup := []struct {
		name     string
		n        int
		optional bool
	}{
		{"groupIdList", len(sd.GroupIDList), false},
		{"groupTypeList", len(sd.GroupTypeList), false},
		{"secStructList", len(sd.SecStructList), true},
		{"insCodeList", len(sd.InsCodeList), true},
		{"sequenceIndexList", len(sd.SequenceIndexList), true},
	}
	for _, l := range perAtom {
		if l.n != nAtom && !(l.optional && l.n == 0) {
			return errors.Errorf("%s has %d entries, numAtoms is %d", l.name, l.n, nAtom)
		}
	}
	for _, l := range perGroup {
		if l.n != nGroup && !(l.optional && l.n == 0) {
			return errors.Errorf("%s has %d entries, numGroups is %d", l.name, l.n, nGroup)
		}
	}
	if len(sd.ChainIDList) != nChain {
		return errors.Errorf("chainIdList has %d entries, numChains is %d", len(sd.ChainIDList), nChain)
	}
	if !sizeOptional(len(sd.ChainNameList), nChain) {
		return errors.Errorf("chainNameList has %d entries, numChains is %d", len(sd.ChainNameList), nChain)
	}
	if len(sd.GroupsPerChain) != nChain {
		return errors.Errorf("groupsPerChain has %d entries, numChains is %d", len(sd.GroupsPerChain), nChain)
	}
	if len(sd.ChainsPerModel) != nModel {
		return errors.Errorf("chainsPerModel has %d entries, numModels is %d", len(sd.ChainsPerModel), nModel)
	}
	if !validIndices(sd.GroupTypeList, len(sd.GroupList)) {
		return errors.New("groupTypeList points outside groupList")
	}
	return sd.checkHierarchy(chainNameMaxLength)
}

// checkHierarchy walks models, chains and groups and checks the counts
// add up. The list sizes have already been checked.
func (sd *StructureData) checkHierarchy(chainNameMaxLength int) error {
	nChain := int(sd.NumChains)
	seqLen := make([]int, nChain)
	for _, e := range sd.EntityList {
		for _, c := range e.ChainIndexList {
			seqLen[c] = len(e.Sequence)
		}
	}
	nBond := len(sd.BondAtomList) / 2
	var iChain, iGroup, nAtom int
	for iModel := 0; iModel < int(sd.NumModels); iModel++ {
		for j := 0; j < int(sd.ChainsPerModel[iModel]); j, iChain = j+1, iChain+1 {
			if iChain >= nChain {
				return errors.Errorf("chainsPerModel gives more than %d chains", nChain)
			}
			if len(sd.ChainIDList[iChain]) > chainNameMaxLength {
				return errors.Errorf("chain id %q longer than %d", sd.ChainIDList[iChain], chainNameMaxLength)
			}
			if len(sd.ChainNameList) > 0 && len(sd.ChainNameList[iChain]) > chainNameMaxLength {
				return errors.Errorf("chain name %q longer than %d", sd.ChainNameList[iChain], chainNameMaxLength)
			}
			for k := 0; k < int(sd.GroupsPerChain[iChain]); k, iGroup = k+1, iGroup+1 {
				if iGroup >= int(sd.NumGroups) {
					return errors.Errorf("groupsPerChain gives more than %d groups", sd.NumGroups)
				}
				if len(sd.SequenceIndexList) > 0 {
					if si := sd.SequenceIndexList[iGroup]; si < -1 || int(si) >= seqLen[iChain] {
						return errors.Errorf("sequenceIndexList[%d] = %d, chain %d sequence has length %d",
							iGroup, si, iChain, seqLen[iChain])
					}
				}
				g := &sd.GroupList[sd.GroupTypeList[iGroup]]
				nAtom += g.NumAtoms()
				nBond += g.NumBonds()
			}
		}
	}
	switch {
	case iChain != nChain:
		return errors.Errorf("models hold %d chains, numChains is %d", iChain, nChain)
	case iGroup != int(sd.NumGroups):
		return errors.Errorf("chains hold %d groups, numGroups is %d", iGroup, sd.NumGroups)
	case nAtom != int(sd.NumAtoms):
		return errors.Errorf("groups hold %d atoms, numAtoms is %d", nAtom, sd.NumAtoms)
	case nBond != int(sd.NumBonds):
		return errors.Errorf("%d bonds found, numBonds is %d", nBond, sd.NumBonds)
	}
	return nil
}
