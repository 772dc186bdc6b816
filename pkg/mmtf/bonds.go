package mmtf

import (
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
)

// BondAdder adds bonds one at a time to a structure whose groupTypeList
// has no repeats, so every group instance owns its own GroupType. A bond
// between two atoms of the same group goes into that GroupType, any
// other bond into the global lists.
// The usual sequence is ExpandGroupList, NewBondAdder, Add for every
// bond, then CompressGroupList.
type BondAdder struct {
	sd         *StructureData
	atomGroup  []int32 // group type of each atom
	atomOffset []int32 // index of the first atom of each group type, -1 if unused
}

// NewBondAdder builds the atom to group tables. It fails with an
// *mmtferr.EncodeError if a group type is used twice or groupTypeList
// points outside groupList.
func NewBondAdder(sd *StructureData) (*BondAdder, error) {
	ba := &BondAdder{
		sd:         sd,
		atomGroup:  make([]int32, 0, max(int(sd.NumAtoms), 0)),
		atomOffset: make([]int32, len(sd.GroupList)),
	}
	for i := range ba.atomOffset {
		ba.atomOffset[i] = -1
	}
	for i, gt := range sd.GroupTypeList {
		if gt < 0 || int(gt) >= len(sd.GroupList) {
			return nil, mmtferr.NewEncode("groupTypeList", "entry "+strconv.Itoa(i)+
				" = "+strconv.Itoa(int(gt))+" not in groupList")
		}
		if ba.atomOffset[gt] != -1 {
			return nil, mmtferr.NewEncode("groupTypeList", "has duplicates, group type "+
				strconv.Itoa(int(gt))+" used more than once")
		}
		ba.atomOffset[gt] = int32(len(ba.atomGroup))
		for j := 0; j < sd.GroupList[gt].NumAtoms(); j++ {
			ba.atomGroup = append(ba.atomGroup, gt)
		}
	}
	return ba, nil
}

// NumAtoms is the number of atoms found by walking the groups.
func (ba *BondAdder) NumAtoms() int { return len(ba.atomGroup) }

// Add adds a bond between two atoms given by their index in the whole
// structure. intraGroup is true if the bond went into a GroupType.
// An atom index out of range, an order outside 1..4 or bond lists that
// would get out of step are an *mmtferr.EncodeError and nothing is
// changed. Add refuses a target that already has resonances.
func (ba *BondAdder) Add(atom1, atom2 int32, order int8) (intraGroup bool, err error) {
	return ba.add(atom1, atom2, order, 0, false)
}

// AddResonant is Add, but also appends to the bond resonance list.
// The target's resonance list must be as long as its order list, and
// resonance must be -1, 0 or 1.
func (ba *BondAdder) AddResonant(atom1, atom2 int32, order, resonance int8) (bool, error) {
	return ba.add(atom1, atom2, order, resonance, true)
}

// bondLists are the three lists a bond goes into.
type bondLists struct {
	atoms  *[]int32
	orders *[]int8
	res    *[]int8
}

// fits says why one more bond would leave the lists inconsistent, or
// returns nil.
func (bl bondLists) fits(withRes bool) error {
	nAtom, nOrder, nRes := len(*bl.atoms), len(*bl.orders), len(*bl.res)
	switch {
	case nAtom != 2*nOrder:
		return mmtferr.NewEncode("bondOrderList", "has "+strconv.Itoa(nOrder)+
			" orders for "+strconv.Itoa(nAtom/2)+" bonds")
	case withRes && nRes != nOrder:
		return mmtferr.NewEncode("bondResonanceList", "has "+strconv.Itoa(nRes)+
			" entries for "+strconv.Itoa(nOrder)+" bonds")
	case !withRes && nRes != 0:
		return mmtferr.NewEncode("bondResonanceList", "set, so a bond needs a resonance")
	}
	return nil
}

func (ba *BondAdder) add(atom1, atom2 int32, order, res int8, withRes bool) (bool, error) {
	n := int32(len(ba.atomGroup))
	for _, a := range [2]int32{atom1, atom2} {
		if a < 0 || a >= n {
			return false, mmtferr.NewEncode("bondAtomList", "atom index "+
				strconv.Itoa(int(a))+" not in 0.."+strconv.Itoa(int(n)-1))
		}
	}
	if order < 1 || order > maxBondOrder {
		return false, mmtferr.NewEncode("bondOrderList", "order "+strconv.Itoa(int(order))+
			" not in 1.."+strconv.Itoa(maxBondOrder))
	}
	if withRes && (res < minBondResonance || res > maxBondResonance) {
		return false, mmtferr.NewEncode("bondResonanceList", "resonance "+
			strconv.Itoa(int(res))+" not -1, 0 or 1")
	}

	sd := ba.sd
	gt := ba.atomGroup[atom1]
	intra := gt == ba.atomGroup[atom2]
	bl := bondLists{&sd.BondAtomList, &sd.BondOrderList, &sd.BondResonanceList}
	var off int32
	if intra {
		g := &sd.GroupList[gt]
		bl = bondLists{&g.BondAtomList, &g.BondOrderList, &g.BondResonanceList}
		off = ba.atomOffset[gt]
	}
	if err := bl.fits(withRes); err != nil {
		return false, err
	}
	*bl.atoms = append(*bl.atoms, atom1-off, atom2-off)
	*bl.orders = append(*bl.orders, order)
	if withRes {
		*bl.res = append(*bl.res, res)
	}
	sd.NumBonds++
	return intra, nil
}

// ExpandGroupList gives every group instance its own copy of its
// GroupType. The first use of a type keeps the original, later uses get
// a copy appended to groupList. Afterwards NewBondAdder will accept sd.
func ExpandGroupList(sd *StructureData) {
	seen := make([]bool, len(sd.GroupList))
	for i, gt := range sd.GroupTypeList {
		if gt < 0 || int(gt) >= len(seen) {
			continue
		}
		if !seen[gt] {
			seen[gt] = true
			continue
		}
		sd.GroupList = append(sd.GroupList, sd.GroupList[gt].clone())
		sd.GroupTypeList[i] = int32(len(sd.GroupList) - 1)
	}
}

// CompressGroupList removes GroupTypes which are identical to an
// earlier one and points groupTypeList at the first copy. The survivors
// keep their order. Types nobody uses are only removed if they are
// copies. Running it twice changes nothing the second time.
func CompressGroupList(sd *StructureData) {
	old := sd.GroupList
	remap := make([]int32, len(old))
	kept := make([]GroupType, 0, len(old))
	for i := range old {
		remap[i] = -1
		for j := range kept {
			if kept[j].Equal(&old[i]) {
				remap[i] = int32(j)
				break
			}
		}
		if remap[i] == -1 {
			remap[i] = int32(len(kept))
			kept = append(kept, old[i])
		}
	}
	if len(kept) == len(old) {
		return
	}
	sd.GroupList = kept
	for i, gt := range sd.GroupTypeList {
		if gt >= 0 && int(gt) < len(remap) {
			sd.GroupTypeList[i] = remap[gt]
		}
	}
}
