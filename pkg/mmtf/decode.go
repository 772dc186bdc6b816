package mmtf

import (
	"io"
	"os"
	"strconv"

	"github.com/andrew-torda/mmtf/pkg/mmtferr"
	"github.com/andrew-torda/mmtf/pkg/zwrap"
	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Decoder turns msgpack MMTF documents into StructureData. It keeps no
// state between calls except the logger, so one Decoder can be used
// from many goroutines.
type Decoder struct {
	log *zap.Logger
}

// NewDecoder makes a decoder which logs warnings (type mismatches, keys
// we do not know) to log. log may be nil.
func NewDecoder(log *zap.Logger) *Decoder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Decoder{log: log}
}

// Decode is NewDecoder(nil).Decode(b).
func Decode(b []byte) (*StructureData, error) { return NewDecoder(nil).Decode(b) }

// DecodeFile is NewDecoder(nil).DecodeFile(fname).
func DecodeFile(fname string) (*StructureData, error) { return NewDecoder(nil).DecodeFile(fname) }

// asDecodeError makes sure that whatever went wrong reading a document
// reaches the caller as a *mmtferr.DecodeError.
func asDecodeError(err error) error {
	var de *mmtferr.DecodeError
	if errors.As(err, &de) {
		return err
	}
	var te *mmtferr.TypeError
	if errors.As(err, &te) {
		return mmtferr.WrapDecode(err, te.Key, "unexpected type")
	}
	return mmtferr.WrapDecode(err, "", "decoding")
}

// Decode reads an uncompressed msgpack document. Nothing in the result
// points into b.
func (d *Decoder) Decode(b []byte) (*StructureData, error) {
	md, err := NewMapDecoder(b, "StructureData", d.log)
	if err != nil {
		return nil, asDecodeError(err)
	}
	sd, err := d.decodeStructure(md)
	if err != nil {
		return nil, asDecodeError(err)
	}
	return sd, nil
}

// DecodeReader reads everything from r, decompressing if it is gzipped.
func (d *Decoder) DecodeReader(r io.Reader) (*StructureData, error) {
	rdr, err := zwrap.WrapMaybe(io.NopCloser(r))
	if err != nil {
		return nil, mmtferr.WrapDecode(err, "", "opening stream")
	}
	defer rdr.Close()
	b, err := io.ReadAll(rdr)
	if err != nil {
		return nil, mmtferr.WrapDecode(err, "", "reading stream")
	}
	return d.Decode(b)
}

// DecodeFile maps the file into memory and decodes it. Gzipped files
// are decompressed first. The mapping is gone when we return, which is
// fine since Decode copies everything it keeps.
func (d *Decoder) DecodeFile(fname string) (*StructureData, error) {
	fp, err := os.Open(fname)
	if err != nil {
		return nil, mmtferr.WrapDecode(err, "", "opening "+fname)
	}
	defer fp.Close()
	info, err := fp.Stat()
	if err != nil {
		return nil, mmtferr.WrapDecode(err, "", fname)
	}
	if info.Size() == 0 {
		return nil, mmtferr.NewDecode("", fname+" is empty")
	}
	mm, err := mmap.Map(fp, mmap.RDONLY, 0)
	if err != nil {
		return nil, mmtferr.WrapDecode(err, "", "mapping "+fname)
	}
	defer mm.Unmap()
	b, err := zwrap.Gunzip(mm)
	if err != nil {
		return nil, mmtferr.WrapDecode(err, "", fname)
	}
	sd, err := d.Decode(b)
	if err != nil {
		return nil, errors.WithMessage(err, fname)
	}
	return sd, nil
}

// decodeStructure pulls every known key out of the top level map.
func (d *Decoder) decodeStructure(md *MapDecoder) (*StructureData, error) {
	sd := NewStructureData()
	sd.MmtfVersion, sd.MmtfProducer = "", ""

	steps := []error{
		md.Str("mmtfVersion", true, &sd.MmtfVersion),
		md.Str("mmtfProducer", true, &sd.MmtfProducer),
	}
	if err := firstErr(steps); err != nil {
		return nil, err
	}
	if !VersionSupported(sd.MmtfVersion) {
		return nil, mmtferr.NewDecode("mmtfVersion", "unsupported version \""+
			sd.MmtfVersion+"\", we read up to "+VersionString())
	}

	steps = []error{
		md.Float32s("unitCell", false, &sd.UnitCell),
		md.Str("spaceGroup", false, &sd.SpaceGroup),
		md.Str("structureId", false, &sd.StructureID),
		md.Str("title", false, &sd.Title),
		md.Str("depositionDate", false, &sd.DepositionDate),
		md.Str("releaseDate", false, &sd.ReleaseDate),
		md.Float32Lists("ncsOperatorList", false, &sd.NcsOperatorList),
		md.Strings("experimentalMethods", false, &sd.ExperimentalMethods),
		md.Float32("resolution", false, &sd.Resolution),
		md.Float32("rFree", false, &sd.RFree),
		md.Float32("rWork", false, &sd.RWork),
		md.Int32("numBonds", true, &sd.NumBonds),
		md.Int32("numAtoms", true, &sd.NumAtoms),
		md.Int32("numGroups", true, &sd.NumGroups),
		md.Int32("numChains", true, &sd.NumChains),
		md.Int32("numModels", true, &sd.NumModels),
		md.Int32s("bondAtomList", false, &sd.BondAtomList),
		md.Int8s("bondOrderList", false, &sd.BondOrderList),
		md.Int8s("bondResonanceList", false, &sd.BondResonanceList),
		md.Float32s("xCoordList", true, &sd.XCoordList),
		md.Float32s("yCoordList", true, &sd.YCoordList),
		md.Float32s("zCoordList", true, &sd.ZCoordList),
		md.Float32s("bFactorList", false, &sd.BFactorList),
		md.Int32s("atomIdList", false, &sd.AtomIDList),
		md.Chars("altLocList", false, &sd.AltLocList),
		md.Float32s("occupancyList", false, &sd.OccupancyList),
		md.Int32s("groupIdList", true, &sd.GroupIDList),
		md.Int32s("groupTypeList", true, &sd.GroupTypeList),
		md.Int8s("secStructList", false, &sd.SecStructList),
		md.Chars("insCodeList", false, &sd.InsCodeList),
		md.Int32s("sequenceIndexList", false, &sd.SequenceIndexList),
		md.Strings("chainIdList", true, &sd.ChainIDList),
		md.Strings("chainNameList", false, &sd.ChainNameList),
		md.Int32s("groupsPerChain", true, &sd.GroupsPerChain),
		md.Int32s("chainsPerModel", true, &sd.ChainsPerModel),
		md.Properties("bondProperties", false, &sd.BondProperties),
		md.Properties("atomProperties", false, &sd.AtomProperties),
		md.Properties("groupProperties", false, &sd.GroupProperties),
		md.Properties("chainProperties", false, &sd.ChainProperties),
		md.Properties("modelProperties", false, &sd.ModelProperties),
		md.Properties("extraProperties", false, &sd.ExtraProperties),
	}
	if err := firstErr(steps); err != nil {
		return nil, err
	}

	var err error
	if sd.GroupList, err = decodeGroupList(md); err != nil {
		return nil, err
	}
	if sd.EntityList, err = decodeEntityList(md); err != nil {
		return nil, err
	}
	if sd.BioAssemblyList, err = decodeBioAssemblyList(md); err != nil {
		return nil, err
	}
	md.CheckExtraKeys()
	return sd, nil
}

// firstErr gives the first non-nil error. The accessors are cheap, so
// we do not mind running all of them before looking.
func firstErr(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func decodeGroupList(md *MapDecoder) ([]GroupType, error) {
	mds, err := md.Maps("groupList", true)
	if err != nil {
		return nil, err
	}
	out := make([]GroupType, len(mds))
	for i, gmd := range mds {
		g := &out[i]
		steps := []error{
			gmd.Int32s("formalChargeList", true, &g.FormalChargeList),
			gmd.Strings("atomNameList", true, &g.AtomNameList),
			gmd.Strings("elementList", true, &g.ElementList),
			gmd.Int32s("bondAtomList", false, &g.BondAtomList),
			gmd.Int8s("bondOrderList", false, &g.BondOrderList),
			gmd.Int8s("bondResonanceList", false, &g.BondResonanceList),
			gmd.Str("groupName", true, &g.GroupName),
			gmd.Char("singleLetterCode", true, &g.SingleLetterCode),
			gmd.Str("chemCompType", true, &g.ChemCompType),
		}
		if err := firstErr(steps); err != nil {
			return nil, err
		}
		gmd.CheckExtraKeys()
	}
	return out, nil
}

func decodeEntityList(md *MapDecoder) ([]Entity, error) {
	mds, err := md.Maps("entityList", false)
	if err != nil {
		return nil, err
	}
	out := make([]Entity, len(mds))
	for i, emd := range mds {
		e := &out[i]
		steps := []error{
			emd.Int32s("chainIndexList", true, &e.ChainIndexList),
			emd.Str("description", true, &e.Description),
			emd.Str("type", true, &e.Type),
			emd.Str("sequence", true, &e.Sequence),
		}
		if err := firstErr(steps); err != nil {
			return nil, err
		}
		emd.CheckExtraKeys()
	}
	return out, nil
}

func decodeBioAssemblyList(md *MapDecoder) ([]BioAssembly, error) {
	mds, err := md.Maps("bioAssemblyList", false)
	if err != nil {
		return nil, err
	}
	out := make([]BioAssembly, len(mds))
	for i, bmd := range mds {
		ba := &out[i]
		if err := bmd.Str("name", true, &ba.Name); err != nil {
			return nil, err
		}
		tmds, err := bmd.Maps("transformList", true)
		if err != nil {
			return nil, err
		}
		ba.TransformList = make([]Transform, len(tmds))
		for j, tmd := range tmds {
			t := &ba.TransformList[j]
			var m []float32
			steps := []error{
				tmd.Int32s("chainIndexList", true, &t.ChainIndexList),
				tmd.Float32s("matrix", true, &m),
			}
			if err := firstErr(steps); err != nil {
				return nil, err
			}
			if len(m) != len(t.Matrix) {
				return nil, mmtferr.NewDecode("matrix", "transform matrix has "+
					strconv.Itoa(len(m))+" values, not 16")
			}
			copy(t.Matrix[:], m)
			tmd.CheckExtraKeys()
		}
		bmd.CheckExtraKeys()
	}
	return out, nil
}
