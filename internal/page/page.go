// Package page walks the TPS page tree and materializes a leaf-page
// list: component D. The tree is strictly hierarchical (the format
// has no cycles), so a plain ref → Page map is enough; no arena or
// generation-counted index is needed.
package page

import (
	"encoding/binary"

	"github.com/cockroachdb/swiss"

	"github.com/galler-alexander/tpsread/internal/crypt"
	"github.com/galler-alexander/tpsread/internal/errs"
	"github.com/galler-alexander/tpsread/internal/header"
)

const headerLen = 4 + 2 + 2 + 2 + 2 + 1 // offset, size, uncompressed_size, uncompressed_unabridged_size, record_count, hierarchy_level

// Page is one node of the page tree.
type Page struct {
	Ref                        uint32
	Offset                     uint32
	Size                       uint16
	UncompressedSize           uint16
	UncompressedUnabridgedSize uint16
	RecordCount                uint16
	HierarchyLevel             uint8
	ChildRefs                  []uint32 // non-empty iff HierarchyLevel != 0
}

// IsLeaf reports whether the page holds records rather than child refs.
func (p Page) IsLeaf() bool { return p.HierarchyLevel == 0 }

// refOffset converts a page ref to its absolute byte offset.
func refOffset(ref uint32, headerSize uint16) int64 {
	return int64(ref)*0x100 + int64(headerSize)
}

func readPage(dec *crypt.Decryptor, ref uint32, headerSize uint16) (Page, error) {
	off := refOffset(ref, headerSize)
	buf, err := dec.Read(headerLen, off)
	if err != nil {
		return Page{}, err
	}

	p := Page{
		Ref:                        ref,
		Offset:                     binary.LittleEndian.Uint32(buf[0:4]),
		Size:                       binary.LittleEndian.Uint16(buf[4:6]),
		UncompressedSize:           binary.LittleEndian.Uint16(buf[6:8]),
		UncompressedUnabridgedSize: binary.LittleEndian.Uint16(buf[8:10]),
		RecordCount:                binary.LittleEndian.Uint16(buf[10:12]),
		HierarchyLevel:             buf[12],
	}

	if !p.IsLeaf() {
		childBuf, err := dec.Read(int(p.Size)-headerLen, off+headerLen)
		if err != nil {
			return Page{}, err
		}
		p.ChildRefs = make([]uint32, p.RecordCount)
		for i := range p.ChildRefs {
			p.ChildRefs[i] = binary.LittleEndian.Uint32(childBuf[i*4 : i*4+4])
		}
	}

	return p, nil
}

// Body returns the byte range of ref's page body (after the page
// header), the portion RecordSplitter/PageDecompressor operate on.
func (p Page) Body(dec *crypt.Decryptor, headerSize uint16) ([]byte, error) {
	off := refOffset(p.Ref, headerSize) + headerLen
	return dec.Read(int(p.Size)-headerLen, off)
}

// Index is the ref → Page map produced by walking the tree from the
// root, plus insertion-order ref lists for forward and reverse scans.
type Index struct {
	pages      *swiss.Map[uint32, Page]
	order      []uint32
	headerSize uint16
}

// Build walks the page tree from root, visiting every ref exactly
// once. When check is true, structural anomalies are appended to
// warnings rather than aborting the walk.
func Build(dec *crypt.Decryptor, hdr header.Header, check bool) (*Index, []errs.Warning, error) {
	idx := &Index{
		pages:      swiss.New[uint32, Page](64),
		headerSize: hdr.Size,
	}
	var warnings []errs.Warning

	visited := make(map[uint32]bool)
	queue := []uint32{hdr.PageRootRef}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		if visited[ref] {
			continue
		}
		visited[ref] = true

		p, err := readPage(dec, ref, hdr.Size)
		if err != nil {
			return nil, warnings, errs.Wrapf(err, "page ref %d", ref)
		}

		if check {
			warnings = append(warnings, idx.checkPage(p, hdr)...)
		}

		idx.pages.Put(ref, p)
		idx.order = append(idx.order, ref)

		if !p.IsLeaf() {
			queue = append(queue, p.ChildRefs...)
		}
	}

	return idx, warnings, nil
}

func (idx *Index) checkPage(p Page, hdr header.Header) []errs.Warning {
	var warnings []errs.Warning

	wantOffset := uint32(refOffset(p.Ref, hdr.Size))
	if p.Offset != wantOffset {
		warnings = append(warnings, errs.Warnf("PageIndex",
			"page ref %d: offset %d does not match expected %d", p.Ref, p.Offset, wantOffset))
	}

	if other, ok := idx.intersects(p); ok {
		warnings = append(warnings, errs.Warnf("PageIndex",
			"page ref %d intersects with page ref %d", p.Ref, other))
	}

	endRef := (uint32(p.Offset) + uint32(p.Size) - uint32(hdr.Size)) / 0x100
	if !hdr.BlockContains(p.Ref, endRef) {
		warnings = append(warnings, errs.Warnf("PageIndex",
			"page ref %d not contained in any declared block range", p.Ref))
	}

	return warnings
}

// intersects returns the ref of a previously visited page whose byte
// range overlaps p's, if any.
func (idx *Index) intersects(p Page) (uint32, bool) {
	start := p.Offset
	end := p.Offset + uint32(p.Size)
	var found uint32
	var hit bool
	idx.pages.All(func(ref uint32, other Page) bool {
		oStart := other.Offset
		oEnd := other.Offset + uint32(other.Size)
		if start < oEnd && oStart < end {
			found, hit = ref, true
			return false
		}
		return true
	})
	return found, hit
}

// List returns all visited refs in the order the walk first reached
// them.
func (idx *Index) List() []uint32 { return idx.order }

// Get returns the page for ref.
func (idx *Index) Get(ref uint32) (Page, bool) { return idx.pages.Get(ref) }

// Leaves returns leaf-page refs in forward (ascending insertion) order.
func (idx *Index) Leaves() []uint32 {
	var out []uint32
	for _, ref := range idx.order {
		if p, _ := idx.pages.Get(ref); p.IsLeaf() {
			out = append(out, ref)
		}
	}
	return out
}

// LeavesReverse returns leaf-page refs in reverse order: table
// metadata conventionally lives near the end of the file, so catalog
// discovery scans this way to find it sooner.
func (idx *Index) LeavesReverse() []uint32 {
	fwd := idx.Leaves()
	out := make([]uint32, len(fwd))
	for i, ref := range fwd {
		out[len(fwd)-1-i] = ref
	}
	return out
}
