package vp9sr

// MISize is the luma extent of one mode-info unit.
const MISize = 8

// InterpBlock is a decoded block whose high-resolution pixels must be
// regenerated. N4W and N4H hold each plane's extent in 4-pixel units.
type InterpBlock struct {
	MIRow, MICol int
	N4W, N4H     [3]int
}

// BlockList collects the blocks of one frame in decode order. It is reset
// between frames and reuses its storage.
type BlockList struct {
	blocks []InterpBlock
}

// Add appends a block with its luma extent. The chroma extents are filled
// in by SetPlane once the block's chroma planes are decoded.
func (l *BlockList) Add(miRow, miCol, n4w, n4h int) {
	l.blocks = append(l.blocks, InterpBlock{
		MIRow: miRow,
		MICol: miCol,
		N4W:   [3]int{n4w},
		N4H:   [3]int{n4h},
	})
}

// SetPlane sets the extent of plane p of the most recently added block.
func (l *BlockList) SetPlane(p, n4w, n4h int) error {
	if len(l.blocks) == 0 {
		return ErrNoBlock
	}
	if p < 0 || p > 2 {
		return ErrInvalidBlock
	}
	b := &l.blocks[len(l.blocks)-1]
	b.N4W[p] = n4w
	b.N4H[p] = n4h
	return nil
}

// Len returns the number of blocks.
func (l *BlockList) Len() int { return len(l.blocks) }

// Blocks returns the blocks. The slice is valid until the next Add or Reset.
func (l *BlockList) Blocks() []InterpBlock { return l.blocks }

// Reset empties the list.
func (l *BlockList) Reset() { l.blocks = l.blocks[:0] }
