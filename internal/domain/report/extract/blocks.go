package extract

import "strings"

// Block is the half-open range [Start, End) of lines reporting one compound.
type Block struct {
	CompoundName string
	Start        int
	End          int
}

// SplitCompounds partitions lines into one block per "compound name" line.
// Blocks are contiguous; each runs to the next compound line and the last one
// runs to the end of the sequence. Lines before the first compound line belong
// to no block.
func SplitCompounds(lines Lines) []Block {
	var blocks []Block
	for i, line := range lines {
		if !strings.Contains(strings.ToLower(line), "compound name") {
			continue
		}
		name := ""
		if _, after, found := strings.Cut(line, ":"); found {
			name = strings.TrimSpace(after)
		}
		if n := len(blocks); n > 0 {
			blocks[n-1].End = i
		}
		blocks = append(blocks, Block{CompoundName: name, Start: i, End: len(lines)})
	}
	return blocks
}

// TitleIndex locates the block's governing Title label, searching forward from
// the block start and then backward from the block end.
func (b Block) TitleIndex(lines Lines) (int, bool) {
	end := b.End
	if end > len(lines) {
		end = len(lines)
	}
	for i := b.Start; i < end; i++ {
		if lines[i] == LabelTitle {
			return i, true
		}
	}
	for i := end - 1; i >= b.Start; i-- {
		if lines[i] == LabelTitle {
			return i, true
		}
	}
	return -1, false
}

// TableWindow returns the scan window [Title, End) for the block's tables.
// Lines before the Title label are header context and are excluded.
// ok is false when the block has no Title label.
func (b Block) TableWindow(lines Lines, stop StopSet) (w Window, ok bool) {
	idx, ok := b.TitleIndex(lines)
	if !ok {
		return Window{}, false
	}
	return Window{Lines: lines, Start: idx, End: b.End, Stop: stop}, true
}
