package ecs

import "iter"

// componentColumn is the type-erased storage for one component type within an
// archetype. Implementations must keep slots pointer-stable: a *T returned by
// Get stays valid until the slot is deleted or the column is compacted.
type componentColumn interface {
	Append(item any) int
	Delete(index int)
	Get(index int) any
	Has(index int) bool
	Len() int
	Compact() map[int]int
	Iter() iter.Seq[int]
}

const columnBlockSize = 64

// blockColumn stores components of type T in fixed-size blocks. Blocks are
// never reallocated while occupied, which is what makes handed-out component
// pointers stable across appends. Deleted slots are recycled before the
// column grows.
type blockColumn[T any] struct {
	blocks    [][columnBlockSize]T
	filled    [][columnBlockSize]bool
	freeSlots []int
	nextIndex int
}

// Append stores a component (passed as T or *T) and returns its slot index.
// Returns -1 if the value is not of the column's type.
func (c *blockColumn[T]) Append(item any) int {
	var value T
	switch v := item.(type) {
	case *T:
		value = *v
	case T:
		value = v
	default:
		return -1
	}

	var index int
	if n := len(c.freeSlots); n > 0 {
		index = c.freeSlots[n-1]
		c.freeSlots = c.freeSlots[:n-1]
	} else {
		index = c.nextIndex
		c.nextIndex++
		if index/columnBlockSize >= len(c.blocks) {
			c.blocks = append(c.blocks, [columnBlockSize]T{})
			c.filled = append(c.filled, [columnBlockSize]bool{})
		}
	}

	c.blocks[index/columnBlockSize][index%columnBlockSize] = value
	c.filled[index/columnBlockSize][index%columnBlockSize] = true
	return index
}

// Get returns a *T (as any) for the slot, or nil if the slot is empty.
func (c *blockColumn[T]) Get(index int) any {
	if index < 0 || index/columnBlockSize >= len(c.blocks) {
		return nil
	}
	if !c.filled[index/columnBlockSize][index%columnBlockSize] {
		return nil
	}
	return &c.blocks[index/columnBlockSize][index%columnBlockSize]
}

// Delete empties a slot and queues it for reuse.
func (c *blockColumn[T]) Delete(index int) {
	if index < 0 || index/columnBlockSize >= len(c.blocks) {
		return
	}
	blockIdx, slotIdx := index/columnBlockSize, index%columnBlockSize
	if !c.filled[blockIdx][slotIdx] {
		return
	}
	var zero T
	c.blocks[blockIdx][slotIdx] = zero
	c.filled[blockIdx][slotIdx] = false
	c.freeSlots = append(c.freeSlots, index)
}

// Has reports whether the slot holds a live component.
func (c *blockColumn[T]) Has(index int) bool {
	if index < 0 || index/columnBlockSize >= len(c.blocks) {
		return false
	}
	return c.filled[index/columnBlockSize][index%columnBlockSize]
}

// Len returns the number of live components in the column.
func (c *blockColumn[T]) Len() int {
	return c.nextIndex - len(c.freeSlots)
}

// Compact rewrites the column without holes and returns the old-to-new index
// mapping for the slots that survived. All previously handed-out pointers are
// invalidated.
func (c *blockColumn[T]) Compact() map[int]int {
	indexMap := make(map[int]int)

	live := c.Len()
	if live == 0 {
		c.blocks = make([][columnBlockSize]T, 1)
		c.filled = make([][columnBlockSize]bool, 1)
		c.freeSlots = nil
		c.nextIndex = 0
		return indexMap
	}

	blockCount := (live + columnBlockSize - 1) / columnBlockSize
	newBlocks := make([][columnBlockSize]T, blockCount)
	newFilled := make([][columnBlockSize]bool, blockCount)

	writePos := 0
	for readIdx := 0; readIdx < c.nextIndex; readIdx++ {
		if !c.filled[readIdx/columnBlockSize][readIdx%columnBlockSize] {
			continue
		}
		indexMap[readIdx] = writePos
		newBlocks[writePos/columnBlockSize][writePos%columnBlockSize] = c.blocks[readIdx/columnBlockSize][readIdx%columnBlockSize]
		newFilled[writePos/columnBlockSize][writePos%columnBlockSize] = true
		writePos++
	}

	c.blocks = newBlocks
	c.filled = newFilled
	c.freeSlots = nil
	c.nextIndex = writePos
	return indexMap
}

// Iter yields the indices of all live slots in ascending order.
func (c *blockColumn[T]) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i := 0; i < c.nextIndex; i++ {
			if i/columnBlockSize >= len(c.filled) {
				continue
			}
			if !c.filled[i/columnBlockSize][i%columnBlockSize] {
				continue
			}
			if !yield(i) {
				return
			}
		}
	}
}
