package libretro

import emucore "github.com/user-none/ecytrus/api"

// allocMemBuffers allocates host-visible buffers for every region the
// core exposes.
func (b *Bridge) allocMemBuffers() {
	b.memBuffers = nil
	if b.memoryMapper == nil {
		return
	}

	b.memBuffers = make(map[int][]byte)
	for _, r := range b.memoryMapper.MemoryMap() {
		if r.Size <= 0 {
			continue
		}
		buf := make([]byte, r.Size)
		copy(buf, b.memoryMapper.ReadRegion(r.Type))
		b.memBuffers[r.Type] = buf
	}
}

// syncSaveRAMIn copies host edits to save RAM into the core before a
// frame.
func (b *Bridge) syncSaveRAMIn() {
	if b.memoryMapper == nil {
		return
	}
	if buf, ok := b.memBuffers[emucore.MemorySaveRAM]; ok {
		b.memoryMapper.WriteRegion(emucore.MemorySaveRAM, append([]byte(nil), buf...))
	}
}

// syncMemoryOut refreshes the host-visible buffers after a frame.
func (b *Bridge) syncMemoryOut() {
	if b.memoryMapper == nil {
		return
	}
	for regionType, buf := range b.memBuffers {
		if data := b.memoryMapper.ReadRegion(regionType); len(data) > 0 {
			copy(buf, data)
		}
	}
}

// MemoryData returns the host-visible buffer for a libretro memory ID, or
// nil when the core does not expose it.
func (b *Bridge) MemoryData(id uint) []byte {
	return b.memBuffers[int(id)]
}

// MemorySize returns the size of a libretro memory region.
func (b *Bridge) MemorySize(id uint) int {
	return len(b.memBuffers[int(id)])
}

// MemoryRegions lists the regions the loaded core exposes.
func (b *Bridge) MemoryRegions() []emucore.MemoryRegion {
	if b.memoryMapper == nil {
		return nil
	}
	return b.memoryMapper.MemoryMap()
}
