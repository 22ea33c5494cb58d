package npc

import "container/heap"

// respawnEntry schedules one dead instance to come back.
type respawnEntry struct {
	atMs  uint64
	npcID int64
}

// respawnHeap is a min-heap keyed by respawn deadline.
type respawnHeap []respawnEntry

func (h respawnHeap) Len() int            { return len(h) }
func (h respawnHeap) Less(i, j int) bool  { return h[i].atMs < h[j].atMs }
func (h respawnHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *respawnHeap) Push(x any)         { *h = append(*h, x.(respawnEntry)) }
func (h *respawnHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

func (h *respawnHeap) schedule(npcID int64, atMs uint64) {
	heap.Push(h, respawnEntry{atMs: atMs, npcID: npcID})
}

// popDue removes and returns every entry with a deadline at or before nowMs.
func (h *respawnHeap) popDue(nowMs uint64) []int64 {
	var due []int64
	for h.Len() > 0 && (*h)[0].atMs <= nowMs {
		due = append(due, heap.Pop(h).(respawnEntry).npcID)
	}
	return due
}
