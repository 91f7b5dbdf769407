package bvh

import "container/heap"

type queued struct {
	node  *Node
	bound float64
}

// nodeQueue is a min-heap of nodes keyed by their box lower bound.
type nodeQueue []queued

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].bound < q[j].bound }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x interface{}) { *q = append(*q, x.(queued)) }

func (q *nodeQueue) Pop() interface{} {
	old := *q
	n := len(old)
	it := old[n-1]
	*q = old[:n-1]
	return it
}

func (q *nodeQueue) push(n *Node, bound float64) {
	heap.Push(q, queued{node: n, bound: bound})
}

func (q *nodeQueue) pop() queued {
	return heap.Pop(q).(queued)
}
