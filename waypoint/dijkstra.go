package waypoint

import (
	"container/heap"
	"math"

	"github.com/mayabyte/caveripper/pikminmath"
)

type pqItem struct {
	node int
	dist float32
}

type priorityQueue []pqItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x interface{}) { *pq = append(*pq, x.(pqItem)) }
func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// shortestPaths runs Dijkstra from start over g, returning the distance
// to every node and, for each node, the node it was reached from (-1 for
// start and for any unreached node), so callers can reconstruct a path.
func (g *Graph) shortestPaths(start int) (dist []float32, prev []int) {
	dist = make([]float32, len(g.Nodes))
	prev = make([]int, len(g.Nodes))
	for i := range dist {
		dist[i] = float32(math.Inf(1))
		prev[i] = -1
	}
	if start < 0 || start >= len(g.Nodes) {
		return dist, prev
	}
	dist[start] = 0

	pq := &priorityQueue{{node: start, dist: 0}}
	heap.Init(pq)
	for pq.Len() > 0 {
		cur := heap.Pop(pq).(pqItem)
		if cur.dist > dist[cur.node] {
			continue
		}
		for _, e := range g.Nodes[cur.node].edges {
			nd := cur.dist + e.dist
			if nd < dist[e.to] {
				dist[e.to] = nd
				prev[e.to] = cur.node
				heap.Push(pq, pqItem{node: e.to, dist: nd})
			}
		}
	}
	return dist, prev
}

// CarryDist returns the shortest carry-path distance between two global
// positions: the distance a Pikmin carrying an object from a to b would
// actually walk along the waypoint graph, snapping each endpoint to its
// nearest graph node.
func (g *Graph) CarryDist(a, b pikminmath.Point3) float32 {
	na, nb := g.NearestNode(a), g.NearestNode(b)
	if na < 0 || nb < 0 {
		return float32(math.Inf(1))
	}
	dist, _ := g.shortestPaths(na)
	return dist[nb]
}

// CarryDistFromShip is CarryDist from the ship's position to b, the
// common case for treasure and hole/geyser carry-distance queries.
func (g *Graph) CarryDistFromShip(b pikminmath.Point3) float32 {
	if g.shipNode < 0 {
		return float32(math.Inf(1))
	}
	nb := g.NearestNode(b)
	if nb < 0 {
		return float32(math.Inf(1))
	}
	dist, _ := g.shortestPaths(g.shipNode)
	return dist[nb]
}

// pathFromShip returns the sequence of node indices on the shortest path
// from the ship to pos, inclusive of both ends, or nil if either is
// unreachable.
func (g *Graph) pathFromShip(pos pikminmath.Point3) []int {
	if g.shipNode < 0 {
		return nil
	}
	target := g.NearestNode(pos)
	if target < 0 {
		return nil
	}
	_, prev := g.shortestPaths(g.shipNode)
	if target != g.shipNode && prev[target] < 0 {
		return nil
	}

	var path []int
	for n := target; n != -1; n = prev[n] {
		path = append([]int{n}, path...)
		if n == g.shipNode {
			break
		}
	}
	return path
}
