package riskgraph

// matrix is a fixed-capacity dense square arena addressed as (dst, src).
// Only the leading n×n block is active; everything outside it is zero.
type matrix struct {
	size int
	data []float64
}

func newMatrix(size int) matrix {
	return matrix{size: size, data: make([]float64, size*size)}
}

func (m matrix) at(dst, src int) float64 { return m.data[dst*m.size+src] }

func (m matrix) set(dst, src int, v float64) { m.data[dst*m.size+src] = v }

func (m matrix) clearDiagonal(n int) {
	for i := 0; i < n; i++ {
		m.set(i, i, 0)
	}
}

// clear zeroes row and column k of the active n×n block.
func (m matrix) clear(k, n int) {
	for i := 0; i < n; i++ {
		m.set(k, i, 0)
		m.set(i, k, 0)
	}
}

// remove deletes row and column k from the active n×n block, shifting the
// rows and columns above k down by one. Destinations never lie after their
// sources in row-major order, so the copy is done in place.
func (m matrix) remove(k, n int) {
	for r := 0; r < n; r++ {
		if r == k {
			continue
		}
		nr := r
		if r > k {
			nr--
		}
		for c := 0; c < n; c++ {
			if c == k {
				continue
			}
			nc := c
			if c > k {
				nc--
			}
			m.set(nr, nc, m.at(r, c))
		}
	}
	m.clear(n-1, n)
}
