package domain

// TreeNode es una posición (step, upMoves) del retículo, con 0 <= UpMoves <= Step.
type TreeNode struct {
	StockPrice  float64
	OptionValue float64
	Step        int
	UpMoves     int
}

// Lattice es el retículo recombinante: el paso i contiene i+1 nodos
// ordenados por UpMoves creciente. El nodo (i, j) se alcanza con j subidas
// y i-j bajadas en cualquier orden.
type Lattice [][]TreeNode

// newLattice reserva un retículo triangular de n+1 pasos en un único bloque.
func newLattice(n int) Lattice {
	nodes := make([]TreeNode, (n+1)*(n+2)/2)
	l := make(Lattice, n+1)
	off := 0
	for i := range l {
		l[i] = nodes[off : off+i+1 : off+i+1]
		off += i + 1
	}
	return l
}

// Steps devuelve N, el índice del último paso. -1 si el retículo está vacío.
func (l Lattice) Steps() int {
	return len(l) - 1
}

// Node devuelve el nodo (step, upMoves) y false si está fuera del retículo.
func (l Lattice) Node(step, upMoves int) (TreeNode, bool) {
	if step < 0 || step >= len(l) || upMoves < 0 || upMoves > step {
		return TreeNode{}, false
	}
	return l[step][upMoves], true
}

// Root devuelve el nodo (0, 0).
func (l Lattice) Root() TreeNode {
	if len(l) == 0 {
		return TreeNode{}
	}
	return l[0][0]
}

// Terminal devuelve los nodos del vencimiento.
func (l Lattice) Terminal() []TreeNode {
	if len(l) == 0 {
		return nil
	}
	return l[len(l)-1]
}

// NodeCount devuelve el número total de nodos: (N+1)(N+2)/2.
func (l Lattice) NodeCount() int {
	n := 0
	for _, step := range l {
		n += len(step)
	}
	return n
}
