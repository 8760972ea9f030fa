package rope

// Relax runs iterations full Gauss-Seidel passes over constraints in order.
// There is no convergence test: cost per tick is fixed.
func Relax(constraints []Constraint, iterations int) {
	for i := 0; i < iterations; i++ {
		for _, c := range constraints {
			c.Solve()
		}
	}
}
