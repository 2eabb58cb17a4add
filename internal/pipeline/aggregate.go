// ABOUTME: Groups projected coordinates by simulation case
// ABOUTME: Bucket order follows first appearance so output is stable
package pipeline

// Aggregate buckets coords by the case of the record at the same index,
// preserving input order inside each bucket. order lists cases by first appearance.
func Aggregate(coords [][2]float64, cases []string) (byCase map[string][][2]float64, order []string) {
	byCase = make(map[string][][2]float64)
	for i, c := range cases {
		if _, ok := byCase[c]; !ok {
			order = append(order, c)
		}
		byCase[c] = append(byCase[c], coords[i])
	}
	return byCase, order
}
