/*
 * partition.go, part of trajimg.
 *
 * Copyright 2025 The trajimg authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package trajimg

// SplitIndices splits indices into n contiguous chunks, keeping their
// order. The first len(indices)%n chunks have one element more than the
// rest. If n is larger than the number of indices, the last chunks are
// empty. n must be positive.
func SplitIndices(indices []int, n int) [][]int {
	if n <= 0 {
		panic("trajimg: SplitIndices needs at least one chunk")
	}
	ret := make([][]int, n)
	size, extra := len(indices)/n, len(indices)%n
	start := 0
	for i := range ret {
		end := start + size
		if i < extra {
			end++
		}
		ret[i] = indices[start:end:end]
		start = end
	}
	return ret
}
