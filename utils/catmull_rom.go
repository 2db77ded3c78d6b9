// SPDX-License-Identifier: EPL-2.0

package utils

// CatmullRom evaluates the Catmull-Rom spline through p0..p3 at t, where t in
// [0, 1] runs from p1 to p2.
func CatmullRom(p0, p1, p2, p3, t float32) float32 {
	c3 := 0.5 * (3*(p1-p2) + p3 - p0)
	c2 := p0 - 2.5*p1 + 2*p2 - 0.5*p3
	c1 := 0.5 * (p2 - p0)

	return ((c3*t+c2)*t+c1)*t + p1
}
