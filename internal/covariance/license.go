/*
Copyright © 2026 the nowcast authors.
This file is part of nowcast.

nowcast is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

nowcast is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with nowcast.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package covariance estimates sensor noise covariance from partially
// observed historical residuals (spec §4.5). It computes pairwise
// numerator/denominator statistics from rows with missing entries (missing
// cells encoded as math.NaN, the sentinel this package and internal/nowcast
// agree on throughout), blends the resulting sample covariance against one
// of three structured shrinkage targets, and picks the blend coefficient by
// 1-D maximum-likelihood search over the family's declared alpha bounds.
package covariance
