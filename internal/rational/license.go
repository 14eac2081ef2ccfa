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

// Package rational implements exact linear algebra over arbitrary-precision
// fractions (math/big.Rat), used only by the statespace solver. Floating
// point is never used here; rank and row-span decisions must be exact
// because a rounding error can silently admit or drop a row.
//
// There is no third-party arbitrary-precision rational type in the
// example pack (gonum operates on float64 throughout), so this package is
// built on the standard library's math/big.
package rational
