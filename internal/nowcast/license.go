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

// Package nowcast is the driver (spec §4.6): for each requested test week
// it assembles a pruned residual/reading matrix pair from a DataSource,
// derives a statespace, estimates covariance, fuses, and emits one record
// per surviving output location. Missing cells are represented throughout
// by math.NaN, the sentinel internal/covariance also uses.
package nowcast
