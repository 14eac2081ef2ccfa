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

// Package statespace derives the minimal latent statespace in which a set
// of input locations and a set of output locations are jointly
// observable, given their population-fraction weight matrices over a
// common atom basis. The derivation itself (Solve) is a pure function of
// two rational matrices; Solver adds the location/season/excluded-atom
// aware memoized wrapper the driver actually calls.
package statespace
