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

// Package geo is the static geography catalog: a four-tier hierarchy of
// national, HHS-region, census-division and atom locations, with
// season-dependent atom populations and population-weighted projection
// onto an atom basis.
//
// The hierarchy is represented as a directed graph (national and
// region/division vertices point down to the atoms they contain) rather
// than a hand-maintained set union, so that constituents(location) is a
// single BFS reachability query.
package geo
