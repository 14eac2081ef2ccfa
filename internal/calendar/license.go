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

// Package calendar implements epidemiological-week arithmetic.
//
// An epiweek is encoded as an integer yyyyww, with weeks running Sunday
// through Saturday and week 1 of a year defined as the week containing
// January 4th (the same anchor ISO 8601 uses for Monday-based weeks,
// applied here to Sunday-based epi weeks). Years have 52 or 53 such weeks.
package calendar
