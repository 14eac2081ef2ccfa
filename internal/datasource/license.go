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

// Package datasource defines the collaborator boundary the driver consumes
// (spec §4.7): ordered truth/sensor locations, sensor names, and weeks, plus
// per-cell lookups of truth and sensor readings in which a missing cell is
// a first-class, distinct outcome rather than zero. CachingDataSource wraps
// any Fetcher in a three-level (signal x location x epiweek) cache with
// negative caching, and Epidata is a Fetcher backed by the Epidata HTTP API.
package datasource
