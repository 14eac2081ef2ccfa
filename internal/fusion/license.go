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

// Package fusion implements the linear minimum-variance sensor fusion
// kernel (spec §4.4): given a measurement vector, its noise covariance, and
// a map from latent state to measurement space, it returns the posterior
// state and its covariance, and projects both onto an output space.
package fusion
