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

// Command nowcast is a command-line collaborator that drives the fusion
// engine: it wires internal/config, internal/datasource, and
// internal/nowcast together and writes the resulting records as CSV. It
// carries no algorithmic content of its own (spec §1).
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/nowcast/internal/cmd"
)

func main() {
	if err := cmd.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
