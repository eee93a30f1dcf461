// The main package for the indexetl executable.
package main

import (
	"github.com/JakeFAU/economic-index-etl/cmd"
)

func main() {
	cmd.Execute()
}
