// Command elasticsim runs scoreboarded testbenches of elastic circuits.
package main

import "github.com/sarchlab/elastic/elasticsim/cmd"

func main() {
	cmd.Execute()
}
