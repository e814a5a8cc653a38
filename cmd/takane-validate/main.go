// Command takane-validate is a thin CLI over the takane validation
// library: validate a directory, or report its height or dimensions.
package main

func main() {
	execute()
}
