// Command librarian drives a circulation library from the command line.
//
//	librarian --config librarian.yaml schema init
//	librarian book add --title "Dune" --author "Frank Herbert" --stock 3
//	librarian issue <book-id> <member-id>
package main

func main() {
	Execute()
}
