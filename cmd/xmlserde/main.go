// Command xmlserde is a thin CLI shell over the xmlserde/xmldyn engine:
// decode a document to its dynamic JSON-shaped form, encode JSON back to
// XML, or run a query path against a document — the same three
// operations a CliFormat/CliToJson/CliQuery trio exposed, rebuilt on a
// real command framework instead of a hand-rolled os.Args switch.
package main

func main() {
	Execute()
}
