// bookpipe converts e-books (EPUB, MOBI, PDF) into JSON, Markdown, plain
// text or PDF.
package main

import (
	"os"

	"github.com/gaurav-prasanna/bookpipe/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
