// Command snomatch prints the lines of its input that match a pattern.
//
// The pattern is written in combinator-call notation:
//
//	snomatch 'and(or("b", "r"), arbno("an"), "a")' words.txt
//
// Exit status is 0 if any line matched, 1 if none did and 2 on error.
package main

import (
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
