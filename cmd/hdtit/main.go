// Command hdtit queries an HDT container for triples matching a
// subject/predicate/object pattern and prints the matches as
// N-Triples.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/boutros/hdt/hdt"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("hdtit: ")

	subj := flag.String("s", "", "subject term, e.g. <http://ex.org/s>")
	pred := flag.String("p", "", "predicate term")
	obj := flag.String("o", "", "object term")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hdtit [options] <hdt-file>")
		fmt.Fprintln(os.Stderr, "Terms are given in N-Triples syntax: <uri>, _:label, or a quoted literal.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(flag.Args()) != 1 {
		flag.Usage()
		os.Exit(1)
	}

	h, err := hdt.Open(flag.Args()[0])
	if err != nil {
		log.Fatal(err)
	}
	h.SetWarnf(log.Printf)

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	it := h.Search(*subj, *pred, *obj)
	n := 0
	for it.HasNext() {
		tr, err := it.Next()
		if err != nil {
			log.Fatal(err)
		}
		fmt.Fprintln(w, tr.String())
		n++
	}
	if err := w.Flush(); err != nil {
		log.Fatal(err)
	}
	log.Printf("%d matching triples", n)
}
