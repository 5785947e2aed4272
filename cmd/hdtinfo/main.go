// Command hdtinfo prints an HDT container's header section.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/boutros/hdt/hdt"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("hdtinfo: ")

	outFile := flag.String("o", "", "also save header output to file")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: hdtinfo [options] <hdt-file>")
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

	header := h.HeaderBytes()
	os.Stdout.Write(header)

	if *outFile != "" {
		if err := os.WriteFile(*outFile, header, 0644); err != nil {
			log.Fatal(err)
		}
	}
}
