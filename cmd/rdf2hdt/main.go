// Command rdf2hdt converts an RDF file into an HDT container.
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
	log.SetPrefix("rdf2hdt: ")

	headerOut := flag.String("H", "", "also write the header section alone to file")
	dictOut := flag.String("D", "", "also write the dictionary section alone to file")
	triplesOut := flag.String("T", "", "also write the triples section alone to file")
	buildIndex := flag.Bool("i", false, "also build the reverse index")
	cfgFile := flag.String("c", "", "load key=value options from file")
	inlineOpts := flag.String("o", "", "inline options, \"k1:v1;k2:v2\"")
	format := flag.String("f", "ntriples", "input format: ntriples|n3|turtle|rdfxml")
	base := flag.String("B", "", "base URI")

	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: rdf2hdt [options] <rdf-in> <hdt-out>")
		flag.PrintDefaults()
	}
	flag.Parse()

	if len(flag.Args()) != 2 {
		flag.Usage()
		os.Exit(1)
	}
	_ = *base // base URI resolution is the text parser's concern, out of scope

	switch *format {
	case "ntriples":
		// the only format this build's decoder implements
	case "n3", "turtle", "rdfxml":
		log.Fatalf("format %q not implemented", *format)
	default:
		log.Fatalf("unrecognized format %q", *format)
	}

	opts, err := resolveOptions(*cfgFile, *inlineOpts)
	if err != nil {
		log.Fatal(err)
	}
	if *buildIndex {
		opts.TriplesType = "Bitmap"
	}

	in, err := os.Open(flag.Args()[0])
	if err != nil {
		log.Fatal(err)
	}
	defer in.Close()

	h, err := hdt.LoadFromRDF(in, opts)
	if err != nil {
		log.Fatal(err)
	}

	if err := h.Save(flag.Args()[1]); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %d triples to %s", h.NumTriples(), flag.Args()[1])

	if *headerOut != "" {
		if err := os.WriteFile(*headerOut, h.HeaderBytes(), 0644); err != nil {
			log.Fatal(err)
		}
	}
	if *dictOut != "" {
		if err := os.WriteFile(*dictOut, h.DictionaryBytes(), 0644); err != nil {
			log.Fatal(err)
		}
	}
	if *triplesOut != "" {
		b, err := h.TriplesBytes()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*triplesOut, b, 0644); err != nil {
			log.Fatal(err)
		}
	}
}

func resolveOptions(cfgFile, inline string) (*hdt.Options, error) {
	if cfgFile != "" {
		return hdt.LoadConfigFile(cfgFile)
	}
	return hdt.ParseOptions(inline)
}
