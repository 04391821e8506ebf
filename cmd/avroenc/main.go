// Command avroenc parses an Avro schema and a JSON value, compiles the
// schema once, and writes the value's Avro binary encoding to stdout.
//
// It is the Go rendering of go-avro's own examples/data_file/data_file.go
// convention of shipping a small runnable example alongside the library,
// adapted to the encode direction this module implements: no schema
// registry lookups, no container-file framing, no compression — those
// remain the non-goals spec.md names.
//
//	avroenc -schema schema.avsc -in value.json
package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"os"

	"github.com/avrocore/avro"
	"github.com/avrocore/avro/avrogeneric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "avroenc:", err)
		os.Exit(1)
	}
}

func run() error {
	schemaPath := flag.String("schema", "", "path to an Avro schema file (.avsc)")
	inPath := flag.String("in", "-", "path to a JSON value file, or - for stdin")
	flag.Parse()

	if *schemaPath == "" {
		flag.Usage()
		return fmt.Errorf("-schema is required")
	}

	schema, err := avro.ParseSchemaFile(*schemaPath)
	if err != nil {
		return fmt.Errorf("parsing schema: %w", err)
	}
	compiled, err := avro.Compile(schema)
	if err != nil {
		return fmt.Errorf("compiling schema: %w", err)
	}

	raw, err := readInput(*inPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	value, err := avrogeneric.Decode(raw)
	if err != nil {
		return fmt.Errorf("decoding JSON input: %w", err)
	}

	if err := compiled.Write(value, os.Stdout); err != nil {
		return fmt.Errorf("encoding value: %w", err)
	}
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return ioutil.ReadAll(os.Stdin)
	}
	return ioutil.ReadFile(path)
}
