// Command obdquery is the command-line test harness spec.md §1 names
// as an external collaborator: it loads a schema, looks up a
// (mode,pid) descriptor, builds the query frame that would be sent
// for it, and prints the frame bytes. It never touches a real bus —
// spec.md's non-goals exclude sending/receiving frames on an actual
// bus.
package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/serebryakov7/obdpid/internal/schema"
)

var (
	schemaPath = flag.String("schema", "", "path to the schema file (required)")
	mode       = flag.Int("mode", 0x01, "OBD-II mode")
	pid        = flag.Int("pid", 0x0C, "OBD-II parameter id")
)

func main() {
	flag.Parse()

	if *schemaPath == "" {
		log.Fatal("missing required -schema flag")
	}

	ctx, err := schema.CompileFile(*schemaPath)
	if err != nil {
		log.Fatalf("compiling schema %s: %v", *schemaPath, err)
	}

	rec, ok := ctx.GetDescriptor(*mode, *pid)
	if !ok {
		log.Fatalf("no pid record for mode %#x pid %#x", *mode, *pid)
	}

	f, err := ctx.MakeQuery(*mode, *pid)
	if err != nil {
		log.Fatalf("building query frame: %v", err)
	}

	fmt.Printf("%s (mode=%#x pid=%#x): id=%#x dlc=%d data=% X\n", rec.Name, *mode, *pid, f.ID, f.DLC, f.Data)
}
