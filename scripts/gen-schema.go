//go:build ignore

package main

import (
	"fmt"
	"os"

	"github.com/ormasoftchile/qaform/pkg/spec"
)

func main() {
	data, err := spec.GenerateJSONSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile("schemas/form-v0.json", data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("wrote schemas/form-v0.json")
}
