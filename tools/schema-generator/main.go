package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/packerci/config"
)

func main() {
	outputDir := flag.String("out", "schema/definitions", "directory to write schema files into")
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}

	generators := map[string]func() ([]byte, error){
		"installations.schema.json": config.GenerateInstallationsSchema,
		"job.schema.json":           config.GenerateJobSchema,
	}
	for name, generate := range generators {
		schemaBytes, err := generate()
		if err != nil {
			log.Fatalf("Error generating %s: %v", name, err)
		}
		outputPath := filepath.Join(*outputDir, name)
		if err := os.WriteFile(outputPath, schemaBytes, 0644); err != nil {
			log.Fatalf("Error writing schema file: %v", err)
		}
		log.Printf("Successfully generated schema at %s", outputPath)
	}
}
