// seed genera un script SQL para poblar una empresa de ejemplo (módulos, bodegas, SKUs con sus
// parámetros de planeación y pronóstico semanal) a partir de un catálogo YAML.
//
// Uso: go run ./cmd/seed [-latin1] [-out seed.sql] catalogo.yaml
// Sin -out escribe en stdout. Los IDs son deterministas: el script se puede reejecutar.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	latin1 := flag.Bool("latin1", false, "el catálogo está en ISO-8859-1 (exportado desde Excel)")
	outPath := flag.String("out", "", "archivo de salida; vacío = stdout")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed [-latin1] [-out seed.sql] catalogo.yaml")
		os.Exit(2)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir catálogo: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	var in io.Reader = f
	if *latin1 {
		in = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
	}

	cat, err := ParseCatalog(in)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Catálogo inválido: %v\n", err)
		os.Exit(1)
	}

	var out io.Writer = os.Stdout
	if *outPath != "" {
		file, err := os.Create(*outPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}

	w := bufio.NewWriter(out)
	if err := WriteSQL(w, cat); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	if err := w.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}

	weeks := 0
	for _, p := range cat.Products {
		weeks += len(p.Forecast)
	}
	fmt.Fprintf(os.Stderr, "Generado: %d bodegas, %d productos, %d semanas de pronóstico\n",
		len(cat.Warehouses), len(cat.Products), weeks)
}
