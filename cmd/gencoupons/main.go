package main

import (
	"compress/gzip"
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Sample coupons, amounts in centavos.
var coupons = [][]string{
	{"CODE", "TYPE", "VALUE", "MIN_ORDER", "MAX_DISCOUNT", "EXPIRES_AT"},
	{"VERANO10", "percentage", "10", "0", "500000", ""},
	{"BIENVENIDA", "fixed", "200000", "1000000", "", ""},
	{"HOTSALE25", "percentage", "25", "2000000", "1500000", "2026-05-31T23:59:59-03:00"},
	{"ENVIOGRATIS", "fixed", "350000", "0", "", ""},
	{"NAVIDAD2024", "percentage", "15", "0", "", "2024-12-26T00:00:00-03:00"},
}

func main() {
	out := flag.String("out", "data/coupons/coupons.csv.gz", "output path of the gzipped coupon catalog")
	flag.Parse()

	if err := os.MkdirAll(filepath.Dir(*out), 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	if err := writeCatalog(*out, coupons); err != nil {
		log.Fatalf("Failed to create %s: %v", *out, err)
	}

	fmt.Printf("Created %s with %d coupons\n", *out, len(coupons)-1)
}

func writeCatalog(path string, records [][]string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	defer gzWriter.Close()

	w := csv.NewWriter(gzWriter)
	if err := w.WriteAll(records); err != nil {
		return err
	}
	return gzWriter.Close()
}
