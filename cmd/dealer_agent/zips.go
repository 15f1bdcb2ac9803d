package main

import (
	"fmt"

	"github.com/cliandouble08/car-dealer-scraper/internal/geo"
	"github.com/spf13/cobra"
)

var zipsCommand = &cobra.Command{
	Use:   "zips",
	Short: "Generate a centroid zip code file covering the US",
	Long:  "Selects a spread of zip codes from a zip database so that every selected zip is at least the given radius from the others, and writes them to a file usable with scrape --zip-file.",
	RunE:  runZipsCmd,
}

var (
	zipsDatabase   string
	zipsOutput     string
	zipsRadius     float64
	zipsNoMetadata bool
)

func init() {
	zipsCommand.Flags().StringVar(&zipsDatabase, "zip-db", "", "CSV zip database with zip,lat,lng,city,state columns (required)")
	zipsCommand.Flags().StringVarP(&zipsOutput, "output", "o", "zip_codes.txt", "Output zip file path")
	zipsCommand.Flags().Float64VarP(&zipsRadius, "radius", "r", 50, "Minimum spacing between selected zips, in miles")
	zipsCommand.Flags().BoolVar(&zipsNoMetadata, "no-metadata", false, "Omit city comments from the output file")
	_ = zipsCommand.MarkFlagRequired("zip-db")

	rootCmd.AddCommand(zipsCommand)
}

func runZipsCmd(_ *cobra.Command, _ []string) error {
	if zipsRadius <= 0 {
		return fmt.Errorf("--radius must be positive")
	}

	zips, err := geo.LoadZipDatabase(zipsDatabase)
	if err != nil {
		return err
	}
	fmt.Printf("Loaded %d zip codes from %s\n", len(zips), zipsDatabase)

	domestic := geo.FilterDomestic(zips)
	fmt.Printf("%d zip codes in the 50 states and territories\n", len(domestic))

	centroids := geo.SelectCentroids(domestic, zipsRadius)
	fmt.Printf("Selected %d centroids at %.0f mile spacing\n", len(centroids), zipsRadius)

	if err := geo.WriteZipFile(zipsOutput, centroids, zipsRadius, !zipsNoMetadata); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", zipsOutput)
	return nil
}
