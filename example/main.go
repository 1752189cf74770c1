package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/pflag"

	"dictflag"
)

// ImageSettings is a typed view of the dictionary, populated via Scan.
type ImageSettings struct {
	Mode  string `toml:"mode"`
	Sizes struct {
		Width  int64   `toml:"width"`
		Height int64   `toml:"height"`
		Scale  float64 `toml:"scale"`
	} `toml:"sizes"`
	Tags []string `toml:"tags"`
}

func main() {
	fs := pflag.NewFlagSet("example", pflag.ExitOnError)

	// One definition, one flag per leaf. Try:
	//   go run . --image_settings.sizes.height=10 --image_settings.tags=a,b
	settings := dictflag.MustDefine(fs, "image_settings", dictflag.Tree{
		"mode": dictflag.String("pad", "Mode string field."),
		"sizes": dictflag.Tree{
			"width":  dictflag.Integer(5, "Width."),
			"height": dictflag.Integer(7, "Height."),
			"scale":  dictflag.Float(0.5, "Scale."),
		},
		"tags": dictflag.StringList([]string{"default"}, "Tags."),
	})

	if err := fs.Parse(os.Args[1:]); err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	log.Println("➡️  Reading individual values through the handle...")
	mode, _ := settings.String("mode")
	height, _ := settings.Int64("sizes.height")
	log.Printf("mode=%s sizes.height=%d", mode, height)

	log.Println("➡️  Programmatic override writes through to the same map...")
	if err := fs.Set("image_settings.sizes.width", "42"); err != nil {
		log.Fatalf("failed to set flag: %v", err)
	}
	width, _ := settings.Int64("sizes.width")
	log.Printf("sizes.width=%d", width)

	log.Println("➡️  Decoding the whole dictionary into a struct...")
	var typed ImageSettings
	if err := settings.Scan("", &typed); err != nil {
		log.Fatalf("failed to scan settings: %v", err)
	}
	log.Printf("%+v", typed)

	log.Println("➡️  Effective configuration as TOML:")
	data, err := settings.TOML()
	if err != nil {
		log.Fatalf("failed to render TOML: %v", err)
	}
	fmt.Print(string(data))
}
