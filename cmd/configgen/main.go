package main

import (
	"flag"
	"log"

	"github.com/danmuck/specter/internal/config"
)

const defaultPath = "cmd/specterctl/config.toml"

func main() {
	output := flag.String("output", defaultPath, "output path for config template")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", defaultPath, "config path for validation")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		cfg, err := config.Check(*input)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Validated config at %s (%d sessions)", *input, len(cfg.Sessions))
		return
	}

	if err := config.WriteTemplate(*output, *force); err != nil {
		log.Fatal(err)
	}
	log.Printf("Wrote config template to %s", *output)
}
