//-----------------------------------------------------------------------------
/*

Perforate an STL or 3MF mesh with a cylindrical hole lattice, subtracted
by signed-distance sampling and re-extracted with marching cubes.

*/
//-----------------------------------------------------------------------------

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"

	"github.com/MASAGDT/desolidify-web/meshio"
	"github.com/MASAGDT/desolidify-web/perforate"
	"github.com/MASAGDT/desolidify-web/settings"
)

var errMissingInput = errors.New("desolidify: -in is required")

//-----------------------------------------------------------------------------

func run() error {
	in := flag.String("in", "", "input mesh file (.stl or .3mf)")
	out := flag.String("out", "desolidified.stl", "output STL file")
	preset := flag.String("preset", "", "named preset, see settings.Presets (overridden by other flags)")
	paramsJSON := flag.String("params", "{}", "JSON object of parameter overrides, e.g. '{\"spacing\":14,\"radius\":2}'")
	previewFlag := flag.Bool("preview", false, "run a fast, coarse preview pass instead of the full engine")
	flag.Parse()

	if *in == "" {
		flag.Usage()
		return errMissingInput
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		return err
	}
	if *preset != "" {
		params = settings.ApplyPreset(*preset, params)
	}

	var s settings.Settings
	var err error
	if *previewFlag {
		s, err = settings.ForPreview(params)
	} else {
		s, err = settings.FromParams(params)
	}
	if err != nil {
		return err
	}

	mesh, err := meshio.LoadAny(*in)
	if err != nil {
		return err
	}

	result, err := perforate.Perforate(mesh, perforate.Options{
		Settings: s,
		Progress: func(frac float64) bool {
			log.Printf("perforating: %.0f%%", frac*100)
			return false
		},
	})
	if err != nil {
		return err
	}

	return meshio.SaveSTLFile(*out, result)
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("error: %s", err)
	}
}

//-----------------------------------------------------------------------------
