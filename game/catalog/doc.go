// Package catalog serves the numbered level layouts of Super Slide.
//
// Each level is a YAML (or JSON) file holding its number, a display name,
// the par move count and the layout, written either as five row strings of
// cell codes or as twenty color tags:
//
//	number: 3
//	name: Short Drop
//	par: 3
//	rows:
//	  - "VUUV"
//	  - "VHHV"
//	  - "VBB."
//	  - "VBBV"
//	  - "U.UV"
//
// Codes are U (unit), B (block), V (vertical domino), H (horizontal domino)
// and "." for an empty cell. A catalog must number its levels 1..N with no
// gaps, and every layout must pass engine.ValidateLayout.
//
// The built-in catalog is embedded in the binary; NewManager with a
// directory loads a custom one instead:
//
//	levels, err := catalog.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//	layout, err := levels.Layout(1)
package catalog
