// exifdump prints everything the metadata extractor can recover from a
// photo: the typed summary first, then the full raw tag table. Handy for
// checking what a camera actually wrote before blaming the model.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/olekukonko/tablewriter"

	"github.com/manzanit0/whereabouts/pkg/exif"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: exifdump <photo>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "exifdump: %s\n", err.Error())
		os.Exit(1)
	}

	m := exif.Extract(data)

	if m.HasCoordinates() {
		fmt.Printf("GPS position:  %f, %f\n", *m.Latitude, *m.Longitude)
	}

	if m.CameraMake != "" || m.CameraModel != "" {
		fmt.Printf("Camera:        %s %s\n", m.CameraMake, m.CameraModel)
	}

	if !m.DateTaken.IsZero() {
		fmt.Printf("Taken:         %s\n", m.DateTaken.Format("2006-01-02 15:04:05"))
	}

	if m.Width > 0 && m.Height > 0 {
		fmt.Printf("Dimensions:    %dx%d\n", m.Width, m.Height)
	}

	if m.Orientation != "" {
		fmt.Printf("Orientation:   %s\n", m.Orientation)
	}

	if len(m.RawTags) == 0 {
		fmt.Println("no tags found")
		return
	}

	names := make([]string, 0, len(m.RawTags))
	for name := range m.RawTags {
		names = append(names, name)
	}

	sort.Strings(names)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Tag", "Value"})
	table.SetRowLine(true)
	table.SetRowSeparator("-")

	for _, name := range names {
		table.Append([]string{name, m.RawTags[name]})
	}

	table.Render()
}
