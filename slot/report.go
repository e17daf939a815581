package slot

import (
	"fmt"
	"io"

	"github.com/soypat/partgen/internal/d3"
)

// WriteDimensions prints the bounding box of a loaded solid.
func WriteDimensions(w io.Writer, bb d3.Box) error {
	sz := bb.Size()
	_, err := fmt.Fprintf(w, "Bounding box:\n"+
		"  X: %.2f to %.2f (width: %.2fmm)\n"+
		"  Y: %.2f to %.2f (depth: %.2fmm)\n"+
		"  Z: %.2f to %.2f (height: %.2fmm)\n",
		bb.Min.X, bb.Max.X, sz.X, bb.Min.Y, bb.Max.Y, sz.Y, bb.Min.Z, bb.Max.Z, sz.Z)
	return err
}
