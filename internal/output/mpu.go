package output

import (
	"fmt"
	"io"
)

// WriteMPU writes the single aggregate summary line: main chain height
// divided by total blocks generated by honest peers
// (original_source/run_selfish.py's MPU.txt, spec §6).
func WriteMPU(w io.Writer, mainChainHeight int64, totalGenerated int) error {
	if totalGenerated == 0 {
		_, err := fmt.Fprintln(w, "Overall MPU : ", "Undefined")
		return err
	}
	_, err := fmt.Fprintln(w, "Overall MPU : ", float64(mainChainHeight)/float64(totalGenerated))
	return err
}
