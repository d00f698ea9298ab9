package display

import (
	"fmt"
	"io"
)

// TotalLabel is printed before the count in labeled mode.
const TotalLabel = "Total length:"

// PrintTotal writes the final count.
//
// By default the bare number is printed, and nothing at all when it is
// zero. Labeled mode always prints "Total length: N".
func PrintTotal(out io.Writer, total int64, labeled bool) {
	if labeled {
		fmt.Fprintf(out, "%s %d\n", TotalLabel, total)
		return
	}
	if total == 0 {
		return
	}
	fmt.Fprintf(out, "%d\n", total)
}
