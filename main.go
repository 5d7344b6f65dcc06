//gomftdump resolves NTFS MFT entries, following attribute lists across extension records,
//and dumps them as JSON lines.
//
//	gomftdump bootsector image.dd
//	gomftdump resolve --kind volume C: 0 5
//	gomftdump list --timeline -o listing.jsonl --compress $MFT
//	gomftdump list --config job.yml
package main

import (
	"fmt"
	"os"

	"github.com/C-Sto/gomftdump/cmd"
)

func main() {
	if err := cmd.Root().Execute(); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}
