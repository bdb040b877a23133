/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: signatures.go
Description: Lists the built-in signature table in priority order.
*/

package commands

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/kleascm/enro/pkg/classify"
	"github.com/kleascm/enro/pkg/signature"
	"github.com/spf13/cobra"
)

type signatureView struct {
	Label       string  `json:"label"`
	Category    string  `json:"category"`
	Offset      int     `json:"offset"`
	Magic       string  `json:"magic"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// ListSignatures prints the signature table.
func ListSignatures(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	return writeSignatures(os.Stdout, signature.All(), asJSON)
}

func writeSignatures(w io.Writer, sigs []signature.Signature, asJSON bool) error {
	views := make([]signatureView, 0, len(sigs))
	for _, sig := range sigs {
		views = append(views, signatureView{
			Label:       sig.Label,
			Category:    classify.KindForLabel(sig.Label).String(),
			Offset:      sig.Offset,
			Magic:       formatMagic(sig),
			Confidence:  sig.Confidence(),
			Description: sig.Description,
		})
	}

	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tCATEGORY\tOFFSET\tMAGIC\tDESCRIPTION")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", v.Label, v.Category, v.Offset, v.Magic, v.Description)
	}
	return tw.Flush()
}

// formatMagic renders the pattern as hex with "??" for wildcard bytes.
func formatMagic(sig signature.Signature) string {
	parts := make([]string, len(sig.Magic))
	for i, b := range sig.Magic {
		if sig.Mask != nil && i < len(sig.Mask) && sig.Mask[i] == 0 {
			parts[i] = "??"
			continue
		}
		parts[i] = strings.ToUpper(hex.EncodeToString([]byte{b}))
	}
	return strings.Join(parts, " ")
}
